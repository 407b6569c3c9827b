package display

import (
	"context"
	"fmt"
	"sync"

	"chartlens/internal/interfaces"
	"chartlens/internal/logger"
	"chartlens/internal/types"
)

// Board owns the session price series and pushes it to a Renderer.
type Board struct {
	renderer  interfaces.Renderer
	style     types.ChartStyle
	maxPoints int

	mu     sync.Mutex
	series types.Series
}

type BoardOption func(*Board)

// WithMaxPoints trims the oldest points once the series grows past n. 0 keeps everything.
func WithMaxPoints(n int) BoardOption {
	return func(b *Board) { b.maxPoints = n }
}

// WithStyle overrides DefaultChartStyle.
func WithStyle(s types.ChartStyle) BoardOption {
	return func(b *Board) { b.style = s }
}

func NewBoard(seed types.Series, r interfaces.Renderer, opts ...BoardOption) *Board {
	b := &Board{
		renderer: r,
		style:    types.DefaultChartStyle(),
		series:   seed.Clone(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Points returns a copy of the current series.
func (b *Board) Points() types.Series {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.series.Clone()
}

func (b *Board) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.series)
}

// Draw renders the current series without changing it.
func (b *Board) Draw(ctx context.Context) error {
	b.mu.Lock()
	s := b.series.Clone()
	b.mu.Unlock()
	return b.render(ctx, s)
}

// Apply appends a forecast for dir and redraws. The series is updated even
// when the renderer fails; the render error is returned.
func (b *Board) Apply(ctx context.Context, dir types.Direction) (int, error) {
	b.mu.Lock()
	before := len(b.series)
	next := AppendForecast(b.series, dir)
	added := len(next) - before
	if b.maxPoints > 0 && len(next) > b.maxPoints {
		trimmed := len(next) - b.maxPoints
		next = next[trimmed:].Clone()
		logger.Debug(ctx, "Series trimmed", "dropped", trimmed, "max_points", b.maxPoints)
	}
	b.series = next
	s := next.Clone()
	b.mu.Unlock()

	return added, b.render(ctx, s)
}

func (b *Board) render(ctx context.Context, s types.Series) error {
	if b.renderer == nil {
		return nil
	}
	if err := b.renderer.Render(ctx, s.Labels(), s.Values(), b.style); err != nil {
		return fmt.Errorf("render series: %w", err)
	}
	return nil
}
