package classifier

import (
	"context"
	"fmt"
	"time"

	"chartlens/internal/capture"
	"chartlens/internal/interfaces"
	"chartlens/internal/logger"
	"chartlens/internal/types"
)

// Wide images must be at least this many times wider than tall.
const wideRatio = 1.5

// Draw thresholds: a draw above the threshold counts as present.
const (
	graphElementsThreshold = 0.3
	chartColorsThreshold   = 0.4
)

// Latency bounds the simulated processing delay.
type Latency struct {
	Min time.Duration
	Max time.Duration
}

// DefaultLatency is the 1-2s delay the interactive flow shows a spinner for.
var DefaultLatency = Latency{Min: time.Second, Max: 2 * time.Second}

// Heuristic is a placeholder ImageClassifier: an aspect-ratio check combined
// with two random "feature" draws. It never looks at pixels.
type Heuristic struct {
	rnd     interfaces.RandomSource
	latency Latency
	sleep   func(ctx context.Context, d time.Duration) error
}

var _ interfaces.ImageClassifier = (*Heuristic)(nil)

type Option func(*Heuristic)

// WithLatency overrides the simulated delay. A zero Latency disables it.
func WithLatency(l Latency) Option {
	return func(h *Heuristic) { h.latency = l }
}

// WithSleep replaces the wait function, mainly for tests.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(h *Heuristic) { h.sleep = fn }
}

func New(rnd interfaces.RandomSource, opts ...Option) *Heuristic {
	h := &Heuristic{rnd: rnd, latency: DefaultLatency, sleep: sleepCtx}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Classify waits the simulated latency, then decides whether img is a chart.
// The latency draw is taken before the feature draws.
func (h *Heuristic) Classify(ctx context.Context, img *types.CapturedImage) (types.Verdict, error) {
	if img == nil || img.Width <= 0 || img.Height <= 0 {
		return types.Verdict{}, fmt.Errorf("%w: image has no dimensions", capture.ErrDecode)
	}

	if d := h.drawLatency(); d > 0 {
		if err := h.sleep(ctx, d); err != nil {
			return types.Verdict{}, err
		}
	}

	v := Evaluate(img.Width, img.Height, h.rnd)
	logger.Debug(ctx, "Heuristic evaluated",
		"width", img.Width,
		"height", img.Height,
		"wide", v.Wide,
		"graph_elements", v.HasGraphElements,
		"chart_colors", v.HasChartColors,
	)
	return v, nil
}

// Evaluate applies the gate to known dimensions. It consumes exactly two draws.
func Evaluate(width, height int, rnd interfaces.RandomSource) types.Verdict {
	v := types.Verdict{
		Wide:             float64(width) > float64(height)*wideRatio,
		HasGraphElements: rnd.Float64() > graphElementsThreshold,
		HasChartColors:   rnd.Float64() > chartColorsThreshold,
	}
	v.IsChart = v.Wide && (v.HasGraphElements || v.HasChartColors)
	return v
}

func (h *Heuristic) drawLatency() time.Duration {
	span := h.latency.Max - h.latency.Min
	if h.latency.Max <= 0 {
		return 0
	}
	if span <= 0 {
		return h.latency.Min
	}
	return h.latency.Min + time.Duration(h.rnd.Float64()*float64(span))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
