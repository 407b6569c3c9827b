package display

import (
	"context"
	"errors"
	"sync"

	"chartlens/internal/interfaces"
	"chartlens/internal/types"
)

// ChartJSConfig is a Chart.js line chart definition, ready to be handed to `new Chart(ctx, cfg)`.
type ChartJSConfig struct {
	Type    string         `json:"type"`
	Data    ChartJSData    `json:"data"`
	Options ChartJSOptions `json:"options"`
}

type ChartJSData struct {
	Labels   []string         `json:"labels"`
	Datasets []ChartJSDataset `json:"datasets"`
}

type ChartJSDataset struct {
	Label       string    `json:"label"`
	Data        []float64 `json:"data"`
	BorderColor string    `json:"borderColor"`
	BorderWidth int       `json:"borderWidth"`
	Tension     float64   `json:"tension"`
	PointRadius int       `json:"pointRadius"`
	Fill        bool      `json:"fill"`
}

type ChartJSOptions struct {
	Responsive          bool                    `json:"responsive"`
	MaintainAspectRatio bool                    `json:"maintainAspectRatio"`
	Scales              map[string]ChartJSScale `json:"scales"`
	Plugins             ChartJSPlugins          `json:"plugins"`
}

type ChartJSScale struct {
	Grid ChartJSGrid `json:"grid"`
}

type ChartJSGrid struct {
	Display *bool  `json:"display,omitempty"`
	Color   string `json:"color,omitempty"`
}

type ChartJSPlugins struct {
	Legend struct {
		Display bool `json:"display"`
	} `json:"legend"`
}

// ChartJSRenderer keeps the latest rendered config for the browser to fetch.
type ChartJSRenderer struct {
	mu      sync.RWMutex
	current *ChartJSConfig
	renders int
}

var _ interfaces.Renderer = (*ChartJSRenderer)(nil)

func NewChartJSRenderer() *ChartJSRenderer {
	return &ChartJSRenderer{}
}

func (r *ChartJSRenderer) Render(_ context.Context, labels []string, values []float64, style types.ChartStyle) error {
	if len(labels) != len(values) {
		return errors.New("labels and values differ in length")
	}
	cfg := buildConfig(labels, values, style)

	r.mu.Lock()
	r.current = cfg
	r.renders++
	r.mu.Unlock()
	return nil
}

// Config returns the latest config, ok=false before the first render.
func (r *ChartJSRenderer) Config() (ChartJSConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.current == nil {
		return ChartJSConfig{}, false
	}
	return *r.current, true
}

// Renders counts completed Render calls.
func (r *ChartJSRenderer) Renders() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.renders
}

func buildConfig(labels []string, values []float64, style types.ChartStyle) *ChartJSConfig {
	hidden := false
	cfg := &ChartJSConfig{
		Type: "line",
		Data: ChartJSData{
			Labels: append([]string(nil), labels...),
			Datasets: []ChartJSDataset{{
				Label:       style.Label,
				Data:        append([]float64(nil), values...),
				BorderColor: style.LineColor,
				BorderWidth: style.LineWidth,
				Tension:     style.Tension,
				PointRadius: style.PointRadius,
				Fill:        style.Fill,
			}},
		},
		Options: ChartJSOptions{
			Responsive:          true,
			MaintainAspectRatio: false,
			Scales: map[string]ChartJSScale{
				"y": {Grid: ChartJSGrid{Color: "rgba(255,255,255,0.1)"}},
				"x": {Grid: ChartJSGrid{Display: &hidden}},
			},
		},
	}
	return cfg
}
