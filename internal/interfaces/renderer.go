package interfaces

import (
	"context"

	"chartlens/internal/types"
)

// Renderer is the chart widget. Every call is a full replacement of the drawn series.
type Renderer interface {
	Render(ctx context.Context, labels []string, values []float64, style types.ChartStyle) error
}
