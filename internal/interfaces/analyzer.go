package interfaces

import (
	"context"

	"chartlens/internal/types"
)

// ChartAnalyzer produces a trend report for an image that already passed the chart gate
type ChartAnalyzer interface {
	Analyze(ctx context.Context) (types.Report, error)
}
