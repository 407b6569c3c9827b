package analyzerobs

import (
	"context"
	"time"

	"chartlens/internal/interfaces"
	"chartlens/internal/logger"
	"chartlens/internal/trace"
	"chartlens/internal/types"
)

type observableAnalyzer struct {
	analyzer interfaces.ChartAnalyzer
}

var _ interfaces.ChartAnalyzer = (*observableAnalyzer)(nil)

// Wrap wraps an analyzer with logging and tracing
func Wrap(a interfaces.ChartAnalyzer) interfaces.ChartAnalyzer {
	return &observableAnalyzer{analyzer: a}
}

func (oa *observableAnalyzer) Analyze(ctx context.Context) (types.Report, error) {
	ctx, span := trace.StartSpan(ctx, "analyzer.Analyze")
	defer span.End()

	start := time.Now()
	r, err := oa.analyzer.Analyze(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Analysis failed", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return types.Report{}, err
	}

	logger.InfoSkip(ctx, 1, "Analysis completed",
		"direction", r.Direction,
		"confidence", r.Confidence,
		"tier", r.Tier,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return r, nil
}
