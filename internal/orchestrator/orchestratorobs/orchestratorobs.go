package orchestratorobs

import (
	"context"
	"time"

	"chartlens/internal/interfaces"
	"chartlens/internal/logger"
	"chartlens/internal/trace"
	"chartlens/internal/types"
)

type observableOrchestrator struct {
	orch interfaces.Orchestrator
}

var _ interfaces.Orchestrator = (*observableOrchestrator)(nil)

func Wrap(o interfaces.Orchestrator) interfaces.Orchestrator {
	return &observableOrchestrator{orch: o}
}

func (oo *observableOrchestrator) StartCamera(ctx context.Context, c types.StreamConstraints) (types.Snapshot, error) {
	ctx, span := trace.StartSpan(ctx, "orchestrator.StartCamera")
	defer span.End()

	snap, err := oo.orch.StartCamera(ctx, c)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Camera start failed", err,
			"facing_mode", c.FacingMode,
			"state", snap.State,
		)
		return snap, err
	}
	logger.InfoSkip(ctx, 1, "Camera started",
		"facing_mode", c.FacingMode,
		"state", snap.State,
	)
	return snap, nil
}

func (oo *observableOrchestrator) StopCamera(ctx context.Context) types.Snapshot {
	ctx, span := trace.StartSpan(ctx, "orchestrator.StopCamera")
	defer span.End()

	snap := oo.orch.StopCamera(ctx)
	logger.InfoSkip(ctx, 1, "Camera stopped", "state", snap.State)
	return snap
}

func (oo *observableOrchestrator) CaptureStill(ctx context.Context) (*types.Outcome, error) {
	ctx, span := trace.StartSpan(ctx, "orchestrator.CaptureStill")
	defer span.End()
	return oo.cycle(ctx, "camera", func(ctx context.Context) (*types.Outcome, error) {
		return oo.orch.CaptureStill(ctx)
	})
}

func (oo *observableOrchestrator) Upload(ctx context.Context, files [][]byte) (*types.Outcome, error) {
	ctx, span := trace.StartSpan(ctx, "orchestrator.Upload")
	defer span.End()
	return oo.cycle(ctx, "upload", func(ctx context.Context) (*types.Outcome, error) {
		return oo.orch.Upload(ctx, files)
	})
}

func (oo *observableOrchestrator) Snapshot() types.Snapshot {
	return oo.orch.Snapshot()
}

func (oo *observableOrchestrator) Series() types.Series {
	return oo.orch.Series()
}

func (oo *observableOrchestrator) cycle(ctx context.Context, source string, run func(context.Context) (*types.Outcome, error)) (*types.Outcome, error) {
	start := time.Now()
	logger.InfoSkip(ctx, 2, "Starting analysis cycle", "source", source)

	out, err := run(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 2, "Analysis cycle failed", err,
			"source", source,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	fields := []any{
		"source", source,
		"cycle_id", out.CycleID,
		"is_chart", out.Verdict.IsChart,
		"points_added", out.Points,
		"duration_ms", time.Since(start).Milliseconds(),
	}
	if out.Report != nil {
		fields = append(fields, "direction", out.Report.Direction, "confidence", out.Report.Confidence)
	}
	logger.InfoSkip(ctx, 2, "Analysis cycle completed", fields...)
	return out, nil
}
