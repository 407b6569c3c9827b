package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"chartlens/internal/capture"
	"chartlens/internal/display"
	"chartlens/internal/interfaces"
	"chartlens/internal/logger"
	"chartlens/internal/types"

	"github.com/google/uuid"
)

// Guidance is shown when an image is rejected as not being a chart.
var Guidance = []string{
	"Gráfico de candles, barras ou linhas",
	"Eixos com valores financeiros",
	"Área principal do gráfico visível",
}

type orchestrator struct {
	source     *capture.Source
	classifier interfaces.ImageClassifier
	analyzer   interfaces.ChartAnalyzer
	board      *display.Board
	sinks      []interfaces.OutcomeSink
	now        func() time.Time

	mu      sync.Mutex
	state   types.State
	last    *types.Outcome
	lastErr error
}

var _ interfaces.Orchestrator = (*orchestrator)(nil)

func newOrchestrator(src *capture.Source, c interfaces.ImageClassifier, a interfaces.ChartAnalyzer, b *display.Board, sinks ...interfaces.OutcomeSink) *orchestrator {
	return &orchestrator{
		source:     src,
		classifier: c,
		analyzer:   a,
		board:      b,
		sinks:      sinks,
		now:        time.Now,
		state:      types.StateIdle,
	}
}

func (o *orchestrator) StartCamera(ctx context.Context, c types.StreamConstraints) (snap types.Snapshot, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			err = o.panickedLocked(ctx, r)
			snap = o.snapshotLocked()
		}
	}()

	if o.state == types.StateLoading {
		return o.snapshotLocked(), ErrBusy
	}
	if err := o.source.BeginLiveCapture(ctx, c); err != nil {
		logger.Warn(ctx, "Camera start refused", "error", err)
		o.state = types.StateIdle
		o.lastErr = err
		return o.snapshotLocked(), err
	}
	o.state = types.StateCapturing
	o.lastErr = nil
	return o.snapshotLocked(), nil
}

func (o *orchestrator) StopCamera(ctx context.Context) types.Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.source.EndLiveCapture()
	if o.state == types.StateCapturing {
		o.state = types.StateIdle
		logger.Debug(ctx, "Camera closed")
	}
	return o.snapshotLocked()
}

func (o *orchestrator) CaptureStill(ctx context.Context) (*types.Outcome, error) {
	img, err := o.takeStill(ctx)
	if err != nil {
		return nil, err
	}
	return o.runCycle(ctx, img)
}

// takeStill grabs the frame and enters LOADING under the lock.
func (o *orchestrator) takeStill(ctx context.Context) (img *types.CapturedImage, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			img, err = nil, o.panickedLocked(ctx, r)
		}
	}()

	switch o.state {
	case types.StateLoading:
		return nil, ErrBusy
	case types.StateCapturing:
	default:
		return nil, ErrNotCapturing
	}

	img, err = o.source.CaptureStill(ctx)
	if err != nil {
		o.source.EndLiveCapture()
		o.failLocked(err)
		return nil, err
	}
	o.beginCycleLocked()
	return img, nil
}

func (o *orchestrator) Upload(ctx context.Context, files [][]byte) (*types.Outcome, error) {
	img, err := o.loadUpload(ctx, files)
	if err != nil {
		return nil, err
	}
	return o.runCycle(ctx, img)
}

// loadUpload decodes the payload and enters LOADING under the lock.
func (o *orchestrator) loadUpload(ctx context.Context, files [][]byte) (img *types.CapturedImage, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			img, err = nil, o.panickedLocked(ctx, r)
		}
	}()

	if o.state == types.StateLoading {
		return nil, ErrBusy
	}
	if len(files) == 0 || len(files[0]) == 0 {
		return nil, capture.ErrNoFileSelected
	}

	// an upload replaces whatever the camera was doing
	o.source.EndLiveCapture()

	img, err = o.source.LoadFromFile(ctx, files)
	if err != nil {
		o.failLocked(err)
		return nil, err
	}
	o.beginCycleLocked()
	return img, nil
}

func (o *orchestrator) Snapshot() types.Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

func (o *orchestrator) Series() types.Series {
	return o.board.Points()
}

// beginCycleLocked enters LOADING. The still is analyzed as soon as it exists,
// so PREVIEWING is folded into this step and stays on screen while loading.
func (o *orchestrator) beginCycleLocked() {
	o.state = types.StateLoading
	o.lastErr = nil
}

func (o *orchestrator) failLocked(err error) {
	o.state = types.StateIdle
	o.lastErr = err
}

// panickedLocked turns a recovered panic into an error and returns to IDLE
// with the camera released.
func (o *orchestrator) panickedLocked(ctx context.Context, r any) error {
	err := fmt.Errorf("%w: %v", ErrPanic, r)
	logger.ErrorWithErr(ctx, "Recovered from panic", err)
	o.source.EndLiveCapture()
	o.failLocked(err)
	return err
}

// runCycle classifies img and, when accepted, analyzes it and extends the series.
// It runs without the lock; ErrBusy keeps it single-flight. A panicking stage
// fails the cycle instead of leaving the state at LOADING.
func (o *orchestrator) runCycle(ctx context.Context, img *types.CapturedImage) (res *types.Outcome, err error) {
	out := &types.Outcome{
		CycleID:   uuid.NewString(),
		Image:     img.Meta(),
		StartedAt: o.now(),
	}
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, o.finishFailed(ctx, out, fmt.Errorf("%w: %v", ErrPanic, r))
		}
	}()

	verdict, err := o.classifier.Classify(ctx, img)
	if err != nil {
		return nil, o.finishFailed(ctx, out, err)
	}
	out.Verdict = verdict
	logger.Verdict(ctx, out.CycleID, verdict.IsChart, img.Width, img.Height, "source", img.Source)

	next := types.StateRejected
	if !verdict.IsChart {
		out.Guidance = append([]string(nil), Guidance...)
	} else {
		report, err := o.analyzer.Analyze(ctx)
		if err != nil {
			return nil, o.finishFailed(ctx, out, err)
		}
		out.Report = &report
		logger.Report(ctx, out.CycleID, string(report.Direction), report.Confidence, string(report.Tier))

		added, err := o.board.Apply(ctx, report.Direction)
		if err != nil {
			logger.Warn(ctx, "Chart redraw failed", "cycle_id", out.CycleID, "error", err)
		}
		out.Points = added
		next = types.StateAnalyzed
	}
	out.Duration = time.Since(out.StartedAt)

	o.mu.Lock()
	o.state = next
	o.last = out
	o.lastErr = nil
	o.mu.Unlock()

	o.record(ctx, out)
	return out, nil
}

func (o *orchestrator) finishFailed(ctx context.Context, out *types.Outcome, err error) error {
	out.Error = err.Error()
	out.Duration = time.Since(out.StartedAt)

	o.mu.Lock()
	o.failLocked(err)
	o.mu.Unlock()

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		logger.Warn(ctx, "Cycle abandoned", "cycle_id", out.CycleID, "error", err)
	} else {
		logger.ErrorWithErr(ctx, "Cycle failed", err, "cycle_id", out.CycleID)
	}
	o.record(context.WithoutCancel(ctx), out)
	return err
}

func (o *orchestrator) record(ctx context.Context, out *types.Outcome) {
	for _, s := range o.sinks {
		if err := s.RecordOutcome(out); err != nil {
			logger.Warn(ctx, "Failed to record outcome", "cycle_id", out.CycleID, "error", err)
		}
	}
}

func (o *orchestrator) snapshotLocked() types.Snapshot {
	snap := types.Snapshot{
		State:        o.state,
		CameraActive: o.source.Active(),
		SeriesLength: o.board.Len(),
		LastOutcome:  o.last,
	}
	if o.lastErr != nil {
		snap.LastError = o.lastErr.Error()
	}
	return snap
}
