package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"testing"
	"time"

	"chartlens/internal/capture"
	"chartlens/internal/display"
	"chartlens/internal/interfaces"
	"chartlens/internal/types"
)

type constRand float64

func (c constRand) Float64() float64 { return float64(c) }

type fakeClassifier struct {
	verdict types.Verdict
	err     error
	calls   int
	block   chan struct{}
	panics  bool
}

func (f *fakeClassifier) Classify(ctx context.Context, _ *types.CapturedImage) (types.Verdict, error) {
	f.calls++
	if f.panics {
		panic("classifier exploded")
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return types.Verdict{}, ctx.Err()
		}
	}
	return f.verdict, f.err
}

type fakeAnalyzer struct {
	report types.Report
	err    error
	calls  int
}

func (f *fakeAnalyzer) Analyze(context.Context) (types.Report, error) {
	f.calls++
	return f.report, f.err
}

type fakeSink struct {
	outcomes []*types.Outcome
	err      error
}

func (f *fakeSink) RecordOutcome(o *types.Outcome) error {
	f.outcomes = append(f.outcomes, o)
	return f.err
}

// panickingDevice opens streams whose frames blow up when grabbed
type panickingDevice struct {
	requests int
}

func (d *panickingDevice) Name() string { return "panicking" }

func (d *panickingDevice) RequestStream(context.Context, types.StreamConstraints) (interfaces.Stream, error) {
	d.requests++
	return panickingStream{}, nil
}

type panickingStream struct{}

func (panickingStream) Resolution() (int, int) { return 1, 1 }
func (panickingStream) Stop()                  {}
func (panickingStream) GrabFrame(context.Context) ([]byte, error) {
	panic("frame buffer allocation failed")
}

// snapshotWithin fails the test when Snapshot blocks, which means the lock leaked.
func snapshotWithin(t *testing.T, o *orchestrator, d time.Duration) types.Snapshot {
	t.Helper()
	ch := make(chan types.Snapshot, 1)
	go func() { ch <- o.Snapshot() }()
	select {
	case snap := <-ch:
		return snap
	case <-time.After(d):
		t.Fatal("Expected Snapshot to return, but the orchestrator lock is still held")
		return types.Snapshot{}
	}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

type harness struct {
	orch       *orchestrator
	classifier *fakeClassifier
	analyzer   *fakeAnalyzer
	sink       *fakeSink
}

func newHarness(device interfaces.CameraDevice, v types.Verdict) *harness {
	h := &harness{
		classifier: &fakeClassifier{verdict: v},
		analyzer: &fakeAnalyzer{report: types.Report{
			Direction:  types.DirectionUp,
			Confidence: 85,
			Tier:       types.TierStrong,
		}},
		sink: &fakeSink{},
	}
	board := display.NewBoard(display.Seed(constRand(0.5), display.SeedPoints), display.NewChartJSRenderer())
	h.orch = newOrchestrator(capture.NewSource(device, 0), h.classifier, h.analyzer, board, h.sink)
	return h
}

var chart = types.Verdict{IsChart: true, Wide: true, HasGraphElements: true}

func TestUploadAccepted(t *testing.T) {
	h := newHarness(capture.NewUnavailableDevice(), chart)

	out, err := h.orch.Upload(context.Background(), [][]byte{pngBytes(t, 192, 108)})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !out.Accepted() || out.Report == nil {
		t.Fatalf("Expected accepted outcome with a report, got %+v", out)
	}
	if out.Points != 3 {
		t.Errorf("Expected 3 points added, got %d", out.Points)
	}

	snap := h.orch.Snapshot()
	if snap.State != types.StateAnalyzed {
		t.Errorf("Expected ANALYZED, got %s", snap.State)
	}
	if snap.SeriesLength != 33 {
		t.Errorf("Expected 33 points, got %d", snap.SeriesLength)
	}
	if s := h.orch.Series(); s[30].Label != "D+1" {
		t.Errorf("Expected point 31 to be D+1, got %q", s[30].Label)
	}
	if len(h.sink.outcomes) != 1 {
		t.Errorf("Expected outcome recorded once, got %d", len(h.sink.outcomes))
	}
}

func TestUploadRejected(t *testing.T) {
	h := newHarness(capture.NewUnavailableDevice(), types.Verdict{})

	out, err := h.orch.Upload(context.Background(), [][]byte{pngBytes(t, 108, 192)})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if out.Report != nil {
		t.Error("Expected no report for a rejected image")
	}
	if len(out.Guidance) != 3 {
		t.Errorf("Expected 3 guidance items, got %v", out.Guidance)
	}
	if h.analyzer.calls != 0 {
		t.Errorf("Expected analyzer not to run, got %d calls", h.analyzer.calls)
	}
	snap := h.orch.Snapshot()
	if snap.State != types.StateRejected || snap.SeriesLength != 30 {
		t.Errorf("Expected REJECTED with 30 points, got %s with %d", snap.State, snap.SeriesLength)
	}
	if len(h.sink.outcomes) != 1 {
		t.Errorf("Expected rejected outcome to be recorded, got %d", len(h.sink.outcomes))
	}
}

func TestUploadNoFile(t *testing.T) {
	h := newHarness(capture.NewUnavailableDevice(), chart)

	_, err := h.orch.Upload(context.Background(), nil)
	if !errors.Is(err, capture.ErrNoFileSelected) {
		t.Fatalf("Expected ErrNoFileSelected, got %v", err)
	}
	snap := h.orch.Snapshot()
	if snap.State != types.StateIdle || snap.LastError != "" {
		t.Errorf("Expected state unchanged, got %s (%q)", snap.State, snap.LastError)
	}
	if h.classifier.calls != 0 {
		t.Error("Expected no classifier call")
	}
}

func TestUploadDecodeError(t *testing.T) {
	h := newHarness(capture.NewUnavailableDevice(), chart)

	_, err := h.orch.Upload(context.Background(), [][]byte{[]byte("garbage")})
	if !errors.Is(err, capture.ErrDecode) {
		t.Fatalf("Expected ErrDecode, got %v", err)
	}
	snap := h.orch.Snapshot()
	if snap.State != types.StateIdle || snap.LastError == "" {
		t.Errorf("Expected IDLE with an error, got %s (%q)", snap.State, snap.LastError)
	}
	if h.classifier.calls != 0 {
		t.Error("Expected no classifier call for an undecodable image")
	}
}

func TestStartCameraUnavailable(t *testing.T) {
	h := newHarness(capture.NewUnavailableDevice(), chart)

	snap, err := h.orch.StartCamera(context.Background(), types.DefaultStreamConstraints())
	if !errors.Is(err, capture.ErrDeviceUnavailable) {
		t.Fatalf("Expected ErrDeviceUnavailable, got %v", err)
	}
	if snap.State != types.StateIdle || snap.CameraActive {
		t.Errorf("Expected IDLE without camera, got %+v", snap)
	}
	if snap.LastOutcome != nil {
		t.Error("Expected no image to be produced")
	}
	if h.classifier.calls != 0 {
		t.Error("Expected no classifier call")
	}
}

func TestCameraCycle(t *testing.T) {
	h := newHarness(capture.NewSyntheticDevice(constRand(0.5)), chart)
	ctx := context.Background()

	snap, err := h.orch.StartCamera(ctx, types.StreamConstraints{IdealWidth: 320, IdealHeight: 180})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if snap.State != types.StateCapturing || !snap.CameraActive {
		t.Fatalf("Expected CAPTURING with an active camera, got %+v", snap)
	}

	out, err := h.orch.CaptureStill(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if out.Image.Width != 320 || out.Image.Source != types.SourceCamera {
		t.Errorf("Unexpected image meta %+v", out.Image)
	}
	snap = h.orch.Snapshot()
	if snap.CameraActive {
		t.Error("Expected camera released after the still")
	}
	if snap.State != types.StateAnalyzed {
		t.Errorf("Expected ANALYZED, got %s", snap.State)
	}
}

func TestCaptureStillNotCapturing(t *testing.T) {
	h := newHarness(capture.NewSyntheticDevice(constRand(0.5)), chart)
	if _, err := h.orch.CaptureStill(context.Background()); !errors.Is(err, ErrNotCapturing) {
		t.Errorf("Expected ErrNotCapturing, got %v", err)
	}
}

func TestStopCameraIdempotent(t *testing.T) {
	h := newHarness(capture.NewSyntheticDevice(constRand(0.5)), chart)
	ctx := context.Background()

	if snap := h.orch.StopCamera(ctx); snap.State != types.StateIdle {
		t.Errorf("Expected IDLE, got %s", snap.State)
	}
	if _, err := h.orch.StartCamera(ctx, types.DefaultStreamConstraints()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	h.orch.StopCamera(ctx)
	snap := h.orch.StopCamera(ctx)
	if snap.State != types.StateIdle || snap.CameraActive {
		t.Errorf("Expected IDLE without camera, got %+v", snap)
	}
}

func TestUploadReleasesCamera(t *testing.T) {
	h := newHarness(capture.NewSyntheticDevice(constRand(0.5)), types.Verdict{})
	ctx := context.Background()

	if _, err := h.orch.StartCamera(ctx, types.DefaultStreamConstraints()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := h.orch.Upload(ctx, [][]byte{pngBytes(t, 10, 10)}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if h.orch.Snapshot().CameraActive {
		t.Error("Expected upload to release the camera")
	}
}

func TestSingleFlight(t *testing.T) {
	h := newHarness(capture.NewSyntheticDevice(constRand(0.5)), chart)
	h.classifier.block = make(chan struct{})
	ctx := context.Background()
	img := pngBytes(t, 192, 108)

	done := make(chan error, 1)
	go func() {
		_, err := h.orch.Upload(ctx, [][]byte{img})
		done <- err
	}()

	deadline := time.Now().Add(2 * time.Second)
	for h.orch.Snapshot().State != types.StateLoading {
		if time.Now().After(deadline) {
			t.Fatal("Expected the first cycle to reach LOADING")
		}
		time.Sleep(time.Millisecond)
	}

	if _, err := h.orch.Upload(ctx, [][]byte{img}); !errors.Is(err, ErrBusy) {
		t.Errorf("Expected ErrBusy for a second upload, got %v", err)
	}
	if _, err := h.orch.CaptureStill(ctx); !errors.Is(err, ErrBusy) {
		t.Errorf("Expected ErrBusy for a capture, got %v", err)
	}
	if _, err := h.orch.StartCamera(ctx, types.DefaultStreamConstraints()); !errors.Is(err, ErrBusy) {
		t.Errorf("Expected ErrBusy for a camera start, got %v", err)
	}

	close(h.classifier.block)
	if err := <-done; err != nil {
		t.Fatalf("Expected first cycle to succeed, got %v", err)
	}
	if n := h.orch.Snapshot().SeriesLength; n != 33 {
		t.Errorf("Expected exactly one forecast, got %d points", n)
	}
}

func TestClassifierFailure(t *testing.T) {
	h := newHarness(capture.NewUnavailableDevice(), chart)
	h.classifier.err = errors.New("model offline")

	if _, err := h.orch.Upload(context.Background(), [][]byte{pngBytes(t, 192, 108)}); err == nil {
		t.Fatal("Expected classifier error")
	}
	snap := h.orch.Snapshot()
	if snap.State != types.StateIdle || snap.LastError != "model offline" {
		t.Errorf("Expected IDLE with the error, got %s (%q)", snap.State, snap.LastError)
	}
	if len(h.sink.outcomes) != 1 || !h.sink.outcomes[0].Failed() {
		t.Error("Expected the failed cycle to be recorded")
	}
}

func TestAnalyzerFailureKeepsSeries(t *testing.T) {
	h := newHarness(capture.NewUnavailableDevice(), chart)
	h.analyzer.err = errors.New("boom")

	if _, err := h.orch.Upload(context.Background(), [][]byte{pngBytes(t, 192, 108)}); err == nil {
		t.Fatal("Expected analyzer error")
	}
	if n := h.orch.Snapshot().SeriesLength; n != 30 {
		t.Errorf("Expected series untouched, got %d points", n)
	}
}

func TestSinkFailureIgnored(t *testing.T) {
	h := newHarness(capture.NewUnavailableDevice(), chart)
	h.sink.err = errors.New("disk full")

	if _, err := h.orch.Upload(context.Background(), [][]byte{pngBytes(t, 192, 108)}); err != nil {
		t.Fatalf("Expected sink failure not to propagate, got %v", err)
	}
}

func TestCancelledCycleReturnsIdle(t *testing.T) {
	h := newHarness(capture.NewUnavailableDevice(), chart)
	h.classifier.block = make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.orch.Upload(ctx, [][]byte{pngBytes(t, 192, 108)})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if s := h.orch.Snapshot().State; s != types.StateIdle {
		t.Errorf("Expected IDLE after cancellation, got %s", s)
	}
}

func TestCaptureStillPanicReleasesLock(t *testing.T) {
	h := newHarness(&panickingDevice{}, chart)
	ctx := context.Background()

	if _, err := h.orch.StartCamera(ctx, types.StreamConstraints{}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := h.orch.CaptureStill(ctx); !errors.Is(err, ErrPanic) {
		t.Fatalf("Expected ErrPanic, got %v", err)
	}

	snap := snapshotWithin(t, h.orch, time.Second)
	if snap.State != types.StateIdle || snap.CameraActive {
		t.Errorf("Expected IDLE without camera, got %+v", snap)
	}
	if snap.LastError == "" {
		t.Error("Expected the panic to be reported as the last error")
	}

	if _, err := h.orch.Upload(ctx, [][]byte{pngBytes(t, 192, 108)}); err != nil {
		t.Errorf("Expected upload to work after a panic, got %v", err)
	}
}

func TestCyclePanicReturnsIdle(t *testing.T) {
	h := newHarness(capture.NewUnavailableDevice(), chart)
	h.classifier.panics = true

	_, err := h.orch.Upload(context.Background(), [][]byte{pngBytes(t, 192, 108)})
	if !errors.Is(err, ErrPanic) {
		t.Fatalf("Expected ErrPanic, got %v", err)
	}
	snap := snapshotWithin(t, h.orch, time.Second)
	if snap.State != types.StateIdle {
		t.Errorf("Expected IDLE, got %s", snap.State)
	}
	if len(h.sink.outcomes) != 1 || h.sink.outcomes[0].Error == "" {
		t.Errorf("Expected the failed cycle to be recorded, got %+v", h.sink.outcomes)
	}

	h.classifier.panics = false
	if _, err := h.orch.Upload(context.Background(), [][]byte{pngBytes(t, 192, 108)}); err != nil {
		t.Errorf("Expected the next upload to succeed, got %v", err)
	}
}

func TestStartCameraRejectsOversizedConstraints(t *testing.T) {
	dev := &panickingDevice{}
	h := newHarness(dev, chart)

	snap, err := h.orch.StartCamera(context.Background(), types.StreamConstraints{IdealWidth: 100000, IdealHeight: 100000})
	if !errors.Is(err, capture.ErrInvalidConstraints) {
		t.Fatalf("Expected ErrInvalidConstraints, got %v", err)
	}
	if snap.State != types.StateIdle || snap.CameraActive {
		t.Errorf("Expected IDLE without camera, got %+v", snap)
	}
	if dev.requests != 0 {
		t.Errorf("Expected the device not to be asked for a stream, got %d requests", dev.requests)
	}
	if snap := snapshotWithin(t, h.orch, time.Second); snap.State != types.StateIdle {
		t.Errorf("Expected IDLE, got %s", snap.State)
	}
}
