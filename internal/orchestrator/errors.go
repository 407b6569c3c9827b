package orchestrator

import "errors"

var (
	// ErrBusy is returned when a cycle is already running.
	ErrBusy = errors.New("analysis already in progress")
	// ErrNotCapturing is returned by CaptureStill outside the CAPTURING state.
	ErrNotCapturing = errors.New("camera is not capturing")
	// ErrPanic wraps a panic raised by a device, decoder or pipeline stage.
	ErrPanic = errors.New("capture pipeline panicked")
)
