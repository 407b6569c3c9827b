package capture

import (
	"context"
	"fmt"
	"sync"
	"time"

	"chartlens/internal/interfaces"
	"chartlens/internal/logger"
	"chartlens/internal/types"

	"github.com/google/uuid"
)

// Source turns a camera stream or an uploaded file into a CapturedImage.
// It holds at most one live stream and releases it on close, on a successful
// still, or when a new stream replaces it.
type Source struct {
	device   interfaces.CameraDevice
	limits   Limits
	defaults types.StreamConstraints
	maxW     int
	maxH     int
	now      func() time.Time

	mu     sync.Mutex
	stream interfaces.Stream
}

// Default bounds for a requested stream.
const (
	DefaultMaxWidth  = 3840
	DefaultMaxHeight = 2160
)

// SourceOption configures a Source
type SourceOption func(*Source)

// WithStreamDefaults sets the constraints used for fields a request leaves empty.
func WithStreamDefaults(c types.StreamConstraints) SourceOption {
	return func(s *Source) {
		s.defaults = c.WithDefaults()
	}
}

// WithMaxResolution bounds the ideal width and height a stream may request.
func WithMaxResolution(w, h int) SourceOption {
	return func(s *Source) {
		if w > 0 {
			s.maxW = w
		}
		if h > 0 {
			s.maxH = h
		}
	}
}

// WithMaxPixels bounds the decoded size of stills and uploads.
func WithMaxPixels(n int64) SourceOption {
	return func(s *Source) {
		s.limits.MaxPixels = n
	}
}

// NewSource creates a Source. maxBytes <= 0 disables the payload limit.
func NewSource(device interfaces.CameraDevice, maxBytes int64, opts ...SourceOption) *Source {
	s := &Source{
		device:   device,
		limits:   Limits{MaxBytes: maxBytes},
		defaults: types.DefaultStreamConstraints(),
		maxW:     DefaultMaxWidth,
		maxH:     DefaultMaxHeight,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Constraints merges c with the source defaults and checks the result
// against the resolution bounds.
func (s *Source) Constraints(c types.StreamConstraints) (types.StreamConstraints, error) {
	c = c.Merge(s.defaults)
	switch c.FacingMode {
	case "environment", "user":
	default:
		return c, fmt.Errorf("%w: facing mode %q", ErrInvalidConstraints, c.FacingMode)
	}
	if c.IdealWidth > s.maxW || c.IdealHeight > s.maxH {
		return c, fmt.Errorf("%w: %dx%d exceeds %dx%d", ErrInvalidConstraints, c.IdealWidth, c.IdealHeight, s.maxW, s.maxH)
	}
	return c, nil
}

// BeginLiveCapture opens a stream, releasing any stream that is already open.
// Constraints outside the bounds are refused before the device is touched.
func (s *Source) BeginLiveCapture(ctx context.Context, c types.StreamConstraints) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.releaseLocked()

	c, err := s.Constraints(c)
	if err != nil {
		return err
	}
	st, err := s.device.RequestStream(ctx, c)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	s.stream = st
	w, h := st.Resolution()
	logger.Debug(ctx, "Camera stream opened", "device", s.device.Name(), "width", w, "height", h)
	return nil
}

// EndLiveCapture releases the active stream. No-op without one.
func (s *Source) EndLiveCapture() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseLocked()
}

// Active reports whether a stream is open.
func (s *Source) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stream != nil
}

// CaptureStill snapshots the current frame and releases the stream.
func (s *Source) CaptureStill(ctx context.Context) (*types.CapturedImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stream == nil {
		return nil, ErrNoActiveStream
	}
	frame, err := s.stream.GrabFrame(ctx)
	if err != nil {
		return nil, fmt.Errorf("grab frame: %w", err)
	}
	s.releaseLocked()
	return s.build(frame, types.SourceCamera)
}

// LoadFromFile decodes the first selected payload.
func (s *Source) LoadFromFile(ctx context.Context, files [][]byte) (*types.CapturedImage, error) {
	if len(files) == 0 || len(files[0]) == 0 {
		return nil, ErrNoFileSelected
	}
	if len(files) > 1 {
		logger.Debug(ctx, "Multiple files selected, using the first", "count", len(files))
	}
	return s.build(files[0], types.SourceUpload)
}

func (s *Source) build(data []byte, src types.CaptureSource) (*types.CapturedImage, error) {
	format, w, h, err := Decode(data, s.limits)
	if err != nil {
		return nil, err
	}
	payload := make([]byte, len(data))
	copy(payload, data)
	return &types.CapturedImage{
		ID:         uuid.NewString(),
		Source:     src,
		Format:     format,
		Width:      w,
		Height:     h,
		Data:       payload,
		CapturedAt: s.now(),
	}, nil
}

func (s *Source) releaseLocked() {
	if s.stream != nil {
		s.stream.Stop()
		s.stream = nil
	}
}
