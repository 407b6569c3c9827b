package capture

import (
	"context"
	"fmt"
	"os"
	"sync"

	"chartlens/internal/interfaces"
	"chartlens/internal/types"
)

// FileDevice is a camera whose every frame is the image stored at Path.
// The file is re-read on each grab so it can be swapped while the server runs.
type FileDevice struct {
	Path   string
	Limits Limits
}

func NewFileDevice(path string, lim Limits) *FileDevice {
	return &FileDevice{Path: path, Limits: lim}
}

func (d *FileDevice) Name() string { return "file" }

func (d *FileDevice) RequestStream(context.Context, types.StreamConstraints) (interfaces.Stream, error) {
	data, err := os.ReadFile(d.Path)
	if err != nil {
		return nil, fmt.Errorf("open frame source %s: %w", d.Path, err)
	}
	_, w, h, err := Decode(data, d.Limits)
	if err != nil {
		return nil, fmt.Errorf("frame source %s: %w", d.Path, err)
	}
	return &fileStream{device: d, width: w, height: h}, nil
}

type fileStream struct {
	device        *FileDevice
	width, height int

	mu      sync.Mutex
	stopped bool
}

func (s *fileStream) Resolution() (int, int) { return s.width, s.height }

func (s *fileStream) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
}

func (s *fileStream) GrabFrame(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	stopped := s.stopped
	s.mu.Unlock()
	if stopped {
		return nil, errStreamStopped
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(s.device.Path)
}
