package interfaces

import (
	"context"

	"chartlens/internal/types"
)

// CameraDevice is the media capability of the host: it hands out live video streams
type CameraDevice interface {
	// RequestStream asks for a stream; implementations return an error when
	// the device is missing or permission is denied.
	RequestStream(ctx context.Context, c types.StreamConstraints) (Stream, error)
	Name() string
}

// Stream is an open camera stream
type Stream interface {
	// GrabFrame returns one encoded still frame at the stream's native resolution
	GrabFrame(ctx context.Context) ([]byte, error)
	Resolution() (width, height int)
	// Stop releases the hardware handle. Calling it more than once is harmless.
	Stop()
}
