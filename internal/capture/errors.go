package capture

import "errors"

var (
	// ErrDeviceUnavailable means the camera is missing or permission was denied
	ErrDeviceUnavailable = errors.New("camera unavailable")
	// ErrNoFileSelected means an upload arrived with no payload
	ErrNoFileSelected = errors.New("no file selected")
	// ErrDecode means the payload is not a decodable image
	ErrDecode = errors.New("image could not be decoded")
	// ErrNoActiveStream means a still was requested without a live stream
	ErrNoActiveStream = errors.New("no active camera stream")
	// ErrInvalidConstraints means the requested stream is outside the allowed bounds
	ErrInvalidConstraints = errors.New("invalid stream constraints")
)
