package capture

import (
	"context"
	"errors"

	"chartlens/internal/interfaces"
	"chartlens/internal/types"
)

var errPermissionDenied = errors.New("permission denied")

// UnavailableDevice stands in for a host with no camera or a denied permission
type UnavailableDevice struct{}

func NewUnavailableDevice() *UnavailableDevice { return &UnavailableDevice{} }

func (UnavailableDevice) Name() string { return "none" }

func (UnavailableDevice) RequestStream(context.Context, types.StreamConstraints) (interfaces.Stream, error) {
	return nil, errPermissionDenied
}
