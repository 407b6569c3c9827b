package interfaces

import (
	"context"

	"chartlens/internal/types"
)

// Orchestrator sequences capture → classify → analyze → series and owns the UI state
type Orchestrator interface {
	StartCamera(ctx context.Context, c types.StreamConstraints) (types.Snapshot, error)
	StopCamera(ctx context.Context) types.Snapshot
	CaptureStill(ctx context.Context) (*types.Outcome, error)
	Upload(ctx context.Context, files [][]byte) (*types.Outcome, error)
	Snapshot() types.Snapshot
	Series() types.Series
}
