package recorder

import (
	"time"

	"chartlens/internal/types"
)

// NoopRecorder is used when no SQLite path is configured.
type NoopRecorder struct{}

var _ Recorder = (*NoopRecorder)(nil)

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordOutcome(_ *types.Outcome) error { return nil }
func (n *NoopRecorder) Stats(_ time.Time) (Stats, error)     { return Stats{}, nil }
func (n *NoopRecorder) Close() error                         { return nil }
