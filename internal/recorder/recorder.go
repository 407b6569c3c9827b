package recorder

import (
	"time"

	"chartlens/internal/interfaces"
)

// Stats aggregates recorded cycles
type Stats struct {
	Total          int        `json:"total"`
	Analyzed       int        `json:"analyzed"`
	Rejected       int        `json:"rejected"`
	Failed         int        `json:"failed"`
	Up             int        `json:"up"`
	Down           int        `json:"down"`
	MeanConfidence float64    `json:"mean_confidence"`
	Since          *time.Time `json:"since,omitempty"`
	Last           *time.Time `json:"last,omitempty"`
}

// Recorder is an audit trail of finished cycles. It never stores image data.
type Recorder interface {
	interfaces.OutcomeSink
	Stats(since time.Time) (Stats, error)
	Close() error
}
