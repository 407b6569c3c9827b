package types

import "time"

// State is the UI state of the capture/analysis cycle
type State string

const (
	StateIdle       State = "IDLE"
	StateCapturing  State = "CAPTURING"
	StatePreviewing State = "PREVIEWING"
	StateLoading    State = "LOADING"
	StateRejected   State = "REJECTED"
	StateAnalyzed   State = "ANALYZED"
)

// Outcome is the result of one finished capture → classify → analyze cycle
type Outcome struct {
	CycleID   string        `json:"cycle_id"`
	Image     ImageMeta     `json:"image"`
	Verdict   Verdict       `json:"verdict"`
	Report    *Report       `json:"report,omitempty"`
	Guidance  []string      `json:"guidance,omitempty"`
	Points    int           `json:"points"`
	Error     string        `json:"error,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
}

// Accepted reports whether the image passed the chart gate and was analyzed.
func (o *Outcome) Accepted() bool { return o != nil && o.Error == "" && o.Verdict.IsChart }

// Failed reports whether the cycle ended on a classifier or analyzer error.
func (o *Outcome) Failed() bool { return o != nil && o.Error != "" }

// Snapshot is a read-only view of the orchestrator
type Snapshot struct {
	State        State    `json:"state"`
	CameraActive bool     `json:"camera_active"`
	SeriesLength int      `json:"series_length"`
	LastOutcome  *Outcome `json:"last_outcome,omitempty"`
	LastError    string   `json:"last_error,omitempty"`
}
