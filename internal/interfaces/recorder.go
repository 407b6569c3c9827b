package interfaces

import "chartlens/internal/types"

// OutcomeSink receives every finished cycle. Failures are logged by the caller and never abort a cycle.
type OutcomeSink interface {
	RecordOutcome(o *types.Outcome) error
}
