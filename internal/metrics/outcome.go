package metrics

import "time"

// Workflow step names as they appear in outcomes and exports.
const (
	StepInitialize     = "initialize"
	StepAcknowledge    = "acknowledge"
	StepListOperations = "list_operations"
)

// Outcome is one timed success/failure record for a single remote step.
// Immutable once produced.
type Outcome struct {
	Step      string  `json:"step"`
	Success   bool    `json:"success"`
	LatencyMs float64 `json:"latency_ms"`
	StartedAt int64   `json:"started_at_ms"` // epoch milliseconds
	Error     string  `json:"error,omitempty"`
}

// NewSuccess builds a successful outcome from a measured step latency.
func NewSuccess(step string, startedAt time.Time, latency time.Duration) Outcome {
	return Outcome{
		Step:      step,
		Success:   true,
		LatencyMs: float64(latency) / float64(time.Millisecond),
		StartedAt: startedAt.UnixMilli(),
	}
}

// NewFailure builds a failure outcome. Latency is deliberately zero: time to
// failure is not meaningful, time to completion is.
func NewFailure(step string, startedAt time.Time, err error) Outcome {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return Outcome{
		Step:      step,
		Success:   false,
		StartedAt: startedAt.UnixMilli(),
		Error:     msg,
	}
}
