package metrics

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// RunKind identifies which scheduling policy produced a report.
type RunKind string

const (
	RunKindBurst     RunKind = "burst"
	RunKindSustained RunKind = "duration-bounded"
)

// RunSettings echoes the load parameters a run was executed with.
type RunSettings struct {
	Concurrency         int     `json:"concurrency"`
	DurationSeconds     float64 `json:"duration_seconds,omitempty"`
	IterationsPerClient int     `json:"iterations_per_client,omitempty"`
	RampUpSeconds       float64 `json:"ramp_up_seconds,omitempty"`
}

// Report is the immutable envelope assembled once per orchestrated run and
// handed to export. Times serialize as RFC 3339 (ISO-8601).
type Report struct {
	RunID     string      `json:"run_id"`
	RunKind   RunKind     `json:"run_kind"`
	Config    RunSettings `json:"config"`
	Metrics   Aggregate   `json:"metrics"`
	StartedAt time.Time   `json:"started_at"`
	EndedAt   time.Time   `json:"ended_at"`
	Outcomes  []Outcome   `json:"outcomes"` // raw records in accumulation order
}

// NewReport assembles a report for a completed run.
func NewReport(kind RunKind, settings RunSettings, agg Aggregate, outcomes []Outcome, startedAt, endedAt time.Time) *Report {
	return &Report{
		RunID:     ulid.Make().String(),
		RunKind:   kind,
		Config:    settings,
		Metrics:   agg,
		StartedAt: startedAt,
		EndedAt:   endedAt,
		Outcomes:  outcomes,
	}
}
