package metrics_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/mkrell/rpcsurge/internal/metrics"
)

func TestNewReportAssignsUniqueRunID(t *testing.T) {
	settings := metrics.RunSettings{Concurrency: 2}
	now := time.Now()

	a := metrics.NewReport(metrics.RunKindBurst, settings, metrics.Aggregate{}, nil, now, now)
	b := metrics.NewReport(metrics.RunKindBurst, settings, metrics.Aggregate{}, nil, now, now)

	if a.RunID == "" || b.RunID == "" {
		t.Fatal("expected non-empty run IDs")
	}
	if a.RunID == b.RunID {
		t.Errorf("expected distinct run IDs, both were %q", a.RunID)
	}
}

func TestReportJSONRoundTrip(t *testing.T) {
	e := metrics.NewEngine()
	e.RecordBatch([]metrics.Outcome{
		metrics.NewSuccess(metrics.StepInitialize, time.Now(), 12*time.Millisecond),
		metrics.NewFailure(metrics.StepAcknowledge, time.Now(), nil),
	})

	startedAt := time.Now().Add(-time.Second)
	endedAt := time.Now()
	settings := metrics.RunSettings{Concurrency: 1, IterationsPerClient: 1}
	report := metrics.NewReport(metrics.RunKindBurst, settings, e.Aggregate(time.Second), e.Outcomes(), startedAt, endedAt)

	data, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("marshal report: %v", err)
	}

	var decoded metrics.Report
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal report: %v", err)
	}

	if decoded.RunID != report.RunID {
		t.Errorf("run id: got %q, want %q", decoded.RunID, report.RunID)
	}
	if decoded.RunKind != metrics.RunKindBurst {
		t.Errorf("run kind: got %q", decoded.RunKind)
	}
	if !decoded.StartedAt.Equal(report.StartedAt) {
		t.Errorf("started at: got %v, want %v", decoded.StartedAt, report.StartedAt)
	}
	if len(decoded.Outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(decoded.Outcomes))
	}
	if decoded.Outcomes[0].Step != metrics.StepInitialize || !decoded.Outcomes[0].Success {
		t.Errorf("unexpected first outcome: %+v", decoded.Outcomes[0])
	}
	if decoded.Outcomes[1].Success {
		t.Errorf("expected second outcome to be a failure")
	}
	if decoded.Outcomes[1].Error != "unknown error" {
		t.Errorf("expected fallback error text, got %q", decoded.Outcomes[1].Error)
	}
	if decoded.Metrics.TotalOperations != 2 {
		t.Errorf("expected 2 total operations, got %d", decoded.Metrics.TotalOperations)
	}
}

func TestFailureOutcomeHasZeroLatency(t *testing.T) {
	o := metrics.NewFailure(metrics.StepListOperations, time.Now(), nil)
	if o.LatencyMs != 0 {
		t.Errorf("expected zero latency on failure, got %v", o.LatencyMs)
	}
	if o.Success {
		t.Error("expected failure outcome")
	}
}
