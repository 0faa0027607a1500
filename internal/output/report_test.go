package output_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mkrell/rpcsurge/internal/logging"
	"github.com/mkrell/rpcsurge/internal/metrics"
	"github.com/mkrell/rpcsurge/internal/output"
)

func sampleReport() *metrics.Report {
	e := metrics.NewEngine()
	now := time.Now()
	e.RecordBatch([]metrics.Outcome{
		metrics.NewSuccess(metrics.StepInitialize, now, 10*time.Millisecond),
		metrics.NewSuccess(metrics.StepAcknowledge, now, 20*time.Millisecond),
		metrics.NewSuccess(metrics.StepListOperations, now, 30*time.Millisecond),
	})
	e.Record(metrics.NewFailure(metrics.StepInitialize, now, nil))

	settings := metrics.RunSettings{Concurrency: 2, IterationsPerClient: 2}
	return metrics.NewReport(metrics.RunKindBurst, settings, e.Aggregate(time.Second), e.Outcomes(), now.Add(-time.Second), now)
}

func failureOnlyReport() *metrics.Report {
	e := metrics.NewEngine()
	now := time.Now()
	e.Record(metrics.NewFailure(metrics.StepInitialize, now, nil))
	settings := metrics.RunSettings{Concurrency: 1}
	return metrics.NewReport(metrics.RunKindBurst, settings, e.Aggregate(time.Second), e.Outcomes(), now.Add(-time.Second), now)
}

func TestRenderSummaryContent(t *testing.T) {
	var buf bytes.Buffer
	output.RenderSummary(logging.NewWriterSink(&buf), sampleReport())

	out := buf.String()
	for _, want := range []string{
		"Total Operations:  4",
		"Successful:        3",
		"Failed:            1",
		"Success Rate:      75.0%",
		"P50:",
		"StdDev:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestRenderSummaryAllFailures(t *testing.T) {
	var buf bytes.Buffer
	output.RenderSummary(logging.NewWriterSink(&buf), failureOnlyReport())

	out := buf.String()
	if !strings.Contains(out, "Success Rate:      0.0%") {
		t.Errorf("expected zero success rate:\n%s", out)
	}
	if !strings.Contains(out, "P99:             0.00ms") {
		t.Errorf("expected zeroed percentiles:\n%s", out)
	}
}

func TestRenderSummaryNilSafe(t *testing.T) {
	// Should not panic.
	output.RenderSummary(nil, sampleReport())
	output.RenderSummary(logging.NewWriterSink(nil), nil)
}

func TestWriteJSONReportDeterministic(t *testing.T) {
	report := sampleReport()

	var a, b bytes.Buffer
	if err := output.WriteJSONReport(&a, report); err != nil {
		t.Fatalf("WriteJSONReport: %v", err)
	}
	if err := output.WriteJSONReport(&b, report); err != nil {
		t.Fatalf("WriteJSONReport: %v", err)
	}
	if a.String() != b.String() {
		t.Error("expected identical JSON output for the same report")
	}

	var decoded metrics.Report
	if err := json.Unmarshal(a.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.RunID != report.RunID {
		t.Errorf("run id: got %q, want %q", decoded.RunID, report.RunID)
	}
}

func TestSummaryRendererImplementsReporter(t *testing.T) {
	var buf bytes.Buffer
	r := output.SummaryRenderer{Sink: logging.NewWriterSink(&buf)}
	r.Render(sampleReport())
	if buf.Len() == 0 {
		t.Error("expected rendered output")
	}
}
