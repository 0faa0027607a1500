// Package output renders completed run reports: a human-readable summary
// through the log sink, deterministic JSON and CSV exports, a standalone HTML
// report, and a live progress line.
package output

import (
	"encoding/json"
	"io"

	"github.com/mkrell/rpcsurge/internal/logging"
	"github.com/mkrell/rpcsurge/internal/metrics"
)

// SummaryRenderer adapts RenderSummary to the orchestrator's Reporter hook.
type SummaryRenderer struct {
	Sink logging.Sink
}

// Render writes the human-readable summary for the report.
func (r SummaryRenderer) Render(report *metrics.Report) {
	RenderSummary(r.Sink, report)
}

// RenderSummary writes a multi-section textual summary of a run through the
// sink. Purely observational; it never feeds back into metrics. Renders
// correctly even for a run at a 100% error rate.
func RenderSummary(sink logging.Sink, report *metrics.Report) {
	if sink == nil || report == nil {
		return
	}
	agg := report.Metrics

	sink.Infof("--- Load Test Results (%s) ---", report.RunKind)
	sink.Infof("Run ID:            %s", report.RunID)
	sink.Infof("Concurrency:       %d", report.Config.Concurrency)
	if report.Config.DurationSeconds > 0 {
		sink.Infof("Duration Target:   %.1fs", report.Config.DurationSeconds)
	}
	if report.Config.IterationsPerClient > 0 {
		sink.Infof("Iterations/Client: %d", report.Config.IterationsPerClient)
	}
	if report.Config.RampUpSeconds > 0 {
		sink.Infof("Ramp-Up:           %.1fs", report.Config.RampUpSeconds)
	}

	sink.Infof("Total Operations:  %d", agg.TotalOperations)
	sink.Infof("Successful:        %d", agg.SuccessfulOperations)
	sink.Infof("Failed:            %d", agg.FailedOperations)
	sink.Infof("Success Rate:      %.1f%%", 100-agg.ErrorRate)
	sink.Infof("Wall Time:         %.1fms", agg.DurationMs)
	sink.Infof("Throughput:        %.2f ops/sec", agg.Throughput)

	sink.Infof("Latency (successful operations):")
	sink.Infof("  Min:             %.2fms", agg.Dispersion.Min)
	sink.Infof("  Max:             %.2fms", agg.Dispersion.Max)
	sink.Infof("  Mean:            %.2fms", agg.Dispersion.Mean)
	sink.Infof("  Median:          %.2fms", agg.Dispersion.Median)
	sink.Infof("  StdDev:          %.2fms", agg.Dispersion.StdDev)
	sink.Infof("Percentiles:")
	sink.Infof("  P50:             %.2fms", agg.Percentiles.P50)
	sink.Infof("  P90:             %.2fms", agg.Percentiles.P90)
	sink.Infof("  P95:             %.2fms", agg.Percentiles.P95)
	sink.Infof("  P99:             %.2fms", agg.Percentiles.P99)
}

// WriteJSONReport writes the full report as indented JSON. Field order
// follows the struct declarations, so identical input yields identical
// output.
func WriteJSONReport(w io.Writer, report *metrics.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
