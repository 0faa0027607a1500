package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/mkrell/rpcsurge/internal/metrics"
)

// WriteCSVReport writes a two-section CSV document: a key/value metadata
// block followed by a raw per-operation table. Rows appear in accumulation
// order so repeated exports of the same report are byte-identical.
func WriteCSVReport(w io.Writer, report *metrics.Report) error {
	if report == nil {
		return fmt.Errorf("nil report")
	}
	agg := report.Metrics

	cw := csv.NewWriter(w)

	metadata := [][]string{
		{"# Test Metadata"},
		{"Key", "Value"},
		{"run_id", report.RunID},
		{"run_kind", string(report.RunKind)},
		{"started_at", report.StartedAt.Format(time.RFC3339Nano)},
		{"ended_at", report.EndedAt.Format(time.RFC3339Nano)},
		{"concurrency", fmt.Sprintf("%d", report.Config.Concurrency)},
	}
	// Optional run settings follow the JSON omitempty posture: present only
	// when the run was configured with them.
	if report.Config.DurationSeconds > 0 {
		metadata = append(metadata, []string{"duration_seconds", fmt.Sprintf("%.3f", report.Config.DurationSeconds)})
	}
	if report.Config.IterationsPerClient > 0 {
		metadata = append(metadata, []string{"iterations_per_client", fmt.Sprintf("%d", report.Config.IterationsPerClient)})
	}
	if report.Config.RampUpSeconds > 0 {
		metadata = append(metadata, []string{"ramp_up_seconds", fmt.Sprintf("%.3f", report.Config.RampUpSeconds)})
	}
	metadata = append(metadata, [][]string{
		{"total_operations", fmt.Sprintf("%d", agg.TotalOperations)},
		{"successful_operations", fmt.Sprintf("%d", agg.SuccessfulOperations)},
		{"failed_operations", fmt.Sprintf("%d", agg.FailedOperations)},
		{"duration_ms", fmt.Sprintf("%.3f", agg.DurationMs)},
		{"throughput_ops_sec", fmt.Sprintf("%.3f", agg.Throughput)},
		{"error_rate_pct", fmt.Sprintf("%.3f", agg.ErrorRate)},
		{"latency_min_ms", fmt.Sprintf("%.3f", agg.Dispersion.Min)},
		{"latency_max_ms", fmt.Sprintf("%.3f", agg.Dispersion.Max)},
		{"latency_mean_ms", fmt.Sprintf("%.3f", agg.Dispersion.Mean)},
		{"latency_median_ms", fmt.Sprintf("%.3f", agg.Dispersion.Median)},
		{"latency_stddev_ms", fmt.Sprintf("%.3f", agg.Dispersion.StdDev)},
		{"latency_p50_ms", fmt.Sprintf("%.3f", agg.Percentiles.P50)},
		{"latency_p90_ms", fmt.Sprintf("%.3f", agg.Percentiles.P90)},
		{"latency_p95_ms", fmt.Sprintf("%.3f", agg.Percentiles.P95)},
		{"latency_p99_ms", fmt.Sprintf("%.3f", agg.Percentiles.P99)},
	}...)
	for _, row := range metadata {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write metadata row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}

	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}

	if err := cw.Write([]string{"# Raw Operation Data"}); err != nil {
		return err
	}
	if err := cw.Write([]string{"timestamp", "step", "latency_ms", "success", "error"}); err != nil {
		return err
	}
	for _, out := range report.Outcomes {
		row := []string{
			fmt.Sprintf("%d", out.StartedAt),
			string(out.Step),
			fmt.Sprintf("%.3f", out.LatencyMs),
			fmt.Sprintf("%t", out.Success),
			out.Error,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write outcome row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
