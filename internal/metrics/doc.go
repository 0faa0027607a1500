// Package metrics accumulates per-step operation outcomes and derives run
// statistics for rpcsurge.
//
// # Engine
//
// The central [Engine] type collects [Outcome] records from all workflow
// workers:
//
//	engine := metrics.NewEngine()
//
//	// Record one workflow's outcomes atomically.
//	engine.RecordBatch(outcomes)
//
//	// After all workers settle, compute the full statistics block.
//	agg := engine.Aggregate(elapsed)
//
// Recording is safe from multiple goroutines; the accumulator is append-only
// behind a mutex and never drops or duplicates entries. Aggregation is meant
// to run after all producers have settled, so reads never race with writes.
//
// # Aggregate
//
// [Aggregate] is recomputed in full from the raw outcome set on every call:
// counts, throughput over wall-clock time, the {p50,p90,p95,p99} quantile set
// (linear interpolation between order statistics, the R-7 convention), and
// min/max/mean/median/stddev dispersion. All latency-derived fields come from
// successful outcomes only; a run with zero successes reports a 100% error
// rate with every latency field exactly zero.
//
// # Snapshot
//
// [Engine.Snapshot] serves interim counters and approximate percentiles (via
// an HDR histogram) for progress displays while a run is still executing.
//
// # Report
//
// [Report] is the immutable envelope (run id, kind, settings, aggregate, time
// bounds) handed to the output package for export.
package metrics
