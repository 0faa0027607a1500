package metrics

import (
	"math"
	"sort"
	"time"
)

// Percentiles holds the quantile set over the successful-latency sample, in
// milliseconds.
type Percentiles struct {
	P50 float64 `json:"p50"`
	P90 float64 `json:"p90"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
}

// Dispersion holds the spread statistics over the successful-latency sample,
// in milliseconds. StdDev is the sample standard deviation (n-1).
type Dispersion struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
}

// Aggregate is the derived statistics block for a completed run. It is
// recomputed in full from the outcome set on every request, never mutated in
// place. Latency statistics are derived only from successful outcomes.
type Aggregate struct {
	TotalOperations      int64       `json:"total_operations"`
	SuccessfulOperations int64       `json:"successful_operations"`
	FailedOperations     int64       `json:"failed_operations"`
	DurationMs           float64     `json:"duration_ms"`
	Throughput           float64     `json:"throughput"` // successful operations per second of wall time
	ErrorRate            float64     `json:"error_rate"` // percent
	Percentiles          Percentiles `json:"percentiles"`
	Dispersion           Dispersion  `json:"dispersion"`
	Latencies            []float64   `json:"latencies"`  // sorted successful-op latencies, ms
	Timestamps           []int64     `json:"timestamps"` // per-outcome start times in accumulation order, epoch ms
}

func computeAggregate(outcomes []Outcome, elapsed time.Duration) Aggregate {
	agg := Aggregate{
		DurationMs: float64(elapsed) / float64(time.Millisecond),
		Latencies:  []float64{},
		Timestamps: make([]int64, 0, len(outcomes)),
	}

	for _, o := range outcomes {
		agg.TotalOperations++
		agg.Timestamps = append(agg.Timestamps, o.StartedAt)
		if o.Success {
			agg.SuccessfulOperations++
			agg.Latencies = append(agg.Latencies, o.LatencyMs)
		} else {
			agg.FailedOperations++
		}
	}

	if agg.TotalOperations > 0 {
		agg.ErrorRate = float64(agg.FailedOperations) / float64(agg.TotalOperations) * 100
	}

	// Degenerate branch: no successful samples means every latency-derived
	// field stays exactly zero, including throughput.
	if agg.SuccessfulOperations == 0 {
		return agg
	}

	if elapsed > 0 {
		agg.Throughput = float64(agg.SuccessfulOperations) / elapsed.Seconds()
	}

	sort.Float64s(agg.Latencies)
	agg.Percentiles = Percentiles{
		P50: quantile(agg.Latencies, 0.50),
		P90: quantile(agg.Latencies, 0.90),
		P95: quantile(agg.Latencies, 0.95),
		P99: quantile(agg.Latencies, 0.99),
	}
	agg.Dispersion = dispersion(agg.Latencies)
	return agg
}

// quantile computes the p-quantile of a sorted sample by linear interpolation
// between order statistics (the R-7 convention).
func quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	h := p * float64(n-1)
	lo := int(math.Floor(h))
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[hi]-sorted[lo])
}

func dispersion(sorted []float64) Dispersion {
	n := len(sorted)
	if n == 0 {
		return Dispersion{}
	}

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(n)

	var stddev float64
	if n > 1 {
		var sq float64
		for _, v := range sorted {
			d := v - mean
			sq += d * d
		}
		stddev = math.Sqrt(sq / float64(n-1))
	}

	return Dispersion{
		Min:    sorted[0],
		Max:    sorted[n-1],
		Mean:   mean,
		Median: quantile(sorted, 0.50),
		StdDev: stddev,
	}
}
