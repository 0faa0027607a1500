package metrics_test

import (
	"math"
	"testing"
	"time"

	"github.com/mkrell/rpcsurge/internal/metrics"
)

func success(latencyMs float64) metrics.Outcome {
	return metrics.NewSuccess(metrics.StepInitialize, time.Now(), time.Duration(latencyMs*float64(time.Millisecond)))
}

func failure() metrics.Outcome {
	return metrics.NewFailure(metrics.StepAcknowledge, time.Now(), nil)
}

func approx(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s: got %v, want %v", name, got, want)
	}
}

func TestAggregateCounts(t *testing.T) {
	e := metrics.NewEngine()
	e.Record(success(10))
	e.Record(success(20))
	e.Record(success(30))
	e.Record(failure())

	agg := e.Aggregate(time.Second)

	if agg.TotalOperations != 4 {
		t.Errorf("expected total 4, got %d", agg.TotalOperations)
	}
	if agg.SuccessfulOperations != 3 {
		t.Errorf("expected successes 3, got %d", agg.SuccessfulOperations)
	}
	if agg.FailedOperations != 1 {
		t.Errorf("expected failures 1, got %d", agg.FailedOperations)
	}
	if agg.SuccessfulOperations+agg.FailedOperations != agg.TotalOperations {
		t.Errorf("success + failure != total")
	}
	approx(t, "error rate", agg.ErrorRate, 25)
	approx(t, "throughput", agg.Throughput, 3)
}

func TestQuantilesLinearInterpolation(t *testing.T) {
	e := metrics.NewEngine()
	for _, ms := range []float64{10, 20, 30, 40} {
		e.Record(success(ms))
	}

	agg := e.Aggregate(time.Second)

	// Interpolated between order statistics: h = p*(n-1).
	approx(t, "p50", agg.Percentiles.P50, 25)
	approx(t, "p90", agg.Percentiles.P90, 37)
	approx(t, "p95", agg.Percentiles.P95, 38.5)
	approx(t, "p99", agg.Percentiles.P99, 39.7)
}

func TestQuantileSingleSample(t *testing.T) {
	e := metrics.NewEngine()
	e.Record(success(42))

	agg := e.Aggregate(time.Second)

	approx(t, "p50", agg.Percentiles.P50, 42)
	approx(t, "p99", agg.Percentiles.P99, 42)
	approx(t, "median", agg.Dispersion.Median, 42)
	approx(t, "stddev", agg.Dispersion.StdDev, 0)
}

func TestPercentileMonotonicity(t *testing.T) {
	e := metrics.NewEngine()
	for i := 1; i <= 100; i++ {
		e.Record(success(float64(i)))
	}

	p := e.Aggregate(time.Second).Percentiles
	if p.P50 > p.P90 || p.P90 > p.P95 || p.P95 > p.P99 {
		t.Errorf("percentiles not monotonic: %+v", p)
	}
}

func TestDispersionStats(t *testing.T) {
	e := metrics.NewEngine()
	for _, ms := range []float64{10, 20, 30} {
		e.Record(success(ms))
	}

	d := e.Aggregate(time.Second).Dispersion

	approx(t, "min", d.Min, 10)
	approx(t, "max", d.Max, 30)
	approx(t, "mean", d.Mean, 20)
	approx(t, "median", d.Median, 20)
	// Sample standard deviation: sqrt((100 + 0 + 100) / 2).
	approx(t, "stddev", d.StdDev, 10)
}

func TestAllFailuresDegenerate(t *testing.T) {
	e := metrics.NewEngine()
	for i := 0; i < 5; i++ {
		e.Record(failure())
	}

	agg := e.Aggregate(time.Second)

	if agg.TotalOperations != 5 || agg.FailedOperations != 5 {
		t.Fatalf("unexpected counts: %+v", agg)
	}
	approx(t, "error rate", agg.ErrorRate, 100)
	approx(t, "throughput", agg.Throughput, 0)
	approx(t, "p50", agg.Percentiles.P50, 0)
	approx(t, "p99", agg.Percentiles.P99, 0)
	approx(t, "min", agg.Dispersion.Min, 0)
	approx(t, "max", agg.Dispersion.Max, 0)
	approx(t, "mean", agg.Dispersion.Mean, 0)
	approx(t, "stddev", agg.Dispersion.StdDev, 0)
}

func TestEmptyAggregate(t *testing.T) {
	e := metrics.NewEngine()

	agg := e.Aggregate(time.Second)

	if agg.TotalOperations != 0 {
		t.Errorf("expected zero operations, got %d", agg.TotalOperations)
	}
	approx(t, "error rate", agg.ErrorRate, 0)
	approx(t, "throughput", agg.Throughput, 0)
}

func TestFailureLatencyExcluded(t *testing.T) {
	e := metrics.NewEngine()
	e.Record(success(100))
	e.Record(failure())

	d := e.Aggregate(time.Second).Dispersion

	// Failures carry zero latency but must not drag the min down.
	approx(t, "min", d.Min, 100)
	approx(t, "mean", d.Mean, 100)
}
