package threshold_test

import (
	"testing"

	"github.com/mkrell/rpcsurge/internal/metrics"
	"github.com/mkrell/rpcsurge/internal/threshold"
)

func sampleAggregate() metrics.Aggregate {
	return metrics.Aggregate{
		TotalOperations:      100,
		SuccessfulOperations: 95,
		FailedOperations:     5,
		Throughput:           50,
		ErrorRate:            5,
		Percentiles: metrics.Percentiles{
			P50: 100,
			P90: 200,
			P95: 250,
			P99: 400,
		},
		Dispersion: metrics.Dispersion{
			Min:    10,
			Max:    500,
			Mean:   120,
			Median: 100,
		},
	}
}

func TestParseValidThresholds(t *testing.T) {
	cases := []struct {
		input     string
		metric    string
		aggregate string
		operator  string
		value     float64
	}{
		{"op_duration:p95 < 500", "op_duration", "p95", "<", 500},
		{"op_duration:avg<=200", "op_duration", "avg", "<=", 200},
		{"op_duration:med < 150", "op_duration", "med", "<", 150},
		{"op_failed:rate < 0.01", "op_failed", "rate", "<", 0.01},
		{"op_failed:count == 0", "op_failed", "count", "==", 0},
		{"ops:rate > 100", "ops", "rate", ">", 100},
	}

	for _, tc := range cases {
		got, err := threshold.Parse(tc.input)
		if err != nil {
			t.Errorf("Parse(%q): %v", tc.input, err)
			continue
		}
		if got.Metric != tc.metric || got.Aggregate != tc.aggregate || got.Operator != tc.operator || got.Value != tc.value {
			t.Errorf("Parse(%q) = %+v", tc.input, got)
		}
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	invalid := []string{
		"",
		"op_duration",
		"op_duration:p95",
		"bogus:p95 < 500",
		"op_duration:p42 < 500",
		"op_duration:p95 ~ 500",
	}
	for _, s := range invalid {
		if _, err := threshold.Parse(s); err == nil {
			t.Errorf("Parse(%q): expected error", s)
		}
	}
}

func TestParseMultipleCollectsErrors(t *testing.T) {
	_, err := threshold.ParseMultiple([]string{"op_duration:p95 < 500", "nope"})
	if err == nil {
		t.Error("expected aggregated parse error")
	}

	parsed, err := threshold.ParseMultiple([]string{"op_duration:p95 < 500", "ops:rate > 10"})
	if err != nil {
		t.Fatalf("ParseMultiple: %v", err)
	}
	if len(parsed) != 2 {
		t.Errorf("expected 2 thresholds, got %d", len(parsed))
	}
}

func TestEvaluateAgainstAggregate(t *testing.T) {
	cases := []struct {
		input  string
		actual float64
		pass   bool
	}{
		{"op_duration:p95 < 500", 250, true},
		{"op_duration:p95 < 200", 250, false},
		{"op_duration:p99 <= 400", 400, true},
		{"op_duration:avg < 100", 120, false},
		{"op_duration:med <= 100", 100, true},
		{"op_duration:max < 1000", 500, true},
		{"op_failed:rate < 0.1", 0.05, true},
		{"op_failed:count == 5", 5, true},
		{"ops:rate > 40", 50, true},
		{"ops:count >= 100", 100, true},
	}

	agg := sampleAggregate()
	for _, tc := range cases {
		th, err := threshold.Parse(tc.input)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tc.input, err)
		}
		results := threshold.NewEvaluator([]threshold.Threshold{th}).Evaluate(agg)
		if len(results) != 1 {
			t.Fatalf("%q: expected 1 result", tc.input)
		}
		r := results[0]
		if r.Actual != tc.actual {
			t.Errorf("%q: actual = %v, want %v", tc.input, r.Actual, tc.actual)
		}
		if r.Pass != tc.pass {
			t.Errorf("%q: pass = %v, want %v", tc.input, r.Pass, tc.pass)
		}
	}
}

func TestAllPassed(t *testing.T) {
	if !threshold.AllPassed(nil) {
		t.Error("no thresholds means all passed")
	}
	results := []threshold.Result{{Pass: true}, {Pass: false}}
	if threshold.AllPassed(results) {
		t.Error("expected AllPassed to be false with one failure")
	}
}

func TestEvaluateEmptyThresholds(t *testing.T) {
	if got := threshold.NewEvaluator(nil).Evaluate(sampleAggregate()); got != nil {
		t.Errorf("expected nil results, got %v", got)
	}
}
