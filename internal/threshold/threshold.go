// Package threshold evaluates performance assertions against a completed
// run's aggregate metrics.
package threshold

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/mkrell/rpcsurge/internal/metrics"
)

// Threshold represents a performance assertion that can pass or fail.
type Threshold struct {
	Metric    string  // e.g., "op_duration", "op_failed"
	Aggregate string  // e.g., "p95", "p99", "avg", "max", "rate"
	Operator  string  // e.g., "<", "<=", ">", ">=", "=="
	Value     float64 // The threshold value to compare against
	Raw       string  // Original threshold string for display
}

// Result represents the outcome of evaluating a threshold.
type Result struct {
	Threshold Threshold
	Actual    float64
	Pass      bool
	Message   string
}

// Evaluator evaluates thresholds against aggregated run metrics.
type Evaluator struct {
	thresholds []Threshold
}

// NewEvaluator creates a new threshold evaluator.
func NewEvaluator(thresholds []Threshold) *Evaluator {
	return &Evaluator{
		thresholds: thresholds,
	}
}

// Evaluate checks all thresholds against the provided aggregate.
func (e *Evaluator) Evaluate(agg metrics.Aggregate) []Result {
	if len(e.thresholds) == 0 {
		return nil
	}

	results := make([]Result, 0, len(e.thresholds))
	for _, t := range e.thresholds {
		results = append(results, e.evaluateOne(t, agg))
	}
	return results
}

func (e *Evaluator) evaluateOne(t Threshold, agg metrics.Aggregate) Result {
	actual, err := extractMetricValue(t, agg)
	if err != nil {
		return Result{
			Threshold: t,
			Actual:    0,
			Pass:      false,
			Message:   fmt.Sprintf("error: %v", err),
		}
	}

	pass := compareValues(actual, t.Operator, t.Value)
	status := "✓"
	if !pass {
		status = "✗"
	}

	return Result{
		Threshold: t,
		Actual:    actual,
		Pass:      pass,
		Message:   fmt.Sprintf("%s %s: %.2f %s %.2f", status, t.Raw, actual, t.Operator, t.Value),
	}
}

// AllPassed reports whether every result passed.
func AllPassed(results []Result) bool {
	for _, r := range results {
		if !r.Pass {
			return false
		}
	}
	return true
}

var thresholdPattern = regexp.MustCompile(`^([a-z_]+):([a-z0-9]+)\s*([<>=!]+)\s*([0-9.]+)$`)

// Parse parses a threshold string into a Threshold struct.
// Supported formats:
// - "op_duration:p95 < 500"   (latency percentile in ms)
// - "op_duration:avg < 200"   (mean latency in ms)
// - "op_duration:max < 1000"  (max latency in ms)
// - "op_failed:rate < 0.01"   (failure rate as decimal)
// - "op_failed:count < 10"    (failure count)
// - "ops:rate > 100"          (successful operations per second)
func Parse(s string) (Threshold, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Threshold{}, fmt.Errorf("empty threshold string")
	}

	matches := thresholdPattern.FindStringSubmatch(s)
	if matches == nil {
		return Threshold{}, fmt.Errorf("invalid threshold format: %q (expected format: metric:aggregate operator value, e.g., 'op_duration:p95 < 500')", s)
	}

	metric := matches[1]
	aggregate := matches[2]
	operator := matches[3]
	valueStr := matches[4]

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return Threshold{}, fmt.Errorf("invalid threshold value %q: %v", valueStr, err)
	}

	if !isValidMetric(metric) {
		return Threshold{}, fmt.Errorf("unsupported metric: %q (supported: op_duration, op_failed, ops)", metric)
	}
	if !isValidAggregate(aggregate) {
		return Threshold{}, fmt.Errorf("unsupported aggregate: %q (supported: p50, p90, p95, p99, avg, min, max, rate, count)", aggregate)
	}
	if !isValidOperator(operator) {
		return Threshold{}, fmt.Errorf("unsupported operator: %q (supported: <, <=, >, >=, ==)", operator)
	}

	return Threshold{
		Metric:    metric,
		Aggregate: aggregate,
		Operator:  operator,
		Value:     value,
		Raw:       s,
	}, nil
}

// ParseMultiple parses multiple threshold strings.
func ParseMultiple(thresholds []string) ([]Threshold, error) {
	if len(thresholds) == 0 {
		return nil, nil
	}

	result := make([]Threshold, 0, len(thresholds))
	var errors []string

	for i, s := range thresholds {
		t, err := Parse(s)
		if err != nil {
			errors = append(errors, fmt.Sprintf("threshold[%d]: %v", i, err))
			continue
		}
		result = append(result, t)
	}

	if len(errors) > 0 {
		return nil, fmt.Errorf("threshold parsing errors: %s", strings.Join(errors, "; "))
	}

	return result, nil
}

func isValidMetric(metric string) bool {
	switch metric {
	case "op_duration", "op_failed", "ops":
		return true
	}
	return false
}

func isValidAggregate(aggregate string) bool {
	switch aggregate {
	case "p50", "p90", "p95", "p99", "avg", "med", "min", "max", "rate", "count":
		return true
	}
	return false
}

func isValidOperator(operator string) bool {
	switch operator {
	case "<", "<=", ">", ">=", "==":
		return true
	}
	return false
}

func extractMetricValue(t Threshold, agg metrics.Aggregate) (float64, error) {
	switch t.Metric {
	case "op_duration":
		return extractLatencyMetric(t.Aggregate, agg)
	case "op_failed":
		return extractFailureMetric(t.Aggregate, agg)
	case "ops":
		return extractOperationMetric(t.Aggregate, agg)
	default:
		return 0, fmt.Errorf("unknown metric: %s", t.Metric)
	}
}

func extractLatencyMetric(aggregate string, agg metrics.Aggregate) (float64, error) {
	switch aggregate {
	case "p50":
		return agg.Percentiles.P50, nil
	case "p90":
		return agg.Percentiles.P90, nil
	case "p95":
		return agg.Percentiles.P95, nil
	case "p99":
		return agg.Percentiles.P99, nil
	case "avg", "mean":
		return agg.Dispersion.Mean, nil
	case "med":
		return agg.Dispersion.Median, nil
	case "min":
		return agg.Dispersion.Min, nil
	case "max":
		return agg.Dispersion.Max, nil
	default:
		return 0, fmt.Errorf("unsupported aggregate %q for op_duration", aggregate)
	}
}

func extractFailureMetric(aggregate string, agg metrics.Aggregate) (float64, error) {
	switch aggregate {
	case "count":
		return float64(agg.FailedOperations), nil
	case "rate":
		if agg.TotalOperations == 0 {
			return 0, nil
		}
		return float64(agg.FailedOperations) / float64(agg.TotalOperations), nil
	default:
		return 0, fmt.Errorf("unsupported aggregate %q for op_failed (use 'count' or 'rate')", aggregate)
	}
}

func extractOperationMetric(aggregate string, agg metrics.Aggregate) (float64, error) {
	switch aggregate {
	case "count":
		return float64(agg.TotalOperations), nil
	case "rate":
		return agg.Throughput, nil
	default:
		return 0, fmt.Errorf("unsupported aggregate %q for ops (use 'count' or 'rate')", aggregate)
	}
}

func compareValues(actual float64, operator string, expected float64) bool {
	// Epsilon absorbs floating point noise on the boundary comparisons.
	epsilon := 1e-9

	switch operator {
	case "<":
		return actual < expected
	case "<=":
		return actual <= expected || math.Abs(actual-expected) < epsilon
	case ">":
		return actual > expected
	case ">=":
		return actual >= expected || math.Abs(actual-expected) < epsilon
	case "==":
		return math.Abs(actual-expected) < epsilon
	default:
		return false
	}
}
