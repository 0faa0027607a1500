package metrics

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Engine accumulates operation outcomes from concurrent producers.
//
// Recording is append-only behind a mutex; nothing is dropped or duplicated
// under concurrent RecordBatch calls. Aggregation over the raw sample is done
// once all producers have settled (see Aggregate); the embedded histogram only
// serves cheap interim snapshots for progress displays.
type Engine struct {
	mu        sync.Mutex
	outcomes  []Outcome
	hist      *hdrhistogram.Histogram
	successes int64
	failures  int64
}

// NewEngine creates an empty Engine.
func NewEngine() *Engine {
	return &Engine{
		// Track latencies from 1µs up to 60s with 3 significant figures.
		hist: hdrhistogram.New(1, 60_000_000, 3),
	}
}

// Record appends a single outcome.
func (e *Engine) Record(o Outcome) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record(o)
}

// RecordBatch appends all outcomes of one workflow execution atomically, so
// step order within a workflow is preserved in the accumulator.
func (e *Engine) RecordBatch(outcomes []Outcome) {
	if len(outcomes) == 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, o := range outcomes {
		e.record(o)
	}
}

func (e *Engine) record(o Outcome) {
	e.outcomes = append(e.outcomes, o)
	if o.Success {
		e.successes++
		us := int64(o.LatencyMs * 1000)
		if us < e.hist.LowestTrackableValue() {
			us = e.hist.LowestTrackableValue()
		}
		if us > e.hist.HighestTrackableValue() {
			us = e.hist.HighestTrackableValue()
		}
		_ = e.hist.RecordValue(us)
	} else {
		e.failures++
	}
}

// Reset clears all accumulated outcomes. Must be called before reusing the
// engine for a new run, otherwise metrics blend across runs.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.outcomes = nil
	e.successes = 0
	e.failures = 0
	e.hist.Reset()
}

// Len returns the number of accumulated outcomes.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.outcomes)
}

// Outcomes returns a copy of the accumulated outcomes in accumulation order.
func (e *Engine) Outcomes() []Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Outcome, len(e.outcomes))
	copy(out, e.outcomes)
	return out
}

// Snapshot holds interim counters for live progress displays. Percentiles come
// from the histogram and are approximate; the final Aggregate recomputes them
// exactly from the raw sample.
type Snapshot struct {
	Total     int64
	Successes int64
	Failures  int64
	OpsPerSec float64
	P50Ms     float64
	P99Ms     float64
}

// Snapshot returns interim stats for the elapsed wall time so far.
func (e *Engine) Snapshot(elapsed time.Duration) Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Snapshot{
		Total:     e.successes + e.failures,
		Successes: e.successes,
		Failures:  e.failures,
	}
	if elapsed > 0 && e.successes > 0 {
		s.OpsPerSec = float64(e.successes) / elapsed.Seconds()
	}
	if e.hist.TotalCount() > 0 {
		s.P50Ms = float64(e.hist.ValueAtQuantile(50)) / 1000
		s.P99Ms = float64(e.hist.ValueAtQuantile(99)) / 1000
	}
	return s
}

// Aggregate computes the full statistics block over the currently accumulated
// outcomes and the caller-supplied wall-clock duration. It does not mutate
// engine state and may be called repeatedly.
func (e *Engine) Aggregate(elapsed time.Duration) Aggregate {
	return computeAggregate(e.Outcomes(), elapsed)
}
