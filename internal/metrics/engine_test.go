package metrics_test

import (
	"sync"
	"testing"
	"time"

	"github.com/mkrell/rpcsurge/internal/metrics"
)

func TestEngineConcurrentRecording(t *testing.T) {
	e := metrics.NewEngine()

	const producers = 8
	const batches = 50

	var wg sync.WaitGroup
	wg.Add(producers)
	for p := 0; p < producers; p++ {
		go func() {
			defer wg.Done()
			for b := 0; b < batches; b++ {
				e.RecordBatch([]metrics.Outcome{
					success(10),
					success(20),
					failure(),
				})
			}
		}()
	}
	wg.Wait()

	if got := e.Len(); got != producers*batches*3 {
		t.Errorf("expected %d outcomes, got %d", producers*batches*3, got)
	}

	snap := e.Snapshot(time.Second)
	if snap.Successes != producers*batches*2 {
		t.Errorf("expected %d successes, got %d", producers*batches*2, snap.Successes)
	}
	if snap.Failures != producers*batches {
		t.Errorf("expected %d failures, got %d", producers*batches, snap.Failures)
	}
	if snap.Total != snap.Successes+snap.Failures {
		t.Errorf("snapshot total mismatch: %+v", snap)
	}
}

func TestEngineBatchOrderPreserved(t *testing.T) {
	e := metrics.NewEngine()
	e.RecordBatch([]metrics.Outcome{
		metrics.NewSuccess(metrics.StepInitialize, time.Now(), time.Millisecond),
		metrics.NewSuccess(metrics.StepAcknowledge, time.Now(), time.Millisecond),
		metrics.NewSuccess(metrics.StepListOperations, time.Now(), time.Millisecond),
	})

	outcomes := e.Outcomes()
	want := []string{metrics.StepInitialize, metrics.StepAcknowledge, metrics.StepListOperations}
	if len(outcomes) != len(want) {
		t.Fatalf("expected %d outcomes, got %d", len(want), len(outcomes))
	}
	for i, step := range want {
		if outcomes[i].Step != step {
			t.Errorf("outcome %d: expected step %q, got %q", i, step, outcomes[i].Step)
		}
	}
}

func TestEngineReset(t *testing.T) {
	e := metrics.NewEngine()
	e.Record(success(10))
	e.Record(failure())

	e.Reset()

	if e.Len() != 0 {
		t.Errorf("expected empty engine after reset, got %d outcomes", e.Len())
	}
	snap := e.Snapshot(time.Second)
	if snap.Total != 0 || snap.Successes != 0 || snap.Failures != 0 {
		t.Errorf("expected zero snapshot after reset, got %+v", snap)
	}
}

func TestEngineOutcomesReturnsCopy(t *testing.T) {
	e := metrics.NewEngine()
	e.Record(success(10))

	outcomes := e.Outcomes()
	outcomes[0].Step = "mutated"

	if e.Outcomes()[0].Step == "mutated" {
		t.Error("Outcomes must return a copy, not the internal slice")
	}
}

func TestSnapshotThroughput(t *testing.T) {
	e := metrics.NewEngine()
	for i := 0; i < 10; i++ {
		e.Record(success(5))
	}

	snap := e.Snapshot(2 * time.Second)
	if snap.OpsPerSec != 5 {
		t.Errorf("expected 5 ops/sec, got %v", snap.OpsPerSec)
	}
}
