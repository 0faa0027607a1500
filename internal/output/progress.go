package output

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/mkrell/rpcsurge/internal/metrics"
)

// ProgressReporter displays real-time progress updates from a live engine
// snapshot.
type ProgressReporter struct {
	engine   *metrics.Engine
	ticker   *time.Ticker
	done     chan struct{}
	finished chan struct{}
	writer   io.Writer
	active   int32
	start    time.Time
}

// NewProgressReporter creates a progress reporter that updates at the given interval.
func NewProgressReporter(engine *metrics.Engine, interval time.Duration, writer io.Writer) *ProgressReporter {
	if writer == nil {
		writer = io.Discard
	}
	return &ProgressReporter{
		engine:   engine,
		ticker:   time.NewTicker(interval),
		done:     make(chan struct{}),
		finished: make(chan struct{}),
		writer:   writer,
		start:    time.Now(),
	}
}

// Start begins displaying progress updates in a background goroutine.
func (p *ProgressReporter) Start() {
	if !atomic.CompareAndSwapInt32(&p.active, 0, 1) {
		return // already running
	}
	go p.run()
}

// Stop halts progress updates.
func (p *ProgressReporter) Stop() {
	if atomic.CompareAndSwapInt32(&p.active, 1, 0) {
		close(p.done)
		p.ticker.Stop()
		<-p.finished
	}
}

func (p *ProgressReporter) run() {
	defer close(p.finished)
	for {
		select {
		case <-p.ticker.C:
			elapsed := time.Since(p.start)
			snap := p.engine.Snapshot(elapsed)
			fmt.Fprintf(p.writer,
				"\rOperations: %d | Successes: %d | Failures: %d | Ops/s: %.1f | P50: %.1fms | P99: %.1fms",
				snap.Total, snap.Successes, snap.Failures, snap.OpsPerSec, snap.P50Ms, snap.P99Ms)
		case <-p.done:
			return
		}
	}
}
