package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/mkrell/rpcsurge/internal/metrics"
	"github.com/mkrell/rpcsurge/internal/rpcclient"
)

// ErrConfiguration marks fatal precondition failures detected before any
// workflow is scheduled. Configuration failures abort the run entirely; all
// other failures are recovered into the metrics stream.
var ErrConfiguration = errors.New("invalid run configuration")

// Orchestrator owns the client pool and drives concurrent workflow executions
// under one of two scheduling policies, funneling every outcome into the
// metrics engine.
type Orchestrator struct {
	opt Options
}

// New creates an Orchestrator.
func New(opt Options) *Orchestrator {
	opt.normalize()
	return &Orchestrator{opt: opt}
}

// Engine exposes the outcome accumulator, mainly for progress displays.
func (o *Orchestrator) Engine() *metrics.Engine {
	return o.opt.Engine
}

// RunBurst executes the burst policy: the pool is grown to at least
// Concurrency handles, then exactly Concurrency workflow tasks are launched,
// each running Iterations workflows (default 1) on its own handle. With a
// positive RampUp the tasks are released in sequence with a fixed
// RampUp/Concurrency delay between releases; the first starts immediately.
// The run settles only when every launched task has finished.
//
// No per-call timeout is enforced: a hung remote call blocks its task, and
// therefore the whole run, indefinitely.
func (o *Orchestrator) RunBurst(ctx context.Context, rc RunConfig) (*metrics.Report, error) {
	if rc.Concurrency < 1 {
		return nil, fmt.Errorf("%w: concurrency must be >= 1", ErrConfiguration)
	}
	if rc.RampUp < 0 {
		return nil, fmt.Errorf("%w: ramp-up must be >= 0", ErrConfiguration)
	}
	iterations := rc.Iterations
	if iterations < 1 {
		iterations = 1
	}

	if err := o.provision(ctx, rc.Concurrency); err != nil {
		return nil, err
	}
	o.opt.Engine.Reset()

	// The limiter's bucket starts full, so the first release is immediate
	// and each subsequent one waits the full inter-release interval.
	var release *rate.Limiter
	if rc.RampUp > 0 {
		release = rate.NewLimiter(rate.Every(rc.RampUp/time.Duration(rc.Concurrency)), 1)
	}

	o.opt.Sink.Debugf("burst run: %d clients, %d iterations each, ramp-up %s", rc.Concurrency, iterations, rc.RampUp)

	startedAt := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < rc.Concurrency; i++ {
		if release != nil {
			if err := release.Wait(ctx); err != nil {
				break
			}
		}
		sess := o.opt.Pool.Session(i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for it := 0; it < iterations; it++ {
				o.runOne(ctx, sess)
				if ctx.Err() != nil {
					return
				}
			}
		}()
	}
	wg.Wait()
	endedAt := time.Now()

	settings := metrics.RunSettings{
		Concurrency:         rc.Concurrency,
		IterationsPerClient: iterations,
		RampUpSeconds:       rc.RampUp.Seconds(),
	}
	return o.finalize(metrics.RunKindBurst, settings, startedAt, endedAt), nil
}

// RunSustained executes the duration-bounded policy: exactly Concurrency
// loops, each repeatedly running the workflow on its assigned handle until
// the wall-clock deadline. The deadline check is cooperative; a loop may
// overrun it by up to one workflow since in-flight work finishes rather than
// being aborted mid-step. A short idle interval between iterations avoids a
// tight spin when operations are much faster than the interval.
func (o *Orchestrator) RunSustained(ctx context.Context, rc RunConfig) (*metrics.Report, error) {
	if rc.Concurrency < 1 {
		return nil, fmt.Errorf("%w: concurrency must be >= 1", ErrConfiguration)
	}
	if rc.Duration <= 0 {
		return nil, fmt.Errorf("%w: sustained runs require a positive duration", ErrConfiguration)
	}

	if err := o.provision(ctx, rc.Concurrency); err != nil {
		return nil, err
	}
	o.opt.Engine.Reset()

	o.opt.Sink.Debugf("sustained run: %d clients for %s", rc.Concurrency, rc.Duration)

	startedAt := time.Now()
	deadline := startedAt.Add(rc.Duration)

	var wg sync.WaitGroup
	wg.Add(rc.Concurrency)
	for i := 0; i < rc.Concurrency; i++ {
		sess := o.opt.Pool.Session(i)
		go func() {
			defer wg.Done()
			for time.Now().Before(deadline) {
				o.runOne(ctx, sess)
				if ctx.Err() != nil {
					return
				}
				select {
				case <-time.After(o.opt.IdleInterval):
				case <-ctx.Done():
					return
				}
			}
		}()
	}
	wg.Wait()
	endedAt := time.Now()

	settings := metrics.RunSettings{
		Concurrency:     rc.Concurrency,
		DurationSeconds: rc.Duration.Seconds(),
	}
	return o.finalize(metrics.RunKindSustained, settings, startedAt, endedAt), nil
}

// provision grows the pool to the requested concurrency. A pool that cannot
// be grown is a configuration failure: nothing has been scheduled yet.
func (o *Orchestrator) provision(ctx context.Context, n int) error {
	if o.opt.Pool == nil {
		return fmt.Errorf("%w: no client pool configured", ErrConfiguration)
	}
	if err := o.opt.Pool.EnsureCapacity(ctx, n); err != nil {
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return nil
}

// runOne executes a single workflow and records its outcomes. An unexpected
// error escaping the executor is converted into one synthetic zero-latency
// failure outcome so it is never silently lost.
func (o *Orchestrator) runOne(ctx context.Context, sess *rpcclient.Session) {
	started := time.Now()
	defer func() {
		if r := recover(); r != nil {
			o.opt.Sink.Errorf("client %d: workflow execution failed: %v", sess.ID, r)
			o.opt.Engine.Record(metrics.NewFailure("workflow", started, fmt.Errorf("execution failure: %v", r)))
		}
	}()
	o.opt.Engine.RecordBatch(o.opt.Executor.Run(ctx, sess))
}

// finalize aggregates over the measured wall time, assembles the report, and
// hands it to the renderer.
func (o *Orchestrator) finalize(kind metrics.RunKind, settings metrics.RunSettings, startedAt, endedAt time.Time) *metrics.Report {
	agg := o.opt.Engine.Aggregate(endedAt.Sub(startedAt))
	report := metrics.NewReport(kind, settings, agg, o.opt.Engine.Outcomes(), startedAt, endedAt)
	if o.opt.Reporter != nil {
		o.opt.Reporter.Render(report)
	}
	return report
}
