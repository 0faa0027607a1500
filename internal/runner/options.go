package runner

import (
	"context"
	"time"

	"github.com/mkrell/rpcsurge/internal/logging"
	"github.com/mkrell/rpcsurge/internal/metrics"
	"github.com/mkrell/rpcsurge/internal/pool"
	"github.com/mkrell/rpcsurge/internal/rpcclient"
)

// WorkflowRunner executes one workflow against a client handle and returns
// its per-step outcomes. Implementations must not panic for modeled step
// failures; anything that does escape is treated as an execution failure.
type WorkflowRunner interface {
	Run(ctx context.Context, s *rpcclient.Session) []metrics.Outcome
}

// Reporter renders a completed run report. Purely observational; it never
// feeds back into metrics.
type Reporter interface {
	Render(report *metrics.Report)
}

// DefaultIdleInterval is the pause between sustained workflow iterations. An
// arbitrary throttle rather than a principled backoff; tunable via Options.
const DefaultIdleInterval = 10 * time.Millisecond

// Options configure the Orchestrator.
type Options struct {
	Pool         *pool.ClientPool // client handle pool (required)
	Executor     WorkflowRunner   // workflow executor (required)
	Engine       *metrics.Engine  // outcome accumulator; created if nil
	Sink         logging.Sink     // leveled log sink; no-op if nil
	Reporter     Reporter         // human-readable report renderer; skipped if nil
	IdleInterval time.Duration    // sustained loop throttle; DefaultIdleInterval if <= 0
}

func (o *Options) normalize() {
	if o.Engine == nil {
		o.Engine = metrics.NewEngine()
	}
	if o.Sink == nil {
		o.Sink = logging.NopSink{}
	}
	if o.IdleInterval <= 0 {
		o.IdleInterval = DefaultIdleInterval
	}
}

// RunConfig carries the load parameters for one orchestrated run. Duration
// applies only to sustained runs; Iterations and RampUp only to burst runs.
// The scheduling policy is selected by the entry point called, never by
// which optional fields are set.
type RunConfig struct {
	Concurrency int
	Duration    time.Duration
	Iterations  int
	RampUp      time.Duration
}
