// Package workflow runs the fixed three-step remote workflow for one client
// handle and converts each step into a timed operation outcome.
package workflow

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/mkrell/rpcsurge/internal/logging"
	"github.com/mkrell/rpcsurge/internal/metrics"
	"github.com/mkrell/rpcsurge/internal/rpcclient"
	"github.com/mkrell/rpcsurge/internal/tracing"
)

// Executor runs one workflow per call: initialize, acknowledge, list
// operations, in that order, each step individually timed.
type Executor struct {
	caller rpcclient.Caller
	sink   logging.Sink
	tracer trace.Tracer
}

// New creates an Executor. A nil sink or tracer falls back to no-ops.
func New(caller rpcclient.Caller, sink logging.Sink, tracer trace.Tracer) *Executor {
	if sink == nil {
		sink = logging.NopSink{}
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("rpcsurge")
	}
	return &Executor{caller: caller, sink: sink, tracer: tracer}
}

// Run executes the workflow once against the given handle.
//
// Steps already completed keep their real latencies (partial credit). The
// first failing step aborts the workflow and contributes exactly one
// additional failure outcome with zero latency and the error's message text;
// remaining steps are not attempted. A workflow therefore yields between one
// and three outcomes, never more.
func (e *Executor) Run(ctx context.Context, s *rpcclient.Session) []metrics.Outcome {
	steps := []struct {
		name string
		call func(context.Context, *rpcclient.Session) error
	}{
		{metrics.StepInitialize, e.caller.Initialize},
		{metrics.StepAcknowledge, e.caller.Acknowledge},
		{metrics.StepListOperations, e.caller.ListOperations},
	}

	outcomes := make([]metrics.Outcome, 0, len(steps))
	for _, step := range steps {
		stepCtx, span := tracing.StartStepSpan(ctx, e.tracer, step.name)
		start := time.Now()
		err := step.call(stepCtx, s)
		latency := time.Since(start)
		tracing.EndSpan(span, err)

		if err != nil {
			e.sink.Debugf("client %d: %s failed: %v", s.ID, step.name, err)
			outcomes = append(outcomes, metrics.NewFailure(step.name, start, err))
			break
		}
		outcomes = append(outcomes, metrics.NewSuccess(step.name, start, latency))
	}
	return outcomes
}
