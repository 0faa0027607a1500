// Package runner provides the load-orchestration engine for rpcsurge.
//
// The [Orchestrator] owns a pool of client session handles and drives N
// concurrent workflow executions under one of two scheduling policies:
//
//   - [Orchestrator.RunBurst]: fixed concurrency with an optional staggered
//     start (ramp-up), ending when every launched workflow settles.
//   - [Orchestrator.RunSustained]: fixed concurrency where each client
//     repeats its workflow until a wall-clock deadline.
//
// # Outcome funneling
//
// Every workflow execution feeds its outcomes into the shared
// [metrics.Engine]. Per-operation failures never abort a run; even a run at
// a 100% error rate completes and reports. An unexpected error escaping the
// executor is converted into a single synthetic zero-latency failure outcome.
// Only configuration failures ([ErrConfiguration]) abort before any work is
// scheduled.
//
// # Concurrency model
//
// One goroutine per client handle; handles are never shared between
// concurrently running tasks. The only shared mutable state is the metrics
// accumulator, which supports concurrent append. Aggregation happens after
// every task has settled.
//
// # Known limitation
//
// No timeout is enforced on individual remote calls. A hung call hangs the
// owning task indefinitely, and a burst run with it, since the orchestrator
// awaits all tasks. Configure transport-level timeouts if that matters.
package runner
