// Package pool manages the set of client session handles a run executes on.
package pool

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/mkrell/rpcsurge/internal/rpcclient"
)

// Factory provisions one session handle. It is invoked with the handle's
// pool index.
type Factory func(ctx context.Context, id int) (*rpcclient.Session, error)

// ClientPool owns a grow-only slice of session handles. The orchestrator is
// the sole mutator: EnsureCapacity grows the pool before scheduling, Reset
// shrinks it to zero between runs. Handles are never shared between
// concurrently running tasks; the pool size equals the concurrency level.
type ClientPool struct {
	mu       sync.Mutex
	factory  Factory
	sessions []*rpcclient.Session
}

// New creates an empty pool backed by the given factory.
func New(factory Factory) *ClientPool {
	return &ClientPool{factory: factory}
}

// EnsureCapacity grows the pool until it holds at least n handles. It never
// shrinks. On a factory error the handles created so far are kept, so a retry
// resumes where it stopped.
func (p *ClientPool) EnsureCapacity(ctx context.Context, n int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for len(p.sessions) < n {
		if err := ctx.Err(); err != nil {
			return err
		}
		s, err := p.factory(ctx, len(p.sessions))
		if err != nil {
			return fmt.Errorf("provision client %d: %w", len(p.sessions), err)
		}
		p.sessions = append(p.sessions, s)
	}
	return nil
}

// Size returns the current number of handles.
func (p *ClientPool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sessions)
}

// Session returns the handle at index i, or nil if the pool is smaller.
func (p *ClientPool) Session(i int) *rpcclient.Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	if i < 0 || i >= len(p.sessions) {
		return nil
	}
	return p.sessions[i]
}

// Reset closes and discards every handle. Only valid between runs.
func (p *ClientPool) Reset() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []string
	for _, s := range p.sessions {
		if err := s.Close(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	p.sessions = nil

	if len(errs) > 0 {
		return fmt.Errorf("pool close errors: %s", strings.Join(errs, "; "))
	}
	return nil
}
