package pool_test

import (
	"context"
	"errors"
	"testing"

	"github.com/mkrell/rpcsurge/internal/pool"
	"github.com/mkrell/rpcsurge/internal/rpcclient"
)

func TestEnsureCapacityGrowsOnly(t *testing.T) {
	created := 0
	p := pool.New(func(_ context.Context, id int) (*rpcclient.Session, error) {
		created++
		return &rpcclient.Session{ID: id}, nil
	})

	if err := p.EnsureCapacity(context.Background(), 4); err != nil {
		t.Fatalf("EnsureCapacity: %v", err)
	}
	if p.Size() != 4 {
		t.Errorf("expected size 4, got %d", p.Size())
	}

	// Asking for less must not shrink or recreate anything.
	if err := p.EnsureCapacity(context.Background(), 2); err != nil {
		t.Fatalf("EnsureCapacity: %v", err)
	}
	if p.Size() != 4 {
		t.Errorf("expected size 4 after smaller request, got %d", p.Size())
	}
	if created != 4 {
		t.Errorf("expected 4 factory calls, got %d", created)
	}

	// Growing creates only the missing handles.
	if err := p.EnsureCapacity(context.Background(), 6); err != nil {
		t.Fatalf("EnsureCapacity: %v", err)
	}
	if created != 6 {
		t.Errorf("expected 6 factory calls, got %d", created)
	}
}

func TestSessionIDsMatchPoolIndex(t *testing.T) {
	p := pool.New(func(_ context.Context, id int) (*rpcclient.Session, error) {
		return &rpcclient.Session{ID: id}, nil
	})
	if err := p.EnsureCapacity(context.Background(), 3); err != nil {
		t.Fatalf("EnsureCapacity: %v", err)
	}

	for i := 0; i < 3; i++ {
		s := p.Session(i)
		if s == nil {
			t.Fatalf("expected session at index %d", i)
		}
		if s.ID != i {
			t.Errorf("session %d: expected ID %d, got %d", i, i, s.ID)
		}
	}
	if p.Session(3) != nil {
		t.Error("expected nil for out-of-range index")
	}
	if p.Session(-1) != nil {
		t.Error("expected nil for negative index")
	}
}

func TestEnsureCapacityKeepsPartialProgress(t *testing.T) {
	failAfter := 2
	p := pool.New(func(_ context.Context, id int) (*rpcclient.Session, error) {
		if id >= failAfter {
			return nil, errors.New("dial failed")
		}
		return &rpcclient.Session{ID: id}, nil
	})

	err := p.EnsureCapacity(context.Background(), 5)
	if err == nil {
		t.Fatal("expected provisioning error")
	}
	if p.Size() != 2 {
		t.Errorf("expected partial progress of 2 handles, got %d", p.Size())
	}

	// A retry after the fault clears resumes from where it stopped.
	failAfter = 5
	if err := p.EnsureCapacity(context.Background(), 5); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if p.Size() != 5 {
		t.Errorf("expected size 5 after retry, got %d", p.Size())
	}
}

func TestResetEmptiesPool(t *testing.T) {
	p := pool.New(func(_ context.Context, id int) (*rpcclient.Session, error) {
		return &rpcclient.Session{ID: id}, nil
	})
	if err := p.EnsureCapacity(context.Background(), 3); err != nil {
		t.Fatalf("EnsureCapacity: %v", err)
	}

	if err := p.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if p.Size() != 0 {
		t.Errorf("expected empty pool after reset, got %d", p.Size())
	}
}

func TestEnsureCapacityHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := pool.New(func(_ context.Context, id int) (*rpcclient.Session, error) {
		return &rpcclient.Session{ID: id}, nil
	})

	if err := p.EnsureCapacity(ctx, 3); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if p.Size() != 0 {
		t.Errorf("expected no handles created, got %d", p.Size())
	}
}
