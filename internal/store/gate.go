package store

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Gate serializes every caller that touches a catalog file onto a single
// logical connection. SQLite supports one writer at a time; the gate makes
// that explicit and lets waiting callers give up through their context.
//
// A Gate is owned by whoever opens stores. Stores sharing a Gate are
// serialized together.
type Gate struct {
	sem *semaphore.Weighted
}

// NewGate returns a gate with capacity one.
func NewGate() *Gate {
	return &Gate{sem: semaphore.NewWeighted(1)}
}

// Acquire blocks until the gate is free or ctx is done.
func (g *Gate) Acquire(ctx context.Context) error {
	return g.sem.Acquire(ctx, 1)
}

// TryAcquire takes the gate only if it is free.
func (g *Gate) TryAcquire() bool {
	return g.sem.TryAcquire(1)
}

// Release frees the gate.
func (g *Gate) Release() {
	g.sem.Release(1)
}
