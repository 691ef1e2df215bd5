package usecases

import "sync"

// LoadGate defers mutations until the render surface finishes first-time
// initialization. Before the ready signal, operations accumulate in a FIFO
// waiter list; the signal fires each exactly once in registration order,
// then flips the flag permanently and discards the list. After that, every
// operation runs synchronously. There is no de-duplication: registering the
// same operation twice runs it twice.
type LoadGate struct {
	mu      sync.Mutex
	ready   bool
	waiters []func()
}

// NewLoadGate creates a gate in the not-ready state.
func NewLoadGate() *LoadGate {
	return &LoadGate{}
}

// RunWhenReady invokes op synchronously if the gate is open, otherwise
// queues it. Operations queued concurrently are never lost and never
// overwrite one another.
func (g *LoadGate) RunWhenReady(op func()) {
	g.mu.Lock()
	if !g.ready {
		g.waiters = append(g.waiters, op)
		g.mu.Unlock()
		return
	}
	g.mu.Unlock()
	op()
}

// NotifyReady opens the gate and runs all queued operations in FIFO order.
// Only the first call has any effect.
func (g *LoadGate) NotifyReady() {
	g.mu.Lock()
	if g.ready {
		g.mu.Unlock()
		return
	}
	g.ready = true
	waiters := g.waiters
	g.waiters = nil
	g.mu.Unlock()

	// Run outside the lock so a waiter may register follow-up work
	// without deadlocking; follow-ups run synchronously since the flag
	// is already flipped.
	for _, op := range waiters {
		op()
	}
}

// Ready reports whether the gate is open.
func (g *LoadGate) Ready() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ready
}
