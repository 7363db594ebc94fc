package state

import (
	"context"
	"sync"
)

// HydrationGate blocks chat-dependent composition until every persisted
// partition reports loaded. Each flag flips exactly once per process
// lifetime; the gate never re-blocks after opening.
type HydrationGate struct {
	mu      sync.Mutex
	pending map[string]bool
	ready   chan struct{}
	open    bool
}

func NewHydrationGate(flags ...string) *HydrationGate {
	pending := make(map[string]bool, len(flags))
	for _, f := range flags {
		pending[f] = true
	}
	g := &HydrationGate{
		pending: pending,
		ready:   make(chan struct{}),
	}
	if len(pending) == 0 {
		g.open = true
		close(g.ready)
	}
	return g
}

// MarkReady flips one flag. Unknown or repeated flags are ignored.
func (g *HydrationGate) MarkReady(flag string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.open {
		return
	}
	if !g.pending[flag] {
		return
	}
	delete(g.pending, flag)
	if len(g.pending) == 0 {
		g.open = true
		close(g.ready)
	}
}

func (g *HydrationGate) Ready() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.open
}

// ReadyChan is closed once all flags are set.
func (g *HydrationGate) ReadyChan() <-chan struct{} {
	return g.ready
}

func (g *HydrationGate) Wait(ctx context.Context) error {
	select {
	case <-g.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
