package follow

import (
	"context"
	"sync/atomic"
	"time"
)

// Gate is the pause flag shared by both cursors of a session
type Gate struct {
	paused atomic.Bool
}

// Pause stops both cursors at their next tick
func (g *Gate) Pause() { g.paused.Store(true) }

// Resume lets both cursors continue from their current offsets
func (g *Gate) Resume() { g.paused.Store(false) }

// Toggle flips the flag and returns the new paused state
func (g *Gate) Toggle() bool {
	for {
		old := g.paused.Load()
		if g.paused.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// Paused reports whether the gate is closed
func (g *Gate) Paused() bool { return g.paused.Load() }

// sleep waits for d, returning false if ctx ended first. A value on wake
// ends the wait early; wake may be nil.
func sleep(ctx context.Context, d time.Duration, wake <-chan struct{}) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	case <-wake:
		return ctx.Err() == nil
	}
}
