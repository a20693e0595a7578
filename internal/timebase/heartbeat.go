// Package timebase provides the half-second heartbeat that drives colon
// blinking and clock redraws, and the startup wait for a synchronized clock.
package timebase

import (
	"context"
	"sync/atomic"
	"time"
)

// DefaultPeriod is the heartbeat period.
const DefaultPeriod = 500 * time.Millisecond

// Heartbeat holds the two flags shared between the tick source and the
// coordinator loop. Tick touches nothing else and never blocks.
type Heartbeat struct {
	blink  atomic.Bool
	redraw atomic.Bool
	ticks  atomic.Uint64
	wake   chan struct{}
}

// NewHeartbeat returns a heartbeat with blink off and no redraw pending.
func NewHeartbeat() *Heartbeat {
	return &Heartbeat{wake: make(chan struct{}, 1)}
}

// Tick toggles the blink state and requests a redraw. Safe to call from a
// timer goroutine or a GPIO edge handler.
func (h *Heartbeat) Tick() {
	h.blink.Store(!h.blink.Load())
	h.redraw.Store(true)
	h.ticks.Add(1)
	select {
	case h.wake <- struct{}{}:
	default:
	}
}

// Blink returns the current colon state.
func (h *Heartbeat) Blink() bool {
	return h.blink.Load()
}

// TakeRedraw clears the redraw request and reports whether one was pending.
// Requests coalesce: several ticks between calls yield a single redraw.
func (h *Heartbeat) TakeRedraw() bool {
	return h.redraw.Swap(false)
}

// Ticks returns the number of ticks since creation.
func (h *Heartbeat) Ticks() uint64 {
	return h.ticks.Load()
}

// Wake is signalled after every tick. Missed signals coalesce.
func (h *Heartbeat) Wake() <-chan struct{} {
	return h.wake
}

// RunTicker ticks h every period until ctx is done.
func RunTicker(ctx context.Context, h *Heartbeat, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Tick()
		}
	}
}
