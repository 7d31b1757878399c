package session

import (
	"sync"
	"time"
)

// coalescer collapses bursts of update deliveries into at most one per
// window. Only the most recent update scheduled within a window is
// delivered when it elapses; earlier ones are superseded. A zero window
// delivers synchronously, which keeps the reducer testable without
// wall-clock timing.
type coalescer struct {
	window time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending func()
}

func newCoalescer(window time.Duration) *coalescer {
	return &coalescer{window: window}
}

// Schedule registers an update for delivery. Delivery is serialized under
// the coalescer's lock so a timer flush and a terminal flush never
// interleave.
func (c *coalescer) Schedule(deliver func()) {
	if c.window <= 0 {
		c.mu.Lock()
		defer c.mu.Unlock()
		deliver()
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = deliver
	if c.timer == nil {
		c.timer = time.AfterFunc(c.window, c.deliverPending)
	}
}

func (c *coalescer) deliverPending() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timer = nil
	if deliver := c.pending; deliver != nil {
		c.pending = nil
		deliver()
	}
}

// Flush delivers any pending update immediately. Called at turn end so the
// last content update is never lost to an open window.
func (c *coalescer) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if deliver := c.pending; deliver != nil {
		c.pending = nil
		deliver()
	}
}
