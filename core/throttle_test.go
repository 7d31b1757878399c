package session

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestZeroWindowDeliversSynchronously(t *testing.T) {
	c := newCoalescer(0)

	delivered := 0
	c.Schedule(func() { delivered++ })
	c.Schedule(func() { delivered++ })

	if delivered != 2 {
		t.Fatalf("expected synchronous delivery with a zero window, got %d deliveries", delivered)
	}
}

func TestWindowCoalescesToMostRecent(t *testing.T) {
	c := newCoalescer(20 * time.Millisecond)

	var delivered atomic.Int32
	var lastValue atomic.Int32
	for i := 1; i <= 5; i++ {
		value := int32(i)
		c.Schedule(func() {
			delivered.Add(1)
			lastValue.Store(value)
		})
	}

	time.Sleep(100 * time.Millisecond)
	if got := delivered.Load(); got != 1 {
		t.Fatalf("expected one coalesced delivery, got %d", got)
	}
	if got := lastValue.Load(); got != 5 {
		t.Fatalf("expected the most recent update to win, got %d", got)
	}
}

func TestFlushDeliversPendingImmediately(t *testing.T) {
	c := newCoalescer(time.Hour)

	var delivered atomic.Int32
	c.Schedule(func() { delivered.Add(1) })
	c.Flush()

	if got := delivered.Load(); got != 1 {
		t.Fatalf("expected flush to deliver the pending update, got %d deliveries", got)
	}

	// Nothing pending: flush is a no-op and the stopped timer never fires.
	c.Flush()
	time.Sleep(20 * time.Millisecond)
	if got := delivered.Load(); got != 1 {
		t.Fatalf("expected no extra deliveries, got %d", got)
	}
}

func TestWindowReopensAfterDelivery(t *testing.T) {
	c := newCoalescer(10 * time.Millisecond)

	var delivered atomic.Int32
	c.Schedule(func() { delivered.Add(1) })
	time.Sleep(50 * time.Millisecond)
	c.Schedule(func() { delivered.Add(1) })
	time.Sleep(50 * time.Millisecond)

	if got := delivered.Load(); got != 2 {
		t.Fatalf("expected one delivery per window, got %d", got)
	}
}
