package session

import (
	"time"

	"github.com/korvuslabs/relay-core/core/events"
)

// callbacks is the closed set of notification slots a caller can fill. The
// taxonomy is deliberately enumerated rather than a generic bus so the
// compiler keeps it exhaustive.
type callbacks struct {
	onStreamStart    func(state StreamState)
	onRawEvent       func(event events.Event)
	onContentUpdate  func(text string, state StreamState)
	onCompleteResult func(text string, origin ResultOrigin)
	onError          func(err error)
	onStreamEnd      func(state StreamState)
}

func (c *callbacks) defaults() *callbacks {
	c.onStreamStart = func(StreamState) {}
	c.onRawEvent = func(events.Event) {}
	c.onContentUpdate = func(string, StreamState) {}
	c.onCompleteResult = func(string, ResultOrigin) {}
	c.onError = func(error) {}
	c.onStreamEnd = func(StreamState) {}
	return c
}

func (c *callbacks) with(other callbacks) *callbacks {
	if other.onStreamStart != nil {
		c.onStreamStart = other.onStreamStart
	}
	if other.onRawEvent != nil {
		c.onRawEvent = other.onRawEvent
	}
	if other.onContentUpdate != nil {
		c.onContentUpdate = other.onContentUpdate
	}
	if other.onCompleteResult != nil {
		c.onCompleteResult = other.onCompleteResult
	}
	if other.onError != nil {
		c.onError = other.onError
	}
	if other.onStreamEnd != nil {
		c.onStreamEnd = other.onStreamEnd
	}
	return c
}

// dispatcher delivers reducer transitions to the caller. Content updates
// pass through the coalescer; every other notification is synchronous with
// the transition that produced it, delivered in event order, exactly once
// per logical occurrence.
type dispatcher struct {
	callbacks callbacks
	updates   *coalescer
}

func newDispatcher(cb callbacks, updateWindow time.Duration) *dispatcher {
	return &dispatcher{
		callbacks: *(new(callbacks).defaults().with(cb)),
		updates:   newCoalescer(updateWindow),
	}
}

func (d *dispatcher) streamStart(state StreamState) {
	d.callbacks.onStreamStart(state)
}

func (d *dispatcher) rawEvent(event events.Event) {
	d.callbacks.onRawEvent(event)
}

func (d *dispatcher) contentUpdate(text string, state StreamState) {
	d.updates.Schedule(func() {
		d.callbacks.onContentUpdate(text, state)
	})
}

func (d *dispatcher) completeResult(result completeResult) {
	d.callbacks.onCompleteResult(result.text, result.origin)
}

func (d *dispatcher) fail(err error) {
	d.callbacks.onError(err)
}

// streamEnd flushes any throttled content update and then delivers the
// terminal state snapshot.
func (d *dispatcher) streamEnd(state StreamState) {
	d.updates.Flush()
	d.callbacks.onStreamEnd(state)
}
