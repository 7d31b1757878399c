// Package session reconstructs a coherent, displayable answer out of the
// ordered, mixed-content event stream one supervisor turn emits. A Session
// owns at most one in-flight turn: it opens the transport, classifies each
// raw frame, folds the classified events into the turn's StreamState, and
// delivers the resulting notifications through a closed set of callback
// slots. Sessions are independent values; one process can run any number of
// them for concurrent conversations.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/korvuslabs/relay-core/core/protocol"
	"github.com/korvuslabs/relay-core/core/transport"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	// ErrTurnInFlight rejects a send while another turn is streaming. The
	// rejected message is not queued and not retried.
	ErrTurnInFlight = errors.New("turn already in flight")
	// ErrNoTransport rejects a send on a session without a transport.
	ErrNoTransport = errors.New("no transport configured")
	// ErrSessionClosed rejects a send after Close.
	ErrSessionClosed = errors.New("session closed")
)

type Session struct {
	transportClient transport.Client
	updateThrottle  time.Duration
	callbacks       callbacks

	streaming atomic.Bool
	closed    atomic.Bool
	closeOnce sync.Once

	// stateMu guards the turn state. The reducer has exactly one writer
	// (the turn's frame loop); the lock only exists so State can take
	// consistent snapshots between notifications.
	stateMu   sync.RWMutex
	turn      *reducer
	last      StreamState
	contextID string

	streamMu sync.Mutex
	stream   transport.Stream
}

func NewSession(opts ...Option) *Session {
	s := &Session{updateThrottle: defaultUpdateWindow}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SendMessage runs one turn end-to-end: it opens the event stream for the
// given user text, drives every frame through classification and reduction,
// and returns once the stream has ended and the stream-end notification has
// fired. At most one turn per session may be in flight; concurrent sends
// are rejected with [ErrTurnInFlight].
//
// The returned error is the turn's terminal transport error, nil on a clean
// end of stream. An error mid-stream does not forfeit content already
// accumulated: the termination and fallback rules run on every path.
func (s *Session) SendMessage(ctx context.Context, text string, opts ...SendOption) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	if s.transportClient == nil {
		return ErrNoTransport
	}
	if !s.streaming.CompareAndSwap(false, true) {
		logger.WarnContext(ctx, "message rejected: a turn is already in flight")
		return ErrTurnInFlight
	}
	defer s.streaming.Store(false)

	options := sendOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	contextID := s.ConversationContext()
	if options.contextID != nil {
		contextID = *options.contextID
	}

	ctx, span := tracer.Start(ctx, "process turn")
	defer span.End()
	span.SetAttributes(attribute.String("conversation.context_id", contextID))

	turn := newReducer()
	turn.state.ContextID = contextID
	dispatch := newDispatcher(s.callbacks, s.updateThrottle)

	s.stateMu.Lock()
	s.turn = turn
	s.stateMu.Unlock()

	terminate := func(streamErr error) error {
		if fallback := turn.finalize(); fallback != nil {
			span.AddEvent("complete result", trace.WithAttributes(attribute.String("result.origin", string(fallback.origin))))
			dispatch.completeResult(*fallback)
		}

		span.SetAttributes(attribute.Int("turn.event_count", turn.state.EventCount))
		span.SetAttributes(attribute.Bool("turn.has_complete_result", turn.state.HasReceivedCompleteResult))

		s.stateMu.Lock()
		s.last = turn.state
		if turn.state.ContextID != "" {
			s.contextID = turn.state.ContextID
		}
		s.turn = nil
		s.stateMu.Unlock()

		dispatch.streamEnd(turn.state)
		return streamErr
	}

	dispatch.streamStart(turn.state)

	stream, err := s.transportClient.Open(ctx, protocol.NewStreamRequest(text, contextID))
	if err != nil {
		err = fmt.Errorf("failed to open stream: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		dispatch.fail(err)
		return terminate(err)
	}

	s.streamMu.Lock()
	s.stream = stream
	s.streamMu.Unlock()
	defer func() {
		s.streamMu.Lock()
		s.stream = nil
		s.streamMu.Unlock()
	}()

	classify := classifier{}
	var streamErr error
	for raw, err := range stream.Frames(ctx) {
		if err != nil {
			streamErr = fmt.Errorf("stream failed: %w", err)
			span.RecordError(streamErr)
			span.SetStatus(codes.Error, streamErr.Error())
			dispatch.fail(streamErr)
			break
		}

		event, ok, classifyErr := classify.classify(raw)
		if classifyErr != nil {
			span.RecordError(classifyErr)
			dispatch.fail(classifyErr)
			continue
		}
		if !ok {
			continue
		}

		s.stateMu.Lock()
		change := turn.reduce(event)
		snapshot := turn.state
		s.stateMu.Unlock()

		if change.complete != nil {
			span.AddEvent("complete result", trace.WithAttributes(attribute.String("result.origin", string(change.complete.origin))))
			dispatch.completeResult(*change.complete)
		}
		if change.contentUpdated {
			dispatch.contentUpdate(snapshot.AccumulatedText, snapshot)
		}
		dispatch.rawEvent(event)
	}

	return terminate(streamErr)
}

// Cancel aborts the in-flight turn at the transport boundary. It is
// idempotent and a no-op when nothing is streaming. Cancellation does not
// rewind reducer state: text accumulated before the abort stays visible in
// the stream-end snapshot.
func (s *Session) Cancel() {
	s.streamMu.Lock()
	stream := s.stream
	s.streamMu.Unlock()
	if stream != nil {
		stream.Abort()
	}
}

// Close cancels any in-flight turn and rejects further sends.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.Cancel()
	})
}

// State returns a point-in-time snapshot of the current turn's stream
// state, or the previous turn's terminal state when idle. Safe to call
// between notifications at any time.
func (s *Session) State() StreamState {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	if s.turn != nil {
		return s.turn.state
	}
	return s.last
}

// IsStreaming reports whether a turn is in flight.
func (s *Session) IsStreaming() bool {
	return s.streaming.Load()
}

// ConversationContext returns the conversation context id the session last
// observed, empty before the protocol assigns one.
func (s *Session) ConversationContext() string {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.contextID
}
