package session

import (
	"time"

	"github.com/korvuslabs/relay-core/core/events"
	"github.com/korvuslabs/relay-core/core/transport"
	"github.com/korvuslabs/relay-core/core/transport/sse"
)

// defaultUpdateWindow coalesces content-update bursts when the caller does
// not pick a window.
const defaultUpdateWindow = 100 * time.Millisecond

type Option func(*Session)

// WithTransport sets the transport used to reach the supervisor.
func WithTransport(client transport.Client) Option {
	return func(s *Session) { s.transportClient = client }
}

// WithEndpoint configures the default server-sent-events transport against
// the given endpoint. Use [WithTransport] for anything else.
func WithEndpoint(endpoint string) Option {
	return func(s *Session) { s.transportClient = sse.NewClient(endpoint) }
}

// WithUpdateThrottle sets the coalescing window for content-update
// notifications. Zero means synchronous, immediate delivery.
func WithUpdateThrottle(window time.Duration) Option {
	return func(s *Session) { s.updateThrottle = window }
}

// WithStreamStartCallback registers a callback fired once per turn, before
// the first event is processed.
func WithStreamStartCallback(callback func(state StreamState)) Option {
	return func(s *Session) { s.callbacks.onStreamStart = callback }
}

// WithRawEventCallback registers a callback for every classified event,
// including ones that never touch the accumulated text. Raw events are
// never throttled, so observers can render tool and plan activity
// independent of content accumulation.
func WithRawEventCallback(callback func(event events.Event)) Option {
	return func(s *Session) { s.callbacks.onRawEvent = callback }
}

// WithContentUpdateCallback registers a callback for accumulated-text
// updates. Delivery is coalesced within the configured throttle window;
// the state itself always reflects every event regardless of what gets
// delivered.
func WithContentUpdateCallback(callback func(text string, state StreamState)) Option {
	return func(s *Session) { s.callbacks.onContentUpdate = callback }
}

// WithCompleteResultCallback registers a callback for usable answers,
// tagged with their provenance. Fired for each partial_result, for a
// non-empty final_result, and at most once at turn end for the
// accumulated fallback.
func WithCompleteResultCallback(callback func(text string, origin ResultOrigin)) Option {
	return func(s *Session) { s.callbacks.onCompleteResult = callback }
}

// WithErrorCallback registers a callback for transport and in-stream
// errors. An error does not forfeit content already accumulated; the
// stream-end callback still follows with whatever state exists.
func WithErrorCallback(callback func(err error)) Option {
	return func(s *Session) { s.callbacks.onError = callback }
}

// WithStreamEndCallback registers a callback fired exactly once per turn
// with the terminal state snapshot, regardless of success, error, or
// cancellation.
func WithStreamEndCallback(callback func(state StreamState)) Option {
	return func(s *Session) { s.callbacks.onStreamEnd = callback }
}

type sendOptions struct {
	contextID *string
}

type SendOption func(*sendOptions)

// WithConversationContext pins the turn to a conversation context instead
// of the one the session last observed. An empty id starts a fresh
// conversation.
func WithConversationContext(contextID string) SendOption {
	return func(o *sendOptions) { o.contextID = &contextID }
}
