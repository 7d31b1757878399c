// Package transport defines the capability the session core consumes to
// reach the supervisor: open one server-initiated event stream per request
// and read raw frames from it until it ends or is aborted.
package transport

import (
	"context"

	"github.com/korvuslabs/relay-core/core/protocol"
)

// RawFrame is one undecoded streamed payload. Frames stay opaque until the
// session's classifier interprets them.
type RawFrame []byte

// Client opens one event stream per turn request.
type Client interface {
	Open(ctx context.Context, req protocol.Request) (Stream, error)
}

// Stream yields the raw frames of one turn.
//
// Frames returns a single-use iterator: it yields frames in arrival order
// and at most one terminal error, then stops. Abort is idempotent and safe
// to call at any time, including after the stream has ended.
type Stream interface {
	Frames(ctx context.Context) func(func(RawFrame, error) bool)
	Abort()
}
