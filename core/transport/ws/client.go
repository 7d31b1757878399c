// Package ws implements the transport contract over a websocket: one
// connection per turn, the request sent as the first message, frames read
// until the server closes the connection.
package ws

import (
	"context"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/korvuslabs/relay-core/core/protocol"
	"github.com/korvuslabs/relay-core/core/transport"
	"go.opentelemetry.io/otel/attribute"
)

type Client struct {
	endpoint string
	dialer   *websocket.Dialer
}

type ClientOption func(*Client)

// WithDialer replaces the default websocket dialer.
func WithDialer(dialer *websocket.Dialer) ClientOption {
	return func(c *Client) { c.dialer = dialer }
}

// NewClient creates a websocket transport targeting the given endpoint
// (ws:// or wss:// URL).
func NewClient(endpoint string, opts ...ClientOption) *Client {
	client := &Client{endpoint: endpoint, dialer: websocket.DefaultDialer}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Open dials the supervisor and writes the turn request as the first
// message on the connection.
func (c *Client) Open(ctx context.Context, req protocol.Request) (transport.Stream, error) {
	ctx, span := tracer.Start(ctx, "open websocket stream")
	defer span.End()
	span.SetAttributes(attribute.String("request.endpoint", c.endpoint))

	conn, _, err := c.dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		err = fmt.Errorf("failed to open socket connection: %w", err)
		span.RecordError(err)
		return nil, err
	}

	if err := conn.WriteJSON(req); err != nil {
		conn.Close()
		err = fmt.Errorf("failed to send stream request: %w", err)
		span.RecordError(err)
		return nil, err
	}

	return &stream{conn: conn}, nil
}

type stream struct {
	conn *websocket.Conn

	abortOnce sync.Once
	aborted   bool
	mu        sync.Mutex
}

func (s *stream) Abort() {
	s.abortOnce.Do(func() {
		s.mu.Lock()
		s.aborted = true
		s.mu.Unlock()

		if err := s.conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		); err != nil {
			logger.Debug("failed to send close message", "error", err)
		}
		s.conn.Close()
	})
}

func (s *stream) isAborted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aborted
}

func (s *stream) Frames(ctx context.Context) func(func(transport.RawFrame, error) bool) {
	return func(yield func(transport.RawFrame, error) bool) {
		ctx, span := tracer.Start(ctx, "read websocket stream")
		defer span.End()
		defer s.conn.Close()

		done := make(chan struct{})
		defer close(done)
		go func() {
			select {
			case <-ctx.Done():
				s.Abort()
			case <-done:
			}
		}()

		for {
			msgType, msg, err := s.conn.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) || s.isAborted() {
					return
				}
				err = fmt.Errorf("websocket read error: %w", err)
				span.RecordError(err)
				yield(nil, err)
				return
			}

			if msgType != websocket.TextMessage {
				continue
			}
			if !yield(transport.RawFrame(msg), nil) {
				return
			}
		}
	}
}
