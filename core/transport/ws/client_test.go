package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/korvuslabs/relay-core/core/protocol"
)

var upgrader = websocket.Upgrader{}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestOpenSendsRequestAndStreamsFrames(t *testing.T) {
	requests := make(chan protocol.Request, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("failed to upgrade connection: %v", err)
			return
		}
		defer conn.Close()

		var req protocol.Request
		if err := conn.ReadJSON(&req); err != nil {
			t.Errorf("failed to read stream request: %v", err)
			return
		}
		requests <- req

		conn.WriteMessage(websocket.TextMessage, []byte(`{"kind":"status-update"}`))
		conn.WriteMessage(websocket.BinaryMessage, []byte{0x01, 0x02})
		conn.WriteMessage(websocket.TextMessage, []byte(`{"kind":"artifact-update"}`))
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}))
	defer server.Close()

	client := NewClient(wsURL(server))
	stream, err := client.Open(context.Background(), protocol.NewStreamRequest("hello", "ctx-1"))
	if err != nil {
		t.Fatalf("failed to open stream: %v", err)
	}

	var frames []string
	for raw, err := range stream.Frames(context.Background()) {
		if err != nil {
			t.Fatalf("unexpected stream error: %v", err)
		}
		frames = append(frames, string(raw))
	}

	expected := []string{`{"kind":"status-update"}`, `{"kind":"artifact-update"}`}
	if len(frames) != len(expected) {
		t.Fatalf("expected %d text frames, got %d: %v", len(expected), len(frames), frames)
	}
	for i := range expected {
		if frames[i] != expected[i] {
			t.Fatalf("frame %d mismatch: got %q, want %q", i, frames[i], expected[i])
		}
	}

	req := <-requests
	if req.Method != protocol.MethodMessageStream {
		t.Fatalf("unexpected request method: %q", req.Method)
	}
	if got := req.Params.Message.ContextID; got != "ctx-1" {
		t.Fatalf("unexpected request context: %q", got)
	}
}

func TestAbruptDisconnectSurfacesAsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		var req protocol.Request
		conn.ReadJSON(&req)
		conn.WriteMessage(websocket.TextMessage, []byte(`{"kind":"status-update"}`))
		// Drop the connection without a close handshake.
		conn.Close()
	}))
	defer server.Close()

	client := NewClient(wsURL(server))
	stream, err := client.Open(context.Background(), protocol.NewStreamRequest("hello", ""))
	if err != nil {
		t.Fatalf("failed to open stream: %v", err)
	}

	var frames int
	var streamErr error
	for raw, err := range stream.Frames(context.Background()) {
		if err != nil {
			streamErr = err
			continue
		}
		_ = raw
		frames++
	}
	if frames != 1 {
		t.Fatalf("expected the frame before the drop, got %d", frames)
	}
	if streamErr == nil {
		t.Fatalf("expected an error for the abrupt disconnect")
	}
}

func TestAbortEndsIterationWithoutError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var req protocol.Request
		conn.ReadJSON(&req)
		conn.WriteMessage(websocket.TextMessage, []byte(`{"kind":"status-update"}`))
		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	client := NewClient(wsURL(server))
	stream, err := client.Open(context.Background(), protocol.NewStreamRequest("hello", ""))
	if err != nil {
		t.Fatalf("failed to open stream: %v", err)
	}

	var frames int
	for _, err := range stream.Frames(context.Background()) {
		if err != nil {
			t.Fatalf("expected an aborted stream to end cleanly, got %v", err)
		}
		frames++
		stream.Abort()
		stream.Abort()
	}
	if frames != 1 {
		t.Fatalf("expected one frame before the abort, got %d", frames)
	}
}

func TestContextCancellationAbortsStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var req protocol.Request
		conn.ReadJSON(&req)
		conn.WriteMessage(websocket.TextMessage, []byte(`{"kind":"status-update"}`))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	client := NewClient(wsURL(server))
	stream, err := client.Open(context.Background(), protocol.NewStreamRequest("hello", ""))
	if err != nil {
		t.Fatalf("failed to open stream: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, err := range stream.Frames(ctx) {
			if err != nil {
				t.Errorf("expected a cancelled stream to end cleanly, got %v", err)
			}
			cancel()
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for cancellation to end the stream")
	}
	cancel()
}
