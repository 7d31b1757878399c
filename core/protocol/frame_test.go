package protocol

import (
	"errors"
	"testing"
)

func TestDecodeFrameUnwrapsEnvelope(t *testing.T) {
	data := []byte(`{"jsonrpc":"2.0","id":"1","result":{"kind":"artifact-update","taskId":"task-1","contextId":"ctx-1","artifact":{"artifactId":"a-1","name":"streaming_result","parts":[{"kind":"text","text":"Hello "},{"kind":"text","text":"World"}]},"append":true}}`)

	frame, err := DecodeFrame(data)
	if err != nil {
		t.Fatalf("expected frame to decode, got %v", err)
	}
	if frame.Kind != FrameKindArtifactUpdate {
		t.Fatalf("expected artifact-update kind, got %q", frame.Kind)
	}
	if frame.TaskID != "task-1" || frame.ContextID != "ctx-1" {
		t.Fatalf("expected identifiers to survive decoding, got task %q context %q", frame.TaskID, frame.ContextID)
	}
	if frame.Artifact == nil || frame.Artifact.Text() != "Hello World" {
		t.Fatalf("expected artifact text parts to join in order")
	}
	if frame.Append == nil || !*frame.Append {
		t.Fatalf("expected explicit append flag to decode")
	}
}

func TestDecodeFrameAcceptsBareFrames(t *testing.T) {
	data := []byte(`{"kind":"status-update","taskId":"task-2","status":{"state":"working"},"final":false}`)

	frame, err := DecodeFrame(data)
	if err != nil {
		t.Fatalf("expected bare frame to decode, got %v", err)
	}
	if frame.Kind != FrameKindStatusUpdate || frame.Status == nil || frame.Status.State != TaskStateWorking {
		t.Fatalf("unexpected decoded frame: %+v", frame)
	}
}

func TestDecodeFrameSurfacesRPCErrors(t *testing.T) {
	data := []byte(`{"jsonrpc":"2.0","id":"1","error":{"code":-32600,"message":"invalid request"}}`)

	_, err := DecodeFrame(data)
	var rpcErr *ResponseError
	if !errors.As(err, &rpcErr) {
		t.Fatalf("expected a ResponseError, got %v", err)
	}
	if rpcErr.Code != -32600 {
		t.Fatalf("expected error code to survive decoding, got %d", rpcErr.Code)
	}
}

func TestDecodeFrameRejectsNoise(t *testing.T) {
	for _, data := range [][]byte{
		[]byte(`not json`),
		[]byte(`{}`),
		[]byte(`{"jsonrpc":"2.0","id":"1"}`),
	} {
		if _, err := DecodeFrame(data); !errors.Is(err, ErrMalformedFrame) {
			t.Fatalf("expected %q to be reported as malformed, got %v", data, err)
		}
	}
}

func TestNewStreamRequestAssignsIdentifiers(t *testing.T) {
	first := NewStreamRequest("hello", "ctx-1")
	second := NewStreamRequest("hello", "ctx-1")

	if first.Method != MethodMessageStream || first.JSONRPC != "2.0" {
		t.Fatalf("unexpected request envelope: %+v", first)
	}
	if first.ID == "" || first.ID == second.ID {
		t.Fatalf("expected unique request ids, got %q and %q", first.ID, second.ID)
	}
	if first.Params.Message.MessageID == second.Params.Message.MessageID {
		t.Fatalf("expected unique message ids")
	}
	if got := first.Params.Message.Text(); got != "hello" {
		t.Fatalf("expected message text %q, got %q", "hello", got)
	}
	if first.Params.Message.ContextID != "ctx-1" {
		t.Fatalf("expected context id to carry through")
	}
}
