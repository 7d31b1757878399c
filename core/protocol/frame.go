package protocol

import (
	"encoding/json"
	"errors"
	"time"
)

// Wire kinds carried on streamed frames.
const (
	FrameKindStatusUpdate   = "status-update"
	FrameKindArtifactUpdate = "artifact-update"
	FrameKindToolStart      = "tool-start"
	FrameKindToolEnd        = "tool-end"
)

// ErrMalformedFrame marks a streamed unit that cannot be interpreted. The
// stream is expected to be occasionally noisy, so consumers drop these
// rather than aborting the turn.
var ErrMalformedFrame = errors.New("malformed frame")

// Frame is one raw streamed unit: a status update, an artifact update, or a
// tool lifecycle marker. Unknown kinds decode without error so they can be
// forwarded for observation.
type Frame struct {
	EventID   string         `json:"eventId,omitempty"`
	Kind      string         `json:"kind"`
	TaskID    string         `json:"taskId,omitempty"`
	ContextID string         `json:"contextId,omitempty"`
	Timestamp time.Time      `json:"timestamp,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`

	// Status update fields.
	Status *TaskStatus `json:"status,omitempty"`
	Final  bool        `json:"final,omitempty"`

	// Artifact update fields.
	Artifact  *Artifact `json:"artifact,omitempty"`
	Append    *bool     `json:"append,omitempty"`
	LastChunk bool      `json:"lastChunk,omitempty"`

	// Tool lifecycle fields.
	Tool    string   `json:"tool,omitempty"`
	Message *Message `json:"message,omitempty"`
}

// response is the JSON-RPC envelope wrapping each streamed frame.
type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  *Frame          `json:"result,omitempty"`
	Error   *ResponseError  `json:"error,omitempty"`
}

// ResponseError is a JSON-RPC error object returned by the supervisor.
type ResponseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *ResponseError) Error() string {
	return e.Message
}

// DecodeFrame parses one streamed payload into a Frame. A JSON-RPC error
// envelope decodes into an error; payloads that are neither are reported as
// [ErrMalformedFrame].
func DecodeFrame(data []byte) (Frame, error) {
	var envelope response
	if err := json.Unmarshal(data, &envelope); err != nil {
		return Frame{}, errors.Join(ErrMalformedFrame, err)
	}
	if envelope.Error != nil {
		return Frame{}, envelope.Error
	}
	if envelope.Result == nil {
		// Some servers stream bare frames without the envelope.
		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil || frame.Kind == "" {
			return Frame{}, ErrMalformedFrame
		}
		return frame, nil
	}
	return *envelope.Result, nil
}
