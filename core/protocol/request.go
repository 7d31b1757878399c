package protocol

import "github.com/google/uuid"

// MethodMessageStream opens a turn and subscribes to its event stream.
const MethodMessageStream = "message/stream"

// SendParams carries the user message that opens a turn.
type SendParams struct {
	Message Message `json:"message"`
}

// Request is the JSON-RPC envelope that opens a turn.
type Request struct {
	JSONRPC string     `json:"jsonrpc"`
	ID      string     `json:"id"`
	Method  string     `json:"method"`
	Params  SendParams `json:"params"`
}

// NewStreamRequest builds a message/stream request for the given user text.
// contextID may be empty for a fresh conversation.
func NewStreamRequest(text, contextID string) Request {
	return Request{
		JSONRPC: "2.0",
		ID:      uuid.NewString(),
		Method:  MethodMessageStream,
		Params:  SendParams{Message: NewUserMessage(text, contextID)},
	}
}
