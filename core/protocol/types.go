// Package protocol defines the wire schema spoken by the supervisor: a
// JSON-RPC request opens a turn, and the server streams task status and
// artifact updates back until a final status closes it.
package protocol

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskState enumerates the lifecycle states a task moves through.
type TaskState string

const (
	TaskStateSubmitted     TaskState = "submitted"
	TaskStateWorking       TaskState = "working"
	TaskStateInputRequired TaskState = "input_required"
	TaskStateCompleted     TaskState = "completed"
	TaskStateFailed        TaskState = "failed"
	TaskStateCanceled      TaskState = "canceled"
)

// Part is one content unit inside a message or artifact. Only text parts
// are rendered; other kinds pass through untouched.
type Part struct {
	Kind string `json:"kind"`
	Text string `json:"text,omitempty"`
}

// Message is a single utterance exchanged with the supervisor.
type Message struct {
	MessageID string `json:"messageId"`
	Role      string `json:"role"`
	Parts     []Part `json:"parts"`
	ContextID string `json:"contextId,omitempty"`
	TaskID    string `json:"taskId,omitempty"`
}

// NewUserMessage builds a user message with a fresh message ID.
func NewUserMessage(text, contextID string) Message {
	return Message{
		MessageID: uuid.NewString(),
		Role:      "user",
		Parts:     []Part{{Kind: "text", Text: text}},
		ContextID: contextID,
	}
}

// Text joins the message's text parts in order.
func (m Message) Text() string {
	return joinTextParts(m.Parts)
}

// TaskStatus is the point-in-time status of a task.
type TaskStatus struct {
	State     TaskState `json:"state"`
	Message   *Message  `json:"message,omitempty"`
	UpdatedAt time.Time `json:"timestamp,omitempty"`
}

// Artifact is a named content unit produced within a task.
type Artifact struct {
	ArtifactID string `json:"artifactId"`
	Name       string `json:"name,omitempty"`
	Parts      []Part `json:"parts"`
}

// Text joins the artifact's text parts in order.
func (a Artifact) Text() string {
	return joinTextParts(a.Parts)
}

func joinTextParts(parts []Part) string {
	var b strings.Builder
	for _, part := range parts {
		if part.Kind == "text" || part.Kind == "" {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}
