package events

import "time"

type Kind string

const (
	// KindArtifact identifies a named content unit emitted within a turn.
	KindArtifact Kind = "artifact"
	// KindStatus identifies a task status transition.
	KindStatus Kind = "status"
	// KindToolStart identifies the start of a tool invocation.
	KindToolStart Kind = "tool_start"
	// KindToolEnd identifies the end of a tool invocation.
	KindToolEnd Kind = "tool_end"
)

// ArtifactName labels the content unit carried by an artifact event.
type ArtifactName string

const (
	// ArtifactStreamingResult carries incremental answer text.
	ArtifactStreamingResult ArtifactName = "streaming_result"
	// ArtifactPartialResult carries a usable intermediate answer.
	ArtifactPartialResult ArtifactName = "partial_result"
	// ArtifactFinalResult carries the authoritative answer for the turn.
	ArtifactFinalResult ArtifactName = "final_result"
	// ArtifactToolNotificationStart announces tool activity starting.
	ArtifactToolNotificationStart ArtifactName = "tool_notification_start"
	// ArtifactToolNotificationEnd announces tool activity ending.
	ArtifactToolNotificationEnd ArtifactName = "tool_notification_end"
	// ArtifactExecutionPlanUpdate carries a plan content update.
	ArtifactExecutionPlanUpdate ArtifactName = "execution_plan_update"
	// ArtifactExecutionPlanStatusUpdate carries a plan status change.
	ArtifactExecutionPlanStatusUpdate ArtifactName = "execution_plan_status_update"
)

// Event is one normalized unit received during a turn.
//
// ID is unique within the turn and insertion-ordered. Timestamp is
// monotonically non-decreasing within a turn; that is a protocol guarantee
// and is not re-verified here.
type Event struct {
	ID        string
	Timestamp time.Time
	Kind      Kind

	// Name is set only on artifact events; empty means an unnamed artifact.
	Name ArtifactName

	// DisplayContent is the human-readable payload, if any.
	DisplayContent string

	// Append reports whether DisplayContent extends the running text rather
	// than replacing it. Absent means append.
	Append *bool

	// TaskID and ContextID are protocol-assigned identifiers and may arrive
	// on any event, not only the first.
	TaskID    string
	ContextID string

	// Final marks protocol-level turn completion on a status event.
	Final bool
}

// ShouldAppend resolves the append flag, defaulting to true when absent.
func (e Event) ShouldAppend() bool {
	return e.Append == nil || *e.Append
}

// Accumulates reports whether the event contributes to the turn's running
// answer text. Status and tool lifecycle events never accumulate regardless
// of any content they carry; artifacts accumulate only when unnamed or
// named as one of the result artifacts.
func (e Event) Accumulates() bool {
	if e.Kind != KindArtifact {
		return false
	}
	switch e.Name {
	case "", ArtifactStreamingResult, ArtifactPartialResult, ArtifactFinalResult:
		return true
	default:
		return false
	}
}

// IsResult reports whether the artifact name is one of the result labels.
func (n ArtifactName) IsResult() bool {
	switch n {
	case ArtifactStreamingResult, ArtifactPartialResult, ArtifactFinalResult:
		return true
	default:
		return false
	}
}
