package session

// ResultOrigin tags a complete-result notification with its provenance.
type ResultOrigin string

const (
	// ResultOriginFinal marks an answer carried by a final_result artifact.
	ResultOriginFinal ResultOrigin = "final_result"
	// ResultOriginPartial marks a usable intermediate answer; more content
	// may still follow.
	ResultOriginPartial ResultOrigin = "partial_result"
	// ResultOriginAccumulatedFallback marks an answer synthesized from
	// accumulated text when the stream ended without a final_result.
	ResultOriginAccumulatedFallback ResultOrigin = "accumulated_fallback"
)

// StreamState is the running reconstruction of one turn. It is owned by the
// turn that created it and discarded when the turn ends; a new turn never
// reuses a previous turn's state.
type StreamState struct {
	// AccumulatedText is the visible answer so far. It only ever changes by
	// append or explicit replace, never by rollback.
	AccumulatedText string

	// EventCount counts every event delivered to the reducer, including
	// ones that never touch AccumulatedText.
	EventCount int

	// HasReceivedCompleteResult reports whether a non-empty final_result
	// was processed. Once true it never resets within the turn, and no
	// further event mutates AccumulatedText.
	HasReceivedCompleteResult bool

	// TaskID and ContextID hold the last non-empty identifiers observed.
	TaskID    string
	ContextID string
}
