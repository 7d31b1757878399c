package session

import (
	"github.com/korvuslabs/relay-core/core/events"
)

// completeResult is a usable answer surfaced to the caller, tagged with how
// it came to be.
type completeResult struct {
	text   string
	origin ResultOrigin
}

// transition describes what one event changed, so the dispatcher knows
// which notifications to emit. The raw-event notification is implied: it
// fires for every reduced event.
type transition struct {
	// contentUpdated reports that a content-update notification carrying
	// the current accumulated text is due.
	contentUpdated bool
	// complete carries a complete-result notification, if one is due.
	complete *completeResult
}

// reducer folds classified events into one turn's StreamState. It is a
// strict, total state machine: every event produces exactly one transition,
// and it has exactly one writer for the lifetime of the turn.
type reducer struct {
	state StreamState
}

func newReducer() *reducer {
	return &reducer{}
}

// reduce applies one event in arrival order.
//
// The event count and identifier fields update unconditionally. Content
// rules: once a non-empty final_result has been processed the answer is
// immutable for the remainder of the turn; before that, a final_result
// replaces the text and locks, a partial_result surfaces an intermediate
// answer without touching the text, and streaming or unnamed artifacts
// append or replace per their append flag.
func (r *reducer) reduce(event events.Event) transition {
	r.state.EventCount++
	if event.TaskID != "" {
		r.state.TaskID = event.TaskID
	}
	if event.ContextID != "" {
		r.state.ContextID = event.ContextID
	}

	if r.state.HasReceivedCompleteResult {
		return transition{}
	}
	if !event.Accumulates() {
		return transition{}
	}

	text := event.DisplayContent
	switch event.Name {
	case events.ArtifactFinalResult:
		r.state.AccumulatedText = text
		if text == "" {
			// An empty final carries no answer: it neither locks nor
			// notifies, so a later final can still win.
			return transition{contentUpdated: true}
		}
		r.state.HasReceivedCompleteResult = true
		return transition{
			contentUpdated: true,
			complete:       &completeResult{text: text, origin: ResultOriginFinal},
		}

	case events.ArtifactPartialResult:
		return transition{
			contentUpdated: true,
			complete:       &completeResult{text: text, origin: ResultOriginPartial},
		}

	default:
		if event.ShouldAppend() {
			r.state.AccumulatedText += text
		} else {
			r.state.AccumulatedText = text
		}
		return transition{contentUpdated: true}
	}
}

// finalize runs the turn's termination rule: when the stream ends without a
// final_result but content was accumulated, that content is the answer.
// Returns nil when the turn legitimately produced nothing, or when a final
// answer was already surfaced.
func (r *reducer) finalize() *completeResult {
	if r.state.HasReceivedCompleteResult {
		return nil
	}
	if r.state.AccumulatedText == "" {
		return nil
	}
	return &completeResult{
		text:   r.state.AccumulatedText,
		origin: ResultOriginAccumulatedFallback,
	}
}
