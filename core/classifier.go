package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/korvuslabs/relay-core/core/events"
	"github.com/korvuslabs/relay-core/core/protocol"
	"github.com/korvuslabs/relay-core/core/transport"
)

// classifier normalizes raw frames into typed stream events. It is a pure
// mapping with one piece of bookkeeping: a per-turn sequence counter that
// assigns insertion-ordered ids to frames that arrive without one.
type classifier struct {
	sequence int
}

// classify maps one raw frame to at most one event.
//
// Returns ok=false for frames that produce no event: malformed payloads are
// dropped silently (the protocol is expected to be occasionally noisy),
// while an in-stream JSON-RPC error is returned so the caller can surface
// it without aborting the turn.
func (c *classifier) classify(raw transport.RawFrame) (events.Event, bool, error) {
	frame, err := protocol.DecodeFrame(raw)
	if err != nil {
		var rpcErr *protocol.ResponseError
		if errors.As(err, &rpcErr) {
			return events.Event{}, false, fmt.Errorf("supervisor reported error: %w", rpcErr)
		}
		return events.Event{}, false, nil
	}

	event := events.Event{
		ID:        frame.EventID,
		Timestamp: frame.Timestamp,
		TaskID:    frame.TaskID,
		ContextID: frame.ContextID,
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	switch frame.Kind {
	case protocol.FrameKindArtifactUpdate:
		if frame.Artifact == nil {
			return events.Event{}, false, nil
		}
		event.Kind = events.KindArtifact
		event.Name = events.ArtifactName(frame.Artifact.Name)
		event.DisplayContent = frame.Artifact.Text()
		event.Append = frame.Append

	case protocol.FrameKindStatusUpdate:
		if frame.Status == nil {
			return events.Event{}, false, nil
		}
		event.Kind = events.KindStatus
		event.Final = frame.Final
		if frame.Status.Message != nil {
			event.DisplayContent = frame.Status.Message.Text()
		}

	case protocol.FrameKindToolStart, protocol.FrameKindToolEnd:
		event.Kind = events.KindToolStart
		if frame.Kind == protocol.FrameKindToolEnd {
			event.Kind = events.KindToolEnd
		}
		if frame.Message != nil {
			event.DisplayContent = frame.Message.Text()
		}

	case "":
		return events.Event{}, false, nil

	default:
		// Unknown kinds are forwarded for observation; the reducer never
		// accumulates them.
		event.Kind = events.Kind(frame.Kind)
	}

	c.sequence++
	if event.ID == "" {
		event.ID = fmt.Sprintf("evt-%d", c.sequence)
	}
	return event, true, nil
}
