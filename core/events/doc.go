// Package events defines the typed stream event contract for one turn.
//
// Every frame the supervisor emits during a turn normalizes into exactly one
// Event. Kinds form a closed set:
//
//   - artifact: a named content unit (answer text, tool notices, plan updates)
//   - status: a task status transition; may carry the terminal final flag
//   - tool_start / tool_end: tool invocation lifecycle markers
//
// Artifact names used by the supervisor:
//
//   - streaming_result: incremental answer text, append or replace
//   - partial_result: a usable intermediate answer, not terminal
//   - final_result: the authoritative answer for the turn
//   - tool_notification_start / tool_notification_end: tool activity notices
//   - execution_plan_update / execution_plan_status_update: plan progress
//
// Semantics used across the package:
//
//   - Accumulating: contributes to the turn's running answer text.
//   - Observational: forwarded to observers but never accumulated
//     (tool and plan artifacts, all non-artifact kinds).
//   - Final: terminal protocol-level turn completion flagged on a status
//     event; does not by itself mean an answer exists.
package events
