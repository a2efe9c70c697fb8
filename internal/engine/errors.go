package engine

import "errors"

// Sentinel errors for the three failure kinds the digest pass
// distinguishes. Callers branch with errors.Is.
var (
	// ErrInvalidTimestamp marks a malformed timestamp on a message or
	// record. Scoring skips the affected message; the pass continues.
	ErrInvalidTimestamp = errors.New("invalid timestamp")

	// ErrInvalidPhase marks a transition to an unrecognized phase.
	// Fatal to that transition call only.
	ErrInvalidPhase = errors.New("invalid phase")

	// ErrCollaborator marks a storage or attribution failure. Fatal to
	// the whole pass; no phase records are persisted.
	ErrCollaborator = errors.New("collaborator unavailable")
)
