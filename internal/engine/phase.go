package engine

import (
	"fmt"
	"time"

	"github.com/pulsedigest/pulse/internal/store"
)

// Involvement phases. A phase is a projection of current activity, not
// a workflow: any phase may follow any other, and Transition
// deliberately enforces no transition table.
const (
	PhaseActive  = "active"
	PhaseReview  = "review"
	PhaseDone    = "done"
	PhaseBlocked = "blocked"
)

var knownPhases = map[string]bool{
	PhaseActive:  true,
	PhaseReview:  true,
	PhaseDone:    true,
	PhaseBlocked: true,
}

const (
	doneAfterDays       = 14
	activeWeeklyMessage = 3
)

// DetectPhase infers the phase a record should be in from its activity
// counters. Rules fire in strict priority order:
//
//  1. no contribution for 14+ days            -> done
//  2. zero messages this week while active    -> review
//  3. 3+ messages this week                   -> active
//  4. 1-2 messages this week                  -> review
//  5. otherwise                               -> unchanged
func DetectPhase(rec store.PhaseRecord, now time.Time) (string, error) {
	last, err := time.Parse(time.RFC3339, rec.LastContributed)
	if err != nil {
		return "", fmt.Errorf("%w: last_contributed %q", ErrInvalidTimestamp, rec.LastContributed)
	}

	if now.Sub(last) >= doneAfterDays*24*time.Hour {
		return PhaseDone, nil
	}
	if rec.MessagesPastWeek == 0 && rec.Phase == PhaseActive {
		return PhaseReview, nil
	}
	if rec.MessagesPastWeek >= activeWeeklyMessage {
		return PhaseActive, nil
	}
	if rec.MessagesPastWeek > 0 {
		return PhaseReview, nil
	}
	return rec.Phase, nil
}

// CheckAnomalies reports whether new activity should reactivate a done
// project: the user is mentioned, or an urgent/blocker message landed.
// Records in any other phase never anomaly-trigger, whatever the
// messages look like. The caller reactivates to "review", not "active" —
// a woken project resumes under observation.
func CheckAnomalies(rec store.PhaseRecord, newMessages []store.Message) bool {
	if rec.Phase != PhaseDone {
		return false
	}

	for _, m := range newMessages {
		if m.Mentioned(rec.UserID) {
			return true
		}
		if m.IsUrgent || m.IsBlocker {
			return true
		}
	}
	return false
}

// Transition returns a copy of rec with the phase replaced. The only
// validation is that newPhase is a known phase; on ErrInvalidPhase the
// input record is untouched and must remain in effect.
func Transition(rec store.PhaseRecord, newPhase string) (store.PhaseRecord, error) {
	if !knownPhases[newPhase] {
		return rec, fmt.Errorf("%w: %q", ErrInvalidPhase, newPhase)
	}
	out := rec
	out.Phase = newPhase
	return out, nil
}

// NewRecord initializes a phase record the first time a user encounters
// a project. Involvement starts "active" when the trigger message
// mentions the user or was sent by them, "review" otherwise.
func NewRecord(userID, projectID string, trigger store.Message, channels []string) store.PhaseRecord {
	phase := PhaseReview
	if trigger.Mentioned(userID) || trigger.Sender == userID {
		phase = PhaseActive
	}

	count := 0
	if trigger.Sender == userID {
		count = 1
	}

	return store.PhaseRecord{
		UserID:           userID,
		ProjectID:        projectID,
		Phase:            phase,
		Channels:         channels,
		LastContributed:  trigger.Timestamp,
		MessagesPastWeek: count,
	}
}

// UpdateActivity recomputes the weekly message count from this pass's
// batch of project messages and advances LastContributed to the user's
// latest message, never regressing. The count is batch-local: only
// messages handed to this pass are considered, not a rescan of history.
// Messages with unparseable timestamps are ignored.
func UpdateActivity(rec store.PhaseRecord, recentMessages []store.Message, now time.Time) store.PhaseRecord {
	weekAgo := now.Add(-7 * 24 * time.Hour)

	count := 0
	latest := rec.LastContributed

	for _, m := range recentMessages {
		if m.Sender != rec.UserID {
			continue
		}

		ts, err := time.Parse(time.RFC3339, m.Timestamp)
		if err != nil {
			continue
		}
		if !ts.Before(weekAgo) {
			count++
		}

		// RFC3339 in UTC: string order is chronological order.
		if m.Timestamp > latest {
			latest = m.Timestamp
		}
	}

	out := rec
	out.LastContributed = latest
	out.MessagesPastWeek = count
	return out
}
