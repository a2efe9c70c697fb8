package engine

import (
	"time"

	"github.com/pulsedigest/pulse/internal/store"
)

// Scoring constants. The phase gates return fixed scores; everything
// else is a product of boosts over the temporal decay base.
const (
	unknownProjectScore = 0.3 // no phase record: deprioritized, not filtered
	blockedPhaseScore   = 0.1 // blocked project, non-blocker message
	reviewPhasePenalty  = 0.5

	urgencyBoost  = 1.5
	blockerBoost  = 1.3
	mentionBoost  = 1.8
	activityCap   = 1.5
	roleBoostHigh = 2.0
)

// highPriorityRoles are sender roles whose messages get the role boost.
var highPriorityRoles = map[string]bool{
	"pm":               true,
	"engineering_lead": true,
}

// Score computes the relevance of a message for a user given the user's
// phase record for the message's project (nil when the project is
// unknown or unattributed). Pure function; the only error is a
// malformed message timestamp.
func Score(msg store.Message, rec *store.PhaseRecord, userID string, roles map[string]string, now time.Time) (float64, error) {
	if rec == nil {
		return unknownProjectScore, nil
	}
	if rec.Phase == PhaseDone {
		return 0, nil
	}
	if rec.Phase == PhaseBlocked && !msg.IsBlocker {
		return blockedPhaseScore, nil
	}

	base, err := Decay(msg.Timestamp, now)
	if err != nil {
		return 0, err
	}

	score := base
	if msg.IsUrgent {
		score *= urgencyBoost
	}
	if msg.IsBlocker {
		score *= blockerBoost
	}
	if msg.Mentioned(userID) {
		score *= mentionBoost
	}

	// Busier projects score slightly higher, capped at 1.5x.
	activity := 1 + 0.05*float64(rec.MessagesPastWeek)
	if activity > activityCap {
		activity = activityCap
	}
	score *= activity

	if highPriorityRoles[roles[msg.Sender]] {
		score *= roleBoostHigh
	}

	if rec.Phase == PhaseReview {
		score *= reviewPhasePenalty
	}

	return score, nil
}
