package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/pulsedigest/pulse/internal/store"
)

func freshMsg() store.Message {
	return store.Message{
		ID:        "m1",
		Channel:   "#apollo",
		Sender:    "bob",
		Text:      "status update",
		Timestamp: rfc3339(testNow),
	}
}

func recWith(phase string, weekCount int) *store.PhaseRecord {
	return &store.PhaseRecord{
		UserID:           "dana",
		ProjectID:        "apollo",
		Phase:            phase,
		LastContributed:  rfc3339(testNow.Add(-24 * time.Hour)),
		MessagesPastWeek: weekCount,
	}
}

func TestScoreNoRecord(t *testing.T) {
	got, err := Score(freshMsg(), nil, "dana", nil, testNow)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if got != 0.3 {
		t.Errorf("Score(no record) = %v, want 0.3", got)
	}
}

func TestScoreDonePhaseFiltersEverything(t *testing.T) {
	// Even a fresh urgent blocker mentioning the user scores zero.
	msg := freshMsg()
	msg.IsUrgent = true
	msg.IsBlocker = true
	msg.Mentions = []string{"dana"}

	got, err := Score(msg, recWith(PhaseDone, 10), "dana", nil, testNow)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if got != 0.0 {
		t.Errorf("Score(done) = %v, want 0.0", got)
	}
}

func TestScoreBlockedPhaseSuppressesNonBlockers(t *testing.T) {
	msg := freshMsg()
	msg.IsUrgent = true
	msg.Mentions = []string{"dana"}

	got, err := Score(msg, recWith(PhaseBlocked, 5), "dana", nil, testNow)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if got != 0.1 {
		t.Errorf("Score(blocked, non-blocker) = %v, want 0.1", got)
	}
}

func TestScoreBlockedPhasePassesBlockers(t *testing.T) {
	msg := freshMsg()
	msg.IsBlocker = true

	got, err := Score(msg, recWith(PhaseBlocked, 0), "dana", nil, testNow)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	// base 1.0 * blocker 1.3 * activity 1.0
	if !almostEqual(got, 1.3, 1e-9) {
		t.Errorf("Score(blocked, blocker) = %v, want 1.3", got)
	}
}

func TestScoreBoostsMultiply(t *testing.T) {
	msg := freshMsg()
	msg.IsUrgent = true
	msg.Mentions = []string{"dana"}

	got, err := Score(msg, recWith(PhaseActive, 0), "dana", nil, testNow)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	// base 1.0 * urgency 1.5 * mention 1.8
	if !almostEqual(got, 2.7, 1e-9) {
		t.Errorf("Score = %v, want 2.7", got)
	}
}

func TestScoreActivityBoostCapped(t *testing.T) {
	low, err := Score(freshMsg(), recWith(PhaseActive, 4), "dana", nil, testNow)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if !almostEqual(low, 1.2, 1e-9) {
		t.Errorf("Score(4 msgs/week) = %v, want 1.2", low)
	}

	high, err := Score(freshMsg(), recWith(PhaseActive, 50), "dana", nil, testNow)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if !almostEqual(high, 1.5, 1e-9) {
		t.Errorf("Score(50 msgs/week) = %v, want capped 1.5", high)
	}
}

func TestScoreSenderRoleBoost(t *testing.T) {
	roles := map[string]string{"bob": "pm", "carol": "designer"}

	pm, err := Score(freshMsg(), recWith(PhaseActive, 0), "dana", roles, testNow)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if !almostEqual(pm, 2.0, 1e-9) {
		t.Errorf("Score(pm sender) = %v, want 2.0", pm)
	}

	msg := freshMsg()
	msg.Sender = "carol"
	other, err := Score(msg, recWith(PhaseActive, 0), "dana", roles, testNow)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if !almostEqual(other, 1.0, 1e-9) {
		t.Errorf("Score(designer sender) = %v, want 1.0", other)
	}
}

func TestScoreReviewPenalty(t *testing.T) {
	active, err := Score(freshMsg(), recWith(PhaseActive, 0), "dana", nil, testNow)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	review, err := Score(freshMsg(), recWith(PhaseReview, 0), "dana", nil, testNow)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if !almostEqual(review, active*0.5, 1e-9) {
		t.Errorf("review score = %v, want half of active %v", review, active)
	}
}

func TestScoreInvalidTimestamp(t *testing.T) {
	msg := freshMsg()
	msg.Timestamp = "garbage"

	_, err := Score(msg, recWith(PhaseActive, 0), "dana", nil, testNow)
	if !errors.Is(err, ErrInvalidTimestamp) {
		t.Errorf("error = %v, want ErrInvalidTimestamp", err)
	}
}
