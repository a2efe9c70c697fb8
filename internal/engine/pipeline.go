package engine

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/pulsedigest/pulse/internal/store"
)

// Store is the persistence collaborator the digest pass consumes.
// *store.DB satisfies it; tests use the in-memory database.
type Store interface {
	LoadMessagesSince(since time.Time) ([]store.Message, error)
	LoadPhaseRecords(userID string) ([]store.PhaseRecord, error)
	LoadUserRoles() (map[string]string, error)
	SavePhaseRecords(records []store.PhaseRecord) error
}

// Attributor maps a message to a project. Attribution is opaque to the
// pass: how a resolver decides (channel match, keywords, anything else)
// is its own business.
type Attributor interface {
	Resolve(m store.Message) (projectID string, ok bool)
	ProjectByID(projectID string) (store.Project, bool)
}

// ScoredMessage pairs a message with the phase record used to score it
// (nil when the project had no record) and the computed relevance.
type ScoredMessage struct {
	Message store.Message      `json:"message"`
	Record  *store.PhaseRecord `json:"record,omitempty"`
	Score   float64            `json:"score"`
}

// Engine runs the digest pass: observe activity, evolve phase records,
// rank messages.
type Engine struct {
	Store    Store
	Attr     Attributor
	MaxItems int

	now func() time.Time
}

// New creates an Engine. maxItems bounds the ranked output; 0 means
// unbounded.
func New(st Store, attr Attributor, maxItems int) *Engine {
	return &Engine{
		Store:    st,
		Attr:     attr,
		MaxItems: maxItems,
		now:      time.Now,
	}
}

// GenerateRankedMessages runs one digest pass for a user over the
// trailing window. It returns the ranked (and truncated) messages plus
// the full updated phase record set, which has already been persisted.
// Collaborator failures abort the pass before anything is saved;
// individual malformed messages are skipped and counted, not fatal.
func (e *Engine) GenerateRankedMessages(ctx context.Context, userID string, windowHours int) ([]ScoredMessage, []store.PhaseRecord, error) {
	now := e.now()
	since := now.Add(-time.Duration(windowHours) * time.Hour)

	msgs, err := e.Store.LoadMessagesSince(since)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: load messages: %v", ErrCollaborator, err)
	}
	records, err := e.Store.LoadPhaseRecords(userID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: load phase records: %v", ErrCollaborator, err)
	}
	roles, err := e.Store.LoadUserRoles()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: load user roles: %v", ErrCollaborator, err)
	}

	byProject, projectOrder := e.groupByProject(msgs)
	updated := e.updateRecords(userID, records, byProject, projectOrder, now)

	// Scoring uses the just-updated record set, not the loaded one.
	recByProject := make(map[string]*store.PhaseRecord, len(updated))
	for i := range updated {
		recByProject[updated[i].ProjectID] = &updated[i]
	}

	var ranked []ScoredMessage
	skipped := 0
	for _, m := range msgs {
		var rec *store.PhaseRecord
		if pid, ok := e.Attr.Resolve(m); ok {
			rec = recByProject[pid]
		}

		score, err := Score(m, rec, userID, roles, now)
		if err != nil {
			log.Printf("digest: skipping message %s: %v", m.ID, err)
			skipped++
			continue
		}
		if score > 0 {
			ranked = append(ranked, ScoredMessage{Message: m, Record: rec, Score: score})
		}
	}
	if skipped > 0 {
		log.Printf("digest: skipped %d malformed messages for %s", skipped, userID)
	}

	// Equal scores keep fetch order; downstream grouping depends on
	// deterministic ordering, so the stable sort is a contract.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if e.MaxItems > 0 && len(ranked) > e.MaxItems {
		ranked = ranked[:e.MaxItems]
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrCollaborator, err)
	}

	// Persist the full set, not just records whose messages made the
	// cut: phase reflects activity, not digest inclusion.
	if err := e.Store.SavePhaseRecords(updated); err != nil {
		return nil, nil, fmt.Errorf("%w: save phase records: %v", ErrCollaborator, err)
	}

	return ranked, updated, nil
}

// groupByProject attributes each message and groups by project id,
// remembering first-seen project order so the pass is deterministic.
func (e *Engine) groupByProject(msgs []store.Message) (map[string][]store.Message, []string) {
	byProject := make(map[string][]store.Message)
	var order []string
	for _, m := range msgs {
		pid, ok := e.Attr.Resolve(m)
		if !ok {
			continue
		}
		if _, seen := byProject[pid]; !seen {
			order = append(order, pid)
		}
		byProject[pid] = append(byProject[pid], m)
	}
	return byProject, order
}

// updateRecords evolves the existing records against this pass's batch
// and creates records for projects the user encounters for the first
// time.
func (e *Engine) updateRecords(userID string, records []store.PhaseRecord, byProject map[string][]store.Message, projectOrder []string, now time.Time) []store.PhaseRecord {
	known := make(map[string]bool, len(records))
	updated := make([]store.PhaseRecord, 0, len(records))

	for _, rec := range records {
		known[rec.ProjectID] = true
		projMsgs := byProject[rec.ProjectID]

		rec = UpdateActivity(rec, projMsgs, now)

		candidate, err := DetectPhase(rec, now)
		if err != nil {
			log.Printf("digest: phase detection for %s/%s: %v", rec.UserID, rec.ProjectID, err)
			candidate = rec.Phase
		}
		if CheckAnomalies(rec, projMsgs) {
			candidate = PhaseReview
		}

		if candidate != rec.Phase {
			next, err := Transition(rec, candidate)
			if err != nil {
				log.Printf("digest: transition for %s/%s: %v", rec.UserID, rec.ProjectID, err)
			} else {
				log.Printf("digest: %s/%s phase %s -> %s", rec.UserID, rec.ProjectID, rec.Phase, next.Phase)
				rec = next
			}
		}

		updated = append(updated, rec)
	}

	for _, pid := range projectOrder {
		if known[pid] {
			continue
		}
		projMsgs := byProject[pid]

		trigger := projMsgs[0]
		for _, m := range projMsgs {
			if m.Mentioned(userID) || m.Sender == userID {
				trigger = m
				break
			}
		}

		var channels []string
		if p, ok := e.Attr.ProjectByID(pid); ok {
			channels = p.Channels
		}

		rec := NewRecord(userID, pid, trigger, channels)
		log.Printf("digest: new phase record %s/%s: %s", userID, pid, rec.Phase)
		updated = append(updated, rec)
	}

	return updated
}
