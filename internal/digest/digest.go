// Package digest turns a ranked message list into the digest document:
// messages grouped per project under urgent / active / review sections,
// each group headed by a summary.
package digest

import (
	"context"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pulsedigest/pulse/internal/engine"
	"github.com/pulsedigest/pulse/internal/llm"
	"github.com/pulsedigest/pulse/internal/store"
)

// Item is a single digest entry derived from one message.
type Item struct {
	MessageID      string  `json:"message_id"`
	ProjectID      string  `json:"project_id"`
	Summary        string  `json:"summary"`
	RelevanceScore float64 `json:"relevance_score"`
	Sender         string  `json:"sender"`
	Channel        string  `json:"channel,omitempty"`
	Timestamp      string  `json:"timestamp"`
	IsUrgent       bool    `json:"is_urgent"`
	IsBlocker      bool    `json:"is_blocker"`
}

// ProjectGroup is a project's items within one digest section.
type ProjectGroup struct {
	ProjectID    string `json:"project_id"`
	ProjectName  string `json:"project_name"`
	Summary      string `json:"summary"`
	Items        []Item `json:"items"`
	MessageCount int    `json:"message_count"`
}

// Digest is the final output document.
type Digest struct {
	GeneratedAt string         `json:"generated_at"`
	UserID      string         `json:"user_id"`
	Urgent      []ProjectGroup `json:"urgent"`
	Active      []ProjectGroup `json:"active"`
	Review      []ProjectGroup `json:"review"`
}

const (
	unknownProjectID = "unknown"
	maxItemSummary   = 150
	maxPromptMsgs    = 10
)

// Assembler builds digests. LLM may be nil; summaries then use the
// deterministic fallback.
type Assembler struct {
	LLM llm.Client
}

// NewAssembler creates an Assembler around an optional summary client.
func NewAssembler(client llm.Client) *Assembler {
	return &Assembler{LLM: client}
}

// Assemble groups an already ranked-and-truncated message list into a
// digest for the user. projectNames maps project ids to display names.
func (a *Assembler) Assemble(ctx context.Context, ranked []engine.ScoredMessage, userID string, projectNames map[string]string, now time.Time) Digest {
	urgent := newSectionBuilder()
	active := newSectionBuilder()
	review := newSectionBuilder()

	for _, sm := range ranked {
		pid := unknownProjectID
		if sm.Record != nil {
			pid = sm.Record.ProjectID
		}
		item := makeItem(sm, pid)

		switch {
		case sm.Message.IsUrgent || sm.Message.IsBlocker:
			urgent.add(pid, item, sm.Message)
		case sm.Record != nil && sm.Record.Phase == engine.PhaseActive:
			active.add(pid, item, sm.Message)
		case sm.Record != nil && sm.Record.Phase == engine.PhaseReview:
			review.add(pid, item, sm.Message)
		default:
			active.add(pid, item, sm.Message)
		}
	}

	return Digest{
		GeneratedAt: now.UTC().Format(time.RFC3339),
		UserID:      userID,
		Urgent:      a.groups(ctx, urgent, projectNames, "urgent"),
		Active:      a.groups(ctx, active, projectNames, "active"),
		Review:      a.groups(ctx, review, projectNames, "review"),
	}
}

type sectionBuilder struct {
	items map[string][]Item
	msgs  map[string][]store.Message
	order []string
}

func newSectionBuilder() *sectionBuilder {
	return &sectionBuilder{
		items: make(map[string][]Item),
		msgs:  make(map[string][]store.Message),
	}
}

func (b *sectionBuilder) add(pid string, item Item, msg store.Message) {
	if _, seen := b.items[pid]; !seen {
		b.order = append(b.order, pid)
	}
	b.items[pid] = append(b.items[pid], item)
	b.msgs[pid] = append(b.msgs[pid], msg)
}

// groups builds the section's project groups, largest first.
func (a *Assembler) groups(ctx context.Context, b *sectionBuilder, projectNames map[string]string, section string) []ProjectGroup {
	var out []ProjectGroup
	for _, pid := range b.order {
		name := projectNames[pid]
		if name == "" {
			name = titleCase(pid)
		}

		out = append(out, ProjectGroup{
			ProjectID:    pid,
			ProjectName:  name,
			Summary:      a.summarize(ctx, b.msgs[pid], name, section),
			Items:        b.items[pid],
			MessageCount: len(b.items[pid]),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MessageCount > out[j].MessageCount
	})
	return out
}

// summarize produces a group summary: the message itself for singleton
// groups, the LLM for larger ones, and the deterministic fallback when
// no client is configured or the call fails.
func (a *Assembler) summarize(ctx context.Context, msgs []store.Message, projectName, section string) string {
	if len(msgs) == 0 {
		return "No messages"
	}
	if len(msgs) == 1 {
		return oneLine(msgs[0].Text)
	}
	if a.LLM == nil {
		return fallbackSummary(msgs)
	}

	lines := make([]string, 0, maxPromptMsgs)
	for i, m := range msgs {
		if i >= maxPromptMsgs {
			break
		}
		text := strings.Join(strings.Fields(m.Text), " ")
		if len(text) > 200 {
			text = text[:200]
		}
		lines = append(lines, strconv.Itoa(i+1)+". From "+m.Sender+": "+text)
	}

	resp, err := a.LLM.Complete(ctx, llm.SummaryPrompt(projectName, section, lines))
	if err != nil {
		log.Printf("digest: summary for %s failed, using fallback: %v", projectName, err)
		return fallbackSummary(msgs)
	}
	return strings.TrimSpace(resp.Content)
}

// fallbackSummary is the deterministic non-AI summary:
// "5 messages from alice, bob - 2 blockers - 1 urgent".
func fallbackSummary(msgs []store.Message) string {
	var senders []string
	seen := make(map[string]bool)
	blockers, urgents := 0, 0
	for _, m := range msgs {
		if !seen[m.Sender] {
			seen[m.Sender] = true
			senders = append(senders, m.Sender)
		}
		if m.IsBlocker {
			blockers++
		}
		if m.IsUrgent {
			urgents++
		}
	}

	senderList := strings.Join(senders[:min(3, len(senders))], ", ")
	if len(senders) > 3 {
		senderList += " and " + strconv.Itoa(len(senders)-3) + " others"
	}

	parts := []string{strconv.Itoa(len(msgs)) + " messages from " + senderList}
	if blockers > 0 {
		label := " blocker"
		if blockers > 1 {
			label = " blockers"
		}
		parts = append(parts, strconv.Itoa(blockers)+label)
	}
	if urgents > 0 {
		parts = append(parts, strconv.Itoa(urgents)+" urgent")
	}
	return strings.Join(parts, " - ")
}

func makeItem(sm engine.ScoredMessage, pid string) Item {
	return Item{
		MessageID:      sm.Message.ID,
		ProjectID:      pid,
		Summary:        oneLine(sm.Message.Text),
		RelevanceScore: sm.Score,
		Sender:         sm.Message.Sender,
		Channel:        sm.Message.Channel,
		Timestamp:      sm.Message.Timestamp,
		IsUrgent:       sm.Message.IsUrgent,
		IsBlocker:      sm.Message.IsBlocker,
	}
}

// oneLine collapses whitespace and truncates to a single digest line.
func oneLine(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) > maxItemSummary {
		text = text[:maxItemSummary-3] + "..."
	}
	return text
}

// titleCase turns "pcb-redesign" into "Pcb Redesign" for projects with
// no registered display name.
func titleCase(id string) string {
	words := strings.Split(id, "-")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
