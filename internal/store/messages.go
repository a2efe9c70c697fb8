package store

import (
	"encoding/json"
	"fmt"
	"time"
)

// Message is a single ingested chat message. Messages are immutable once
// stored; readers never mutate them. Timestamps are RFC3339 strings in
// UTC, so lexicographic order is chronological order.
type Message struct {
	ID        string   `json:"id"`
	Channel   string   `json:"channel,omitempty"`
	ThreadID  string   `json:"thread_id,omitempty"`
	Sender    string   `json:"sender"`
	Text      string   `json:"text"`
	Timestamp string   `json:"timestamp"`
	Mentions  []string `json:"mentions"`
	IsDM      bool     `json:"is_dm"`
	IsUrgent  bool     `json:"is_urgent"`
	IsBlocker bool     `json:"is_blocker"`
}

// Mentioned reports whether userID appears in the message's mentions.
func (m Message) Mentioned(userID string) bool {
	for _, id := range m.Mentions {
		if id == userID {
			return true
		}
	}
	return false
}

// SaveMessages inserts a batch of messages in one transaction.
// Existing IDs are left untouched (messages are immutable).
func (db *DB) SaveMessages(msgs []Message) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin save messages: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO messages
			(id, channel, thread_id, sender, body, ts, mentions, is_dm, is_urgent, is_blocker)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare save messages: %w", err)
	}
	defer stmt.Close()

	for _, m := range msgs {
		mentions, err := json.Marshal(m.Mentions)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("marshal mentions for %s: %w", m.ID, err)
		}
		if _, err := stmt.Exec(
			m.ID, nullable(m.Channel), nullable(m.ThreadID), m.Sender, m.Text, m.Timestamp,
			string(mentions), boolInt(m.IsDM), boolInt(m.IsUrgent), boolInt(m.IsBlocker),
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert message %s: %w", m.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save messages: %w", err)
	}
	return nil
}

// LoadMessagesSince returns messages with timestamp >= since, most
// recent first. The returned order is the fetch order the digest
// pipeline uses for tie-breaking.
func (db *DB) LoadMessagesSince(since time.Time) ([]Message, error) {
	cutoff := since.UTC().Format(time.RFC3339)
	rows, err := db.Query(`
		SELECT id, channel, thread_id, sender, body, ts, mentions, is_dm, is_urgent, is_blocker
		FROM messages WHERE ts >= ? ORDER BY ts DESC, id
	`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		var channel, threadID *string
		var mentions string
		var isDM, isUrgent, isBlocker int
		if err := rows.Scan(&m.ID, &channel, &threadID, &m.Sender, &m.Text, &m.Timestamp,
			&mentions, &isDM, &isUrgent, &isBlocker); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		if channel != nil {
			m.Channel = *channel
		}
		if threadID != nil {
			m.ThreadID = *threadID
		}
		if err := json.Unmarshal([]byte(mentions), &m.Mentions); err != nil {
			return nil, fmt.Errorf("unmarshal mentions for %s: %w", m.ID, err)
		}
		m.IsDM = isDM != 0
		m.IsUrgent = isUrgent != 0
		m.IsBlocker = isBlocker != 0
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// CountMessages returns the total number of stored messages.
func (db *DB) CountMessages() (int, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM messages`).Scan(&n)
	return n, err
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
