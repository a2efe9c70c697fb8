package store

import (
	"encoding/json"
	"fmt"
)

// PhaseRecord tracks one user's involvement phase in one project.
// Exactly one record exists per (user_id, project_id) pair; the table's
// primary key enforces it. Records are never deleted — a project the
// user has left simply carries phase "done".
type PhaseRecord struct {
	UserID           string   `json:"user_id"`
	ProjectID        string   `json:"project_id"`
	Phase            string   `json:"phase"`
	Channels         []string `json:"channels"`
	LastContributed  string   `json:"last_contributed"`
	MessagesPastWeek int      `json:"messages_past_week"`
}

// LoadPhaseRecords returns all phase records for a user.
func (db *DB) LoadPhaseRecords(userID string) ([]PhaseRecord, error) {
	rows, err := db.Query(`
		SELECT user_id, project_id, phase, channels, last_contributed, messages_past_week
		FROM phase_records WHERE user_id = ? ORDER BY project_id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("load phase records: %w", err)
	}
	defer rows.Close()

	var records []PhaseRecord
	for rows.Next() {
		var r PhaseRecord
		var channels string
		if err := rows.Scan(&r.UserID, &r.ProjectID, &r.Phase, &channels,
			&r.LastContributed, &r.MessagesPastWeek); err != nil {
			return nil, fmt.Errorf("scan phase record: %w", err)
		}
		if err := json.Unmarshal([]byte(channels), &r.Channels); err != nil {
			return nil, fmt.Errorf("unmarshal channels for %s/%s: %w", r.UserID, r.ProjectID, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// SavePhaseRecords upserts the full record set in one transaction.
// Either every record lands or none do — a failed digest pass must not
// leave a partially updated phase set behind.
func (db *DB) SavePhaseRecords(records []PhaseRecord) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin save phase records: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO phase_records (user_id, project_id, phase, channels, last_contributed, messages_past_week)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, project_id) DO UPDATE SET
			phase = excluded.phase,
			channels = excluded.channels,
			last_contributed = excluded.last_contributed,
			messages_past_week = excluded.messages_past_week
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare save phase records: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		channels, err := json.Marshal(r.Channels)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("marshal channels for %s/%s: %w", r.UserID, r.ProjectID, err)
		}
		if _, err := stmt.Exec(r.UserID, r.ProjectID, r.Phase, string(channels),
			r.LastContributed, r.MessagesPastWeek); err != nil {
			tx.Rollback()
			return fmt.Errorf("upsert phase record %s/%s: %w", r.UserID, r.ProjectID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save phase records: %w", err)
	}
	return nil
}
