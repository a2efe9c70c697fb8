package store

import (
	"database/sql"
	"fmt"
)

// SaveDigest stores a generated digest document as JSON.
func (db *DB) SaveDigest(userID, generatedAt string, body []byte) error {
	_, err := db.Exec(`
		INSERT INTO digests (user_id, generated_at, body)
		VALUES (?, ?, ?)
	`, userID, generatedAt, string(body))
	if err != nil {
		return fmt.Errorf("save digest for %s: %w", userID, err)
	}
	return nil
}

// LatestDigest returns the most recently generated digest body for a
// user, or nil if none exists.
func (db *DB) LatestDigest(userID string) ([]byte, error) {
	var body string
	err := db.QueryRow(`
		SELECT body FROM digests
		WHERE user_id = ? ORDER BY generated_at DESC, id DESC LIMIT 1
	`, userID).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest digest for %s: %w", userID, err)
	}
	return []byte(body), nil
}
