package store

import (
	"fmt"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "projects: project registry with channels and keywords",
		SQL: `
CREATE TABLE projects (
    project_id  TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    channels    TEXT NOT NULL DEFAULT '[]',
    keywords    TEXT NOT NULL DEFAULT '[]'
);
`,
	},
	{
		Version:     2,
		Description: "users: workspace members and roles",
		SQL: `
CREATE TABLE users (
    user_id  TEXT PRIMARY KEY,
    name     TEXT NOT NULL,
    role     TEXT NOT NULL DEFAULT ''
);
`,
	},
	{
		Version:     3,
		Description: "messages: ingested chat messages",
		SQL: `
CREATE TABLE messages (
    id          TEXT PRIMARY KEY,
    channel     TEXT,
    thread_id   TEXT,
    sender      TEXT NOT NULL,
    body        TEXT NOT NULL,
    ts          TEXT NOT NULL,
    mentions    TEXT NOT NULL DEFAULT '[]',
    is_dm       INTEGER NOT NULL DEFAULT 0,
    is_urgent   INTEGER NOT NULL DEFAULT 0,
    is_blocker  INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX idx_messages_ts     ON messages(ts DESC);
CREATE INDEX idx_messages_sender ON messages(sender);
`,
	},
	{
		Version:     4,
		Description: "phase_records: per user, per project involvement phase",
		SQL: `
CREATE TABLE phase_records (
    user_id             TEXT NOT NULL,
    project_id          TEXT NOT NULL,
    phase               TEXT NOT NULL CHECK (phase IN ('active', 'review', 'done', 'blocked')),
    channels            TEXT NOT NULL DEFAULT '[]',
    last_contributed    TEXT NOT NULL,
    messages_past_week  INTEGER NOT NULL DEFAULT 0 CHECK (messages_past_week >= 0),

    PRIMARY KEY (user_id, project_id)
);

CREATE INDEX idx_phase_records_user ON phase_records(user_id);
`,
	},
	{
		Version:     5,
		Description: "digests: generated digest documents",
		SQL: `
CREATE TABLE digests (
    id            INTEGER PRIMARY KEY,
    user_id       TEXT NOT NULL,
    generated_at  TEXT NOT NULL,
    body          TEXT NOT NULL
);

CREATE INDEX idx_digests_user ON digests(user_id, generated_at DESC);
`,
	},
}

func (db *DB) migrate() error {
	// Create schema_versions table if it doesn't exist
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_versions WHERE version = ?", m.Version).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the current schema version.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&version)
	return version, err
}
