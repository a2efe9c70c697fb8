package store

import (
	"encoding/json"
	"fmt"
)

// Project defines a project and the channels/keywords used to attribute
// messages to it.
type Project struct {
	ProjectID string   `json:"project_id"`
	Name      string   `json:"name"`
	Channels  []string `json:"channels"`
	Keywords  []string `json:"keywords"`
}

// User is a workspace member. Role feeds the sender-role scoring boost.
type User struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

// UpsertProject inserts or replaces a project.
func (db *DB) UpsertProject(p Project) error {
	channels, err := json.Marshal(p.Channels)
	if err != nil {
		return fmt.Errorf("marshal channels: %w", err)
	}
	keywords, err := json.Marshal(p.Keywords)
	if err != nil {
		return fmt.Errorf("marshal keywords: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO projects (project_id, name, channels, keywords)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(project_id) DO UPDATE SET
			name = excluded.name,
			channels = excluded.channels,
			keywords = excluded.keywords
	`, p.ProjectID, p.Name, string(channels), string(keywords))
	if err != nil {
		return fmt.Errorf("upsert project %s: %w", p.ProjectID, err)
	}
	return nil
}

// LoadProjects returns all projects, ordered by project_id.
func (db *DB) LoadProjects() ([]Project, error) {
	rows, err := db.Query(`
		SELECT project_id, name, channels, keywords
		FROM projects ORDER BY project_id
	`)
	if err != nil {
		return nil, fmt.Errorf("load projects: %w", err)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		var p Project
		var channels, keywords string
		if err := rows.Scan(&p.ProjectID, &p.Name, &channels, &keywords); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		if err := json.Unmarshal([]byte(channels), &p.Channels); err != nil {
			return nil, fmt.Errorf("unmarshal channels for %s: %w", p.ProjectID, err)
		}
		if err := json.Unmarshal([]byte(keywords), &p.Keywords); err != nil {
			return nil, fmt.Errorf("unmarshal keywords for %s: %w", p.ProjectID, err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// UpsertUser inserts or replaces a user.
func (db *DB) UpsertUser(u User) error {
	_, err := db.Exec(`
		INSERT INTO users (user_id, name, role)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			name = excluded.name,
			role = excluded.role
	`, u.UserID, u.Name, u.Role)
	if err != nil {
		return fmt.Errorf("upsert user %s: %w", u.UserID, err)
	}
	return nil
}

// LoadUsers returns all users, ordered by user_id.
func (db *DB) LoadUsers() ([]User, error) {
	rows, err := db.Query(`SELECT user_id, name, role FROM users ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.UserID, &u.Name, &u.Role); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// LoadUserRoles returns a user_id -> role lookup.
func (db *DB) LoadUserRoles() (map[string]string, error) {
	users, err := db.LoadUsers()
	if err != nil {
		return nil, err
	}
	roles := make(map[string]string, len(users))
	for _, u := range users {
		roles[u.UserID] = u.Role
	}
	return roles, nil
}
