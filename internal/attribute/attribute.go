// Package attribute maps messages to projects. Channel membership is
// the most reliable signal and wins over keyword matching; direct
// messages that match nothing fall back to the built-in personal
// project.
package attribute

import (
	"strings"

	"github.com/pulsedigest/pulse/internal/store"
)

// PersonalProjectID is the project unmatched DMs are attributed to.
const PersonalProjectID = "personal"

var personalProject = store.Project{
	ProjectID: PersonalProjectID,
	Name:      "Personal",
	Keywords:  []string{"promotion", "1:1", "career", "feedback", "review", "performance"},
}

// Resolver attributes messages to projects from a fixed project list.
// Build a fresh Resolver per digest pass; it holds no mutable state.
type Resolver struct {
	projects  []store.Project
	byChannel map[string]string
	byID      map[string]store.Project
}

// NewResolver builds a Resolver over the given projects.
func NewResolver(projects []store.Project) *Resolver {
	r := &Resolver{
		projects:  projects,
		byChannel: make(map[string]string),
		byID:      make(map[string]store.Project, len(projects)+1),
	}
	for _, p := range projects {
		r.byID[p.ProjectID] = p
		for _, ch := range p.Channels {
			if _, taken := r.byChannel[ch]; !taken {
				r.byChannel[ch] = p.ProjectID
			}
		}
	}
	r.byID[PersonalProjectID] = personalProject
	return r
}

// Resolve returns the project a message belongs to. Channel match
// first, then case-insensitive keyword match in project order, then the
// DM fallback. ok is false when nothing matches.
func (r *Resolver) Resolve(m store.Message) (string, bool) {
	if m.Channel != "" {
		if pid, ok := r.byChannel[m.Channel]; ok {
			return pid, true
		}
	}

	text := strings.ToLower(m.Text)
	for _, p := range r.projects {
		for _, kw := range p.Keywords {
			if strings.Contains(text, strings.ToLower(kw)) {
				return p.ProjectID, true
			}
		}
	}

	if m.IsDM {
		// Any unmatched DM lands in the personal bucket, whether or not
		// it hits a personal keyword.
		return PersonalProjectID, true
	}

	return "", false
}

// ProjectByID returns the project for an id, including the built-in
// personal project.
func (r *Resolver) ProjectByID(projectID string) (store.Project, bool) {
	p, ok := r.byID[projectID]
	return p, ok
}
