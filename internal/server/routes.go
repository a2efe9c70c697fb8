package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pulsedigest/pulse/internal/attribute"
	"github.com/pulsedigest/pulse/internal/digest"
	"github.com/pulsedigest/pulse/internal/engine"
	"github.com/pulsedigest/pulse/internal/store"
)

// handleGenerateDigest runs a full digest pass for the user and returns
// the assembled digest. Optional query param "hours" overrides the
// configured window.
func (s *Server) handleGenerateDigest(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	hours := s.digest.WindowHours
	if h := r.URL.Query().Get("hours"); h != "" {
		n, err := strconv.Atoi(h)
		if err != nil || n <= 0 {
			http.Error(w, `{"error":"hours must be a positive integer"}`, http.StatusBadRequest)
			return
		}
		hours = n
	}

	projects, err := s.db.LoadProjects()
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	resolver := attribute.NewResolver(projects)
	eng := engine.New(s.db, resolver, s.digest.MaxItems)

	ranked, _, err := eng.GenerateRankedMessages(ctx, userID, hours)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, engine.ErrCollaborator) {
			status = http.StatusServiceUnavailable
		}
		http.Error(w, `{"error":"`+err.Error()+`"}`, status)
		return
	}

	names := make(map[string]string, len(projects))
	for _, p := range projects {
		names[p.ProjectID] = p.Name
	}

	asm := digest.NewAssembler(s.llm)
	doc := asm.Assemble(ctx, ranked, userID, names, time.Now())

	body, err := json.Marshal(doc)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	if err := s.db.SaveDigest(userID, doc.GeneratedAt, body); err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

func (s *Server) handleLatestDigest(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	body, err := s.db.LatestDigest(userID)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	if body == nil {
		http.Error(w, `{"error":"no digest for `+userID+`"}`, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

func (s *Server) handlePhaseRecords(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	records, err := s.db.LoadPhaseRecords(userID)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []store.PhaseRecord{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"user_id": userID,
		"records": records,
	})
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.db.LoadProjects()
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	if projects == nil {
		projects = []store.Project{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"projects": projects,
	})
}
