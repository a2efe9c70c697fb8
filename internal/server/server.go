package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pulsedigest/pulse/internal/config"
	"github.com/pulsedigest/pulse/internal/llm"
	"github.com/pulsedigest/pulse/internal/store"
)

// Server is the pulse HTTP API server.
type Server struct {
	db      *store.DB
	llm     llm.Client // nil: fallback summaries
	digest  config.DigestConfig
	router  chi.Router
	version string
	started time.Time
}

// New creates a new Server. client may be nil when no summary provider
// is configured.
func New(db *store.DB, client llm.Client, digestCfg config.DigestConfig, version string) *Server {
	s := &Server{
		db:      db,
		llm:     client,
		digest:  digestCfg,
		version: version,
		started: time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Post("/digests/{userID}", s.handleGenerateDigest)
		r.Get("/digests/{userID}/latest", s.handleLatestDigest)
		r.Get("/phases/{userID}", s.handlePhaseRecords)
		r.Get("/projects", s.handleProjects)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := true
	if err := s.db.Ping(); err != nil {
		dbOK = false
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
		"db":      dbOK,
		"db_path": s.db.Path,
	})
}
