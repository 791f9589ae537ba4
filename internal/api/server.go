// Package api is the HTTP surface of the StoryCanvas reference backend.
// It speaks the same wire contract the client gateway consumes: success
// envelopes on 2xx, flat {code, message} errors otherwise.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/AgileSoftDev-2025/storycanvas/internal/serverdb"
)

// Server is the HTTP API server for sc-backend.
type Server struct {
	config Config
	http   *http.Server
	store  *serverdb.ServerDB
}

// NewServer creates a new Server with the given config and store.
func NewServer(cfg Config, store *serverdb.ServerDB) (*Server, error) {
	s := &Server{
		config: cfg,
		store:  store,
	}

	s.http = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      s.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// Start begins listening for HTTP requests (non-blocking).
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	go func() {
		if err := s.http.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("http server", "err", err)
		}
	}()

	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Routes builds the HTTP handler with all routes and middleware.
// Exported so tests can mount the handler on an httptest server.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("GET /v1/me", s.requireAuth(s.handleMe))

	mux.HandleFunc("GET /v1/projects/{$}", s.requireAuth(s.handleListProjects))
	mux.HandleFunc("POST /v1/projects/{$}", s.requireAuth(s.handleCreateProject))
	mux.HandleFunc("GET /v1/projects/{id}", s.requireAuth(s.handleGetProject))
	mux.HandleFunc("PUT /v1/projects/{id}", s.requireAuth(s.handleRenameProject))
	mux.HandleFunc("DELETE /v1/projects/{id}", s.requireAuth(s.handleDeleteProject))

	mux.HandleFunc("GET /v1/projects/{id}/{collection}/{$}", s.requireAuth(s.handleListEntities))
	mux.HandleFunc("POST /v1/projects/{id}/{collection}/{$}", s.requireAuth(s.handleUpsertEntity))
	mux.HandleFunc("DELETE /v1/projects/{id}/{collection}/{entityID}", s.requireAuth(s.handleDeleteEntity))

	mux.HandleFunc("POST /v1/projects/{id}/generate-user-stories/{$}", s.requireAuth(s.handleGenerateStories))
	mux.HandleFunc("POST /v1/projects/{id}/generate-scenarios/{$}", s.requireAuth(s.handleGenerateScenarios))

	// Anonymous tier: no account, full project payload travels with the
	// request.
	mux.HandleFunc("POST /v1/local-projects/generate-user-stories/{$}", s.handleLocalGenerateStories)
	mux.HandleFunc("POST /v1/local-projects/generate-scenarios/{$}", s.handleLocalGenerateScenarios)

	return chain(mux, recoveryMiddleware, requestIDMiddleware, loggerMiddleware, loggingMiddleware, maxBytesMiddleware(10<<20))
}

// handleHealth returns a health check response, pinging the server DB.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "error", "detail": "db unreachable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleMe identifies the authenticated user. The body is flat, not an
// envelope, matching what signed-in clients expect.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u := getUserFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{
		"user_id": u.UserID,
		"email":   u.Email,
	})
}
