package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AgileSoftDev-2025/storycanvas/internal/models"
	"github.com/AgileSoftDev-2025/storycanvas/internal/serverdb"
)

// handleListProjects handles GET /v1/projects/.
func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	u := getUserFromContext(r.Context())
	projects, err := s.store.ListProjects(u.UserID)
	if err != nil {
		logFor(r.Context()).Error("list projects", "err", err)
		writeError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to list projects")
		return
	}
	writeData(w, http.StatusOK, collectionData{Items: projects, Count: len(projects)})
}

// handleCreateProject handles POST /v1/projects/. The client-assigned id
// is preserved so local and remote copies stay correlated.
func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	u := getUserFromContext(r.Context())

	var p models.Project
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid json body")
		return
	}
	if p.Title == "" {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "title is required")
		return
	}
	p.Domain = models.NormalizeDomain(string(p.Domain))

	if err := s.store.CreateProject(u.UserID, &p); err != nil {
		if errors.Is(err, serverdb.ErrIDTaken) {
			writeError(w, http.StatusConflict, ErrCodeConflict, "project id belongs to another account")
			return
		}
		logFor(r.Context()).Error("create project", "err", err)
		writeError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to create project")
		return
	}
	writeData(w, http.StatusCreated, p)
}

// handleGetProject handles GET /v1/projects/{id}.
func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	u := getUserFromContext(r.Context())
	p, err := s.store.GetProject(u.UserID, r.PathValue("id"))
	if err != nil {
		logFor(r.Context()).Error("get project", "err", err)
		writeError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to get project")
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "project not found")
		return
	}
	writeData(w, http.StatusOK, p)
}

// handleRenameProject handles PUT /v1/projects/{id}.
func (s *Server) handleRenameProject(w http.ResponseWriter, r *http.Request) {
	u := getUserFromContext(r.Context())

	var body struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid json body")
		return
	}
	if body.Title == "" {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "title is required")
		return
	}

	ok, err := s.store.RenameProject(u.UserID, r.PathValue("id"), body.Title)
	if err != nil {
		logFor(r.Context()).Error("rename project", "err", err)
		writeError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to rename project")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "project not found")
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "project renamed"})
}

// handleDeleteProject handles DELETE /v1/projects/{id}. Artifacts under
// the project are removed with it.
func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	u := getUserFromContext(r.Context())
	ok, err := s.store.DeleteProject(u.UserID, r.PathValue("id"))
	if err != nil {
		logFor(r.Context()).Error("delete project", "err", err)
		writeError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to delete project")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "project not found")
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "project deleted"})
}
