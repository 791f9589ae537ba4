package api

import (
	"encoding/json"
	"net/http"

	"github.com/AgileSoftDev-2025/storycanvas/internal/generate"
	"github.com/AgileSoftDev-2025/storycanvas/internal/models"
	"github.com/AgileSoftDev-2025/storycanvas/internal/store"
)

// The reference backend stands in for the hosted generation service:
// where production would call a language model, it runs the same
// deterministic template engine the client falls back to, so every
// tier of the chain produces artifacts with identical shape.

// handleGenerateStories handles POST /v1/projects/{id}/generate-user-stories/.
func (s *Server) handleGenerateStories(w http.ResponseWriter, r *http.Request) {
	u := getUserFromContext(r.Context())
	p, err := s.store.GetProject(u.UserID, r.PathValue("id"))
	if err != nil {
		logFor(r.Context()).Error("get project for generation", "err", err)
		writeError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to load project")
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "project not found")
		return
	}

	stories := generate.TemplateUserStories(p)
	for i := range stories {
		id, err := store.NewID(store.UserStories)
		if err != nil {
			writeError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to assign ids")
			return
		}
		stories[i].ID = id
		stories[i].GeneratedByLLM = true
	}

	if err := s.store.SaveStories(stories); err != nil {
		logFor(r.Context()).Error("save generated stories", "err", err)
		writeError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to store generated stories")
		return
	}

	logFor(r.Context()).Info("generated stories", "project", p.ID, "count", len(stories))
	writeData(w, http.StatusOK, generatedData{Generated: stories, Count: len(stories)})
}

// handleGenerateScenarios handles POST /v1/projects/{id}/generate-scenarios/.
func (s *Server) handleGenerateScenarios(w http.ResponseWriter, r *http.Request) {
	u := getUserFromContext(r.Context())
	p, err := s.store.GetProject(u.UserID, r.PathValue("id"))
	if err != nil {
		logFor(r.Context()).Error("get project for generation", "err", err)
		writeError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to load project")
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "project not found")
		return
	}

	stories, err := s.store.ProjectStories(p.ID)
	if err != nil {
		logFor(r.Context()).Error("load stories for generation", "err", err)
		writeError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to load stories")
		return
	}
	frames, err := s.store.ProjectWireframes(p.ID)
	if err != nil {
		logFor(r.Context()).Error("load wireframes for generation", "err", err)
		writeError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to load wireframes")
		return
	}

	scenarios := generate.TemplateScenarios(p, stories, frames)
	for i := range scenarios {
		id, err := store.NewID(store.Scenarios)
		if err != nil {
			writeError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to assign ids")
			return
		}
		scenarios[i].ID = id
		scenarios[i].GeneratedByLLM = true
		scenarios[i].StructurallyValid = scenarios[i].ValidateSteps()
	}

	if err := s.store.SaveScenarios(scenarios); err != nil {
		logFor(r.Context()).Error("save generated scenarios", "err", err)
		writeError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to store generated scenarios")
		return
	}

	logFor(r.Context()).Info("generated scenarios", "project", p.ID, "count", len(scenarios))
	writeData(w, http.StatusOK, generatedData{Generated: scenarios, Count: len(scenarios)})
}

// localGenRequest is the anonymous generation body: the server holds no
// record of the project, so everything needed travels in the request.
type localGenRequest struct {
	ProjectData *models.Project    `json:"project_data"`
	ProjectID   string             `json:"project_id"`
	UserStories []models.UserStory `json:"user_stories,omitempty"`
	Wireframes  []models.Wireframe `json:"wireframes,omitempty"`
}

// localGenResponse is the flatter envelope the anonymous tier speaks.
type localGenResponse struct {
	Success   bool   `json:"success"`
	Stories   any    `json:"stories,omitempty"`
	Scenarios any    `json:"scenarios,omitempty"`
	Error     string `json:"error,omitempty"`
}

func decodeLocalGen(w http.ResponseWriter, r *http.Request) (*localGenRequest, bool) {
	var req localGenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusOK, localGenResponse{Success: false, Error: "invalid json body"})
		return nil, false
	}
	if req.ProjectData == nil {
		writeJSON(w, http.StatusOK, localGenResponse{Success: false, Error: "project_data is required"})
		return nil, false
	}
	if req.ProjectData.ID == "" {
		req.ProjectData.ID = req.ProjectID
	}
	return &req, true
}

// handleLocalGenerateStories handles the anonymous story tier. Nothing
// is persisted server-side; the caller owns the result.
func (s *Server) handleLocalGenerateStories(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeLocalGen(w, r)
	if !ok {
		return
	}

	stories := generate.TemplateUserStories(req.ProjectData)
	logFor(r.Context()).Info("generated local stories", "project", req.ProjectData.ID, "count", len(stories))
	writeJSON(w, http.StatusOK, localGenResponse{Success: true, Stories: stories})
}

// handleLocalGenerateScenarios handles the anonymous scenario tier.
func (s *Server) handleLocalGenerateScenarios(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeLocalGen(w, r)
	if !ok {
		return
	}

	scenarios := generate.TemplateScenarios(req.ProjectData, req.UserStories, req.Wireframes)
	logFor(r.Context()).Info("generated local scenarios", "project", req.ProjectData.ID, "count", len(scenarios))
	writeJSON(w, http.StatusOK, localGenResponse{Success: true, Scenarios: scenarios})
}
