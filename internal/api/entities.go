package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AgileSoftDev-2025/storycanvas/internal/models"
	"github.com/AgileSoftDev-2025/storycanvas/internal/serverdb"
)

// requireProject checks ownership of the project in the URL and writes
// the error response itself when the check fails.
func (s *Server) requireProject(w http.ResponseWriter, r *http.Request) (string, bool) {
	u := getUserFromContext(r.Context())
	projectID := r.PathValue("id")

	owns, err := s.store.OwnsProject(u.UserID, projectID)
	if err != nil {
		logFor(r.Context()).Error("check project owner", "err", err)
		writeError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to check project")
		return "", false
	}
	if !owns {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "project not found")
		return "", false
	}
	return projectID, true
}

// handleListEntities handles GET /v1/projects/{id}/{collection}/.
func (s *Server) handleListEntities(w http.ResponseWriter, r *http.Request) {
	projectID, ok := s.requireProject(w, r)
	if !ok {
		return
	}

	collection := r.PathValue("collection")
	docs, err := s.store.ListEntityDocs(collection, projectID)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}

	title := ""
	u := getUserFromContext(r.Context())
	if p, err := s.store.GetProject(u.UserID, projectID); err == nil && p != nil {
		title = p.Title
	}

	writeData(w, http.StatusOK, collectionData{Items: docs, Count: len(docs), ProjectTitle: title})
}

// handleUpsertEntity handles POST /v1/projects/{id}/{collection}/.
// The body is one entity; the client-assigned id is preserved and the
// project id in the document is forced to the URL's.
func (s *Server) handleUpsertEntity(w http.ResponseWriter, r *http.Request) {
	projectID, ok := s.requireProject(w, r)
	if !ok {
		return
	}

	collection := r.PathValue("collection")
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid json body")
		return
	}

	id, doc, err := normalizeEntity(collection, projectID, raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}

	if err := s.store.UpsertEntity(collection, projectID, id, doc); err != nil {
		if errors.Is(err, serverdb.ErrIDTaken) {
			writeError(w, http.StatusConflict, ErrCodeConflict, "entity id belongs to another project")
			return
		}
		logFor(r.Context()).Error("upsert entity", "collection", collection, "err", err)
		writeError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to store entity")
		return
	}
	writeJSON(w, http.StatusCreated, envelope{Success: true, Message: "stored"})
}

// handleDeleteEntity handles DELETE /v1/projects/{id}/{collection}/{entityID}.
func (s *Server) handleDeleteEntity(w http.ResponseWriter, r *http.Request) {
	projectID, ok := s.requireProject(w, r)
	if !ok {
		return
	}

	collection := r.PathValue("collection")
	deleted, err := s.store.DeleteEntity(collection, projectID, r.PathValue("entityID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "entity not found")
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "deleted"})
}

// normalizeEntity decodes an uploaded document into its model type,
// forces the project id, and applies the same normalization the client
// store does so both copies agree.
func normalizeEntity(collection, projectID string, raw json.RawMessage) (string, json.RawMessage, error) {
	switch collection {
	case "user-stories":
		var u models.UserStory
		if err := json.Unmarshal(raw, &u); err != nil {
			return "", nil, err
		}
		u.ProjectID = projectID
		if u.StoryText == "" {
			u.Recompose()
		}
		doc, err := json.Marshal(&u)
		return u.ID, doc, err
	case "wireframes":
		var wf models.Wireframe
		if err := json.Unmarshal(raw, &wf); err != nil {
			return "", nil, err
		}
		wf.ProjectID = projectID
		doc, err := json.Marshal(&wf)
		return wf.ID, doc, err
	case "scenarios":
		var sc models.Scenario
		if err := json.Unmarshal(raw, &sc); err != nil {
			return "", nil, err
		}
		sc.ProjectID = projectID
		sc.Type = models.NormalizeScenarioType(string(sc.Type))
		sc.StructurallyValid = sc.ValidateSteps()
		doc, err := json.Marshal(&sc)
		return sc.ID, doc, err
	}
	var head struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return "", nil, err
	}
	return head.ID, raw, nil
}
