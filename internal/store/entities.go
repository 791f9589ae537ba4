package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/AgileSoftDev-2025/storycanvas/internal/models"
)

// --- User stories ---

// ListUserStories returns a project's stories in insertion order.
func (s *Store) ListUserStories(projectID string) []models.UserStory {
	var out []models.UserStory
	s.listRows(UserStories, NormalizeProjectID(projectID), func(id string, data []byte) bool {
		var u models.UserStory
		if err := json.Unmarshal(data, &u); err != nil {
			return false
		}
		out = append(out, u)
		return true
	})
	return out
}

// GetUserStory loads one story by id.
func (s *Store) GetUserStory(id string) (*models.UserStory, bool) {
	var u models.UserStory
	if !s.getRow(UserStories, id, &u) {
		return nil, false
	}
	return &u, true
}

// CreateUserStory persists a story, assigning id and timestamps when
// absent and deriving StoryText from its clauses.
func (s *Store) CreateUserStory(u *models.UserStory) error {
	if u.ID == "" {
		id, err := NewID(UserStories)
		if err != nil {
			return fmt.Errorf("generate story id: %w", err)
		}
		u.ID = id
	}
	if u.StoryText == "" {
		u.Recompose()
	}
	if u.Status == "" {
		u.Status = models.StoryDraft
	}
	stampNew(&u.CreatedAt, &u.UpdatedAt)
	return s.insertRow(UserStories, u.ID, u.ProjectID, u)
}

// UpdateUserStory overwrites a stored story, keeping StoryText in step
// with role/action/benefit.
func (s *Store) UpdateUserStory(u *models.UserStory) error {
	u.Recompose()
	u.UpdatedAt = time.Now().UTC()
	return s.updateRow(UserStories, u.ID, u)
}

// DeleteUserStory removes one story.
func (s *Store) DeleteUserStory(id string) bool {
	return s.deleteRow(UserStories, id)
}

// --- Wireframes ---

// ListWireframes returns a project's wireframes in insertion order.
func (s *Store) ListWireframes(projectID string) []models.Wireframe {
	var out []models.Wireframe
	s.listRows(Wireframes, NormalizeProjectID(projectID), func(id string, data []byte) bool {
		var w models.Wireframe
		if err := json.Unmarshal(data, &w); err != nil {
			return false
		}
		out = append(out, w)
		return true
	})
	return out
}

// CreateWireframe persists a wireframe.
func (s *Store) CreateWireframe(w *models.Wireframe) error {
	if w.ID == "" {
		id, err := NewID(Wireframes)
		if err != nil {
			return fmt.Errorf("generate wireframe id: %w", err)
		}
		w.ID = id
	}
	stampNew(&w.CreatedAt, &w.UpdatedAt)
	return s.insertRow(Wireframes, w.ID, w.ProjectID, w)
}

// DeleteWireframe removes one wireframe.
func (s *Store) DeleteWireframe(id string) bool {
	return s.deleteRow(Wireframes, id)
}

// --- Scenarios ---

// ListScenarios returns a project's scenarios in insertion order.
func (s *Store) ListScenarios(projectID string) []models.Scenario {
	var out []models.Scenario
	s.listRows(Scenarios, NormalizeProjectID(projectID), func(id string, data []byte) bool {
		var sc models.Scenario
		if err := json.Unmarshal(data, &sc); err != nil {
			return false
		}
		out = append(out, sc)
		return true
	})
	return out
}

// GetScenario loads one scenario by id.
func (s *Store) GetScenario(id string) (*models.Scenario, bool) {
	var sc models.Scenario
	if !s.getRow(Scenarios, id, &sc) {
		return nil, false
	}
	return &sc, true
}

// CreateScenario persists a scenario. The type is normalized into the
// closed set and the structural-validity flag recomputed on the way in,
// whatever the source (remote payloads included).
func (s *Store) CreateScenario(sc *models.Scenario) error {
	if sc.ID == "" {
		id, err := NewID(Scenarios)
		if err != nil {
			return fmt.Errorf("generate scenario id: %w", err)
		}
		sc.ID = id
	}
	sc.Type = models.NormalizeScenarioType(string(sc.Type))
	sc.StructurallyValid = sc.ValidateSteps()
	if sc.Status == "" {
		sc.Status = models.ScenarioDraft
	}
	stampNew(&sc.CreatedAt, &sc.UpdatedAt)
	return s.insertRow(Scenarios, sc.ID, sc.ProjectID, sc)
}

// UpdateScenario overwrites a stored scenario, renormalizing its type
// and revalidating steps.
func (s *Store) UpdateScenario(sc *models.Scenario) error {
	sc.Type = models.NormalizeScenarioType(string(sc.Type))
	sc.StructurallyValid = sc.ValidateSteps()
	sc.UpdatedAt = time.Now().UTC()
	return s.updateRow(Scenarios, sc.ID, sc)
}

// DeleteScenario removes one scenario.
func (s *Store) DeleteScenario(id string) bool {
	return s.deleteRow(Scenarios, id)
}

func stampNew(created, updated *time.Time) {
	now := time.Now().UTC()
	if created.IsZero() {
		*created = now
	}
	*updated = now
}
