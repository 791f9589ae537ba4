package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/AgileSoftDev-2025/storycanvas/internal/models"
)

// GetProject loads a project by id. Reports false when the store has
// nothing usable for that id.
func (s *Store) GetProject(id string) (*models.Project, bool) {
	var p models.Project
	if !s.getRow(Projects, NormalizeProjectID(id), &p) {
		return nil, false
	}
	return &p, true
}

// ListProjects returns every cached project in insertion order.
func (s *Store) ListProjects() []models.Project {
	rows, err := s.conn.Query("SELECT id, data FROM projects ORDER BY rowid")
	if err != nil {
		slog.Debug("store: list projects", "err", err)
		return nil
	}
	defer rows.Close()

	var out []models.Project
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			continue
		}
		var p models.Project
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			slog.Debug("store: corrupt project row", "id", id, "err", err)
			continue
		}
		out = append(out, p)
	}
	return out
}

// CreateProject persists a new project, assigning an id and timestamps
// when absent. Ids arriving from the remote side are preserved as-is.
func (s *Store) CreateProject(p *models.Project) error {
	if p.ID == "" {
		id, err := NewID(Projects)
		if err != nil {
			return fmt.Errorf("generate project id: %w", err)
		}
		p.ID = id
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	return s.insertRow(Projects, p.ID, "", p)
}

// UpdateProject overwrites the stored project document.
func (s *Store) UpdateProject(p *models.Project) error {
	p.UpdatedAt = time.Now().UTC()
	return s.updateRow(Projects, p.ID, p)
}

// DeleteProject removes a project only. See DeleteProjectCascade for
// the variant the CLI uses.
func (s *Store) DeleteProject(id string) bool {
	return s.deleteRow(Projects, NormalizeProjectID(id))
}

// DeleteProjectCascade removes a project and every dependent story,
// wireframe and scenario. The flat collection layout makes the cascade
// one indexed delete per table.
func (s *Store) DeleteProjectCascade(id string) bool {
	id = NormalizeProjectID(id)
	for _, c := range EntityCollections {
		err := s.withWriteLock(func() error {
			_, err := s.conn.Exec(fmt.Sprintf("DELETE FROM %s WHERE project_id = ?", c), id)
			return err
		})
		if err != nil {
			slog.Debug("store: cascade delete", "table", c, "project", id, "err", err)
		}
	}
	return s.deleteRow(Projects, id)
}
