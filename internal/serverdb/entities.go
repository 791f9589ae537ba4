package serverdb

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/AgileSoftDev-2025/storycanvas/internal/models"
)

// ErrIDTaken reports a write whose client-assigned id already exists
// under a different owner. The row it collided with is left untouched.
var ErrIDTaken = errors.New("id already in use by another owner")

// tableFor maps URL collection names onto their tables. Unknown names
// return "" and callers treat that as a bad request.
func tableFor(collection string) string {
	switch collection {
	case "user-stories":
		return "user_stories"
	case "wireframes":
		return "wireframes"
	case "scenarios":
		return "scenarios"
	}
	return ""
}

// CreateProject stores a project owned by the given user, preserving the
// client-assigned id. Re-uploading an existing id replaces the document,
// but only when the same user owns it; otherwise ErrIDTaken is returned.
func (db *ServerDB) CreateProject(userID string, p *models.Project) error {
	if p.ID == "" {
		id, err := generateID("pr-")
		if err != nil {
			return fmt.Errorf("generate project id: %w", err)
		}
		p.ID = id
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	p.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal project: %w", err)
	}
	res, err := db.conn.Exec(
		`INSERT INTO projects (id, user_id, data) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET data = excluded.data
		 WHERE projects.user_id = excluded.user_id`,
		p.ID, userID, string(data),
	)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	// The conflict update only fires for the owner's own row, so an id
	// held by another account affects nothing.
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("project %s: %w", p.ID, ErrIDTaken)
	}
	return nil
}

// GetProject returns a project owned by the user, or nil if absent.
func (db *ServerDB) GetProject(userID, id string) (*models.Project, error) {
	var data string
	err := db.conn.QueryRow(
		`SELECT data FROM projects WHERE id = ? AND user_id = ?`, id, userID,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	var p models.Project
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("decode project %s: %w", id, err)
	}
	return &p, nil
}

// ListProjects returns all projects owned by the user in upload order.
func (db *ServerDB) ListProjects(userID string) ([]models.Project, error) {
	rows, err := db.conn.Query(
		`SELECT data FROM projects WHERE user_id = ? ORDER BY rowid`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	out := []models.Project{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		var p models.Project
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			continue
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list projects: iterate: %w", err)
	}
	return out, nil
}

// RenameProject updates the stored project's title. Returns false when
// the user owns no such project.
func (db *ServerDB) RenameProject(userID, id, title string) (bool, error) {
	p, err := db.GetProject(userID, id)
	if err != nil {
		return false, err
	}
	if p == nil {
		return false, nil
	}
	p.Title = title
	p.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(p)
	if err != nil {
		return false, fmt.Errorf("marshal project: %w", err)
	}
	_, err = db.conn.Exec(`UPDATE projects SET data = ? WHERE id = ? AND user_id = ?`, string(data), id, userID)
	if err != nil {
		return false, fmt.Errorf("rename project: %w", err)
	}
	return true, nil
}

// DeleteProject removes a project and, via foreign keys, every artifact
// under it. Returns false when the user owns no such project.
func (db *ServerDB) DeleteProject(userID, id string) (bool, error) {
	res, err := db.conn.Exec(`DELETE FROM projects WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete project: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// OwnsProject reports whether the user owns the given project.
func (db *ServerDB) OwnsProject(userID, projectID string) (bool, error) {
	var one int
	err := db.conn.QueryRow(
		`SELECT 1 FROM projects WHERE id = ? AND user_id = ?`, projectID, userID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check project owner: %w", err)
	}
	return true, nil
}

// UpsertEntity stores one entity document under a project. The document
// keeps whatever id the client assigned. An id already stored under a
// different project cannot be overwritten; that returns ErrIDTaken.
func (db *ServerDB) UpsertEntity(collection, projectID, id string, doc json.RawMessage) error {
	table := tableFor(collection)
	if table == "" {
		return fmt.Errorf("unknown collection: %s", collection)
	}
	if id == "" {
		return fmt.Errorf("entity id is required")
	}
	query := fmt.Sprintf(
		`INSERT INTO %s (id, project_id, data) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET data = excluded.data
		 WHERE %s.project_id = excluded.project_id`, table, table)
	res, err := db.conn.Exec(query, id, projectID, string(doc))
	if err != nil {
		return fmt.Errorf("upsert %s: %w", collection, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s %s: %w", collection, id, ErrIDTaken)
	}
	return nil
}

// ListEntityDocs returns a project's entity documents in upload order.
func (db *ServerDB) ListEntityDocs(collection, projectID string) ([]json.RawMessage, error) {
	table := tableFor(collection)
	if table == "" {
		return nil, fmt.Errorf("unknown collection: %s", collection)
	}
	query := fmt.Sprintf(`SELECT data FROM %s WHERE project_id = ? ORDER BY rowid`, table)
	rows, err := db.conn.Query(query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer rows.Close()

	out := []json.RawMessage{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		out = append(out, json.RawMessage(data))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: iterate: %w", collection, err)
	}
	return out, nil
}

// DeleteEntity removes one entity document. Returns false when no row
// matched.
func (db *ServerDB) DeleteEntity(collection, projectID, id string) (bool, error) {
	table := tableFor(collection)
	if table == "" {
		return false, fmt.Errorf("unknown collection: %s", collection)
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ? AND project_id = ?`, table)
	res, err := db.conn.Exec(query, id, projectID)
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", collection, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ProjectStories returns a project's stories decoded into their model
// type, skipping documents that no longer parse.
func (db *ServerDB) ProjectStories(projectID string) ([]models.UserStory, error) {
	docs, err := db.ListEntityDocs("user-stories", projectID)
	if err != nil {
		return nil, err
	}
	out := []models.UserStory{}
	for _, doc := range docs {
		var u models.UserStory
		if err := json.Unmarshal(doc, &u); err == nil {
			out = append(out, u)
		}
	}
	return out, nil
}

// ProjectWireframes returns a project's wireframes decoded into their
// model type.
func (db *ServerDB) ProjectWireframes(projectID string) ([]models.Wireframe, error) {
	docs, err := db.ListEntityDocs("wireframes", projectID)
	if err != nil {
		return nil, err
	}
	out := []models.Wireframe{}
	for _, doc := range docs {
		var w models.Wireframe
		if err := json.Unmarshal(doc, &w); err == nil {
			out = append(out, w)
		}
	}
	return out, nil
}

// SaveStories upserts generated stories under their project.
func (db *ServerDB) SaveStories(stories []models.UserStory) error {
	for i := range stories {
		doc, err := json.Marshal(&stories[i])
		if err != nil {
			return fmt.Errorf("marshal story: %w", err)
		}
		if err := db.UpsertEntity("user-stories", stories[i].ProjectID, stories[i].ID, doc); err != nil {
			return err
		}
	}
	return nil
}

// SaveScenarios upserts generated scenarios under their project.
func (db *ServerDB) SaveScenarios(scenarios []models.Scenario) error {
	for i := range scenarios {
		doc, err := json.Marshal(&scenarios[i])
		if err != nil {
			return fmt.Errorf("marshal scenario: %w", err)
		}
		if err := db.UpsertEntity("scenarios", scenarios[i].ProjectID, scenarios[i].ID, doc); err != nil {
			return err
		}
	}
	return nil
}
