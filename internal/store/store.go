// Package store implements the durable local cache of StoryCanvas
// entities. It is the single source the UI layer reads; the remote
// backend only ever feeds it through the sync coordinator. Reads never
// fail: missing entities report not-found and corrupt rows are skipped,
// because the store is a cache, not a system of record.
package store

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

const (
	dbFile = ".storycanvas/canvas.db"

	projectIDPrefix   = "pr-"
	storyIDPrefix     = "us-"
	wireframeIDPrefix = "wf-"
	scenarioIDPrefix  = "sc-"
)

// Collection names the four entity tables.
type Collection string

const (
	Projects    Collection = "projects"
	UserStories Collection = "user_stories"
	Wireframes  Collection = "wireframes"
	Scenarios   Collection = "scenarios"
)

// EntityCollections lists the per-project collections, in sync order.
var EntityCollections = []Collection{UserStories, Wireframes, Scenarios}

// Each collection is one flat table: indexed id and project_id columns
// for lookup, the entity itself as a JSON document. Entities are not
// partitioned per project; rowid preserves insertion order.
const schema = `
CREATE TABLE IF NOT EXISTS projects (
	id   TEXT PRIMARY KEY,
	data TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS user_stories (
	id         TEXT PRIMARY KEY,
	project_id TEXT NOT NULL,
	data       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_user_stories_project ON user_stories(project_id);
CREATE TABLE IF NOT EXISTS wireframes (
	id         TEXT PRIMARY KEY,
	project_id TEXT NOT NULL,
	data       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_wireframes_project ON wireframes(project_id);
CREATE TABLE IF NOT EXISTS scenarios (
	id         TEXT PRIMARY KEY,
	project_id TEXT NOT NULL,
	data       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_scenarios_project ON scenarios(project_id);
`

// Store wraps the sqlite connection backing the local cache.
type Store struct {
	conn    *sql.DB
	baseDir string
	locker  *writeLocker
}

// Open opens an existing store and applies the schema (idempotent).
func Open(baseDir string) (*Store, error) {
	dbPath := filepath.Join(baseDir, dbFile)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("store not found: run 'sc init' first")
	}
	return open(baseDir, dbPath)
}

// Initialize creates the store directory and database.
func Initialize(baseDir string) (*Store, error) {
	dbPath := filepath.Join(baseDir, dbFile)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return open(baseDir, dbPath)
}

func open(baseDir, dbPath string) (*Store, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	// WAL for concurrent reads while writes are serialized
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA busy_timeout=500"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	conn.Exec("PRAGMA synchronous=NORMAL")

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{conn: conn, baseDir: baseDir, locker: newWriteLocker(baseDir)}, nil
}

// OpenMemory opens an in-memory store, used by tests.
func OpenMemory() (*Store, error) {
	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{conn: conn, locker: nil}, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// BaseDir returns the workspace directory the store lives under.
func (s *Store) BaseDir() string {
	return s.baseDir
}

// NewID generates an entity id with the given collection's prefix.
// 4 random bytes (8 hex chars) keeps ids short while making collisions
// across a single browser-profile-sized dataset negligible.
func NewID(c Collection) (string, error) {
	bytes := make([]byte, 4)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return idPrefix(c) + hex.EncodeToString(bytes), nil
}

func idPrefix(c Collection) string {
	switch c {
	case Projects:
		return projectIDPrefix
	case UserStories:
		return storyIDPrefix
	case Wireframes:
		return wireframeIDPrefix
	case Scenarios:
		return scenarioIDPrefix
	}
	return ""
}

// NormalizeProjectID ensures a project ID carries the pr- prefix.
// Accepts bare hex like "abc12345" and returns "pr-abc12345".
func NormalizeProjectID(id string) string {
	if id == "" || strings.HasPrefix(id, projectIDPrefix) {
		return id
	}
	return projectIDPrefix + id
}
