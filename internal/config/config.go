// Package config manages the per-workspace configuration file and
// locates the workspace root. A workspace is any directory holding a
// .storycanvas/ store; commands run from subdirectories find it by
// walking up, the way version control tools do.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	storeDir   = ".storycanvas"
	configFile = ".storycanvas/config.json"
	lockFile   = ".storycanvas/config.json.lock"
)

// Workspace is the persisted per-workspace state.
type Workspace struct {
	// ActiveProjectID is the project commands operate on when no
	// explicit --project flag is given.
	ActiveProjectID string `json:"active_project_id,omitempty"`
	// DefaultDomain seeds the domain field of new projects.
	DefaultDomain string `json:"default_domain,omitempty"`
}

// FindBaseDir locates the workspace root. SC_DIR wins when set;
// otherwise the search starts at the working directory and walks up
// until a .storycanvas directory appears. Returns the starting
// directory and found=false when no workspace exists.
func FindBaseDir() (dir string, found bool, err error) {
	if v := os.Getenv("SC_DIR"); v != "" {
		_, statErr := os.Stat(filepath.Join(v, storeDir))
		return v, statErr == nil, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", false, fmt.Errorf("determine working directory: %w", err)
	}

	dir = cwd
	for {
		if _, err := os.Stat(filepath.Join(dir, storeDir)); err == nil {
			return dir, true, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return cwd, false, nil
		}
		dir = parent
	}
}

// Load reads the workspace config from disk. A missing file is an empty
// config, not an error.
func Load(baseDir string) (*Workspace, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, configFile))
	if err != nil {
		if os.IsNotExist(err) {
			return &Workspace{}, nil
		}
		return nil, err
	}

	var ws Workspace
	if err := json.Unmarshal(data, &ws); err != nil {
		return nil, err
	}
	return &ws, nil
}

// Save writes the config to disk using atomic write (temp file + rename)
func Save(baseDir string, ws *Workspace) error {
	configPath := filepath.Join(baseDir, configFile)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(ws, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "config-*.json.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, configPath)
}

// withConfigLock serializes access to config.json using flock
func withConfigLock(baseDir string, fn func() error) error {
	lockPath := filepath.Join(baseDir, lockFile)

	if err := os.MkdirAll(filepath.Dir(lockPath), 0755); err != nil {
		return err
	}

	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := lockFileHandle(f); err != nil {
		return err
	}
	defer unlockFileHandle(f)

	return fn()
}

// SetActiveProject records the project subsequent commands default to.
func SetActiveProject(baseDir, projectID string) error {
	return withConfigLock(baseDir, func() error {
		ws, err := Load(baseDir)
		if err != nil {
			return err
		}
		ws.ActiveProjectID = projectID
		return Save(baseDir, ws)
	})
}

// GetActiveProject returns the active project id, or "".
func GetActiveProject(baseDir string) (string, error) {
	ws, err := Load(baseDir)
	if err != nil {
		return "", err
	}
	return ws.ActiveProjectID, nil
}

// ClearActiveProject unsets the active project.
func ClearActiveProject(baseDir string) error {
	return SetActiveProject(baseDir, "")
}
