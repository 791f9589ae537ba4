package version

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/AgileSoftDev-2025/storycanvas/internal/authstate"
)

// cacheTTL bounds how often we hit the GitHub API.
const cacheTTL = 6 * time.Hour

// CacheEntry is the persisted result of the last update check.
type CacheEntry struct {
	LatestVersion  string    `json:"latest_version"`
	CurrentVersion string    `json:"current_version"`
	CheckedAt      time.Time `json:"checked_at"`
	HasUpdate      bool      `json:"has_update"`
}

func cachePath() string {
	dir, err := authstate.ConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "version-check.json")
}

// IsCacheValid reports whether the cached check still applies: the binary
// hasn't changed versions and the entry is younger than the TTL.
func IsCacheValid(entry *CacheEntry, currentVersion string) bool {
	if entry == nil {
		return false
	}
	if entry.CurrentVersion != currentVersion {
		return false
	}
	return time.Since(entry.CheckedAt) < cacheTTL
}

// LoadCache reads the cached check result from disk.
func LoadCache() (*CacheEntry, error) {
	path := cachePath()
	if path == "" {
		return nil, fmt.Errorf("no config dir")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("decode version cache: %w", err)
	}
	return &entry, nil
}

// SaveCache writes the check result to disk, creating the config dir if needed.
func SaveCache(entry *CacheEntry) error {
	path := cachePath()
	if path == "" {
		return fmt.Errorf("no config dir")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// CachedCheck returns the cached result when valid, otherwise performs a
// live check and caches it. Network errors are never cached.
func CachedCheck(currentVersion string) CheckResult {
	if cached, err := LoadCache(); err == nil && IsCacheValid(cached, currentVersion) {
		return CheckResult{
			CurrentVersion: currentVersion,
			LatestVersion:  cached.LatestVersion,
			HasUpdate:      cached.HasUpdate,
		}
	}

	result := Check(currentVersion)
	if result.Error == nil {
		_ = SaveCache(&CacheEntry{
			LatestVersion:  result.LatestVersion,
			CurrentVersion: currentVersion,
			CheckedAt:      time.Now(),
			HasUpdate:      result.HasUpdate,
		})
	}
	return result
}
