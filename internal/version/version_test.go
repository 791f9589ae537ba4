package version

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseSemver(t *testing.T) {
	tests := []struct {
		input    string
		expected [3]int
	}{
		{"v1.2.3", [3]int{1, 2, 3}},
		{"1.2.3", [3]int{1, 2, 3}},
		{"v0.1.0", [3]int{0, 1, 0}},
		{"v1.0.0-beta", [3]int{1, 0, 0}},
		{"v2.0.0-rc.1", [3]int{2, 0, 0}},
		{"v1.0.0+build123", [3]int{1, 0, 0}},
		{"v1.0.0-beta+build123", [3]int{1, 0, 0}},
		{"2.0", [3]int{2, 0, 0}},
		{"v5", [3]int{5, 0, 0}},
		{"", [3]int{0, 0, 0}},
		{"invalid", [3]int{0, 0, 0}},
		{"1000.0.0", [3]int{1000, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parseSemver(tt.input)
			if got != tt.expected {
				t.Errorf("parseSemver(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestIsNewer(t *testing.T) {
	tests := []struct {
		candidate string
		current   string
		want      bool
	}{
		{"v1.1.0", "v1.0.0", true},
		{"v2.0.0", "v1.9.9", true},
		{"v1.0.1", "v1.0.0", true},
		{"v1.0.0", "v1.0.0", false},
		{"v1.0.0", "v1.1.0", false},
		{"v0.9.0", "v1.0.0", false},
	}

	for _, tt := range tests {
		if got := isNewer(tt.candidate, tt.current); got != tt.want {
			t.Errorf("isNewer(%q, %q) = %v, want %v", tt.candidate, tt.current, got, tt.want)
		}
	}
}

func TestIsDevelopmentVersion(t *testing.T) {
	for _, v := range []string{"", "dev", "devel", "unknown", "devel+abc123"} {
		if !IsDevelopmentVersion(v) {
			t.Errorf("IsDevelopmentVersion(%q) = false, want true", v)
		}
	}
	for _, v := range []string{"v1.0.0", "1.2.3"} {
		if IsDevelopmentVersion(v) {
			t.Errorf("IsDevelopmentVersion(%q) = true, want false", v)
		}
	}
}

func TestUpdateCommand(t *testing.T) {
	cmd := UpdateCommand("v1.2.3")
	if cmd == "" {
		t.Fatal("UpdateCommand returned empty string for valid version")
	}
	for _, bad := range []string{"v1.2.3--", "v1.2.3-", "$(rm -rf /)", "v1.2.3; echo pwned"} {
		if got := UpdateCommand(bad); got != "" {
			t.Errorf("UpdateCommand(%q) = %q, want empty", bad, got)
		}
	}
}

func TestIsCacheValid(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name           string
		entry          *CacheEntry
		currentVersion string
		want           bool
	}{
		{"nil entry", nil, "v1.0.0", false},
		{
			"valid cache",
			&CacheEntry{LatestVersion: "v1.1.0", CurrentVersion: "v1.0.0", CheckedAt: now, HasUpdate: true},
			"v1.0.0", true,
		},
		{
			"expired cache",
			&CacheEntry{LatestVersion: "v1.1.0", CurrentVersion: "v1.0.0", CheckedAt: now.Add(-7 * time.Hour), HasUpdate: true},
			"v1.0.0", false,
		},
		{
			"version mismatch after upgrade",
			&CacheEntry{LatestVersion: "v1.1.0", CurrentVersion: "v1.0.0", CheckedAt: now, HasUpdate: true},
			"v1.1.0", false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCacheValid(tt.entry, tt.currentVersion); got != tt.want {
				t.Errorf("IsCacheValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSaveAndLoadCache(t *testing.T) {
	t.Setenv("SC_CONFIG_DIR", t.TempDir())

	entry := &CacheEntry{
		LatestVersion:  "v1.2.3",
		CurrentVersion: "v1.0.0",
		CheckedAt:      time.Now().Round(time.Second),
		HasUpdate:      true,
	}
	if err := SaveCache(entry); err != nil {
		t.Fatalf("SaveCache() error = %v", err)
	}

	loaded, err := LoadCache()
	if err != nil {
		t.Fatalf("LoadCache() error = %v", err)
	}
	if loaded.LatestVersion != entry.LatestVersion || loaded.HasUpdate != entry.HasUpdate {
		t.Errorf("round-trip mismatch: got %+v, want %+v", loaded, entry)
	}
	if !loaded.CheckedAt.Equal(entry.CheckedAt) {
		t.Errorf("CheckedAt mismatch: got %v, want %v", loaded.CheckedAt, entry.CheckedAt)
	}
}

func TestLoadCacheErrors(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SC_CONFIG_DIR", dir)

	if _, err := LoadCache(); err == nil {
		t.Error("LoadCache() should return error for missing file")
	}

	path := filepath.Join(dir, "version-check.json")
	if err := os.WriteFile(path, []byte(`{invalid json}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCache(); err == nil {
		t.Error("LoadCache() should return error for corrupted JSON")
	}
}
