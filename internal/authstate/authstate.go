// Package authstate holds the signed-in state of the CLI: credentials
// and global sync settings under ~/.config/storycanvas. Operating mode
// (online vs offline) is decided from what this package reports.
package authstate

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// AutoSyncConfig holds auto-sync settings.
type AutoSyncConfig struct {
	Enabled *bool  `json:"enabled,omitempty"` // nil = default true
	OnEntry *bool  `json:"on_entry,omitempty"`
	Pull    *bool  `json:"pull,omitempty"`
	Timeout string `json:"timeout,omitempty"` // duration string, default "5s"
}

// SyncConfig holds sync-related settings.
type SyncConfig struct {
	URL  string         `json:"url"`
	Auto AutoSyncConfig `json:"auto"`
}

// Config is the global config stored at ~/.config/storycanvas/config.json.
type Config struct {
	Sync SyncConfig `json:"sync"`
}

// Credentials stores authentication state at ~/.config/storycanvas/auth.json.
type Credentials struct {
	Token     string `json:"token"`
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	ServerURL string `json:"server_url"`
	DeviceID  string `json:"device_id"`
}

const defaultServerURL = "http://localhost:8080"

// ConfigDir returns the config directory, creating it if necessary.
// SC_CONFIG_DIR overrides the default ~/.config/storycanvas (tests use this).
func ConfigDir() (string, error) {
	if v := os.Getenv("SC_CONFIG_DIR"); v != "" {
		if err := os.MkdirAll(v, 0755); err != nil {
			return "", fmt.Errorf("create config dir: %w", err)
		}
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	dir := filepath.Join(home, ".config", "storycanvas")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	return dir, nil
}

// LoadConfig reads the global config; a missing file is an empty config.
func LoadConfig() (*Config, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, "config.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveConfig writes the global config.
func SaveConfig(cfg *Config) error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// LoadAuth reads credentials; (nil, nil) means signed out.
func LoadAuth() (*Credentials, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, "auth.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

// SaveAuth writes credentials (0600 perms).
func SaveAuth(creds *Credentials) error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "auth.json"), data, 0600)
}

// ClearAuth removes stored credentials.
func ClearAuth() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(dir, "auth.json"))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// SignOut clears credentials after the server signaled an expired
// session (401). Errors are logged, not returned: the caller is already
// degrading to offline mode and must not be blocked.
func SignOut(reason string) {
	slog.Warn("session invalid, signing out", "reason", reason)
	if err := ClearAuth(); err != nil {
		slog.Debug("clear auth", "err", err)
	}
}

// GetServerURL returns the backend base URL.
// Priority: SC_SERVER_URL env > auth.json > config.json > default.
func GetServerURL() string {
	if v := os.Getenv("SC_SERVER_URL"); v != "" {
		return v
	}
	if creds, err := LoadAuth(); err == nil && creds != nil && creds.ServerURL != "" {
		return creds.ServerURL
	}
	if cfg, err := LoadConfig(); err == nil && cfg.Sync.URL != "" {
		return cfg.Sync.URL
	}
	return defaultServerURL
}

// GetToken returns the auth token.
// Priority: SC_TOKEN env > auth.json.
func GetToken() string {
	if v := os.Getenv("SC_TOKEN"); v != "" {
		return v
	}
	if creds, err := LoadAuth(); err == nil && creds != nil {
		return creds.Token
	}
	return ""
}

// IsAuthenticated reports whether a token is available.
func IsAuthenticated() bool {
	return GetToken() != ""
}

// AutoSyncEnabled reports whether sync-on-entry is enabled.
// Priority: SC_AUTO_SYNC env > config.json > default true.
func AutoSyncEnabled() bool {
	if v := os.Getenv("SC_AUTO_SYNC"); v != "" {
		return v == "1" || v == "true"
	}
	if cfg, err := LoadConfig(); err == nil && cfg.Sync.Auto.Enabled != nil {
		return *cfg.Sync.Auto.Enabled
	}
	return true
}

// GetDeviceID returns the device ID, generating one if needed.
func GetDeviceID() (string, error) {
	creds, err := LoadAuth()
	if err != nil {
		return "", err
	}
	if creds != nil && creds.DeviceID != "" {
		return creds.DeviceID, nil
	}
	return GenerateDeviceID()
}

// GenerateDeviceID creates a new random device ID (16 bytes hex).
func GenerateDeviceID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
