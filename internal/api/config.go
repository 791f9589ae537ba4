package api

import (
	"os"
	"time"
)

// Config holds the backend configuration, loaded from environment
// variables.
type Config struct {
	ListenAddr      string
	ServerDBPath    string
	ShutdownTimeout time.Duration
	AllowSignup     bool
	LogFormat       string // "json" (default) or "text"
	LogLevel        string // "debug", "info" (default), "warn", "error"
}

// LoadConfig reads configuration from environment variables with
// sensible defaults.
func LoadConfig() Config {
	cfg := Config{
		ListenAddr:      ":8080",
		ServerDBPath:    "./data/storycanvas.db",
		ShutdownTimeout: 30 * time.Second,
		AllowSignup:     true,
		LogFormat:       "json",
		LogLevel:        "info",
	}

	if v := os.Getenv("SC_BACKEND_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("SC_BACKEND_DB_PATH"); v != "" {
		cfg.ServerDBPath = v
	}
	if v := os.Getenv("SC_BACKEND_SHUTDOWN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.ShutdownTimeout = d
		}
	}
	if v := os.Getenv("SC_BACKEND_ALLOW_SIGNUP"); v == "false" || v == "0" {
		cfg.AllowSignup = false
	}
	if v := os.Getenv("SC_BACKEND_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("SC_BACKEND_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	return cfg
}
