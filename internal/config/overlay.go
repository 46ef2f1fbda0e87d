// config/overlay.go
package config

import (
	"os"
	"strings"
)

const (
	EnvBaseURL   = "OUTREACH_API_BASE_URL"
	EnvExportDir = "OUTREACH_EXPORT_DIR"
)

// ApplyEnv overlays environment overrides on top of the file config.
// The desktop shell sets these when it points the engine at a staging backend.
func ApplyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvBaseURL)); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvExportDir)); v != "" {
		cfg.App.ExportDir = v
	}
}
