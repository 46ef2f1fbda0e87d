package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"outreach-engine/internal/config"
)

func TestEnsureUserConfig_CopiesDefault(t *testing.T) {
	dir := t.TempDir()
	def := filepath.Join(dir, "default.yml")
	if err := os.WriteFile(def, []byte("app:\n  port: 40000\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	dataDir := filepath.Join(dir, "data")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		t.Fatal(err)
	}

	p, err := config.EnsureUserConfig(dataDir, def)
	if err != nil {
		t.Fatalf("EnsureUserConfig: %v", err)
	}
	cfg, err := config.Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.Port != 40000 {
		t.Errorf("port = %d, want 40000", cfg.App.Port)
	}
	if cfg.History.PageSize != 10 {
		t.Errorf("page_size default = %d, want 10", cfg.History.PageSize)
	}
	if cfg.Auth.TokenTTLHours != 168 {
		t.Errorf("token_ttl_hours default = %d, want 168", cfg.Auth.TokenTTLHours)
	}
}

func TestEnsureUserConfig_MissingDefaultWritesBuiltin(t *testing.T) {
	dir := t.TempDir()
	p, err := config.EnsureUserConfig(dir, filepath.Join(dir, "nope.yml"))
	if err != nil {
		t.Fatalf("EnsureUserConfig: %v", err)
	}
	cfg, err := config.Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		t.Errorf("builtin default does not validate: %v", err)
	}
}

func TestLoad_EnvOverridesBaseURL(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(p, []byte("backend:\n  base_url: http://localhost:8000/api\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(config.EnvBaseURL, "https://staging.example.com/api")

	cfg, err := config.Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend.BaseURL != "https://staging.example.com/api" {
		t.Errorf("base_url = %q", cfg.Backend.BaseURL)
	}
}

func TestNormalizeAndValidate(t *testing.T) {
	cfg := config.Default()
	cfg.Backend.BaseURL = " https://api.example.com/api/ "
	cfg.Matching.Rules = []config.Rule{{Tag: "Go", Weight: 5, Any: []string{" go ", "Go", ""}}}

	out, vr := config.NormalizeAndValidate(cfg)
	if !vr.OK() {
		t.Fatalf("unexpected errors: %v", vr.Errors)
	}
	if out.Backend.BaseURL != "https://api.example.com/api" {
		t.Errorf("base_url = %q", out.Backend.BaseURL)
	}
	if got := out.Matching.Rules[0].Any; len(got) != 1 || got[0] != "go" {
		t.Errorf("rule terms = %q, want [go]", got)
	}
}

func TestNormalizeAndValidate_Errors(t *testing.T) {
	cfg := config.Default()
	cfg.Backend.BaseURL = "not a url"
	cfg.History.PageSize = 0

	_, vr := config.NormalizeAndValidate(cfg)
	if vr.OK() {
		t.Fatal("expected validation errors")
	}
	joined := strings.Join(vr.Errors, "\n")
	for _, want := range []string{"backend.base_url", "history.page_size"} {
		if !strings.Contains(joined, want) {
			t.Errorf("errors missing %q: %v", want, vr.Errors)
		}
	}
}

func TestSaveAtomic_KeepsBackup(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yml")
	cfg := config.Default()
	if err := config.SaveAtomic(p, cfg); err != nil {
		t.Fatalf("first save: %v", err)
	}
	cfg.History.PageSize = 25
	if err := config.SaveAtomic(p, cfg); err != nil {
		t.Fatalf("second save: %v", err)
	}
	if _, err := os.Stat(p + ".bak"); err != nil {
		t.Errorf("backup missing: %v", err)
	}
	got, err := config.Load(p)
	if err != nil {
		t.Fatal(err)
	}
	if got.History.PageSize != 25 {
		t.Errorf("page_size = %d, want 25", got.History.PageSize)
	}
}

func TestSaveAtomic_RejectsInvalid(t *testing.T) {
	cfg := config.Default()
	cfg.App.Port = 0
	if err := config.SaveAtomic(filepath.Join(t.TempDir(), "c.yml"), cfg); err == nil {
		t.Error("expected error for port 0")
	}
}
