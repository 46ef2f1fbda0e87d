package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

func Validate(cfg Config) error {
	var errs []string

	if cfg.App.Port <= 0 || cfg.App.Port > 65535 {
		errs = append(errs, "app.port must be 1..65535")
	}
	if u, err := url.Parse(cfg.Backend.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, "backend.base_url must be an absolute URL")
	}
	if cfg.Backend.TimeoutSeconds <= 0 {
		errs = append(errs, "backend.timeout_seconds must be > 0")
	}
	if cfg.Backend.RatePerSec <= 0 {
		errs = append(errs, "backend.rate_per_sec must be > 0")
	}
	if cfg.Backend.Burst <= 0 {
		errs = append(errs, "backend.burst must be > 0")
	}
	if strings.TrimSpace(cfg.Auth.KeyringService) == "" {
		errs = append(errs, "auth.keyring_service is required")
	}
	if cfg.Auth.TokenTTLHours <= 0 {
		errs = append(errs, "auth.token_ttl_hours must be > 0")
	}
	if cfg.History.PageSize <= 0 {
		errs = append(errs, "history.page_size must be > 0")
	}

	checkRules := func(name string, rules []Rule) {
		for i, r := range rules {
			if r.Tag == "" {
				errs = append(errs, fmt.Sprintf("%s[%d].tag is required", name, i))
			}
			if len(r.Any) == 0 {
				errs = append(errs, fmt.Sprintf("%s[%d].any must have at least 1 term", name, i))
			}
			for j, term := range r.Any {
				if term == "" {
					errs = append(errs, fmt.Sprintf("%s[%d].any[%d] cannot be empty", name, i, j))
				}
			}
		}
	}

	checkPenalties := func(pens []Penalty) {
		for i, p := range pens {
			if p.Reason == "" {
				errs = append(errs, fmt.Sprintf("matching.penalties[%d].reason is required", i))
			}
			if len(p.Any) == 0 {
				errs = append(errs, fmt.Sprintf("matching.penalties[%d].any must have at least 1 term", i))
			}
		}
	}

	checkRules("matching.rules", cfg.Matching.Rules)
	checkPenalties(cfg.Matching.Penalties)

	if len(errs) > 0 {
		return errors.New("config validation failed:\n- " + strings.Join(errs, "\n- "))
	}
	return nil
}

func SaveAtomic(path string, cfg Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}

	b, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	bak := path + ".bak"

	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}

	_ = os.Remove(bak)
	_ = os.Rename(path, bak)

	return os.Rename(tmp, path)
}
