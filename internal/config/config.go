// engine/internal/config/config.go
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Rule struct {
	Tag    string   `yaml:"tag" json:"tag"`
	Weight int      `yaml:"weight" json:"weight"`
	Any    []string `yaml:"any" json:"any"`
}

type Penalty struct {
	Reason string   `yaml:"reason" json:"reason"`
	Weight int      `yaml:"weight" json:"weight"`
	Any    []string `yaml:"any" json:"any"`
}

type Config struct {
	App struct {
		Port      int    `yaml:"port" json:"port"`
		DataDir   string `yaml:"data_dir" json:"data_dir"`
		ExportDir string `yaml:"export_dir" json:"export_dir"`
	} `yaml:"app" json:"app"`

	Backend struct {
		BaseURL        string  `yaml:"base_url" json:"base_url"`
		TimeoutSeconds int     `yaml:"timeout_seconds" json:"timeout_seconds"`
		RatePerSec     float64 `yaml:"rate_per_sec" json:"rate_per_sec"`
		Burst          int     `yaml:"burst" json:"burst"`
	} `yaml:"backend" json:"backend"`

	Auth struct {
		KeyringService string `yaml:"keyring_service" json:"keyring_service"`
		TokenTTLHours  int    `yaml:"token_ttl_hours" json:"token_ttl_hours"`
		VerifyMinutes  int    `yaml:"verify_minutes" json:"verify_minutes"`
	} `yaml:"auth" json:"auth"`

	History struct {
		PageSize  int `yaml:"page_size" json:"page_size"`
		CacheDays int `yaml:"cache_days" json:"cache_days"`
	} `yaml:"history" json:"history"`

	Wizard struct {
		IdleMinutes int `yaml:"idle_minutes" json:"idle_minutes"`
	} `yaml:"wizard" json:"wizard"`

	Matching struct {
		Rules     []Rule    `yaml:"rules" json:"rules"`
		Penalties []Penalty `yaml:"penalties" json:"penalties"`
	} `yaml:"matching" json:"matching"`
}

// Default is the configuration used for any field the user file leaves empty.
func Default() Config {
	var cfg Config
	cfg.App.Port = 38472
	cfg.App.ExportDir = "exports"
	cfg.Backend.BaseURL = "http://localhost:8000/api"
	cfg.Backend.TimeoutSeconds = 60
	cfg.Backend.RatePerSec = 2
	cfg.Backend.Burst = 4
	cfg.Auth.KeyringService = "outreach"
	cfg.Auth.TokenTTLHours = 7 * 24
	cfg.Auth.VerifyMinutes = 30
	cfg.History.PageSize = 10
	cfg.History.CacheDays = 90
	cfg.Wizard.IdleMinutes = 60
	return cfg
}

func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	fillDefaults(&cfg)
	ApplyEnv(&cfg)
	return cfg, nil
}

// fillDefaults restores zero values that yaml.Unmarshal overwrote with explicit zeros.
func fillDefaults(cfg *Config) {
	def := Default()
	if cfg.App.Port == 0 {
		cfg.App.Port = def.App.Port
	}
	if cfg.App.ExportDir == "" {
		cfg.App.ExportDir = def.App.ExportDir
	}
	if cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = def.Backend.BaseURL
	}
	if cfg.Backend.TimeoutSeconds == 0 {
		cfg.Backend.TimeoutSeconds = def.Backend.TimeoutSeconds
	}
	if cfg.Backend.RatePerSec == 0 {
		cfg.Backend.RatePerSec = def.Backend.RatePerSec
	}
	if cfg.Backend.Burst == 0 {
		cfg.Backend.Burst = def.Backend.Burst
	}
	if cfg.Auth.KeyringService == "" {
		cfg.Auth.KeyringService = def.Auth.KeyringService
	}
	if cfg.Auth.TokenTTLHours == 0 {
		cfg.Auth.TokenTTLHours = def.Auth.TokenTTLHours
	}
	if cfg.Auth.VerifyMinutes == 0 {
		cfg.Auth.VerifyMinutes = def.Auth.VerifyMinutes
	}
	if cfg.History.PageSize == 0 {
		cfg.History.PageSize = def.History.PageSize
	}
	if cfg.History.CacheDays == 0 {
		cfg.History.CacheDays = def.History.CacheDays
	}
	if cfg.Wizard.IdleMinutes == 0 {
		cfg.Wizard.IdleMinutes = def.Wizard.IdleMinutes
	}
}
