package config

import (
	"fmt"
	"net/url"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy of cfg along with any
// problems found. Errors block a save; warnings are shown to the user.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Backend.BaseURL = strings.TrimRight(strings.TrimSpace(out.Backend.BaseURL), "/")
	for i := range out.Matching.Rules {
		out.Matching.Rules[i].Any = trimList(out.Matching.Rules[i].Any)
	}
	for i := range out.Matching.Penalties {
		out.Matching.Penalties[i].Any = trimList(out.Matching.Penalties[i].Any)
	}

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}

	u, err := url.Parse(out.Backend.BaseURL)
	switch {
	case err != nil || u.Scheme == "" || u.Host == "":
		res.addErr("backend.base_url must be an absolute URL")
	case u.Scheme == "http" && !isLoopback(u.Hostname()):
		res.addWarn("backend.base_url uses plain http for a non-local host; tokens travel unencrypted.")
	}

	if out.Backend.TimeoutSeconds <= 0 {
		res.addErr("backend.timeout_seconds must be > 0")
	} else if out.Backend.TimeoutSeconds < 15 {
		res.addWarn("backend.timeout_seconds is low (%d); job extraction can take a while.", out.Backend.TimeoutSeconds)
	}
	if out.Backend.RatePerSec <= 0 {
		res.addErr("backend.rate_per_sec must be > 0")
	}
	if out.Backend.Burst <= 0 {
		res.addErr("backend.burst must be > 0")
	}

	if strings.TrimSpace(out.Auth.KeyringService) == "" {
		res.addErr("auth.keyring_service is required")
	}
	if out.Auth.TokenTTLHours <= 0 {
		res.addErr("auth.token_ttl_hours must be > 0")
	}
	if out.Auth.VerifyMinutes <= 0 {
		res.addWarn("auth.verify_minutes is not set; the session is only verified at startup.")
	}

	if out.History.PageSize <= 0 {
		res.addErr("history.page_size must be > 0")
	} else if out.History.PageSize > 100 {
		res.addWarn("history.page_size is large (%d).", out.History.PageSize)
	}
	if out.History.CacheDays < 0 {
		res.addErr("history.cache_days must be >= 0")
	}
	if out.Wizard.IdleMinutes < 0 {
		res.addErr("wizard.idle_minutes must be >= 0")
	}

	for i, r := range out.Matching.Rules {
		if strings.TrimSpace(r.Tag) == "" {
			res.addErr("matching.rules[%d].tag is required", i)
		}
		if len(r.Any) == 0 {
			res.addErr("matching.rules[%d].any must have at least 1 term", i)
		}
	}
	for i, p := range out.Matching.Penalties {
		if strings.TrimSpace(p.Reason) == "" {
			res.addErr("matching.penalties[%d].reason is required", i)
		}
		if len(p.Any) == 0 {
			res.addErr("matching.penalties[%d].any must have at least 1 term", i)
		}
	}

	return out, res
}

func isLoopback(host string) bool {
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}
