package httpapi

import (
	"net/http"
	"time"
)

// NewMux returns the raw mux so main() can still attach /shutdown (needs srv+token).
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	hh := HealthHandler{Session: d.Session, Registry: d.Registry, Hub: d.Hub}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))

	// Auth + profile
	ah := AuthHandler{Session: d.Session, Hub: d.Hub}
	mux.HandleFunc("/auth/login", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ah.Login,
	}))
	mux.HandleFunc("/auth/signup", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ah.Signup,
	}))
	mux.HandleFunc("/auth/logout", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ah.Logout,
	}))
	mux.HandleFunc("/auth/me", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ah.Me,
	}))
	mux.HandleFunc("/profile", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ah.Profile,
	}))
	mux.HandleFunc("/profile/preferences", methodMux(map[string]http.HandlerFunc{
		http.MethodPut: ah.UpdatePreferences,
	}))

	// Wizard
	wh := WizardHandler{
		Registry: d.Registry,
		Session:  d.Session,
		CfgVal:   d.CfgVal,
		Hub:      d.Hub,
		Saver:    d.Saver,
		Exporter: d.Exporter,
	}
	mux.HandleFunc("/wizard", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: wh.Create,
	}))
	mux.HandleFunc("/wizard/", wh.Route)

	// History
	hsh := HistoryHandler{
		Browser:  d.History,
		Loader:   d.Loader,
		Session:  d.Session,
		Hub:      d.Hub,
		DB:       d.DB,
		Exporter: d.Exporter,
	}
	mux.HandleFunc("/history", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hsh.List,
	}))
	mux.HandleFunc("/history/reload", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: hsh.Reload,
	}))
	mux.HandleFunc("/history/view", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: hsh.SetView,
	}))
	mux.HandleFunc("/history/", hsh.Route)
	mux.HandleFunc("/exports", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hsh.Exports,
	}))

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
		OnReload:    d.OnConfigReload,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Validate,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub, KeepAlive: 25 * time.Second}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	if d.Store != nil {
		dh := DBHandler{DB: d.Store}
		mux.HandleFunc("/db/checkpoint", methodMux(map[string]http.HandlerFunc{
			http.MethodPost: dh.Checkpoint,
		}))
	}

	return mux
}

// Handler wraps mux with the standard middleware chain.
func Handler(mux http.Handler) http.Handler {
	return Chain(mux, RequestID, Recover, AccessLog, Cors)
}
