package httpapi

import (
	"net/http"

	"outreach-engine/internal/events"
	"outreach-engine/internal/session"
	"outreach-engine/internal/wizard"
)

type HealthHandler struct {
	Session  *session.Session
	Registry *wizard.Registry
	Hub      *events.Hub
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	out := map[string]any{"ok": true}
	if h.Session != nil {
		out["ready"] = h.Session.Ready()
	}
	if h.Registry != nil {
		out["wizards"] = h.Registry.Len()
	}
	if h.Hub != nil {
		out["subscribers"] = h.Hub.Subscribers()
	}
	writeJSON(w, out)
}
