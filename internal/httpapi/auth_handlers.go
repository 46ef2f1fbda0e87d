package httpapi

import (
	"net/http"

	"outreach-engine/internal/domain"
	"outreach-engine/internal/events"
	"outreach-engine/internal/session"
)

type AuthHandler struct {
	Session *session.Session
	Hub     *events.Hub
}

func (h AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decodeJSON(r, &in); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON: "+err.Error())
		return
	}
	u, err := h.Session.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, u)
}

func (h AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decodeJSON(r, &in); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON: "+err.Error())
		return
	}
	u, err := h.Session.Signup(r.Context(), in.Email, in.Password, in.Name)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, u)
}

func (h AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Session.Logout(); err != nil {
		writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	out := meResponse{Ready: h.Session.Ready()}
	if u, ok := h.Session.User(); ok {
		out.Authenticated = true
		out.User = &u
	}
	writeJSON(w, out)
}

func (h AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	u, ok := h.Session.User()
	if !ok {
		writeErr(w, r, session.ErrNotAuthenticated)
		return
	}
	writeJSON(w, u)
}

func (h AuthHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var p domain.Preferences
	if err := decodeJSON(r, &p); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON: "+err.Error())
		return
	}
	if _, ok := h.Session.User(); !ok {
		writeErr(w, r, session.ErrNotAuthenticated)
		return
	}
	u, err := h.Session.UpdatePreferences(r.Context(), p)
	if err != nil {
		if _, nerr := p.Normalize(); nerr != nil {
			WriteError(w, r, http.StatusBadRequest, "invalid_preferences", nerr.Error())
			return
		}
		writeErr(w, r, err)
		return
	}
	events.Toaster{Hub: h.Hub, Scope: "profile"}.Success("Preferences saved successfully")
	writeJSON(w, u)
}

// requireUser writes a 401 and returns false when nobody is signed in.
func requireUser(s *session.Session, w http.ResponseWriter, r *http.Request) bool {
	if _, ok := s.User(); ok {
		return true
	}
	writeErr(w, r, session.ErrNotAuthenticated)
	return false
}
