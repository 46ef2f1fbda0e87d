package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"outreach-engine/internal/backend"
	"outreach-engine/internal/history"
	"outreach-engine/internal/session"
	"outreach-engine/internal/wizard"
)

type APIError struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id,omitempty"`
	} `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	var e APIError
	e.Error.Code = code
	e.Error.Message = message
	e.Error.RequestID = RequestIDFrom(r.Context())
	WriteJSON(w, status, e)
}

// errorStatus maps domain errors onto HTTP. Order matters: wrapped backend
// errors are classified by the outermost sentinel.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, wizard.ErrInvalidURL):
		return http.StatusBadRequest, "invalid_url"
	case errors.Is(err, wizard.ErrBusy):
		return http.StatusConflict, "busy"
	case errors.Is(err, wizard.ErrWrongStep):
		return http.StatusConflict, "wrong_step"
	case errors.Is(err, wizard.ErrStale), errors.Is(err, history.ErrUserChanged):
		return http.StatusConflict, "stale"
	case errors.Is(err, wizard.ErrUnknownJob):
		return http.StatusNotFound, "unknown_job"
	case errors.Is(err, wizard.ErrNoJobs):
		return http.StatusUnprocessableEntity, "no_jobs"
	case errors.Is(err, wizard.ErrExtractFailed), errors.Is(err, wizard.ErrGenerateFailed):
		return http.StatusBadGateway, "backend_failed"
	case errors.Is(err, session.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, session.ErrAccountExists):
		return http.StatusConflict, "account_exists"
	case errors.Is(err, session.ErrNotAuthenticated), errors.Is(err, history.ErrNotAuthenticated):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, session.ErrAuthFailed):
		return http.StatusBadGateway, "auth_failed"
	case backend.IsUnauthorized(err):
		return http.StatusUnauthorized, "unauthenticated"
	case backend.StatusOf(err) != 0:
		return http.StatusBadGateway, "backend_failed"
	}
	return http.StatusInternalServerError, "internal_error"
}

func writeErr(w http.ResponseWriter, r *http.Request, err error) {
	status, code := errorStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("level=error msg=\"request failed\" request_id=%s path=%s err=%q", RequestIDFrom(r.Context()), r.URL.Path, err.Error())
		msg = "internal server error"
	}
	WriteError(w, r, status, code, msg)
}
