package httpapi

import (
	"database/sql"
	"net/http"
	"strconv"

	"outreach-engine/internal/events"
	"outreach-engine/internal/export"
	"outreach-engine/internal/history"
	"outreach-engine/internal/session"
	"outreach-engine/internal/store"
)

type HistoryHandler struct {
	Browser  *history.Browser
	Loader   *history.Loader
	Session  *session.Session
	Hub      *events.Hub
	DB       *sql.DB
	Exporter export.Exporter
}

type historyResponse struct {
	history.View
	Status history.Status `json:"status"`
}

func (h HistoryHandler) current() historyResponse {
	return historyResponse{View: h.Browser.View(), Status: h.Browser.Status()}
}

// List returns the current page, fetching the history on first use.
func (h HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	if !requireUser(h.Session, w, r) {
		return
	}
	if !h.Browser.Status().Loaded {
		if !h.load(w, r) {
			return
		}
	}
	writeJSON(w, h.current())
}

func (h HistoryHandler) Reload(w http.ResponseWriter, r *http.Request) {
	if !requireUser(h.Session, w, r) {
		return
	}
	if !h.load(w, r) {
		return
	}
	writeJSON(w, h.current())
}

func (h HistoryHandler) load(w http.ResponseWriter, r *http.Request) bool {
	res, err := h.Loader.Load(r.Context())
	if err != nil {
		writeErr(w, r, err)
		return false
	}
	h.Hub.Emit(RequestIDFrom(r.Context()), events.TypeHistory, res)
	return true
}

// SetView applies search and company, then page. A page sent together with a
// filter that actually changed is ignored: the re-filter resets to page 1.
func (h HistoryHandler) SetView(w http.ResponseWriter, r *http.Request) {
	if !requireUser(h.Session, w, r) {
		return
	}
	var in viewRequest
	if err := decodeJSON(r, &in); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON: "+err.Error())
		return
	}
	before := h.Browser.Status()
	if in.Search != nil {
		h.Browser.SetSearch(*in.Search)
	}
	if in.Company != nil {
		h.Browser.SetCompany(*in.Company)
	}
	after := h.Browser.Status()
	refiltered := after.Search != before.Search || after.Company != before.Company
	if in.Page != nil && !refiltered {
		h.Browser.SetPage(*in.Page)
	}
	writeJSON(w, h.current())
}

// Route serves /history/{id} and /history/{id}/export.
func (h HistoryHandler) Route(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r.URL.Path, "/history/")
	if len(parts) == 0 || len(parts) > 2 || (len(parts) == 2 && parts[1] != "export") {
		http.NotFound(w, r)
		return
	}
	want := http.MethodGet
	if len(parts) == 2 {
		want = http.MethodPost
	}
	if r.Method != want {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !requireUser(h.Session, w, r) {
		return
	}
	e, ok := h.Browser.Find(parts[0])
	if !ok {
		WriteError(w, r, http.StatusNotFound, "unknown_email", "email not found in history")
		return
	}
	if len(parts) == 1 {
		writeJSON(w, e)
		return
	}
	exportEmail(w, r, h.Exporter, h.Hub, e)
}

func (h HistoryHandler) Exports(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	list, err := store.ListExports(r.Context(), h.DB, limit)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if list == nil {
		list = []store.ExportRecord{}
	}
	writeJSON(w, list)
}
