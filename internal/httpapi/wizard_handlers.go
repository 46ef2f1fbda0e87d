package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"

	"outreach-engine/internal/config"
	"outreach-engine/internal/domain"
	"outreach-engine/internal/events"
	"outreach-engine/internal/export"
	"outreach-engine/internal/rank"
	"outreach-engine/internal/session"
	"outreach-engine/internal/wizard"
)

// WizardHandler serves /wizard and /wizard/{id}/...
type WizardHandler struct {
	Registry *wizard.Registry
	Session  *session.Session
	CfgVal   *atomic.Value
	Hub      *events.Hub
	Saver    EmailSaver
	Exporter export.Exporter
}

func (h WizardHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !requireUser(h.Session, w, r) {
		return
	}
	wz := h.Registry.Create()
	WriteJSON(w, http.StatusCreated, h.response(wz.State()))
}

// Route dispatches everything below /wizard/.
func (h WizardHandler) Route(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r.URL.Path, "/wizard/")
	if len(parts) == 0 {
		http.NotFound(w, r)
		return
	}
	if !requireUser(h.Session, w, r) {
		return
	}
	wz, ok := h.Registry.Get(parts[0])
	if !ok {
		WriteError(w, r, http.StatusNotFound, "unknown_wizard", "wizard session not found")
		return
	}

	action := strings.Join(parts[1:], "/")
	routes := map[string]map[string]func(http.ResponseWriter, *http.Request, *wizard.Wizard){
		"":             {http.MethodGet: h.get, http.MethodDelete: h.remove},
		"submit":       {http.MethodPost: h.submit},
		"select":       {http.MethodPost: h.selectJob},
		"back":         {http.MethodPost: h.back},
		"reset":        {http.MethodPost: h.reset},
		"email/text":   {http.MethodGet: h.emailText},
		"email/export": {http.MethodPost: h.emailExport},
		"email/save":   {http.MethodPost: h.emailSave},
	}
	byMethod, ok := routes[action]
	if !ok {
		http.NotFound(w, r)
		return
	}
	fn, ok := byMethod[r.Method]
	if !ok {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	fn(w, r, wz)
}

func (h WizardHandler) response(st wizard.State) wizardResponse {
	out := wizardResponse{State: st, Fits: []rank.Fit{}}
	if h.CfgVal == nil || len(st.Jobs) == 0 {
		return out
	}
	if cfg, ok := h.CfgVal.Load().(config.Config); ok {
		out.Fits = rank.Annotate(rank.NewYAMLScorer(cfg), st.Jobs)
	}
	return out
}

func (h WizardHandler) get(w http.ResponseWriter, r *http.Request, wz *wizard.Wizard) {
	writeJSON(w, h.response(wz.State()))
}

func (h WizardHandler) remove(w http.ResponseWriter, r *http.Request, wz *wizard.Wizard) {
	h.Registry.Remove(wz.ID())
	w.WriteHeader(http.StatusNoContent)
}

func (h WizardHandler) submit(w http.ResponseWriter, r *http.Request, wz *wizard.Wizard) {
	var in submitRequest
	if err := decodeJSON(r, &in); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON: "+err.Error())
		return
	}
	if err := wz.Submit(r.Context(), in.URL); err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, h.response(wz.State()))
}

func (h WizardHandler) selectJob(w http.ResponseWriter, r *http.Request, wz *wizard.Wizard) {
	var in selectRequest
	if err := decodeJSON(r, &in); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON: "+err.Error())
		return
	}
	if err := wz.Select(r.Context(), in.JobID); err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, h.response(wz.State()))
}

func (h WizardHandler) back(w http.ResponseWriter, r *http.Request, wz *wizard.Wizard) {
	if err := wz.Back(); err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, h.response(wz.State()))
}

func (h WizardHandler) reset(w http.ResponseWriter, r *http.Request, wz *wizard.Wizard) {
	wz.Reset()
	writeJSON(w, h.response(wz.State()))
}

func (h WizardHandler) currentEmail(w http.ResponseWriter, r *http.Request, wz *wizard.Wizard) (domain.GeneratedEmail, bool) {
	e, ok := wz.Email()
	if !ok {
		writeErr(w, r, wizard.ErrWrongStep)
	}
	return e, ok
}

func (h WizardHandler) emailText(w http.ResponseWriter, r *http.Request, wz *wizard.Wizard) {
	e, ok := h.currentEmail(w, r, wz)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(e.Content))
}

func (h WizardHandler) emailExport(w http.ResponseWriter, r *http.Request, wz *wizard.Wizard) {
	e, ok := h.currentEmail(w, r, wz)
	if !ok {
		return
	}
	exportEmail(w, r, h.Exporter, h.Hub, e)
}

func (h WizardHandler) emailSave(w http.ResponseWriter, r *http.Request, wz *wizard.Wizard) {
	e, ok := h.currentEmail(w, r, wz)
	if !ok {
		return
	}
	if h.Saver == nil {
		WriteError(w, r, http.StatusNotImplemented, "not_configured", "history saving not configured")
		return
	}
	toast := events.Toaster{Hub: h.Hub, Scope: wz.ID()}
	if err := h.Saver.SaveEmail(r.Context(), e); err != nil {
		toast.Error("Failed to save email")
		writeErr(w, r, fmt.Errorf("save email: %w", err))
		return
	}
	toast.Success("Email saved to history")
	w.WriteHeader(http.StatusNoContent)
}

// exportEmail renders e in the requested format, stores it in the export
// directory and streams it back as a download.
func exportEmail(w http.ResponseWriter, r *http.Request, x export.Exporter, hub *events.Hub, e domain.GeneratedEmail) {
	f, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_format", err.Error())
		return
	}
	toast := events.Toaster{Hub: hub, Scope: "export"}

	b, err := export.Render(e, f)
	if err != nil {
		toast.Error("Failed to export email")
		writeErr(w, r, err)
		return
	}
	if x.Dir != "" {
		rec, err := x.Write(r.Context(), e, f, b)
		if err != nil {
			toast.Error("Failed to export email")
			writeErr(w, r, err)
			return
		}
		hub.Emit(RequestIDFrom(r.Context()), events.TypeExported, rec)
	}
	toast.Success(fmt.Sprintf("Email exported as %s", strings.ToUpper(string(f))))

	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(e, f)))
	_, _ = w.Write(b)
}
