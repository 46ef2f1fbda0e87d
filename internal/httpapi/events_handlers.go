package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"outreach-engine/internal/events"
)

type EventsHandler struct {
	Hub *events.Hub
	// KeepAlive is the ping interval; zero disables pings after the first.
	KeepAlive time.Duration
}

func (h EventsHandler) ServeSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteError(w, r, http.StatusInternalServerError, "stream_unsupported", "Streaming unsupported")
		return
	}

	ch := h.Hub.Subscribe()
	defer h.Hub.Unsubscribe(ch)

	reqID := RequestIDFrom(r.Context())
	send := func(msg string) {
		fmt.Fprintf(w, "event: message\ndata: %s\n\n", msg)
		flusher.Flush()
	}
	send(events.MakeEvent(reqID, events.TypePing, 1, nil))

	var tick <-chan time.Time
	if h.KeepAlive > 0 {
		t := time.NewTicker(h.KeepAlive)
		defer t.Stop()
		tick = t.C
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-tick:
			send(events.MakeEvent(reqID, events.TypePing, 1, nil))
		case msg, ok := <-ch:
			if !ok {
				return
			}
			send(msg)
		}
	}
}
