package events

import (
	"encoding/json"
	"testing"
)

func TestToaster_PublishesToastEnvelope(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()
	defer h.Unsubscribe(ch)

	Toaster{Hub: h, Scope: "history"}.Error("Failed to load history")

	var e Event
	if err := json.Unmarshal([]byte(<-ch), &e); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if e.Type != TypeToast || e.Version != 1 {
		t.Errorf("event = %+v", e)
	}
	var toast Toast
	if err := json.Unmarshal(e.Data, &toast); err != nil {
		t.Fatal(err)
	}
	if toast.Level != LevelError || toast.Message != "Failed to load history" || toast.Scope != "history" {
		t.Errorf("toast = %+v", toast)
	}
}

func TestHub_DropsForSlowSubscriber(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()
	defer h.Unsubscribe(ch)

	for i := 0; i < subscriberBuffer+5; i++ {
		h.Publish("x")
	}
	if len(ch) != subscriberBuffer {
		t.Errorf("buffered = %d, want %d", len(ch), subscriberBuffer)
	}
}

func TestHub_UnsubscribeTwice(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()
	h.Unsubscribe(ch)
	h.Unsubscribe(ch)
	if h.Subscribers() != 0 {
		t.Errorf("subscribers = %d", h.Subscribers())
	}
}

func TestNilHubEmit(t *testing.T) {
	var h *Hub
	h.Emit("", TypePing, nil)
	Toaster{}.Info("no hub, no panic")
}
