package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestShutdownHandler_Guards(t *testing.T) {
	token := "s3cret"
	cases := []struct {
		name       string
		method     string
		remote     string
		header     string
		wantStatus int
		wantStop   bool
	}{
		{"wrong method", http.MethodGet, "127.0.0.1:5000", token, http.StatusMethodNotAllowed, false},
		{"remote host", http.MethodPost, "10.0.0.2:5000", token, http.StatusForbidden, false},
		{"bad token", http.MethodPost, "127.0.0.1:5000", "nope", http.StatusUnauthorized, false},
		{"ok", http.MethodPost, "127.0.0.1:5000", token, http.StatusOK, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			stopped := make(chan struct{}, 1)
			h := shutdownHandler(&token, func() { stopped <- struct{}{} })

			req := httptest.NewRequest(c.method, "/shutdown", nil)
			req.RemoteAddr = c.remote
			req.Header.Set("X-Shutdown-Token", c.header)
			rec := httptest.NewRecorder()
			h(rec, req)

			if rec.Code != c.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, c.wantStatus)
			}
			select {
			case <-stopped:
				if !c.wantStop {
					t.Error("stop called")
				}
			case <-time.After(200 * time.Millisecond):
				if c.wantStop {
					t.Error("stop not called")
				}
			}
		})
	}
}

func TestWriteTokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.token")
	if err := writeTokenFile(path, "abc"); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(path)
	if err != nil || string(b) != "abc\n" {
		t.Errorf("content = %q, %v", b, err)
	}
	if tok, _ := randomToken(16); len(tok) != 32 {
		t.Errorf("token length = %d", len(tok))
	}
}
