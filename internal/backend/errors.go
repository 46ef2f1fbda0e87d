package backend

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend status %d", e.Status)
	}
	return fmt.Sprintf("backend status %d: %s", e.Status, e.Message)
}

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	return StatusOf(err) == http.StatusUnauthorized
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Status
	}
	return 0
}

const maxErrorMessage = 300

// decodeError turns an error body into a short human message. FastAPI sends
// {"detail": "..."}; reverse proxies in front of it send HTML pages.
func decodeError(status int, contentType string, body []byte) *APIError {
	ae := &APIError{Status: status}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		ae.Message = http.StatusText(status)
		return ae
	}

	mt, _, _ := mime.ParseMediaType(contentType)
	switch {
	case mt == "application/json" || (mt == "" && (body[0] == '{' || body[0] == '[')):
		ae.Message = jsonMessage(body)
	case mt == "text/html" || bytes.HasPrefix(bytes.ToLower(body), []byte("<!doctype html")) || bytes.HasPrefix(bytes.ToLower(body), []byte("<html")):
		ae.Message = htmlMessage(body)
	}
	if ae.Message == "" {
		ae.Message = cleanText(string(body))
	}
	if r := []rune(ae.Message); len(r) > maxErrorMessage {
		ae.Message = string(r[:maxErrorMessage]) + "..."
	}
	return ae
}

func jsonMessage(body []byte) string {
	var v struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &v); err != nil {
		return ""
	}

	if len(v.Detail) > 0 {
		var s string
		if json.Unmarshal(v.Detail, &s) == nil {
			return s
		}
		// FastAPI validation errors: [{"loc": [...], "msg": "..."}]
		var items []struct {
			Msg string `json:"msg"`
		}
		if json.Unmarshal(v.Detail, &items) == nil {
			var msgs []string
			for _, it := range items {
				if it.Msg != "" {
					msgs = append(msgs, it.Msg)
				}
			}
			return strings.Join(msgs, "; ")
		}
	}
	if len(v.Error) > 0 {
		var s string
		if json.Unmarshal(v.Error, &s) == nil {
			return s
		}
		var obj struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(v.Error, &obj) == nil && obj.Message != "" {
			return obj.Message
		}
	}
	return v.Message
}

func htmlMessage(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	if t := cleanText(doc.Find("title").First().Text()); t != "" {
		return t
	}
	if t := cleanText(doc.Find("h1").First().Text()); t != "" {
		return t
	}
	return cleanText(doc.Find("body").Text())
}

func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}
