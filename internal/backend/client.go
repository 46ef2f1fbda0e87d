// Package backend wraps the remote outreach API: authentication, job
// extraction, email generation and history. Each call is a single
// request/response; nothing is retried or cached here.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const userAgent = "outreach-engine/1.0 (+local)"

// TokenSource supplies the bearer token for authenticated calls. ok=false
// sends the request without an Authorization header.
type TokenSource interface {
	Token() (token string, ok bool)
}

type TokenFunc func() (string, bool)

func (f TokenFunc) Token() (string, bool) { return f() }

type Client struct {
	base    *url.URL
	hc      *http.Client
	limiter *HostLimiter
	tokens  TokenSource
}

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	Limiter    *HostLimiter
	Tokens     TokenSource
	HTTPClient *http.Client
}

func NewClient(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("backend base url %q is not absolute", opts.BaseURL)
	}
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{base: base, hc: hc, limiter: opts.Limiter, tokens: opts.Tokens}, nil
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string { return c.base.String() }

func (c *Client) endpoint(path string) *url.URL {
	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + path
	return &u
}

// do sends body as JSON and decodes a 2xx JSON answer into out (if non-nil).
// bearer overrides the TokenSource when non-empty.
func (c *Client) do(ctx context.Context, method, path string, body, out any, authed bool, bearer string) error {
	u := c.endpoint(path)

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		rd = bytes.NewReader(b)
	}

	if err := c.limiter.Wait(ctx, u); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		tok := bearer
		if tok == "" && c.tokens != nil {
			tok, _ = c.tokens.Token()
		}
		if tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	res, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 64*1024))
		return decodeError(res.StatusCode, res.Header.Get("Content-Type"), b)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
