package secrets

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/zalando/go-keyring"
)

const (
	// “Service” groups the engine's secrets in the OS keychain.
	DefaultKeyringService = "outreach"

	DefaultTokenTTL = 7 * 24 * time.Hour
)

var ErrNoToken = errors.New("no auth token stored")

type storedToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenStore keeps the session token in the OS keychain with an expiry,
// the way a browser keeps an auth cookie.
type TokenStore struct {
	Service string
	Account string
	TTL     time.Duration

	// Now is replaced in tests.
	Now func() time.Time

	mu     sync.Mutex
	cached *storedToken
}

func NewTokenStore(service, account string, ttl time.Duration) *TokenStore {
	if strings.TrimSpace(service) == "" {
		service = DefaultKeyringService
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenStore{Service: service, Account: account, TTL: ttl, Now: time.Now}
}

// AccountForBackend scopes the keychain entry to one backend so that a
// staging token never gets sent to production.
func AccountForBackend(baseURL string) string {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || u.Host == "" {
		return "outreach:token"
	}
	return fmt.Sprintf("outreach:token@%s", strings.ToLower(u.Host))
}

func (s *TokenStore) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *TokenStore) Save(token string) error {
	if strings.TrimSpace(s.Account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(token) == "" {
		return errors.New("token is empty")
	}
	st := storedToken{Token: token, ExpiresAt: s.now().Add(s.TTL).UTC()}
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	if err := keyring.Set(s.Service, s.Account, string(b)); err != nil {
		return fmt.Errorf("store token: %w", err)
	}

	s.mu.Lock()
	s.cached = &st
	s.mu.Unlock()
	return nil
}

// Load returns the stored token. Expired tokens are removed and reported as ErrNoToken.
func (s *TokenStore) Load() (string, error) {
	s.mu.Lock()
	st := s.cached
	s.mu.Unlock()

	if st == nil {
		raw, err := keyring.Get(s.Service, s.Account)
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNoToken
		}
		if err != nil {
			return "", fmt.Errorf("read token: %w", err)
		}
		var v storedToken
		if err := json.Unmarshal([]byte(raw), &v); err != nil || strings.TrimSpace(v.Token) == "" {
			_ = s.Delete()
			return "", ErrNoToken
		}
		st = &v
		s.mu.Lock()
		s.cached = st
		s.mu.Unlock()
	}

	if !s.now().Before(st.ExpiresAt) {
		_ = s.Delete()
		return "", ErrNoToken
	}
	return st.Token, nil
}

func (s *TokenStore) Delete() error {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()

	err := keyring.Delete(s.Service, s.Account)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// Token implements backend.TokenSource.
func (s *TokenStore) Token() (string, bool) {
	tok, err := s.Load()
	if err != nil {
		return "", false
	}
	return tok, true
}
