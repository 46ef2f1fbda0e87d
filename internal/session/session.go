// Package session is the engine's authentication context: the signed-in user
// and the token that proves it. There is one Session per engine process and
// it is handed explicitly to whatever needs identity.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"

	"outreach-engine/internal/backend"
	"outreach-engine/internal/domain"
	"outreach-engine/internal/secrets"
	"outreach-engine/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountExists      = errors.New("an account with this email already exists")
	ErrAuthFailed         = errors.New("authentication failed")
	ErrNotAuthenticated   = errors.New("not authenticated")
)

type Authenticator interface {
	Login(ctx context.Context, email, password string) (backend.AuthResponse, error)
	Signup(ctx context.Context, email, password, name string) (backend.AuthResponse, error)
	Verify(ctx context.Context, token string) (domain.User, error)
}

type TokenStore interface {
	Save(token string) error
	Load() (string, error)
	Delete() error
}

type Session struct {
	auth   Authenticator
	tokens TokenStore
	db     *sql.DB

	// OnChange is called after every login, logout or teardown.
	OnChange func(u domain.User, signedIn bool)

	mu    sync.RWMutex
	user  *domain.User
	ready bool
}

// New builds an empty, not yet ready session. db may be nil, in which case
// preferences live only in memory.
func New(auth Authenticator, tokens TokenStore, db *sql.DB) *Session {
	return &Session{auth: auth, tokens: tokens, db: db}
}

// Init restores the previous session from the stored token. A token the
// backend no longer accepts is deleted. Ready is true afterwards either way.
func (s *Session) Init(ctx context.Context) error {
	defer func() {
		s.mu.Lock()
		s.ready = true
		s.mu.Unlock()
	}()

	tok, err := s.tokens.Load()
	if errors.Is(err, secrets.ErrNoToken) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load token: %w", err)
	}

	u, err := s.auth.Verify(ctx, tok)
	if err != nil {
		log.Printf("level=info msg=\"stored token rejected\" status=%d", backend.StatusOf(err))
		_ = s.tokens.Delete()
		return nil
	}
	s.setUser(ctx, u)
	return nil
}

func (s *Session) Login(ctx context.Context, email, password string) (domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	res, err := s.auth.Login(ctx, email, password)
	if err != nil {
		switch backend.StatusOf(err) {
		case http.StatusUnauthorized, http.StatusBadRequest, http.StatusForbidden:
			return domain.User{}, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
		}
		return domain.User{}, fmt.Errorf("%w: %w", ErrAuthFailed, err)
	}
	return s.establish(ctx, res)
}

func (s *Session) Signup(ctx context.Context, email, password, name string) (domain.User, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	if email == "" || password == "" || name == "" {
		return domain.User{}, fmt.Errorf("%w: email, password and name are required", ErrAuthFailed)
	}
	res, err := s.auth.Signup(ctx, email, password, name)
	if err != nil {
		var ae *backend.APIError
		if errors.As(err, &ae) && ae.Status == http.StatusBadRequest &&
			strings.Contains(strings.ToLower(ae.Message), "already exists") {
			return domain.User{}, fmt.Errorf("%w: %w", ErrAccountExists, err)
		}
		return domain.User{}, fmt.Errorf("%w: %w", ErrAuthFailed, err)
	}
	return s.establish(ctx, res)
}

func (s *Session) establish(ctx context.Context, res backend.AuthResponse) (domain.User, error) {
	if err := s.tokens.Save(res.Token); err != nil {
		return domain.User{}, fmt.Errorf("%w: %w", ErrAuthFailed, err)
	}
	u := s.setUser(ctx, res.User)
	return u, nil
}

// Logout forgets the user and the stored token.
func (s *Session) Logout() error {
	err := s.tokens.Delete()
	s.clear()
	return err
}

func (s *Session) User() (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return domain.User{}, false
	}
	return *s.user, true
}

// UserID satisfies the history loader.
func (s *Session) UserID() (string, bool) {
	u, ok := s.User()
	return u.ID, ok
}

// Ready reports whether Init has finished, i.e. the UI may decide between the
// dashboard and the login page.
func (s *Session) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// UpdatePreferences validates prefs and stores them locally for the signed-in
// user. The backend has no endpoint for them.
func (s *Session) UpdatePreferences(ctx context.Context, prefs domain.Preferences) (domain.User, error) {
	p, err := prefs.Normalize()
	if err != nil {
		return domain.User{}, err
	}
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return domain.User{}, ErrNotAuthenticated
	}
	s.user.Preferences = p
	u := *s.user
	s.mu.Unlock()

	if s.db != nil {
		if err := store.UpsertPreferences(ctx, s.db, u.ID, p); err != nil {
			return domain.User{}, fmt.Errorf("save preferences: %w", err)
		}
	}
	return u, nil
}

// Reverify asks the backend whether the stored token is still good. A 401
// ends the session; other failures leave it alone.
func (s *Session) Reverify(ctx context.Context) error {
	if _, ok := s.User(); !ok {
		return nil
	}
	tok, err := s.tokens.Load()
	if err != nil {
		s.clear()
		return nil
	}
	u, err := s.auth.Verify(ctx, tok)
	if backend.IsUnauthorized(err) {
		log.Printf("level=info msg=\"session expired\"")
		_ = s.tokens.Delete()
		s.clear()
		return nil
	}
	if err != nil {
		return fmt.Errorf("reverify: %w", err)
	}
	s.setUser(ctx, u)
	return nil
}

// setUser installs u. Signing in as someone else over an existing session
// first reports the old one as signed out so per-user state is torn down.
func (s *Session) setUser(ctx context.Context, u domain.User) domain.User {
	u.Preferences = s.preferencesFor(ctx, u)

	s.mu.Lock()
	prev := s.user
	s.user = &u
	s.mu.Unlock()

	if s.OnChange != nil {
		if prev != nil && prev.ID != u.ID {
			s.OnChange(*prev, false)
		}
		s.OnChange(u, true)
	}
	return u
}

// preferencesFor prefers locally saved preferences over what the backend
// returned, falling back to defaults for anything invalid.
func (s *Session) preferencesFor(ctx context.Context, u domain.User) domain.Preferences {
	if s.db != nil && u.ID != "" {
		p, ok, err := store.GetPreferences(ctx, s.db, u.ID)
		if err != nil {
			log.Printf("level=warn msg=\"read preferences failed\" err=%q", err.Error())
		}
		if ok {
			if np, err := p.Normalize(); err == nil {
				return np
			}
		}
	}
	if np, err := u.Preferences.Normalize(); err == nil {
		return np
	}
	return domain.DefaultPreferences()
}

func (s *Session) clear() {
	s.mu.Lock()
	had := s.user != nil
	s.user = nil
	s.mu.Unlock()

	if had && s.OnChange != nil {
		s.OnChange(domain.User{}, false)
	}
}
