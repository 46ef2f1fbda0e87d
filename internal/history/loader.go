package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"outreach-engine/internal/domain"
	"outreach-engine/internal/store"
)

var (
	ErrNotAuthenticated = errors.New("history: not authenticated")
	// ErrUserChanged means the signed-in user changed while a load was in
	// flight; the result was dropped.
	ErrUserChanged = errors.New("history: user changed during load")
)

type Fetcher interface {
	GetHistory(ctx context.Context) ([]domain.GeneratedEmail, error)
}

type Notifier interface {
	Error(msg string)
}

// Loader fetches the history once per call and feeds the Browser. The last
// good fetch is cached per user in sqlite and served, flagged stale, when the
// backend cannot be reached.
type Loader struct {
	Fetch   Fetcher
	DB      *sql.DB // optional
	Browser *Browser
	Notify  Notifier
	// UserID returns the signed-in user, or false when nobody is.
	UserID func() (string, bool)
}

type LoadResult struct {
	Count int  `json:"count"`
	Stale bool `json:"stale"`
}

func (l *Loader) Load(ctx context.Context) (LoadResult, error) {
	userID, ok := "", false
	if l.UserID != nil {
		userID, ok = l.UserID()
	}
	if !ok {
		return LoadResult{}, ErrNotAuthenticated
	}

	emails, err := l.Fetch.GetHistory(ctx)
	if err == nil {
		if l.DB != nil {
			if cerr := store.ReplaceEmails(ctx, l.DB, userID, emails); cerr != nil {
				log.Printf("level=warn msg=\"history cache write failed\" err=%q", cerr.Error())
			}
		}
		if !l.stillSignedIn(userID) {
			return LoadResult{}, ErrUserChanged
		}
		l.Browser.Load(emails, false)
		return LoadResult{Count: len(emails)}, nil
	}

	l.notify("Failed to load history")
	fetchErr := fmt.Errorf("fetch history: %w", err)
	if l.DB == nil {
		return LoadResult{}, fetchErr
	}
	cached, cerr := store.ListEmails(ctx, l.DB, userID)
	if cerr != nil || len(cached) == 0 {
		return LoadResult{}, fetchErr
	}
	if !l.stillSignedIn(userID) {
		return LoadResult{}, ErrUserChanged
	}
	log.Printf("level=info msg=\"serving cached history\" count=%d err=%q", len(cached), err.Error())
	l.Browser.Load(cached, true)
	return LoadResult{Count: len(cached), Stale: true}, nil
}

func (l *Loader) stillSignedIn(userID string) bool {
	id, ok := l.UserID()
	return ok && id == userID
}

func (l *Loader) notify(msg string) {
	if l.Notify != nil {
		l.Notify.Error(msg)
	}
}
