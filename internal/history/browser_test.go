package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"outreach-engine/internal/domain"
	"outreach-engine/internal/store"
)

// ── Browser ─────────────────────────────────────────────────────────────────

func TestBrowser_SearchChangeResetsPage(t *testing.T) {
	b := NewBrowser(10)
	b.Load(numbered(25), false)
	b.SetPage(3)
	if got := b.View().Page; got != 3 {
		t.Fatalf("page = %d, want 3", got)
	}
	b.SetSearch("subject")
	if got := b.View().Page; got != 1 {
		t.Errorf("page after search change = %d, want 1", got)
	}
}

func TestBrowser_SameSearchKeepsPage(t *testing.T) {
	b := NewBrowser(10)
	b.Load(numbered(25), false)
	b.SetSearch("subject")
	b.SetPage(2)
	b.SetSearch("subject")
	if got := b.View().Page; got != 2 {
		t.Errorf("page = %d, want 2", got)
	}
}

func TestBrowser_CompanyChangeResetsPage(t *testing.T) {
	b := NewBrowser(2)
	b.Load([]domain.GeneratedEmail{
		mail("1", "a", "t", "Acme"),
		mail("2", "b", "t", "Zeta"),
		mail("3", "c", "t", "Acme"),
		mail("4", "d", "t", "Acme"),
	}, false)
	b.SetPage(2)
	b.SetCompany("Acme")
	v := b.View()
	if v.Page != 1 || v.Filtered != 3 || v.TotalPages != 2 {
		t.Errorf("got page=%d filtered=%d pages=%d", v.Page, v.Filtered, v.TotalPages)
	}
}

func TestBrowser_SetPageBeyondEndIsEmpty(t *testing.T) {
	b := NewBrowser(10)
	b.Load(numbered(25), false)
	b.SetPage(4)
	v := b.View()
	if len(v.Items) != 0 || v.TotalPages != 3 {
		t.Errorf("got len=%d pages=%d", len(v.Items), v.TotalPages)
	}
}

func TestBrowser_FindAndClear(t *testing.T) {
	b := NewBrowser(0)
	b.Load(numbered(3), true)
	if _, ok := b.Find("2"); !ok {
		t.Error("Find(2) missed")
	}
	if _, ok := b.Find("99"); ok {
		t.Error("Find(99) hit")
	}
	if !b.Status().Stale {
		t.Error("stale flag lost")
	}
	b.Clear()
	if st := b.Status(); st.Loaded || b.View().Total != 0 {
		t.Errorf("Clear left state behind: %+v", st)
	}
}

// ── Loader ──────────────────────────────────────────────────────────────────

type fakeFetcher struct {
	emails []domain.GeneratedEmail
	err    error
}

func (f *fakeFetcher) GetHistory(context.Context) ([]domain.GeneratedEmail, error) {
	return f.emails, f.err
}

type recordingNotifier struct{ errs []string }

func (n *recordingNotifier) Error(msg string) { n.errs = append(n.errs, msg) }

func newLoader(t *testing.T, f Fetcher) (*Loader, *recordingNotifier) {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "outreach.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	n := &recordingNotifier{}
	return &Loader{
		Fetch:   f,
		DB:      db.Pool,
		Browser: NewBrowser(10),
		Notify:  n,
		UserID:  func() (string, bool) { return "u1", true },
	}, n
}

func TestLoader_FailureServesStaleCache(t *testing.T) {
	f := &fakeFetcher{emails: numbered(4)}
	l, n := newLoader(t, f)
	ctx := context.Background()

	if res, err := l.Load(ctx); err != nil || res.Count != 4 || res.Stale {
		t.Fatalf("first load: %+v, %v", res, err)
	}

	f.emails, f.err = nil, errors.New("backend down")
	res, err := l.Load(ctx)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if !res.Stale || res.Count != 4 {
		t.Errorf("res = %+v, want 4 stale", res)
	}
	if !l.Browser.Status().Stale {
		t.Error("browser not flagged stale")
	}
	if len(n.errs) != 1 {
		t.Errorf("notifications = %v", n.errs)
	}
}

func TestLoader_FailureWithoutCache(t *testing.T) {
	l, _ := newLoader(t, &fakeFetcher{err: errors.New("boom")})
	if _, err := l.Load(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if l.Browser.Status().Loaded {
		t.Error("browser loaded after failed fetch")
	}
}

func TestLoader_RequiresUser(t *testing.T) {
	l, _ := newLoader(t, &fakeFetcher{})
	l.UserID = func() (string, bool) { return "", false }
	if _, err := l.Load(context.Background()); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("err = %v, want ErrNotAuthenticated", err)
	}
}

// signOutFetcher ends the session while the fetch is in flight.
type signOutFetcher struct {
	emails  []domain.GeneratedEmail
	onFetch func()
}

func (f *signOutFetcher) GetHistory(context.Context) ([]domain.GeneratedEmail, error) {
	f.onFetch()
	return f.emails, nil
}

func TestLoader_DropsResultWhenUserChanges(t *testing.T) {
	user := "u1"
	f := &signOutFetcher{emails: numbered(3), onFetch: func() { user = "u2" }}
	l, _ := newLoader(t, f)
	l.UserID = func() (string, bool) { return user, user != "" }

	if _, err := l.Load(context.Background()); !errors.Is(err, ErrUserChanged) {
		t.Fatalf("err = %v, want ErrUserChanged", err)
	}
	if l.Browser.Status().Loaded {
		t.Error("browser filled with the previous user's history")
	}

	f.onFetch = func() { user = "" }
	user = "u2"
	if _, err := l.Load(context.Background()); !errors.Is(err, ErrUserChanged) {
		t.Fatalf("after logout err = %v, want ErrUserChanged", err)
	}
	if l.Browser.Status().Loaded {
		t.Error("browser filled after logout")
	}
}

func TestLoader_FailureNotifies(t *testing.T) {
	l, n := newLoader(t, &fakeFetcher{err: errors.New("boom")})
	_, _ = l.Load(context.Background())
	if len(n.errs) != 1 || n.errs[0] != "Failed to load history" {
		t.Errorf("notifications = %v", n.errs)
	}
}
