package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"outreach-engine/internal/domain"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "outreach.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func email(id, company string) domain.GeneratedEmail {
	return domain.GeneratedEmail{
		ID:         id,
		Subject:    "About " + company,
		JobListing: domain.JobListing{ID: "j-" + id, Title: "Engineer", Company: company},
		Timestamp:  "2024-01-01T00:00:00Z",
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db := newTestDB(t)
	if err := Migrate(db.Pool); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
	var v int
	if err := db.Pool.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		t.Fatal(err)
	}
	if v != schemaVersion {
		t.Errorf("user_version = %d, want %d", v, schemaVersion)
	}
}

func TestReplaceEmails_KeepsFetchOrder(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	in := []domain.GeneratedEmail{email("c", "Zeta"), email("a", "Acme"), email("b", "Acme")}
	if err := ReplaceEmails(ctx, db.Pool, "u1", in); err != nil {
		t.Fatalf("ReplaceEmails: %v", err)
	}
	got, err := ListEmails(ctx, db.Pool, "u1")
	if err != nil {
		t.Fatalf("ListEmails: %v", err)
	}
	if len(got) != 3 || got[0].ID != "c" || got[1].ID != "a" || got[2].ID != "b" {
		t.Errorf("order = %v", ids(got))
	}
	if got[0].JobListing.Company != "Zeta" {
		t.Errorf("payload not round-tripped: %+v", got[0])
	}
}

func TestReplaceEmails_ReplacesAndIsolatesUsers(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_ = ReplaceEmails(ctx, db.Pool, "u1", []domain.GeneratedEmail{email("a", "Acme"), email("b", "Acme")})
	_ = ReplaceEmails(ctx, db.Pool, "u2", []domain.GeneratedEmail{email("x", "Other")})
	if err := ReplaceEmails(ctx, db.Pool, "u1", []domain.GeneratedEmail{email("n", "New")}); err != nil {
		t.Fatal(err)
	}

	u1, _ := ListEmails(ctx, db.Pool, "u1")
	u2, _ := ListEmails(ctx, db.Pool, "u2")
	if len(u1) != 1 || u1[0].ID != "n" {
		t.Errorf("u1 = %v", ids(u1))
	}
	if len(u2) != 1 || u2[0].ID != "x" {
		t.Errorf("u2 = %v", ids(u2))
	}
}

func TestCleanupOldEmails(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	_ = ReplaceEmails(ctx, db.Pool, "u1", []domain.GeneratedEmail{email("a", "Acme")})

	old := time.Now().UTC().Add(-100 * 24 * time.Hour).Format(tsLayout)
	if _, err := db.Pool.Exec(`UPDATE emails SET cached_at = ?;`, old); err != nil {
		t.Fatal(err)
	}
	n, err := CleanupOldEmails(ctx, db.Pool, 90*24*time.Hour)
	if err != nil {
		t.Fatalf("CleanupOldEmails: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted = %d, want 1", n)
	}
}

func TestExports(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for _, f := range []string{"pdf", "txt"} {
		if _, err := RecordExport(ctx, db.Pool, ExportRecord{EmailID: "e1", Format: f, Path: "/tmp/x." + f, Bytes: 10}); err != nil {
			t.Fatalf("RecordExport: %v", err)
		}
	}
	got, err := ListExports(ctx, db.Pool, 10)
	if err != nil {
		t.Fatalf("ListExports: %v", err)
	}
	if len(got) != 2 || got[0].Format != "txt" {
		t.Errorf("exports = %+v", got)
	}
}

func TestPreferences_Upsert(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, ok, err := GetPreferences(ctx, db.Pool, "u1"); err != nil || ok {
		t.Fatalf("GetPreferences on empty = ok:%v err:%v", ok, err)
	}

	p := domain.Preferences{Tone: domain.ToneCasual, Language: domain.LanguageEnglish, EmailLength: domain.LengthShort}
	if err := UpsertPreferences(ctx, db.Pool, "u1", p); err != nil {
		t.Fatal(err)
	}
	p.Tone = domain.ToneFormal
	if err := UpsertPreferences(ctx, db.Pool, "u1", p); err != nil {
		t.Fatal(err)
	}

	got, ok, err := GetPreferences(ctx, db.Pool, "u1")
	if err != nil || !ok {
		t.Fatalf("GetPreferences = ok:%v err:%v", ok, err)
	}
	if got != p {
		t.Errorf("preferences = %+v, want %+v", got, p)
	}
}

func ids(es []domain.GeneratedEmail) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.ID
	}
	return out
}
