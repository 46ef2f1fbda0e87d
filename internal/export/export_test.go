package export

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"outreach-engine/internal/domain"
	"outreach-engine/internal/store"
)

func sample() domain.GeneratedEmail {
	return domain.GeneratedEmail{
		ID:      "e42",
		Subject: "Backend role at Acme",
		Content: "Hi team,\n\nI would love to help.",
		JobListing: domain.JobListing{
			ID: "j1", Title: "Backend Engineer", Company: "Acme",
		},
		PortfolioLinks: []string{"https://github.com/jane", "https://jane.dev"},
		Timestamp:      "not-a-date",
	}
}

func TestFilename(t *testing.T) {
	e := sample()
	if got := Filename(e, FormatPDF); got != "outreach-email-e42.pdf" {
		t.Errorf("pdf name = %q", got)
	}
	if got := Filename(e, FormatTXT); got != "outreach-email-e42.txt" {
		t.Errorf("txt name = %q", got)
	}
	e.ID = "../x"
	if got := Filename(e, FormatTXT); strings.ContainsAny(got, `/\`) {
		t.Errorf("name escapes dir: %q", got)
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat(" PDF "); err != nil || f != FormatPDF {
		t.Errorf("ParseFormat(PDF) = %q, %v", f, err)
	}
	if _, err := ParseFormat("docx"); err == nil {
		t.Error("expected error for docx")
	}
}

func TestRenderText_Template(t *testing.T) {
	want := strings.Join([]string{
		"Outreach Pro - Generated Email",
		"==============================",
		"",
		"Subject: Backend role at Acme",
		"",
		"Email Content:",
		"Hi team,",
		"",
		"I would love to help.",
		"",
		"Target Job: Backend Engineer at Acme",
		"",
		"Generated on: not-a-date",
		"",
		"Portfolio Links:",
		"- https://github.com/jane",
		"- https://jane.dev",
	}, "\n")
	if got := RenderText(sample()); got != want {
		t.Errorf("RenderText mismatch:\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderPDF_LongBodyPaginates(t *testing.T) {
	e := sample()
	e.Content = strings.Repeat("A long paragraph of outreach text. ", 40) + strings.Repeat("\nline", 120)
	b, err := RenderPDF(e)
	if err != nil {
		t.Fatalf("RenderPDF: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("%PDF-")) {
		t.Fatal("output is not a PDF")
	}
	if n := bytes.Count(b, []byte("/Type /Page\n")); n < 2 {
		t.Errorf("pages = %d, want at least 2", n)
	}
}

func TestExporter_SaveWritesAndRecords(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "outreach.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	dir := filepath.Join(t.TempDir(), "exports")
	x := Exporter{Dir: dir, DB: db.Pool}
	rec, err := x.Save(context.Background(), sample(), FormatTXT)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(dir, "outreach-email-e42.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != RenderText(sample()) || rec.Bytes != int64(len(got)) {
		t.Errorf("file content or size mismatch (rec=%+v)", rec)
	}

	list, err := store.ListExports(context.Background(), db.Pool, 10)
	if err != nil || len(list) != 1 || list[0].EmailID != "e42" {
		t.Errorf("ListExports = %+v, %v", list, err)
	}
}

func TestExporter_UnknownFormatWritesNothing(t *testing.T) {
	dir := t.TempDir()
	if _, err := (Exporter{Dir: dir}).Save(context.Background(), sample(), Format("docx")); err == nil {
		t.Fatal("expected error")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("dir has %d entries", len(entries))
	}
}
