// Package export renders a generated email to a downloadable PDF or plain
// text file.
package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"outreach-engine/internal/domain"
)

type Format string

const (
	FormatPDF Format = "pdf"
	FormatTXT Format = "txt"
)

const Banner = "Outreach Pro - Generated Email"

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatPDF:
		return FormatPDF, nil
	case FormatTXT:
		return FormatTXT, nil
	}
	return "", fmt.Errorf("unknown export format %q (want pdf or txt)", s)
}

func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "text/plain; charset=utf-8"
}

// Filename is outreach-email-<id>.<ext>. Path separators in the id are
// replaced so the name always stays inside the export directory.
func Filename(e domain.GeneratedEmail, f Format) string {
	id := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '_'
		}
		return r
	}, e.ID)
	if id == "" || id == "." || id == ".." {
		id = "unknown"
	}
	return fmt.Sprintf("outreach-email-%s.%s", id, f)
}

func Render(e domain.GeneratedEmail, f Format) ([]byte, error) {
	switch f {
	case FormatTXT:
		return []byte(RenderText(e)), nil
	case FormatPDF:
		return RenderPDF(e)
	}
	return nil, fmt.Errorf("unknown export format %q", f)
}

// RenderText produces the plain-text export.
func RenderText(e domain.GeneratedEmail) string {
	var b strings.Builder
	b.WriteString(Banner + "\n")
	b.WriteString(strings.Repeat("=", 30) + "\n\n")
	fmt.Fprintf(&b, "Subject: %s\n\n", e.Subject)
	b.WriteString("Email Content:\n")
	b.WriteString(e.Content + "\n\n")
	fmt.Fprintf(&b, "Target Job: %s\n\n", targetJob(e.JobListing))
	fmt.Fprintf(&b, "Generated on: %s\n\n", generatedOn(e))
	b.WriteString("Portfolio Links:\n")
	for _, link := range e.PortfolioLinks {
		b.WriteString("- " + link + "\n")
	}
	return strings.TrimSpace(b.String())
}

func targetJob(j domain.JobListing) string {
	return j.Title + " at " + j.Company
}

func generatedOn(e domain.GeneratedEmail) string {
	t, err := e.CreatedAt()
	if err != nil {
		return e.Timestamp
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

// page geometry in mm (A4 portrait)
const (
	marginLeft   = 20.0
	bodyWidth    = 170.0
	lineHeight   = 4.0
	pageBottom   = 280.0
	continuedTop = 20.0
)

func RenderPDF(e domain.GeneratedEmail) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreationDate(time.Unix(0, 0).UTC())
	cp := pdf.UnicodeTranslatorFromDescriptor("")
	tr := func(s string) string { return cp(latin1(s)) }
	pdf.AddPage()

	pdf.SetFont("Helvetica", "", 20)
	pdf.Text(marginLeft, 20, Banner)

	pdf.SetFont("Helvetica", "", 14)
	pdf.Text(marginLeft, 40, "Subject:")
	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(marginLeft, 50, tr(e.Subject))

	pdf.SetFont("Helvetica", "", 14)
	pdf.Text(marginLeft, 70, "Email Content:")

	pdf.SetFont("Helvetica", "", 10)
	y := 80.0
	for _, para := range strings.Split(strings.ReplaceAll(e.Content, "\r\n", "\n"), "\n") {
		lines := pdf.SplitText(latin1(para), bodyWidth)
		if len(lines) == 0 {
			lines = []string{""}
		}
		for _, line := range lines {
			if y > pageBottom {
				pdf.AddPage()
				pdf.SetFont("Helvetica", "", 10)
				y = continuedTop
			}
			pdf.Text(marginLeft, y, cp(line))
			y += lineHeight
		}
	}

	y += 10
	if y+10 > pageBottom {
		pdf.AddPage()
		y = continuedTop
	}
	pdf.SetFont("Helvetica", "", 14)
	pdf.Text(marginLeft, y, "Target Job:")
	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(marginLeft, y+10, tr(targetJob(e.JobListing)))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// latin1 replaces runes the core fonts have no width for.
func latin1(s string) string {
	return strings.Map(func(r rune) rune {
		if r > 0xff {
			return '?'
		}
		return r
	}, s)
}
