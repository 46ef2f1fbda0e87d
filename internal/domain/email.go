package domain

import (
	"fmt"
	"strings"
	"time"
)

// GeneratedEmail is an outreach email produced by the backend for a single job.
// The job is embedded, not referenced.
type GeneratedEmail struct {
	ID             string     `json:"id"`
	Subject        string     `json:"subject"`
	Content        string     `json:"content"`
	JobListing     JobListing `json:"jobListing"`
	PortfolioLinks []string   `json:"portfolioLinks"`
	Timestamp      string     `json:"timestamp"` // ISO-8601
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// CreatedAt parses Timestamp. Backends emit both zoned and naive ISO strings;
// naive ones are read as UTC.
func (e GeneratedEmail) CreatedAt() (time.Time, error) {
	ts := strings.TrimSpace(e.Timestamp)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", e.Timestamp)
}

func (e GeneratedEmail) Clone() GeneratedEmail {
	out := e
	out.JobListing = e.JobListing.Clone()
	if e.PortfolioLinks != nil {
		out.PortfolioLinks = append([]string(nil), e.PortfolioLinks...)
	}
	return out
}
