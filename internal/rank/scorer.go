// Package rank scores job listings against the configured skill rules. The
// score is a hint shown next to each listing; it never reorders them.
package rank

import "outreach-engine/internal/domain"

type Scorer interface {
	Score(job domain.JobListing) (score int, tags []string)
}

// Fit is the hint attached to one listing.
type Fit struct {
	JobID string   `json:"jobId"`
	Score int      `json:"score"`
	Tags  []string `json:"tags"`
}

// Annotate scores jobs in their given order.
func Annotate(s Scorer, jobs []domain.JobListing) []Fit {
	out := make([]Fit, 0, len(jobs))
	for _, j := range jobs {
		score, tags := s.Score(j)
		out = append(out, Fit{JobID: j.ID, Score: score, Tags: tags})
	}
	return out
}
