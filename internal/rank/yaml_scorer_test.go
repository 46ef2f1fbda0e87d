package rank

import (
	"reflect"
	"testing"

	"outreach-engine/internal/config"
	"outreach-engine/internal/domain"
)

func scorer() YAMLScorer {
	return YAMLScorer{
		Rules: []config.Rule{
			{Tag: "Go", Weight: 20, Any: []string{"golang", " go "}},
			{Tag: "Backend", Weight: 10, Any: []string{"backend", "api"}},
			{Tag: "Go", Weight: 5, Any: []string{"gopher"}},
		},
		Penalties: []config.Penalty{
			{Reason: "clearance", Weight: -30, Any: []string{"clearance required"}},
		},
	}
}

func TestYAMLScorer_RulesAndPenalties(t *testing.T) {
	cases := []struct {
		name      string
		job       domain.JobListing
		wantScore int
		wantTags  []string
	}{
		{
			name:      "title and skills",
			job:       domain.JobListing{Title: "Backend Engineer", Skills: []string{"Golang", "Gopher"}},
			wantScore: 35,
			wantTags:  []string{"Go", "Backend"},
		},
		{
			name:      "penalty",
			job:       domain.JobListing{Title: "API developer", Description: "Clearance required."},
			wantScore: -20,
			wantTags:  []string{"Backend"},
		},
		{
			name:      "no match",
			job:       domain.JobListing{Title: "Designer"},
			wantScore: 0,
			wantTags:  []string{},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			score, tags := scorer().Score(c.job)
			if score != c.wantScore || !reflect.DeepEqual(tags, c.wantTags) {
				t.Errorf("Score = %d %v, want %d %v", score, tags, c.wantScore, c.wantTags)
			}
		})
	}
}

func TestAnnotate_KeepsOrder(t *testing.T) {
	jobs := []domain.JobListing{
		{ID: "a", Title: "Designer"},
		{ID: "b", Title: "Golang backend"},
	}
	fits := Annotate(scorer(), jobs)
	if len(fits) != 2 || fits[0].JobID != "a" || fits[1].JobID != "b" {
		t.Fatalf("fits = %+v", fits)
	}
	if fits[1].Score <= fits[0].Score {
		t.Errorf("scores = %d, %d", fits[0].Score, fits[1].Score)
	}
}
