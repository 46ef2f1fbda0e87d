package rank

import (
	"strings"

	"outreach-engine/internal/config"
	"outreach-engine/internal/domain"
)

// YAMLScorer applies matching.rules and matching.penalties from config.yml.
type YAMLScorer struct {
	Rules     []config.Rule
	Penalties []config.Penalty
}

func NewYAMLScorer(cfg config.Config) YAMLScorer {
	return YAMLScorer{Rules: cfg.Matching.Rules, Penalties: cfg.Matching.Penalties}
}

func (s YAMLScorer) Score(job domain.JobListing) (int, []string) {
	text := strings.ToLower(job.Title + " " + job.Description + " " + strings.Join(job.Skills, " "))

	score := 0
	var tags []string

	for _, r := range s.Rules {
		for _, needle := range r.Any {
			if strings.Contains(text, strings.ToLower(needle)) {
				score += r.Weight
				tags = append(tags, r.Tag)
				break
			}
		}
	}

	for _, p := range s.Penalties {
		for _, needle := range p.Any {
			if strings.Contains(text, strings.ToLower(needle)) {
				score += p.Weight
				break
			}
		}
	}

	return score, uniq(tags)
}

func uniq(in []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(in))
	for _, t := range in {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
