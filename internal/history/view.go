// Package history shapes the generated-email history for display: search,
// company filter and pagination over a list fetched once from the backend.
package history

import (
	"strings"

	"outreach-engine/internal/domain"
)

const DefaultPageSize = 10

// View is a read-only projection of the history; never a source of truth.
type View struct {
	Items      []domain.GeneratedEmail `json:"items"`
	Page       int                     `json:"page"`
	PageSize   int                     `json:"pageSize"`
	TotalPages int                     `json:"totalPages"`
	Filtered   int                     `json:"filtered"`
	Total      int                     `json:"total"`
	From       int                     `json:"from"` // 1-based, 0 when the page is empty
	To         int                     `json:"to"`
	Companies  []string                `json:"companies"`
}

// Matches reports whether e passes both the search and company predicates.
func Matches(e domain.GeneratedEmail, search, company string) bool {
	if search != "" {
		s := strings.ToLower(search)
		if !strings.Contains(strings.ToLower(e.Subject), s) &&
			!strings.Contains(strings.ToLower(e.JobListing.Title), s) &&
			!strings.Contains(strings.ToLower(e.JobListing.Company), s) {
			return false
		}
	}
	if company != "" {
		if !strings.Contains(strings.ToLower(e.JobListing.Company), strings.ToLower(company)) {
			return false
		}
	}
	return true
}

// Filter keeps the emails matching search and company, in their original order.
func Filter(all []domain.GeneratedEmail, search, company string) []domain.GeneratedEmail {
	out := make([]domain.GeneratedEmail, 0, len(all))
	for _, e := range all {
		if Matches(e, search, company) {
			out = append(out, e)
		}
	}
	return out
}

// TotalPages is ceil(n/pageSize), 0 for an empty list.
func TotalPages(n, pageSize int) int {
	if n <= 0 || pageSize <= 0 {
		return 0
	}
	return (n + pageSize - 1) / pageSize
}

// PageBounds returns the [start, end) slice indexes of page within n items,
// clamped to what exists. Pages are 1-based.
func PageBounds(n, page, pageSize int) (start, end int) {
	if page < 1 || pageSize <= 0 {
		return 0, 0
	}
	start = (page - 1) * pageSize
	if start >= n {
		return n, n
	}
	end = start + pageSize
	if end > n {
		end = n
	}
	return start, end
}

// DistinctCompanies lists company names of all emails, first occurrence first.
func DistinctCompanies(all []domain.GeneratedEmail) []string {
	seen := make(map[string]bool, len(all))
	out := make([]string, 0)
	for _, e := range all {
		c := e.JobListing.Company
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// DeriveView filters all and cuts out one page. Companies always reflect the
// unfiltered list.
func DeriveView(all []domain.GeneratedEmail, search, company string, page, pageSize int) View {
	return paginate(Filter(all, search, company), len(all), DistinctCompanies(all), page, pageSize)
}

func paginate(filtered []domain.GeneratedEmail, total int, companies []string, page, pageSize int) View {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	start, end := PageBounds(len(filtered), page, pageSize)

	items := make([]domain.GeneratedEmail, 0, end-start)
	for _, e := range filtered[start:end] {
		items = append(items, e.Clone())
	}

	v := View{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: TotalPages(len(filtered), pageSize),
		Filtered:   len(filtered),
		Total:      total,
		Companies:  append([]string(nil), companies...),
	}
	if v.Companies == nil {
		v.Companies = []string{}
	}
	if len(items) > 0 {
		v.From = start + 1
		v.To = end
	}
	return v
}
