package history

import (
	"strings"
	"sync"

	"outreach-engine/internal/domain"
)

// Browser is the history page state: the fetched list plus search term,
// company filter and current page. The filtered list is recomputed only when
// one of its inputs changes, and every recomputation sends the page back to 1.
type Browser struct {
	mu        sync.RWMutex
	pageSize  int
	emails    []domain.GeneratedEmail
	companies []string
	search    string
	company   string
	page      int
	filtered  []domain.GeneratedEmail
	loaded    bool
	stale     bool
}

func NewBrowser(pageSize int) *Browser {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Browser{pageSize: pageSize, page: 1, companies: []string{}}
}

// Load replaces the source list. stale marks a list served from the local
// cache after a failed fetch.
func (b *Browser) Load(emails []domain.GeneratedEmail, stale bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.emails = make([]domain.GeneratedEmail, len(emails))
	for i, e := range emails {
		b.emails[i] = e.Clone()
	}
	b.companies = DistinctCompanies(b.emails)
	b.loaded = true
	b.stale = stale
	b.refilterLocked()
}

func (b *Browser) SetSearch(term string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if term == b.search {
		return
	}
	b.search = term
	b.refilterLocked()
}

func (b *Browser) SetCompany(company string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if company == b.company {
		return
	}
	b.company = company
	b.refilterLocked()
}

// SetPage moves to page (1-based, clamped to at least 1). It never re-filters.
func (b *Browser) SetPage(page int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if page < 1 {
		page = 1
	}
	b.page = page
}

func (b *Browser) refilterLocked() {
	b.filtered = Filter(b.emails, b.search, b.company)
	b.page = 1
}

func (b *Browser) View() View {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return paginate(b.filtered, len(b.emails), b.companies, b.page, b.pageSize)
}

type Status struct {
	Loaded  bool   `json:"loaded"`
	Stale   bool   `json:"stale"`
	Search  string `json:"search"`
	Company string `json:"company"`
	Page    int    `json:"page"`
}

func (b *Browser) Status() Status {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Status{Loaded: b.loaded, Stale: b.stale, Search: b.search, Company: b.company, Page: b.page}
}

// Find looks an email up by id in the full (unfiltered) list.
func (b *Browser) Find(id string) (domain.GeneratedEmail, bool) {
	id = strings.TrimSpace(id)
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, e := range b.emails {
		if e.ID == id {
			return e.Clone(), true
		}
	}
	return domain.GeneratedEmail{}, false
}

// Clear forgets everything, e.g. on logout.
func (b *Browser) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.emails = nil
	b.companies = []string{}
	b.filtered = nil
	b.search = ""
	b.company = ""
	b.page = 1
	b.loaded = false
	b.stale = false
}
