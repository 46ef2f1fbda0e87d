package history

import (
	"fmt"
	"reflect"
	"testing"

	"outreach-engine/internal/domain"
)

func mail(id, subject, title, company string) domain.GeneratedEmail {
	return domain.GeneratedEmail{
		ID:         id,
		Subject:    subject,
		JobListing: domain.JobListing{ID: "j" + id, Title: title, Company: company},
		Timestamp:  "2024-03-01T10:00:00Z",
	}
}

func numbered(n int) []domain.GeneratedEmail {
	out := make([]domain.GeneratedEmail, n)
	for i := range out {
		out[i] = mail(fmt.Sprint(i+1), fmt.Sprintf("Subject %d", i+1), "Engineer", "Acme")
	}
	return out
}

func itemIDs(es []domain.GeneratedEmail) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.ID
	}
	return out
}

// ── Matches ─────────────────────────────────────────────────────────────────

func TestMatches(t *testing.T) {
	e := mail("1", "Hello from Jane", "Backend Engineer", "Acme Corp")
	cases := []struct {
		name            string
		search, company string
		want            bool
	}{
		{"empty filters", "", "", true},
		{"subject match", "jane", "", true},
		{"title match", "BACKEND", "", true},
		{"company via search", "corp", "", true},
		{"search miss", "frontend", "", false},
		{"company filter substring", "", "acme", true},
		{"company filter miss", "", "zeta", false},
		{"both must pass", "jane", "zeta", false},
		{"both pass", "engineer", "acme", true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Matches(e, c.search, c.company); got != c.want {
				t.Errorf("Matches(%q, %q) = %v, want %v", c.search, c.company, got, c.want)
			}
		})
	}
}

// ── DeriveView ──────────────────────────────────────────────────────────────

func TestDeriveView_EmptyFiltersIsIdentity(t *testing.T) {
	all := numbered(7)
	v := DeriveView(all, "", "", 1, 10)
	if !reflect.DeepEqual(itemIDs(v.Items), itemIDs(all)) {
		t.Errorf("items = %v, want all in order", itemIDs(v.Items))
	}
	if v.TotalPages != 1 || v.Filtered != 7 || v.Total != 7 {
		t.Errorf("got pages=%d filtered=%d total=%d", v.TotalPages, v.Filtered, v.Total)
	}
}

func TestDeriveView_Idempotent(t *testing.T) {
	all := []domain.GeneratedEmail{
		mail("1", "Hi", "Go Dev", "Acme"),
		mail("2", "Hey", "Rust Dev", "Zeta"),
		mail("3", "Yo", "Go Lead", "Acme"),
	}
	a := DeriveView(all, "go", "", 1, 10)
	b := DeriveView(all, "go", "", 1, 10)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("views differ:\n%+v\n%+v", a, b)
	}
}

func TestDeriveView_CompanyFilterKeepsOrder(t *testing.T) {
	all := []domain.GeneratedEmail{
		mail("1", "a", "t", "Acme"),
		mail("2", "b", "t", "Zeta"),
		mail("3", "c", "t", "Acme"),
	}
	v := DeriveView(all, "", "acme", 1, 10)
	if got := itemIDs(v.Items); !reflect.DeepEqual(got, []string{"1", "3"}) {
		t.Errorf("items = %v, want [1 3]", got)
	}
	if !reflect.DeepEqual(v.Companies, []string{"Acme", "Zeta"}) {
		t.Errorf("companies = %v", v.Companies)
	}
}

func TestDeriveView_Pagination(t *testing.T) {
	all := numbered(25)
	cases := []struct {
		page     int
		wantLen  int
		from, to int
	}{
		{1, 10, 1, 10},
		{2, 10, 11, 20},
		{3, 5, 21, 25},
		{4, 0, 0, 0},
		{0, 0, 0, 0},
	}
	for _, c := range cases {
		v := DeriveView(all, "", "", c.page, 10)
		if v.TotalPages != 3 {
			t.Errorf("page %d: TotalPages = %d, want 3", c.page, v.TotalPages)
		}
		if len(v.Items) != c.wantLen || v.From != c.from || v.To != c.to {
			t.Errorf("page %d: len=%d from=%d to=%d, want %d %d %d",
				c.page, len(v.Items), v.From, v.To, c.wantLen, c.from, c.to)
		}
	}
}

func TestDeriveView_EmptyList(t *testing.T) {
	v := DeriveView(nil, "", "", 1, 10)
	if v.TotalPages != 0 || len(v.Items) != 0 {
		t.Errorf("got %+v", v)
	}
	if v.Companies == nil || v.Items == nil {
		t.Error("nil slices leak into the view")
	}
}

func TestDeriveView_ItemsAreCopies(t *testing.T) {
	all := []domain.GeneratedEmail{mail("1", "s", "t", "Acme")}
	all[0].PortfolioLinks = []string{"https://a.dev"}
	v := DeriveView(all, "", "", 1, 10)
	v.Items[0].PortfolioLinks[0] = "mutated"
	if all[0].PortfolioLinks[0] != "https://a.dev" {
		t.Error("view shares memory with the source list")
	}
}

func TestPageBounds(t *testing.T) {
	cases := []struct{ n, page, size, start, end int }{
		{25, 1, 10, 0, 10},
		{25, 3, 10, 20, 25},
		{25, 4, 10, 25, 25},
		{0, 1, 10, 0, 0},
		{5, -1, 10, 0, 0},
	}
	for _, c := range cases {
		s, e := PageBounds(c.n, c.page, c.size)
		if s != c.start || e != c.end {
			t.Errorf("PageBounds(%d,%d,%d) = %d,%d want %d,%d", c.n, c.page, c.size, s, e, c.start, c.end)
		}
	}
}
