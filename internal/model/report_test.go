package model

import "testing"

func TestCrawlReportAddPage(t *testing.T) {
	t.Parallel()

	report := NewCrawlReport("example.com", "https://example.com")

	page := &ExtractedPage{
		URL:           "https://example.com/pricing",
		StatusCode:    200,
		Title:         "Pricing",
		WordCount:     420,
		InternalLinks: []string{"https://example.com/", "https://example.com/contact"},
		TextHash:      "abc123",
	}
	report.AddPage(page, RoleMoney, 130)

	if len(report.Pages) != 1 {
		t.Fatalf("Pages length = %d, want 1", len(report.Pages))
	}
	row := report.Pages[0]
	if row.URL != page.URL || row.Role != RoleMoney || row.Score != 130 {
		t.Errorf("unexpected summary row: %+v", row)
	}
	if row.InternalLinks != 2 {
		t.Errorf("InternalLinks = %d, want 2", row.InternalLinks)
	}
	if row.TextHash != "abc123" {
		t.Errorf("TextHash = %q", row.TextHash)
	}
}

func TestCrawlReportSortByPriority(t *testing.T) {
	t.Parallel()

	report := NewCrawlReport("example.com", "https://example.com")
	report.Pages = []PageSummary{
		{URL: "https://example.com/b", Score: 100},
		{URL: "https://example.com/blog/post", Score: 40},
		{URL: "https://example.com/a", Score: 100},
		{URL: "https://example.com/pricing", Score: 150},
	}

	report.SortByPriority()

	wantOrder := []string{
		"https://example.com/pricing",
		"https://example.com/a",
		"https://example.com/b",
		"https://example.com/blog/post",
	}
	for i, want := range wantOrder {
		if report.Pages[i].URL != want {
			t.Errorf("position %d: got %s, want %s", i, report.Pages[i].URL, want)
		}
	}
}

func TestCrawlReportCounts(t *testing.T) {
	t.Parallel()

	report := NewCrawlReport("example.com", "https://example.com")
	report.Pages = []PageSummary{
		{URL: "https://example.com/", Role: RoleMoney},
		{URL: "https://example.com/pricing", Role: RoleMoney},
		{URL: "https://example.com/about", Role: RoleTrust},
		{URL: "https://example.com/down", Role: RoleSupport, Error: "connection refused"},
	}

	if got := report.RoleCount(RoleMoney); got != 2 {
		t.Errorf("RoleCount(money) = %d, want 2", got)
	}
	if got := report.RoleCount(RoleAuthority); got != 0 {
		t.Errorf("RoleCount(authority) = %d, want 0", got)
	}
	if got := report.FailedCount(); got != 1 {
		t.Errorf("FailedCount() = %d, want 1", got)
	}
}
