package database

import (
	"context"
	"testing"
	"time"

	"github.com/sitelens/sitelens/internal/model"
)

func openTestDB(t *testing.T) *HistoryDB {
	t.Helper()
	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("close: %v", err)
		}
	})
	return db
}

func testReport(site string, crawled time.Time, pages map[string]string) *model.CrawlReport {
	report := model.NewCrawlReport(site, "https://"+site)
	report.DateCrawled = crawled
	for url, text := range pages {
		page := &model.ExtractedPage{URL: url, StatusCode: 200, CleanedText: text}
		page.Finalize(0)
		report.AddPage(page, model.RoleSupport, 20)
	}
	report.SortByPriority()
	return report
}

func TestOpenMissingHistory(t *testing.T) {
	t.Parallel()

	_, err := Open(t.TempDir(), Options{EnableWAL: true})
	if err == nil {
		t.Error("expected error opening absent history without create option")
	}
}

func TestSaveAndListCrawls(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	report := testReport("example.com", time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC), map[string]string{
		"https://example.com":         "home page text",
		"https://example.com/pricing": "pricing text",
	})
	report.Pages = append(report.Pages, model.PageSummary{
		URL: "https://example.com/down", Role: model.RoleSupport, Error: "connection refused",
	})

	id, err := db.SaveCrawl(ctx, report)
	if err != nil {
		t.Fatal(err)
	}
	if id == 0 {
		t.Error("crawl id = 0")
	}

	crawls, err := db.ListCrawls(ctx, "example.com")
	if err != nil {
		t.Fatal(err)
	}
	if len(crawls) != 1 {
		t.Fatalf("got %d crawls, want 1", len(crawls))
	}
	meta := crawls[0]
	if meta.Site != "example.com" || meta.PageCount != 3 || meta.FailedCount != 1 {
		t.Errorf("metadata = %+v", meta)
	}
	if meta.DateCrawled.IsZero() {
		t.Error("DateCrawled not round-tripped")
	}

	// Round-trip the full report.
	stored, err := db.GetCrawlReport(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if stored == nil || len(stored.Pages) != 3 || stored.Site != "example.com" {
		t.Errorf("stored report = %+v", stored)
	}

	missing, err := db.GetCrawlReport(ctx, 9999)
	if err != nil || missing != nil {
		t.Errorf("GetCrawlReport(absent) = %v, %v", missing, err)
	}
}

func TestListCrawlsAllSites(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	for i, site := range []string{"a.com", "b.com"} {
		report := testReport(site, time.Date(2026, 8, 1+i, 0, 0, 0, 0, time.UTC), map[string]string{
			"https://" + site: "text",
		})
		if _, err := db.SaveCrawl(ctx, report); err != nil {
			t.Fatal(err)
		}
	}

	crawls, err := db.ListCrawls(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(crawls) != 2 {
		t.Fatalf("got %d crawls, want 2", len(crawls))
	}
	// Most recent first.
	if crawls[0].Site != "b.com" || crawls[1].Site != "a.com" {
		t.Errorf("order = %s, %s", crawls[0].Site, crawls[1].Site)
	}
}

func TestLatestCrawlTimes(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	// Two crawls of a.com plus one of b.com; only the newer a.com time
	// must survive.
	for _, c := range []struct {
		site string
		when time.Time
	}{
		{"a.com", time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)},
		{"a.com", time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)},
		{"b.com", time.Date(2026, 8, 5, 10, 0, 0, 0, time.UTC)},
	} {
		report := testReport(c.site, c.when, map[string]string{
			"https://" + c.site: "text",
		})
		if _, err := db.SaveCrawl(ctx, report); err != nil {
			t.Fatal(err)
		}
	}

	latest, err := db.LatestCrawlTimes(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if len(latest) != 2 {
		t.Fatalf("got %d sites, want 2: %v", len(latest), latest)
	}
	if got := latest["a.com"]; !got.Equal(time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("a.com latest = %v, want the newer crawl", got)
	}
	if got := latest["b.com"]; !got.Equal(time.Date(2026, 8, 5, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("b.com latest = %v", got)
	}
}

func TestLatestCrawlTimesEmpty(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)

	latest, err := db.LatestCrawlTimes(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(latest) != 0 {
		t.Errorf("empty history returned %v", latest)
	}
}

func TestChangedPages(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	older := testReport("example.com", time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), map[string]string{
		"https://example.com":         "home v1",
		"https://example.com/pricing": "pricing v1",
		"https://example.com/gone":    "removed soon",
	})
	newer := testReport("example.com", time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC), map[string]string{
		"https://example.com":         "home v1",      // unchanged
		"https://example.com/pricing": "pricing v2",   // changed
		"https://example.com/fresh":   "newly added",  // added
	})

	if _, err := db.SaveCrawl(ctx, older); err != nil {
		t.Fatal(err)
	}
	if _, err := db.SaveCrawl(ctx, newer); err != nil {
		t.Fatal(err)
	}

	changes, err := db.ChangedPages(ctx, "example.com")
	if err != nil {
		t.Fatal(err)
	}

	if changes.Empty() {
		t.Fatal("diff reported empty")
	}
	if len(changes.Added) != 1 || changes.Added[0] != "https://example.com/fresh" {
		t.Errorf("Added = %v", changes.Added)
	}
	if len(changes.Removed) != 1 || changes.Removed[0] != "https://example.com/gone" {
		t.Errorf("Removed = %v", changes.Removed)
	}
	if len(changes.Changed) != 1 {
		t.Fatalf("Changed = %v", changes.Changed)
	}
	change := changes.Changed[0]
	if change.URL != "https://example.com/pricing" {
		t.Errorf("changed URL = %s", change.URL)
	}
	if change.OldHash == change.NewHash {
		t.Error("hashes should differ for a changed page")
	}
	if changes.New.DateCrawled.Before(changes.Old.DateCrawled) {
		t.Error("crawl order reversed in change set")
	}
}

func TestChangedPagesIgnoresFailures(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	older := testReport("example.com", time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), map[string]string{
		"https://example.com": "home",
	})
	newer := testReport("example.com", time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC), map[string]string{
		"https://example.com": "home",
	})
	// A transient failure in the newer crawl: empty hash, not a change.
	newer.Pages = append(newer.Pages, model.PageSummary{
		URL: "https://example.com/flaky", Role: model.RoleSupport, Error: "timeout",
	})

	if _, err := db.SaveCrawl(ctx, older); err != nil {
		t.Fatal(err)
	}
	if _, err := db.SaveCrawl(ctx, newer); err != nil {
		t.Fatal(err)
	}

	changes, err := db.ChangedPages(ctx, "example.com")
	if err != nil {
		t.Fatal(err)
	}
	if !changes.Empty() {
		t.Errorf("diff = %+v, want empty", changes)
	}
}

func TestChangedPagesNeedsTwoCrawls(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	report := testReport("example.com", time.Now().UTC(), map[string]string{
		"https://example.com": "home",
	})
	if _, err := db.SaveCrawl(ctx, report); err != nil {
		t.Fatal(err)
	}

	if _, err := db.ChangedPages(ctx, "example.com"); err == nil {
		t.Error("expected error with a single stored crawl")
	}
}
