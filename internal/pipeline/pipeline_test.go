package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/sitelens/sitelens/internal/crawler"
	"github.com/sitelens/sitelens/internal/extract"
)

// newTestSite serves a three-page site where /report answers JSON so
// local extraction fails on it.
func newTestSite(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, `<html><head><title>Home</title></head><body>
				<h1>Welcome</h1>
				<a href="/services">Services</a>
				<a href="/report">Report</a>
			</body></html>`)
		case "/services":
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, `<html><head><title>Services</title></head><body>
				<h1>Services</h1><p>Boiler repair and installation.</p>
			</body></html>`)
		case "/report":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"not": "html"}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

// newTestCrawler builds a SiteCrawler with all politeness delays off.
func newTestCrawler(t *testing.T, opts ...Option) *SiteCrawler {
	t.Helper()
	base := []Option{
		WithDiscoverer(crawler.New(crawler.WithDelay(0))),
		WithExtractor(extract.NewExtractor(false)),
		WithExtractDelay(0),
	}
	return New(append(base, opts...)...)
}

func TestCrawlSite(t *testing.T) {
	t.Parallel()

	srv := newTestSite(t)
	sc := newTestCrawler(t)

	pages, err := sc.CrawlSite(context.Background(), srv.URL)
	if err != nil {
		t.Fatal(err)
	}

	if len(pages) != 3 {
		t.Fatalf("got %d pages, want 3", len(pages))
	}

	// One record per discovered URL, in discovery order.
	wantURLs := []string{srv.URL, srv.URL + "/services", srv.URL + "/report"}
	for i, want := range wantURLs {
		if pages[i].URL != want {
			t.Errorf("page %d URL = %s, want %s", i, pages[i].URL, want)
		}
	}

	if pages[0].Failed() || pages[1].Failed() {
		t.Errorf("HTML pages failed: %q / %q", pages[0].Error, pages[1].Error)
	}
	if pages[0].Title != "Home" || pages[1].Title != "Services" {
		t.Errorf("titles = %q, %q", pages[0].Title, pages[1].Title)
	}

	// The JSON page fails but still occupies its slot.
	if !pages[2].Failed() {
		t.Error("non-HTML page should produce a failure record")
	}
	if pages[2].StatusCode != 0 {
		t.Errorf("failed page StatusCode = %d, want 0", pages[2].StatusCode)
	}
}

func TestCrawlSiteProgressCallback(t *testing.T) {
	t.Parallel()

	srv := newTestSite(t)

	type call struct {
		current, total int
		url            string
	}
	var calls []call
	sc := newTestCrawler(t, WithProgress(func(current, total int, pageURL string) {
		calls = append(calls, call{current, total, pageURL})
	}))

	if _, err := sc.CrawlSite(context.Background(), srv.URL); err != nil {
		t.Fatal(err)
	}

	if len(calls) != 3 {
		t.Fatalf("progress called %d times, want 3", len(calls))
	}
	for i, c := range calls {
		if c.current != i+1 || c.total != 3 {
			t.Errorf("call %d = %d/%d, want %d/3", i, c.current, c.total, i+1)
		}
	}
	if calls[0].url != srv.URL {
		t.Errorf("first progress URL = %s", calls[0].url)
	}
}

func TestCrawlSiteInvalidStartURL(t *testing.T) {
	t.Parallel()

	sc := newTestCrawler(t)
	if _, err := sc.CrawlSite(context.Background(), "ftp://example.com"); err == nil {
		t.Error("expected discovery error for unsupported scheme")
	}
}

func TestCrawlSiteCancelledContext(t *testing.T) {
	t.Parallel()

	srv := newTestSite(t)
	sc := newTestCrawler(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pages, err := sc.CrawlSite(ctx, srv.URL)
	if err != nil {
		t.Fatalf("cancellation must not error: %v", err)
	}
	if len(pages) != 0 {
		t.Errorf("got %d pages from a pre-cancelled crawl", len(pages))
	}
}

func TestProcessBatch(t *testing.T) {
	t.Parallel()

	srvA := newTestSite(t)
	srvB := newTestSite(t)

	bp := NewBatchProcessor(
		func(string) *SiteCrawler { return newTestCrawler(t) },
		WithConcurrency(2),
	)

	// The middle entry cannot be discovered; its slot carries the error.
	inputs := []string{srvA.URL, "ftp://nope.example", srvB.URL}
	results, err := bp.ProcessBatch(context.Background(), inputs)
	if err != nil {
		t.Fatal(err)
	}

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for i, r := range results {
		if r.StartURL != inputs[i] {
			t.Errorf("result %d StartURL = %s, want %s", i, r.StartURL, inputs[i])
		}
	}
	if results[0].Err != nil || results[2].Err != nil {
		t.Errorf("healthy sites errored: %v / %v", results[0].Err, results[2].Err)
	}
	if len(results[0].Pages) != 3 || len(results[2].Pages) != 3 {
		t.Errorf("page counts = %d / %d, want 3 / 3", len(results[0].Pages), len(results[2].Pages))
	}
	if results[1].Err == nil {
		t.Error("undiscoverable site should carry an error")
	}
}

func TestProcessBatchWithCallback(t *testing.T) {
	t.Parallel()

	srvA := newTestSite(t)
	srvB := newTestSite(t)

	bp := NewBatchProcessor(
		func(string) *SiteCrawler { return newTestCrawler(t) },
		WithConcurrency(2),
	)

	var mu sync.Mutex
	seen := make(map[int]string)
	_, err := bp.ProcessBatchWithCallback(context.Background(),
		[]string{srvA.URL, srvB.URL},
		func(result SiteResult, index int) {
			mu.Lock()
			defer mu.Unlock()
			seen[index] = result.StartURL
		})
	if err != nil {
		t.Fatal(err)
	}

	if len(seen) != 2 {
		t.Fatalf("callback fired %d times, want 2", len(seen))
	}
	if seen[0] != srvA.URL || seen[1] != srvB.URL {
		t.Errorf("callback indices wrong: %v", seen)
	}
}
