package extract

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/sitelens/sitelens/internal/model"
)

// stubStrategy returns a canned page or error and counts invocations.
type stubStrategy struct {
	name  string
	page  *model.ExtractedPage
	err   error
	calls int
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Extract(_ context.Context, pageURL string) (*model.ExtractedPage, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	page := *s.page
	page.URL = pageURL
	return &page, nil
}

func TestScrapePageFallsThroughChain(t *testing.T) {
	t.Parallel()

	failing := &stubStrategy{name: "first", err: ErrReaderService}
	succeeding := &stubStrategy{name: "second", page: &model.ExtractedPage{Title: "ok", StatusCode: 200}}

	e := NewExtractor(false, WithStrategies(failing, succeeding))
	page := e.ScrapePage(context.Background(), "https://example.com/page")

	if failing.calls != 1 || succeeding.calls != 1 {
		t.Errorf("calls = %d/%d, want 1/1", failing.calls, succeeding.calls)
	}
	if page.Failed() {
		t.Fatalf("page failed: %s", page.Error)
	}
	if page.Title != "ok" {
		t.Errorf("Title = %q", page.Title)
	}
}

func TestScrapePageStopsAtFirstSuccess(t *testing.T) {
	t.Parallel()

	first := &stubStrategy{name: "first", page: &model.ExtractedPage{Title: "first wins", StatusCode: 200}}
	second := &stubStrategy{name: "second", page: &model.ExtractedPage{Title: "never", StatusCode: 200}}

	e := NewExtractor(false, WithStrategies(first, second))
	page := e.ScrapePage(context.Background(), "https://example.com/page")

	if second.calls != 0 {
		t.Error("second strategy invoked despite first success")
	}
	if page.Title != "first wins" {
		t.Errorf("Title = %q", page.Title)
	}
}

func TestScrapePageNeverErrors(t *testing.T) {
	t.Parallel()

	e := NewExtractor(false, WithStrategies(
		&stubStrategy{name: "a", err: ErrReaderService},
		&stubStrategy{name: "b", err: errors.New("connection refused")},
	))
	page := e.ScrapePage(context.Background(), "https://example.com/broken")

	if !page.Failed() {
		t.Fatal("expected a failure record")
	}
	if page.URL != "https://example.com/broken" {
		t.Errorf("URL = %q", page.URL)
	}
	if page.Error != "connection refused" {
		t.Errorf("Error = %q, want last strategy's failure", page.Error)
	}
	if page.StatusCode != 0 || page.CleanedText != "" || page.WordCount != 0 {
		t.Error("failure record carries content")
	}
}

func TestNewExtractorChain(t *testing.T) {
	t.Parallel()

	t.Run("reader enabled", func(t *testing.T) {
		t.Parallel()
		e := NewExtractor(true)
		if len(e.chain) != 2 {
			t.Fatalf("chain length = %d, want 2", len(e.chain))
		}
		if e.chain[0].Name() != "reader" || e.chain[1].Name() != "local" {
			t.Errorf("chain order = %s, %s", e.chain[0].Name(), e.chain[1].Name())
		}
	})

	t.Run("reader disabled", func(t *testing.T) {
		t.Parallel()
		e := NewExtractor(false)
		if len(e.chain) != 1 || e.chain[0].Name() != "local" {
			t.Fatalf("chain = %v", e.chain)
		}
	})

	t.Run("reader host override", func(t *testing.T) {
		t.Parallel()
		e := NewExtractor(true, WithReaderHost("https://reader.internal/"))
		r, ok := e.chain[0].(*ReaderStrategy)
		if !ok {
			t.Fatal("first strategy is not the reader")
		}
		if r.host != "https://reader.internal" {
			t.Errorf("host = %q, want trailing slash trimmed", r.host)
		}
	})
}

func TestLinkSetPartition(t *testing.T) {
	t.Parallel()

	base, err := url.Parse("https://www.example.com/page")
	if err != nil {
		t.Fatal(err)
	}

	ls := newLinkSet(base.Hostname())
	ls.add(base, "/pricing")
	ls.add(base, "/pricing")                      // duplicate
	ls.add(base, "https://www.example.com/about") // same host, absolute
	ls.add(base, "https://example.com/naked")     // different hostname: external
	ls.add(base, "https://partner.example.org/")  // external
	ls.add(base, "#fragment")                     // skipped
	ls.add(base, "mailto:hi@example.com")         // skipped
	ls.add(base, "ftp://example.com/file")        // non-http scheme skipped

	wantInternal := []string{
		"https://www.example.com/pricing",
		"https://www.example.com/about",
	}
	if len(ls.internal) != len(wantInternal) {
		t.Fatalf("internal = %v, want %v", ls.internal, wantInternal)
	}
	for i := range wantInternal {
		if ls.internal[i] != wantInternal[i] {
			t.Errorf("internal %d = %q, want %q", i, ls.internal[i], wantInternal[i])
		}
	}

	// Partition is by exact hostname: the www-less variant is external
	// here, unlike discovery's www-insensitive same-site test.
	wantExternal := []string{
		"https://example.com/naked",
		"https://partner.example.org/",
	}
	if len(ls.external) != len(wantExternal) {
		t.Fatalf("external = %v, want %v", ls.external, wantExternal)
	}
	for i := range wantExternal {
		if ls.external[i] != wantExternal[i] {
			t.Errorf("external %d = %q, want %q", i, ls.external[i], wantExternal[i])
		}
	}
}
