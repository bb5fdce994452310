package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/sitelens/sitelens/internal/model"
)

func sampleReport() *model.CrawlReport {
	report := model.NewCrawlReport("example.com", "https://example.com")
	report.DateCrawled = time.Date(2026, 8, 20, 9, 30, 0, 0, time.UTC)
	report.Elapsed = 42 * time.Second
	report.Pages = []model.PageSummary{
		{
			URL: "https://example.com", StatusCode: 200, Title: "Home",
			Role: model.RoleMoney, Score: 150, WordCount: 800, InternalLinks: 12,
			TextHash: "aaa",
		},
		{
			URL: "https://example.com/about", StatusCode: 200, Title: "About us",
			Role: model.RoleTrust, Score: 70, WordCount: 400, InternalLinks: 5,
			TextHash: "bbb",
		},
		{
			URL: "https://example.com/down", Role: model.RoleSupport,
			Error: "connection refused",
		},
	}
	return report
}

func TestTextWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n, err := NewTextWriter(&buf).Write(sampleReport())
	if err != nil {
		t.Fatal(err)
	}
	if n == 0 || n != buf.Len() {
		t.Errorf("reported %d bytes, buffer has %d", n, buf.Len())
	}

	out := buf.String()
	for _, want := range []string{
		"example.com",
		"money=1 trust=1 authority=0 support=1",
		"Failed:  1 pages",
		"https://example.com/about",
		"connection refused",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text report missing %q:\n%s", want, out)
		}
	}
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewJSONWriter(&buf).Write(sampleReport()); err != nil {
		t.Fatal(err)
	}

	var decoded model.CrawlReport
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("JSON report does not parse: %v", err)
	}
	if decoded.Site != "example.com" || len(decoded.Pages) != 3 {
		t.Errorf("decoded report = %+v", decoded)
	}
	if decoded.Pages[0].Role != model.RoleMoney {
		t.Errorf("role lost in round trip: %v", decoded.Pages[0].Role)
	}
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewMarkdownWriter(&buf).Write(sampleReport()); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{
		"# Site Crawl Report",
		"## Role Breakdown",
		"## Pages by Priority",
		"## Failed Pages",
		"`example.com`",
		"https://example.com/about",
		"pie",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown report missing %q", want)
		}
	}

	// Failed pages are excluded from the priority table.
	priSection := out[strings.Index(out, "## Pages by Priority"):]
	priSection = priSection[:strings.Index(priSection, "## Failed Pages")]
	if strings.Contains(priSection, "/down") {
		t.Error("failed page listed in priority table")
	}
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var a, b bytes.Buffer
	mw := NewMultiWriter(NewTextWriter(&a), NewJSONWriter(&b))

	if _, err := mw.Write(sampleReport()); err != nil {
		t.Fatal(err)
	}
	if a.Len() == 0 || b.Len() == 0 {
		t.Error("multi writer skipped a destination")
	}
}
