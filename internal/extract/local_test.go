package extract

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const sampleHTML = `<!DOCTYPE html>
<html lang="EN-gb">
<head>
	<title>Boiler Repair | Acme Plumbing</title>
	<meta name="description" content="Same-day boiler repair in Leeds.">
	<link rel="canonical" href="https://acme-plumbing.co.uk/boiler-repair">
	<style>body { color: red }</style>
</head>
<body>
	<header><a href="/">Home</a></header>
	<nav><a href="/services">Services</a><a href="/contact">Contact</a></nav>
	<div class="cookie-notice">We use cookies to improve your experience.</div>
	<h1>Boiler Repair in Leeds</h1>
	<p>Fast, same-day boiler repair from Gas Safe engineers.</p>
	<h2>What we fix</h2>
	<p>Combi, system and conventional boilers.</p>
	<h2>Pricing</h2>
	<p>No callout charge. See <a href="/pricing">our pricing</a> or
	<a href="https://checkatrade.example.com/acme">our reviews</a>.</p>
	<h3>Service areas</h3>
	<aside class="sidebar">Recent posts and other clutter.</aside>
	<script>console.log("analytics")</script>
	<footer>© Acme Plumbing</footer>
</body>
</html>`

func TestParseHTMLPage(t *testing.T) {
	t.Parallel()

	page, err := parseHTMLPage("https://acme-plumbing.co.uk/boiler-repair", 200, []byte(sampleHTML))
	if err != nil {
		t.Fatal(err)
	}

	if page.Title != "Boiler Repair | Acme Plumbing" {
		t.Errorf("Title = %q", page.Title)
	}
	if page.MetaDescription != "Same-day boiler repair in Leeds." {
		t.Errorf("MetaDescription = %q", page.MetaDescription)
	}
	if page.Canonical != "https://acme-plumbing.co.uk/boiler-repair" {
		t.Errorf("Canonical = %q", page.Canonical)
	}
	if page.Lang != "en-GB" {
		t.Errorf("Lang = %q, want canonical en-GB", page.Lang)
	}
	if page.H1 != "Boiler Repair in Leeds" {
		t.Errorf("H1 = %q", page.H1)
	}
	if len(page.Headings.H2) != 2 {
		t.Errorf("Headings.H2 = %v", page.Headings.H2)
	}
	if len(page.Headings.H3) != 1 || page.Headings.H3[0] != "Service areas" {
		t.Errorf("Headings.H3 = %v", page.Headings.H3)
	}

	// Links are collected from the full document including navigation.
	wantInternal := map[string]bool{
		"https://acme-plumbing.co.uk/":         true,
		"https://acme-plumbing.co.uk/services": true,
		"https://acme-plumbing.co.uk/contact":  true,
		"https://acme-plumbing.co.uk/pricing":  true,
	}
	if len(page.InternalLinks) != len(wantInternal) {
		t.Errorf("InternalLinks = %v", page.InternalLinks)
	}
	for _, link := range page.InternalLinks {
		if !wantInternal[link] {
			t.Errorf("unexpected internal link %q", link)
		}
	}
	if len(page.ExternalLinks) != 1 || page.ExternalLinks[0] != "https://checkatrade.example.com/acme" {
		t.Errorf("ExternalLinks = %v", page.ExternalLinks)
	}

	// Chrome is stripped from the cleaned text but body content survives.
	for _, phrase := range []string{"We use cookies", "Recent posts", "console.log", "color: red"} {
		if strings.Contains(page.CleanedText, phrase) {
			t.Errorf("CleanedText contains chrome text %q", phrase)
		}
	}
	if !strings.Contains(page.CleanedText, "Gas Safe engineers") {
		t.Error("CleanedText lost body content")
	}

	if page.WordCount == 0 || page.TextHash == "" {
		t.Error("derived fields not finalized")
	}
	if page.MarkdownContent == "" {
		t.Error("MarkdownContent empty")
	}
}

func TestLocalStrategyExtract(t *testing.T) {
	t.Parallel()

	t.Run("records real status code", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, "<html><head><title>Not found</title></head><body><p>Gone.</p></body></html>")
		}))
		t.Cleanup(srv.Close)

		page, err := NewLocalStrategy().Extract(context.Background(), srv.URL+"/missing")
		if err != nil {
			t.Fatal(err)
		}
		if page.StatusCode != http.StatusNotFound {
			t.Errorf("StatusCode = %d, want 404", page.StatusCode)
		}
		if page.Title != "Not found" {
			t.Errorf("Title = %q", page.Title)
		}
	})

	t.Run("non-HTML content type", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/pdf")
			fmt.Fprint(w, "%PDF-1.4")
		}))
		t.Cleanup(srv.Close)

		_, err := NewLocalStrategy().Extract(context.Background(), srv.URL+"/file")
		if !errors.Is(err, ErrNonHTMLContent) {
			t.Errorf("error = %v, want ErrNonHTMLContent", err)
		}
	})

	t.Run("configured headers reach the origin", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Cookie") != "session=abc123" {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, "<html><head><title>Members</title></head><body><p>Gated content.</p></body></html>")
		}))
		t.Cleanup(srv.Close)

		e := NewExtractor(false, WithHeaders(map[string]string{"Cookie": "session=abc123"}))
		page := e.ScrapePage(context.Background(), srv.URL+"/members")

		if page.Failed() {
			t.Fatalf("extraction failed: %s", page.Error)
		}
		if page.Title != "Members" {
			t.Errorf("Title = %q, want the gated page served", page.Title)
		}
	})

	t.Run("unreachable host is ErrNetwork", func(t *testing.T) {
		t.Parallel()
		_, err := NewLocalStrategy().Extract(context.Background(), "http://127.0.0.1:1/")
		if !errors.Is(err, ErrNetwork) {
			t.Errorf("error = %v, want ErrNetwork", err)
		}
	})
}

func TestNormalizeLang(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"en", "en"},
		{"EN-gb", "en-GB"},
		{"fr_FR", "fr-FR"},
		{"not a tag!!", "not a tag!!"},
	}

	for _, tt := range tests {
		if got := normalizeLang(tt.in); got != tt.want {
			t.Errorf("normalizeLang(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
