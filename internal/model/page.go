package model

import (
	"crypto/md5" //nolint:gosec // Change-detection fingerprint, not a security boundary
	"encoding/hex"
	"strings"
	"unicode/utf8"
)

// MaxCleanedTextSize is the maximum length of CleanedText in bytes.
// Body text beyond this limit is truncated by the local extraction
// strategy to keep page records bounded in memory and in reports.
const MaxCleanedTextSize = 50000

// ExtractedPage is the unit of work and output of the crawl engine.
// One record is produced per discovered URL regardless of success; a
// failed fetch is represented by Error being non-empty and every content
// field zeroed. There is no partial-success state.
//
// Design decision: We fold failures into the record rather than returning
// an error because:
//  1. Callers iterate crawl results without per-page error handling
//  2. A failed page still occupies its slot in discovery order
//  3. The Error field survives serialization into reports and the database
type ExtractedPage struct {
	// URL is the absolute, normalized URL of the page.
	URL string `json:"url"`

	// StatusCode is the HTTP response status code.
	// 0 means total failure. 200 is set synthetically when the remote
	// reader strategy succeeds, since that path exposes no origin status.
	StatusCode int `json:"status_code"`

	// Title is the page title. Empty if absent.
	Title string `json:"title,omitempty"`

	// H1 is the first level-one heading. Empty if absent.
	H1 string `json:"h1,omitempty"`

	// MetaDescription is the content of meta[name=description].
	// Always empty from the remote reader strategy.
	MetaDescription string `json:"meta_description,omitempty"`

	// Canonical is the href of link[rel=canonical].
	// Always empty from the remote reader strategy.
	Canonical string `json:"canonical,omitempty"`

	// Lang is the normalized value of html[lang].
	// Always empty from the remote reader strategy.
	Lang string `json:"lang,omitempty"`

	// WordCount is the whitespace-token count of CleanedText.
	// Never negative; always consistent with CleanedText.
	WordCount int `json:"word_count"`

	// TextHash is the MD5 fingerprint of CleanedText, used by callers
	// for change detection across repeated crawls.
	TextHash string `json:"text_hash,omitempty"`

	// CleanedText is the plain body text of the page. The truncation
	// point depends on the extraction strategy that produced it.
	CleanedText string `json:"cleaned_text,omitempty"`

	// MarkdownContent is the markdown rendition of the page.
	MarkdownContent string `json:"markdown_content,omitempty"`

	// InternalLinks are deduplicated absolute links whose hostname
	// matches the page's own host. No fragment, javascript: or mailto:
	// targets appear here.
	InternalLinks []string `json:"internal_links,omitempty"`

	// ExternalLinks are deduplicated absolute links to other hosts.
	ExternalLinks []string `json:"external_links,omitempty"`

	// Headings holds the full h1/h2/h3 heading lists.
	Headings Headings `json:"headings"`

	// Error is the failure reason when the fetch failed entirely.
	// Empty means the record represents successfully extracted content.
	Error string `json:"error,omitempty"`
}

// Headings groups the page's heading texts by level.
type Headings struct {
	// H1 contains the text of all <h1> elements in document order.
	H1 []string `json:"h1,omitempty"`

	// H2 contains the text of all <h2> elements in document order.
	H2 []string `json:"h2,omitempty"`

	// H3 contains the text of all <h3> elements in document order.
	H3 []string `json:"h3,omitempty"`
}

// NewFailedPage returns the canonical failure record for a URL.
// All content fields are zero and Error carries the failure reason.
func NewFailedPage(pageURL, reason string) *ExtractedPage {
	return &ExtractedPage{
		URL:   pageURL,
		Error: reason,
	}
}

// Failed reports whether the record represents a failed fetch.
func (p *ExtractedPage) Failed() bool {
	return p.Error != ""
}

// Finalize computes the derived fields from CleanedText.
// It truncates CleanedText to at most limit bytes (0 means no
// truncation), backing up to a rune boundary so the text stays valid
// UTF-8, then sets WordCount and TextHash consistently. Extraction
// strategies call this once after assembling the text.
func (p *ExtractedPage) Finalize(limit int) {
	if limit > 0 && len(p.CleanedText) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(p.CleanedText[cut]) {
			cut--
		}
		p.CleanedText = p.CleanedText[:cut]
	}
	p.WordCount = CountWords(p.CleanedText)
	p.TextHash = HashText(p.CleanedText)
}

// CountWords returns the whitespace-token count of text.
// It is the single word-count definition used by every strategy.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// HashText returns the hex-encoded MD5 fingerprint of text.
// Empty text yields an empty hash so that failure records stay zeroed.
func HashText(text string) string {
	if text == "" {
		return ""
	}
	sum := md5.Sum([]byte(text)) //nolint:gosec // Change-detection fingerprint only
	return hex.EncodeToString(sum[:])
}
