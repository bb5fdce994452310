package model

import (
	"sort"
	"time"
)

// CrawlReport summarizes one full site crawl after classification and
// scoring. It is the input to every report writer and the record shape
// persisted by the database package.
//
// Design decision: The report carries per-page summary rows rather than
// the full ExtractedPage records because:
//  1. Cleaned text and link sets are large and already delivered to the caller
//  2. Reports are meant to be diffable between crawls (hash, role, score)
//  3. JSON reports stay small enough to attach to tickets and dashboards
type CrawlReport struct {
	// Site is the www-normalized host the crawl was rooted at.
	Site string `json:"site"`

	// StartURL is the URL the discovery crawl was seeded with.
	StartURL string `json:"start_url"`

	// DateCrawled is when the crawl started.
	DateCrawled time.Time `json:"date_crawled"`

	// Elapsed is the total wall-clock duration of the crawl.
	Elapsed time.Duration `json:"elapsed"`

	// Pages holds one summary row per crawled URL.
	Pages []PageSummary `json:"pages"`
}

// PageSummary is a single page's row in a crawl report.
type PageSummary struct {
	// URL is the page's normalized absolute URL.
	URL string `json:"url"`

	// StatusCode is the page's HTTP status (0 on total failure).
	StatusCode int `json:"status_code"`

	// Title is the extracted page title.
	Title string `json:"title,omitempty"`

	// Role is the classified business-priority role.
	Role Role `json:"role"`

	// Score is the computed priority score.
	Score int `json:"score"`

	// WordCount is the page's cleaned-text word count.
	WordCount int `json:"word_count"`

	// InternalLinks is the number of deduplicated internal links.
	InternalLinks int `json:"internal_links"`

	// TextHash is the content fingerprint used for change detection.
	TextHash string `json:"text_hash,omitempty"`

	// Error is the failure reason for pages that could not be fetched.
	Error string `json:"error,omitempty"`
}

// NewCrawlReport creates an empty report for a site crawl.
func NewCrawlReport(site, startURL string) *CrawlReport {
	return &CrawlReport{
		Site:        site,
		StartURL:    startURL,
		DateCrawled: time.Now(),
		Pages:       make([]PageSummary, 0),
	}
}

// AddPage appends a summary row for a classified, scored page.
func (r *CrawlReport) AddPage(page *ExtractedPage, role Role, score int) {
	r.Pages = append(r.Pages, PageSummary{
		URL:           page.URL,
		StatusCode:    page.StatusCode,
		Title:         page.Title,
		Role:          role,
		Score:         score,
		WordCount:     page.WordCount,
		InternalLinks: len(page.InternalLinks),
		TextHash:      page.TextHash,
		Error:         page.Error,
	})
}

// SortByPriority orders pages by score descending, then URL ascending.
// URL is the tie-breaker so that two runs over an unchanged site produce
// byte-identical reports.
func (r *CrawlReport) SortByPriority() {
	sort.SliceStable(r.Pages, func(i, j int) bool {
		if r.Pages[i].Score != r.Pages[j].Score {
			return r.Pages[i].Score > r.Pages[j].Score
		}
		return r.Pages[i].URL < r.Pages[j].URL
	})
}

// RoleCount returns the number of pages classified with the given role.
func (r *CrawlReport) RoleCount(role Role) int {
	count := 0
	for _, p := range r.Pages {
		if p.Role == role {
			count++
		}
	}
	return count
}

// FailedCount returns the number of pages whose fetch failed entirely.
func (r *CrawlReport) FailedCount() int {
	count := 0
	for _, p := range r.Pages {
		if p.Error != "" {
			count++
		}
	}
	return count
}
