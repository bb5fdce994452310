package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/sitelens/sitelens/internal/crawler"
	"github.com/sitelens/sitelens/internal/extract"
	"github.com/sitelens/sitelens/internal/model"
)

// DefaultExtractDelay is the politeness pause after each page
// extraction. Content fetches are heavier than discovery fetches, so
// the pipeline waits longer between them than the discoverer does.
const DefaultExtractDelay = 500 * time.Millisecond

// ProgressFunc is invoked before each page extraction with the 1-based
// position, the total page count, and the URL about to be extracted.
type ProgressFunc func(current, total int, pageURL string)

// SiteCrawler runs the full crawl pipeline for one site at a time.
// It is safe to reuse across sites; all per-crawl state is local to
// CrawlSite.
type SiteCrawler struct {
	// discoverer produces the bounded URL set.
	discoverer *crawler.Discoverer

	// extractor turns each discovered URL into a page record.
	extractor *extract.Extractor

	// delay is the pause after each extraction.
	delay time.Duration

	// onProgress, when set, is called before each extraction.
	onProgress ProgressFunc

	// logger records per-page outcomes.
	logger *slog.Logger
}

// Option configures a SiteCrawler.
type Option func(*SiteCrawler)

// WithDiscoverer replaces the default discoverer.
func WithDiscoverer(d *crawler.Discoverer) Option {
	return func(c *SiteCrawler) {
		c.discoverer = d
	}
}

// WithExtractor replaces the default extractor.
func WithExtractor(e *extract.Extractor) Option {
	return func(c *SiteCrawler) {
		c.extractor = e
	}
}

// WithExtractDelay sets the pause after each page extraction.
func WithExtractDelay(delay time.Duration) Option {
	return func(c *SiteCrawler) {
		if delay >= 0 {
			c.delay = delay
		}
	}
}

// WithProgress sets the progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(c *SiteCrawler) {
		c.onProgress = fn
	}
}

// WithLogger sets the crawl logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *SiteCrawler) {
		c.logger = logger
	}
}

// New creates a SiteCrawler with default discovery and extraction.
func New(opts ...Option) *SiteCrawler {
	c := &SiteCrawler{
		delay: DefaultExtractDelay,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.discoverer == nil {
		c.discoverer = crawler.New()
	}
	if c.extractor == nil {
		c.extractor = extract.NewExtractor(true)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c
}

// CrawlSite discovers the site rooted at startURL and extracts every
// discovered URL sequentially, returning one record per URL in
// discovery order.
//
// No per-page failure aborts the pipeline: a failed extraction yields a
// record with its Error field set and the crawl continues. The only
// error return is a discovery-level failure (an invalid start URL).
// Context cancellation stops the crawl between pages and returns the
// records produced so far.
func (c *SiteCrawler) CrawlSite(ctx context.Context, startURL string) ([]*model.ExtractedPage, error) {
	urls, err := c.discoverer.Discover(ctx, startURL)
	if err != nil {
		return nil, err
	}

	c.logger.Info("discovery complete", "site", startURL, "pages", len(urls))

	pages := make([]*model.ExtractedPage, 0, len(urls))
	for i, pageURL := range urls {
		select {
		case <-ctx.Done():
			return pages, nil
		default:
		}

		if c.onProgress != nil {
			c.onProgress(i+1, len(urls), pageURL)
		}

		page := c.extractor.ScrapePage(ctx, pageURL)
		pages = append(pages, page)

		if page.Failed() {
			c.logger.Warn("page extraction failed", "url", pageURL, "error", page.Error)
		} else {
			c.logger.Debug("page extracted",
				"url", pageURL,
				"status", page.StatusCode,
				"words", page.WordCount,
			)
		}

		if c.delay > 0 && i < len(urls)-1 {
			select {
			case <-ctx.Done():
				return pages, nil
			case <-time.After(c.delay):
			}
		}
	}

	return pages, nil
}
