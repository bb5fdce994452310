package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sitelens/sitelens/internal/model"
)

// SiteResult is the outcome of crawling one site in a batch.
type SiteResult struct {
	// StartURL is the site's seed URL as given to the batch.
	StartURL string

	// Pages holds the crawl output in discovery order.
	Pages []*model.ExtractedPage

	// Err is a discovery-level failure for this site. Per-page failures
	// live inside Pages as usual.
	Err error
}

// BatchProcessor crawls several independent sites concurrently. Each
// site's crawl remains internally sequential; only whole sites run in
// parallel, so no host ever sees more than one in-flight crawl.
//
// Design decision: A factory function rather than a shared SiteCrawler
// because each crawl may need site-specific discovery settings (page
// caps, exclude patterns) and a fresh crawler makes that explicit.
type BatchProcessor struct {
	// factory creates the crawler for one site.
	factory func(startURL string) *SiteCrawler

	// concurrency bounds the number of sites crawled at once.
	concurrency int

	// logger records batch-level progress.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithConcurrency sets the maximum number of concurrent site crawls.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithBatchLogger sets the batch logger.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// NewBatchProcessor creates a BatchProcessor around a crawler factory.
func NewBatchProcessor(factory func(startURL string) *SiteCrawler, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		factory:     factory,
		concurrency: 4,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch crawls every site and returns results in input order.
// A site whose crawl fails still occupies its slot, with Err set; the
// batch only returns an error when the context is cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, startURLs []string) ([]SiteResult, error) {
	return bp.process(ctx, startURLs, nil)
}

// ProcessBatchWithCallback crawls every site and additionally streams
// each completed result to the callback. The callback runs on the
// goroutine that finished the site, so it must be safe for concurrent
// use.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	startURLs []string,
	callback func(result SiteResult, index int),
) ([]SiteResult, error) {
	return bp.process(ctx, startURLs, callback)
}

func (bp *BatchProcessor) process(
	ctx context.Context,
	startURLs []string,
	callback func(result SiteResult, index int),
) ([]SiteResult, error) {
	bp.logger.Info("starting batch crawl",
		"sites", len(startURLs),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	results := make([]SiteResult, len(startURLs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, startURL := range startURLs {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			crawler := bp.factory(startURL)
			pages, err := crawler.CrawlSite(ctx, startURL)

			result := SiteResult{StartURL: startURL, Pages: pages, Err: err}
			results[i] = result

			if err != nil {
				// Recorded in the result; other sites keep crawling.
				bp.logger.Warn("site crawl failed", "site", startURL, "error", err)
			}
			if callback != nil {
				callback(result, i)
			}
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch crawl complete",
		"sites", len(startURLs),
		"elapsed", time.Since(startTime),
	)

	return results, err
}
