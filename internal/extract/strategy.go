package extract

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/sitelens/sitelens/internal/crawler"
	"github.com/sitelens/sitelens/internal/model"
)

// DefaultContentTimeout is the per-fetch timeout for both extraction
// strategies. Content fetches are allowed twice the discovery timeout
// because the reader service adds its own upstream fetch.
const DefaultContentTimeout = 30 * time.Second

// Strategy is one way of turning a URL into page content.
//
// Design decision: An interface with a single result-or-error method
// rather than hand-coded try/fallback nesting because:
//  1. The chain is declared at the call site, so the order is visible
//  2. Strategies carry their own configuration (hosts, clients)
//  3. Tests exercise each strategy in isolation
type Strategy interface {
	// Name identifies the strategy in logs.
	Name() string

	// Extract fetches and normalizes one page.
	// A nil error means the returned page is a complete success record.
	Extract(ctx context.Context, pageURL string) (*model.ExtractedPage, error)
}

// Extractor runs a fallback chain of strategies over single URLs.
type Extractor struct {
	chain  []Strategy
	logger *slog.Logger
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithReaderHost overrides the remote reader service host.
func WithReaderHost(host string) ExtractorOption {
	return func(e *Extractor) {
		for _, s := range e.chain {
			if r, ok := s.(*ReaderStrategy); ok && host != "" {
				r.host = strings.TrimSuffix(host, "/")
			}
		}
	}
}

// WithHeaders sets extra request headers for fetches of the site being
// extracted. They apply to the local strategy only: the reader strategy
// talks to a third-party service, and forwarding a site's cookies or
// Authorization there would hand its credentials to that service. A
// gated site therefore fails the reader fetch and falls through to the
// local strategy, which carries the credentials.
func WithHeaders(headers map[string]string) ExtractorOption {
	return func(e *Extractor) {
		for _, s := range e.chain {
			if l, ok := s.(*LocalStrategy); ok {
				l.headers = headers
			}
		}
	}
}

// WithExtractorLogger sets the logger for fallback events.
func WithExtractorLogger(logger *slog.Logger) ExtractorOption {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// WithStrategies replaces the strategy chain entirely, mainly for tests.
func WithStrategies(strategies ...Strategy) ExtractorOption {
	return func(e *Extractor) {
		e.chain = strategies
	}
}

// NewExtractor builds the standard extraction chain.
// With useReader true the chain is reader-then-local; otherwise the
// local strategy runs alone.
func NewExtractor(useReader bool, opts ...ExtractorOption) *Extractor {
	e := &Extractor{}
	if useReader {
		e.chain = []Strategy{NewReaderStrategy(), NewLocalStrategy()}
	} else {
		e.chain = []Strategy{NewLocalStrategy()}
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.Default()
	}

	return e
}

// ScrapePage extracts one page, falling through the strategy chain on
// error. It never returns an error: if every strategy fails, the result
// carries StatusCode 0, zeroed content, and the last failure reason.
func (e *Extractor) ScrapePage(ctx context.Context, pageURL string) *model.ExtractedPage {
	var lastErr error
	for _, strategy := range e.chain {
		page, err := strategy.Extract(ctx, pageURL)
		if err == nil {
			return page
		}
		lastErr = err
		e.logger.Debug("extraction strategy failed",
			"strategy", strategy.Name(),
			"url", pageURL,
			"error", err,
		)
	}

	reason := "no extraction strategy configured"
	if lastErr != nil {
		reason = lastErr.Error()
	}
	return model.NewFailedPage(pageURL, reason)
}

// linkSet accumulates deduplicated links partitioned by hostname
// equality against the owning page's host. Both extraction strategies
// feed resolved absolute URLs through it.
type linkSet struct {
	pageHost string
	seen     map[string]bool
	internal []string
	external []string
}

func newLinkSet(pageHost string) *linkSet {
	return &linkSet{
		pageHost: strings.ToLower(pageHost),
		seen:     make(map[string]bool),
		internal: make([]string, 0),
		external: make([]string, 0),
	}
}

// add resolves a raw href against base and files it into the proper
// partition. Skippable targets (fragments, javascript:, mailto:, tel:)
// and malformed URLs are dropped silently.
func (ls *linkSet) add(base *url.URL, href string) {
	if crawler.SkippableHref(href) {
		return
	}

	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return
	}

	link := resolved.String()
	if ls.seen[link] {
		return
	}
	ls.seen[link] = true

	if strings.EqualFold(resolved.Hostname(), ls.pageHost) {
		ls.internal = append(ls.internal, link)
	} else {
		ls.external = append(ls.external, link)
	}
}
