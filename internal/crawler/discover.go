package crawler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"time"
)

// Default discovery settings. These are deliberately conservative: the
// crawler exists to map a site, not to stress it.
const (
	// DefaultMaxPages bounds the number of URLs one discovery returns.
	DefaultMaxPages = 50

	// DefaultMaxDepth bounds how many link hops from the start URL are
	// followed. Depth 0 is the start page itself.
	DefaultMaxDepth = 3

	// DefaultFetchTimeout is the per-fetch timeout during discovery.
	DefaultFetchTimeout = 15 * time.Second

	// DefaultFetchDelay is the politeness pause between discovery
	// fetches to the same host.
	DefaultFetchDelay = 200 * time.Millisecond

	// DefaultUserAgent is a desktop-browser User-Agent. Sites routinely
	// serve stripped or blocked responses to obvious bot agents, which
	// would defeat discovery entirely.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

	// maxBodySize limits how much of a discovery response is read.
	maxBodySize = 5 * 1024 * 1024 // 5MB

	// sitemapFallbackThreshold is the BFS result size at or below which
	// the sitemap fallback kicks in. A handful of discovered URLs on a
	// live site almost always means anchors are rendered client-side.
	sitemapFallbackThreshold = 3
)

// Discoverer performs breadth-first same-site page discovery.
// A Discoverer is safe to reuse: every Discover call owns its own queue
// and visited set.
type Discoverer struct {
	// client issues all discovery fetches. Its timeout applies per fetch;
	// there is no aggregate discovery timeout.
	client *http.Client

	// maxPages limits the total number of URLs returned.
	maxPages int

	// maxDepth limits link-hop distance from the start URL.
	maxDepth int

	// delay is the pause between consecutive fetches.
	delay time.Duration

	// userAgent is sent with every discovery request.
	userAgent string

	// headers are extra request headers, typically a Cookie or
	// Authorization value for gated staging sites.
	headers map[string]string

	// exclude holds compiled patterns; a URL matching any of them (by
	// raw path or by normalized URL) is never enqueued.
	exclude []*regexp.Regexp

	// logger records absorbed per-fetch failures.
	logger *slog.Logger
}

// Option configures a Discoverer.
type Option func(*Discoverer)

// WithMaxPages sets the maximum number of URLs a discovery returns.
func WithMaxPages(n int) Option {
	return func(d *Discoverer) {
		if n > 0 {
			d.maxPages = n
		}
	}
}

// WithMaxDepth sets the maximum link-hop depth.
// 0 means only the start page.
func WithMaxDepth(n int) Option {
	return func(d *Discoverer) {
		if n >= 0 {
			d.maxDepth = n
		}
	}
}

// WithDelay sets the politeness delay between fetches.
func WithDelay(delay time.Duration) Option {
	return func(d *Discoverer) {
		if delay >= 0 {
			d.delay = delay
		}
	}
}

// WithUserAgent sets the User-Agent header for discovery fetches.
func WithUserAgent(ua string) Option {
	return func(d *Discoverer) {
		if ua != "" {
			d.userAgent = ua
		}
	}
}

// WithHeaders sets extra headers sent with every discovery request,
// such as the Cookie or Authorization a gated staging site requires.
func WithHeaders(headers map[string]string) Option {
	return func(d *Discoverer) {
		d.headers = headers
	}
}

// WithExcludePatterns sets regex patterns for URLs that must never be
// discovered. Each pattern is tested against both the raw URL path and
// the normalized absolute URL.
func WithExcludePatterns(patterns []*regexp.Regexp) Option {
	return func(d *Discoverer) {
		d.exclude = patterns
	}
}

// WithLogger sets the logger used for absorbed fetch failures.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Discoverer) {
		d.logger = logger
	}
}

// WithHTTPClient replaces the HTTP client, mainly for tests.
func WithHTTPClient(client *http.Client) Option {
	return func(d *Discoverer) {
		d.client = client
	}
}

// New creates a Discoverer with default settings.
func New(opts ...Option) *Discoverer {
	d := &Discoverer{
		client:    &http.Client{Timeout: DefaultFetchTimeout},
		maxPages:  DefaultMaxPages,
		maxDepth:  DefaultMaxDepth,
		delay:     DefaultFetchDelay,
		userAgent: DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(d)
	}

	if d.logger == nil {
		d.logger = slog.Default()
	}

	return d
}

// queueItem pairs a normalized URL with its BFS depth.
type queueItem struct {
	url   string
	depth int
}

// Discover runs a breadth-first traversal from startURL and returns the
// discovered same-site URLs in visit order, capped at the page limit.
//
// Discovery as a whole cannot fail from individual page errors: fetch
// failures are logged and contribute zero outgoing links. The only error
// return is an unparseable start URL. Context cancellation stops the
// traversal between fetches and returns what was found so far.
func (d *Discoverer) Discover(ctx context.Context, startURL string) ([]string, error) {
	start, err := url.Parse(startURL)
	if err != nil {
		return nil, fmt.Errorf("invalid start URL: %w", err)
	}
	if start.Scheme != "http" && start.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q in start URL", start.Scheme)
	}

	visited := make(map[string]bool)
	discovered := make([]string, 0, d.maxPages)
	queue := []queueItem{{url: NormalizeURL(start), depth: 0}}

	for len(queue) > 0 && len(discovered) < d.maxPages {
		select {
		case <-ctx.Done():
			return discovered, nil
		default:
		}

		item := queue[0]
		queue = queue[1:]

		if visited[item.url] || item.depth > d.maxDepth {
			continue
		}
		visited[item.url] = true
		discovered = append(discovered, item.url)

		body, err := d.fetch(ctx, item.url)
		if err != nil {
			// Absorbed: a dead page simply has no outgoing edges.
			d.logger.Warn("discovery fetch failed", "url", item.url, "error", err)
			continue
		}

		for _, link := range d.crawlableLinks(item.url, body) {
			if !visited[link] {
				queue = append(queue, queueItem{url: link, depth: item.depth + 1})
			}
		}

		if d.delay > 0 && len(queue) > 0 {
			select {
			case <-ctx.Done():
				return discovered, nil
			case <-time.After(d.delay):
			}
		}
	}

	// A near-empty result on a live site usually means the anchors are
	// rendered by JavaScript. Fall back to the sitemap if one exists.
	if len(discovered) <= sitemapFallbackThreshold {
		if fromSitemap := d.discoverFromSitemaps(ctx, start); len(fromSitemap) > 0 {
			return fromSitemap, nil
		}
	}

	return discovered, nil
}

// fetch retrieves the raw HTML of a page for link extraction.
func (d *Discoverer) fetch(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	for name, value := range d.headers {
		req.Header.Set(name, value)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
}

// crawlableLinks extracts, filters, and normalizes the anchors of one
// fetched page. Only same-site, non-static, non-excluded targets
// survive. Malformed hrefs are dropped silently.
func (d *Discoverer) crawlableLinks(pageURL string, body []byte) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	hrefs, err := extractAnchorHrefs(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	links := make([]string, 0, len(hrefs))
	seen := make(map[string]bool)
	for _, href := range hrefs {
		if SkippableHref(href) {
			continue
		}

		ref, err := url.Parse(href)
		if err != nil {
			continue
		}
		resolved := base.ResolveReference(ref)

		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			continue
		}
		if !SameSite(resolved.Hostname(), base.Hostname()) {
			continue
		}
		if HasStaticExtension(resolved.Path) {
			continue
		}

		normalized := NormalizeURL(resolved)
		if d.excluded(resolved.Path, normalized) || seen[normalized] {
			continue
		}
		seen[normalized] = true
		links = append(links, normalized)
	}

	return links
}

// excluded reports whether a URL matches any exclude pattern, tested
// against the raw path and the normalized URL.
func (d *Discoverer) excluded(rawPath, normalized string) bool {
	for _, pattern := range d.exclude {
		if pattern.MatchString(rawPath) || pattern.MatchString(normalized) {
			return true
		}
	}
	return false
}

// CompileExcludePatterns compiles exclude pattern strings, rejecting the
// whole set if any single pattern is invalid.
func CompileExcludePatterns(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}
