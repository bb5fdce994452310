package crawler

import (
	"context"
	"net/url"
	"regexp"
	"strings"
)

// sitemapPaths are the conventional sitemap locations, probed in order.
// The first one answering 2xx wins; later ones are not consulted.
var sitemapPaths = []string{
	"/sitemap.xml",
	"/sitemap_index.xml",
	"/sitemap/sitemap.xml",
}

// locPattern extracts <loc> values from sitemap XML. Regex rather than
// an XML decoder: real-world sitemaps are frequently malformed and must
// still yield their URL entries. (?s) lets a value wrapped across lines
// match; the whitespace inside it is stripped afterwards.
var locPattern = regexp.MustCompile(`(?s)<loc>\s*(.*?)\s*</loc>`)

// discoverFromSitemaps probes the conventional sitemap locations on the
// start URL's origin and returns the same-host <loc> entries of the
// first sitemap that responds, capped at the page limit. Host comparison
// here is exact (no www normalization): a sitemap that lists a different
// host variant is advertising URLs outside the crawl root.
func (d *Discoverer) discoverFromSitemaps(ctx context.Context, start *url.URL) []string {
	origin := start.Scheme + "://" + start.Host

	for _, path := range sitemapPaths {
		body, err := d.fetch(ctx, origin+path)
		if err != nil {
			d.logger.Debug("sitemap probe failed", "path", path, "error", err)
			continue
		}

		urls := d.sitemapURLs(body, start.Hostname())
		if len(urls) > 0 {
			d.logger.Info("sitemap fallback used", "path", path, "urls", len(urls))
			return urls
		}
	}

	return nil
}

// sitemapURLs extracts the same-host URL entries from sitemap XML.
func (d *Discoverer) sitemapURLs(body []byte, host string) []string {
	matches := locPattern.FindAllStringSubmatch(string(body), -1)

	urls := make([]string, 0, len(matches))
	seen := make(map[string]bool)
	for _, m := range matches {
		// Pretty-printers sometimes wrap a URL across lines; a URL
		// itself never contains whitespace, so drop all of it.
		loc := strings.Join(strings.Fields(m[1]), "")
		u, err := url.Parse(loc)
		if err != nil {
			continue
		}
		if !strings.EqualFold(u.Hostname(), host) {
			continue
		}
		if seen[loc] {
			continue
		}
		seen[loc] = true
		urls = append(urls, loc)
		if len(urls) >= d.maxPages {
			break
		}
	}

	return urls
}
