package crawler

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// staticExtensions lists path suffixes that never lead to crawlable HTML.
// Anchors pointing at these are rejected before they reach the queue.
var staticExtensions = map[string]bool{
	".pdf": true, ".jpg": true, ".jpeg": true, ".png": true,
	".gif": true, ".css": true, ".js": true, ".zip": true,
	".svg": true, ".webp": true, ".ico": true, ".woff": true,
	".woff2": true, ".ttf": true, ".eot": true,
}

// skippableSchemes are href prefixes that can never resolve to a page.
var skippableSchemes = []string{"javascript:", "mailto:", "tel:"}

// extractAnchorHrefs walks an HTML document and returns the raw href
// value of every anchor element, in document order. No resolution or
// filtering happens here.
func extractAnchorHrefs(r io.Reader) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	hrefs := make([]string, 0)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key == "href" && attr.Val != "" {
					hrefs = append(hrefs, attr.Val)
					break
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return hrefs, nil
}

// SkippableHref reports whether an href can never lead to a crawlable
// page: empty values, bare fragments, and javascript/mailto/tel targets.
func SkippableHref(href string) bool {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return true
	}
	lower := strings.ToLower(href)
	for _, scheme := range skippableSchemes {
		if strings.HasPrefix(lower, scheme) {
			return true
		}
	}
	return false
}

// HasStaticExtension reports whether a URL path ends in a binary or
// static-asset extension.
func HasStaticExtension(path string) bool {
	dot := strings.LastIndex(path, ".")
	if dot < 0 {
		return false
	}
	return staticExtensions[strings.ToLower(path[dot:])]
}

// NormalizeURL canonicalizes a URL for deduplication: the query and
// fragment are dropped and a trailing slash is stripped, so that
// /pricing, /pricing/ and /pricing?ref=nav all collapse to one entry.
func NormalizeURL(u *url.URL) string {
	clone := *u
	clone.RawQuery = ""
	clone.Fragment = ""
	return strings.TrimSuffix(clone.String(), "/")
}

// StripWWW removes a leading "www." from a hostname.
func StripWWW(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}

// SameSite reports whether two hostnames belong to the same site.
// Comparison strips a leading "www." from both sides, so
// www.example.com and example.com are one host.
func SameSite(hostA, hostB string) bool {
	return StripWWW(hostA) == StripWWW(hostB)
}
