package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/language"

	"github.com/sitelens/sitelens/internal/crawler"
	"github.com/sitelens/sitelens/internal/model"
)

// chromeSelector matches the non-content elements removed before body
// text extraction: structural chrome tags plus the class names common
// page builders use for navigation, cookie banners, and popups.
const chromeSelector = `script, style, nav, footer, header, aside,
	[class*="sidebar"], [class*="menu"], [class*="navigation"],
	[class*="cookie-notice"], [class*="popup"]`

// maxLocalBodySize caps how much of a page response is read.
const maxLocalBodySize = 10 * 1024 * 1024 // 10MB

// LocalStrategy fetches a page directly and parses its DOM. It is the
// fallback behind the reader strategy and the primary strategy when the
// reader is disabled. Unlike the reader it sees the origin's real HTTP
// status and meta tags.
type LocalStrategy struct {
	// client follows redirects and applies the content timeout.
	client *http.Client

	// userAgent is a realistic desktop browser User-Agent.
	userAgent string

	// headers are extra request headers for gated staging sites.
	headers map[string]string
}

// NewLocalStrategy creates the local parser strategy with defaults.
func NewLocalStrategy() *LocalStrategy {
	return &LocalStrategy{
		client:    &http.Client{Timeout: DefaultContentTimeout},
		userAgent: crawler.DefaultUserAgent,
	}
}

// Name implements Strategy.
func (l *LocalStrategy) Name() string {
	return "local"
}

// Extract fetches pageURL and parses the returned HTML document.
// Transport failures are ErrNetwork; non-HTML responses are
// ErrNonHTMLContent. The origin's real status code is recorded even
// when it is not a 2xx, since a parseable error page is still content.
func (l *LocalStrategy) Extract(ctx context.Context, pageURL string) (*model.ExtractedPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	req.Header.Set("User-Agent", l.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	for name, value := range l.headers {
		req.Header.Set(name, value)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "text/html") {
		return nil, fmt.Errorf("%w: got %q", ErrNonHTMLContent, contentType)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxLocalBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	return parseHTMLPage(pageURL, resp.StatusCode, body)
}

// parseHTMLPage extracts metadata, headings, links, body text, and a
// markdown rendition from a fetched HTML document.
func parseHTMLPage(pageURL string, statusCode int, body []byte) (*model.ExtractedPage, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid page URL: %v", ErrNetwork, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: HTML parse: %v", ErrNetwork, err)
	}

	page := &model.ExtractedPage{
		URL:             pageURL,
		StatusCode:      statusCode,
		Title:           strings.TrimSpace(doc.Find("title").First().Text()),
		MetaDescription: strings.TrimSpace(doc.Find(`meta[name="description"]`).AttrOr("content", "")),
		Canonical:       strings.TrimSpace(doc.Find(`link[rel="canonical"]`).AttrOr("href", "")),
		Lang:            normalizeLang(doc.Find("html").AttrOr("lang", "")),
	}

	for _, level := range []string{"h1", "h2", "h3"} {
		doc.Find(level).Each(func(_ int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if text == "" {
				return
			}
			switch level {
			case "h1":
				page.Headings.H1 = append(page.Headings.H1, text)
			case "h2":
				page.Headings.H2 = append(page.Headings.H2, text)
			case "h3":
				page.Headings.H3 = append(page.Headings.H3, text)
			}
		})
	}
	if len(page.Headings.H1) > 0 {
		page.H1 = page.Headings.H1[0]
	}

	// Links come from the full document; chrome removal below would
	// otherwise throw away every navigation link.
	links := newLinkSet(base.Hostname())
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		links.add(base, s.AttrOr("href", ""))
	})
	page.InternalLinks = links.internal
	page.ExternalLinks = links.external

	// Markdown before chrome removal so the rendition keeps the full
	// document. Conversion failure degrades to a title/body concat
	// after the cleaned text exists.
	markdown, mdErr := htmltomarkdown.ConvertString(string(body))

	doc.Find(chromeSelector).Remove()
	bodyText := doc.Find("body").Text()
	if bodyText == "" {
		bodyText = doc.Text()
	}
	page.CleanedText = strings.Join(strings.Fields(bodyText), " ")
	page.Finalize(model.MaxCleanedTextSize)

	if mdErr == nil {
		page.MarkdownContent = markdown
	} else {
		page.MarkdownContent = strings.TrimSpace(page.Title + "\n\n" + page.CleanedText)
	}

	return page, nil
}

// normalizeLang canonicalizes an html[lang] value via BCP 47 parsing.
// Unparseable values are kept as-is, lowercased, rather than dropped:
// a sloppy lang attribute still carries signal.
func normalizeLang(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return strings.ToLower(raw)
	}
	return tag.String()
}
