package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/sitelens/sitelens/internal/model"
)

// DefaultReaderHost is the markdown-extraction reader service. The
// target URL is appended path-style, so the full request becomes
// GET <host>/<target-url>.
const DefaultReaderHost = "https://r.jina.ai"

// maxReaderBodySize caps how much of a reader response is read.
const maxReaderBodySize = 10 * 1024 * 1024 // 10MB

var (
	// markdownLink matches [text](url) links in reader output.
	markdownLink = regexp.MustCompile(`\[([^\]]*)\]\(([^)]+)\)`)

	// markdownImage matches ![alt](url); stripped before link handling
	// so images never land in the link sets or the cleaned text.
	markdownImage = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)

	// excessNewlines collapses runs of three or more newlines.
	excessNewlines = regexp.MustCompile(`\n{3,}`)

	// markdownFormatting strips the formatting characters the reader
	// emits around emphasized and quoted text.
	markdownFormatting = strings.NewReplacer("#", "", "*", "", "_", "", "`", "", "~", "", ">", "")
)

// ReaderStrategy extracts page content through a remote reader service
// that renders pages into plain markdown. The reader exposes neither
// the origin's HTTP status nor its meta tags, so successful records get
// a synthetic 200 and empty metaDescription/canonical/lang.
type ReaderStrategy struct {
	// host is the reader service base URL, without trailing slash.
	host string

	// client issues reader requests with the content timeout.
	client *http.Client
}

// NewReaderStrategy creates the reader strategy with default settings.
func NewReaderStrategy() *ReaderStrategy {
	return &ReaderStrategy{
		host:   DefaultReaderHost,
		client: &http.Client{Timeout: DefaultContentTimeout},
	}
}

// Name implements Strategy.
func (r *ReaderStrategy) Name() string {
	return "reader"
}

// Extract fetches the reader's markdown rendition of pageURL and parses
// it into a page record. Any transport or status failure is reported as
// ErrReaderService so the extractor chain falls through to the local
// strategy.
func (r *ReaderStrategy) Extract(ctx context.Context, pageURL string) (*model.ExtractedPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.host+"/"+pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReaderService, err)
	}
	req.Header.Set("Accept", "text/plain")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReaderService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrReaderService, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReaderBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReaderService, err)
	}

	return parseReaderMarkdown(pageURL, string(body))
}

// parseReaderMarkdown turns a reader markdown body into a page record.
func parseReaderMarkdown(pageURL, body string) (*model.ExtractedPage, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid page URL: %v", ErrReaderService, err)
	}

	page := &model.ExtractedPage{
		URL: pageURL,
		// The reader does not surface the origin's real status.
		StatusCode:      http.StatusOK,
		MarkdownContent: body,
	}

	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "Title: "):
			if page.Title == "" {
				page.Title = strings.TrimSpace(strings.TrimPrefix(line, "Title: "))
			}
		case strings.HasPrefix(line, "### "):
			if text := strings.TrimSpace(strings.TrimPrefix(line, "### ")); text != "" {
				page.Headings.H3 = append(page.Headings.H3, text)
			}
		case strings.HasPrefix(line, "## "):
			if text := strings.TrimSpace(strings.TrimPrefix(line, "## ")); text != "" {
				page.Headings.H2 = append(page.Headings.H2, text)
			}
		case strings.HasPrefix(line, "# "):
			if text := strings.TrimSpace(strings.TrimPrefix(line, "# ")); text != "" {
				if page.H1 == "" {
					page.H1 = text
				}
				page.Headings.H1 = append(page.Headings.H1, text)
			}
		}
	}

	links := newLinkSet(base.Hostname())
	withoutImages := markdownImage.ReplaceAllString(body, "")
	for _, match := range markdownLink.FindAllStringSubmatch(withoutImages, -1) {
		links.add(base, match[2])
	}
	page.InternalLinks = links.internal
	page.ExternalLinks = links.external

	// Cleaned text: link syntax reduced to anchor text, formatting
	// characters stripped, blank-line runs collapsed to one blank line.
	text := markdownLink.ReplaceAllString(withoutImages, "$1")
	text = markdownFormatting.Replace(text)
	text = excessNewlines.ReplaceAllString(text, "\n\n")
	page.CleanedText = strings.TrimSpace(text)
	page.Finalize(0)

	return page, nil
}
