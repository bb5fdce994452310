package report

import (
	"bytes"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/sitelens/sitelens/internal/model"
)

// TextWriter renders a compact terminal summary: crawl header, role
// breakdown, and one aligned row per page in the report's order.
type TextWriter struct {
	baseWriter
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer) *TextWriter {
	return &TextWriter{baseWriter: newBaseWriter(output)}
}

// Write renders the report as plain text.
func (w *TextWriter) Write(report *model.CrawlReport) (int, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Site:    %s\n", report.Site)
	fmt.Fprintf(&buf, "Crawled: %s (%d pages, %s)\n",
		report.DateCrawled.Format("2006-01-02 15:04:05"),
		len(report.Pages),
		report.Elapsed.Round(10*time.Millisecond),
	)
	if failed := report.FailedCount(); failed > 0 {
		fmt.Fprintf(&buf, "Failed:  %d pages\n", failed)
	}

	fmt.Fprintf(&buf, "Roles:   money=%d trust=%d authority=%d support=%d\n\n",
		report.RoleCount(model.RoleMoney),
		report.RoleCount(model.RoleTrust),
		report.RoleCount(model.RoleAuthority),
		report.RoleCount(model.RoleSupport),
	)

	tw := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SCORE\tROLE\tWORDS\tURL")
	for _, p := range report.Pages {
		if p.Error != "" {
			fmt.Fprintf(tw, "-\t-\t-\t%s (failed: %s)\n", p.URL, p.Error)
			continue
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", p.Score, p.Role, p.WordCount, p.URL)
	}
	if err := tw.Flush(); err != nil {
		return 0, err
	}

	return w.output.Write(buf.Bytes())
}
