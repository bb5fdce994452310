package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/sitelens/sitelens/internal/model"
)

// MarkdownWriter renders the report as GitHub-flavored Markdown, built
// with the nao1215/markdown fluent builder so tables and mermaid charts
// come out well-formed.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write renders the full report in Markdown.
func (w *MarkdownWriter) Write(report *model.CrawlReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeRoleSummary(md, report)
	w.writePages(md, report)
	w.writeFailures(md, report)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.CrawlReport) {
	md.H1("Site Crawl Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Site", "`" + report.Site + "`"},
			{"Start URL", report.StartURL},
			{"Crawl Date", report.DateCrawled.Format("2006-01-02 15:04:05 MST")},
			{"Pages", strconv.Itoa(len(report.Pages))},
			{"Failed", strconv.Itoa(report.FailedCount())},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeRoleSummary(md *markdown.Markdown, report *model.CrawlReport) {
	md.H2("Role Breakdown")
	md.PlainText("")

	roles := []model.Role{
		model.RoleMoney,
		model.RoleTrust,
		model.RoleAuthority,
		model.RoleSupport,
	}

	rows := make([][]string, 0, len(roles))
	for _, role := range roles {
		rows = append(rows, []string{role.String(), strconv.Itoa(report.RoleCount(role))})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Role", "Pages"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(report.Pages) > 0 {
		w.writeRoleChart(md, report, roles)
	}
}

func (w *MarkdownWriter) writeRoleChart(md *markdown.Markdown, report *model.CrawlReport, roles []model.Role) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Page Role Distribution"),
		piechart.WithShowData(true),
	)
	for _, role := range roles {
		if count := report.RoleCount(role); count > 0 {
			chart.LabelAndIntValue(role.String(), uint64(count))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writePages(md *markdown.Markdown, report *model.CrawlReport) {
	md.H2("Pages by Priority")
	md.PlainText("")

	rows := make([][]string, 0, len(report.Pages))
	for _, p := range report.Pages {
		if p.Error != "" {
			continue
		}
		rows = append(rows, []string{
			strconv.Itoa(p.Score),
			p.Role.String(),
			truncateString(p.Title, 50),
			strconv.Itoa(p.WordCount),
			p.URL,
		})
	}

	if len(rows) == 0 {
		md.PlainText("No pages were successfully extracted.")
		md.PlainText("")
		return
	}

	md.Table(markdown.TableSet{
		Header: []string{"Score", "Role", "Title", "Words", "URL"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, report *model.CrawlReport) {
	failed := report.FailedCount()
	if failed == 0 {
		return
	}

	md.H2("Failed Pages")
	md.PlainText("")
	md.Warningf("%d page(s) could not be extracted.", failed)
	md.PlainText("")

	rows := make([][]string, 0, failed)
	for _, p := range report.Pages {
		if p.Error == "" {
			continue
		}
		rows = append(rows, []string{p.URL, truncateString(p.Error, 60)})
	}
	md.Table(markdown.TableSet{
		Header: []string{"URL", "Error"},
		Rows:   rows,
	})
	md.PlainText("")
}

// truncateString trims a string to maxLen characters with an ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
