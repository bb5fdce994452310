package report

import (
	"io"

	"github.com/sitelens/sitelens/internal/model"
)

// Writer renders a crawl report to a configured destination.
//
// Design decision: An interface rather than format functions so the CLI
// can pick the writer once and so terminal-plus-file output is a
// MultiWriter instead of a second code path.
type Writer interface {
	// Write renders the report. It returns the number of bytes written
	// and any error encountered.
	Write(report *model.CrawlReport) (int, error)
}

// MultiWriter renders a report through several Writers in turn,
// stopping at the first error. It exists because the Writer interface
// carries reports, not bytes, so io.MultiWriter cannot serve.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer fanning out to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write renders the report through every writer and returns the total
// bytes written.
func (m *MultiWriter) Write(report *model.CrawlReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter carries the output destination shared by all writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
