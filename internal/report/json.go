package report

import (
	"encoding/json"
	"io"

	"github.com/sitelens/sitelens/internal/model"
)

// JSONWriter renders the report as indented JSON, the format consumed
// by downstream tooling and easiest to diff between crawls.
type JSONWriter struct {
	baseWriter
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer) *JSONWriter {
	return &JSONWriter{baseWriter: newBaseWriter(output)}
}

// Write renders the report as JSON with a trailing newline.
func (w *JSONWriter) Write(report *model.CrawlReport) (int, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	return w.output.Write(data)
}
