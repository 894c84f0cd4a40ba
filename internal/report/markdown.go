package report

import (
	"io"

	"github.com/nao1215/ytanalyzer/internal/model"
)

// MarkdownWriter outputs the full analysis document in Markdown format.
// This format is what users download and share.
type MarkdownWriter struct {
	baseWriter
	formatter *Formatter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given
// writer. A nil formatter means NewFormatter with default options.
func NewMarkdownWriter(output io.Writer, formatter *Formatter) *MarkdownWriter {
	if formatter == nil {
		formatter = NewFormatter()
	}
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		formatter:  formatter,
	}
}

// Write formats the result and writes the Markdown body.
func (w *MarkdownWriter) Write(result *model.AnalysisResult) (int, error) {
	doc := w.formatter.Format(result)
	return io.WriteString(w.output, doc.Body)
}
