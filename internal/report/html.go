package report

import (
	"bytes"
	"fmt"
	"html"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/nao1215/ytanalyzer/internal/model"
)

// HTMLWriter renders the Markdown document as a standalone HTML page.
// It is used for the browser preview served by "ytanalyzer serve".
//
// Design decision: The page is produced from the same Markdown body that
// is downloaded, so the preview and the file never disagree. Raw HTML in
// the body is not passed through; goldmark escapes it by default.
type HTMLWriter struct {
	baseWriter
	formatter *Formatter
	renderer  goldmark.Markdown
}

// NewHTMLWriter creates an HTMLWriter. A nil formatter means NewFormatter
// with default options.
func NewHTMLWriter(output io.Writer, formatter *Formatter) *HTMLWriter {
	if formatter == nil {
		formatter = NewFormatter()
	}
	return &HTMLWriter{
		baseWriter: newBaseWriter(output),
		formatter:  formatter,
		renderer:   goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// Write formats the result and writes it as an HTML page.
func (w *HTMLWriter) Write(result *model.AnalysisResult) (int, error) {
	return w.WriteDocument(w.formatter.Format(result))
}

// WriteDocument writes an already formatted document as an HTML page.
func (w *HTMLWriter) WriteDocument(doc Document) (int, error) {
	var body bytes.Buffer
	if err := w.renderer.Convert(doc.Bytes(), &body); err != nil {
		return 0, fmt.Errorf("failed to render markdown: %w", err)
	}

	title := doc.Title
	if title == "" {
		title = "분석 결과"
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html lang=\"ko\">\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&page, "<title>%s</title>\n", html.EscapeString(title))
	page.WriteString(pageStyle)
	page.WriteString("</head>\n<body>\n<main>\n")
	page.Write(body.Bytes())
	page.WriteString("</main>\n</body>\n</html>\n")

	return w.output.Write(page.Bytes())
}

const pageStyle = `<style>
body { font-family: sans-serif; line-height: 1.6; margin: 0; background: #fafafa; }
main { max-width: 860px; margin: 0 auto; padding: 2rem; background: #fff; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ddd; padding: 0.4rem; text-align: left; vertical-align: top; }
blockquote { border-left: 4px solid #ccc; margin: 0; padding-left: 1rem; color: #555; }
pre { background: #f4f4f4; padding: 0.8rem; overflow-x: auto; white-space: pre-wrap; }
</style>
`
