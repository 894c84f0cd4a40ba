package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/nao1215/ytanalyzer/internal/model"
)

// JSONWriter outputs the analysis aggregate in JSON format.
// This format is designed for tool integration and programmatic processing.
//
// Design decision: The aggregate is written back in the shapes the backend
// sent, so legacy string elements stay strings and a piped result can be
// fed to tools that understand the backend's own responses.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the aggregate in JSON format.
func (w *JSONWriter) Write(result *model.AnalysisResult) (int, error) {
	return w.writeJSON(result)
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	// Trailing newline for terminal output
	data = append(data, '\n')
	return w.output.Write(data)
}

// JSONReport wraps an aggregate with export metadata.
type JSONReport struct {
	// Version is the ytanalyzer version that wrote the file.
	Version string `json:"version"`

	// Stage is the last completed stage of the aggregate.
	Stage string `json:"stage"`

	// ExportedAt is when the file was written.
	ExportedAt time.Time `json:"exported_at"`

	// Result is the analysis aggregate.
	Result *model.AnalysisResult `json:"result"`
}

// FullJSONWriter outputs aggregates wrapped with metadata.
type FullJSONWriter struct {
	*JSONWriter

	version string
	now     func() time.Time
}

// NewFullJSONWriter creates a writer for aggregates with metadata.
func NewFullJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
		now:        time.Now,
	}
}

// Write outputs the aggregate wrapped with metadata.
func (w *FullJSONWriter) Write(result *model.AnalysisResult) (int, error) {
	return w.writeJSON(&JSONReport{
		Version:    w.version,
		Stage:      result.CompletedStage().String(),
		ExportedAt: w.now().UTC(),
		Result:     result,
	})
}
