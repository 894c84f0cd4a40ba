package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/ytanalyzer/internal/model"
)

// TestSimpleWriter tests the terminal summary writer.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes header and next step", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		r := createTestResult()
		r.ViewCount = 1500000

		if _, err := NewSimpleWriter(&buf).Write(r); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"Test Video",
			"ID:        abc123",
			"Views:     1,500,000",
			"Stage:     initial",
			"Next:      ytanalyzer critical abc123",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
		if strings.Contains(output, "first point") {
			t.Error("expected key points only in verbose mode")
		}
	})

	t.Run("blocks next step for unsuitable topic", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		r := createTestResult()
		r.SuitabilityAnalysis = &model.SuitabilityAnalysis{
			Judgment:         model.JudgmentUnsuitable,
			UnsuitableReason: "no angle",
		}

		if _, err := NewSimpleWriter(&buf).Write(r); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		if !strings.Contains(output, "Reason:    no angle") {
			t.Error("expected unsuitable reason")
		}
		if strings.Contains(output, "ytanalyzer critical") {
			t.Error("expected no critical step suggestion")
		}
	})

	t.Run("verbose adds key points", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithVerbose(true)).Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "  * first point") {
			t.Error("expected key points in verbose mode")
		}
	})

	t.Run("handles nil result", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if buf.Len() == 0 {
			t.Error("expected some output")
		}
	})
}

// TestJSONWriter tests the JSON writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes compact JSON", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded model.AnalysisResult
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded.ID != "abc123" {
			t.Errorf("expected id abc123, got %q", decoded.ID)
		}
		if strings.Count(buf.String(), "\n") != 1 {
			t.Error("expected compact output with a trailing newline")
		}
	})

	t.Run("pretty print", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"id\": \"abc123\"") {
			t.Error("expected indented output")
		}
	})

	t.Run("custom indent", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithIndent(">", "\t")).Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n>\t\"id\"") {
			t.Error("expected prefix and tab indentation")
		}
	})
}

// TestFullJSONWriter tests the metadata wrapper.
func TestFullJSONWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewFullJSONWriter(&buf, "1.2.3")
	w.now = func() time.Time { return time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC) }

	r := createTestResult()
	r.CriticalAnalysis = &model.CriticalAnalysis{}
	if _, err := w.Write(r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded JSONReport
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Version != "1.2.3" {
		t.Errorf("expected version 1.2.3, got %q", decoded.Version)
	}
	if decoded.Stage != "critical" {
		t.Errorf("expected stage critical, got %q", decoded.Stage)
	}
	if decoded.Result == nil || decoded.Result.ID != "abc123" {
		t.Error("expected wrapped result")
	}
}

// TestMarkdownWriter tests the Markdown writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	f := newTestFormatter()
	n, err := NewMarkdownWriter(&buf, f).Write(createTestResult())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != buf.Len() {
		t.Errorf("expected %d bytes reported, got %d", buf.Len(), n)
	}
	if buf.String() != f.Format(createTestResult()).Body {
		t.Error("expected writer output to match the formatted body")
	}
}

// TestHTMLWriter tests the HTML preview writer.
func TestHTMLWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := createTestResult()
	r.VideoTitle = "<script>x</script>"
	if _, err := NewHTMLWriter(&buf, newTestFormatter()).Write(r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	for _, want := range []string{
		"<!DOCTYPE html>",
		"<title>&lt;script&gt;x&lt;/script&gt;</title>",
		"<h2>📺 영상 정보</h2>",
		"<blockquote>",
		"<ol>",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q", want)
		}
	}
	if strings.Contains(output, "<script>x</script>") {
		t.Error("expected raw HTML to be escaped")
	}
}

// errorWriter always fails.
type errorWriter struct{}

func (errorWriter) Write(_ *model.AnalysisResult) (int, error) {
	return 0, errors.New("write failed")
}

// TestMultiWriter tests writing to several writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var buf1, buf2 bytes.Buffer
		mw := NewMultiWriter(NewSimpleWriter(&buf1), NewJSONWriter(&buf2))

		n, err := mw.Write(createTestResult())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf1.Len()+buf2.Len() {
			t.Errorf("expected total %d, got %d", buf1.Len()+buf2.Len(), n)
		}
		if buf1.Len() == 0 || buf2.Len() == 0 {
			t.Error("expected output in both writers")
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		mw := NewMultiWriter(errorWriter{}, NewSimpleWriter(&buf))
		if _, err := mw.Write(createTestResult()); err == nil {
			t.Error("expected error")
		}
		if buf.Len() != 0 {
			t.Error("expected later writers to be skipped")
		}
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()

		n, err := NewMultiWriter().Write(createTestResult())
		if err != nil || n != 0 {
			t.Errorf("expected 0, nil; got %d, %v", n, err)
		}
	})
}
