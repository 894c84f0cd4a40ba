package main

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/nao1215/ytanalyzer/internal/api"
	"github.com/nao1215/ytanalyzer/internal/model"
	"github.com/nao1215/ytanalyzer/internal/pipeline"
)

func TestNewAnalyzeCmd(t *testing.T) {
	t.Parallel()

	cmd := NewAnalyzeCmd()

	for _, name := range []string{"full", "perspective", "export", "output", "json"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("expected %s flag", name)
		}
	}
	if err := cmd.Args(cmd, nil); err == nil {
		t.Error("expected error without a video URL")
	}
}

func TestRunAnalyzeCmd(t *testing.T) {
	t.Parallel()

	t.Run("prints the initial analysis", func(t *testing.T) {
		t.Parallel()
		env := newCLIEnv(t)

		out, _, err := env.run(t, "analyze", "https://www.youtube.com/watch?v=abc123")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{"Test Video", "Stage:     initial", "Next:      ytanalyzer critical abc123"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, out)
			}
		}
		if strings.Contains(out, "(cached result)") {
			t.Error("first analysis should not be reported as cached")
		}
		if got := env.backend.count("critical"); got != 0 {
			t.Errorf("expected no critical request, got %d", got)
		}
	})

	t.Run("reports a cached result", func(t *testing.T) {
		t.Parallel()
		env := newCLIEnv(t)
		videoURL := "https://www.youtube.com/watch?v=abc123"

		if _, _, err := env.run(t, "analyze", videoURL); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out, _, err := env.run(t, "analyze", videoURL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "(cached result)") {
			t.Errorf("expected cached marker, got:\n%s", out)
		}
	})

	t.Run("full runs every stage and exports", func(t *testing.T) {
		t.Parallel()
		env := newCLIEnv(t)

		out, _, err := env.run(t, "analyze", "--full", "-p", "value_investing", "--export",
			"https://www.youtube.com/watch?v=abc123")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "Stage:     additional") {
			t.Errorf("expected additional stage, got:\n%s", out)
		}
		if !strings.Contains(out, "Saved ") {
			t.Errorf("expected export notice, got:\n%s", out)
		}
		if got := env.backend.lens(); got != "value_investing" {
			t.Errorf("expected perspective value_investing, got %q", got)
		}
		if files := env.exportedFiles(t); len(files) != 1 {
			t.Errorf("expected 1 exported document, got %v", files)
		}
	})

	t.Run("full uses the backend default perspective", func(t *testing.T) {
		t.Parallel()
		env := newCLIEnv(t)

		if _, _, err := env.run(t, "analyze", "--full", "https://www.youtube.com/watch?v=abc123"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := env.backend.lens(); got != model.DefaultPerspective {
			t.Errorf("expected %q, got %q", model.DefaultPerspective, got)
		}
	})

	t.Run("full stops at the suitability gate", func(t *testing.T) {
		t.Parallel()
		env := newCLIEnv(t)
		env.backend.put(unsuitableResult("bad1", "근거 자료 부족"))

		out, _, err := env.run(t, "analyze", "--full", "https://www.youtube.com/watch?v=bad1")
		var gateErr *pipeline.GateError
		if !errors.As(err, &gateErr) {
			t.Fatalf("expected gate error, got %v", err)
		}
		if !strings.Contains(err.Error(), "근거 자료 부족") {
			t.Errorf("expected reason in message, got %q", err.Error())
		}
		if !strings.Contains(out, "Test Video") {
			t.Errorf("expected the initial analysis to be printed, got:\n%s", out)
		}
		if got := env.backend.count("critical"); got != 0 {
			t.Errorf("expected no critical request, got %d", got)
		}
	})

	t.Run("returns the backend message for a rejected URL", func(t *testing.T) {
		t.Parallel()
		env := newCLIEnv(t)

		_, _, err := env.run(t, "analyze", "https://example.com/not-a-video")
		var apiErr *api.Error
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected api error, got %v", err)
		}
		if !strings.Contains(apiErr.Message, "유효하지 않은") {
			t.Errorf("unexpected message %q", apiErr.Message)
		}
	})

	t.Run("prints JSON", func(t *testing.T) {
		t.Parallel()
		env := newCLIEnv(t)

		out, _, err := env.run(t, "analyze", "--json", "https://www.youtube.com/watch?v=abc123")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var got model.AnalysisResult
		if err := json.Unmarshal([]byte(out), &got); err != nil {
			t.Fatalf("output is not JSON: %v\n%s", err, out)
		}
		if got.ID != "abc123" {
			t.Errorf("expected id abc123, got %q", got.ID)
		}
	})
}
