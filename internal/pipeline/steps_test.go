package pipeline

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/nao1215/ytanalyzer/internal/api"
	"github.com/nao1215/ytanalyzer/internal/database"
	"github.com/nao1215/ytanalyzer/internal/model"
	"github.com/nao1215/ytanalyzer/internal/report"
)

// fakeBackend serves canned aggregates and counts calls per operation.
type fakeBackend struct {
	mu      sync.Mutex
	results map[string]*model.AnalysisResult
	calls   map[string]int
	// failures maps an operation name to the backend error it returns.
	failures map[string]string
	// perspectives records the perspective of each critical request.
	perspectives []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		results:  make(map[string]*model.AnalysisResult),
		calls:    make(map[string]int),
		failures: make(map[string]string),
	}
}

func (f *fakeBackend) record(op string) *api.ResultResponse {
	f.calls[op]++
	if msg, ok := f.failures[op]; ok {
		return &api.ResultResponse{Success: false, Error: msg, StatusCode: 500}
	}
	return nil
}

func (f *fakeBackend) callCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeBackend) lookup(id string) *api.ResultResponse {
	r, ok := f.results[id]
	if !ok {
		return &api.ResultResponse{Success: false, Error: "분석 결과를 찾을 수 없습니다.", StatusCode: 404}
	}
	return &api.ResultResponse{Success: true, Data: r, StatusCode: 200}
}

func (f *fakeBackend) Analyze(_ context.Context, videoURL string) *api.ResultResponse {
	f.mu.Lock()
	defer f.mu.Unlock()
	if resp := f.record("analyze"); resp != nil {
		return resp
	}
	u, err := url.Parse(videoURL)
	if err != nil {
		return &api.ResultResponse{Success: false, Error: "invalid url", StatusCode: 400}
	}
	return f.lookup(u.Query().Get("v"))
}

func (f *fakeBackend) Result(_ context.Context, id string) *api.ResultResponse {
	f.mu.Lock()
	defer f.mu.Unlock()
	if resp := f.record("result"); resp != nil {
		return resp
	}
	return f.lookup(id)
}

// AnalyzeCritical answers with only the stage-2 section, so callers must
// merge it with what they already hold.
func (f *fakeBackend) AnalyzeCritical(_ context.Context, id, perspective string) *api.ResultResponse {
	f.mu.Lock()
	defer f.mu.Unlock()
	if resp := f.record("critical"); resp != nil {
		return resp
	}
	f.perspectives = append(f.perspectives, perspective)
	return &api.ResultResponse{
		Success:    true,
		StatusCode: 200,
		Data: &model.AnalysisResult{
			ID: id,
			CriticalAnalysis: &model.CriticalAnalysis{
				PerspectiveName: "자동매매",
				HiddenPremises:  []model.HiddenPremise{{Premise: "누구나 따라 할 수 있다"}},
			},
		},
	}
}

// AnalyzeAdditional answers with only the stage-3 section.
func (f *fakeBackend) AnalyzeAdditional(_ context.Context, id string) *api.ResultResponse {
	f.mu.Lock()
	defer f.mu.Unlock()
	if resp := f.record("additional"); resp != nil {
		return resp
	}
	return &api.ResultResponse{
		Success:    true,
		StatusCode: 200,
		Data: &model.AnalysisResult{
			ID: id,
			AdditionalAnalysis: &model.AdditionalAnalysis{
				TitleSuggestions: []model.TitleSuggestion{{Title: "진짜 수익률은?"}},
			},
		},
	}
}

func newTestFormatter() *report.Formatter {
	return report.NewFormatter(
		report.WithClock(func() time.Time { return time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC) }),
		report.WithLocation(time.UTC),
	)
}

// suitableResult returns a stage-1 aggregate judged suitable.
func suitableResult(id string) *model.AnalysisResult {
	return &model.AnalysisResult{
		ID:         id,
		VideoTitle: "Test Video",
		Summary:    "A short summary.",
		KeyMessage: "The key message.",
		SuitabilityAnalysis: &model.SuitabilityAnalysis{
			Judgment:         model.JudgmentSuitable,
			SuitabilityScore: 4,
		},
	}
}

// unsuitableResult returns a stage-1 aggregate judged unsuitable.
func unsuitableResult(id, reason string) *model.AnalysisResult {
	r := suitableResult(id)
	r.SuitabilityAnalysis = &model.SuitabilityAnalysis{
		Judgment:         model.JudgmentUnsuitable,
		UnsuitableReason: reason,
	}
	return r
}

func setupTestStore(t *testing.T) *database.Store {
	t.Helper()

	store, err := database.Open(t.TempDir(), database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})
	return store
}

func TestAnalyzeStep(t *testing.T) {
	t.Parallel()

	t.Run("requires a url", func(t *testing.T) {
		t.Parallel()

		backend := newFakeBackend()
		err := NewAnalyzeStep(backend).Do(context.Background(), &Job{})

		if !errors.Is(err, ErrNoURL) {
			t.Errorf("expected ErrNoURL, got %v", err)
		}
		if backend.callCount("analyze") != 0 {
			t.Error("backend should not be called without a url")
		}
	})

	t.Run("stores the aggregate and id", func(t *testing.T) {
		t.Parallel()

		backend := newFakeBackend()
		backend.results["abc123"] = suitableResult("abc123")
		store := setupTestStore(t)

		job := NewURLJob("https://www.youtube.com/watch?v=abc123")
		step := NewAnalyzeStep(backend, WithResultCache(store))
		if err := step.Do(context.Background(), job); err != nil {
			t.Fatalf("Do() error = %v", err)
		}

		if job.AnalysisID != "abc123" {
			t.Errorf("AnalysisID = %q", job.AnalysisID)
		}
		if job.Phase != PhaseIdle {
			t.Errorf("Phase = %v, want idle", job.Phase)
		}
		cached, err := store.GetResult(context.Background(), "abc123")
		if err != nil {
			t.Fatalf("GetResult() error = %v", err)
		}
		if cached == nil || cached.Summary != "A short summary." {
			t.Errorf("cached result = %+v", cached)
		}
	})

	t.Run("failure leaves the aggregate unchanged", func(t *testing.T) {
		t.Parallel()

		backend := newFakeBackend()
		backend.failures["analyze"] = "영상 정보를 가져올 수 없습니다."

		prev := suitableResult("old")
		job := &Job{VideoURL: "https://www.youtube.com/watch?v=abc123", Result: prev}
		err := NewAnalyzeStep(backend).Do(context.Background(), job)

		var apiErr *api.Error
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected *api.Error, got %v", err)
		}
		if apiErr.Message != "영상 정보를 가져올 수 없습니다." {
			t.Errorf("Message = %q", apiErr.Message)
		}
		if job.Result != prev {
			t.Error("aggregate should not change on failure")
		}
		if job.Phase != PhaseFailed {
			t.Errorf("Phase = %v, want failed", job.Phase)
		}
	})

	t.Run("success without data is an error", func(t *testing.T) {
		t.Parallel()

		backend := newFakeBackend()
		backend.results["abc123"] = nil

		job := NewURLJob("https://www.youtube.com/watch?v=abc123")
		err := NewAnalyzeStep(backend).Do(context.Background(), job)

		if !errors.Is(err, ErrEmptyResult) {
			t.Errorf("expected ErrEmptyResult, got %v", err)
		}
		if job.Result != nil {
			t.Error("aggregate should stay nil")
		}
	})
}

func TestFetchStep(t *testing.T) {
	t.Parallel()

	t.Run("requires an id", func(t *testing.T) {
		t.Parallel()

		err := NewFetchStep(newFakeBackend(), nil).Do(context.Background(), &Job{})
		if !errors.Is(err, ErrNoAnalysis) {
			t.Errorf("expected ErrNoAnalysis, got %v", err)
		}
	})

	t.Run("loads from the backend", func(t *testing.T) {
		t.Parallel()

		backend := newFakeBackend()
		backend.results["abc123"] = suitableResult("abc123")

		job := NewJob("abc123")
		if err := NewFetchStep(backend, nil).Do(context.Background(), job); err != nil {
			t.Fatalf("Do() error = %v", err)
		}
		if job.Result == nil || job.Result.VideoTitle != "Test Video" {
			t.Errorf("Result = %+v", job.Result)
		}
	})

	t.Run("offline reads only the cache", func(t *testing.T) {
		t.Parallel()

		backend := newFakeBackend()
		store := setupTestStore(t)
		if err := store.SaveResult(context.Background(), suitableResult("abc123")); err != nil {
			t.Fatalf("SaveResult() error = %v", err)
		}

		job := NewJob("abc123")
		step := NewFetchStep(backend, []StepOption{WithResultCache(store)}, WithOffline(true))
		if err := step.Do(context.Background(), job); err != nil {
			t.Fatalf("Do() error = %v", err)
		}
		if job.Result == nil || job.Result.ID != "abc123" {
			t.Errorf("Result = %+v", job.Result)
		}
		if backend.callCount("result") != 0 {
			t.Error("offline fetch must not call the backend")
		}

		err := step.Do(context.Background(), NewJob("missing"))
		if !errors.Is(err, ErrNoAnalysis) {
			t.Errorf("expected ErrNoAnalysis for uncached id, got %v", err)
		}
	})
}

func TestCriticalStep(t *testing.T) {
	t.Parallel()

	t.Run("unsuitable video makes no network call", func(t *testing.T) {
		t.Parallel()

		backend := newFakeBackend()
		prev := unsuitableResult("abc123", "근거 자료 부족")
		job := &Job{AnalysisID: "abc123", Result: prev}

		err := NewCriticalStep(backend, "").Do(context.Background(), job)

		if !errors.Is(err, ErrUnsuitable) {
			t.Fatalf("expected ErrUnsuitable, got %v", err)
		}
		if got, want := err.Error(), "이 영상은 비판적 분석에 적합하지 않습니다. 사유: 근거 자료 부족"; got != want {
			t.Errorf("Error() = %q, want %q", got, want)
		}
		if backend.callCount("critical") != 0 {
			t.Error("gate must block before the request")
		}
		if job.Result != prev {
			t.Error("aggregate should not change")
		}
	})

	t.Run("uses the default perspective and keeps stage 1", func(t *testing.T) {
		t.Parallel()

		backend := newFakeBackend()
		job := &Job{AnalysisID: "abc123", Result: suitableResult("abc123")}

		if err := NewCriticalStep(backend, "").Do(context.Background(), job); err != nil {
			t.Fatalf("Do() error = %v", err)
		}

		if len(backend.perspectives) != 1 || backend.perspectives[0] != model.DefaultPerspective {
			t.Errorf("perspectives = %v", backend.perspectives)
		}
		if job.Result.CriticalAnalysis == nil {
			t.Fatal("expected critical section")
		}
		if job.Result.Summary != "A short summary." {
			t.Error("stage-1 fields must survive the merge")
		}
		if job.Result.Perspective != model.DefaultPerspective {
			t.Errorf("Perspective = %q", job.Result.Perspective)
		}
	})

	t.Run("job perspective wins over step default", func(t *testing.T) {
		t.Parallel()

		backend := newFakeBackend()
		job := &Job{AnalysisID: "abc123", Result: suitableResult("abc123"), Perspective: "economics"}

		if err := NewCriticalStep(backend, "psychology").Do(context.Background(), job); err != nil {
			t.Fatalf("Do() error = %v", err)
		}
		if backend.perspectives[0] != "economics" {
			t.Errorf("perspective = %q, want economics", backend.perspectives[0])
		}
	})

	t.Run("rerun with another perspective is allowed", func(t *testing.T) {
		t.Parallel()

		backend := newFakeBackend()
		r := suitableResult("abc123")
		r.CriticalAnalysis = &model.CriticalAnalysis{PerspectiveName: "old"}
		job := &Job{AnalysisID: "abc123", Result: r}

		if err := NewCriticalStep(backend, "psychology").Do(context.Background(), job); err != nil {
			t.Fatalf("Do() error = %v", err)
		}
		if job.Result.CriticalAnalysis.PerspectiveName != "자동매매" {
			t.Error("expected the new critical section to replace the old one")
		}
	})
}

func TestAdditionalStep(t *testing.T) {
	t.Parallel()

	t.Run("requires the critical stage", func(t *testing.T) {
		t.Parallel()

		backend := newFakeBackend()
		job := &Job{AnalysisID: "abc123", Result: suitableResult("abc123")}

		err := NewAdditionalStep(backend).Do(context.Background(), job)

		if !errors.Is(err, ErrCriticalRequired) {
			t.Fatalf("expected ErrCriticalRequired, got %v", err)
		}
		if err.Error() != MsgCriticalRequired {
			t.Errorf("Error() = %q", err.Error())
		}
		if backend.callCount("additional") != 0 {
			t.Error("gate must block before the request")
		}
	})

	t.Run("keeps earlier stages", func(t *testing.T) {
		t.Parallel()

		backend := newFakeBackend()
		r := suitableResult("abc123")
		r.CriticalAnalysis = &model.CriticalAnalysis{PerspectiveName: "자동매매"}
		job := &Job{AnalysisID: "abc123", Result: r}

		if err := NewAdditionalStep(backend).Do(context.Background(), job); err != nil {
			t.Fatalf("Do() error = %v", err)
		}
		if job.Result.CompletedStage() != model.StageAdditional {
			t.Errorf("stage = %v", job.Result.CompletedStage())
		}
		if job.Result.CriticalAnalysis == nil || job.Result.Summary == "" {
			t.Error("earlier stages must survive the merge")
		}
	})
}

func TestExportStep(t *testing.T) {
	t.Parallel()

	t.Run("requires an aggregate", func(t *testing.T) {
		t.Parallel()

		err := NewExportStep(nil, t.TempDir()).Do(context.Background(), NewJob("abc123"))
		if !errors.Is(err, ErrNoAnalysis) {
			t.Errorf("expected ErrNoAnalysis, got %v", err)
		}
	})

	t.Run("writes the document", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		job := &Job{AnalysisID: "abc123", Result: suitableResult("abc123")}

		if err := NewExportStep(newTestFormatter(), dir).Do(context.Background(), job); err != nil {
			t.Fatalf("Do() error = %v", err)
		}

		want := filepath.Join(dir, "Test Video_2025-01-02_분석결과.md")
		if job.ExportPath != want {
			t.Errorf("ExportPath = %q, want %q", job.ExportPath, want)
		}
		data, err := os.ReadFile(job.ExportPath)
		if err != nil {
			t.Fatalf("failed to read export: %v", err)
		}
		if len(data) == 0 {
			t.Error("exported document is empty")
		}
	})

	t.Run("skips unchanged documents", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		store := setupTestStore(t)
		step := NewExportStep(newTestFormatter(), dir, WithExportLog(store))

		first := &Job{AnalysisID: "abc123", Result: suitableResult("abc123")}
		if err := step.Do(context.Background(), first); err != nil {
			t.Fatalf("first Do() error = %v", err)
		}

		second := &Job{AnalysisID: "abc123", Result: suitableResult("abc123")}
		if err := step.Do(context.Background(), second); err != nil {
			t.Fatalf("second Do() error = %v", err)
		}
		if !second.ExportSkipped {
			t.Error("expected the unchanged document to be skipped")
		}
		if second.ExportPath != first.ExportPath {
			t.Errorf("ExportPath = %q, want %q", second.ExportPath, first.ExportPath)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("ReadDir() error = %v", err)
		}
		if len(entries) != 1 {
			t.Errorf("expected 1 file, got %d", len(entries))
		}
	})

	t.Run("unchanged document is written to a new directory", func(t *testing.T) {
		t.Parallel()

		dirA := t.TempDir()
		dirB := t.TempDir()
		store := setupTestStore(t)
		formatter := newTestFormatter()

		first := &Job{Result: suitableResult("abc123")}
		if err := NewExportStep(formatter, dirA, WithExportLog(store)).Do(context.Background(), first); err != nil {
			t.Fatalf("export into dirA error = %v", err)
		}

		second := &Job{Result: suitableResult("abc123")}
		if err := NewExportStep(formatter, dirB, WithExportLog(store)).Do(context.Background(), second); err != nil {
			t.Fatalf("export into dirB error = %v", err)
		}
		if second.ExportSkipped {
			t.Error("export into a different directory must not be skipped")
		}
		if filepath.Dir(second.ExportPath) != dirB {
			t.Errorf("ExportPath = %q, want a file in %q", second.ExportPath, dirB)
		}
		if _, err := os.Stat(second.ExportPath); err != nil {
			t.Errorf("document missing in dirB: %v", err)
		}

		// dirA still holds the same document.
		third := &Job{Result: suitableResult("abc123")}
		if err := NewExportStep(formatter, dirA, WithExportLog(store)).Do(context.Background(), third); err != nil {
			t.Fatalf("second export into dirA error = %v", err)
		}
		if !third.ExportSkipped || third.ExportPath != first.ExportPath {
			t.Errorf("expected dirA export to be kept, got skipped=%v path=%q", third.ExportSkipped, third.ExportPath)
		}
	})

	t.Run("force writes a second copy", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		store := setupTestStore(t)
		formatter := newTestFormatter()

		if err := NewExportStep(formatter, dir, WithExportLog(store)).
			Do(context.Background(), &Job{Result: suitableResult("abc123")}); err != nil {
			t.Fatalf("first Do() error = %v", err)
		}

		job := &Job{Result: suitableResult("abc123")}
		if err := NewExportStep(formatter, dir, WithExportLog(store), WithForce(true)).
			Do(context.Background(), job); err != nil {
			t.Fatalf("forced Do() error = %v", err)
		}
		if job.ExportSkipped {
			t.Error("forced export must not be skipped")
		}
		if filepath.Base(job.ExportPath) != "Test Video_2025-01-02_분석결과 (2).md" {
			t.Errorf("ExportPath = %q", job.ExportPath)
		}
	})

	t.Run("changed aggregate is written again", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		store := setupTestStore(t)
		step := NewExportStep(newTestFormatter(), dir, WithExportLog(store))

		if err := step.Do(context.Background(), &Job{Result: suitableResult("abc123")}); err != nil {
			t.Fatalf("first Do() error = %v", err)
		}

		r := suitableResult("abc123")
		r.CriticalAnalysis = &model.CriticalAnalysis{PerspectiveName: "자동매매"}
		job := &Job{Result: r}
		if err := step.Do(context.Background(), job); err != nil {
			t.Fatalf("second Do() error = %v", err)
		}
		if job.ExportSkipped {
			t.Error("changed document must be written")
		}

		last, err := store.LastExport(context.Background(), "abc123")
		if err != nil {
			t.Fatalf("LastExport() error = %v", err)
		}
		if last == nil || last.Stage != "critical" || last.Path != job.ExportPath {
			t.Errorf("LastExport() = %+v", last)
		}
	})
}
