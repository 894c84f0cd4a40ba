package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"sync"
	"testing"

	"github.com/nao1215/ytanalyzer/internal/api"
	"github.com/nao1215/ytanalyzer/internal/model"
)

// stubBackend is an in-memory analysis backend.
type stubBackend struct {
	mu           sync.Mutex
	results      map[string]*model.AnalysisResult
	calls        map[string]int
	perspectives []model.Perspective
	lastLens     string
}

func newStubBackend(t *testing.T) (*stubBackend, *httptest.Server) {
	t.Helper()

	b := &stubBackend{
		results: make(map[string]*model.AnalysisResult),
		calls:   make(map[string]int),
		perspectives: []model.Perspective{
			{ID: "auto_trading", Name: "자동매매", Description: "시스템 트레이딩 관점"},
			{ID: "value_investing", Name: "가치투자", Description: "장기 가치 관점"},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/analyze", b.handleAnalyze)
	mux.HandleFunc("GET /api/result/{id}", b.handleResult)
	mux.HandleFunc("POST /api/analyze/critical", b.handleCritical)
	mux.HandleFunc("POST /api/analyze/additional", b.handleAdditional)
	mux.HandleFunc("GET /api/history", b.handleHistory)
	mux.HandleFunc("DELETE /api/history/{id}", b.handleDelete)
	mux.HandleFunc("GET /api/perspectives", b.handlePerspectives)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return b, srv
}

// put stores a result directly.
func (b *stubBackend) put(r *model.AnalysisResult) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.results[r.ID] = r
}

// count returns how many times op was called.
func (b *stubBackend) count(op string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[op]
}

func (b *stubBackend) has(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.results[id]
	return ok
}

func (b *stubBackend) lens() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastLens
}

func (b *stubBackend) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls["analyze"]++

	u, err := url.Parse(req.URL)
	id := ""
	if err == nil {
		id = u.Query().Get("v")
	}
	if id == "" {
		writeEnvelope(w, http.StatusBadRequest, api.ResultResponse{Error: "유효하지 않은 YouTube URL입니다."})
		return
	}

	result, cached := b.results[id]
	if !cached {
		result = suitableResult(id)
		result.VideoURL = req.URL
		b.results[id] = result
	}
	writeEnvelope(w, http.StatusOK, api.ResultResponse{Success: true, Data: result, Cached: cached})
}

func (b *stubBackend) handleResult(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls["result"]++

	result, ok := b.results[r.PathValue("id")]
	if !ok {
		writeEnvelope(w, http.StatusNotFound, api.ResultResponse{Error: "분석 결과를 찾을 수 없습니다."})
		return
	}
	writeEnvelope(w, http.StatusOK, api.ResultResponse{Success: true, Data: result})
}

func (b *stubBackend) handleCritical(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AnalysisID  string `json:"analysis_id"`
		Perspective string `json:"perspective"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls["critical"]++
	b.lastLens = req.Perspective

	result, ok := b.results[req.AnalysisID]
	if !ok {
		writeEnvelope(w, http.StatusNotFound, api.ResultResponse{Error: "분석 결과를 찾을 수 없습니다."})
		return
	}
	next := *result
	next.Perspective = req.Perspective
	next.CriticalAnalysis = &model.CriticalAnalysis{
		Perspective:     req.Perspective,
		PerspectiveName: "관점 " + req.Perspective,
		HiddenPremises:  []model.HiddenPremise{{Premise: "과거 수익률이 반복된다"}},
	}
	b.results[req.AnalysisID] = &next
	writeEnvelope(w, http.StatusOK, api.ResultResponse{Success: true, Data: &next})
}

func (b *stubBackend) handleAdditional(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AnalysisID string `json:"analysis_id"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls["additional"]++

	result, ok := b.results[req.AnalysisID]
	if !ok {
		writeEnvelope(w, http.StatusNotFound, api.ResultResponse{Error: "분석 결과를 찾을 수 없습니다."})
		return
	}
	next := *result
	next.AdditionalAnalysis = &model.AdditionalAnalysis{
		TitleSuggestions: []model.TitleSuggestion{{Pattern: "질문형", Target: "초보", Title: "정말 그럴까?", Basis: "반론"}},
	}
	b.results[req.AnalysisID] = &next
	writeEnvelope(w, http.StatusOK, api.ResultResponse{Success: true, Data: &next})
}

func (b *stubBackend) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls["history"]++

	ids := make([]string, 0, len(b.results))
	for id := range b.results {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	items := []model.HistoryItem{}
	for i := offset; i < len(ids) && i < offset+limit; i++ {
		res := b.results[ids[i]]
		items = append(items, model.HistoryItem{
			ID:          res.ID,
			VideoID:     res.VideoID,
			VideoTitle:  res.VideoTitle,
			VideoURL:    res.VideoURL,
			ChannelName: res.ChannelName,
			CreatedAt:   "2025-01-02T03:04:05Z",
		})
	}
	writeEnvelope(w, http.StatusOK, api.HistoryResponse{Success: true, Data: items, Total: len(ids)})
}

func (b *stubBackend) handleDelete(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls["delete"]++

	id := r.PathValue("id")
	if _, ok := b.results[id]; !ok {
		writeEnvelope(w, http.StatusNotFound, api.DeleteResponse{Error: "분석 결과를 찾을 수 없습니다."})
		return
	}
	delete(b.results, id)
	writeEnvelope(w, http.StatusOK, api.DeleteResponse{Success: true, Message: "삭제되었습니다."})
}

func (b *stubBackend) handlePerspectives(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls["perspectives"]++
	writeEnvelope(w, http.StatusOK, api.PerspectivesResponse{Success: true, Data: b.perspectives})
}

func writeEnvelope(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// suitableResult returns an initial-stage aggregate judged suitable.
func suitableResult(id string) *model.AnalysisResult {
	return &model.AnalysisResult{
		ID:              id,
		VideoID:         id,
		VideoTitle:      "Test Video",
		VideoURL:        "https://www.youtube.com/watch?v=" + id,
		ChannelName:     "Test Channel",
		ViewCount:       12345,
		SubscriberCount: 1000,
		Summary:         "요약",
		KeyMessage:      "핵심 메시지",
		KeyPoints:       []string{"첫째", "둘째"},
		SuitabilityAnalysis: &model.SuitabilityAnalysis{
			SuitabilityScore: 4,
			Judgment:         model.JudgmentSuitable,
		},
	}
}

// unsuitableResult returns an initial-stage aggregate judged unsuitable.
func unsuitableResult(id, reason string) *model.AnalysisResult {
	r := suitableResult(id)
	r.SuitabilityAnalysis.Judgment = model.JudgmentUnsuitable
	r.SuitabilityAnalysis.UnsuitableReason = reason
	return r
}

// cliEnv is an isolated environment for running the CLI.
type cliEnv struct {
	backend *stubBackend
	url     string
	dbDir   string
	outDir  string
	cfgPath string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()

	backend, srv := newStubBackend(t)
	dir := t.TempDir()
	env := &cliEnv{
		backend: backend,
		url:     srv.URL,
		dbDir:   filepath.Join(dir, "data"),
		outDir:  filepath.Join(dir, "out"),
		cfgPath: filepath.Join(dir, "config.yaml"),
	}

	cfg := "output_dir: " + strconv.Quote(env.outDir) + "\ntimeout: 10s\n"
	if err := os.WriteFile(env.cfgPath, []byte(cfg), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return env
}

// run executes the CLI with args and returns stdout, stderr and the error.
func (e *cliEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{
		"--config", e.cfgPath,
		"--api-url", e.url,
		"--db-dir", e.dbDir,
	}, args...))

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// appendConfig adds YAML lines to the environment's configuration file.
func (e *cliEnv) appendConfig(t *testing.T, yaml string) {
	t.Helper()

	f, err := os.OpenFile(e.cfgPath, os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		t.Fatalf("failed to open config: %v", err)
	}
	defer f.Close()
	if _, err := f.WriteString(yaml + "\n"); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
}

// exportedFiles returns the documents in the output directory.
func (e *cliEnv) exportedFiles(t *testing.T) []string {
	t.Helper()

	matches, err := filepath.Glob(filepath.Join(e.outDir, "*_분석결과*.md"))
	if err != nil {
		t.Fatalf("glob failed: %v", err)
	}
	return matches
}
