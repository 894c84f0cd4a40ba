package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nao1215/ytanalyzer/internal/api"
	"github.com/nao1215/ytanalyzer/internal/database"
	"github.com/nao1215/ytanalyzer/internal/model"
	"github.com/nao1215/ytanalyzer/internal/report"
)

// Backend is the subset of the analysis API the steps use.
// *api.Client implements it.
type Backend interface {
	Analyze(ctx context.Context, videoURL string) *api.ResultResponse
	Result(ctx context.Context, id string) *api.ResultResponse
	AnalyzeCritical(ctx context.Context, id, perspective string) *api.ResultResponse
	AnalyzeAdditional(ctx context.Context, id string) *api.ResultResponse
}

// ResultCache stores aggregates locally. *database.Store implements it.
type ResultCache interface {
	SaveResult(ctx context.Context, result *model.AnalysisResult) error
	GetResult(ctx context.Context, analysisID string) (*model.AnalysisResult, error)
}

// ExportLog records exported documents. *database.Store implements it.
type ExportLog interface {
	ListExports(ctx context.Context, analysisID string) ([]database.Export, error)
	RecordExport(ctx context.Context, e *database.Export) (int64, error)
}

// stepBase holds what every backend step shares.
type stepBase struct {
	logger *slog.Logger
	cache  ResultCache
}

// StepOption configures a backend step.
type StepOption func(*stepBase)

// WithStepLogger sets a custom logger for a step.
func WithStepLogger(logger *slog.Logger) StepOption {
	return func(b *stepBase) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithResultCache makes a step store every aggregate it receives.
func WithResultCache(cache ResultCache) StepOption {
	return func(b *stepBase) {
		b.cache = cache
	}
}

func newStepBase(opts []StepOption) stepBase {
	b := stepBase{logger: slog.Default()}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// apply performs one backend call and merges its aggregate into the job.
// On failure the job's aggregate is left unchanged.
func (b *stepBase) apply(ctx context.Context, job *Job, call func() *api.ResultResponse) error {
	job.Phase = PhaseRequesting
	resp := call()
	if err := resp.Err(); err != nil {
		job.Phase = PhaseFailed
		return err
	}
	if resp.Data == nil {
		job.Phase = PhaseFailed
		return ErrEmptyResult
	}

	job.Result = model.Extend(job.Result, resp.Data)
	if job.AnalysisID == "" {
		job.AnalysisID = job.Result.ID
	}
	job.Cached = resp.Cached
	job.Phase = PhaseIdle

	if b.cache != nil {
		if err := b.cache.SaveResult(ctx, job.Result); err != nil {
			// The backend holds the authoritative copy; a cache miss later
			// only costs a round-trip.
			b.logger.Warn("failed to cache result", "analysis_id", job.AnalysisID, "error", err)
		}
	}
	return nil
}

// AnalyzeStep submits a video URL for the initial analysis.
type AnalyzeStep struct {
	stepBase
	backend Backend
}

// NewAnalyzeStep creates the stage-1 step.
func NewAnalyzeStep(backend Backend, opts ...StepOption) *AnalyzeStep {
	return &AnalyzeStep{stepBase: newStepBase(opts), backend: backend}
}

// Name returns the step name.
func (s *AnalyzeStep) Name() string {
	return "analyze"
}

// Do executes the analyze step.
func (s *AnalyzeStep) Do(ctx context.Context, job *Job) error {
	if job.VideoURL == "" {
		return ErrNoURL
	}
	return s.apply(ctx, job, func() *api.ResultResponse {
		return s.backend.Analyze(ctx, job.VideoURL)
	})
}

// FetchStep loads a stored analysis by id, from the backend or, in
// offline mode, from the local cache only.
type FetchStep struct {
	stepBase
	backend Backend
	offline bool
}

// FetchStepOption configures a FetchStep.
type FetchStepOption func(*FetchStep)

// WithOffline reads from the result cache instead of the backend.
// It requires WithResultCache.
func WithOffline(offline bool) FetchStepOption {
	return func(s *FetchStep) {
		s.offline = offline
	}
}

// NewFetchStep creates a fetch step.
func NewFetchStep(backend Backend, stepOpts []StepOption, opts ...FetchStepOption) *FetchStep {
	s := &FetchStep{stepBase: newStepBase(stepOpts), backend: backend}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *FetchStep) Name() string {
	return "fetch"
}

// Do executes the fetch step.
func (s *FetchStep) Do(ctx context.Context, job *Job) error {
	if job.AnalysisID == "" {
		return ErrNoAnalysis
	}

	if s.offline {
		if s.cache == nil {
			return fmt.Errorf("offline fetch: %w", ErrNoAnalysis)
		}
		cached, err := s.cache.GetResult(ctx, job.AnalysisID)
		if err != nil {
			return fmt.Errorf("failed to read cached result: %w", err)
		}
		if cached == nil {
			return fmt.Errorf("analysis %s is not cached: %w", job.AnalysisID, ErrNoAnalysis)
		}
		job.Result = model.Extend(job.Result, cached)
		return nil
	}

	return s.apply(ctx, job, func() *api.ResultResponse {
		return s.backend.Result(ctx, job.AnalysisID)
	})
}

// CriticalStep requests the stage-2 critical analysis.
// The suitability gate runs before any network call.
type CriticalStep struct {
	stepBase
	backend     Backend
	perspective string
}

// NewCriticalStep creates the stage-2 step. perspective is used when the
// job does not name one; empty means model.DefaultPerspective.
func NewCriticalStep(backend Backend, perspective string, opts ...StepOption) *CriticalStep {
	return &CriticalStep{stepBase: newStepBase(opts), backend: backend, perspective: perspective}
}

// Name returns the step name.
func (s *CriticalStep) Name() string {
	return "critical"
}

// Do executes the critical step.
func (s *CriticalStep) Do(ctx context.Context, job *Job) error {
	if err := CheckCritical(job.Result); err != nil {
		return err
	}

	job.Phase = PhaseSelectingPerspective
	perspective := job.Perspective
	if perspective == "" {
		perspective = s.perspective
	}
	if perspective == "" {
		perspective = model.DefaultPerspective
	}
	if !model.IsKnownPerspective(perspective) {
		s.logger.Warn("perspective is not one of the built-in lenses", "perspective", perspective)
	}
	job.Perspective = perspective

	if err := s.apply(ctx, job, func() *api.ResultResponse {
		return s.backend.AnalyzeCritical(ctx, job.Result.ID, perspective)
	}); err != nil {
		return err
	}
	if job.Result.Perspective == "" {
		job.Result.Perspective = perspective
	}
	return nil
}

// AdditionalStep requests the stage-3 additional analysis.
// The stage ordering gate runs before any network call.
type AdditionalStep struct {
	stepBase
	backend Backend
}

// NewAdditionalStep creates the stage-3 step.
func NewAdditionalStep(backend Backend, opts ...StepOption) *AdditionalStep {
	return &AdditionalStep{stepBase: newStepBase(opts), backend: backend}
}

// Name returns the step name.
func (s *AdditionalStep) Name() string {
	return "additional"
}

// Do executes the additional step.
func (s *AdditionalStep) Do(ctx context.Context, job *Job) error {
	if err := CheckAdditional(job.Result); err != nil {
		return err
	}
	return s.apply(ctx, job, func() *api.ResultResponse {
		return s.backend.AnalyzeAdditional(ctx, job.Result.ID)
	})
}

// ExportStep formats the job's aggregate and saves it as Markdown.
type ExportStep struct {
	formatter *report.Formatter
	dir       string
	exports   ExportLog
	force     bool
	logger    *slog.Logger
}

// ExportStepOption configures an ExportStep.
type ExportStepOption func(*ExportStep)

// WithExportLog skips documents identical to the last export and records
// every new one.
func WithExportLog(l ExportLog) ExportStepOption {
	return func(s *ExportStep) {
		s.exports = l
	}
}

// WithForce writes the document even when it is unchanged.
func WithForce(force bool) ExportStepOption {
	return func(s *ExportStep) {
		s.force = force
	}
}

// WithExportLogger sets a custom logger for the export step.
func WithExportLogger(logger *slog.Logger) ExportStepOption {
	return func(s *ExportStep) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewExportStep creates an export step writing into dir.
// A nil formatter means report.NewFormatter with default options.
func NewExportStep(formatter *report.Formatter, dir string, opts ...ExportStepOption) *ExportStep {
	if formatter == nil {
		formatter = report.NewFormatter()
	}
	s := &ExportStep{
		formatter: formatter,
		dir:       dir,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *ExportStep) Name() string {
	return "export"
}

// Do executes the export step.
func (s *ExportStep) Do(ctx context.Context, job *Job) error {
	if job.Result == nil {
		return ErrNoAnalysis
	}

	doc := s.formatter.Format(job.Result)
	digest := doc.Digest()

	if s.exports != nil && !s.force {
		last, err := s.lastExportInDir(ctx, job.Result.ID)
		if err != nil {
			return fmt.Errorf("failed to read export log: %w", err)
		}
		if last != nil && last.Digest == digest && fileExists(last.Path) {
			job.ExportPath = last.Path
			job.ExportSkipped = true
			s.logger.Debug("document unchanged, skipping export",
				"analysis_id", job.Result.ID,
				"path", last.Path,
			)
			return nil
		}
	}

	path, err := report.Save(s.dir, doc)
	if err != nil {
		return err
	}
	job.ExportPath = path
	job.ExportSkipped = false

	if s.exports != nil {
		_, err := s.exports.RecordExport(ctx, &database.Export{
			AnalysisID: job.Result.ID,
			Stage:      job.Result.CompletedStage().String(),
			Filename:   doc.Filename,
			Path:       path,
			Digest:     digest,
			Size:       int64(len(doc.Body)),
			ExportedAt: doc.GeneratedAt,
		})
		if err != nil && !errors.Is(err, database.ErrMissingID) {
			s.logger.Warn("failed to record export", "path", path, "error", err)
		}
	}
	return nil
}

// lastExportInDir returns the newest export of analysisID written into the
// step's directory, or nil. Exports into other directories do not count.
func (s *ExportStep) lastExportInDir(ctx context.Context, analysisID string) (*database.Export, error) {
	exports, err := s.exports.ListExports(ctx, analysisID)
	if err != nil {
		return nil, err
	}
	dir := absDir(s.dir)
	for i := range exports {
		if absDir(filepath.Dir(exports[i].Path)) == dir {
			return &exports[i], nil
		}
	}
	return nil, nil
}

// absDir cleans dir and makes it absolute when possible.
func absDir(dir string) string {
	if dir == "" {
		dir = "."
	}
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return filepath.Clean(dir)
}

// fileExists reports whether path names an existing regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
