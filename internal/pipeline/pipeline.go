package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/ytanalyzer/internal/report"
)

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, each receiving the job as left by the
// previous steps.
type Step interface {
	// Do executes the pipeline step.
	// A step that fails must leave job.Result as it found it.
	Do(ctx context.Context, job *Job) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger

	// continueOnError determines whether to continue executing steps
	// after one fails. If false, the pipeline stops on first error.
	continueOnError bool
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, slog.Default is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to continue execution
// even when a step fails. The last error is recorded on the job.
//
// Design decision: The default is to stop, because a failed stage makes
// every later stage fail its gate anyway. Continuing is useful when the
// last step is an export: an unsuitable video still gets its stage-1
// document written.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps:           make([]Step, 0),
		continueOnError: false,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence.
//
// Context cancellation is checked before each step; a running step
// observes it through its own requests.
//
// Returns the first error encountered if continueOnError is false,
// or nil if all steps ran (the last error is recorded on the job).
func (p *Pipeline) Execute(ctx context.Context, job *Job) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", ctx.Err(),
			)
			job.Err = ctx.Err()
			job.ErrorMessage = ctx.Err().Error()
			return ctx.Err()
		default:
		}

		p.logger.Info("executing step",
			"step", step.Name(),
			"analysis_id", job.label(),
		)

		if err := step.Do(ctx, job); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"analysis_id", job.label(),
				"error", err,
			)

			job.Err = err
			job.ErrorMessage = err.Error()

			if !p.continueOnError {
				return err
			}
		} else {
			p.logger.Debug("step completed",
				"step", step.Name(),
				"analysis_id", job.label(),
				"stage", job.Result.CompletedStage().String(),
			)
		}

		job.PerformedSteps = append(job.PerformedSteps, step.Name())
	}

	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}

// Plan selects the steps of a stage pipeline.
type Plan struct {
	// Analyze submits job.VideoURL first. Otherwise the job must carry an id.
	Analyze bool

	// Fetch loads the stored aggregate for job.AnalysisID.
	Fetch bool

	// Offline makes Fetch read the local cache instead of the backend.
	Offline bool

	// Critical requests the critical analysis with Perspective.
	Critical    bool
	Perspective string

	// Additional requests the additional analysis.
	Additional bool

	// ExportDir, when set, saves the final document there.
	ExportDir string
	Formatter *report.Formatter
	Force     bool

	// Cache and Exports are optional local stores.
	Cache   ResultCache
	Exports ExportLog

	Logger *slog.Logger
}

// Build assembles the pipeline described by the plan.
//
// Design decision: A job is always fetched before a critical or additional
// step when it does not start from a URL, because the gates need the
// current aggregate and the backend may have progressed since it was
// cached.
func (pl Plan) Build(backend Backend, opts ...Option) *Pipeline {
	logger := pl.Logger
	if logger == nil {
		logger = slog.Default()
	}
	stepOpts := []StepOption{WithStepLogger(logger)}
	if pl.Cache != nil {
		stepOpts = append(stepOpts, WithResultCache(pl.Cache))
	}

	p := New(append([]Option{WithLogger(logger)}, opts...)...)
	switch {
	case pl.Analyze:
		p.AddStep(NewAnalyzeStep(backend, stepOpts...))
	case pl.Fetch || pl.Critical || pl.Additional:
		p.AddStep(NewFetchStep(backend, stepOpts, WithOffline(pl.Offline)))
	}
	if pl.Critical {
		p.AddStep(NewCriticalStep(backend, pl.Perspective, stepOpts...))
	}
	if pl.Additional {
		p.AddStep(NewAdditionalStep(backend, stepOpts...))
	}
	if pl.ExportDir != "" {
		exportOpts := []ExportStepOption{WithForce(pl.Force), WithExportLogger(logger)}
		if pl.Exports != nil {
			exportOpts = append(exportOpts, WithExportLog(pl.Exports))
		}
		p.AddStep(NewExportStep(pl.Formatter, pl.ExportDir, exportOpts...))
	}
	return p
}
