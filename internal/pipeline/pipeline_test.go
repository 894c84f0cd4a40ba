package pipeline

import (
	"context"
	"errors"
	"slices"
	"testing"
)

// mockStep is a test helper that implements the Step interface.
type mockStep struct {
	name      string
	doFunc    func(ctx context.Context, job *Job) error
	callCount int
}

// Do implements Step.Do.
func (m *mockStep) Do(ctx context.Context, job *Job) error {
	m.callCount++
	if m.doFunc != nil {
		return m.doFunc(ctx, job)
	}
	return nil
}

// Name implements Step.Name.
func (m *mockStep) Name() string {
	return m.name
}

func TestPipelineNew(t *testing.T) {
	t.Parallel()

	t.Run("creates pipeline with default settings", func(t *testing.T) {
		t.Parallel()

		p := New()

		if p == nil {
			t.Fatal("expected non-nil pipeline")
		}
		if p.StepCount() != 0 {
			t.Errorf("expected 0 steps, got %d", p.StepCount())
		}
		if p.logger == nil {
			t.Error("expected default logger")
		}
	})

	t.Run("applies WithContinueOnError option", func(t *testing.T) {
		t.Parallel()

		p := New(WithContinueOnError(true))

		if !p.continueOnError {
			t.Error("expected continueOnError to be true")
		}
	})
}

func TestPipelineAddStep(t *testing.T) {
	t.Parallel()

	t.Run("adds multiple steps with AddSteps", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddStep(&mockStep{name: "first"})
		p.AddSteps(&mockStep{name: "second"}, &mockStep{name: "third"})

		if p.StepCount() != 3 {
			t.Errorf("expected 3 steps, got %d", p.StepCount())
		}
		want := []string{"first", "second", "third"}
		if got := p.StepNames(); !slices.Equal(got, want) {
			t.Errorf("StepNames() = %v, want %v", got, want)
		}
	})
}

func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("executes all steps in order", func(t *testing.T) {
		t.Parallel()

		var order []string
		p := New()
		for _, name := range []string{"step-1", "step-2"} {
			p.AddStep(&mockStep{
				name: name,
				doFunc: func(_ context.Context, _ *Job) error {
					order = append(order, name)
					return nil
				},
			})
		}

		job := NewJob("abc123")
		if err := p.Execute(context.Background(), job); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Equal(order, []string{"step-1", "step-2"}) {
			t.Errorf("wrong execution order: %v", order)
		}
		if !slices.Equal(job.PerformedSteps, []string{"step-1", "step-2"}) {
			t.Errorf("PerformedSteps = %v", job.PerformedSteps)
		}
		if job.Err != nil {
			t.Errorf("job.Err = %v, want nil", job.Err)
		}
	})

	t.Run("stops on first error by default", func(t *testing.T) {
		t.Parallel()

		expectedErr := errors.New("step failed")
		second := &mockStep{name: "should-not-run"}

		p := New()
		p.AddStep(&mockStep{
			name: "failing-step",
			doFunc: func(_ context.Context, _ *Job) error {
				return expectedErr
			},
		})
		p.AddStep(second)

		job := NewJob("abc123")
		err := p.Execute(context.Background(), job)

		if !errors.Is(err, expectedErr) {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if second.callCount != 0 {
			t.Error("second step should not have been called")
		}
		if !errors.Is(job.Err, expectedErr) {
			t.Errorf("job.Err = %v, want %v", job.Err, expectedErr)
		}
		if job.ErrorMessage != "step failed" {
			t.Errorf("job.ErrorMessage = %q", job.ErrorMessage)
		}
		if len(job.PerformedSteps) != 0 {
			t.Errorf("PerformedSteps = %v, want none", job.PerformedSteps)
		}
	})

	t.Run("continues on error when configured", func(t *testing.T) {
		t.Parallel()

		second := &mockStep{name: "should-run"}

		p := New(WithContinueOnError(true))
		p.AddStep(&mockStep{
			name: "failing-step",
			doFunc: func(_ context.Context, _ *Job) error {
				return errors.New("step failed")
			},
		})
		p.AddStep(second)

		job := NewJob("abc123")
		if err := p.Execute(context.Background(), job); err != nil {
			t.Errorf("expected nil error with continueOnError, got %v", err)
		}
		if second.callCount != 1 {
			t.Error("second step should have been called")
		}
		if job.Err == nil {
			t.Error("expected error to be recorded on the job")
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		step := &mockStep{name: "should-not-run"}
		p := New()
		p.AddStep(step)

		job := NewJob("abc123")
		err := p.Execute(ctx, job)

		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if step.callCount != 0 {
			t.Error("step should not have been called")
		}
		if !errors.Is(job.Err, context.Canceled) {
			t.Errorf("job.Err = %v, want context.Canceled", job.Err)
		}
	})
}

func TestPlanBuild(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()

	tests := []struct {
		name string
		plan Plan
		want []string
	}{
		{
			name: "analyze only",
			plan: Plan{Analyze: true},
			want: []string{"analyze"},
		},
		{
			name: "full run from url with export",
			plan: Plan{Analyze: true, Critical: true, Additional: true, ExportDir: t.TempDir()},
			want: []string{"analyze", "critical", "additional", "export"},
		},
		{
			name: "critical by id fetches first",
			plan: Plan{Critical: true},
			want: []string{"fetch", "critical"},
		},
		{
			name: "export by id",
			plan: Plan{Fetch: true, ExportDir: t.TempDir()},
			want: []string{"fetch", "export"},
		},
		{
			name: "nothing selected",
			plan: Plan{},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := tt.plan.Build(backend).StepNames()
			if !slices.Equal(got, tt.want) {
				t.Errorf("StepNames() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlanBuildExecutesStages(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	backend.results["abc123"] = suitableResult("abc123")
	dir := t.TempDir()

	p := Plan{
		Analyze:    true,
		Critical:   true,
		Additional: true,
		ExportDir:  dir,
		Formatter:  newTestFormatter(),
	}.Build(backend)

	job := NewURLJob("https://www.youtube.com/watch?v=abc123")
	if err := p.Execute(context.Background(), job); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if job.AnalysisID != "abc123" {
		t.Errorf("AnalysisID = %q, want abc123", job.AnalysisID)
	}
	if job.Result.AdditionalAnalysis == nil || job.Result.CriticalAnalysis == nil {
		t.Fatal("expected all three stages to be present")
	}
	if job.Result.Summary == "" {
		t.Error("stage-1 summary was lost while merging later stages")
	}
	if job.ExportPath == "" {
		t.Error("expected the document to be exported")
	}
}
