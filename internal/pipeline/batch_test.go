package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestBatchProcessorNew(t *testing.T) {
	t.Parallel()

	t.Run("creates processor with defaults", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(func() *Pipeline { return New() })

		if bp == nil {
			t.Fatal("expected non-nil processor")
		}
		if bp.concurrency != DefaultConcurrency {
			t.Errorf("expected default concurrency %d, got %d", DefaultConcurrency, bp.concurrency)
		}
		if bp.logger == nil {
			t.Error("expected non-nil logger")
		}
	})

	t.Run("applies WithConcurrency option", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(func() *Pipeline { return New() }, WithConcurrency(2))

		if bp.concurrency != 2 {
			t.Errorf("expected concurrency 2, got %d", bp.concurrency)
		}
	})

	t.Run("ignores non-positive concurrency", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(func() *Pipeline { return New() }, WithConcurrency(0))

		if bp.concurrency != DefaultConcurrency {
			t.Errorf("expected concurrency %d, got %d", DefaultConcurrency, bp.concurrency)
		}
	})
}

func TestBatchProcessorProcessBatch(t *testing.T) {
	t.Parallel()

	t.Run("processes every id in order", func(t *testing.T) {
		t.Parallel()

		var processed atomic.Int32
		bp := NewBatchProcessor(func() *Pipeline {
			p := New()
			p.AddStep(&mockStep{
				name: "counter",
				doFunc: func(_ context.Context, _ *Job) error {
					processed.Add(1)
					return nil
				},
			})
			return p
		})

		ids := []string{"first", "second", "third"}
		results, err := bp.ProcessBatch(context.Background(), ids)

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if processed.Load() != 3 {
			t.Errorf("expected 3 processed, got %d", processed.Load())
		}
		for i, job := range results {
			if job.AnalysisID != ids[i] {
				t.Errorf("results[%d] = %q, want %q", i, job.AnalysisID, ids[i])
			}
		}
	})

	t.Run("respects concurrency limit", func(t *testing.T) {
		t.Parallel()

		var current, peak atomic.Int32
		var mu sync.Mutex

		bp := NewBatchProcessor(func() *Pipeline {
			p := New()
			p.AddStep(&mockStep{
				name: "slow",
				doFunc: func(_ context.Context, _ *Job) error {
					n := current.Add(1)
					mu.Lock()
					if n > peak.Load() {
						peak.Store(n)
					}
					mu.Unlock()

					time.Sleep(30 * time.Millisecond)
					current.Add(-1)
					return nil
				},
			})
			return p
		}, WithConcurrency(2))

		ids := make([]string, 8)
		for i := range ids {
			ids[i] = "abc123"
		}

		if _, err := bp.ProcessBatch(context.Background(), ids); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if peak.Load() > 2 {
			t.Errorf("peak concurrency was %d, expected <= 2", peak.Load())
		}
	})

	t.Run("continues after a gated analysis", func(t *testing.T) {
		t.Parallel()

		backend := newFakeBackend()
		backend.results["good"] = suitableResult("good")
		backend.results["bad"] = unsuitableResult("bad", "근거 부족")
		backend.results["other"] = suitableResult("other")

		bp := NewBatchProcessor(func() *Pipeline {
			return Plan{Critical: true}.Build(backend)
		})

		results, err := bp.ProcessBatch(context.Background(), []string{"good", "bad", "other"})

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !errors.Is(results[1].Err, ErrUnsuitable) {
			t.Errorf("results[1].Err = %v, want ErrUnsuitable", results[1].Err)
		}
		for _, i := range []int{0, 2} {
			if results[i].Err != nil || results[i].Result.CriticalAnalysis == nil {
				t.Errorf("results[%d] should have completed the critical stage", i)
			}
		}
		if got := backend.callCount("critical"); got != 2 {
			t.Errorf("critical calls = %d, want 2", got)
		}
	})

	t.Run("handles context cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		var started atomic.Int32

		bp := NewBatchProcessor(func() *Pipeline {
			p := New()
			p.AddStep(&mockStep{
				name: "blocking",
				doFunc: func(ctx context.Context, _ *Job) error {
					started.Add(1)
					select {
					case <-ctx.Done():
						return ctx.Err()
					case <-time.After(time.Second):
						return nil
					}
				},
			})
			return p
		}, WithConcurrency(2))

		ids := make([]string, 10)
		for i := range ids {
			ids[i] = "abc123"
		}

		go func() {
			time.Sleep(100 * time.Millisecond)
			cancel()
		}()

		_, err := bp.ProcessBatch(ctx, ids)

		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		//nolint:gosec // len(ids) is small, no overflow risk
		if started.Load() >= int32(len(ids)) {
			t.Error("expected some jobs to not start due to cancellation")
		}
	})
}

func TestBatchProcessorProcessBatchWithCallback(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	received := make(map[string]int)

	bp := NewBatchProcessor(func() *Pipeline {
		p := New()
		p.AddStep(&mockStep{name: "noop"})
		return p
	})

	ids := []string{"first", "second", "third"}
	err := bp.ProcessBatchWithCallback(context.Background(), ids, func(job *Job, index int) {
		mu.Lock()
		received[job.AnalysisID] = index
		mu.Unlock()
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(received) != len(ids) {
		t.Fatalf("expected %d callbacks, got %d", len(ids), len(received))
	}
	for i, id := range ids {
		if received[id] != i {
			t.Errorf("callback index for %q = %d, want %d", id, received[id], i)
		}
	}
}
