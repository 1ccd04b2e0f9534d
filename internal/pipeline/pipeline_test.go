package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/aeoscan/aeoscan/internal/model"
)

// mockStep is a test helper that implements the Step interface.
type mockStep struct {
	name      string
	doFunc    func(ctx context.Context, report *model.ScanReport) error
	callCount int
}

// Do implements Step.Do.
func (m *mockStep) Do(ctx context.Context, report *model.ScanReport) error {
	m.callCount++
	if m.doFunc != nil {
		return m.doFunc(ctx, report)
	}
	return nil
}

// Name implements Step.Name.
func (m *mockStep) Name() string {
	return m.name
}

// quietLogger discards all log output in tests.
func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestPipelineNew tests the Pipeline constructor.
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
	})

	t.Run("applies WithContinueOnError option", func(t *testing.T) {
		t.Parallel()

		p := New(WithContinueOnError(true))

		if !p.continueOnError {
			t.Error("expected continueOnError to be true")
		}
	})
}

// TestPipelineAddStep tests adding steps to the pipeline.
func TestPipelineAddStep(t *testing.T) {
	t.Parallel()

	t.Run("AddStep appends in order", func(t *testing.T) {
		t.Parallel()

		p := New(WithLogger(quietLogger()))
		p.AddStep(&mockStep{name: "first"})
		p.AddStep(&mockStep{name: "second"})

		names := p.StepNames()
		if len(names) != 2 || names[0] != "first" || names[1] != "second" {
			t.Errorf("unexpected step names: %v", names)
		}
	})

	t.Run("AddSteps appends multiple", func(t *testing.T) {
		t.Parallel()

		p := New(WithLogger(quietLogger()))
		p.AddSteps(&mockStep{name: "a"}, &mockStep{name: "b"}, &mockStep{name: "c"})

		if p.StepCount() != 3 {
			t.Errorf("expected 3 steps, got %d", p.StepCount())
		}
	})
}

// TestPipelineExecute tests pipeline execution semantics.
func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("executes all steps in order", func(t *testing.T) {
		t.Parallel()

		var order []string
		mk := func(name string) *mockStep {
			return &mockStep{
				name: name,
				doFunc: func(_ context.Context, _ *model.ScanReport) error {
					order = append(order, name)
					return nil
				},
			}
		}

		p := New(WithLogger(quietLogger()))
		p.AddSteps(mk("robots"), mk("crawl"), mk("score"))

		report := model.NewScanReport("example.com")
		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(order) != 3 || order[0] != "robots" || order[1] != "crawl" || order[2] != "score" {
			t.Errorf("unexpected execution order: %v", order)
		}
	})

	t.Run("stops on first error by default", func(t *testing.T) {
		t.Parallel()

		failErr := errors.New("boom")
		failing := &mockStep{
			name: "failing",
			doFunc: func(_ context.Context, _ *model.ScanReport) error {
				return failErr
			},
		}
		after := &mockStep{name: "after"}

		p := New(WithLogger(quietLogger()))
		p.AddSteps(failing, after)

		report := model.NewScanReport("example.com")
		err := p.Execute(context.Background(), report)
		if !errors.Is(err, failErr) {
			t.Errorf("expected failErr, got %v", err)
		}
		if after.callCount != 0 {
			t.Error("expected later step to be skipped after failure")
		}
		if report.Error != "boom" {
			t.Errorf("expected error recorded in report, got %q", report.Error)
		}
	})

	t.Run("continues on error when configured", func(t *testing.T) {
		t.Parallel()

		failing := &mockStep{
			name: "failing",
			doFunc: func(_ context.Context, _ *model.ScanReport) error {
				return errors.New("boom")
			},
		}
		after := &mockStep{name: "after"}

		p := New(WithLogger(quietLogger()), WithContinueOnError(true))
		p.AddSteps(failing, after)

		report := model.NewScanReport("example.com")
		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if after.callCount != 1 {
			t.Error("expected later step to run despite failure")
		}
	})

	t.Run("canceled context stops execution and marks timeout", func(t *testing.T) {
		t.Parallel()

		step := &mockStep{name: "never"}

		p := New(WithLogger(quietLogger()))
		p.AddStep(step)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		report := model.NewScanReport("example.com")
		err := p.Execute(ctx, report)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if step.callCount != 0 {
			t.Error("expected step not to run after cancellation")
		}
		if !report.TimedOut {
			t.Error("expected report.TimedOut to be set")
		}
	})
}
