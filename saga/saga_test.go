package saga

import (
	"context"
	"errors"
	"testing"
)

func recorder(log *[]string, name string, err error) func(context.Context) error {
	return func(context.Context) error {
		*log = append(*log, name)
		return err
	}
}

func TestRunBestEffortContinues(t *testing.T) {
	var calls []string
	boom := errors.New("boom")
	report, err := Run(context.Background(), []Step{
		{Name: "insert", Policy: Critical, Do: recorder(&calls, "insert", nil)},
		{Name: "p1", Policy: BestEffort, Do: recorder(&calls, "p1", boom)},
		{Name: "p2", Policy: BestEffort, Do: recorder(&calls, "p2", nil)},
	}, Options{})
	if err != nil {
		t.Fatalf("best-effort failure must not fail the run, got %v", err)
	}
	if len(calls) != 3 {
		t.Fatalf("expected every step to run, got %v", calls)
	}
	if !report.Partial() || len(report.Applied) != 2 || report.Failed[0].Step != "p1" {
		t.Fatalf("unexpected report %+v", report)
	}
	if !errors.Is(report.Err(), boom) {
		t.Fatalf("report error should wrap the step failure, got %v", report.Err())
	}
}

func TestRunCriticalAbortsWithoutCompensation(t *testing.T) {
	var calls []string
	report, err := Run(context.Background(), []Step{
		{Name: "p1", Policy: BestEffort, Do: recorder(&calls, "p1", nil), Compensate: recorder(&calls, "undo-p1", nil)},
		{Name: "delete", Policy: Critical, Do: recorder(&calls, "delete", errors.New("offline"))},
		{Name: "after", Policy: BestEffort, Do: recorder(&calls, "after", nil)},
	}, Options{})
	if err == nil {
		t.Fatal("expected critical failure to be returned")
	}
	if len(calls) != 2 || !report.Aborted || len(report.Compensated) != 0 {
		t.Fatalf("unexpected calls %v report %+v", calls, report)
	}
	if len(report.Applied) != 1 || report.Applied[0] != "p1" {
		t.Fatalf("applied steps should remain listed, got %v", report.Applied)
	}
}

func TestRunCriticalCompensatesInReverse(t *testing.T) {
	var calls []string
	report, err := Run(context.Background(), []Step{
		{Name: "a", Policy: BestEffort, Do: recorder(&calls, "a", nil), Compensate: recorder(&calls, "undo-a", nil)},
		{Name: "b", Policy: BestEffort, Do: recorder(&calls, "b", nil), Compensate: recorder(&calls, "undo-b", nil)},
		{Name: "c", Policy: Critical, Do: recorder(&calls, "c", errors.New("fail"))},
	}, Options{Compensate: true})
	if err == nil {
		t.Fatal("expected an error")
	}
	want := []string{"a", "b", "c", "undo-b", "undo-a"}
	if len(calls) != len(want) {
		t.Fatalf("got calls %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("got calls %v, want %v", calls, want)
		}
	}
	if len(report.Compensated) != 2 {
		t.Fatalf("expected two compensated steps, got %v", report.Compensated)
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var calls []string
	_, err := Run(ctx, []Step{{Name: "a", Do: recorder(&calls, "a", nil)}}, Options{})
	if !errors.Is(err, context.Canceled) || len(calls) != 0 {
		t.Fatalf("expected cancellation before any step, got err=%v calls=%v", err, calls)
	}
}

func TestRunFinishesAfterCriticalStepDespiteCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var calls []string
	report, err := Run(ctx, []Step{
		{Name: "insert", Policy: Critical, Do: func(context.Context) error {
			calls = append(calls, "insert")
			cancel()
			return nil
		}},
		{Name: "p1", Policy: BestEffort, Do: func(ctx context.Context) error {
			calls = append(calls, "p1")
			return ctx.Err()
		}},
	}, Options{})
	if err != nil {
		t.Fatalf("cancellation after a durable step must not abort, got %v", err)
	}
	if len(calls) != 2 || report.Aborted || report.Partial() || len(report.Applied) != 2 {
		t.Fatalf("unexpected calls %v report %+v", calls, report)
	}
}
