// Package saga runs a multi-step write against independent stores and reports exactly
// which steps took effect.
package saga

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

type Policy int

const (
	// Critical steps abort the run when they fail.
	Critical Policy = iota
	// BestEffort failures are recorded and the run moves on.
	BestEffort
)

func (p Policy) String() string {
	if p == BestEffort {
		return "best-effort"
	}
	return "critical"
}

type Step struct {
	Name       string
	Policy     Policy
	Do         func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

type Options struct {
	// Compensate undoes completed steps in reverse order after a critical failure.
	Compensate bool
	Logger     *slog.Logger
}

type StepError struct {
	Step   string
	Policy Policy
	Err    error
}

func (e StepError) Error() string { return fmt.Sprintf("%s (%s): %v", e.Step, e.Policy, e.Err) }

func (e StepError) Unwrap() error { return e.Err }

// Report is the outcome of a run. Applied lists steps whose writes are in place,
// Compensated those that were undone afterwards.
type Report struct {
	Applied            []string     `json:"applied"`
	Failed             []StepError  `json:"-"`
	Compensated        []string     `json:"compensated,omitempty"`
	CompensationFailed []StepError  `json:"-"`
	Aborted            bool         `json:"aborted"`
	FailedSteps        []FailedStep `json:"failed,omitempty"`
}

// FailedStep is the JSON form of a StepError.
type FailedStep struct {
	Step   string `json:"step"`
	Policy string `json:"policy"`
	Error  string `json:"error"`
}

func (r *Report) Partial() bool { return len(r.Failed) > 0 }

// Err joins every step failure, nil when all steps succeeded.
func (r *Report) Err() error {
	if len(r.Failed) == 0 && len(r.CompensationFailed) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Failed)+len(r.CompensationFailed))
	for _, f := range r.Failed {
		errs = append(errs, f)
	}
	for _, f := range r.CompensationFailed {
		errs = append(errs, fmt.Errorf("compensate %w", f))
	}
	return errors.Join(errs...)
}

func (r *Report) fail(step Step, err error) {
	se := StepError{Step: step.Name, Policy: step.Policy, Err: err}
	r.Failed = append(r.Failed, se)
	r.FailedSteps = append(r.FailedSteps, FailedStep{Step: se.Step, Policy: se.Policy.String(), Error: err.Error()})
}

// Run executes steps in order. The returned error is non-nil only when a critical
// step failed; best-effort failures are visible in the report. Once a critical step
// has succeeded its write is durable, so the remaining steps no longer observe
// cancellation of ctx.
func Run(ctx context.Context, steps []Step, opts Options) (*Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	report := &Report{}
	done := make([]Step, 0, len(steps))

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			step.Policy = Critical
			report.fail(step, err)
			report.Aborted = true
			compensate(ctx, done, report, opts, logger)
			return report, err
		}

		if err := step.Do(ctx); err != nil {
			report.fail(step, err)
			if step.Policy == BestEffort {
				logger.Warn("saga step failed, continuing", "step", step.Name, "error", err)
				continue
			}
			logger.Error("saga step failed, aborting", "step", step.Name, "error", err)
			report.Aborted = true
			compensate(ctx, done, report, opts, logger)
			return report, fmt.Errorf("step %s: %w", step.Name, err)
		}
		report.Applied = append(report.Applied, step.Name)
		done = append(done, step)
		if step.Policy == Critical {
			ctx = context.WithoutCancel(ctx)
		}
	}
	return report, nil
}

func compensate(ctx context.Context, done []Step, report *Report, opts Options, logger *slog.Logger) {
	if !opts.Compensate {
		return
	}
	// Compensation runs even if ctx was cancelled; otherwise nothing could be undone.
	cctx := context.WithoutCancel(ctx)
	for i := len(done) - 1; i >= 0; i-- {
		step := done[i]
		if step.Compensate == nil {
			continue
		}
		if err := step.Compensate(cctx); err != nil {
			logger.Error("saga compensation failed", "step", step.Name, "error", err)
			report.CompensationFailed = append(report.CompensationFailed, StepError{Step: step.Name, Policy: step.Policy, Err: err})
			continue
		}
		report.Compensated = append(report.Compensated, step.Name)
	}
}
