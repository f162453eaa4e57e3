package provisioning

import (
	"errors"
	"fmt"
	"time"
)

// Sequencer drives a step list against one host.
type Sequencer struct {
	dryRun bool
	now    func() time.Time
}

// SequencerOption configures a Sequencer.
type SequencerOption func(*Sequencer)

// WithDryRun evaluates preconditions only. Steps that would run are recorded
// as planned and marked changed, so downstream checks answer as in a real run.
// A step depending on a planned step is planned without evaluating its check.
func WithDryRun(dryRun bool) SequencerOption {
	return func(s *Sequencer) {
		s.dryRun = dryRun
	}
}

// WithClock replaces time.Now for durations and timestamps.
func WithClock(now func() time.Time) SequencerOption {
	return func(s *Sequencer) {
		s.now = now
	}
}

// NewSequencer creates a sequencer.
func NewSequencer(opts ...SequencerOption) *Sequencer {
	s := &Sequencer{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run validates the plan, checks privilege and executes steps in order.
//
// A fatal step failure stops the run: the returned report holds exactly the
// steps reached, the failing one last, and the error is a *ProvisioningError.
// Tolerant failures are recorded and the run continues. Nothing is rolled back.
func (s *Sequencer) Run(ctx *Context, steps []Step) (*Report, error) {
	report := &Report{DryRun: s.dryRun, StartedAt: s.now()}
	defer func() { report.FinishedAt = s.now() }()

	if ctx.Host != nil && ctx.Host.Files != nil {
		report.Target = targetName(ctx.Host.Files)
	}

	if err := ValidatePlan(steps); err != nil {
		return report, err
	}
	if ctx.Host == nil || ctx.Host.Privilege == nil {
		return report, &PlanError{Problems: []string{"no privilege checker for the target host"}}
	}

	ctx.Observer.Event(Event{
		Type:    EventSequenceStarted,
		Message: fmt.Sprintf("running %d steps", len(steps)),
		Fields:  map[string]string{"dry_run": fmt.Sprint(s.dryRun)},
	})

	if err := ctx.Host.Privilege.CheckPrivilege(ctx); err != nil {
		var privErr *PrivilegeError
		if !errors.As(err, &privErr) {
			err = &PrivilegeError{Target: report.Target, Err: err}
		}
		ctx.Observer.Event(Event{Type: EventSequenceAborted, Message: err.Error()})
		return report, err
	}

	for i, step := range steps {
		ctx.Observer.Progress(step.Name, i+1, len(steps))
		result := s.runStep(ctx, step)
		report.add(result)
		ctx.State.setStatus(step.Name, result.Status)

		if result.Status == StatusFailed && step.Policy == Fatal {
			report.AbortedAt = step.Name
			ctx.Observer.Event(Event{
				Type:    EventSequenceAborted,
				Step:    step.Name,
				Message: fmt.Sprintf("aborted after %d of %d steps", i+1, len(steps)),
			})
			return report, &ProvisioningError{Step: step.Name, Cause: result.Err}
		}
	}

	ctx.Observer.Event(Event{
		Type: EventSequenceCompleted,
		Message: fmt.Sprintf("%d executed, %d skipped, %d failed, %d planned",
			report.Executed(), report.Skipped(), report.Failed(), report.Planned()),
	})
	return report, nil
}

func (s *Sequencer) runStep(ctx *Context, step Step) StepResult {
	start := s.now()
	result := StepResult{
		Step:        step.Name,
		Description: step.Description,
		Resource:    step.Resource,
		Idempotency: step.Idempotency,
		Policy:      step.Policy,
	}
	finish := func(status StepStatus, reason string, err error) StepResult {
		result.Status = status
		result.Reason = reason
		result.Err = err
		result.Duration = s.now().Sub(start)
		if status == StatusFailed {
			result.Remediation = remediation(step, err)
		}
		emitStepEvent(ctx.Observer, result)
		return result
	}

	LogStepStart(ctx.Observer, step)

	for _, dep := range step.DependsOn {
		if st, ok := ctx.State.Status(dep); !ok || st == StatusFailed {
			return finish(StatusFailed, "", fmt.Errorf("dependency %s did not complete", dep))
		}
	}

	// the host cannot answer the check until the planned dependency has run
	if s.dryRun {
		for _, dep := range step.DependsOn {
			if st, _ := ctx.State.Status(dep); st == StatusPlanned {
				ctx.State.MarkChanged(step.Name)
				return finish(StatusPlanned, "depends on planned "+dep, nil)
			}
		}
	}

	if step.Check != nil {
		satisfied, reason, err := step.Check(ctx)
		if err != nil {
			return finish(StatusFailed, "", fmt.Errorf("precondition check failed: %w", err))
		}
		if satisfied {
			return finish(StatusSkipped, reason, nil)
		}
		result.Reason = reason
	}

	if s.dryRun {
		ctx.State.MarkChanged(step.Name)
		return finish(StatusPlanned, result.Reason, nil)
	}

	if err := step.Action(ctx); err != nil {
		return finish(StatusFailed, result.Reason, err)
	}
	ctx.State.MarkChanged(step.Name)
	return finish(StatusExecuted, result.Reason, nil)
}

// remediation picks the manual fix for a failed step. It is never empty.
func remediation(step Step, err error) string {
	if r := RemediationFor(err); r != "" {
		return r
	}
	if step.Remediation != "" {
		return step.Remediation
	}
	return fmt.Sprintf("resolve the error reported for %s and run erpdeploy apply again", step.Name)
}

func targetName(fs FileSystem) string {
	if t, ok := fs.(interface{ Target() string }); ok {
		return t.Target()
	}
	return ""
}
