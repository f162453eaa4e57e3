package provisioning

import "time"

// StepStatus is the outcome of a single step.
type StepStatus string

const (
	StatusExecuted StepStatus = "executed"
	StatusSkipped  StepStatus = "skipped"
	StatusFailed   StepStatus = "failed"
	StatusPlanned  StepStatus = "planned"
)

// StepResult records what happened to one step.
type StepResult struct {
	Step        string        `json:"step"`
	Description string        `json:"description,omitempty"`
	Resource    string        `json:"resource,omitempty"`
	Idempotency Idempotency   `json:"idempotency"`
	Policy      FailurePolicy `json:"policy"`
	Status      StepStatus    `json:"status"`
	Reason      string        `json:"reason,omitempty"`
	Err         error         `json:"-"`
	Error       string        `json:"error,omitempty"`
	Remediation string        `json:"remediation,omitempty"`
	Duration    time.Duration `json:"duration_ns"`
}

// Report lists every step reached by a run, in execution order.
type Report struct {
	Target     string       `json:"target"`
	DryRun     bool         `json:"dry_run"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Steps      []StepResult `json:"steps"`

	// AbortedAt names the fatal step that ended the run, if any.
	AbortedAt string `json:"aborted_at,omitempty"`
}

func (r *Report) add(result StepResult) {
	if result.Err != nil {
		result.Error = result.Err.Error()
	}
	r.Steps = append(r.Steps, result)
}

func (r *Report) count(status StepStatus) int {
	n := 0
	for _, s := range r.Steps {
		if s.Status == status {
			n++
		}
	}
	return n
}

// Executed returns the number of steps whose action ran successfully.
func (r *Report) Executed() int { return r.count(StatusExecuted) }

// Skipped returns the number of steps whose precondition already held.
func (r *Report) Skipped() int { return r.count(StatusSkipped) }

// Failed returns the number of failed steps.
func (r *Report) Failed() int { return r.count(StatusFailed) }

// Planned returns the number of steps a dry run would execute.
func (r *Report) Planned() int { return r.count(StatusPlanned) }

// Succeeded reports whether the run finished without a fatal failure.
// Tolerant failures do not count against it.
func (r *Report) Succeeded() bool {
	return r.AbortedAt == ""
}

// Result returns the result of the named step.
func (r *Report) Result(step string) (StepResult, bool) {
	for _, s := range r.Steps {
		if s.Step == step {
			return s, true
		}
	}
	return StepResult{}, false
}

// StepsWithStatus returns the names of steps with the given status, in order.
func (r *Report) StepsWithStatus(status StepStatus) []string {
	var names []string
	for _, s := range r.Steps {
		if s.Status == status {
			names = append(names, s.Step)
		}
	}
	return names
}

// Duration returns the wall time of the run.
func (r *Report) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
