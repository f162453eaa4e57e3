package provisioning

import (
	"context"

	"github.com/imamik/erpdeploy/internal/config"
)

// State tracks what the current run has done. It is owned by a single run.
type State struct {
	changed  map[string]bool
	statuses map[string]StepStatus
}

// NewState creates an empty run state.
func NewState() *State {
	return &State{
		changed:  make(map[string]bool),
		statuses: make(map[string]StepStatus),
	}
}

// MarkChanged records that step modified (or in a dry run would modify) its resource.
func (s *State) MarkChanged(step string) {
	s.changed[step] = true
}

// Changed reports whether any of the named steps changed its resource during this run.
func (s *State) Changed(steps ...string) bool {
	for _, name := range steps {
		if s.changed[name] {
			return true
		}
	}
	return false
}

// ChangedSteps returns the number of steps that changed their resource.
func (s *State) ChangedSteps() int {
	return len(s.changed)
}

func (s *State) setStatus(step string, status StepStatus) {
	s.statuses[step] = status
}

// Status returns the recorded status of step.
func (s *State) Status(step string) (StepStatus, bool) {
	st, ok := s.statuses[step]
	return st, ok
}

// Context wraps all dependencies and state needed by a step.
type Context struct {
	context.Context
	Config   *config.Config
	Host     *Host
	State    *State
	Observer Observer
	Timeouts *config.Timeouts
}

// NewContext creates a run context with a console observer and timeouts from the environment.
func NewContext(ctx context.Context, cfg *config.Config, host *Host) *Context {
	return &Context{
		Context:  ctx,
		Config:   cfg,
		Host:     host,
		State:    NewState(),
		Observer: NewConsoleObserver(),
		Timeouts: config.LoadTimeouts(),
	}
}
