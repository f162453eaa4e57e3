// Package tui provides a Bubble Tea progress view for provisioning runs.
package tui

import "github.com/imamik/erpdeploy/internal/provisioning"

// StepStartedMsg reports that the sequencer began evaluating a step.
type StepStartedMsg struct {
	Step    string
	Current int
	Total   int
}

// StepResultMsg reports the outcome of a step.
type StepResultMsg struct {
	Step   string
	Status provisioning.StepStatus
	Reason string
	Err    string
	Remedy string
}

// LogMsg carries a free-form log line.
type LogMsg struct{ Line string }

// TickMsg is sent periodically to refresh the display.
type TickMsg struct{}

// ErrMsg carries an error that ended the run.
type ErrMsg struct{ Err error }

// DoneMsg signals that the run finished.
type DoneMsg struct{ Report *provisioning.Report }
