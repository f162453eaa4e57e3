package tui

import (
	"fmt"
	"maps"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/imamik/erpdeploy/internal/provisioning"
)

// sender is the part of *tea.Program the observer needs.
type sender interface {
	Send(msg tea.Msg)
}

// Observer forwards sequencer events to a running program.
type Observer struct {
	program sender
	fields  map[string]string
}

var _ provisioning.Observer = (*Observer)(nil)

// NewObserver creates an observer that sends to p.
func NewObserver(p sender) *Observer {
	return &Observer{program: p, fields: make(map[string]string)}
}

// Printf implements provisioning.Logger.
func (o *Observer) Printf(format string, v ...interface{}) {
	o.program.Send(LogMsg{Line: fmt.Sprintf(format, v...)})
}

// Event implements provisioning.Observer.
func (o *Observer) Event(event provisioning.Event) {
	var status provisioning.StepStatus
	switch event.Type {
	case provisioning.EventStepExecuted:
		status = provisioning.StatusExecuted
	case provisioning.EventStepSkipped:
		status = provisioning.StatusSkipped
	case provisioning.EventStepFailed:
		status = provisioning.StatusFailed
	case provisioning.EventStepPlanned:
		status = provisioning.StatusPlanned
	case provisioning.EventStepStarted, provisioning.EventProgress:
		return
	default:
		o.program.Send(LogMsg{Line: event.Message})
		return
	}
	msg := StepResultMsg{Step: event.Step, Status: status, Reason: event.Fields["reason"]}
	if status == provisioning.StatusFailed {
		msg.Err = event.Message
		msg.Remedy = event.Fields["remediation"]
	}
	o.program.Send(msg)
}

// Progress implements provisioning.Observer.
func (o *Observer) Progress(step string, current, total int) {
	o.program.Send(StepStartedMsg{Step: step, Current: current, Total: total})
}

// WithFields implements provisioning.Observer.
func (o *Observer) WithFields(fields map[string]string) provisioning.Observer {
	merged := maps.Clone(o.fields)
	maps.Copy(merged, fields)
	return &Observer{program: o.program, fields: merged}
}
