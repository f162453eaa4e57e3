package provisioning

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"
)

// Logger is the minimal printf-style logging surface.
type Logger interface {
	Printf(format string, v ...interface{})
}

// Observer defines the interface for structured observability during a run.
type Observer interface {
	Logger

	// Event emits a structured event
	Event(event Event)

	// Progress reports the position of a step in the sequence
	Progress(step string, current, total int)

	// WithFields returns a new Observer with additional context fields
	WithFields(fields map[string]string) Observer
}

// Event represents a structured provisioning event.
type Event struct {
	Type      EventType         // Type of event
	Step      string            // Step name, empty for sequence-level events
	Message   string            // Human-readable message
	Resource  string            // Resource identity if applicable
	Timestamp time.Time         // When the event occurred
	Fields    map[string]string // Additional contextual fields
}

// EventType represents the type of provisioning event.
type EventType string

const (
	// EventSequenceStarted indicates the run passed plan validation.
	EventSequenceStarted EventType = "sequence.started"
	// EventSequenceCompleted indicates every step was reached.
	EventSequenceCompleted EventType = "sequence.completed"
	// EventSequenceAborted indicates a privilege or fatal step failure.
	EventSequenceAborted EventType = "sequence.aborted"

	// EventStepStarted indicates a step is being evaluated.
	EventStepStarted EventType = "step.started"
	// EventStepExecuted indicates a step's action ran successfully.
	EventStepExecuted EventType = "step.executed"
	// EventStepSkipped indicates a step's desired state already held.
	EventStepSkipped EventType = "step.skipped"
	// EventStepFailed indicates a step failed.
	EventStepFailed EventType = "step.failed"
	// EventStepPlanned indicates a dry run would execute the step.
	EventStepPlanned EventType = "step.planned"

	// EventProgress indicates progress in a long-running operation.
	EventProgress EventType = "progress"
)

// IsFailure reports whether the event signals an error condition.
func (t EventType) IsFailure() bool {
	return t == EventStepFailed || t == EventSequenceAborted
}

// ConsoleObserver implements Observer using standard log package.
type ConsoleObserver struct {
	contextFields map[string]string
	verbose       bool
}

// NewConsoleObserver creates a new console-based observer.
func NewConsoleObserver() *ConsoleObserver {
	return &ConsoleObserver{
		contextFields: make(map[string]string),
	}
}

// NewVerboseConsoleObserver also prints step.started and progress events.
func NewVerboseConsoleObserver() *ConsoleObserver {
	o := NewConsoleObserver()
	o.verbose = true
	return o
}

// Printf implements Logger.
func (o *ConsoleObserver) Printf(format string, v ...interface{}) {
	log.Printf(format, v...)
}

// Event implements Observer interface.
func (o *ConsoleObserver) Event(event Event) {
	if !o.verbose && event.Type == EventStepStarted {
		return
	}
	event = mergeFields(event, o.contextFields)
	log.Print(formatEvent(event))
}

// Progress implements Observer interface.
func (o *ConsoleObserver) Progress(step string, current, total int) {
	if !o.verbose {
		return
	}
	if total == 0 {
		log.Printf("[%s] Progress: %d/%d", step, current, total)
		return
	}
	percentage := (current * 100) / total
	log.Printf("[%s] Progress: %d/%d (%d%%)", step, current, total, percentage)
}

// WithFields implements Observer interface.
func (o *ConsoleObserver) WithFields(fields map[string]string) Observer {
	return &ConsoleObserver{
		contextFields: combineFields(o.contextFields, fields),
		verbose:       o.verbose,
	}
}

// mergeFields stamps the event and adds context fields it does not already carry.
func mergeFields(event Event, contextFields map[string]string) Event {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if len(contextFields) == 0 {
		return event
	}
	event.Fields = combineFields(contextFields, event.Fields)
	return event
}

// combineFields returns a new map with overlay taking precedence over base.
func combineFields(base, overlay map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		out[k] = v
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// formatEvent formats an event for console output. Fields are sorted so the
// output is stable.
func formatEvent(event Event) string {
	var parts []string
	parts = append(parts, string(event.Type))

	if event.Step != "" {
		parts = append(parts, fmt.Sprintf("[%s]", event.Step))
	}
	if event.Resource != "" {
		parts = append(parts, fmt.Sprintf("resource=%s", event.Resource))
	}
	parts = append(parts, event.Message)

	if len(event.Fields) > 0 {
		keys := sortedKeys(event.Fields)
		fieldParts := make([]string, 0, len(keys))
		for _, k := range keys {
			fieldParts = append(fieldParts, fmt.Sprintf("%s=%s", k, event.Fields[k]))
		}
		parts = append(parts, fmt.Sprintf("(%s)", strings.Join(fieldParts, ", ")))
	}

	return strings.Join(parts, " ")
}

// LogStepStart logs a step start event.
func LogStepStart(observer Observer, step Step) {
	observer.Event(Event{
		Type:     EventStepStarted,
		Step:     step.Name,
		Resource: step.Resource,
		Message:  step.Description,
		Fields: map[string]string{
			"idempotency": string(step.Idempotency),
			"policy":      string(step.Policy),
		},
	})
}

// emitStepEvent reports a step outcome.
func emitStepEvent(observer Observer, result StepResult) {
	event := Event{
		Step:     result.Step,
		Resource: result.Resource,
		Fields: map[string]string{
			"duration": result.Duration.Round(time.Millisecond).String(),
		},
	}

	switch result.Status {
	case StatusExecuted:
		event.Type = EventStepExecuted
		event.Message = "done"
	case StatusSkipped:
		event.Type = EventStepSkipped
		event.Message = "already satisfied"
	case StatusPlanned:
		event.Type = EventStepPlanned
		event.Message = "would run"
	case StatusFailed:
		event.Type = EventStepFailed
		event.Message = fmt.Sprintf("failed: %v", result.Err)
		event.Fields["policy"] = string(result.Policy)
		event.Fields["remediation"] = result.Remediation
	}
	if result.Reason != "" {
		event.Fields["reason"] = result.Reason
	}

	observer.Event(event)
}
