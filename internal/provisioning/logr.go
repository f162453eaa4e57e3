package provisioning

import (
	"fmt"
	"io"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
)

// LogrObserver implements Observer on top of a logr.Logger.
type LogrObserver struct {
	logger logr.Logger
	fields map[string]string
}

// NewLogrObserver wraps logger.
func NewLogrObserver(logger logr.Logger) *LogrObserver {
	return &LogrObserver{logger: logger, fields: make(map[string]string)}
}

// NewJSONObserver writes one JSON object per event to w.
// Verbosity 1 includes step.started and progress events.
func NewJSONObserver(w io.Writer, verbosity int) *LogrObserver {
	logger := funcr.NewJSON(func(obj string) {
		_, _ = fmt.Fprintln(w, obj)
	}, funcr.Options{
		LogTimestamp: true,
		Verbosity:    verbosity,
	})
	return NewLogrObserver(logger.WithName("erpdeploy"))
}

// Printf implements Logger.
func (o *LogrObserver) Printf(format string, v ...interface{}) {
	o.logger.Info(fmt.Sprintf(format, v...), o.keysAndValues(nil)...)
}

// Event implements Observer.
func (o *LogrObserver) Event(event Event) {
	kv := []interface{}{"event", string(event.Type)}
	if event.Step != "" {
		kv = append(kv, "step", event.Step)
	}
	if event.Resource != "" {
		kv = append(kv, "resource", event.Resource)
	}
	kv = append(kv, o.keysAndValues(event.Fields)...)

	switch {
	case event.Type.IsFailure():
		o.logger.Error(nil, event.Message, kv...)
	case event.Type == EventStepStarted:
		o.logger.V(1).Info(event.Message, kv...)
	default:
		o.logger.Info(event.Message, kv...)
	}
}

// Progress implements Observer.
func (o *LogrObserver) Progress(step string, current, total int) {
	o.logger.V(1).Info("progress", "step", step, "current", current, "total", total)
}

// WithFields implements Observer.
func (o *LogrObserver) WithFields(fields map[string]string) Observer {
	return &LogrObserver{
		logger: o.logger,
		fields: combineFields(o.fields, fields),
	}
}

func (o *LogrObserver) keysAndValues(eventFields map[string]string) []interface{} {
	merged := combineFields(o.fields, eventFields)
	kv := make([]interface{}, 0, 2*len(merged))
	for _, k := range sortedKeys(merged) {
		kv = append(kv, k, merged[k])
	}
	return kv
}
