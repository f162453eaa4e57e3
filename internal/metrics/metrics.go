// Package metrics exports the outcome of a provisioning run in Prometheus
// text format, for the node-exporter textfile collector.
package metrics

import (
	"bytes"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/imamik/erpdeploy/internal/provisioning"
)

// Recorder holds the run metrics in a private registry, so nothing leaks
// into the default one.
type Recorder struct {
	registry *prometheus.Registry

	stepsTotal   *prometheus.GaugeVec
	stepDuration *prometheus.GaugeVec
	runSuccess   prometheus.Gauge
	runDuration  prometheus.Gauge
	lastRun      prometheus.Gauge
	changedSteps prometheus.Gauge
}

// NewRecorder creates a recorder for one run against target.
func NewRecorder(target string) *Recorder {
	labels := prometheus.Labels{"target": target}
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		stepsTotal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   "erpdeploy",
			Subsystem:   "run",
			Name:        "steps",
			Help:        "Number of steps by status in the last run",
			ConstLabels: labels,
		}, []string{"status"}),
		stepDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   "erpdeploy",
			Subsystem:   "step",
			Name:        "duration_seconds",
			Help:        "Duration of each step in the last run",
			ConstLabels: labels,
		}, []string{"step", "status"}),
		runSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "erpdeploy",
			Subsystem:   "run",
			Name:        "success",
			Help:        "Whether the last run finished without a fatal failure (1) or not (0)",
			ConstLabels: labels,
		}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "erpdeploy",
			Subsystem:   "run",
			Name:        "duration_seconds",
			Help:        "Wall time of the last run",
			ConstLabels: labels,
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "erpdeploy",
			Subsystem:   "run",
			Name:        "last_timestamp_seconds",
			Help:        "Unix time the last run finished",
			ConstLabels: labels,
		}),
		changedSteps: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "erpdeploy",
			Subsystem:   "run",
			Name:        "changed_steps",
			Help:        "Number of steps that modified the host in the last run",
			ConstLabels: labels,
		}),
	}
	r.registry.MustRegister(r.stepsTotal, r.stepDuration, r.runSuccess, r.runDuration, r.lastRun, r.changedSteps)
	return r
}

// Record sets every metric from report.
func (r *Recorder) Record(report *provisioning.Report) {
	for _, status := range []provisioning.StepStatus{
		provisioning.StatusExecuted, provisioning.StatusSkipped,
		provisioning.StatusFailed, provisioning.StatusPlanned,
	} {
		r.stepsTotal.WithLabelValues(string(status)).Set(0)
	}
	for _, step := range report.Steps {
		r.stepsTotal.WithLabelValues(string(step.Status)).Inc()
		r.stepDuration.WithLabelValues(step.Step, string(step.Status)).Set(step.Duration.Seconds())
	}

	if report.Succeeded() {
		r.runSuccess.Set(1)
	} else {
		r.runSuccess.Set(0)
	}
	r.runDuration.Set(report.FinishedAt.Sub(report.StartedAt).Seconds())
	r.lastRun.Set(float64(report.FinishedAt.Unix()))
	r.changedSteps.Set(float64(report.Executed()))
}

// Gatherer exposes the registry, e.g. for prometheus.WriteToTextfile.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Encode renders the metrics in the text exposition format.
func (r *Recorder) Encode() ([]byte, error) {
	families, err := r.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("failed to gather metrics: %w", err)
	}
	var buf bytes.Buffer
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(&buf, mf); err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", mf.GetName(), err)
		}
	}
	return buf.Bytes(), nil
}
