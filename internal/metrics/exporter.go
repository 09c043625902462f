// Package metrics exports quality gate results in the Prometheus text format,
// for pickup by the node_exporter textfile collector on CI hosts.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ludo-technologies/sqgate/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sqgate"

// Exporter holds the gauges for one evaluation pass on a private registry
type Exporter struct {
	registry *prometheus.Registry

	gatePassed      *prometheus.GaugeVec
	conditions      *prometheus.GaugeVec
	conditionFailed *prometheus.GaugeVec
	duration        *prometheus.GaugeVec
	lastEvaluation  *prometheus.GaugeVec
}

// NewExporter creates an exporter with its own registry
func NewExporter() *Exporter {
	e := &Exporter{
		registry: prometheus.NewRegistry(),
		gatePassed: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "quality_gate_passed",
				Help:      "1 when the project's quality gate passed, 0 otherwise",
			},
			[]string{"project", "branch", "gate"},
		),
		conditions: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "quality_gate_conditions",
				Help:      "Number of evaluated conditions by outcome",
			},
			[]string{"project", "branch", "gate", "outcome"},
		),
		conditionFailed: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "condition_failed",
				Help:      "1 when the condition on the metric failed, 0 otherwise",
			},
			[]string{"project", "branch", "metric"},
		),
		duration: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "evaluation_duration_seconds",
				Help:      "Time taken by the evaluation pass",
			},
			[]string{"project", "branch"},
		),
		lastEvaluation: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_evaluation_timestamp_seconds",
				Help:      "Unix time of the evaluation pass",
			},
			[]string{"project", "branch"},
		),
	}

	e.registry.MustRegister(e.gatePassed, e.conditions, e.conditionFailed, e.duration, e.lastEvaluation)
	return e
}

// Record sets the gauges from a finished report
func (e *Exporter) Record(report *domain.QualityGateReport) {
	gate := ""
	if report.QualityGate != nil {
		gate = report.QualityGate.Name
	}
	summary := report.Summarize()

	e.gatePassed.WithLabelValues(report.ProjectKey, report.Branch, gate).Set(boolToFloat(summary.Passed))
	e.conditions.WithLabelValues(report.ProjectKey, report.Branch, gate, "failed").Set(float64(summary.FailedConditions))
	e.conditions.WithLabelValues(report.ProjectKey, report.Branch, gate, "passed").Set(float64(summary.PassedConditions))

	if report.Status != nil {
		for _, c := range report.Status.Conditions {
			e.conditionFailed.WithLabelValues(report.ProjectKey, report.Branch, c.MetricKey).Set(boolToFloat(!c.Passed))
		}
	}

	e.duration.WithLabelValues(report.ProjectKey, report.Branch).Set(float64(report.DurationMs) / 1000)
	if ts, err := time.Parse(time.RFC3339, report.GeneratedAt); err == nil {
		e.lastEvaluation.WithLabelValues(report.ProjectKey, report.Branch).Set(float64(ts.Unix()))
	}
}

// WriteTextfile atomically writes the recorded gauges to path
func (e *Exporter) WriteTextfile(path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return domain.NewOutputError(fmt.Sprintf("cannot create metrics directory %s", dir), err)
		}
	}
	if err := prometheus.WriteToTextfile(path, e.registry); err != nil {
		return domain.NewOutputError(fmt.Sprintf("cannot write metrics file %s", path), err)
	}
	return nil
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
