// Package metrics holds the Prometheus instruments of the compliance pipeline.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "zodiac"

type Metrics struct {
	AlertsEmitted   *prometheus.CounterVec
	SpinDecisions   *prometheus.CounterVec
	AuditEntries    prometheus.Counter
	AuditFlushes    *prometheus.CounterVec
	AuditQueued     prometheus.Gauge
	AuditDropped    prometheus.Counter
	ActivePipelines prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AlertsEmitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "compliance",
				Name:      "alerts_emitted_total",
				Help:      "Alerts emitted by the behavior monitor and the responsible gaming manager",
			},
			[]string{"source", "type"},
		),
		SpinDecisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "compliance",
				Name:      "spin_decisions_total",
				Help:      "Spin gate decisions by outcome",
			},
			[]string{"result"},
		),
		AuditEntries: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "audit",
				Name:      "entries_total",
				Help:      "Audit entries enqueued",
			},
		),
		AuditFlushes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "audit",
				Name:      "flushes_total",
				Help:      "Remote audit flush attempts by result",
			},
			[]string{"result"},
		),
		AuditQueued: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "audit",
				Name:      "queued_entries",
				Help:      "Audit entries waiting for the remote sink",
			},
		),
		AuditDropped: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "audit",
				Name:      "dropped_entries_total",
				Help:      "Audit entries given up on by the remote sink queue (they stay in the local backup)",
			},
		),
		ActivePipelines: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "compliance",
				Name:      "active_pipelines",
				Help:      "Players with a live compliance pipeline",
			},
		),
	}
}

func (m *Metrics) Alert(source, alertType string) {
	if m == nil {
		return
	}
	m.AlertsEmitted.WithLabelValues(source, alertType).Inc()
}

func (m *Metrics) SpinDecision(result string) {
	if m == nil {
		return
	}
	m.SpinDecisions.WithLabelValues(result).Inc()
}

func (m *Metrics) AuditEnqueued(n int) {
	if m == nil {
		return
	}
	m.AuditEntries.Add(float64(n))
	m.AuditQueued.Add(float64(n))
}

func (m *Metrics) AuditDequeued(n int) {
	if m == nil {
		return
	}
	m.AuditQueued.Sub(float64(n))
}

func (m *Metrics) AuditFlush(result string) {
	if m == nil {
		return
	}
	m.AuditFlushes.WithLabelValues(result).Inc()
}

func (m *Metrics) AuditDrop(n int) {
	if m == nil {
		return
	}
	m.AuditDropped.Add(float64(n))
}

func (m *Metrics) PipelineOpened() {
	if m == nil {
		return
	}
	m.ActivePipelines.Inc()
}

func (m *Metrics) PipelineClosed() {
	if m == nil {
		return
	}
	m.ActivePipelines.Dec()
}
