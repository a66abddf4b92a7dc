// Package metrics holds the Prometheus collectors for sessions and commands.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Command outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Collector owns a private registry so several collectors can coexist in tests.
type Collector struct {
	registry *prometheus.Registry

	commands         *prometheus.CounterVec
	commandDuration  *prometheus.HistogramVec
	sessions         prometheus.Gauge
	snapshotsDropped prometheus.Counter
}

// New registers the workflow collectors, plus the Go and process collectors,
// on a fresh registry.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "workflow",
				Name:      "commands_total",
				Help:      "Commands applied to session stores by outcome.",
			},
			[]string{"command", "outcome"},
		),
		commandDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "workflow",
				Name:      "command_duration_seconds",
				Help:      "Time spent applying a command.",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8),
			},
			[]string{"command"},
		),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "workflow",
			Name:      "sessions_active",
			Help:      "Open editor sessions.",
		}),
		snapshotsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "workflow",
			Name:      "snapshots_dropped_total",
			Help:      "Snapshots not delivered to a slow stream subscriber.",
		}),
	}

	c.registry.MustRegister(
		c.commands,
		c.commandDuration,
		c.sessions,
		c.snapshotsDropped,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// CommandApplied records one command execution.
func (c *Collector) CommandApplied(command, outcome string, took time.Duration) {
	c.commands.WithLabelValues(command, outcome).Inc()
	c.commandDuration.WithLabelValues(command).Observe(took.Seconds())
}

// SessionOpened increments the active session gauge.
func (c *Collector) SessionOpened() { c.sessions.Inc() }

// SessionClosed decrements the active session gauge.
func (c *Collector) SessionClosed() { c.sessions.Dec() }

// SnapshotDropped counts a snapshot a subscriber was too slow to receive.
func (c *Collector) SnapshotDropped() { c.snapshotsDropped.Inc() }

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
