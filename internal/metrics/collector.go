// Package metrics exposes prometheus collectors for the simulation.
// A nil *Collector is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Request outcomes recorded for reasoning-service calls.
const (
	StatusOK       = "ok"
	StatusFallback = "fallback"
	StatusPanic    = "panic"
)

// Collector holds the simulation metrics.
type Collector struct {
	decisionRequests *prometheus.CounterVec
	decisionDuration *prometheus.HistogramVec

	outcomes      *prometheus.CounterVec
	revenue       *prometheus.CounterVec
	conversations prometheus.Counter
	collapses     prometheus.Counter

	ticks        prometheus.Counter
	tickDuration prometheus.Histogram
	simDay       prometheus.Gauge

	journalErrors *prometheus.CounterVec
}

// NewCollector registers the collectors on reg under namespace.
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		decisionRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "decision_requests_total",
				Help:      "Reasoning-service requests by kind and status",
			},
			[]string{"kind", "status"},
		),
		decisionDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "decision_request_duration_seconds",
				Help:      "Reasoning-service request duration in seconds",
				Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"kind"},
		),
		outcomes: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "action_outcomes_total",
				Help:      "Resolved agent actions by action and result",
			},
			[]string{"action", "result"},
		),
		revenue: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sales_revenue_total",
				Help:      "Money paid at each location",
			},
			[]string{"location"},
		),
		conversations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversations_total",
			Help:      "Conversations between co-located agents",
		}),
		collapses: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collapses_total",
			Help:      "Agents reset after running out of energy",
		}),
		ticks: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Simulation ticks completed",
		}),
		tickDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Wall time of one simulation tick",
			Buckets:   prometheus.DefBuckets,
		}),
		simDay: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sim_day",
			Help:      "Current simulation day",
		}),
		journalErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "journal_errors_total",
				Help:      "Failed journal writes by sink",
			},
			[]string{"sink"},
		),
	}
}

// RecordDecision records one reasoning-service request.
func (c *Collector) RecordDecision(kind, status string, d time.Duration) {
	if c == nil {
		return
	}
	c.decisionRequests.WithLabelValues(kind, status).Inc()
	c.decisionDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// RecordOutcome records one resolved action.
func (c *Collector) RecordOutcome(action string, success bool) {
	if c == nil {
		return
	}
	result := "failure"
	if success {
		result = "success"
	}
	c.outcomes.WithLabelValues(action, result).Inc()
}

// RecordSale adds paid money to a location's revenue.
func (c *Collector) RecordSale(location string, paid float64) {
	if c == nil || paid <= 0 {
		return
	}
	c.revenue.WithLabelValues(location).Add(paid)
}

// RecordConversation counts one conversation.
func (c *Collector) RecordConversation() {
	if c == nil {
		return
	}
	c.conversations.Inc()
}

// RecordCollapse counts one collapse reset.
func (c *Collector) RecordCollapse() {
	if c == nil {
		return
	}
	c.collapses.Inc()
}

// RecordTick records a completed tick.
func (c *Collector) RecordTick(day int, d time.Duration) {
	if c == nil {
		return
	}
	c.ticks.Inc()
	c.tickDuration.Observe(d.Seconds())
	c.simDay.Set(float64(day))
}

// RecordJournalError counts a failed journal write.
func (c *Collector) RecordJournalError(sink string) {
	if c == nil {
		return
	}
	c.journalErrors.WithLabelValues(sink).Inc()
}
