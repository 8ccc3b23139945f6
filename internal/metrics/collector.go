// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Collector aggregates Prometheus metrics for the coordination engine.
type Collector struct {
	gatewayRequestsTotal   *prometheus.CounterVec
	gatewayRequestDuration *prometheus.HistogramVec
	gatewayTokensUsed      *prometheus.CounterVec

	phaseRunsTotal    *prometheus.CounterVec
	phaseDuration     *prometheus.HistogramVec
	turnFailuresTotal *prometheus.CounterVec

	satisfactionScore    *prometheus.GaugeVec
	ratingFallbacksTotal prometheus.Counter
	improvementsTotal    *prometheus.CounterVec

	logger *zap.Logger
}

// NewCollector creates a collector registered against reg. A nil reg uses
// the default Prometheus registerer.
func NewCollector(namespace string, reg prometheus.Registerer, logger *zap.Logger) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	factory := promauto.With(reg)

	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.gatewayRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_requests_total",
			Help:      "Total number of model gateway requests",
		},
		[]string{"provider", "model", "status"},
	)

	c.gatewayRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gateway_request_duration_seconds",
			Help:      "Model gateway request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"provider", "model"},
	)

	c.gatewayTokensUsed = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_tokens_used_total",
			Help:      "Total number of tokens used",
		},
		[]string{"provider", "model", "type"},
	)

	c.phaseRunsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "phase_runs_total",
			Help:      "Total number of coordination phase runs",
		},
		[]string{"phase", "status"},
	)

	c.phaseDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "phase_duration_seconds",
			Help:      "Coordination phase duration in seconds",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"phase"},
	)

	c.turnFailuresTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turn_failures_total",
			Help:      "Agent turns skipped because the gateway call failed",
		},
		[]string{"phase"},
	)

	c.satisfactionScore = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "agent_satisfaction_score",
			Help:      "Latest satisfaction score per agent (1-10)",
		},
		[]string{"agent"},
	)

	c.ratingFallbacksTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rating_fallbacks_total",
			Help:      "Satisfaction ratings that fell back to the neutral default",
		},
	)

	c.improvementsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "agent_improvements_total",
			Help:      "Total number of agent instruction revisions",
		},
		[]string{"agent", "status"},
	)

	return c
}

// RecordGatewayRequest records a gateway round-trip.
func (c *Collector) RecordGatewayRequest(provider, model, status string, duration time.Duration) {
	c.gatewayRequestsTotal.WithLabelValues(provider, model, status).Inc()
	c.gatewayRequestDuration.WithLabelValues(provider, model).Observe(duration.Seconds())
}

// RecordTokens records token usage for a completion.
func (c *Collector) RecordTokens(provider, model string, prompt, completion int) {
	c.gatewayTokensUsed.WithLabelValues(provider, model, "prompt").Add(float64(prompt))
	c.gatewayTokensUsed.WithLabelValues(provider, model, "completion").Add(float64(completion))
}

// RecordPhase records a coordination phase run.
func (c *Collector) RecordPhase(phase, status string, duration time.Duration) {
	c.phaseRunsTotal.WithLabelValues(phase, status).Inc()
	c.phaseDuration.WithLabelValues(phase).Observe(duration.Seconds())
}

// RecordTurnFailure counts an agent turn skipped within a phase.
func (c *Collector) RecordTurnFailure(phase string) {
	c.turnFailuresTotal.WithLabelValues(phase).Inc()
}

// RecordSatisfaction updates the per-agent satisfaction gauge.
func (c *Collector) RecordSatisfaction(agent string, score int) {
	c.satisfactionScore.WithLabelValues(agent).Set(float64(score))
}

// RecordRatingFallback counts a rating that defaulted to neutral.
func (c *Collector) RecordRatingFallback() {
	c.ratingFallbacksTotal.Inc()
}

// RecordImprovement counts one instruction revision attempt.
func (c *Collector) RecordImprovement(agent, status string) {
	c.improvementsTotal.WithLabelValues(agent, status).Inc()
}
