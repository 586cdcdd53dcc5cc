package server

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exports recommendation counts and latency.
type Metrics struct {
	recommendations *prometheus.CounterVec
	duration        *prometheus.HistogramVec
}

// NewMetrics registers the recommendation collectors on reg.
func NewMetrics(namespace string, reg prometheus.Registerer) (*Metrics, error) {
	if namespace == "" {
		namespace = "menu_recommender"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		recommendations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendations_total",
			Help:      "Recommendation requests by target mode and outcome.",
		}, []string{"mode", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recommendation_duration_seconds",
			Help:      "Time to load the catalog and score candidates.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"mode"}),
	}
	if err := reg.Register(m.recommendations); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return nil, fmt.Errorf("register recommendation metric: %w", err)
		}
		m.recommendations = are.ExistingCollector.(*prometheus.CounterVec)
	}
	if err := reg.Register(m.duration); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return nil, fmt.Errorf("register recommendation metric: %w", err)
		}
		m.duration = are.ExistingCollector.(*prometheus.HistogramVec)
	}
	return m, nil
}

// RecordRecommendation counts one request. outcome is found, none or error.
func (m *Metrics) RecordRecommendation(mode, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.recommendations.WithLabelValues(mode, outcome).Inc()
	m.duration.WithLabelValues(mode).Observe(d.Seconds())
}
