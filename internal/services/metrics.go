package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// MetricsCollector exposes the service's business counters on /metrics.
type MetricsCollector struct {
	searches        *prometheus.CounterVec
	searchDuration  *prometheus.HistogramVec
	interactions    *prometheus.CounterVec
	ratings         *prometheus.CounterVec
	recommendations *prometheus.CounterVec
}

func NewMetricsCollector(logger *logrus.Logger) *MetricsCollector {
	mc := &MetricsCollector{
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sazon_searches_total",
			Help: "Number of fuzzy search requests by mode",
		}, []string{"mode"}),
		searchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sazon_search_duration_seconds",
			Help:    "Fuzzy search scoring latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"mode"}),
		interactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sazon_interactions_total",
			Help: "Number of recorded preference interactions by type",
		}, []string{"type"}),
		ratings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sazon_ratings_total",
			Help: "Number of rating mutations by operation",
		}, []string{"operation"}),
		recommendations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sazon_recommendations_total",
			Help: "Number of recommendation rankings by algorithm",
		}, []string{"algorithm"}),
	}

	collectors := []prometheus.Collector{
		mc.searches, mc.searchDuration, mc.interactions, mc.ratings, mc.recommendations,
	}
	for _, c := range collectors {
		if err := prometheus.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				logger.WithError(err).Warn("Failed to register metrics collector")
			}
		}
	}

	return mc
}

func (m *MetricsCollector) ObserveSearch(mode string, d time.Duration) {
	m.searches.WithLabelValues(mode).Inc()
	m.searchDuration.WithLabelValues(mode).Observe(d.Seconds())
}

func (m *MetricsCollector) CountInteraction(interactionType string) {
	m.interactions.WithLabelValues(interactionType).Inc()
}

func (m *MetricsCollector) CountRating(operation string) {
	m.ratings.WithLabelValues(operation).Inc()
}

func (m *MetricsCollector) CountRecommendation(algorithm string) {
	m.recommendations.WithLabelValues(algorithm).Inc()
}
