package recommender

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is safe to use as a nil pointer; nothing is recorded then.
type Metrics struct {
	predictions      *prometheus.CounterVec
	predictionTime   prometheus.Histogram
	upstreamRequests *prometheus.CounterVec
	upstreamTime     *prometheus.HistogramVec
}

// NewMetrics registers the collectors on reg (skipped when reg is nil).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crop_predictions_total",
			Help: "Prediction requests by outcome and predicted crop.",
		}, []string{"status", "crop"}),
		predictionTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "crop_prediction_duration_seconds",
			Help:    "End-to-end time of a prediction, enrichment included.",
			Buckets: []float64{.05, .1, .25, .5, 1, 2, 4, 8, 16},
		}),
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crop_upstream_requests_total",
			Help: "Calls to climate, humidity and inference upstreams.",
		}, []string{"upstream", "outcome"}),
		upstreamTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "crop_upstream_duration_seconds",
			Help:    "Latency of upstream calls.",
			Buckets: prometheus.DefBuckets,
		}, []string{"upstream"}),
	}
	if reg != nil {
		reg.MustRegister(m.predictions, m.predictionTime, m.upstreamRequests, m.upstreamTime)
	}
	return m
}

func (m *Metrics) observePrediction(status, crop string, d time.Duration) {
	if m == nil {
		return
	}
	m.predictions.WithLabelValues(status, crop).Inc()
	m.predictionTime.Observe(d.Seconds())
}

func (m *Metrics) observeUpstream(name, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.upstreamRequests.WithLabelValues(name, outcome).Inc()
	m.upstreamTime.WithLabelValues(name).Observe(d.Seconds())
}
