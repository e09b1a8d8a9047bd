package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	readingsStored *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	lastGlucose    *prometheus.GaugeVec
	latency        *prometheus.HistogramVec
	alertsTotal    *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		readingsStored: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "glucopulse_readings_stored_total",
				Help: "Total number of readings written to a backend",
			},
			[]string{"backend", "source"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "glucopulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastGlucose: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "glucopulse_last_glucose_mg_dl",
				Help: "Last recorded glucose value for a user",
			},
			[]string{"user_id"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "glucopulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		alertsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "glucopulse_alerts_total",
				Help: "Total number of threshold alerts evaluated",
			},
			[]string{"trigger"},
		),
	}
}

// RecordReadingStored records a reading written to a backend.
func (r *Recorder) RecordReadingStored(backend, source string) {
	r.readingsStored.WithLabelValues(backend, source).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastGlucose records the last glucose value for a user.
func (r *Recorder) RecordLastGlucose(userID string, value float64) {
	r.lastGlucose.WithLabelValues(userID).Set(value)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordAlert records a fired alert by trigger.
func (r *Recorder) RecordAlert(trigger string) {
	r.alertsTotal.WithLabelValues(trigger).Inc()
}
