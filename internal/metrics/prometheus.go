package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the gameplan pipeline

var (
	// Build metrics
	BuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gameplan_builds_total",
			Help: "Total number of pipeline build runs",
		},
		[]string{"stage", "status"},
	)

	BuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gameplan_build_duration_seconds",
			Help:    "Duration of pipeline build runs in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"stage"},
	)

	RowsInserted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gameplan_rows_inserted_total",
			Help: "Total rows inserted by pipeline builds",
		},
		[]string{"stage"},
	)

	RowsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gameplan_rows_skipped_total",
			Help: "Total rows skipped by pipeline builds",
		},
		[]string{"stage"},
	)

	// Model metrics
	ModelAccuracy = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gameplan_model_accuracy",
			Help: "Held-out accuracy of the last trained model",
		},
	)

	ModelAUC = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gameplan_model_auc",
			Help: "Held-out ROC-AUC of the last trained model",
		},
	)

	ModelTrainedTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gameplan_model_trained_timestamp",
			Help: "Unix timestamp of the last successful training run",
		},
	)

	// Request metrics
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gameplan_predictions_total",
			Help: "Total win-probability predictions served",
		},
		[]string{"status"},
	)

	GameplansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gameplan_gameplans_total",
			Help: "Total gameplans generated",
		},
		[]string{"status"},
	)

	// Cache metrics
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gameplan_cache_hits_total",
			Help: "Total number of cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gameplan_cache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gameplan_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gameplan_system_uptime_seconds",
			Help: "System uptime in seconds",
		},
	)
)

// RecordBuild records a pipeline build run
func RecordBuild(stage, status string, duration float64, inserted, skipped int) {
	BuildsTotal.WithLabelValues(stage, status).Inc()
	BuildDuration.WithLabelValues(stage).Observe(duration)
	RowsInserted.WithLabelValues(stage).Add(float64(inserted))
	RowsSkipped.WithLabelValues(stage).Add(float64(skipped))
}

// RecordTraining records a successful training run
func RecordTraining(accuracy, auc float64) {
	ModelAccuracy.Set(accuracy)
	ModelAUC.Set(auc)
	ModelTrainedTimestamp.SetToCurrentTime()
}

// RecordPrediction records a served prediction
func RecordPrediction(status string) {
	PredictionsTotal.WithLabelValues(status).Inc()
}

// RecordGameplan records a generated gameplan
func RecordGameplan(status string) {
	GameplansTotal.WithLabelValues(status).Inc()
}

// RecordCacheHit records a cache hit
func RecordCacheHit() {
	CacheHitsTotal.Inc()
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss() {
	CacheMissesTotal.Inc()
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}
