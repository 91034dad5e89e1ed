package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsService exposes the bank's operational metrics.
type MetricsService struct {
	operationsTotal    *prometheus.CounterVec
	dailyBatchDuration prometheus.Histogram
	dailyBatchAccounts prometheus.Gauge
	inflationRate      prometheus.Gauge
}

// NewMetricsService registers the bank metrics on the given registerer.
func NewMetricsService(reg prometheus.Registerer) *MetricsService {
	factory := promauto.With(reg)
	return &MetricsService{
		operationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bank_operations_total",
				Help: "Total number of banking operations by outcome",
			},
			[]string{"operation", "status", "code"},
		),
		dailyBatchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "bank_daily_batch_duration_milliseconds",
				Help:    "Daily batch processing duration in milliseconds",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
		dailyBatchAccounts: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "bank_daily_batch_accounts",
				Help: "Accounts processed by the last daily batch",
			},
		),
		inflationRate: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "bank_inflation_rate",
				Help: "Current inflation rate",
			},
		),
	}
}

// RecordOperation counts one operation outcome.
func (m *MetricsService) RecordOperation(operation string, ok bool, code string) {
	status := "rejected"
	if ok {
		status = "accepted"
	}
	m.operationsTotal.WithLabelValues(operation, status, code).Inc()
}

// ObserveDailyBatch records one daily batch run.
func (m *MetricsService) ObserveDailyBatch(elapsed time.Duration, accounts int) {
	m.dailyBatchDuration.Observe(float64(elapsed.Milliseconds()))
	m.dailyBatchAccounts.Set(float64(accounts))
}

// SetInflationRate publishes the current inflation rate.
func (m *MetricsService) SetInflationRate(rate float64) {
	m.inflationRate.Set(rate)
}
