package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RetriesTotal    *prometheus.CounterVec

	PacingWaitSeconds prometheus.Histogram

	RedactionsTotal *prometheus.CounterVec
}

// New регистрирует коллекторы в переданном регистре.
// Библиотека не трогает prometheus.DefaultRegisterer сама.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		RequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gemini_requests_total",
				Help: "Total number of generateContent dispatches",
			},
			[]string{"model", "status"},
		),
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gemini_request_duration_seconds",
				Help:    "generateContent round trip duration in seconds",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"model"},
		),
		RetriesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gemini_retries_total",
				Help: "Total number of retries after upstream 429",
			},
			[]string{"model"},
		),
		PacingWaitSeconds: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "gemini_pacing_wait_seconds",
				Help:    "Time spent waiting on the client-side pacing gate",
				Buckets: []float64{0.1, 0.5, 1, 2, 3, 5},
			},
		),
		RedactionsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gemini_moderation_redactions_total",
				Help: "Total number of moderation redactions by category",
			},
			[]string{"category"},
		),
	}
}

// методы безопасны на nil, чтобы клиент без метрик не ветвился

func (m *Metrics) RecordRequest(model, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(model, status).Inc()
	m.RequestDuration.WithLabelValues(model).Observe(duration.Seconds())
}

func (m *Metrics) RecordRetry(model string) {
	if m == nil {
		return
	}
	m.RetriesTotal.WithLabelValues(model).Inc()
}

func (m *Metrics) RecordPacingWait(d time.Duration) {
	if m == nil {
		return
	}
	m.PacingWaitSeconds.Observe(d.Seconds())
}

func (m *Metrics) RecordRedactions(category string, n int) {
	if m == nil {
		return
	}
	m.RedactionsTotal.WithLabelValues(category).Add(float64(n))
}
