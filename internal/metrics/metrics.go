package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gometeo/forecast/internal/model"
)

const namespace = "gometeo"

// FetchMetrics - счетчики запросов к провайдеру прогноза
type FetchMetrics struct {
	registry *prometheus.Registry

	FetchTotal    *prometheus.CounterVec
	FetchDuration prometheus.Histogram
	StaleTotal    prometheus.Counter
}

func New() *FetchMetrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &FetchMetrics{
		registry: reg,
		FetchTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecast_fetch_total",
			Help:      "Total number of forecast fetches by outcome.",
		}, []string{"outcome"}),
		FetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "forecast_fetch_duration_seconds",
			Help:      "Duration of forecast provider requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}),
		StaleTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecast_stale_responses_total",
			Help:      "Responses dropped because a newer request was issued.",
		}),
	}
}

// Observe подходит как viewmodel.Observer
func (m *FetchMetrics) Observe(o model.Outcome) {
	m.FetchDuration.Observe(o.Duration.Seconds())
	if o.Stale {
		m.StaleTotal.Inc()
		return
	}
	m.FetchTotal.WithLabelValues(OutcomeLabel(o)).Inc()
}

func OutcomeLabel(o model.Outcome) string {
	switch {
	case o.Success():
		return "success"
	case o.Reason == model.ReasonNetwork:
		return "network_error"
	default:
		return "not_found"
	}
}

func (m *FetchMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
