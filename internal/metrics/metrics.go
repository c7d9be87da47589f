// metrics — прикладные метрики Prometheus. Регистрируются в default registry,
// отдаются через promhttp.Handler() на /metrics.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "catalog"

// Исходы загрузки листинга.
const (
	OutcomeOK         = "ok"
	OutcomeError      = "error"
	OutcomeSuperseded = "superseded"
)

var (
	// BackendRequests — исходящие вызовы к REST-бэкенду.
	BackendRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "backend",
		Name:      "requests_total",
		Help:      "Outbound backend requests by endpoint and status class.",
	}, []string{"endpoint", "class"})

	BackendDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "backend",
		Name:      "request_duration_seconds",
		Help:      "Outbound backend request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint"})

	// ListingLoads — исходы Catalog.Load.
	ListingLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "listing",
		Name:      "loads_total",
		Help:      "Listing loads by outcome.",
	}, []string{"outcome"})

	// SessionFallbacks — сколько раз сессия осталась на сохранённом пользователе
	// после неудачного /auth/me.
	SessionFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "session",
		Name:      "stale_fallbacks_total",
		Help:      "Refresh failures answered with the persisted user.",
	})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Inbound HTTP requests by method, route and status class.",
	}, []string{"method", "route", "class"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Inbound HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// StatusClass сводит код ответа к классу "2xx".."5xx"; 0 — транспортная ошибка ("error").
func StatusClass(code int) string {
	if code <= 0 {
		return "error"
	}

	return strconv.Itoa(code/100) + "xx"
}
