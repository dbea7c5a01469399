package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// total requests per endpoint, method and status code
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatads_requests_total",
			Help: "Total API requests received",
		},
		[]string{"endpoint", "method", "status"},
	)

	// request latency in seconds per endpoint/method
	RequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chatads_request_duration_seconds",
			Help:    "Histogram of request latencies",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method"},
	)

	// decisions by path (context/static) and outcome (served or a reason code)
	DecisionCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatads_decisions_total",
			Help: "Total ad decisions by path and outcome",
		},
		[]string{"path", "outcome"},
	)

	LanguageCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatads_language_detected_total",
			Help: "Detected context languages",
		},
		[]string{"language"},
	)

	// translation attempts labelled by backend and result (translated|fallback|skipped)
	TranslationCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatads_translation_total",
			Help: "Translation attempts by backend and result",
		},
		[]string{"backend", "result"},
	)

	TranslationLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chatads_translation_duration_seconds",
			Help:    "Duration of translation backend calls",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"backend"},
	)

	// number of SDK events recorded, labelled by type
	EventCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatads_events_total",
			Help: "Total events recorded",
		},
		[]string{"type"},
	)

	RateLimitHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatads_rate_limit_hits_total",
			Help: "Total rate limited SDK requests per app",
		},
		[]string{"app"},
	)

	// active ads in the current catalog snapshot
	CatalogAds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chatads_catalog_ads",
			Help: "Active ads in the serving catalog",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestCount,
		RequestLatency,
		DecisionCount,
		LanguageCount,
		TranslationCount,
		TranslationLatency,
		EventCount,
		RateLimitHits,
		CatalogAds,
	)
}
