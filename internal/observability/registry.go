package observability

import "time"

// MetricsRegistry records application metrics. Components receive it by
// injection so tests can pass NoOpRegistry or a recording fake.
type MetricsRegistry interface {
	// HTTP request metrics
	IncrementRequests(endpoint, method, status string)
	RecordRequestLatency(endpoint, method string, duration time.Duration)

	// Decision metrics
	IncrementDecisions(path, outcome string)
	IncrementLanguage(language string)

	// Translation metrics
	IncrementTranslations(backend, result string)
	RecordTranslationLatency(backend string, duration time.Duration)

	IncrementEvent(eventType string)
	IncrementRateLimitHits(appID string)
	SetCatalogAds(count int)
}

// PrometheusRegistry implements MetricsRegistry using the global Prometheus metrics
type PrometheusRegistry struct{}

// NewPrometheusRegistry creates a new PrometheusRegistry
func NewPrometheusRegistry() *PrometheusRegistry {
	return &PrometheusRegistry{}
}

func (r *PrometheusRegistry) IncrementRequests(endpoint, method, status string) {
	RequestCount.WithLabelValues(endpoint, method, status).Inc()
}

func (r *PrometheusRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {
	RequestLatency.WithLabelValues(endpoint, method).Observe(duration.Seconds())
}

func (r *PrometheusRegistry) IncrementDecisions(path, outcome string) {
	DecisionCount.WithLabelValues(path, outcome).Inc()
}

func (r *PrometheusRegistry) IncrementLanguage(language string) {
	LanguageCount.WithLabelValues(language).Inc()
}

func (r *PrometheusRegistry) IncrementTranslations(backend, result string) {
	TranslationCount.WithLabelValues(backend, result).Inc()
}

func (r *PrometheusRegistry) RecordTranslationLatency(backend string, duration time.Duration) {
	TranslationLatency.WithLabelValues(backend).Observe(duration.Seconds())
}

func (r *PrometheusRegistry) IncrementEvent(eventType string) {
	EventCount.WithLabelValues(eventType).Inc()
}

func (r *PrometheusRegistry) IncrementRateLimitHits(appID string) {
	RateLimitHits.WithLabelValues(appID).Inc()
}

func (r *PrometheusRegistry) SetCatalogAds(count int) {
	CatalogAds.Set(float64(count))
}

// NoOpRegistry implements MetricsRegistry with no-op methods for testing
type NoOpRegistry struct{}

// NewNoOpRegistry creates a new NoOpRegistry
func NewNoOpRegistry() *NoOpRegistry {
	return &NoOpRegistry{}
}

func (r *NoOpRegistry) IncrementRequests(endpoint, method, status string)                    {}
func (r *NoOpRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {}
func (r *NoOpRegistry) IncrementDecisions(path, outcome string)                              {}
func (r *NoOpRegistry) IncrementLanguage(language string)                                    {}
func (r *NoOpRegistry) IncrementTranslations(backend, result string)                         {}
func (r *NoOpRegistry) RecordTranslationLatency(backend string, duration time.Duration)      {}
func (r *NoOpRegistry) IncrementEvent(eventType string)                                      {}
func (r *NoOpRegistry) IncrementRateLimitHits(appID string)                                  {}
func (r *NoOpRegistry) SetCatalogAds(count int)                                              {}
