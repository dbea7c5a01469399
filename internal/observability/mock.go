package observability

import (
	"sync"
	"time"
)

// CountingRegistry is a MetricsRegistry that keeps counters in memory so
// tests can assert which metrics were recorded.
type CountingRegistry struct {
	mu       sync.Mutex
	counters map[string]int
	catalog  int
}

// NewCountingRegistry returns an empty CountingRegistry.
func NewCountingRegistry() *CountingRegistry {
	return &CountingRegistry{counters: make(map[string]int)}
}

func (m *CountingRegistry) inc(key string) {
	m.mu.Lock()
	m.counters[key]++
	m.mu.Unlock()
}

// Count returns the number of times key was recorded. Keys are the metric
// family followed by its labels, joined by ":" (e.g. "decision:static:no_targeting_match").
func (m *CountingRegistry) Count(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[key]
}

// CatalogAds returns the last value passed to SetCatalogAds.
func (m *CountingRegistry) CatalogAds() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.catalog
}

func (m *CountingRegistry) IncrementRequests(endpoint, method, status string) {
	m.inc("request:" + endpoint + ":" + method + ":" + status)
}
func (m *CountingRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {}
func (m *CountingRegistry) IncrementDecisions(path, outcome string) {
	m.inc("decision:" + path + ":" + outcome)
}
func (m *CountingRegistry) IncrementLanguage(language string) { m.inc("language:" + language) }
func (m *CountingRegistry) IncrementTranslations(backend, result string) {
	m.inc("translation:" + backend + ":" + result)
}
func (m *CountingRegistry) RecordTranslationLatency(backend string, duration time.Duration) {}
func (m *CountingRegistry) IncrementEvent(eventType string)                                 { m.inc("event:" + eventType) }
func (m *CountingRegistry) IncrementRateLimitHits(appID string)                             { m.inc("ratelimit:" + appID) }
func (m *CountingRegistry) SetCatalogAds(count int) {
	m.mu.Lock()
	m.catalog = count
	m.mu.Unlock()
}
