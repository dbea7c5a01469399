package ratelimit

import (
	"fmt"
	"sync"
	"time"

	"github.com/patrickwarner/chatads/internal/observability"
)

const (
	// OverflowKey is the shared bucket, and metric label, for app ids seen
	// while the limiter is tracking MaxBuckets apps.
	OverflowKey = "_overflow"

	DefaultMaxBuckets = 10000
	DefaultIdleTTL    = 10 * time.Minute
)

// Config holds the per-app bucket settings.
type Config struct {
	Capacity   int  // burst allowance
	RefillRate int  // sustained requests per second
	Enabled    bool // false admits everything

	MaxBuckets int           // tracked app ids, DefaultMaxBuckets when zero
	IdleTTL    time.Duration // unused buckets are evicted after this, DefaultIdleTTL when zero
}

// AppLimiter keeps one lazily created bucket per app id.
type AppLimiter struct {
	buckets   map[string]*TokenBucket
	mu        sync.RWMutex
	config    Config
	metrics   observability.MetricsRegistry
	now       func() time.Time
	lastSweep time.Time
}

// NewAppLimiter returns a limiter. A nil metrics registry records nothing.
func NewAppLimiter(config Config, metrics observability.MetricsRegistry) *AppLimiter {
	if metrics == nil {
		metrics = observability.NewNoOpRegistry()
	}
	if config.MaxBuckets <= 0 {
		config.MaxBuckets = DefaultMaxBuckets
	}
	if config.IdleTTL <= 0 {
		config.IdleTTL = DefaultIdleTTL
	}
	return &AppLimiter{
		buckets: make(map[string]*TokenBucket),
		config:  config,
		metrics: metrics,
		now:     time.Now,
	}
}

// Allow reports whether a request from appID may proceed.
func (l *AppLimiter) Allow(appID string) bool {
	if l == nil || !l.config.Enabled {
		return true
	}

	l.mu.RLock()
	bucket, ok := l.buckets[appID]
	l.mu.RUnlock()
	key := appID
	if !ok {
		key, bucket = l.bucketFor(appID)
	}

	if bucket.Allow() {
		return true
	}
	l.metrics.IncrementRateLimitHits(key)
	return false
}

// bucketFor creates the bucket for a new app id. When the map is full
// after evicting idle buckets the app shares the overflow bucket.
func (l *AppLimiter) bucketFor(appID string) (string, *TokenBucket) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if b, ok := l.buckets[appID]; ok {
		return appID, b
	}
	now := l.now()
	if len(l.buckets) >= l.config.MaxBuckets || now.Sub(l.lastSweep) >= l.config.IdleTTL {
		l.evictIdleLocked(now)
	}

	key := appID
	if len(l.buckets) >= l.config.MaxBuckets {
		key = OverflowKey
		if b, ok := l.buckets[OverflowKey]; ok {
			return key, b
		}
	}
	b := newTokenBucket(l.config.Capacity, l.config.RefillRate, l.now)
	l.buckets[key] = b
	return key, b
}

func (l *AppLimiter) evictIdleLocked(now time.Time) {
	for id, b := range l.buckets {
		if now.Sub(b.LastUsed()) > l.config.IdleTTL {
			delete(l.buckets, id)
		}
	}
	l.lastSweep = now
}

// Stats returns a snapshot of per-app counters.
func (l *AppLimiter) Stats() map[string]Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make(map[string]Stats, len(l.buckets))
	for id, b := range l.buckets {
		hits, total := b.Stats()
		s := Stats{AppID: id, Hits: hits, Total: total}
		if total > 0 {
			s.HitRate = float64(hits) / float64(total)
		}
		out[id] = s
	}
	return out
}

// Stats describes the rate limiting of one app.
type Stats struct {
	AppID   string  `json:"appId"`
	Hits    int64   `json:"hits"`
	Total   int64   `json:"total"`
	HitRate float64 `json:"hitRate"`
}

func (s Stats) String() string {
	return fmt.Sprintf("app %s: %d/%d limited (%.2f%%)", s.AppID, s.Hits, s.Total, s.HitRate*100)
}
