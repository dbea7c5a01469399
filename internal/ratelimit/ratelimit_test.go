package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/patrickwarner/chatads/internal/observability"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func TestTokenBucketBurst(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	bucket := newTokenBucket(5, 1, clock.Now)

	for i := 0; i < 5; i++ {
		if !bucket.Allow() {
			t.Errorf("request %d should be allowed", i+1)
		}
	}
	if bucket.Allow() {
		t.Error("6th request should be blocked")
	}

	hits, total := bucket.Stats()
	if hits != 1 || total != 6 {
		t.Errorf("stats = (%d, %d), want (1, 6)", hits, total)
	}
}

func TestTokenBucketRefill(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	bucket := newTokenBucket(2, 10, clock.Now)
	bucket.Allow()
	bucket.Allow()
	if bucket.Allow() {
		t.Fatal("bucket should be empty")
	}

	clock.Advance(50 * time.Millisecond) // half a token
	if bucket.Allow() {
		t.Error("half a token should not admit a request")
	}
	clock.Advance(50 * time.Millisecond)
	if !bucket.Allow() {
		t.Error("a full token should have accrued")
	}

	clock.Advance(time.Hour)
	for i := 0; i < 2; i++ {
		if !bucket.Allow() {
			t.Errorf("refill should cap at capacity, request %d blocked", i+1)
		}
	}
	if bucket.Allow() {
		t.Error("refill must not exceed capacity")
	}
}

func TestAppLimiterIsolatesApps(t *testing.T) {
	metrics := observability.NewCountingRegistry()
	l := NewAppLimiter(Config{Capacity: 2, RefillRate: 1, Enabled: true}, metrics)
	clock := &fakeClock{t: time.Unix(0, 0)}
	l.now = clock.Now

	if !l.Allow("app-a") || !l.Allow("app-a") {
		t.Fatal("burst should be allowed")
	}
	if l.Allow("app-a") {
		t.Error("app-a should be limited")
	}
	if !l.Allow("app-b") {
		t.Error("app-b has its own bucket")
	}
	if got := metrics.Count("ratelimit:app-a"); got != 1 {
		t.Errorf("ratelimit hits for app-a = %d, want 1", got)
	}

	stats := l.Stats()
	if stats["app-a"].Hits != 1 || stats["app-a"].Total != 3 {
		t.Errorf("app-a stats = %+v", stats["app-a"])
	}
	if stats["app-b"].Hits != 0 {
		t.Errorf("app-b stats = %+v", stats["app-b"])
	}
}

func TestAppLimiterOverflow(t *testing.T) {
	metrics := observability.NewCountingRegistry()
	l := NewAppLimiter(Config{Capacity: 1, RefillRate: 0, Enabled: true, MaxBuckets: 2, IdleTTL: time.Hour}, metrics)
	clock := &fakeClock{t: time.Unix(0, 0)}
	l.now = clock.Now

	l.Allow("app-a")
	l.Allow("app-b")
	if !l.Allow("app-c") {
		t.Fatal("first overflow request should use a fresh overflow bucket")
	}
	if l.Allow("app-d") {
		t.Error("app-d shares the exhausted overflow bucket")
	}
	if got := metrics.Count("ratelimit:" + OverflowKey); got != 1 {
		t.Errorf("overflow hits = %d, want 1", got)
	}
	if got := metrics.Count("ratelimit:app-d"); got != 0 {
		t.Errorf("untracked app must not get its own label, got %d", got)
	}

	stats := l.Stats()
	if len(stats) != 3 {
		t.Errorf("tracked %d buckets, want 2 apps plus overflow", len(stats))
	}
	if _, ok := stats["app-c"]; ok {
		t.Error("app-c should not have its own bucket")
	}
}

func TestAppLimiterEvictsIdleBuckets(t *testing.T) {
	l := NewAppLimiter(Config{Capacity: 5, RefillRate: 1, Enabled: true, MaxBuckets: 2, IdleTTL: time.Minute}, nil)
	clock := &fakeClock{t: time.Unix(0, 0)}
	l.now = clock.Now

	l.Allow("old")
	clock.Advance(30 * time.Second)
	l.Allow("recent")
	clock.Advance(45 * time.Second)

	l.Allow("new")
	stats := l.Stats()
	if _, ok := stats["old"]; ok {
		t.Error("idle bucket should have been evicted")
	}
	for _, id := range []string{"recent", "new"} {
		if _, ok := stats[id]; !ok {
			t.Errorf("bucket %q missing after eviction", id)
		}
	}
	if _, ok := stats[OverflowKey]; ok {
		t.Error("eviction freed room, overflow bucket should not exist")
	}
}

func TestAppLimiterDisabled(t *testing.T) {
	l := NewAppLimiter(Config{Capacity: 1, RefillRate: 1, Enabled: false}, nil)
	for i := 0; i < 10; i++ {
		if !l.Allow("app") {
			t.Fatal("disabled limiter must admit all requests")
		}
	}
	var nilLimiter *AppLimiter
	if !nilLimiter.Allow("app") {
		t.Error("nil limiter must admit requests")
	}
}

func TestAppLimiterConcurrent(t *testing.T) {
	l := NewAppLimiter(Config{Capacity: 50, RefillRate: 0, Enabled: true}, nil)
	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("shared") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if allowed != 50 {
		t.Errorf("allowed %d requests, want 50", allowed)
	}
}

func TestStatsString(t *testing.T) {
	s := Stats{AppID: "x", Hits: 1, Total: 4, HitRate: 0.25}
	if got := s.String(); got != "app x: 1/4 limited (25.00%)" {
		t.Errorf("String() = %q", got)
	}
}
