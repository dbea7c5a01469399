package api

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/patrickwarner/chatads/internal/models"
)

// memStore is an in-memory Store for handler tests.
type memStore struct {
	mu          sync.Mutex
	next        int
	advertisers map[string]models.Advertiser
	ads         map[string]models.Ad
	requests    []models.RequestRecord
	events      []models.Event
	audits      []models.AuditLog
	eventErr    error
}

var _ Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		advertisers: make(map[string]models.Advertiser),
		ads:         make(map[string]models.Ad),
	}
}

func (m *memStore) id(prefix string) string {
	m.next++
	return fmt.Sprintf("%s-%03d", prefix, m.next)
}

func (m *memStore) LoadAds(context.Context) ([]models.Ad, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Ad, 0, len(m.ads))
	for _, ad := range m.ads {
		out = append(out, ad.Clone())
	}
	return out, nil
}

func (m *memStore) LoadAdvertisers(context.Context) ([]models.Advertiser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Advertiser, 0, len(m.advertisers))
	for _, adv := range m.advertisers {
		out = append(out, adv)
	}
	return out, nil
}

func (m *memStore) CreateAdvertiser(_ context.Context, adv models.Advertiser) (models.Advertiser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if adv.ID == "" {
		adv.ID = m.id("adv")
	}
	m.advertisers[adv.ID] = adv
	return adv, nil
}

func (m *memStore) GetAdvertiser(_ context.Context, id string) (models.Advertiser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	adv, ok := m.advertisers[id]
	if !ok {
		return models.Advertiser{}, models.ErrNotFound
	}
	return adv, nil
}

func (m *memStore) UpdateAdvertiser(_ context.Context, adv models.Advertiser) (models.Advertiser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.advertisers[adv.ID]; !ok {
		return models.Advertiser{}, models.ErrNotFound
	}
	m.advertisers[adv.ID] = adv
	return adv, nil
}

func (m *memStore) ListAdvertisers(_ context.Context, p models.ListAdvertisersParams) (models.Page[models.Advertiser], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Advertiser
	for _, adv := range m.advertisers {
		if p.Status != "" && adv.Status != p.Status {
			continue
		}
		if p.Cursor != "" && adv.ID <= p.Cursor {
			continue
		}
		out = append(out, adv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, p.Limit, func(a models.Advertiser) string { return a.ID }), nil
}

func (m *memStore) CreateAd(_ context.Context, ad models.Ad) (models.Ad, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ad.ID == "" {
		ad.ID = m.id("ad")
	}
	m.ads[ad.ID] = ad.Clone()
	return ad, nil
}

func (m *memStore) GetAd(_ context.Context, id string) (models.Ad, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ad, ok := m.ads[id]
	if !ok {
		return models.Ad{}, models.ErrNotFound
	}
	return ad.Clone(), nil
}

func (m *memStore) UpdateAd(_ context.Context, ad models.Ad) (models.Ad, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.ads[ad.ID]; !ok {
		return models.Ad{}, models.ErrNotFound
	}
	m.ads[ad.ID] = ad.Clone()
	return ad, nil
}

func (m *memStore) ListAds(_ context.Context, p models.ListAdsParams) (models.Page[models.AdWithAdvertiser], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.AdWithAdvertiser
	for _, ad := range m.ads {
		if p.Status != "" && ad.Status != p.Status {
			continue
		}
		if p.AdvertiserID != "" && ad.AdvertiserID != p.AdvertiserID {
			continue
		}
		if p.Tag != "" && !slices.Contains(ad.Tags, p.Tag) {
			continue
		}
		if p.Cursor != "" && ad.ID <= p.Cursor {
			continue
		}
		out = append(out, models.AdWithAdvertiser{Ad: ad, AdvertiserName: m.advertisers[ad.AdvertiserID].Name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, p.Limit, func(a models.AdWithAdvertiser) string { return a.ID }), nil
}

func (m *memStore) PauseActiveAds(_ context.Context, advertiserID, actor string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id, ad := range m.ads {
		if ad.AdvertiserID == advertiserID && ad.Status == models.AdStatusActive {
			ad.Status = models.AdStatusPaused
			ad.Meta.UpdatedBy = actor
			m.ads[id] = ad
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *memStore) InsertRequest(_ context.Context, rec models.RequestRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, rec)
	return nil
}

func (m *memStore) InsertEvent(_ context.Context, ev models.Event) (models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.eventErr != nil {
		return models.Event{}, m.eventErr
	}
	ev.ID = m.id("ev")
	ev.CreatedAt = time.Now()
	m.events = append(m.events, ev)
	return ev, nil
}

func (m *memStore) InsertAudit(_ context.Context, entry models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audits = append(m.audits, entry)
	return nil
}

func (m *memStore) RecentSuccessfulContexts(_ context.Context, userID string, limit int) ([]models.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.HistoryEntry
	for i := len(m.requests) - 1; i >= 0 && len(out) < limit; i-- {
		rec := m.requests[i]
		if rec.UserID == userID && rec.Status == models.RequestSuccess && rec.ContextText != "" {
			out = append(out, models.HistoryEntry{ContextText: rec.ContextText})
		}
	}
	return out, nil
}

func (m *memStore) lastRequest() models.RequestRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return models.RequestRecord{}
	}
	return m.requests[len(m.requests)-1]
}

func (m *memStore) lastAudit() models.AuditLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.audits) == 0 {
		return models.AuditLog{}
	}
	return m.audits[len(m.audits)-1]
}

func page[T any](items []T, limit int, id func(T) string) models.Page[T] {
	if items == nil {
		items = []T{}
	}
	if len(items) <= limit {
		return models.Page[T]{Items: items}
	}
	items = items[:limit]
	return models.Page[T]{Items: items, NextCursor: id(items[len(items)-1])}
}
