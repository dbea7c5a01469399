package models

import (
	"context"
	"errors"
	"sync/atomic"
)

// ErrNotFound is returned when an entity is not found in the data store
var ErrNotFound = errors.New("entity not found")

// ErrArchived is returned when an archived ad is edited.
var ErrArchived = errors.New("archived ads cannot be edited")

// catalogSnapshot is an immutable view of the serving catalog.
type catalogSnapshot struct {
	ads         []Ad             // active ads only
	byFormat    map[Format][]int // format -> indexes into ads
	advertisers map[string]Advertiser
}

// Catalog holds the serving set of active ads and advertiser names in memory.
// Readers never block: every reload swaps in a new snapshot atomically.
type Catalog struct {
	data atomic.Pointer[catalogSnapshot]
}

// NewCatalog creates an empty Catalog.
func NewCatalog() *Catalog {
	c := &Catalog{}
	c.data.Store(&catalogSnapshot{
		byFormat:    make(map[Format][]int),
		advertisers: make(map[string]Advertiser),
	})
	return c
}

// Replace installs a new snapshot. Ads that are not active are dropped.
func (c *Catalog) Replace(ads []Ad, advertisers []Advertiser) {
	snap := &catalogSnapshot{
		ads:         make([]Ad, 0, len(ads)),
		byFormat:    make(map[Format][]int),
		advertisers: make(map[string]Advertiser, len(advertisers)),
	}
	for _, ad := range ads {
		if ad.Status != AdStatusActive {
			continue
		}
		snap.byFormat[ad.Format()] = append(snap.byFormat[ad.Format()], len(snap.ads))
		snap.ads = append(snap.ads, ad.Clone())
	}
	for _, adv := range advertisers {
		snap.advertisers[adv.ID] = adv
	}
	c.data.Store(snap)
}

// Len returns the number of active ads in the current snapshot.
func (c *Catalog) Len() int {
	return len(c.data.Load().ads)
}

// ActiveAds returns copies of the active ads whose format is listed in
// formats, or every active ad when formats is empty.
func (c *Catalog) ActiveAds(_ context.Context, formats []Format) ([]Ad, error) {
	snap := c.data.Load()
	if len(formats) == 0 {
		out := make([]Ad, len(snap.ads))
		for i, ad := range snap.ads {
			out[i] = ad.Clone()
		}
		return out, nil
	}
	var out []Ad
	seen := make(map[Format]bool, len(formats))
	for _, f := range formats {
		if seen[f] {
			continue
		}
		seen[f] = true
		for _, idx := range snap.byFormat[f] {
			out = append(out, snap.ads[idx].Clone())
		}
	}
	return out, nil
}

// AdvertiserName returns the display name of the advertiser or ErrNotFound.
func (c *Catalog) AdvertiserName(_ context.Context, advertiserID string) (string, error) {
	adv, ok := c.data.Load().advertisers[advertiserID]
	if !ok {
		return "", ErrNotFound
	}
	return adv.Name, nil
}
