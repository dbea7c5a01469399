package db

import (
	"context"
	"errors"
	"testing"

	"github.com/patrickwarner/chatads/internal/models"
)

type fakeCatalogSource struct {
	ads         []models.Ad
	advertisers []models.Advertiser
	err         error
}

func (f fakeCatalogSource) LoadAds(context.Context) ([]models.Ad, error) { return f.ads, f.err }
func (f fakeCatalogSource) LoadAdvertisers(context.Context) ([]models.Advertiser, error) {
	return f.advertisers, nil
}

func TestReloadCatalog(t *testing.T) {
	cat := models.NewCatalog()
	src := fakeCatalogSource{
		ads: []models.Ad{
			{ID: "a1", AdvertiserID: "v1", Status: models.AdStatusActive, Tags: []string{"coffee"}},
			{ID: "a2", AdvertiserID: "v1", Status: models.AdStatusPaused},
			{ID: "a3", AdvertiserID: "v1", Status: models.AdStatusArchived},
		},
		advertisers: []models.Advertiser{{ID: "v1", Name: "Acme"}},
	}

	n, err := ReloadCatalog(context.Background(), src, cat)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if n != 1 {
		t.Fatalf("active ads = %d, want 1", n)
	}
	name, err := cat.AdvertiserName(context.Background(), "v1")
	if err != nil || name != "Acme" {
		t.Fatalf("advertiser name = %q, %v", name, err)
	}
}

func TestReloadCatalogKeepsSnapshotOnError(t *testing.T) {
	cat := models.NewCatalog()
	cat.Replace([]models.Ad{{ID: "keep", Status: models.AdStatusActive}}, nil)

	_, err := ReloadCatalog(context.Background(), fakeCatalogSource{err: errors.New("down")}, cat)
	if err == nil {
		t.Fatal("expected error")
	}
	if cat.Len() != 1 {
		t.Fatalf("snapshot replaced on error, len = %d", cat.Len())
	}
}
