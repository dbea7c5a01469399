package db

import (
	"context"
	"fmt"

	"github.com/patrickwarner/chatads/internal/models"
)

// CatalogSource is the part of the store needed to build a serving snapshot.
type CatalogSource interface {
	LoadAds(ctx context.Context) ([]models.Ad, error)
	LoadAdvertisers(ctx context.Context) ([]models.Advertiser, error)
}

// ReloadCatalog reads every ad and advertiser from src and swaps them into
// catalog. The previous snapshot stays in place when either read fails.
// It returns the number of active ads now serving.
func ReloadCatalog(ctx context.Context, src CatalogSource, catalog *models.Catalog) (int, error) {
	advertisers, err := src.LoadAdvertisers(ctx)
	if err != nil {
		return 0, fmt.Errorf("load advertisers: %w", err)
	}
	ads, err := src.LoadAds(ctx)
	if err != nil {
		return 0, fmt.Errorf("load ads: %w", err)
	}
	catalog.Replace(ads, advertisers)
	return catalog.Len(), nil
}
