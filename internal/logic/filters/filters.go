// Package filters narrows candidate ad lists before scoring.
package filters

import (
	"slices"

	"github.com/patrickwarner/chatads/internal/models"
)

// FilterByActive keeps ads whose status is active.
func FilterByActive(ads []models.Ad) []models.Ad {
	var out []models.Ad
	for _, ad := range ads {
		if ad.Status == models.AdStatusActive {
			out = append(out, ad)
		}
	}
	return out
}

// FilterByFormats keeps ads whose format is listed. An empty list keeps all.
func FilterByFormats(ads []models.Ad, formats []models.Format) []models.Ad {
	if len(formats) == 0 {
		return ads
	}
	var out []models.Ad
	for _, ad := range ads {
		if slices.Contains(formats, ad.Format()) {
			out = append(out, ad)
		}
	}
	return out
}

// Eligible applies the serving filters: active status and requested formats.
func Eligible(ads []models.Ad, formats []models.Format) []models.Ad {
	return FilterByFormats(FilterByActive(ads), formats)
}
