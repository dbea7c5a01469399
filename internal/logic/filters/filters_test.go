package filters

import (
	"testing"

	"github.com/patrickwarner/chatads/internal/models"
)

func testAds() []models.Ad {
	return []models.Ad{
		{ID: "card", AdvertiserID: "adv1", Status: models.AdStatusActive},
		{ID: "lead", AdvertiserID: "adv1", Status: models.AdStatusActive, Config: models.LeadGenConfig{AutocompleteType: models.AutocompleteEmail}},
		{ID: "static", AdvertiserID: "adv2", Status: models.AdStatusActive, Config: models.StaticConfig{DisplayPosition: models.PositionTop}},
		{ID: "paused", AdvertiserID: "adv2", Status: models.AdStatusPaused},
		{ID: "archived", AdvertiserID: "adv1", Status: models.AdStatusArchived, Config: models.StaticConfig{DisplayPosition: models.PositionTop}},
	}
}

func idsOf(ads []models.Ad) []string {
	var out []string
	for _, a := range ads {
		out = append(out, a.ID)
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFilterByActive(t *testing.T) {
	got := idsOf(FilterByActive(testAds()))
	if want := []string{"card", "lead", "static"}; !equal(got, want) {
		t.Fatalf("FilterByActive = %v, want %v", got, want)
	}
}

func TestFilterByFormats(t *testing.T) {
	tests := []struct {
		name    string
		formats []models.Format
		want    []string
	}{
		{"no filter", nil, []string{"card", "lead", "static", "paused", "archived"}},
		{"static only", []models.Format{models.FormatStatic}, []string{"static", "archived"}},
		{"card and lead", []models.Format{models.FormatActionCard, models.FormatLeadGen}, []string{"card", "lead", "paused"}},
		{"unmatched", []models.Format{models.FormatFollowup}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := idsOf(FilterByFormats(testAds(), tt.formats))
			if !equal(got, tt.want) {
				t.Errorf("FilterByFormats = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEligible(t *testing.T) {
	got := idsOf(Eligible(testAds(), []models.Format{models.FormatStatic}))
	if want := []string{"static"}; !equal(got, want) {
		t.Fatalf("Eligible = %v, want %v", got, want)
	}
}
