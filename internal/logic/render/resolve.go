// Package render turns catalog ads into the single-language shape the SDK
// displays.
package render

import "github.com/patrickwarner/chatads/internal/models"

// Resolve flattens ad into lang, falling back to English for missing
// Japanese text. An empty lang means English. advertiserName is used as
// given; callers substitute models.UnknownAdvertiserName when the lookup
// fails. Static configs are copied through unlocalized.
func Resolve(ad models.Ad, advertiserName string, lang models.Language) models.ResolvedAd {
	if lang == "" {
		lang = models.LanguageEng
	}
	out := models.ResolvedAd{
		ID:             ad.ID,
		AdvertiserID:   ad.AdvertiserID,
		AdvertiserName: advertiserName,
		Format:         ad.Format(),
		Title:          ad.Title.In(lang),
		Description:    ad.Description.In(lang),
		CTAText:        ad.CTAText.In(lang),
		CTAURL:         ad.CTAURL,
	}

	switch c := ad.Clone().Config.(type) {
	case models.LeadGenConfig:
		out.LeadGenConfig = &models.ResolvedLeadGenConfig{
			Placeholder:      c.Placeholder.In(lang),
			SubmitButtonText: c.SubmitButtonText.In(lang),
			AutocompleteType: c.AutocompleteType,
			SuccessMessage:   c.SuccessMessage.In(lang),
		}
	case models.StaticConfig:
		out.StaticConfig = &c
	case models.FollowupConfig:
		out.FollowupConfig = &models.ResolvedFollowupConfig{
			QuestionText: c.QuestionText.In(lang),
			TapAction:    c.TapAction,
			TapActionURL: c.TapActionURL,
		}
	}
	return out
}

// AdvertiserName returns name, or the placeholder shown for unknown owners.
func AdvertiserName(name string, err error) string {
	if err != nil || name == "" {
		return models.UnknownAdvertiserName
	}
	return name
}
