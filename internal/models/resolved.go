package models

// ResolvedAd is the client-ready, single-language view of an ad returned by
// the decision endpoints.
type ResolvedAd struct {
	ID             string                  `json:"id"`
	AdvertiserID   string                  `json:"advertiserId"`
	AdvertiserName string                  `json:"advertiserName"`
	Format         Format                  `json:"format"`
	Title          string                  `json:"title"`
	Description    string                  `json:"description"`
	CTAText        string                  `json:"ctaText"`
	CTAURL         string                  `json:"ctaUrl"`
	LeadGenConfig  *ResolvedLeadGenConfig  `json:"leadGenConfig,omitempty"`
	StaticConfig   *StaticConfig           `json:"staticConfig,omitempty"`
	FollowupConfig *ResolvedFollowupConfig `json:"followupConfig,omitempty"`
}

// ResolvedLeadGenConfig is LeadGenConfig with text resolved to one language.
type ResolvedLeadGenConfig struct {
	Placeholder      string           `json:"placeholder"`
	SubmitButtonText string           `json:"submitButtonText"`
	AutocompleteType AutocompleteType `json:"autocompleteType"`
	SuccessMessage   string           `json:"successMessage"`
}

// ResolvedFollowupConfig is FollowupConfig with text resolved to one language.
type ResolvedFollowupConfig struct {
	QuestionText string    `json:"questionText"`
	TapAction    TapAction `json:"tapAction"`
	TapActionURL string    `json:"tapActionUrl,omitempty"`
}
