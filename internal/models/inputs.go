package models

// CreateAdvertiserInput is the admin payload for a new advertiser.
type CreateAdvertiserInput struct {
	Name       string           `json:"name" validate:"required,min=1,max=200"`
	Status     AdvertiserStatus `json:"status" validate:"omitempty,oneof=active suspended"`
	WebsiteURL string           `json:"websiteUrl" validate:"omitempty,https_url"`
}

// Validate checks the input and applies defaults.
func (in *CreateAdvertiserInput) Validate() error {
	if err := ValidateStruct(in); err != nil {
		return err
	}
	if in.Status == "" {
		in.Status = AdvertiserActive
	}
	return nil
}

// UpdateAdvertiserInput is a partial advertiser update. Nil fields are left unchanged.
// An empty WebsiteURL clears it.
type UpdateAdvertiserInput struct {
	Name       *string           `json:"name" validate:"omitempty,min=1,max=200"`
	Status     *AdvertiserStatus `json:"status" validate:"omitempty,oneof=active suspended"`
	WebsiteURL *string           `json:"websiteUrl" validate:"omitempty,https_url"`
}

func (in *UpdateAdvertiserInput) Validate() error {
	return ValidateStruct(in)
}

// Apply merges the update into adv.
func (in UpdateAdvertiserInput) Apply(adv *Advertiser) {
	if in.Name != nil {
		adv.Name = *in.Name
	}
	if in.Status != nil {
		adv.Status = *in.Status
	}
	if in.WebsiteURL != nil {
		adv.WebsiteURL = *in.WebsiteURL
	}
}

// Suspends reports whether the update moves the advertiser to suspended.
func (in UpdateAdvertiserInput) Suspends() bool {
	return in.Status != nil && *in.Status == AdvertiserSuspended
}

// CreateAdInput is the admin payload for a new ad. Exactly the config that
// matches Format must be supplied for non action-card formats.
type CreateAdInput struct {
	AdvertiserID   string          `json:"advertiserId" validate:"required"`
	Format         Format          `json:"format" validate:"omitempty,oneof=action_card lead_gen static followup"`
	Title          LocalizedText   `json:"title"`
	Description    LocalizedText   `json:"description"`
	CTAText        LocalizedText   `json:"ctaText"`
	CTAURL         string          `json:"ctaUrl" validate:"required,https_url"`
	Tags           []string        `json:"tags" validate:"min=1,max=20,dive,min=2,max=32,adtag"`
	Status         AdStatus        `json:"status" validate:"omitempty,oneof=active paused"`
	CPC            *float64        `json:"cpc" validate:"omitempty,gte=0.01,lte=100"`
	BaseCTR        *float64        `json:"baseCTR" validate:"omitempty,gte=0,lte=1"`
	LeadGenConfig  *LeadGenConfig  `json:"leadGenConfig"`
	StaticConfig   *StaticConfig   `json:"staticConfig"`
	FollowupConfig *FollowupConfig `json:"followupConfig"`
}

// Validate checks field rules and format/config consistency, then applies
// defaults (action_card, paused) and normalizes tags.
func (in *CreateAdInput) Validate() error {
	var msgs []string
	if err := ValidateStruct(in); err != nil {
		ve, ok := err.(*ValidationError)
		if !ok {
			return err
		}
		msgs = append(msgs, ve.Messages...)
	}
	if in.Format == "" {
		in.Format = FormatActionCard
	}
	if in.Status == "" {
		in.Status = AdStatusPaused
	}
	if _, err := pickConfig(in.Format, in.LeadGenConfig, in.StaticConfig, in.FollowupConfig); err != nil && in.Format.Valid() {
		msgs = append(msgs, err.Error())
	}
	msgs = append(msgs, followupMessages(in.FollowupConfig)...)
	if len(msgs) > 0 {
		return &ValidationError{Messages: msgs}
	}
	in.Tags = NormalizeTags(in.Tags)
	return nil
}

// ToAd builds the ad described by a validated input.
func (in CreateAdInput) ToAd() (Ad, error) {
	cfg, err := pickConfig(in.Format, in.LeadGenConfig, in.StaticConfig, in.FollowupConfig)
	if err != nil {
		return Ad{}, err
	}
	return Ad{
		AdvertiserID: in.AdvertiserID,
		Title:        in.Title,
		Description:  in.Description,
		CTAText:      in.CTAText,
		CTAURL:       in.CTAURL,
		Tags:         in.Tags,
		Status:       in.Status,
		CPC:          in.CPC,
		BaseCTR:      in.BaseCTR,
		Config:       cfg,
	}, nil
}

// UpdateAdInput is a partial ad update. Nil fields are left unchanged.
type UpdateAdInput struct {
	Format         *Format         `json:"format" validate:"omitempty,oneof=action_card lead_gen static followup"`
	Title          *LocalizedText  `json:"title"`
	Description    *LocalizedText  `json:"description"`
	CTAText        *LocalizedText  `json:"ctaText"`
	CTAURL         *string         `json:"ctaUrl" validate:"omitempty,https_url"`
	Tags           []string        `json:"tags" validate:"omitempty,min=1,max=20,dive,min=2,max=32,adtag"`
	Status         *AdStatus       `json:"status" validate:"omitempty,oneof=active paused archived"`
	CPC            *float64        `json:"cpc" validate:"omitempty,gte=0.01,lte=100"`
	BaseCTR        *float64        `json:"baseCTR" validate:"omitempty,gte=0,lte=1"`
	LeadGenConfig  *LeadGenConfig  `json:"leadGenConfig"`
	StaticConfig   *StaticConfig   `json:"staticConfig"`
	FollowupConfig *FollowupConfig `json:"followupConfig"`
}

func (in *UpdateAdInput) Validate() error {
	var msgs []string
	if err := ValidateStruct(in); err != nil {
		ve, ok := err.(*ValidationError)
		if !ok {
			return err
		}
		msgs = append(msgs, ve.Messages...)
	}
	msgs = append(msgs, followupMessages(in.FollowupConfig)...)
	if len(msgs) > 0 {
		return &ValidationError{Messages: msgs}
	}
	if in.Tags != nil {
		in.Tags = NormalizeTags(in.Tags)
	}
	return nil
}

// Apply returns ad with the update merged in. The resulting format must have
// a matching config, either supplied in the update or already on the ad.
func (in UpdateAdInput) Apply(ad Ad) (Ad, error) {
	out := ad.Clone()
	if in.Title != nil {
		out.Title = *in.Title
	}
	if in.Description != nil {
		out.Description = *in.Description
	}
	if in.CTAText != nil {
		out.CTAText = *in.CTAText
	}
	if in.CTAURL != nil {
		out.CTAURL = *in.CTAURL
	}
	if in.Tags != nil {
		out.Tags = in.Tags
	}
	if in.Status != nil {
		out.Status = *in.Status
	}
	if in.CPC != nil {
		out.CPC = in.CPC
	}
	if in.BaseCTR != nil {
		out.BaseCTR = in.BaseCTR
	}

	format := ad.Format()
	if in.Format != nil {
		format = *in.Format
	}
	lg, sc, fc := in.LeadGenConfig, in.StaticConfig, in.FollowupConfig
	// keep the existing variant when the update does not replace it
	switch c := ad.Config.(type) {
	case LeadGenConfig:
		if lg == nil {
			lg = &c
		}
	case StaticConfig:
		if sc == nil {
			sc = &c
		}
	case FollowupConfig:
		if fc == nil {
			fc = &c
		}
	}
	cfg, err := pickConfig(format, lg, sc, fc)
	if err != nil {
		return Ad{}, &ValidationError{Messages: []string{err.Error()}}
	}
	out.Config = cfg
	return out, nil
}

func followupMessages(fc *FollowupConfig) []string {
	if fc != nil && fc.TapAction == TapRedirect && fc.TapActionURL == "" {
		return []string{"tapActionUrl is required when tapAction is 'redirect'"}
	}
	return nil
}

// DecisionInput is the SDK payload for a conversational ad request.
type DecisionInput struct {
	AppID          string   `json:"appId" validate:"required"`
	ConversationID string   `json:"conversationId" validate:"required"`
	MessageID      string   `json:"messageId" validate:"required"`
	ContextText    string   `json:"contextText" validate:"required"`
	UserID         string   `json:"userId"`
	SDKVersion     string   `json:"sdkVersion"`
	Formats        []Format `json:"formats" validate:"omitempty,dive,oneof=action_card lead_gen static followup"`
}

func (in *DecisionInput) Validate() error {
	return ValidateStruct(in)
}

// StaticQuery holds the query parameters of a page-load ad request.
type StaticQuery struct {
	UserID      string   `json:"userId" validate:"required"`
	PublisherID string   `json:"publisherId" validate:"required"`
	Language    Language `json:"language" validate:"omitempty,oneof=eng jpn"`
	DeviceType  string   `json:"deviceType" validate:"omitempty,oneof=desktop mobile tablet"`
	Geo         string   `json:"geo"`
	Formats     []Format `json:"formats" validate:"omitempty,dive,oneof=action_card lead_gen static followup"`
}

func (q *StaticQuery) Validate() error {
	return ValidateStruct(q)
}

// EventInput is the SDK payload for an ad interaction.
type EventInput struct {
	Type           EventType  `json:"type" validate:"required,oneof=impression click submit tap"`
	AdID           string     `json:"adId" validate:"required"`
	AdvertiserID   string     `json:"advertiserId" validate:"required"`
	RequestID      string     `json:"requestId" validate:"required"`
	UserID         string     `json:"userId"`
	ConversationID string     `json:"conversationId"`
	AppID          string     `json:"appId"`
	SubmittedEmail string     `json:"submittedEmail" validate:"omitempty,email"`
	EventData      *EventData `json:"eventData"`
}

func (in *EventInput) Validate() error {
	return ValidateStruct(in)
}

// ToEvent converts a validated input into an Event without id or timestamp.
func (in EventInput) ToEvent() Event {
	return Event{
		Type:           in.Type,
		AdID:           in.AdID,
		AdvertiserID:   in.AdvertiserID,
		RequestID:      in.RequestID,
		UserID:         in.UserID,
		ConversationID: in.ConversationID,
		AppID:          in.AppID,
		SubmittedEmail: in.SubmittedEmail,
		EventData:      in.EventData,
	}
}

// DefaultPageLimit is the page size used when a list request omits limit.
const DefaultPageLimit = 20

// ListAdvertisersParams filters the advertiser list.
type ListAdvertisersParams struct {
	Q      string           `json:"q"`
	Status AdvertiserStatus `json:"status" validate:"omitempty,oneof=active suspended"`
	Limit  int              `json:"limit" validate:"min=1,max=100"`
	Cursor string           `json:"cursor"`
}

func (p *ListAdvertisersParams) Validate() error {
	if p.Limit == 0 {
		p.Limit = DefaultPageLimit
	}
	return ValidateStruct(p)
}

// ListAdsParams filters the ad list.
type ListAdsParams struct {
	Q            string   `json:"q"`
	Status       AdStatus `json:"status" validate:"omitempty,oneof=active paused archived"`
	AdvertiserID string   `json:"advertiserId"`
	Tag          string   `json:"tag"`
	Limit        int      `json:"limit" validate:"min=1,max=100"`
	Cursor       string   `json:"cursor"`
}

func (p *ListAdsParams) Validate() error {
	if p.Limit == 0 {
		p.Limit = DefaultPageLimit
	}
	return ValidateStruct(p)
}

// Page is one page of a cursor-paginated list.
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"nextCursor,omitempty"`
}
