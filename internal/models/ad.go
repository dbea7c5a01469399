package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Format identifies how an ad is rendered by the SDK.
type Format string

const (
	FormatActionCard Format = "action_card" // Standard CTA card with title, description and button.
	FormatLeadGen    Format = "lead_gen"    // Email collection form.
	FormatStatic     Format = "static"      // Page-load placement served without conversation context.
	FormatFollowup   Format = "followup"    // Sponsored followup question.
)

// AllFormats lists every format in display order.
var AllFormats = []Format{FormatActionCard, FormatLeadGen, FormatStatic, FormatFollowup}

// Valid reports whether f is a known format.
func (f Format) Valid() bool {
	switch f {
	case FormatActionCard, FormatLeadGen, FormatStatic, FormatFollowup:
		return true
	}
	return false
}

// AdStatus is the ad lifecycle state. Only active ads are serving candidates.
type AdStatus string

const (
	AdStatusActive   AdStatus = "active"
	AdStatusPaused   AdStatus = "paused"
	AdStatusArchived AdStatus = "archived" // read-only, never served again
)

// Meta is the audit trail kept on every admin-managed entity.
type Meta struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	CreatedBy string    `json:"createdBy"`
	UpdatedBy string    `json:"updatedBy"`
}

// Ad is a single advertisement owned by an advertiser.
//
// Tags are stored lowercase and deduplicated. They are the only signal used
// for conversational matching. CPC and BaseCTR are stored for reporting and
// are not part of scoring.
type Ad struct {
	ID           string        `json:"id"`
	AdvertiserID string        `json:"advertiserId"`
	Title        LocalizedText `json:"title"`
	Description  LocalizedText `json:"description"`
	CTAText      LocalizedText `json:"ctaText"`
	CTAURL       string        `json:"ctaUrl"` // https only
	Tags         []string      `json:"tags"`
	Status       AdStatus      `json:"status"`
	CPC          *float64      `json:"cpc,omitempty"`
	BaseCTR      *float64      `json:"baseCTR,omitempty"`
	Meta         Meta          `json:"meta"`

	// Config holds the format-specific configuration and determines Format().
	Config FormatConfig `json:"-"`
}

// Format returns the ad's format, derived from its configuration variant.
// An ad without configuration is an action card.
func (a Ad) Format() Format {
	if a.Config == nil {
		return FormatActionCard
	}
	return a.Config.Format()
}

// StaticTargeting returns the static targeting parameters, or nil when the
// ad is not a static placement or defines none.
func (a Ad) StaticTargeting() *StaticTargetingParams {
	sc, ok := a.Config.(StaticConfig)
	if !ok {
		return nil
	}
	return sc.TargetingParams
}

// Clone returns a copy of the ad that shares no slices with the original.
func (a Ad) Clone() Ad {
	out := a
	out.Tags = append([]string(nil), a.Tags...)
	if sc, ok := a.Config.(StaticConfig); ok && sc.TargetingParams != nil {
		tp := sc.TargetingParams.clone()
		sc.TargetingParams = &tp
		out.Config = sc
	}
	return out
}

// adWire is the JSON shape shared with the SDK and the admin UI: the format
// discriminator plus one optional config object per variant.
type adWire struct {
	ID             string          `json:"id"`
	AdvertiserID   string          `json:"advertiserId"`
	Format         Format          `json:"format"`
	Title          LocalizedText   `json:"title"`
	Description    LocalizedText   `json:"description"`
	CTAText        LocalizedText   `json:"ctaText"`
	CTAURL         string          `json:"ctaUrl"`
	Tags           []string        `json:"tags"`
	Status         AdStatus        `json:"status"`
	CPC            *float64        `json:"cpc,omitempty"`
	BaseCTR        *float64        `json:"baseCTR,omitempty"`
	Meta           Meta            `json:"meta"`
	LeadGenConfig  *LeadGenConfig  `json:"leadGenConfig,omitempty"`
	StaticConfig   *StaticConfig   `json:"staticConfig,omitempty"`
	FollowupConfig *FollowupConfig `json:"followupConfig,omitempty"`
}

// MarshalJSON flattens Config into the variant-specific key.
func (a Ad) MarshalJSON() ([]byte, error) {
	w := adWire{
		ID:           a.ID,
		AdvertiserID: a.AdvertiserID,
		Format:       a.Format(),
		Title:        a.Title,
		Description:  a.Description,
		CTAText:      a.CTAText,
		CTAURL:       a.CTAURL,
		Tags:         a.Tags,
		Status:       a.Status,
		CPC:          a.CPC,
		BaseCTR:      a.BaseCTR,
		Meta:         a.Meta,
	}
	switch c := a.Config.(type) {
	case LeadGenConfig:
		w.LeadGenConfig = &c
	case StaticConfig:
		w.StaticConfig = &c
	case FollowupConfig:
		w.FollowupConfig = &c
	}
	return json.Marshal(w)
}

// UnmarshalJSON reads the wire shape back, keeping only the config variant
// that matches the format field.
func (a *Ad) UnmarshalJSON(data []byte) error {
	var w adWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Format == "" {
		w.Format = FormatActionCard
	}
	cfg, err := pickConfig(w.Format, w.LeadGenConfig, w.StaticConfig, w.FollowupConfig)
	if err != nil {
		return err
	}
	*a = Ad{
		ID:           w.ID,
		AdvertiserID: w.AdvertiserID,
		Title:        w.Title,
		Description:  w.Description,
		CTAText:      w.CTAText,
		CTAURL:       w.CTAURL,
		Tags:         w.Tags,
		Status:       w.Status,
		CPC:          w.CPC,
		BaseCTR:      w.BaseCTR,
		Meta:         w.Meta,
		Config:       cfg,
	}
	return nil
}

func pickConfig(f Format, lg *LeadGenConfig, sc *StaticConfig, fc *FollowupConfig) (FormatConfig, error) {
	switch f {
	case FormatActionCard:
		return ActionCardConfig{}, nil
	case FormatLeadGen:
		if lg == nil {
			return nil, fmt.Errorf("leadGenConfig is required for %s format", f)
		}
		return *lg, nil
	case FormatStatic:
		if sc == nil {
			return nil, fmt.Errorf("staticConfig is required for %s format", f)
		}
		return *sc, nil
	case FormatFollowup:
		if fc == nil {
			return nil, fmt.Errorf("followupConfig is required for %s format", f)
		}
		return *fc, nil
	}
	return nil, fmt.Errorf("unknown ad format %q", f)
}

// AdWithAdvertiser is the admin API view of an ad with its owner's name resolved.
type AdWithAdvertiser struct {
	Ad
	AdvertiserName string
}

// MarshalJSON adds advertiserName to the ad's wire shape.
func (a AdWithAdvertiser) MarshalJSON() ([]byte, error) {
	raw, err := a.Ad.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	name, _ := json.Marshal(a.AdvertiserName)
	m["advertiserName"] = name
	return json.Marshal(m)
}
