package models

import (
	"encoding/json"
	"fmt"
)

// FormatConfig is the format-specific part of an ad. Each format has exactly
// one variant; the variant determines the ad's format.
type FormatConfig interface {
	Format() Format
	isFormatConfig()
}

// ActionCardConfig is the empty variant for action card ads.
type ActionCardConfig struct{}

func (ActionCardConfig) Format() Format  { return FormatActionCard }
func (ActionCardConfig) isFormatConfig() {}

// AutocompleteType maps to the HTML autocomplete attribute of the lead form input.
type AutocompleteType string

const (
	AutocompleteEmail AutocompleteType = "email"
	AutocompleteName  AutocompleteType = "name"
	AutocompleteTel   AutocompleteType = "tel"
	AutocompleteOff   AutocompleteType = "off"
)

// LeadGenConfig configures the email collection form.
type LeadGenConfig struct {
	Placeholder      LocalizedText    `json:"placeholder"`
	SubmitButtonText LocalizedText    `json:"submitButtonText"`
	AutocompleteType AutocompleteType `json:"autocompleteType" validate:"required,oneof=email name tel off"`
	SuccessMessage   LocalizedText    `json:"successMessage"`
}

func (LeadGenConfig) Format() Format  { return FormatLeadGen }
func (LeadGenConfig) isFormatConfig() {}

// DisplayPosition is where a static ad is placed on the page.
type DisplayPosition string

const (
	PositionTop     DisplayPosition = "top"
	PositionBottom  DisplayPosition = "bottom"
	PositionInline  DisplayPosition = "inline"
	PositionSidebar DisplayPosition = "sidebar"
)

// StaticTargetingParams narrows which page loads a static ad is shown on.
// Empty lists mean "no constraint".
type StaticTargetingParams struct {
	Keywords    []string `json:"keywords,omitempty"`
	Geo         []string `json:"geo,omitempty"`
	DeviceTypes []string `json:"deviceTypes,omitempty" validate:"omitempty,dive,oneof=desktop mobile tablet"`
}

func (p StaticTargetingParams) clone() StaticTargetingParams {
	return StaticTargetingParams{
		Keywords:    append([]string(nil), p.Keywords...),
		Geo:         append([]string(nil), p.Geo...),
		DeviceTypes: append([]string(nil), p.DeviceTypes...),
	}
}

// StaticConfig configures page-load placements. TargetingParams nil means the
// ad is eligible for every request.
type StaticConfig struct {
	DisplayPosition DisplayPosition        `json:"displayPosition" validate:"required,oneof=top bottom inline sidebar"`
	TargetingParams *StaticTargetingParams `json:"targetingParams,omitempty"`
}

func (StaticConfig) Format() Format  { return FormatStatic }
func (StaticConfig) isFormatConfig() {}

// TapAction is what happens when the user taps a followup card.
type TapAction string

const (
	TapExpand   TapAction = "expand"
	TapRedirect TapAction = "redirect"
	TapSubmit   TapAction = "submit"
)

// FollowupConfig configures the sponsored followup question.
// TapActionURL is required when TapAction is redirect.
type FollowupConfig struct {
	QuestionText LocalizedText `json:"questionText"`
	TapAction    TapAction     `json:"tapAction" validate:"required,oneof=expand redirect submit"`
	TapActionURL string        `json:"tapActionUrl,omitempty" validate:"omitempty,https_url"`
}

func (FollowupConfig) Format() Format  { return FormatFollowup }
func (FollowupConfig) isFormatConfig() {}

// MarshalFormatConfig encodes the variant for storage. Action cards encode to nil.
func MarshalFormatConfig(c FormatConfig) ([]byte, error) {
	switch c.(type) {
	case nil, ActionCardConfig:
		return nil, nil
	}
	return json.Marshal(c)
}

// UnmarshalFormatConfig decodes a stored config for the given format.
func UnmarshalFormatConfig(f Format, data []byte) (FormatConfig, error) {
	switch f {
	case FormatActionCard, "":
		return ActionCardConfig{}, nil
	case FormatLeadGen:
		var c LeadGenConfig
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("decode lead_gen config: %w", err)
		}
		return c, nil
	case FormatStatic:
		var c StaticConfig
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("decode static config: %w", err)
		}
		return c, nil
	case FormatFollowup:
		var c FollowupConfig
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("decode followup config: %w", err)
		}
		return c, nil
	}
	return nil, fmt.Errorf("unknown ad format %q", f)
}
