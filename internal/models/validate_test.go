package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCreateAd() CreateAdInput {
	return CreateAdInput{
		AdvertiserID: "adv1",
		Title:        LocalizedText{Eng: "New laptop"},
		Description:  LocalizedText{Eng: "Fast and light"},
		CTAText:      LocalizedText{Eng: "Buy"},
		CTAURL:       "https://shop.example.com",
		Tags:         []string{"laptop", "computer", "laptop"},
	}
}

func TestCreateAdInputDefaults(t *testing.T) {
	in := validCreateAd()
	require.NoError(t, in.Validate())
	assert.Equal(t, FormatActionCard, in.Format)
	assert.Equal(t, AdStatusPaused, in.Status)
	assert.Equal(t, []string{"laptop", "computer"}, in.Tags)

	ad, err := in.ToAd()
	require.NoError(t, err)
	assert.Equal(t, FormatActionCard, ad.Format())
}

func TestCreateAdInputRules(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CreateAdInput)
		message string
	}{
		{"http url", func(in *CreateAdInput) { in.CTAURL = "http://shop.example.com" }, "ctaUrl must be a valid https URL"},
		{"missing eng title", func(in *CreateAdInput) { in.Title = LocalizedText{Jpn: "ノート"} }, "title.eng is required"},
		{"no tags", func(in *CreateAdInput) { in.Tags = nil }, "tags must have at least 1 items"},
		{"uppercase tag", func(in *CreateAdInput) { in.Tags = []string{"Laptop"} }, "tags[0] must contain only lowercase letters"},
		{"short tag", func(in *CreateAdInput) { in.Tags = []string{"a"} }, "tags[0] must be at least 2 characters"},
		{"hyphen tag", func(in *CreateAdInput) { in.Tags = []string{"new-laptop"} }, "tags[0] must contain only lowercase letters"},
		{"archived on create", func(in *CreateAdInput) { in.Status = AdStatusArchived }, "status must be one of"},
		{"lead gen without config", func(in *CreateAdInput) { in.Format = FormatLeadGen }, "leadGenConfig is required for lead_gen format"},
		{"static without config", func(in *CreateAdInput) { in.Format = FormatStatic }, "staticConfig is required for static format"},
		{"redirect without url", func(in *CreateAdInput) {
			in.Format = FormatFollowup
			in.FollowupConfig = &FollowupConfig{QuestionText: LocalizedText{Eng: "Q?"}, TapAction: TapRedirect}
		}, "tapActionUrl is required when tapAction is 'redirect'"},
		{"cpc too high", func(in *CreateAdInput) { v := 500.0; in.CPC = &v }, "cpc is out of range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validCreateAd()
			tt.mutate(&in)
			err := in.Validate()
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestTooManyTags(t *testing.T) {
	in := validCreateAd()
	in.Tags = nil
	for i := 0; i < 21; i++ {
		in.Tags = append(in.Tags, "tag"+strings.Repeat("x", i%5)+string(rune('a'+i)))
	}
	err := in.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tags must have at most 20 items")
}

func TestUpdateAdApplyKeepsVariant(t *testing.T) {
	ad := Ad{
		Title:  LocalizedText{Eng: "Old"},
		Status: AdStatusPaused,
		Config: StaticConfig{DisplayPosition: PositionTop},
	}
	title := LocalizedText{Eng: "New"}
	out, err := UpdateAdInput{Title: &title}.Apply(ad)
	require.NoError(t, err)
	assert.Equal(t, "New", out.Title.Eng)
	assert.Equal(t, FormatStatic, out.Format())

	f := FormatLeadGen
	_, err = UpdateAdInput{Format: &f}.Apply(ad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leadGenConfig is required")
}

func TestPublishGate(t *testing.T) {
	ad := Ad{
		Title:       LocalizedText{Eng: "T"},
		Description: LocalizedText{Eng: "D"},
		CTAText:     LocalizedText{Eng: "Go"},
		CTAURL:      "https://x.example.com",
		Tags:        []string{"shoes"},
	}
	require.NoError(t, CheckPublishGate(ad))

	ad.Title = LocalizedText{Jpn: "タイトル"}
	ad.CTAURL = "ftp://x.example.com"
	err := CheckPublishGate(ad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "English title is required for publishing")
	assert.Contains(t, err.Error(), "ctaUrl must be a valid https URL")
}

func TestStaticQueryValidation(t *testing.T) {
	q := StaticQuery{UserID: "u1", PublisherID: "p1", DeviceType: "watch"}
	err := q.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deviceType must be one of")

	q = StaticQuery{PublisherID: "p1", Language: LanguageJpn}
	err = q.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "userId is required")
}

func TestEventInputValidation(t *testing.T) {
	in := EventInput{Type: "view", AdID: "a", AdvertiserID: "b", RequestID: "r", SubmittedEmail: "nope"}
	err := in.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "type must be one of")
	assert.Contains(t, err.Error(), "submittedEmail must be a valid email")
}

func TestAdUpdateAction(t *testing.T) {
	active, paused, archived := AdStatusActive, AdStatusPaused, AdStatusArchived
	assert.Equal(t, AuditAdUpdate, AdUpdateAction(AdStatusPaused, nil))
	assert.Equal(t, AuditAdPublish, AdUpdateAction(AdStatusPaused, &active))
	assert.Equal(t, AuditAdUpdate, AdUpdateAction(AdStatusActive, &active))
	assert.Equal(t, AuditAdPause, AdUpdateAction(AdStatusActive, &paused))
	assert.Equal(t, AuditAdArchive, AdUpdateAction(AdStatusPaused, &archived))
}
