package models

import "time"

// EventType is an SDK-reported interaction with a served ad.
type EventType string

const (
	EventImpression EventType = "impression"
	EventClick      EventType = "click"
	EventSubmit     EventType = "submit" // lead_gen form submitted
	EventTap        EventType = "tap"    // followup question tapped
)

// EventData carries the type-specific payload of an event.
type EventData struct {
	FormData  map[string]string `json:"formData,omitempty"`
	TapAction TapAction         `json:"tapAction,omitempty" validate:"omitempty,oneof=expand redirect submit"`
}

// Event is a recorded ad interaction.
type Event struct {
	ID             string     `json:"id"`
	Type           EventType  `json:"type"`
	AdID           string     `json:"adId"`
	AdvertiserID   string     `json:"advertiserId"`
	RequestID      string     `json:"requestId"`
	UserID         string     `json:"userId,omitempty"`
	ConversationID string     `json:"conversationId,omitempty"`
	AppID          string     `json:"appId,omitempty"`
	SubmittedEmail string     `json:"submittedEmail,omitempty"`
	EventData      *EventData `json:"eventData,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}
