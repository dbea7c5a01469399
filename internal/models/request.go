package models

import "time"

// RequestStatus is the recorded outcome of a decision request.
type RequestStatus string

const (
	RequestSuccess RequestStatus = "success"
	RequestNoAd    RequestStatus = "no_ad"
	RequestError   RequestStatus = "error"
)

// RequestType distinguishes the two decision paths in the request log.
type RequestType string

const (
	RequestTypeContext RequestType = "context"
	RequestTypeStatic  RequestType = "static"
)

// RequestTargeting records the static targeting inputs of a request.
type RequestTargeting struct {
	Language   string `json:"language,omitempty"`
	DeviceType string `json:"deviceType,omitempty"`
	Geo        string `json:"geo,omitempty"`
}

// RequestRecord is one row of the decision request log. Successful context
// records are the history the static path mines for interests.
type RequestRecord struct {
	ID             string            `json:"id"`
	Type           RequestType       `json:"requestType"`
	AppID          string            `json:"appId,omitempty"`
	ConversationID string            `json:"conversationId,omitempty"`
	MessageID      string            `json:"messageId,omitempty"`
	ContextText    string            `json:"contextText,omitempty"`
	Language       Language          `json:"language,omitempty"`
	DecidedAdID    string            `json:"decidedAdId,omitempty"`
	Status         RequestStatus     `json:"status"`
	Reason         string            `json:"reason,omitempty"`
	LatencyMs      int64             `json:"latencyMs"`
	SDKVersion     string            `json:"sdkVersion,omitempty"`
	UserID         string            `json:"userId,omitempty"`
	Targeting      *RequestTargeting `json:"targeting,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
}

// HistoryEntry is the slice of a past request the interest extractor reads.
type HistoryEntry struct {
	ContextText string `json:"contextText"`
}
