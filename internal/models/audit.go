package models

import (
	"encoding/json"
	"time"
)

// AuditAction names an admin mutation.
type AuditAction string

const (
	AuditAdvertiserCreate  AuditAction = "advertiser.create"
	AuditAdvertiserUpdate  AuditAction = "advertiser.update"
	AuditAdvertiserSuspend AuditAction = "advertiser.suspend"
	AuditAdCreate          AuditAction = "ad.create"
	AuditAdUpdate          AuditAction = "ad.update"
	AuditAdPublish         AuditAction = "ad.publish"
	AuditAdPause           AuditAction = "ad.pause"
	AuditAdArchive         AuditAction = "ad.archive"
	AuditAdDuplicate       AuditAction = "ad.duplicate"
)

// AuditEntity is the kind of entity an audit entry refers to.
type AuditEntity string

const (
	AuditEntityAdvertiser AuditEntity = "advertiser"
	AuditEntityAd         AuditEntity = "ad"
)

// AuditLog is an append-only record of who changed what.
type AuditLog struct {
	ID         string          `json:"id"`
	ActorID    string          `json:"actorId"`
	ActorEmail string          `json:"actorEmail"`
	Action     AuditAction     `json:"action"`
	EntityType AuditEntity     `json:"entityType"`
	EntityID   string          `json:"entityId"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// AdUpdateAction picks the audit action for a status change from prev to next.
// A nil next means the status was not touched.
func AdUpdateAction(prev AdStatus, next *AdStatus) AuditAction {
	if next == nil {
		return AuditAdUpdate
	}
	switch {
	case *next == AdStatusActive && prev != AdStatusActive:
		return AuditAdPublish
	case *next == AdStatusPaused && prev != AdStatusPaused:
		return AuditAdPause
	case *next == AdStatusArchived:
		return AuditAdArchive
	}
	return AuditAdUpdate
}
