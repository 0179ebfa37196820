package entity

import (
	"errors"
	"time"
)

type EventType string

const (
	EventLeadCreated       EventType = "LEAD_CREATED"
	EventSentimentAnalyzed EventType = "SENTIMENT_ANALYZED"
	EventLeadStatusChanged EventType = "LEAD_STATUS_CHANGED"
	EventVehicleWishlisted EventType = "VEHICLE_WISHLISTED"
	EventAutoReplySent     EventType = "AUTO_REPLY_SENT"
	EventTrendingBadgeSet  EventType = "TRENDING_BADGE_SET"
)

// Known reports whether t is one of the platform event types above.
func (t EventType) Known() bool {
	switch t {
	case EventLeadCreated, EventSentimentAnalyzed, EventLeadStatusChanged,
		EventVehicleWishlisted, EventAutoReplySent, EventTrendingBadgeSet:
		return true
	}
	return false
}

const (
	EntityLead    = "Lead"
	EntityVehicle = "Vehicle"
	EntityDealer  = "DealerProfile"
)

// Decision provenance carried in event metadata.
const (
	SourceAI       = "AI"
	SourceRule     = "RULE"
	SourceTemplate = "TEMPLATE"
)

// PlatformEvent is the unit of work handed to the event processor.
type PlatformEvent struct {
	Type            EventType      `json:"type"`
	EntityType      string         `json:"entityType"`
	EntityID        string         `json:"entityId"`
	DealerProfileID string         `json:"dealerProfileId,omitempty"`
	UserID          string         `json:"userId,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	OccurredAt      time.Time      `json:"occurredAt"`
}

// MetaString returns metadata[key] when it holds a string.
func (e PlatformEvent) MetaString(key string) string {
	if e.Metadata == nil {
		return ""
	}
	s, _ := e.Metadata[key].(string)
	return s
}

func (e PlatformEvent) Validate() error {
	if e.Type == "" {
		return errors.New("type is required")
	}
	if e.EntityType == "" {
		return errors.New("entityType is required")
	}
	if e.EntityID == "" {
		return errors.New("entityId is required")
	}
	return nil
}
