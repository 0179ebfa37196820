package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type SentimentLabel string

const (
	SentimentHot  SentimentLabel = "HOT"
	SentimentWarm SentimentLabel = "WARM"
	SentimentCool SentimentLabel = "COOL"
)

// Valid reports whether l is one of the three known labels.
func (l SentimentLabel) Valid() bool {
	switch l {
	case SentimentHot, SentimentWarm, SentimentCool:
		return true
	}
	return false
}

const (
	LeadStatusNew       = "NEW"
	LeadStatusContacted = "CONTACTED"
	LeadStatusClosed    = "CLOSED"
)

type MessageRole string

const (
	RoleBuyer  MessageRole = "BUYER"
	RoleDealer MessageRole = "DEALER"
	RoleAI     MessageRole = "AI"
)

const (
	MessageTypeManual = "MANUAL"
	MessageTypeAuto   = "AUTO"
)

// VehicleSummary is the slice of the vehicle a lead references that the
// actions care about.
type VehicleSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

type Lead struct {
	ID              string          `json:"id"`
	DealerProfileID string          `json:"dealer_profile_id"`
	VehicleID       string          `json:"vehicle_id,omitempty"`
	BuyerName       string          `json:"buyer_name"`
	Message         string          `json:"message"`
	Source          string          `json:"source"` // WEBSITE, WHATSAPP, PHONE, WALK_IN
	Status          string          `json:"status"`
	SentimentLabel  SentimentLabel  `json:"sentiment_label"`
	Sentiment       int             `json:"sentiment"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Messages        []LeadMessage   `json:"messages,omitempty"` // most recent first, at most 10
	Vehicle         *VehicleSummary `json:"vehicle,omitempty"`
}

// Unanalyzed is true while the lead still carries the default sentiment
// written at creation time.
func (l *Lead) Unanalyzed() bool {
	return l.SentimentLabel == SentimentCool && l.Sentiment == 0
}

// HasInquiry reports whether the buyer left a non blank message.
func (l *Lead) HasInquiry() bool {
	return strings.TrimSpace(l.Message) != ""
}

// VehicleName returns the referenced vehicle's name or fallback.
func (l *Lead) VehicleName(fallback string) string {
	if l.Vehicle == nil || l.Vehicle.Name == "" {
		return fallback
	}
	return l.Vehicle.Name
}

type LeadMessage struct {
	ID        string      `json:"id"`
	LeadID    string      `json:"lead_id"`
	Role      MessageRole `json:"role"`
	Text      string      `json:"text"`
	Type      string      `json:"type"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewAutoReply builds the AI authored first reply for a lead.
func NewAutoReply(leadID, text string) *LeadMessage {
	return &LeadMessage{
		ID:        uuid.New().String(),
		LeadID:    leadID,
		Role:      RoleAI,
		Text:      text,
		Type:      MessageTypeAuto,
		CreatedAt: time.Now(),
	}
}
