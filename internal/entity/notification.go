package entity

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationLead    NotificationType = "LEAD"
	NotificationSystem  NotificationType = "SYSTEM"
	NotificationVehicle NotificationType = "VEHICLE"
)

type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	Link      string           `json:"link,omitempty"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}

func NewNotification(userID string, kind NotificationType, title, message string) *Notification {
	return &Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      kind,
		CreatedAt: time.Now(),
	}
}
