package usecase

import (
	"context"
	"time"

	"github.com/xavierca1/autovault-agents/internal/entity"
	"github.com/xavierca1/autovault-agents/internal/infra/ai"
)

type LeadRepository interface {
	// FindWithContext loads the lead with its 10 most recent messages and
	// the referenced vehicle's name and price.
	FindWithContext(ctx context.Context, id string) (*entity.Lead, error)
	// UpdateSentiment writes the analysis only while the lead still holds
	// the unanalyzed default. It reports whether a row changed.
	UpdateSentiment(ctx context.Context, id string, label entity.SentimentLabel, confidence int) (bool, error)
	CountMessages(ctx context.Context, leadID string) (int, error)
	CreateMessage(ctx context.Context, msg *entity.LeadMessage) error
	// CountUnresponsive counts NEW leads created before the cutoff that
	// have no messages.
	CountUnresponsive(ctx context.Context, dealerProfileID string, createdBefore time.Time) (int, error)
}

type DealerRepository interface {
	FindByID(ctx context.Context, id string) (*entity.DealerProfile, error)
	FindPreference(ctx context.Context, dealerProfileID string) (*entity.DealerPreference, error)
	ListIDs(ctx context.Context) ([]string, error)
}

type VehicleRepository interface {
	CountWishlist(ctx context.Context, vehicleID string) (int, error)
	// PromoteToTrending sets the Trending badge unless a protected badge is
	// already present. It reports whether the badge changed.
	PromoteToTrending(ctx context.Context, vehicleID string) (bool, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
}

// EventEmitter publishes follow-up events. Delivery is best effort.
type EventEmitter interface {
	Emit(ctx context.Context, event entity.PlatformEvent) error
}

type Completer interface {
	Complete(ctx context.Context, req ai.Request) (string, error)
}

type Breaker interface {
	Run(ctx context.Context, key string, op func(context.Context) (string, error)) (string, error)
}

type Mailer interface {
	// SendNotification mails a notification copy. link is the in-app path,
	// empty when the notification has none.
	SendNotification(to, subject, body, link string) error
}

type AlertSender interface {
	SendHotLeadAlert(ctx context.Context, phone, buyer, vehicle string) error
}

type LeadActionInput struct {
	LeadID          string `json:"lead_id"`
	DealerProfileID string `json:"dealer_profile_id"`
}
