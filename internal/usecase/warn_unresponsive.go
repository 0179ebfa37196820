package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/xavierca1/autovault-agents/internal/entity"
)

const (
	UnresponsiveThreshold = 5
	UnresponsiveAge       = 24 * time.Hour
)

type WarnUnresponsiveLeadsUseCase struct {
	Leads         LeadRepository
	Dealers       DealerRepository
	Notifications NotificationRepository
	Now           func() time.Time
}

func NewWarnUnresponsiveLeadsUseCase(leads LeadRepository, dealers DealerRepository, notifications NotificationRepository) *WarnUnresponsiveLeadsUseCase {
	return &WarnUnresponsiveLeadsUseCase{
		Leads:         leads,
		Dealers:       dealers,
		Notifications: notifications,
		Now:           time.Now,
	}
}

func (uc *WarnUnresponsiveLeadsUseCase) Execute(ctx context.Context, dealerProfileID string) error {
	cutoff := uc.Now().Add(-UnresponsiveAge)
	count, err := uc.Leads.CountUnresponsive(ctx, dealerProfileID, cutoff)
	if err != nil {
		return fmt.Errorf("count unresponsive leads for dealer %s: %w", dealerProfileID, err)
	}
	if count < UnresponsiveThreshold {
		return nil
	}

	dealer, err := uc.Dealers.FindByID(ctx, dealerProfileID)
	if errors.Is(err, entity.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load dealer %s: %w", dealerProfileID, err)
	}
	if dealer.UserID == "" {
		return nil
	}

	n := entity.NewNotification(
		dealer.UserID,
		entity.NotificationSystem,
		fmt.Sprintf("⚠️ %d leads waiting for a reply", count),
		fmt.Sprintf("You have %d new leads older than 24 hours with no response. Buyers who wait usually move on, reply today to keep them.", count),
	)
	n.Link = "/dealer/leads?status=NEW"
	if err := uc.Notifications.Create(ctx, n); err != nil {
		return fmt.Errorf("create unresponsive leads notification: %w", err)
	}
	slog.InfoContext(ctx, "unresponsive leads warning created", "dealer_profile_id", dealerProfileID, "count", count)
	return nil
}
