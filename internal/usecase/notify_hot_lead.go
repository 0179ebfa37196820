package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/xavierca1/autovault-agents/internal/entity"
)

type NotifyHotLeadUseCase struct {
	Leads         LeadRepository
	Dealers       DealerRepository
	Notifications NotificationRepository
	Mailer        Mailer      // optional email copy
	WhatsApp      AlertSender // optional, set after construction
}

func NewNotifyHotLeadUseCase(leads LeadRepository, dealers DealerRepository, notifications NotificationRepository, mailer Mailer) *NotifyHotLeadUseCase {
	return &NotifyHotLeadUseCase{
		Leads:         leads,
		Dealers:       dealers,
		Notifications: notifications,
		Mailer:        mailer,
	}
}

func (uc *NotifyHotLeadUseCase) Execute(ctx context.Context, input LeadActionInput) error {
	lead, err := uc.Leads.FindWithContext(ctx, input.LeadID)
	if errors.Is(err, entity.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load lead %s: %w", input.LeadID, err)
	}

	dealerID := input.DealerProfileID
	if dealerID == "" {
		dealerID = lead.DealerProfileID
	}
	dealer, err := uc.Dealers.FindByID(ctx, dealerID)
	if errors.Is(err, entity.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load dealer %s: %w", dealerID, err)
	}
	if dealer.UserID == "" {
		return nil
	}

	title, message := HotLeadMessage(lead)
	n := entity.NewNotification(dealer.UserID, entity.NotificationLead, title, message)
	n.Link = "/dealer/leads/" + lead.ID
	if err := uc.Notifications.Create(ctx, n); err != nil {
		return fmt.Errorf("create hot lead notification: %w", err)
	}
	slog.InfoContext(ctx, "hot lead notification created", "lead_id", lead.ID, "user_id", dealer.UserID)

	if uc.Mailer != nil && dealer.Email != "" {
		if err := uc.Mailer.SendNotification(dealer.Email, title, message, n.Link); err != nil {
			slog.WarnContext(ctx, "hot lead email failed", "lead_id", lead.ID, "error", err)
		}
	}
	if uc.WhatsApp != nil && dealer.Phone != "" {
		buyer := lead.BuyerName
		if buyer == "" {
			buyer = "A buyer"
		}
		if err := uc.WhatsApp.SendHotLeadAlert(ctx, dealer.Phone, buyer, lead.VehicleName("your listing")); err != nil {
			slog.WarnContext(ctx, "hot lead whatsapp alert failed", "lead_id", lead.ID, "error", err)
		}
	}
	return nil
}

// HotLeadMessage renders the alert shown to the dealer.
func HotLeadMessage(lead *entity.Lead) (string, string) {
	buyer := lead.BuyerName
	if buyer == "" {
		buyer = "A buyer"
	}
	title := "🔥 Hot lead: " + buyer
	if lead.Vehicle != nil && lead.Vehicle.Name != "" {
		return title, fmt.Sprintf("%s is showing strong buying intent for the %s. Reach out soon to close the deal.", buyer, lead.Vehicle.Name)
	}
	return title, fmt.Sprintf("%s is showing strong buying intent. Reach out soon to close the deal.", buyer)
}
