package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xavierca1/autovault-agents/internal/entity"
	"github.com/xavierca1/autovault-agents/internal/infra/ai"
	"github.com/xavierca1/autovault-agents/internal/infra/metrics"
)

// AutoReplyUseCase sends the first reply to a new lead for dealers that
// opted in.
type AutoReplyUseCase struct {
	Leads   LeadRepository
	Dealers DealerRepository
	Events  EventEmitter
	AI      *Assistant
}

func NewAutoReplyUseCase(leads LeadRepository, dealers DealerRepository, events EventEmitter, assistant *Assistant) *AutoReplyUseCase {
	return &AutoReplyUseCase{
		Leads:   leads,
		Dealers: dealers,
		Events:  events,
		AI:      assistant,
	}
}

func (uc *AutoReplyUseCase) Execute(ctx context.Context, input LeadActionInput) error {
	pref, err := uc.Dealers.FindPreference(ctx, input.DealerProfileID)
	if errors.Is(err, entity.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load preferences for dealer %s: %w", input.DealerProfileID, err)
	}
	if !pref.Automation.AutoReply {
		slog.DebugContext(ctx, "auto reply skipped, dealer opted out", "dealer_profile_id", input.DealerProfileID)
		return nil
	}

	count, err := uc.Leads.CountMessages(ctx, input.LeadID)
	if err != nil {
		return fmt.Errorf("count messages for lead %s: %w", input.LeadID, err)
	}
	if count > 0 {
		slog.DebugContext(ctx, "auto reply skipped, conversation already started", "lead_id", input.LeadID)
		return nil
	}

	lead, err := uc.Leads.FindWithContext(ctx, input.LeadID)
	if errors.Is(err, entity.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load lead %s: %w", input.LeadID, err)
	}

	dealership := "our dealership"
	dealer, err := uc.Dealers.FindByID(ctx, input.DealerProfileID)
	switch {
	case err == nil && dealer.BusinessName != "":
		dealership = dealer.BusinessName
	case err != nil && !errors.Is(err, entity.ErrNotFound):
		return fmt.Errorf("load dealer %s: %w", input.DealerProfileID, err)
	}

	text, source := uc.draft(ctx, lead, dealership)

	msg := entity.NewAutoReply(lead.ID, text)
	if err := uc.Leads.CreateMessage(ctx, msg); err != nil {
		return fmt.Errorf("save auto reply for lead %s: %w", lead.ID, err)
	}
	metrics.RecordDecision("auto_reply", source)
	slog.InfoContext(ctx, "auto reply sent", "lead_id", lead.ID, "source", source)

	event := entity.PlatformEvent{
		Type:            entity.EventAutoReplySent,
		EntityType:      entity.EntityLead,
		EntityID:        lead.ID,
		DealerProfileID: input.DealerProfileID,
		Metadata: map[string]any{
			"source":    source,
			"messageId": msg.ID,
		},
	}
	if err := uc.Events.Emit(ctx, event); err != nil {
		slog.WarnContext(ctx, "emit auto reply event failed", "lead_id", lead.ID, "error", err)
	}
	return nil
}

func (uc *AutoReplyUseCase) draft(ctx context.Context, lead *entity.Lead, dealership string) (string, string) {
	reply, err := uc.AI.Complete(ctx, replyRequest(lead, dealership))
	if err == nil {
		return reply, entity.SourceAI
	}
	if !errors.Is(err, ai.ErrUnavailable) {
		slog.WarnContext(ctx, "ai reply failed, using template", "lead_id", lead.ID, "error", err)
	}
	return TemplateReply(lead), entity.SourceTemplate
}

// TemplateReply is the reply used whenever the assistant cannot draft one.
func TemplateReply(lead *entity.Lead) string {
	buyer := strings.TrimSpace(lead.BuyerName)
	if buyer == "" {
		buyer = "there"
	}
	return fmt.Sprintf(
		"Hi %s, thanks for your interest in the %s! It's still available and we'd be happy to answer any questions or set up a test drive. When would be a good time to connect?",
		buyer, lead.VehicleName("vehicle"),
	)
}

func replyRequest(lead *entity.Lead, dealership string) ai.Request {
	return ai.Request{
		System: fmt.Sprintf(
			"You are replying on behalf of %s, a car dealership, to a buyer's first inquiry. "+
				"Keep it under 100 words, warm and conversational, not salesy. "+
				"Do not promise prices, discounts or availability you were not given. Sign off as the %s team.",
			dealership, dealership,
		),
		User: fmt.Sprintf("Buyer: %s\nVehicle: %s\nInquiry: %s",
			lead.BuyerName, lead.VehicleName("not specified"), strings.TrimSpace(lead.Message)),
		MaxTokens: 200,
	}
}
