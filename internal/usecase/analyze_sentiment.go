package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/xavierca1/autovault-agents/internal/entity"
	"github.com/xavierca1/autovault-agents/internal/infra/ai"
	"github.com/xavierca1/autovault-agents/internal/infra/metrics"
)

// RuleConfidence is the confidence recorded for rule based classifications.
const RuleConfidence = 60

const (
	minAIConfidence = 60
	maxAIConfidence = 99
)

type AnalyzeSentimentUseCase struct {
	Leads  LeadRepository
	Events EventEmitter
	AI     *Assistant
}

func NewAnalyzeSentimentUseCase(leads LeadRepository, events EventEmitter, assistant *Assistant) *AnalyzeSentimentUseCase {
	return &AnalyzeSentimentUseCase{
		Leads:  leads,
		Events: events,
		AI:     assistant,
	}
}

func (uc *AnalyzeSentimentUseCase) Execute(ctx context.Context, input LeadActionInput) error {
	lead, err := uc.Leads.FindWithContext(ctx, input.LeadID)
	if errors.Is(err, entity.ErrNotFound) {
		slog.DebugContext(ctx, "sentiment skipped, lead not found", "lead_id", input.LeadID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load lead %s: %w", input.LeadID, err)
	}
	if !lead.Unanalyzed() {
		slog.DebugContext(ctx, "sentiment skipped, already analyzed", "lead_id", lead.ID)
		return nil
	}

	label, confidence, source := uc.classify(ctx, lead)

	updated, err := uc.Leads.UpdateSentiment(ctx, lead.ID, label, confidence)
	if err != nil {
		return fmt.Errorf("save sentiment for lead %s: %w", lead.ID, err)
	}
	if !updated {
		slog.DebugContext(ctx, "sentiment skipped, analyzed concurrently", "lead_id", lead.ID)
		return nil
	}
	metrics.RecordDecision("analyze_sentiment", source)
	slog.InfoContext(ctx, "lead sentiment analyzed",
		"lead_id", lead.ID, "label", label, "confidence", confidence, "source", source)

	dealerID := input.DealerProfileID
	if dealerID == "" {
		dealerID = lead.DealerProfileID
	}
	event := entity.PlatformEvent{
		Type:            entity.EventSentimentAnalyzed,
		EntityType:      entity.EntityLead,
		EntityID:        lead.ID,
		DealerProfileID: dealerID,
		Metadata: map[string]any{
			"label":      string(label),
			"confidence": confidence,
			"source":     source,
		},
	}
	if err := uc.Events.Emit(ctx, event); err != nil {
		slog.WarnContext(ctx, "emit sentiment event failed", "lead_id", lead.ID, "error", err)
	}
	return nil
}

func (uc *AnalyzeSentimentUseCase) classify(ctx context.Context, lead *entity.Lead) (entity.SentimentLabel, int, string) {
	raw, err := uc.AI.Complete(ctx, sentimentRequest(lead))
	switch {
	case err == nil:
		if label, confidence, ok := parseSentiment(raw); ok {
			return label, confidence, entity.SourceAI
		}
		slog.WarnContext(ctx, "malformed sentiment response, using rule", "lead_id", lead.ID)
	case !errors.Is(err, ai.ErrUnavailable):
		slog.WarnContext(ctx, "ai sentiment failed, using rule", "lead_id", lead.ID, "error", err)
	}
	return RuleSentiment(lead), RuleConfidence, entity.SourceRule
}

// RuleSentiment classifies a lead from its engagement alone.
func RuleSentiment(lead *entity.Lead) entity.SentimentLabel {
	switch {
	case len(lead.Messages) >= 3:
		return entity.SentimentHot
	case len(lead.Messages) >= 1 || lead.HasInquiry():
		return entity.SentimentWarm
	default:
		return entity.SentimentCool
	}
}

func sentimentRequest(lead *entity.Lead) ai.Request {
	vehicle := lead.VehicleName("not specified")
	if lead.Vehicle != nil && lead.Vehicle.Price > 0 {
		vehicle = fmt.Sprintf("%s (₹%d)", vehicle, lead.Vehicle.Price)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Buyer: %s\n", lead.BuyerName)
	fmt.Fprintf(&b, "Vehicle: %s\n", vehicle)
	fmt.Fprintf(&b, "Inquiry: %s\n", strings.TrimSpace(lead.Message))
	fmt.Fprintf(&b, "Channel: %s\n", lead.Source)
	fmt.Fprintf(&b, "Messages exchanged: %d\n", len(lead.Messages))
	for _, m := range lead.Messages {
		fmt.Fprintf(&b, "- %s: %s\n", m.Role, m.Text)
	}

	return ai.Request{
		System: "You score buyer purchase intent for a used car marketplace. " +
			`Answer only with a JSON object {"label": "HOT" | "WARM" | "COOL", "confidence": 60-99}. ` +
			"HOT means ready to buy or visit soon, WARM means actively comparing, COOL means browsing.",
		User:      b.String(),
		JSON:      true,
		MaxTokens: 50,
	}
}

func parseSentiment(raw string) (entity.SentimentLabel, int, bool) {
	var out struct {
		Label      string  `json:"label"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return "", 0, false
	}
	label := entity.SentimentLabel(strings.ToUpper(strings.TrimSpace(out.Label)))
	if !label.Valid() {
		return "", 0, false
	}
	confidence := int(math.Round(out.Confidence))
	confidence = min(max(confidence, minAIConfidence), maxAIConfidence)
	return label, confidence, true
}
