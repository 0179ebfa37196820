package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/autovault-agents/internal/entity"
	"github.com/xavierca1/autovault-agents/internal/infra/ai"
	"github.com/xavierca1/autovault-agents/internal/usecase"
)

// TestAnalyzeSentimentRuleHotWithoutAI - no AI configured, 3 messages resolve to HOT
func TestAnalyzeSentimentRuleHotWithoutAI(t *testing.T) {
	ctx := context.Background()
	store := seededStore()
	store.PutLead(newLead("L1"))
	addMessages(store, "L1", 3)
	events := newMockEmitter()

	uc := usecase.NewAnalyzeSentimentUseCase(store, events, nil)
	err := uc.Execute(ctx, usecase.LeadActionInput{LeadID: "L1", DealerProfileID: dealerID})

	require.NoError(t, err)
	lead, _ := store.Lead("L1")
	assert.Equal(t, entity.SentimentHot, lead.SentimentLabel)
	assert.Equal(t, usecase.RuleConfidence, lead.Sentiment)

	emitted := events.Events()
	require.Len(t, emitted, 1)
	assert.Equal(t, entity.EventSentimentAnalyzed, emitted[0].Type)
	assert.Equal(t, "L1", emitted[0].EntityID)
	assert.Equal(t, dealerID, emitted[0].DealerProfileID)
	assert.Equal(t, "HOT", emitted[0].Metadata["label"])
	assert.Equal(t, 60, emitted[0].Metadata["confidence"])
	assert.Equal(t, entity.SourceRule, emitted[0].Metadata["source"])
}

func TestRuleSentiment(t *testing.T) {
	tests := []struct {
		name     string
		messages int
		inquiry  string
		want     entity.SentimentLabel
	}{
		{"three messages", 3, "", entity.SentimentHot},
		{"ten messages", 10, "hi", entity.SentimentHot},
		{"one message", 1, "", entity.SentimentWarm},
		{"inquiry only", 0, "Is this still available?", entity.SentimentWarm},
		{"blank inquiry", 0, "   ", entity.SentimentCool},
		{"nothing", 0, "", entity.SentimentCool},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lead := &entity.Lead{Message: tt.inquiry, Messages: make([]entity.LeadMessage, tt.messages)}
			assert.Equal(t, tt.want, usecase.RuleSentiment(lead))
		})
	}
}

// TestAnalyzeSentimentUsesAI - valid AI classification is persisted with AI provenance
func TestAnalyzeSentimentUsesAI(t *testing.T) {
	ctx := context.Background()
	store := seededStore()
	lead := newLead("L2")
	lead.Message = "Can I come for a test drive tomorrow?"
	store.PutLead(lead)
	events := newMockEmitter()

	completer := new(MockCompleter)
	completer.On("Complete", mock.Anything, mock.MatchedBy(func(r ai.Request) bool {
		return r.JSON && r.MaxTokens > 0
	})).Return(`{"label":"hot","confidence":91}`, nil)
	brk := &fakeBreaker{}

	uc := usecase.NewAnalyzeSentimentUseCase(store, events, usecase.NewAssistant(completer, brk))
	require.NoError(t, uc.Execute(ctx, usecase.LeadActionInput{LeadID: "L2", DealerProfileID: dealerID}))

	got, _ := store.Lead("L2")
	assert.Equal(t, entity.SentimentHot, got.SentimentLabel)
	assert.Equal(t, 91, got.Sentiment)
	assert.Equal(t, 1, brk.calls)
	assert.Equal(t, entity.SourceAI, events.Events()[0].Metadata["source"])
	completer.AssertNumberOfCalls(t, "Complete", 1)
}

// TestAnalyzeSentimentAIConfidenceClamped - out of range confidence is clamped into 60-99
func TestAnalyzeSentimentAIConfidenceClamped(t *testing.T) {
	cases := map[string]int{
		`{"label":"WARM","confidence":12}`:  60,
		`{"label":"WARM","confidence":140}`: 99,
		`{"label":"WARM"}`:                  60,
		`{"label":"WARM","confidence":72.4}`: 72,
	}
	for raw, want := range cases {
		store := seededStore()
		store.PutLead(newLead("L"))
		completer := new(MockCompleter)
		completer.On("Complete", mock.Anything, mock.Anything).Return(raw, nil)

		uc := usecase.NewAnalyzeSentimentUseCase(store, newMockEmitter(), usecase.NewAssistant(completer, nil))
		require.NoError(t, uc.Execute(context.Background(), usecase.LeadActionInput{LeadID: "L", DealerProfileID: dealerID}))

		got, _ := store.Lead("L")
		assert.Equal(t, entity.SentimentWarm, got.SentimentLabel, raw)
		assert.Equal(t, want, got.Sentiment, raw)
	}
}

// TestAnalyzeSentimentMalformedAIFallsBack - garbage and unknown labels use the rule
func TestAnalyzeSentimentMalformedAIFallsBack(t *testing.T) {
	for _, raw := range []string{"HOT!!", `{"label":"SCORCHING","confidence":90}`, `[]`} {
		store := seededStore()
		store.PutLead(newLead("L"))
		addMessages(store, "L", 1)
		events := newMockEmitter()
		completer := new(MockCompleter)
		completer.On("Complete", mock.Anything, mock.Anything).Return(raw, nil)

		uc := usecase.NewAnalyzeSentimentUseCase(store, events, usecase.NewAssistant(completer, nil))
		require.NoError(t, uc.Execute(context.Background(), usecase.LeadActionInput{LeadID: "L", DealerProfileID: dealerID}))

		got, _ := store.Lead("L")
		assert.Equal(t, entity.SentimentWarm, got.SentimentLabel, raw)
		assert.Equal(t, usecase.RuleConfidence, got.Sentiment, raw)
		assert.Equal(t, entity.SourceRule, events.Events()[0].Metadata["source"], raw)
	}
}

// TestAnalyzeSentimentBreakerOpenFallsBack - open breaker never reaches the API
func TestAnalyzeSentimentBreakerOpenFallsBack(t *testing.T) {
	store := seededStore()
	store.PutLead(newLead("L"))
	completer := new(MockCompleter)
	events := newMockEmitter()

	uc := usecase.NewAnalyzeSentimentUseCase(store, events, usecase.NewAssistant(completer, &fakeBreaker{open: true}))
	require.NoError(t, uc.Execute(context.Background(), usecase.LeadActionInput{LeadID: "L", DealerProfileID: dealerID}))

	completer.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
	got, _ := store.Lead("L")
	assert.Equal(t, entity.SentimentCool, got.SentimentLabel)
	assert.Equal(t, usecase.RuleConfidence, got.Sentiment)
	assert.Equal(t, entity.SourceRule, events.Events()[0].Metadata["source"])
}

// TestAnalyzeSentimentAIErrorFallsBack - transport errors are swallowed
func TestAnalyzeSentimentAIErrorFallsBack(t *testing.T) {
	store := seededStore()
	store.PutLead(newLead("L"))
	completer := new(MockCompleter)
	completer.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("context deadline exceeded"))

	uc := usecase.NewAnalyzeSentimentUseCase(store, newMockEmitter(), usecase.NewAssistant(completer, &fakeBreaker{}))
	assert.NoError(t, uc.Execute(context.Background(), usecase.LeadActionInput{LeadID: "L", DealerProfileID: dealerID}))

	got, _ := store.Lead("L")
	assert.Equal(t, usecase.RuleConfidence, got.Sentiment)
}

// TestAnalyzeSentimentIsIdempotent - the second run is a no-op
func TestAnalyzeSentimentIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := seededStore()
	store.PutLead(newLead("L1"))
	addMessages(store, "L1", 2)
	events := newMockEmitter()
	uc := usecase.NewAnalyzeSentimentUseCase(store, events, nil)
	in := usecase.LeadActionInput{LeadID: "L1", DealerProfileID: dealerID}

	require.NoError(t, uc.Execute(ctx, in))
	afterFirst, _ := store.Lead("L1")

	require.NoError(t, uc.Execute(ctx, in))
	afterSecond, _ := store.Lead("L1")

	assert.Equal(t, afterFirst, afterSecond)
	assert.Len(t, events.Events(), 1)
}

// TestAnalyzeSentimentSkipsAnalyzedLead - a lead outside the sentinel state is left alone
func TestAnalyzeSentimentSkipsAnalyzedLead(t *testing.T) {
	store := seededStore()
	lead := newLead("L1")
	lead.SentimentLabel = entity.SentimentCool
	lead.Sentiment = 75
	store.PutLead(lead)
	completer := new(MockCompleter)
	events := newMockEmitter()

	uc := usecase.NewAnalyzeSentimentUseCase(store, events, usecase.NewAssistant(completer, nil))
	require.NoError(t, uc.Execute(context.Background(), usecase.LeadActionInput{LeadID: "L1", DealerProfileID: dealerID}))

	got, _ := store.Lead("L1")
	assert.Equal(t, 75, got.Sentiment)
	completer.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
	assert.Empty(t, events.Events())
}

func TestAnalyzeSentimentMissingLeadIsNoop(t *testing.T) {
	events := newMockEmitter()
	uc := usecase.NewAnalyzeSentimentUseCase(seededStore(), events, nil)

	assert.NoError(t, uc.Execute(context.Background(), usecase.LeadActionInput{LeadID: "missing"}))
	assert.Empty(t, events.Events())
}

// TestAnalyzeSentimentStorageErrorIsReturned - repository failures reach the processor
func TestAnalyzeSentimentStorageErrorIsReturned(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLeadRepository)
	lead := newLead("L1")
	repo.On("FindWithContext", ctx, "L1").Return(&lead, nil)
	repo.On("UpdateSentiment", ctx, "L1", entity.SentimentCool, 60).Return(false, errors.New("connection reset"))
	events := newMockEmitter()

	uc := usecase.NewAnalyzeSentimentUseCase(repo, events, nil)
	err := uc.Execute(ctx, usecase.LeadActionInput{LeadID: "L1", DealerProfileID: dealerID})

	assert.ErrorContains(t, err, "connection reset")
	assert.Empty(t, events.Events(), "no event before the write is durable")
}

// TestAnalyzeSentimentEmitFailureDoesNotFail - the write already happened
func TestAnalyzeSentimentEmitFailureDoesNotFail(t *testing.T) {
	store := seededStore()
	store.PutLead(newLead("L1"))
	events := new(MockEmitter)
	events.On("Emit", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	uc := usecase.NewAnalyzeSentimentUseCase(store, events, nil)
	assert.NoError(t, uc.Execute(context.Background(), usecase.LeadActionInput{LeadID: "L1", DealerProfileID: dealerID}))

	got, _ := store.Lead("L1")
	assert.Equal(t, usecase.RuleConfidence, got.Sentiment)
}
