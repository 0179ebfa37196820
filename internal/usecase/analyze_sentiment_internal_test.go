package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xavierca1/autovault-agents/internal/entity"
)

func TestParseSentiment(t *testing.T) {
	tests := []struct {
		raw        string
		label      entity.SentimentLabel
		confidence int
		ok         bool
	}{
		{`{"label":"HOT","confidence":88}`, entity.SentimentHot, 88, true},
		{`{"label":" cool ","confidence":99.6}`, entity.SentimentCool, 99, true},
		{`{"label":"WARM","confidence":-5}`, entity.SentimentWarm, 60, true},
		{`{"label":"LUKEWARM","confidence":70}`, "", 0, false},
		{`{"confidence":70}`, "", 0, false},
		{`not json`, "", 0, false},
	}
	for _, tt := range tests {
		label, confidence, ok := parseSentiment(tt.raw)
		assert.Equal(t, tt.ok, ok, tt.raw)
		assert.Equal(t, tt.label, label, tt.raw)
		assert.Equal(t, tt.confidence, confidence, tt.raw)
	}
}

func TestSentimentRequestIncludesContext(t *testing.T) {
	lead := &entity.Lead{
		BuyerName: "Priya",
		Message:   "Is the price negotiable?",
		Source:    "WEBSITE",
		Vehicle:   &entity.VehicleSummary{Name: "2019 Hyundai Creta SX", Price: 1150000},
		Messages:  []entity.LeadMessage{{Role: entity.RoleBuyer, Text: "Can I visit Saturday?"}},
	}
	req := sentimentRequest(lead)

	assert.True(t, req.JSON)
	assert.Equal(t, 50, req.MaxTokens)
	assert.Contains(t, req.User, "2019 Hyundai Creta SX (₹1150000)")
	assert.Contains(t, req.User, "Messages exchanged: 1")
	assert.Contains(t, req.User, "BUYER: Can I visit Saturday?")
}
