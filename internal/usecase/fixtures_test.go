package usecase_test

import (
	"fmt"
	"time"

	"github.com/xavierca1/autovault-agents/internal/entity"
	"github.com/xavierca1/autovault-agents/internal/infra/memory"
)

const (
	dealerID  = "D1"
	ownerID   = "U1"
	vehicleID = "V1"
)

func seededStore() *memory.Store {
	s := memory.NewStore()
	s.PutDealer(entity.DealerProfile{ID: dealerID, UserID: ownerID, BusinessName: "Sharma Motors", Email: "owner@sharmamotors.in"})
	s.PutVehicle(entity.Vehicle{ID: vehicleID, Name: "2019 Hyundai Creta SX", Price: 1150000})
	return s
}

func newLead(id string) entity.Lead {
	return entity.Lead{
		ID:              id,
		DealerProfileID: dealerID,
		VehicleID:       vehicleID,
		BuyerName:       "Priya",
		Source:          "WEBSITE",
		Status:          entity.LeadStatusNew,
		SentimentLabel:  entity.SentimentCool,
		Sentiment:       0,
		CreatedAt:       time.Now(),
	}
}

func addMessages(s *memory.Store, leadID string, n int) {
	base := time.Now().Add(-time.Hour)
	for i := 0; i < n; i++ {
		s.AddMessage(entity.LeadMessage{
			ID:        fmt.Sprintf("%s-m%d", leadID, i),
			LeadID:    leadID,
			Role:      entity.RoleBuyer,
			Text:      fmt.Sprintf("message %d", i),
			Type:      entity.MessageTypeManual,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
}
