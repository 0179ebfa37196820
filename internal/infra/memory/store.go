// Package memory is an in-process implementation of the agent repositories,
// used for local runs without Postgres and in tests.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/xavierca1/autovault-agents/internal/entity"
)

const recentMessages = 10

type Store struct {
	mu            sync.Mutex
	leads         map[string]entity.Lead
	messages      map[string][]entity.LeadMessage
	dealers       map[string]entity.DealerProfile
	preferences   map[string]entity.DealerPreference
	vehicles      map[string]entity.Vehicle
	wishlists     map[string]int
	notifications []entity.Notification
}

func NewStore() *Store {
	return &Store{
		leads:       make(map[string]entity.Lead),
		messages:    make(map[string][]entity.LeadMessage),
		dealers:     make(map[string]entity.DealerProfile),
		preferences: make(map[string]entity.DealerPreference),
		vehicles:    make(map[string]entity.Vehicle),
		wishlists:   make(map[string]int),
	}
}

// Seeding helpers.

func (s *Store) PutLead(l entity.Lead) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l.Messages = nil
	s.leads[l.ID] = l
}

func (s *Store) AddMessage(m entity.LeadMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[m.LeadID] = append(s.messages[m.LeadID], m)
}

func (s *Store) PutDealer(d entity.DealerProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dealers[d.ID] = d
}

func (s *Store) PutPreference(p entity.DealerPreference) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.preferences[p.DealerProfileID] = p
}

func (s *Store) PutVehicle(v entity.Vehicle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vehicles[v.ID] = v
}

func (s *Store) SetWishlistCount(vehicleID string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wishlists[vehicleID] = n
}

// Inspection helpers.

func (s *Store) Lead(id string) (entity.Lead, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.leads[id]
	return l, ok
}

func (s *Store) Messages(leadID string) []entity.LeadMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.messages[leadID])
}

func (s *Store) Vehicle(id string) (entity.Vehicle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vehicles[id]
	return v, ok
}

func (s *Store) Notifications() []entity.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.notifications)
}

// LeadRepository

func (s *Store) FindWithContext(_ context.Context, id string) (*entity.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.leads[id]
	if !ok {
		return nil, entity.ErrNotFound
	}

	msgs := slices.Clone(s.messages[id])
	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].CreatedAt.After(msgs[j].CreatedAt) })
	if len(msgs) > recentMessages {
		msgs = msgs[:recentMessages]
	}
	l.Messages = msgs

	if v, ok := s.vehicles[l.VehicleID]; ok && l.VehicleID != "" {
		l.Vehicle = &entity.VehicleSummary{ID: v.ID, Name: v.Name, Price: v.Price}
	}
	return &l, nil
}

func (s *Store) UpdateSentiment(_ context.Context, id string, label entity.SentimentLabel, confidence int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.leads[id]
	if !ok || !l.Unanalyzed() {
		return false, nil
	}
	l.SentimentLabel = label
	l.Sentiment = confidence
	l.UpdatedAt = time.Now()
	s.leads[id] = l
	return true, nil
}

func (s *Store) CountMessages(_ context.Context, leadID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages[leadID]), nil
}

func (s *Store) CreateMessage(_ context.Context, msg *entity.LeadMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.leads[msg.LeadID]; !ok {
		return entity.ErrNotFound
	}
	s.messages[msg.LeadID] = append(s.messages[msg.LeadID], *msg)
	return nil
}

func (s *Store) CountUnresponsive(_ context.Context, dealerProfileID string, createdBefore time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, l := range s.leads {
		if l.DealerProfileID == dealerProfileID &&
			l.Status == entity.LeadStatusNew &&
			l.CreatedAt.Before(createdBefore) &&
			len(s.messages[l.ID]) == 0 {
			n++
		}
	}
	return n, nil
}

// DealerRepository

func (s *Store) FindByID(_ context.Context, id string) (*entity.DealerProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.dealers[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return &d, nil
}

func (s *Store) FindPreference(_ context.Context, dealerProfileID string) (*entity.DealerPreference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.preferences[dealerProfileID]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return &p, nil
}

func (s *Store) ListIDs(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.dealers))
	for id := range s.dealers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// VehicleRepository

func (s *Store) CountWishlist(_ context.Context, vehicleID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wishlists[vehicleID], nil
}

func (s *Store) PromoteToTrending(_ context.Context, vehicleID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.vehicles[vehicleID]
	if !ok || !v.CanEscalateToTrending() {
		return false, nil
	}
	v.Badge = entity.BadgeTrending
	s.vehicles[vehicleID] = v
	return true, nil
}

// NotificationRepository

func (s *Store) Create(_ context.Context, n *entity.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, *n)
	return nil
}
