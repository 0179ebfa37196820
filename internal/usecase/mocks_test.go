package usecase_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/autovault-agents/internal/entity"
	"github.com/xavierca1/autovault-agents/internal/infra/ai"
	"github.com/xavierca1/autovault-agents/internal/infra/breaker"
)

// MockEmitter
type MockEmitter struct {
	mock.Mock
}

func newMockEmitter() *MockEmitter {
	m := new(MockEmitter)
	m.On("Emit", mock.Anything, mock.Anything).Return(nil)
	return m
}

func (m *MockEmitter) Emit(ctx context.Context, event entity.PlatformEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEmitter) Events() []entity.PlatformEvent {
	var out []entity.PlatformEvent
	for _, c := range m.Calls {
		if c.Method == "Emit" {
			out = append(out, c.Arguments.Get(1).(entity.PlatformEvent))
		}
	}
	return out
}

// MockCompleter
type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, req ai.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// MockMailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendNotification(to, subject, body, link string) error {
	args := m.Called(to, subject, body, link)
	return args.Error(0)
}

// MockLeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) FindWithContext(ctx context.Context, id string) (*entity.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) UpdateSentiment(ctx context.Context, id string, label entity.SentimentLabel, confidence int) (bool, error) {
	args := m.Called(ctx, id, label, confidence)
	return args.Bool(0), args.Error(1)
}

func (m *MockLeadRepository) CountMessages(ctx context.Context, leadID string) (int, error) {
	args := m.Called(ctx, leadID)
	return args.Int(0), args.Error(1)
}

func (m *MockLeadRepository) CreateMessage(ctx context.Context, msg *entity.LeadMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockLeadRepository) CountUnresponsive(ctx context.Context, dealerProfileID string, createdBefore time.Time) (int, error) {
	args := m.Called(ctx, dealerProfileID, createdBefore)
	return args.Int(0), args.Error(1)
}

// fakeBreaker can be forced open to exercise the fallback paths.
type fakeBreaker struct {
	open  bool
	calls int
}

func (b *fakeBreaker) Run(ctx context.Context, _ string, op func(context.Context) (string, error)) (string, error) {
	b.calls++
	if b.open {
		return "", breaker.ErrOpen
	}
	return op(ctx)
}
