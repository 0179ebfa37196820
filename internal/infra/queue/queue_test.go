package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/autovault-agents/internal/entity"
)

type fakePublisher struct {
	exchange, key string
	msg           amqp.Publishing
	err           error
}

func (f *fakePublisher) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	return f.err
}

func TestEventPublisherEmit(t *testing.T) {
	pub := &fakePublisher{}
	p := NewEventPublisher(pub)

	err := p.Emit(context.Background(), entity.PlatformEvent{
		Type: entity.EventSentimentAnalyzed, EntityType: entity.EntityLead, EntityID: "L1", DealerProfileID: "D1",
		Metadata: map[string]any{"label": "HOT"},
	})

	require.NoError(t, err)
	assert.Equal(t, ExchangeName, pub.exchange)
	assert.Equal(t, RoutingKey, pub.key)
	assert.Equal(t, amqp.Persistent, pub.msg.DeliveryMode)
	assert.Equal(t, "SENTIMENT_ANALYZED", pub.msg.Type)
	assert.NotEmpty(t, pub.msg.MessageId)

	var decoded entity.PlatformEvent
	require.NoError(t, json.Unmarshal(pub.msg.Body, &decoded))
	assert.Equal(t, "HOT", decoded.MetaString("label"))
	assert.False(t, decoded.OccurredAt.IsZero())
}

func TestEventPublisherErrors(t *testing.T) {
	p := NewEventPublisher(&fakePublisher{err: errors.New("channel closed")})

	assert.Error(t, p.Emit(context.Background(), entity.PlatformEvent{Type: entity.EventLeadCreated}))
	assert.ErrorContains(t,
		p.Emit(context.Background(), entity.PlatformEvent{Type: entity.EventLeadCreated, EntityType: entity.EntityLead, EntityID: "L1"}),
		"channel closed")
}

type fakeAck struct {
	mu      sync.Mutex
	acks    int
	nacks   int
	requeue bool
}

func (a *fakeAck) Ack(uint64, bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acks++
	return nil
}

func (a *fakeAck) Nack(_ uint64, _ bool, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nacks++
	a.requeue = a.requeue || requeue
	return nil
}

func (a *fakeAck) Reject(uint64, bool) error { return nil }

type fakeProcessor struct {
	mu     sync.Mutex
	events []entity.PlatformEvent
}

func (p *fakeProcessor) Process(_ context.Context, e entity.PlatformEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

type fakeConsumer struct {
	deliveries chan amqp.Delivery
}

func (c *fakeConsumer) Qos(int, int, bool) error { return nil }

func (c *fakeConsumer) Consume(string, string, bool, bool, bool, bool, amqp.Table) (<-chan amqp.Delivery, error) {
	return c.deliveries, nil
}

func TestWorkerHandle(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantAck   int
		wantNack  int
		processed int
	}{
		{"valid event", `{"type":"VEHICLE_WISHLISTED","entityType":"Vehicle","entityId":"V1"}`, 1, 0, 1},
		{"malformed json", `{"type":`, 0, 1, 0},
		{"missing entity id", `{"type":"LEAD_CREATED","entityType":"Lead"}`, 0, 1, 0},
		{"unknown type still acked", `{"type":"PRICE_DROPPED","entityType":"Vehicle","entityId":"V1"}`, 1, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := &fakeAck{}
			proc := &fakeProcessor{}
			w := NewWorker(nil, proc)

			w.handle(context.Background(), amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: []byte(tt.body)})

			assert.Equal(t, tt.wantAck, ack.acks)
			assert.Equal(t, tt.wantNack, ack.nacks)
			assert.False(t, ack.requeue, "deliveries are never requeued")
			assert.Len(t, proc.events, tt.processed)
		})
	}
}

func TestWorkerStartStopsOnCancel(t *testing.T) {
	consumer := &fakeConsumer{deliveries: make(chan amqp.Delivery, 2)}
	proc := &fakeProcessor{}
	ack := &fakeAck{}
	w := NewWorker(consumer, proc)
	ctx, cancel := context.WithCancel(context.Background())

	consumer.deliveries <- amqp.Delivery{Acknowledger: ack, Body: []byte(`{"type":"VEHICLE_WISHLISTED","entityType":"Vehicle","entityId":"V1"}`)}

	done := make(chan error, 1)
	go func() { done <- w.Start(ctx, QueueName) }()

	require.Eventually(t, func() bool {
		ack.mu.Lock()
		defer ack.mu.Unlock()
		return ack.acks == 1
	}, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}

type recordingTopology struct {
	exchanges []string
	queues    map[string]amqp.Table
	bindings  []string
}

func (r *recordingTopology) ExchangeDeclare(name, _ string, _, _, _, _ bool, _ amqp.Table) error {
	r.exchanges = append(r.exchanges, name)
	return nil
}

func (r *recordingTopology) QueueDeclare(name string, _, _, _, _ bool, args amqp.Table) (amqp.Queue, error) {
	if r.queues == nil {
		r.queues = map[string]amqp.Table{}
	}
	r.queues[name] = args
	return amqp.Queue{Name: name}, nil
}

func (r *recordingTopology) QueueBind(name, key, exchange string, _ bool, _ amqp.Table) error {
	r.bindings = append(r.bindings, exchange+"/"+key+"->"+name)
	return nil
}

func TestSetupTopology(t *testing.T) {
	top := &recordingTopology{}
	require.NoError(t, SetupTopology(top))

	assert.ElementsMatch(t, []string{DLXName, ExchangeName}, top.exchanges)
	assert.Equal(t, DLXName, top.queues[QueueName]["x-dead-letter-exchange"])
	assert.Contains(t, top.bindings, DLXName+"/"+RoutingKey+"->"+DLQName)
	assert.Contains(t, top.bindings, ExchangeName+"/"+RoutingKey+"->"+QueueName)
}
