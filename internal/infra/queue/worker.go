package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/autovault-agents/internal/entity"
)

const (
	defaultConcurrency = 4
	defaultTimeout     = 30 * time.Second
)

type Consumer interface {
	Qos(prefetchCount, prefetchSize int, global bool) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

type EventProcessor interface {
	Process(ctx context.Context, event entity.PlatformEvent)
}

type Worker struct {
	Channel     Consumer
	Processor   EventProcessor
	Concurrency int
	Timeout     time.Duration
}

func NewWorker(ch Consumer, processor EventProcessor) *Worker {
	return &Worker{
		Channel:     ch,
		Processor:   processor,
		Concurrency: defaultConcurrency,
		Timeout:     defaultTimeout,
	}
}

// Start consumes the queue until ctx is cancelled or the channel closes,
// then waits for in-flight deliveries.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	n := w.Concurrency
	if n <= 0 {
		n = defaultConcurrency
	}
	if err := w.Channel.Qos(n, 0, false); err != nil {
		return fmt.Errorf("set prefetch: %w", err)
	}

	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	slog.Info("queue worker started", "queue", queueName, "concurrency", n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case d, ok := <-msgs:
					if !ok {
						return
					}
					w.handle(ctx, d)
				}
			}
		}()
	}
	wg.Wait()

	slog.Info("queue worker stopped", "queue", queueName)
	return nil
}

// handle acks every delivery it can decode. Action failures are handled by
// the processor, so only malformed payloads are dead-lettered.
func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	var event entity.PlatformEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		slog.Warn("malformed event, dead-lettering", "message_id", d.MessageId, "error", err)
		_ = d.Nack(false, false)
		return
	}
	if err := event.Validate(); err != nil {
		slog.Warn("invalid event, dead-lettering", "message_id", d.MessageId, "error", err)
		_ = d.Nack(false, false)
		return
	}

	timeout := w.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	w.Processor.Process(pctx, event)
	if err := d.Ack(false); err != nil {
		slog.Error("ack failed", "message_id", d.MessageId, "error", err)
	}
}
