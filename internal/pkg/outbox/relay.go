package outbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	DefaultPollInterval = 3 * time.Second
	defaultBatchLimit   = 50
)

// MessageWriter is satisfied by *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// NewKafkaWriter returns a writer that routes each message by its own topic
// and partitions by key so events of one run stay ordered.
func NewKafkaWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
}

// Relay publishes pending outbox rows to Kafka.
type Relay struct {
	store        Store
	writer       MessageWriter
	pollInterval time.Duration
	batchLimit   int
}

func NewRelay(store Store, writer MessageWriter, pollInterval time.Duration) *Relay {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &Relay{
		store:        store,
		writer:       writer,
		pollInterval: pollInterval,
		batchLimit:   defaultBatchLimit,
	}
}

// Run polls until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	slog.Info("Outbox relay started", "poll_interval", r.pollInterval.String())

	for {
		select {
		case <-ctx.Done():
			slog.Info("Outbox relay stopped")
			return
		case <-ticker.C:
			if err := r.ProcessPending(ctx); err != nil {
				slog.Error("Failed to process outbox events", "error", err)
			}
		}
	}
}

// ProcessPending publishes one batch of due events. A failed publish is
// recorded on the row and retried on a later poll.
func (r *Relay) ProcessPending(ctx context.Context) error {
	events, err := r.store.ListPending(ctx, r.batchLimit)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	slog.Debug("Processing pending outbox events", "count", len(events))

	for _, event := range events {
		if err := r.writer.WriteMessages(ctx, message(event)); err != nil {
			slog.Error("Failed to publish outbox event",
				"outbox_id", event.ID,
				"event_type", event.EventType,
				"topic", event.Topic,
				"error", err)
			if markErr := r.store.MarkFailed(ctx, event.ID, err.Error()); markErr != nil {
				slog.Error("Failed to mark outbox event failed", "outbox_id", event.ID, "error", markErr)
			}
			continue
		}

		if err := r.store.MarkSent(ctx, event.ID); err != nil {
			slog.Error("Failed to mark outbox event sent", "outbox_id", event.ID, "error", err)
			continue
		}

		slog.Info("Outbox event sent",
			"outbox_id", event.ID,
			"event_type", event.EventType,
			"topic", event.Topic)
	}

	return nil
}

func message(event Event) kafka.Message {
	return kafka.Message{
		Topic: event.Topic,
		Key:   []byte(event.AggregateID),
		Value: event.Payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "aggregate_type", Value: []byte(event.AggregateType)},
		},
	}
}
