package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"BangerBoard/internal/domain"
	"BangerBoard/internal/ports"
)

// messageWriter is the part of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher emits change events to a topic so read caches can refresh.
type KafkaPublisher struct {
	writer messageWriter
}

var _ ports.ChangePublisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher builds a writer balancing by key, so events of one entity stay ordered.
// Writes are asynchronous: PublishChange only enqueues, and delivery failures
// are logged by the completion callback instead of stalling the caller.
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) *KafkaPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "changes", "topic", topic)
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           50 * time.Millisecond,
		WriteTimeout:           5 * time.Second,
		MaxAttempts:            3,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		Async:                  true,
		Completion:             completionLogger(logger),
	}}
}

func completionLogger(logger *slog.Logger) func([]kafka.Message, error) {
	return func(msgs []kafka.Message, err error) {
		if err == nil {
			return
		}
		keys := make([]string, 0, len(msgs))
		for _, m := range msgs {
			keys = append(keys, string(m.Key))
		}
		logger.Warn("change events not delivered", "count", len(msgs), "keys", keys, "error", err)
	}
}

type changeMessage struct {
	EventID string    `json:"eventId"`
	Entity  string    `json:"entity"`
	ID      int64     `json:"id,omitempty"`
	Action  string    `json:"action"`
	At      time.Time `json:"at"`
}

// PublishChange writes one JSON message keyed by entity.
func (p *KafkaPublisher) PublishChange(ctx context.Context, event domain.ChangeEvent) error {
	msg := changeMessage{
		EventID: uuid.NewString(),
		Entity:  event.Entity,
		ID:      event.ID,
		Action:  event.Action,
		At:      event.At.UTC(),
	}
	value, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode change event: %w", err)
	}

	key := event.Entity
	if event.ID != 0 {
		key += ":" + strconv.FormatInt(event.ID, 10)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event-id", Value: []byte(msg.EventID)},
		},
	})
	if err != nil {
		return fmt.Errorf("write change event: %w", err)
	}
	return nil
}

// Close flushes pending messages.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
