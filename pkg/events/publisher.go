package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// RideEvent is one lifecycle transition as seen by downstream consumers.
type RideEvent struct {
	Type    string    `json:"type"`
	RideID  string    `json:"rideId"`
	Status  string    `json:"status"`
	UserID  string    `json:"userId,omitempty"`
	RiderID string    `json:"riderId,omitempty"`
	At      time.Time `json:"at"`
}

type Publisher interface {
	PublishRideEvent(ctx context.Context, event RideEvent) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer  messageWriter
	timeout time.Duration
}

// NewKafkaPublisher keys messages by ride id so a ride's events stay on one
// partition in order.
func NewKafkaPublisher(brokers []string, topic string, timeout time.Duration) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
	return newKafkaPublisher(w, timeout)
}

func newKafkaPublisher(w messageWriter, timeout time.Duration) *KafkaPublisher {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &KafkaPublisher{writer: w, timeout: timeout}
}

func (k *KafkaPublisher) PublishRideEvent(ctx context.Context, event RideEvent) error {
	ctx, cancel := context.WithTimeout(ctx, k.timeout)
	defer cancel()

	b, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode ride event: %w", err)
	}
	if err := k.writer.WriteMessages(ctx, kafka.Message{Key: []byte(event.RideID), Value: b}); err != nil {
		return fmt.Errorf("failed to publish ride event: %w", err)
	}
	return nil
}

func (k *KafkaPublisher) Close() error {
	if k.writer == nil {
		return nil
	}
	return k.writer.Close()
}

// NopPublisher drops everything; used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) PublishRideEvent(context.Context, RideEvent) error { return nil }
func (NopPublisher) Close() error                                       { return nil }
