// Package events publishes booking lifecycle notifications to Kafka.
// Publishing is best effort: the booking flow never fails because a
// notification could not be delivered.
package events

import (
	"context"
	"fmt"

	"locomotion/pkg/kafka"
	"locomotion/pkg/logger"
	"locomotion/pkg/model"
)

const (
	EventBookingCreated        = "booking.created"
	EventBookingProofSubmitted = "booking.proof_submitted"
	EventBookingCompleted      = "booking.completed"

	sourceService = "marketplace"
	schemaVersion = "1.0"
)

type Publisher interface {
	PublishBookingEvent(ctx context.Context, eventType string, booking *model.Booking) error
	Close() error
}

type kafkaPublisher struct {
	producer *kafka.Producer
	log      *logger.Logger
}

func NewKafkaPublisher(producer *kafka.Producer, log *logger.Logger) Publisher {
	return &kafkaPublisher{
		producer: producer,
		log:      log,
	}
}

func (p *kafkaPublisher) PublishBookingEvent(ctx context.Context, eventType string, booking *model.Booking) error {
	// Keyed by slot so all events for one slot land on one partition
	// in order.
	msg, err := kafka.NewMessage().
		WithKey(booking.SlotID).
		WithValue(booking).
		WithEventType(eventType).
		WithSource(sourceService).
		WithSchemaVersion(schemaVersion).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build booking event: %w", err)
	}

	if err := p.producer.Publish(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish booking event: %w", err)
	}

	p.log.Debug("Booking event published",
		"event_type", eventType,
		"booking_id", booking.ID,
		"slot_id", booking.SlotID,
	)
	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}

// NoopPublisher is used when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishBookingEvent(ctx context.Context, eventType string, booking *model.Booking) error {
	return nil
}

func (NoopPublisher) Close() error {
	return nil
}
