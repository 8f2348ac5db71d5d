// Package events publishes domain events about submissions and verdict checks.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "eligibility-workers/internal/common/errors"
)

// Event types.
const (
	TypeApplicationSubmitted = "application.submitted"
	TypeVerdictChecked       = "verdict.checked"
)

// Event is the published message body. It never carries attributes or scores.
type Event struct {
	EventID    string    `json:"eventId"`
	EventType  string    `json:"eventType"`
	Identity   string    `json:"identity"`
	TxHash     string    `json:"txHash,omitempty"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurredAt"`
}

func NewEvent(eventType, identity, txHash, status string) Event {
	return Event{
		EventID:    uuid.New().String(),
		EventType:  eventType,
		Identity:   identity,
		TxHash:     txHash,
		Status:     status,
		OccurredAt: time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Topic is satisfied by *aws.SNSClient.
type Topic interface {
	PublishJSON(ctx context.Context, message string, attributes map[string]string) (string, error)
}

type SNSPublisher struct {
	topic Topic
}

func NewSNSPublisher(topic Topic) *SNSPublisher {
	return &SNSPublisher{topic: topic}
}

func (p *SNSPublisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return apperrors.NewEventPublishError(fmt.Errorf("marshal event: %w", err))
	}
	if _, err := p.topic.PublishJSON(ctx, string(body), map[string]string{"eventType": event.EventType}); err != nil {
		return apperrors.NewEventPublishError(err)
	}
	return nil
}

// NoopPublisher is used when notifications are disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
