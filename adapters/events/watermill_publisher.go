package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/xrpstake/stakeboard/core"
	"github.com/xrpstake/stakeboard/ports"
)

const (
	// LoginTopic carries completed login handshakes.
	LoginTopic = "auth.login"

	// EscrowChangedTopic carries completed escrow-create and
	// escrow-finish handshakes, so dashboards can refresh their view.
	EscrowChangedTopic = "escrow.changed"
)

// LoginEvent is published when a login request is finalized.
type LoginEvent struct {
	Address   string `json:"address"`
	RequestID string `json:"request_id"`
}

// EscrowChangedEvent is published when an escrow request is finalized.
type EscrowChangedEvent struct {
	Address   string `json:"address"`
	RequestID string `json:"request_id"`
	Kind      string `json:"kind"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill.
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new Watermill publisher.
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{publisher: publisher}
}

// PublishLogin publishes a login event.
func (p *WatermillPublisher) PublishLogin(ctx context.Context, address, requestID string) error {
	return p.publish(LoginTopic, LoginEvent{
		Address:   address,
		RequestID: requestID,
	})
}

// PublishEscrowChanged publishes an escrow change event.
func (p *WatermillPublisher) PublishEscrowChanged(ctx context.Context, address, requestID string, kind core.SignRequestKind) error {
	return p.publish(EscrowChangedTopic, EscrowChangedEvent{
		Address:   address,
		RequestID: requestID,
		Kind:      string(kind),
	})
}

func (p *WatermillPublisher) publish(topic string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.NewString(), payload)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
