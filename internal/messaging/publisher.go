package messaging

import (
	"context"

	"github.com/fractionft/fractionft/internal/domain"
)

// Publisher defines the interface for publishing events to the message queue
//
//go:generate mockgen -source=publisher.go -destination=../mocks/publisher.go -package=mocks -mock_names=Publisher=MockPublisher
type Publisher interface {
	// PublishEvent publishes an ownership event to the message broker
	PublishEvent(ctx context.Context, event *domain.OwnershipEvent) error
	// Close closes the connection
	Close()
}
