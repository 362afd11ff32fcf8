package providers

import (
	"context"

	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to
// queue events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.QueueEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.QueueEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

const (
	// EventChannelLabUpdates is the channel carrying all lab queue updates
	EventChannelLabUpdates = "lab:updates"

	// EventChannelLabPrefix is the prefix for lab-specific channels
	EventChannelLabPrefix = "lab:"
)

// GetLabChannel returns the channel name for a specific lab
func GetLabChannel(labID string) string {
	return EventChannelLabPrefix + labID
}
