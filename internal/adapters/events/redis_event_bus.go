package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/domain/entities"
	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/domain/providers"
	redisclient "github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/infrastructure/clients/redis"
)

// RedisEventBus implements the EventBus interface using Redis Pub/Sub
type RedisEventBus struct {
	client        *redisclient.Client
	subscriptions map[string]*redis.PubSub
	subscribers   map[string]map[chan *entities.QueueEvent]struct{}
	mu            sync.RWMutex
	ctx           context.Context
	cancel        context.CancelFunc
}

// NewRedisEventBus creates a new Redis-based event bus
func NewRedisEventBus(client *redisclient.Client) providers.EventBus {
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisEventBus{
		client:        client,
		subscriptions: make(map[string]*redis.PubSub),
		subscribers:   make(map[string]map[chan *entities.QueueEvent]struct{}),
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Publish publishes an event to all subscribers
func (b *RedisEventBus) Publish(ctx context.Context, channel string, event *entities.QueueEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.client.Client().Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// Subscribe subscribes to events on a channel
func (b *RedisEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.QueueEvent, error) {
	b.mu.Lock()

	if _, exists := b.subscriptions[channel]; !exists {
		pubsub := b.client.Client().Subscribe(b.ctx, channel)
		b.subscriptions[channel] = pubsub
		go b.receiveMessages(channel, pubsub)
	}

	if b.subscribers[channel] == nil {
		b.subscribers[channel] = make(map[chan *entities.QueueEvent]struct{})
	}

	eventChan := make(chan *entities.QueueEvent, 100)
	b.subscribers[channel][eventChan] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.removeSubscriber(channel, eventChan)
	}()

	return eventChan, nil
}

// Unsubscribe unsubscribes from a channel entirely
func (b *RedisEventBus) Unsubscribe(channelCtx context.Context, channel string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if pubsub, exists := b.subscriptions[channel]; exists {
		if err := pubsub.Close(); err != nil {
			return fmt.Errorf("failed to close subscription: %w", err)
		}
		delete(b.subscriptions, channel)
	}

	for ch := range b.subscribers[channel] {
		close(ch)
	}
	delete(b.subscribers, channel)

	return nil
}

// Close closes the event bus and all subscriptions
func (b *RedisEventBus) Close() error {
	b.cancel()

	b.mu.Lock()
	defer b.mu.Unlock()

	for channel, pubsub := range b.subscriptions {
		if err := pubsub.Close(); err != nil {
			log.Printf("Failed to close subscription for channel %s: %v", channel, err)
		}
		for ch := range b.subscribers[channel] {
			close(ch)
		}
	}

	b.subscriptions = make(map[string]*redis.PubSub)
	b.subscribers = make(map[string]map[chan *entities.QueueEvent]struct{})

	return nil
}

// receiveMessages fans incoming Redis messages out to local subscribers
func (b *RedisEventBus) receiveMessages(channel string, pubsub *redis.PubSub) {
	for msg := range pubsub.Channel() {
		var event entities.QueueEvent
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			log.Printf("Failed to unmarshal event on channel %s: %v", channel, err)
			continue
		}

		b.mu.RLock()
		for ch := range b.subscribers[channel] {
			select {
			case ch <- &event:
			default:
				// Slow subscriber; drop rather than block the fan-out.
			}
		}
		b.mu.RUnlock()
	}
}

func (b *RedisEventBus) removeSubscriber(channel string, eventChan chan *entities.QueueEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if subs, exists := b.subscribers[channel]; exists {
		if _, ok := subs[eventChan]; ok {
			delete(subs, eventChan)
			close(eventChan)
		}
		if len(subs) == 0 {
			delete(b.subscribers, channel)
			if pubsub, ok := b.subscriptions[channel]; ok {
				if err := pubsub.Close(); err != nil {
					log.Printf("Failed to close subscription for channel %s: %v", channel, err)
				}
				delete(b.subscriptions, channel)
			}
		}
	}
}
