package eventpublisher

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/iho/bankcore/internal/domain"
)

// DefaultChannel is the pub/sub channel committed events are pushed to.
const DefaultChannel = "bankcore.events"

// RedisPublisher pushes events to a Redis pub/sub channel so that presentation
// layers can react to committed operations without polling.
type RedisPublisher struct {
	client  redis.UniversalClient
	channel string
}

// NewRedisPublisher creates a publisher on channel, or DefaultChannel when empty.
func NewRedisPublisher(client redis.UniversalClient, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}

	return &RedisPublisher{client: client, channel: channel}
}

// Publish sends the event as JSON.
func (p *RedisPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	body, err := encode(event)
	if err != nil {
		return err
	}

	return p.client.Publish(ctx, p.channel, body).Err()
}
