// Package pubsub publishes encoded simulation snapshots on a redis channel
// so that out-of-process renderers can subscribe to the live feed.
package pubsub

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RedisSnapshotPublisher publishes snapshot payloads on a fixed redis channel.
type RedisSnapshotPublisher struct {
	client  *redis.Client
	channel string
}

// NewRedisSnapshotPublisher creates a publisher on the given client and channel.
func NewRedisSnapshotPublisher(client *redis.Client, channel string) *RedisSnapshotPublisher {
	return &RedisSnapshotPublisher{
		client:  client,
		channel: channel,
	}
}

// Publish sends one encoded snapshot to the channel. Subscribers that joined
// late simply miss earlier frames.
func (p *RedisSnapshotPublisher) Publish(ctx context.Context, payload []byte) error {
	return p.client.Publish(ctx, p.channel, payload).Err()
}
