package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const DefaultChannelPrefix = "outbound:"

// publishClient is the part of *redis.Client the publisher needs.
type publishClient interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisPublisher publishes messages to the "<prefix><conversation id>" channel,
// where the conversation backend's adapter is subscribed.
type RedisPublisher struct {
	rdb    publishClient
	prefix string
}

func NewRedisPublisher(rdb publishClient, prefix string) *RedisPublisher {
	if prefix == "" {
		prefix = DefaultChannelPrefix
	}
	return &RedisPublisher{rdb: rdb, prefix: prefix}
}

func (p *RedisPublisher) Publish(ctx context.Context, msg OutboundMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshaling message: %w", err)
	}
	channel := p.prefix + msg.ConversationID
	if err := p.rdb.Publish(ctx, channel, string(data)).Err(); err != nil {
		return fmt.Errorf("publishing to %s: %w", channel, err)
	}
	return nil
}
