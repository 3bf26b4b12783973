// Package pubsub relays notification events between service instances
// over Redis pub/sub.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/saransh1220/panchakarma/internal/modules/notification/domain"
	"go.uber.org/zap"
)

const DefaultChannel = "notifications:events"

type redisPublisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// RedisPublisher stamps events with this instance's origin and publishes
// them as JSON.
type RedisPublisher struct {
	client  redisPublisher
	channel string
	origin  string
}

func NewRedisPublisher(client redisPublisher, channel, origin string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{client: client, channel: channel, origin: origin}
}

func (p *RedisPublisher) Publish(ctx context.Context, event domain.Event) error {
	if event.Origin == "" {
		event.Origin = p.origin
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

// RedisSubscriber forwards events published by other instances to a local
// publisher, usually the WebSocket hub.
type RedisSubscriber struct {
	client  *redis.Client
	channel string
	origin  string
	target  domain.EventPublisher
	logger  *zap.Logger
}

func NewRedisSubscriber(client *redis.Client, channel, origin string, target domain.EventPublisher, logger *zap.Logger) *RedisSubscriber {
	if channel == "" {
		channel = DefaultChannel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisSubscriber{
		client:  client,
		channel: channel,
		origin:  origin,
		target:  target,
		logger:  logger.Named("redis_subscriber"),
	}
}

// Run subscribes and relays until ctx is cancelled.
func (s *RedisSubscriber) Run(ctx context.Context) error {
	sub := s.client.Subscribe(ctx, s.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe %s: %w", s.channel, err)
	}
	s.logger.Info("subscribed", zap.String("channel", s.channel))

	s.Relay(ctx, sub.Channel())
	return nil
}

// Relay consumes messages until the channel closes or ctx is done.
func (s *RedisSubscriber) Relay(ctx context.Context, messages <-chan *redis.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			s.handle(ctx, msg)
		}
	}
}

func (s *RedisSubscriber) handle(ctx context.Context, msg *redis.Message) {
	var event domain.Event
	if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
		s.logger.Warn("discarding malformed event", zap.Error(err))
		return
	}
	if event.Origin == s.origin {
		return
	}
	if err := s.target.Publish(ctx, event); err != nil {
		s.logger.Warn("relay failed", zap.String("kind", string(event.Kind)), zap.Error(err))
	}
}
