package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"towerdeck/pkg/logger"
)

// RedisBus implements Bus on Redis Pub/Sub. The broker is a shared external
// resource: the brain service attaches to the same Redis, so publishes here
// reach subscribers in other processes and vice versa.
type RedisBus struct {
	client *redis.Client
	log    *logger.Logger
}

func NewRedisBus(client *redis.Client, log *logger.Logger) *RedisBus {
	if log == nil {
		log = logger.NewNop()
	}
	return &RedisBus{client: client, log: log}
}

func (b *RedisBus) Publish(ctx context.Context, topic string, env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}
	return b.client.Publish(ctx, topic, data).Err()
}

// Subscribe registers handler on topic and pumps messages on a dedicated
// goroutine until the subscription is closed or ctx is cancelled. The
// returned Subscription must be closed on every exit path of the caller.
func (b *RedisBus) Subscribe(ctx context.Context, topic string, handler Handler) (Subscription, error) {
	pubsub := b.client.Subscribe(ctx, topic)

	// Force the SUBSCRIBE round-trip so a failed broker surfaces here
	// rather than as a silently dead goroutine.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", topic, err)
	}

	sub := &redisSubscription{pubsub: pubsub}

	go func() {
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var env Envelope
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
					b.log.Warnf("dropping malformed message on %s: %v", msg.Channel, err)
					continue
				}
				handler(ctx, env)
			}
		}
	}()

	return sub, nil
}

func (b *RedisBus) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

func (b *RedisBus) Close() error {
	return b.client.Close()
}

type redisSubscription struct {
	pubsub *redis.PubSub
	once   sync.Once
	err    error
}

func (s *redisSubscription) Close() error {
	s.once.Do(func() {
		s.err = s.pubsub.Close()
	})
	return s.err
}
