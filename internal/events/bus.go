package events

import "context"

// Handler processes one inbound envelope. Handlers run outside any bus lock;
// a slow handler must not stall publication to other subscribers.
type Handler func(ctx context.Context, env Envelope)

// Subscription is the unsubscribe capability returned by Subscribe.
// Close is idempotent and releases the underlying channel resources.
type Subscription interface {
	Close() error
}

type Publisher interface {
	Publish(ctx context.Context, topic string, env Envelope) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, topic string, handler Handler) (Subscription, error)
}

// Bus is a topic-keyed publish/subscribe broker. Delivery is best-effort and
// asynchronous relative to the publisher; a subscriber registered after a
// publish never sees that earlier message.
type Bus interface {
	Publisher
	Subscriber
	Ping(ctx context.Context) error
	Close() error
}
