package stream

import (
	"github.com/google/uuid"

	"towerdeck/internal/events"
)

// Bounded per-connection buffer. A client that cannot drain fast enough loses
// live frames instead of stalling delivery to everyone else.
const clientBufferSize = 100

// client is one stream connection's ephemeral state: a filter and an outbound
// queue. It holds nothing durable.
type client struct {
	id     string
	filter events.Filter
	send   chan Frame
}

func newClient(filter events.Filter) *client {
	return &client{
		id:     uuid.New().String(),
		filter: filter,
		send:   make(chan Frame, clientBufferSize),
	}
}

// offer enqueues a frame without blocking. Returns false when the buffer is
// full and the frame was dropped.
func (c *client) offer(f Frame) bool {
	select {
	case c.send <- f:
		return true
	default:
		return false
	}
}
