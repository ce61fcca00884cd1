package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"towerdeck/internal/events"
	"towerdeck/internal/repository"
	"towerdeck/internal/transport/httpdto"
	towerdeck_errors "towerdeck/pkg/errors"
	"towerdeck/pkg/logger"
)

const (
	defaultReplayLimit = 100
	maxReplayLimit     = 1000
	heartbeatInterval  = 30 * time.Second
)

// Gateway serves long-lived event stream connections. Each connection walks
// the same path: parse filters, subscribe to the bus, replay recent history
// from the store oldest-first, then forward live bus messages that match the
// connection's filter until the client goes away.
//
// Subscribing before replay means an event published during the replay window
// can arrive twice, once from the snapshot and once live. That is the
// documented at-least-once behavior; the gateway does not deduplicate.
type Gateway struct {
	eventRepo repository.EventRepository
	bus       events.Subscriber
	log       *logger.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	heartbeat time.Duration
}

func NewGateway(eventRepo repository.EventRepository, bus events.Subscriber, log *logger.Logger) *Gateway {
	if log == nil {
		log = logger.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Gateway{
		eventRepo: eventRepo,
		bus:       bus,
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
		heartbeat: heartbeatInterval,
	}
}

// Stop disconnects every open stream. Called on server shutdown.
func (g *Gateway) Stop() {
	g.cancel()
}

// ServeSSE handles GET /events/stream.
func (g *Gateway) ServeSSE(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid filter parameters", "INVALID_REQUEST"))
		return
	}
	limit, err := parseLimit(c, defaultReplayLimit, maxReplayLimit)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid limit", "INVALID_REQUEST"))
		return
	}

	cl := newClient(filter)
	reqCtx := c.Request.Context()

	// Live subscription opens before the replay read so the window between
	// snapshot and live delivery never loses an event.
	sub, err := g.bus.Subscribe(reqCtx, events.TopicEventCreated, func(_ context.Context, env events.Envelope) {
		if !cl.filter.Matches(env.Event) {
			return
		}
		if !cl.offer(realtimeFrame(env.Event)) {
			g.log.Warnf("stream client %s buffer full, dropping event %d", cl.id, env.Event.ID)
		}
	})
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse(
			towerdeck_errors.ErrServiceUnavailable.Error(), "SERVICE_UNAVAILABLE"))
		return
	}
	defer func() {
		_ = sub.Close()
	}()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Writer.WriteHeaderNow()

	g.log.Infof("stream client %s connected", cl.id)
	g.replay(c, cl, limit)
	g.live(c, reqCtx, cl)
	g.log.Infof("stream client %s disconnected", cl.id)
}

// replay delivers up to limit matching events oldest-first, then exactly one
// completion marker. A store failure becomes an in-band error frame; the
// connection still proceeds to live delivery.
func (g *Gateway) replay(c *gin.Context, cl *client, limit int) {
	history, err := g.eventRepo.FindRecent(c.Request.Context(), limit, cl.filter)
	if err != nil {
		g.log.Errorf("stream client %s replay failed: %v", cl.id, err)
		g.writeFrame(c, errorFrame("failed to load event history"))
		g.writeFrame(c, initialCompleteFrame(0))
		return
	}

	// Storage order is newest-first; delivery order is oldest-first.
	for i := len(history) - 1; i >= 0; i-- {
		g.writeFrame(c, initialFrame(history[i]))
	}
	g.writeFrame(c, initialCompleteFrame(len(history)))
}

func (g *Gateway) live(c *gin.Context, reqCtx context.Context, cl *client) {
	ticker := time.NewTicker(g.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-reqCtx.Done():
			return
		case <-g.ctx.Done():
			return
		case frame := <-cl.send:
			g.writeFrame(c, frame)
		case <-ticker.C:
			fmt.Fprint(c.Writer, ": heartbeat\n\n")
			c.Writer.Flush()
		}
	}
}

func (g *Gateway) writeFrame(c *gin.Context, f Frame) {
	data, err := json.Marshal(f)
	if err != nil {
		g.log.Errorf("failed to marshal stream frame: %v", err)
		return
	}
	fmt.Fprintf(c.Writer, "data: %s\n\n", data)
	c.Writer.Flush()
}
