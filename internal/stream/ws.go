package stream

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"towerdeck/internal/events"
	"towerdeck/internal/transport/httpdto"
	towerdeck_errors "towerdeck/pkg/errors"
)

const wsWriteTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ServeWS handles GET /events/ws. Same query contract and frame envelopes as
// the SSE stream, carried over a WebSocket for clients that cannot use
// EventSource.
func (g *Gateway) ServeWS(c *gin.Context) {
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

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	cl := newClient(filter)
	connCtx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	sub, err := g.bus.Subscribe(connCtx, events.TopicEventCreated, func(_ context.Context, env events.Envelope) {
		if !cl.filter.Matches(env.Event) {
			return
		}
		if !cl.offer(realtimeFrame(env.Event)) {
			g.log.Warnf("ws client %s buffer full, dropping event %d", cl.id, env.Event.ID)
		}
	})
	if err != nil {
		_ = g.writeWS(conn, errorFrame(towerdeck_errors.ErrServiceUnavailable.Error()))
		return
	}
	defer func() {
		_ = sub.Close()
	}()

	// Reader loop exists only to notice the transport closing.
	go func() {
		conn.SetReadLimit(512)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	g.log.Infof("ws client %s connected", cl.id)
	defer g.log.Infof("ws client %s disconnected", cl.id)

	history, err := g.eventRepo.FindRecent(connCtx, limit, cl.filter)
	if err != nil {
		g.log.Errorf("ws client %s replay failed: %v", cl.id, err)
		if err := g.writeWS(conn, errorFrame("failed to load event history")); err != nil {
			return
		}
		if err := g.writeWS(conn, initialCompleteFrame(0)); err != nil {
			return
		}
	} else {
		for i := len(history) - 1; i >= 0; i-- {
			if err := g.writeWS(conn, initialFrame(history[i])); err != nil {
				return
			}
		}
		if err := g.writeWS(conn, initialCompleteFrame(len(history))); err != nil {
			return
		}
	}

	ticker := time.NewTicker(g.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-connCtx.Done():
			return
		case <-g.ctx.Done():
			return
		case frame := <-cl.send:
			if err := g.writeWS(conn, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return
			}
		}
	}
}

func (g *Gateway) writeWS(conn *websocket.Conn, f Frame) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteJSON(f)
}
