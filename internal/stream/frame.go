package stream

import (
	"strconv"

	"towerdeck/internal/domain/event"
	"towerdeck/internal/events"
	towerdeck_errors "towerdeck/pkg/errors"
)

// Frame is the JSON envelope written to stream clients.
//
// Types: "initial" (replayed history), "initial_complete" (replay done, Count
// set), "realtime" (live bus delivery), "error" (in-band failure report).
type Frame struct {
	Type    string       `json:"type"`
	Event   *event.Event `json:"event,omitempty"`
	Count   *int         `json:"count,omitempty"`
	Message string       `json:"message,omitempty"`
}

const (
	FrameInitial         = "initial"
	FrameInitialComplete = "initial_complete"
	FrameRealtime        = "realtime"
	FrameError           = "error"
)

func initialFrame(e event.Event) Frame {
	return Frame{Type: FrameInitial, Event: &e}
}

func initialCompleteFrame(count int) Frame {
	return Frame{Type: FrameInitialComplete, Count: &count}
}

func realtimeFrame(e event.Event) Frame {
	return Frame{Type: FrameRealtime, Event: &e}
}

func errorFrame(message string) Frame {
	return Frame{Type: FrameError, Message: message}
}

// queryValues is the subset of gin.Context query access the parser needs.
type queryValues interface {
	Query(key string) string
}

// parseFilter builds the connection's filter from query parameters.
// A malformed value is a client error and must be rejected before streaming
// starts.
func parseFilter(q queryValues) (events.Filter, error) {
	filter := events.Filter{
		Type:   q.Query("type"),
		Sector: q.Query("sector"),
	}
	if level := q.Query("level"); level != "" {
		l := event.Level(level)
		if !l.Valid() {
			return events.Filter{}, towerdeck_errors.ErrInvalidInput
		}
		filter.Level = l
	}
	if raw := q.Query("aircraft_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return events.Filter{}, towerdeck_errors.ErrInvalidInput
		}
		filter.AircraftID = &id
	}
	return filter, nil
}

func parseLimit(q queryValues, fallback, max int) (int, error) {
	raw := q.Query("limit")
	if raw == "" {
		return fallback, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, towerdeck_errors.ErrInvalidInput
	}
	if limit == 0 {
		return fallback, nil
	}
	if limit > max {
		return max, nil
	}
	return limit, nil
}
