package services

import (
	"context"
	"encoding/json"

	"towerdeck/internal/domain/event"
	"towerdeck/internal/events"
	"towerdeck/internal/repository"
	towerdeck_errors "towerdeck/pkg/errors"
	"towerdeck/pkg/logger"
)

const (
	defaultEventLimit = 100
	maxEventLimit     = 1000
)

// CreateEventRequest is the payload for operational log entries posted by the
// brain service or tooling.
type CreateEventRequest struct {
	Level      event.Level
	Type       string
	Message    string
	Details    json.RawMessage
	AircraftID *int64
	Sector     string
	Direction  string
}

type EventService struct {
	eventRepo repository.EventRepository
	bus       events.Publisher
	log       *logger.Logger
}

func NewEventService(eventRepo repository.EventRepository, bus events.Publisher, log *logger.Logger) *EventService {
	if log == nil {
		log = logger.NewNop()
	}
	return &EventService{eventRepo: eventRepo, bus: bus, log: log}
}

func (s *EventService) Recent(ctx context.Context, limit int, filter events.Filter) ([]event.Event, error) {
	if filter.Level != "" && !filter.Level.Valid() {
		return nil, towerdeck_errors.ErrInvalidInput
	}
	if limit <= 0 {
		limit = defaultEventLimit
	}
	if limit > maxEventLimit {
		limit = maxEventLimit
	}
	return s.eventRepo.FindRecent(ctx, limit, filter)
}

// Log persists an event row and publishes it. Rows created here are not part
// of an aircraft mutation, so they go straight through the repository rather
// than the change pipeline's transaction.
func (s *EventService) Log(ctx context.Context, req CreateEventRequest) (event.Event, error) {
	if req.Level == "" {
		req.Level = event.LevelInfo
	}
	if !req.Level.Valid() || req.Message == "" {
		return event.Event{}, towerdeck_errors.ErrInvalidInput
	}
	if req.Type == "" {
		req.Type = events.TypeOperationalLog
	}

	e := event.Event{
		Level:      req.Level,
		Type:       req.Type,
		Message:    req.Message,
		Details:    req.Details,
		AircraftID: req.AircraftID,
		Sector:     req.Sector,
		Direction:  req.Direction,
	}
	if err := s.eventRepo.Create(ctx, &e); err != nil {
		return event.Event{}, err
	}

	env := events.NewEnvelope(e)
	if err := s.bus.Publish(ctx, events.TopicEventCreated, env); err != nil {
		s.log.Errorf("publish %s to %s: %v", e.Type, events.TopicEventCreated, err)
	}
	if topic, ok := events.TopicForType(e.Type); ok {
		if err := s.bus.Publish(ctx, topic, env); err != nil {
			s.log.Errorf("publish %s to %s: %v", e.Type, topic, err)
		}
	}
	return e, nil
}
