package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"towerdeck/internal/domain/aircraft"
	"towerdeck/internal/domain/event"
	"towerdeck/internal/events"
	"towerdeck/internal/repository"
	towerdeck_errors "towerdeck/pkg/errors"
	"towerdeck/pkg/logger"
)

// UpdateRequest is a sparse mutation: nil fields are left untouched. This is
// how "not provided" stays distinguishable from "set to zero value".
type UpdateRequest struct {
	Position   *aircraft.Position
	Status     *aircraft.Status
	SquawkCode *string
	FlightPlan json.RawMessage

	// Optional context stamped onto the emitted event rows.
	Sector    string
	Direction string
}

// FieldDiff records one changed field for the response's changes summary.
type FieldDiff struct {
	From interface{} `json:"from"`
	To   interface{} `json:"to"`
}

type UpdateResult struct {
	Aircraft aircraft.Aircraft
	Events   []event.Event
	Changes  map[string]FieldDiff
}

type ClearResult struct {
	AircraftDeleted int64
	EventsDeleted   int64
}

// AircraftService is the change pipeline: every mutation runs its writes and
// the implied event rows inside one transaction, and publishes to the bus
// only after the transaction has committed.
type AircraftService struct {
	db           *gorm.DB
	aircraftRepo repository.AircraftRepository
	eventRepo    repository.EventRepository
	bus          events.Publisher
	log          *logger.Logger
}

func NewAircraftService(db *gorm.DB, aircraftRepo repository.AircraftRepository, eventRepo repository.EventRepository, bus events.Publisher, log *logger.Logger) *AircraftService {
	if log == nil {
		log = logger.NewNop()
	}
	return &AircraftService{
		db:           db,
		aircraftRepo: aircraftRepo,
		eventRepo:    eventRepo,
		bus:          bus,
		log:          log,
	}
}

func (s *AircraftService) Get(ctx context.Context, id int64) (aircraft.Aircraft, error) {
	return s.aircraftRepo.GetByID(ctx, id)
}

const defaultListLimit = 100

func (s *AircraftService) List(ctx context.Context, status aircraft.Status, limit int) ([]aircraft.Aircraft, error) {
	if status == "" {
		status = aircraft.StatusActive
	}
	if !status.Valid() {
		return nil, towerdeck_errors.ErrInvalidInput
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.aircraftRepo.ListByStatus(ctx, status, limit)
}

// Update applies the provided fields to the aircraft, writes one event row
// per changed category inside the same transaction, and publishes each event
// exactly once after commit. A status update that does not change the status
// emits nothing for that category.
func (s *AircraftService) Update(ctx context.Context, id int64, req UpdateRequest) (UpdateResult, error) {
	if req.Status != nil && !req.Status.Valid() {
		return UpdateResult{}, towerdeck_errors.ErrInvalidInput
	}

	var (
		updated aircraft.Aircraft
		created []event.Event
		changes = make(map[string]FieldDiff)
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		aircraftRepo := s.aircraftRepo.WithTx(tx)
		eventRepo := s.eventRepo.WithTx(tx)

		current, err := aircraftRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		next := current
		if req.Position != nil && *req.Position != current.Position {
			changes["position"] = FieldDiff{From: current.Position, To: *req.Position}
			next.Position = *req.Position
		}
		if req.Status != nil && *req.Status != current.Status {
			changes["status"] = FieldDiff{From: current.Status, To: *req.Status}
			next.Status = *req.Status
		}
		if req.SquawkCode != nil && *req.SquawkCode != current.SquawkCode {
			changes["squawk_code"] = FieldDiff{From: current.SquawkCode, To: *req.SquawkCode}
			next.SquawkCode = *req.SquawkCode
		}
		if req.FlightPlan != nil && !bytes.Equal(req.FlightPlan, current.FlightPlan) {
			changes["flight_plan"] = FieldDiff{From: current.FlightPlan, To: req.FlightPlan}
			next.FlightPlan = req.FlightPlan
		}

		if len(changes) == 0 {
			updated = current
			return nil
		}

		if err := aircraftRepo.Update(ctx, &next); err != nil {
			return err
		}
		updated = next

		rows, err := s.buildEvents(current, next, changes, req)
		if err != nil {
			return err
		}
		for i := range rows {
			if err := eventRepo.Create(ctx, &rows[i]); err != nil {
				return err
			}
		}
		created = rows
		return nil
	})
	if err != nil {
		return UpdateResult{}, err
	}

	// Write-before-publish: nothing reaches the bus unless the commit above
	// succeeded. Publish failures are logged, never rolled back.
	for _, e := range created {
		s.publish(ctx, e)
	}

	return UpdateResult{Aircraft: updated, Events: created, Changes: changes}, nil
}

// ClearAll deletes every aircraft and every event in one transaction.
// It is a privileged administrative reset and publishes nothing.
func (s *AircraftService) ClearAll(ctx context.Context) (ClearResult, error) {
	var result ClearResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		eventsDeleted, err := s.eventRepo.WithTx(tx).ClearAll(ctx)
		if err != nil {
			return err
		}
		aircraftDeleted, err := s.aircraftRepo.WithTx(tx).ClearAll(ctx)
		if err != nil {
			return err
		}
		result = ClearResult{AircraftDeleted: aircraftDeleted, EventsDeleted: eventsDeleted}
		return nil
	})
	if err != nil {
		return ClearResult{}, err
	}
	return result, nil
}

func (s *AircraftService) buildEvents(current, next aircraft.Aircraft, changes map[string]FieldDiff, req UpdateRequest) ([]event.Event, error) {
	var rows []event.Event

	newRow := func(eventType, message string, details interface{}) error {
		payload, err := json.Marshal(details)
		if err != nil {
			return err
		}
		id := next.ID
		rows = append(rows, event.Event{
			Level:      event.LevelInfo,
			Type:       eventType,
			Message:    message,
			Details:    payload,
			AircraftID: &id,
			Sector:     req.Sector,
			Direction:  req.Direction,
		})
		return nil
	}

	if _, ok := changes["position"]; ok {
		err := newRow(events.TypeAircraftPositionUpdated,
			fmt.Sprintf("%s position updated", next.Callsign),
			events.PositionChange{From: current.Position, To: next.Position})
		if err != nil {
			return nil, err
		}
	}
	if _, ok := changes["status"]; ok {
		err := newRow(events.TypeAircraftStatusChanged,
			fmt.Sprintf("%s status changed from %s to %s", next.Callsign, current.Status, next.Status),
			events.StatusChange{From: current.Status, To: next.Status})
		if err != nil {
			return nil, err
		}
	}

	// Scalar field edits share one aircraft.updated row per field.
	for _, field := range []string{"squawk_code", "flight_plan"} {
		diff, ok := changes[field]
		if !ok {
			continue
		}
		err := newRow(events.TypeAircraftUpdated,
			fmt.Sprintf("%s %s updated", next.Callsign, field),
			events.FieldChange{Field: field, From: stringify(diff.From), To: stringify(diff.To)})
		if err != nil {
			return nil, err
		}
	}

	return rows, nil
}

func (s *AircraftService) publish(ctx context.Context, e event.Event) {
	env := events.NewEnvelope(e)
	if err := s.bus.Publish(ctx, events.TopicEventCreated, env); err != nil {
		s.log.Errorf("publish %s to %s: %v", e.Type, events.TopicEventCreated, err)
	}
	if topic, ok := events.TopicForType(e.Type); ok {
		if err := s.bus.Publish(ctx, topic, env); err != nil {
			s.log.Errorf("publish %s to %s: %v", e.Type, topic, err)
		}
	}
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case json.RawMessage:
		return string(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
