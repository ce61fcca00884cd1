package repository

import (
	"context"

	"gorm.io/gorm"

	"towerdeck/internal/domain/aircraft"
	"towerdeck/internal/domain/event"
	"towerdeck/internal/events"
)

// AircraftRepository is the typed accessor over aircraft_instances.
// WithTx returns a copy bound to an open transaction so callers can compose
// several accessor calls into one atomic unit of work.
type AircraftRepository interface {
	WithTx(tx *gorm.DB) AircraftRepository

	GetByID(ctx context.Context, id int64) (aircraft.Aircraft, error)
	ListByStatus(ctx context.Context, status aircraft.Status, limit int) ([]aircraft.Aircraft, error)
	Create(ctx context.Context, a *aircraft.Aircraft) error
	Update(ctx context.Context, a *aircraft.Aircraft) error
	Count(ctx context.Context) (int64, error)
	ClearAll(ctx context.Context) (int64, error)
}

// EventRepository is the typed accessor over events.
type EventRepository interface {
	WithTx(tx *gorm.DB) EventRepository

	Create(ctx context.Context, e *event.Event) error
	GetByID(ctx context.Context, id int64) (event.Event, error)
	FindRecent(ctx context.Context, limit int, filter events.Filter) ([]event.Event, error)
	Count(ctx context.Context) (int64, error)
	ClearAll(ctx context.Context) (int64, error)
}
