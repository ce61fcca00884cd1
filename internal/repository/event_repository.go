package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"towerdeck/internal/domain/event"
	"towerdeck/internal/events"
	towerdeck_errors "towerdeck/pkg/errors"
)

type PostgresEventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &PostgresEventRepository{db: db}
}

func (r *PostgresEventRepository) WithTx(tx *gorm.DB) EventRepository {
	return &PostgresEventRepository{db: tx}
}

func (r *PostgresEventRepository) Create(ctx context.Context, e *event.Event) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *PostgresEventRepository) GetByID(ctx context.Context, id int64) (event.Event, error) {
	var e event.Event
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return event.Event{}, towerdeck_errors.ErrNotFound
		}
		return event.Event{}, err
	}
	return e, nil
}

// FindRecent returns up to limit events newest-first. Filter dimensions are
// ANDed; unset dimensions impose no constraint.
func (r *PostgresEventRepository) FindRecent(ctx context.Context, limit int, filter events.Filter) ([]event.Event, error) {
	var items []event.Event
	q := r.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if filter.Level != "" {
		q = q.Where("level = ?", filter.Level)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.AircraftID != nil {
		q = q.Where("aircraft_id = ?", *filter.AircraftID)
	}
	if filter.Sector != "" {
		q = q.Where("sector = ?", filter.Sector)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PostgresEventRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&event.Event{}).Count(&count).Error
	return count, err
}

func (r *PostgresEventRepository) ClearAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("1 = 1").Delete(&event.Event{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
