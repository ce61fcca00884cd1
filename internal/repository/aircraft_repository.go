package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"towerdeck/internal/domain/aircraft"
	towerdeck_errors "towerdeck/pkg/errors"
)

type PostgresAircraftRepository struct {
	db *gorm.DB
}

func NewAircraftRepository(db *gorm.DB) AircraftRepository {
	return &PostgresAircraftRepository{db: db}
}

func (r *PostgresAircraftRepository) WithTx(tx *gorm.DB) AircraftRepository {
	return &PostgresAircraftRepository{db: tx}
}

func (r *PostgresAircraftRepository) GetByID(ctx context.Context, id int64) (aircraft.Aircraft, error) {
	var a aircraft.Aircraft
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return aircraft.Aircraft{}, towerdeck_errors.ErrNotFound
		}
		return aircraft.Aircraft{}, err
	}
	return a, nil
}

func (r *PostgresAircraftRepository) ListByStatus(ctx context.Context, status aircraft.Status, limit int) ([]aircraft.Aircraft, error) {
	var items []aircraft.Aircraft
	q := r.db.WithContext(ctx).Order("callsign ASC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PostgresAircraftRepository) Create(ctx context.Context, a *aircraft.Aircraft) error {
	res := r.db.WithContext(ctx).Create(a)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return towerdeck_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresAircraftRepository) Update(ctx context.Context, a *aircraft.Aircraft) error {
	res := r.db.WithContext(ctx).Save(a)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return towerdeck_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresAircraftRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&aircraft.Aircraft{}).Count(&count).Error
	return count, err
}

func (r *PostgresAircraftRepository) ClearAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("1 = 1").Delete(&aircraft.Aircraft{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
