package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/ffaviron/defirose-api/internal/domain/entity"
	apperrors "github.com/ffaviron/defirose-api/internal/pkg/errors"
)

// EventRepo implements repository.EventRepository.
type EventRepo struct {
	db *gorm.DB
}

func NewEventRepo(db *gorm.DB) *EventRepo {
	return &EventRepo{db: db}
}

func (r *EventRepo) Create(ctx context.Context, event *entity.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *EventRepo) GetByID(ctx context.Context, id uint) (*entity.Event, error) {
	var event entity.Event
	if err := r.db.WithContext(ctx).First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (r *EventRepo) Update(ctx context.Context, event *entity.Event) error {
	result := r.db.WithContext(ctx).Model(event).Select("*").Omit("id", "created_at").Updates(event)
	if result.Error != nil {
		return fmt.Errorf("update event %d: %w", event.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *EventRepo) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&entity.Event{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete event %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *EventRepo) List(ctx context.Context) ([]entity.Event, error) {
	var events []entity.Event
	err := r.db.WithContext(ctx).Order("date_start DESC").Find(&events).Error
	return events, err
}

func (r *EventRepo) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&entity.Event{}).Count(&total).Error
	return total, err
}
