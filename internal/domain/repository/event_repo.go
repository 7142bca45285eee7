package repository

import (
	"context"

	"github.com/ffaviron/defirose-api/internal/domain/entity"
)

// EventRepository persists the campaign calendar.
type EventRepository interface {
	Create(ctx context.Context, event *entity.Event) error
	GetByID(ctx context.Context, id uint) (*entity.Event, error)
	Update(ctx context.Context, event *entity.Event) error
	// Delete returns apperrors.ErrNotFound when no event has id.
	Delete(ctx context.Context, id uint) error
	// List returns events newest start date first.
	List(ctx context.Context) ([]entity.Event, error)
	Count(ctx context.Context) (int64, error)
}
