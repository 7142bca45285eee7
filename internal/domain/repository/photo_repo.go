package repository

import (
	"context"

	"github.com/ffaviron/defirose-api/internal/domain/entity"
)

// PhotoRepository persists participant photos.
type PhotoRepository interface {
	Create(ctx context.Context, photo *entity.Photo) error
	GetByID(ctx context.Context, id uint) (*entity.Photo, error)
	// List returns photos newest first. A nil approved returns every photo.
	List(ctx context.Context, approved *bool) ([]entity.Photo, error)
	// Approve flips approved to true and reports whether it changed.
	Approve(ctx context.Context, id uint) (bool, error)
	Delete(ctx context.Context, id uint) error
	CountPending(ctx context.Context) (int64, error)
}
