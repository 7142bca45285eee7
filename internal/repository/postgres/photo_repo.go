package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/ffaviron/defirose-api/internal/domain/entity"
	apperrors "github.com/ffaviron/defirose-api/internal/pkg/errors"
)

// PhotoRepo implements repository.PhotoRepository.
type PhotoRepo struct {
	db *gorm.DB
}

func NewPhotoRepo(db *gorm.DB) *PhotoRepo {
	return &PhotoRepo{db: db}
}

func (r *PhotoRepo) Create(ctx context.Context, photo *entity.Photo) error {
	return r.db.WithContext(ctx).Create(photo).Error
}

func (r *PhotoRepo) GetByID(ctx context.Context, id uint) (*entity.Photo, error) {
	var photo entity.Photo
	if err := r.db.WithContext(ctx).First(&photo, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &photo, nil
}

func (r *PhotoRepo) List(ctx context.Context, approved *bool) ([]entity.Photo, error) {
	var photos []entity.Photo
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if approved != nil {
		q = q.Where("approved = ?", *approved)
	}
	err := q.Find(&photos).Error
	return photos, err
}

func (r *PhotoRepo) Approve(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entity.Photo{}).
		Where("id = ? AND approved = ?", id, false).
		Update("approved", true)
	if result.Error != nil {
		return false, fmt.Errorf("approve photo %d: %w", id, result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *PhotoRepo) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&entity.Photo{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete photo %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PhotoRepo) CountPending(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&entity.Photo{}).Where("approved = ?", false).Count(&total).Error
	return total, err
}
