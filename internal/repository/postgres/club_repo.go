package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/ffaviron/defirose-api/internal/domain/entity"
)

// ClubRepo implements repository.ClubRepository.
type ClubRepo struct {
	db *gorm.DB
}

func NewClubRepo(db *gorm.DB) *ClubRepo {
	return &ClubRepo{db: db}
}

func (r *ClubRepo) List(ctx context.Context) ([]entity.Club, error) {
	var clubs []entity.Club
	err := r.db.WithContext(ctx).Order("total_km DESC").Find(&clubs).Error
	return clubs, err
}

func (r *ClubRepo) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&entity.Club{}).Count(&total).Error
	return total, err
}

func (r *ClubRepo) AddKilometers(ctx context.Context, name string, km float64) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entity.Club{}).
		Where("name = ?", name).
		Update("total_km", gorm.Expr("total_km + ?", km))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
