package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/ffaviron/defirose-api/internal/domain/entity"
	apperrors "github.com/ffaviron/defirose-api/internal/pkg/errors"
)

// RowingRegistrationRepo implements repository.RowingRegistrationRepository.
type RowingRegistrationRepo struct {
	db *gorm.DB
}

func NewRowingRegistrationRepo(db *gorm.DB) *RowingRegistrationRepo {
	return &RowingRegistrationRepo{db: db}
}

func (r *RowingRegistrationRepo) Create(ctx context.Context, reg *entity.RowingRegistration) error {
	return r.db.WithContext(ctx).Create(reg).Error
}

func (r *RowingRegistrationRepo) GetByID(ctx context.Context, id uint) (*entity.RowingRegistration, error) {
	var reg entity.RowingRegistration
	if err := r.db.WithContext(ctx).Preload("Participant").First(&reg, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &reg, nil
}

func (r *RowingRegistrationRepo) ListAll(ctx context.Context) ([]entity.RowingRegistration, error) {
	var regs []entity.RowingRegistration
	err := r.db.WithContext(ctx).Preload("Participant").Order("created_at DESC").Find(&regs).Error
	return regs, err
}

func (r *RowingRegistrationRepo) MarkPaid(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entity.RowingRegistration{}).
		Where("id = ? AND paid = ?", id, false).
		Update("paid", true)
	if result.Error != nil {
		return false, fmt.Errorf("mark registration %d paid: %w", id, result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *RowingRegistrationRepo) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&entity.RowingRegistration{}).Count(&total).Error
	return total, err
}

func (r *RowingRegistrationRepo) SumPaid(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&entity.RowingRegistration{}).
		Where("paid = ?", true).
		Select("COALESCE(SUM(price), 0)").
		Scan(&total).Error
	return total, err
}
