package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/ffaviron/defirose-api/internal/domain/entity"
	apperrors "github.com/ffaviron/defirose-api/internal/pkg/errors"
)

// KilometerRepo implements repository.KilometerRepository.
type KilometerRepo struct {
	db *gorm.DB
}

func NewKilometerRepo(db *gorm.DB) *KilometerRepo {
	return &KilometerRepo{db: db}
}

func (r *KilometerRepo) Create(ctx context.Context, entry *entity.KilometerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *KilometerRepo) GetByID(ctx context.Context, id uint) (*entity.KilometerEntry, error) {
	var entry entity.KilometerEntry
	if err := r.db.WithContext(ctx).Preload("Participant").First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func (r *KilometerRepo) Validate(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entity.KilometerEntry{}).
		Where("id = ? AND validated = ?", id, false).
		Update("validated", true)
	if result.Error != nil {
		return false, fmt.Errorf("validate kilometer entry %d: %w", id, result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *KilometerRepo) ListAll(ctx context.Context) ([]entity.KilometerEntry, error) {
	var entries []entity.KilometerEntry
	err := r.db.WithContext(ctx).Preload("Participant").Order("created_at DESC").Find(&entries).Error
	return entries, err
}

func (r *KilometerRepo) ListValidated(ctx context.Context) ([]entity.KilometerEntry, error) {
	var entries []entity.KilometerEntry
	err := r.db.WithContext(ctx).Preload("Participant").
		Where("validated = ?", true).
		Order("date DESC").
		Find(&entries).Error
	return entries, err
}

func (r *KilometerRepo) ListByParticipant(ctx context.Context, participantID string) ([]entity.KilometerEntry, error) {
	var entries []entity.KilometerEntry
	err := r.db.WithContext(ctx).
		Where("participant_id = ?", participantID).
		Order("date DESC").
		Find(&entries).Error
	return entries, err
}

func (r *KilometerRepo) SumValidated(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Model(&entity.KilometerEntry{}).
		Where("validated = ?", true).
		Select("COALESCE(SUM(kilometers), 0)").
		Scan(&total).Error
	return total, err
}

func (r *KilometerRepo) CountPending(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&entity.KilometerEntry{}).Where("validated = ?", false).Count(&total).Error
	return total, err
}

func (r *KilometerRepo) ValidatedTotalsByParticipant(ctx context.Context) (map[string]float64, error) {
	var rows []struct {
		ParticipantID string
		Total         float64
	}
	err := r.db.WithContext(ctx).Model(&entity.KilometerEntry{}).
		Select("participant_id, SUM(kilometers) AS total").
		Where("validated = ?", true).
		Group("participant_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	totals := make(map[string]float64, len(rows))
	for _, row := range rows {
		totals[row.ParticipantID] = row.Total
	}
	return totals, nil
}
