package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/ffaviron/defirose-api/internal/domain/entity"
	apperrors "github.com/ffaviron/defirose-api/internal/pkg/errors"
)

// ParticipantRepo implements repository.ParticipantRepository.
type ParticipantRepo struct {
	db *gorm.DB
}

func NewParticipantRepo(db *gorm.DB) *ParticipantRepo {
	return &ParticipantRepo{db: db}
}

func (r *ParticipantRepo) Create(ctx context.Context, p *entity.Participant) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: participant %s already exists", apperrors.ErrConflict, p.Email)
		}
		return fmt.Errorf("create participant: %w", err)
	}
	return nil
}

func (r *ParticipantRepo) GetByID(ctx context.Context, id string) (*entity.Participant, error) {
	var p entity.Participant
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *ParticipantRepo) GetByEmail(ctx context.Context, email string) (*entity.Participant, error) {
	var p entity.Participant
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// List returns a page ordered by newest first together with the total count.
// A non-positive limit returns every participant.
func (r *ParticipantRepo) List(ctx context.Context, limit, offset int) ([]entity.Participant, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&entity.Participant{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}
	var participants []entity.Participant
	if err := query.Find(&participants).Error; err != nil {
		return nil, 0, err
	}
	return participants, total, nil
}

func (r *ParticipantRepo) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&entity.Participant{}).Count(&total).Error
	return total, err
}
