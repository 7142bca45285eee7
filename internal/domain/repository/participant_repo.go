package repository

import (
	"context"

	"github.com/ffaviron/defirose-api/internal/domain/entity"
)

// ParticipantRepository is the participant directory.
type ParticipantRepository interface {
	// Create returns apperrors.ErrConflict when the email is already taken.
	Create(ctx context.Context, p *entity.Participant) error
	GetByID(ctx context.Context, id string) (*entity.Participant, error)
	GetByEmail(ctx context.Context, email string) (*entity.Participant, error)
	List(ctx context.Context, limit, offset int) ([]entity.Participant, int64, error)
	Count(ctx context.Context) (int64, error)
}
