package repository

import (
	"context"

	"github.com/ffaviron/defirose-api/internal/domain/entity"
)

// KilometerRepository persists Défi Rose kilometer entries.
type KilometerRepository interface {
	Create(ctx context.Context, entry *entity.KilometerEntry) error
	GetByID(ctx context.Context, id uint) (*entity.KilometerEntry, error)
	// Validate marks the entry validated and reports whether it changed.
	Validate(ctx context.Context, id uint) (bool, error)
	ListAll(ctx context.Context) ([]entity.KilometerEntry, error)
	ListValidated(ctx context.Context) ([]entity.KilometerEntry, error)
	ListByParticipant(ctx context.Context, participantID string) ([]entity.KilometerEntry, error)
	SumValidated(ctx context.Context) (float64, error)
	CountPending(ctx context.Context) (int64, error)
	// ValidatedTotalsByParticipant maps participant id to validated kilometers.
	ValidatedTotalsByParticipant(ctx context.Context) (map[string]float64, error)
}
