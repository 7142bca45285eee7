package repository

import (
	"context"

	"github.com/ffaviron/defirose-api/internal/domain/entity"
)

// RowingRegistrationRepository persists Rowing Care Cup registrations.
type RowingRegistrationRepository interface {
	Create(ctx context.Context, reg *entity.RowingRegistration) error
	GetByID(ctx context.Context, id uint) (*entity.RowingRegistration, error)
	ListAll(ctx context.Context) ([]entity.RowingRegistration, error)
	// MarkPaid flips paid to true and reports whether it changed.
	MarkPaid(ctx context.Context, id uint) (bool, error)
	Count(ctx context.Context) (int64, error)
	// SumPaid returns the total fees, in euros, of paid registrations.
	SumPaid(ctx context.Context) (int64, error)
}
