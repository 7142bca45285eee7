package repository

import (
	"context"

	"github.com/ffaviron/defirose-api/internal/domain/entity"
)

// AdminRepository persists back-office accounts.
type AdminRepository interface {
	Create(ctx context.Context, admin *entity.Admin) error
	GetByEmail(ctx context.Context, email string) (*entity.Admin, error)
	Count(ctx context.Context) (int64, error)
}
