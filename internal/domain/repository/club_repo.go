package repository

import (
	"context"

	"github.com/ffaviron/defirose-api/internal/domain/entity"
)

// ClubRepository persists clubs and their kilometer totals.
type ClubRepository interface {
	List(ctx context.Context) ([]entity.Club, error)
	Count(ctx context.Context) (int64, error)
	// AddKilometers increments the total of the club named name. Unknown
	// names are ignored; the returned bool reports whether a club matched.
	AddKilometers(ctx context.Context, name string, km float64) (bool, error)
}
