package repository

import (
	"context"
	"time"
)

// CacheRepository is a small JSON key/value cache.
type CacheRepository interface {
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	// GetJSON returns apperrors.ErrNotFound on a cache miss.
	GetJSON(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, key string) error
}
