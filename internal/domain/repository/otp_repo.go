package repository

import (
	"context"
	"time"

	"github.com/ffaviron/defirose-api/internal/domain/entity"
)

// OTPGuard inspects the records currently stored for an email before they
// are superseded. Returning an error aborts the replacement.
type OTPGuard func(existing []entity.OTPCode) error

// OTPRepository persists one-time passcodes.
type OTPRepository interface {
	// Replace runs guard, deletes every record for email and inserts code
	// as one atomic unit.
	Replace(ctx context.Context, email string, guard OTPGuard, code *entity.OTPCode) error
	Delete(ctx context.Context, id uint) error
	// FindActive returns the unused record matching email and codeHash that
	// expires after now, or apperrors.ErrNotFound.
	FindActive(ctx context.Context, email, codeHash string, now time.Time) (*entity.OTPCode, error)
	// MarkUsed flips used to true only if it was false and reports whether
	// this call performed the transition.
	MarkUsed(ctx context.Context, id uint) (bool, error)
	// RecordFailedAttempt increments attempt_count on the active records
	// for email and marks used those reaching maxAttempts. It reports
	// whether a record was burned by this call.
	RecordFailedAttempt(ctx context.Context, email string, now time.Time, maxAttempts int) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	ListByEmail(ctx context.Context, email string) ([]entity.OTPCode, error)
}
