package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/ffaviron/defirose-api/internal/domain/entity"
	"github.com/ffaviron/defirose-api/internal/domain/repository"
	apperrors "github.com/ffaviron/defirose-api/internal/pkg/errors"
)

// OTPRepo implements repository.OTPRepository with GORM.
type OTPRepo struct {
	db *gorm.DB
}

func NewOTPRepo(db *gorm.DB) *OTPRepo {
	return &OTPRepo{db: db}
}

// Replace runs the guard, the delete and the insert in one transaction. On
// Postgres the transaction holds an advisory lock keyed by email so that
// instances sharing the database serialise requests for the same address.
func (r *OTPRepo) Replace(ctx context.Context, email string, guard repository.OTPGuard, code *entity.OTPCode) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", "otp:"+email).Error; err != nil {
				return fmt.Errorf("lock otp codes for %s: %w", email, err)
			}
		}
		if guard != nil {
			var existing []entity.OTPCode
			if err := tx.Where("email = ?", email).Order("issued_at DESC").Find(&existing).Error; err != nil {
				return fmt.Errorf("load otp codes for %s: %w", email, err)
			}
			if err := guard(existing); err != nil {
				return err
			}
		}
		if err := tx.Where("email = ?", email).Delete(&entity.OTPCode{}).Error; err != nil {
			return fmt.Errorf("delete otp codes for %s: %w", email, err)
		}
		if err := tx.Create(code).Error; err != nil {
			return fmt.Errorf("create otp code for %s: %w", email, err)
		}
		return nil
	})
}

func (r *OTPRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entity.OTPCode{}, id).Error
}

func (r *OTPRepo) FindActive(ctx context.Context, email, codeHash string, now time.Time) (*entity.OTPCode, error) {
	var code entity.OTPCode
	err := r.db.WithContext(ctx).
		Where("email = ? AND code_hash = ? AND used = ? AND expires_at > ?", email, codeHash, false, now).
		Order("issued_at DESC").
		First(&code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find active otp code: %w", err)
	}
	return &code, nil
}

// MarkUsed is a conditional update; RowsAffected tells a concurrent
// double submit apart from the winning one.
func (r *OTPRepo) MarkUsed(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entity.OTPCode{}).
		Where("id = ? AND used = ?", id, false).
		Update("used", true)
	if result.Error != nil {
		return false, fmt.Errorf("mark otp code %d used: %w", id, result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *OTPRepo) RecordFailedAttempt(ctx context.Context, email string, now time.Time, maxAttempts int) (bool, error) {
	var burned bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&entity.OTPCode{}).
			Where("email = ? AND used = ? AND expires_at > ?", email, false, now).
			Update("attempt_count", gorm.Expr("attempt_count + 1")).Error
		if err != nil {
			return fmt.Errorf("count otp attempt for %s: %w", email, err)
		}
		result := tx.Model(&entity.OTPCode{}).
			Where("email = ? AND used = ? AND attempt_count >= ?", email, false, maxAttempts).
			Update("used", true)
		if result.Error != nil {
			return fmt.Errorf("burn otp code for %s: %w", email, result.Error)
		}
		burned = result.RowsAffected > 0
		return nil
	})
	return burned, err
}

func (r *OTPRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&entity.OTPCode{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete expired otp codes: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *OTPRepo) ListByEmail(ctx context.Context, email string) ([]entity.OTPCode, error) {
	var codes []entity.OTPCode
	err := r.db.WithContext(ctx).Where("email = ?", email).Order("issued_at DESC").Find(&codes).Error
	return codes, err
}
