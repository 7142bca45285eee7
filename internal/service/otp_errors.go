package service

import (
	"errors"
	"fmt"
	"time"

	apperrors "github.com/ffaviron/defirose-api/internal/pkg/errors"
)

// OTP flow errors. Handlers map them to stable error_type values.
var (
	ErrInvalidEmail      = fmt.Errorf("%w: invalid email address", apperrors.ErrValidation)
	ErrInvalidCodeFormat = fmt.Errorf("%w: code must be exactly 6 digits", apperrors.ErrValidation)

	ErrOTPThrottled = errors.New("otp_throttled")
	ErrOTPDelivery  = errors.New("otp_delivery_failed")

	// ErrOTPInvalidOrExpired covers wrong, expired, used and unknown codes alike.
	ErrOTPInvalidOrExpired = errors.New("invalid_or_expired_code")
)

// ThrottleError is returned when a code was requested again before the
// resend cooldown elapsed. It matches ErrOTPThrottled with errors.Is.
type ThrottleError struct {
	RetryAfter time.Duration
}

func (e *ThrottleError) Error() string {
	return fmt.Sprintf("%s: retry in %s", ErrOTPThrottled, e.RetryAfter.Round(time.Second))
}

func (e *ThrottleError) Is(target error) bool {
	return target == ErrOTPThrottled
}
