package entity

import "time"

// OTPCode is a one-time passcode issued for an email address.
// Only the peppered digest of the code is persisted.
type OTPCode struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"size:255;not null;index" json:"email"`
	CodeHash  string    `gorm:"size:64;not null" json:"-"`
	IssuedAt  time.Time `gorm:"not null" json:"issued_at"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	Used      bool      `gorm:"not null;default:false" json:"used"`
	// AttemptCount counts wrong guesses made while this code was active.
	AttemptCount int `gorm:"not null;default:0" json:"attempt_count"`
}

func (OTPCode) TableName() string {
	return "otp_codes"
}

// IsExpired reports whether the code can no longer be verified at now.
// A code expiring exactly at now is already expired.
func (o *OTPCode) IsExpired(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}

// IsActive reports whether the code is neither used nor expired.
func (o *OTPCode) IsActive(now time.Time) bool {
	return !o.Used && !o.IsExpired(now)
}
