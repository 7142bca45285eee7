package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ffaviron/defirose-api/internal/domain/entity"
	"github.com/ffaviron/defirose-api/internal/domain/repository"
	"github.com/ffaviron/defirose-api/internal/metrics"
	apperrors "github.com/ffaviron/defirose-api/internal/pkg/errors"
	"github.com/ffaviron/defirose-api/pkg/logger"
)

const (
	DefaultOTPTTL            = 10 * time.Minute
	DefaultOTPResendCooldown = 60 * time.Second
	DefaultOTPSendTimeout    = 15 * time.Second
	DefaultOTPStoreTimeout   = 5 * time.Second
	DefaultOTPMaxAttempts    = 5

	otpCodeLength  = 6
	maxEmailLength = 254
	rollbackWait   = 5 * time.Second
)

// ParticipantResolver returns the participant for an email, creating a
// placeholder one on first use.
type ParticipantResolver interface {
	FindOrCreateByEmail(ctx context.Context, email string) (*entity.Participant, error)
}

// CodeGenerator produces a 6-digit, zero-padded numeric code.
type CodeGenerator func() (string, error)

// OTPConfig holds the tunables of the OTP flow. Zero values select defaults.
type OTPConfig struct {
	TTL            time.Duration
	ResendCooldown time.Duration
	SendTimeout    time.Duration
	StoreTimeout   time.Duration
	// MaxAttempts is the number of wrong guesses after which the active
	// code for an email is burned.
	MaxAttempts int
	Pepper      string
}

// OTPOption customizes an OTPService.
type OTPOption func(*OTPService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) OTPOption {
	return func(s *OTPService) { s.now = now }
}

// WithCodeGenerator replaces the crypto/rand based generator.
func WithCodeGenerator(gen CodeGenerator) OTPOption {
	return func(s *OTPService) { s.generate = gen }
}

// OTPService is the sole authority on whether an (email, code) pair
// currently grants access.
type OTPService struct {
	otpRepo      repository.OTPRepository
	participants ParticipantResolver
	sender       EmailSender
	cfg          OTPConfig
	now          func() time.Time
	generate     CodeGenerator
	locks        *emailLocks
}

func NewOTPService(
	otpRepo repository.OTPRepository,
	participants ParticipantResolver,
	sender EmailSender,
	cfg OTPConfig,
	opts ...OTPOption,
) (*OTPService, error) {
	if otpRepo == nil {
		return nil, fmt.Errorf("otp repository is required")
	}
	if participants == nil {
		return nil, fmt.Errorf("participant resolver is required")
	}
	if sender == nil {
		return nil, fmt.Errorf("email sender is required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultOTPTTL
	}
	if cfg.ResendCooldown <= 0 {
		cfg.ResendCooldown = DefaultOTPResendCooldown
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = DefaultOTPSendTimeout
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = DefaultOTPStoreTimeout
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultOTPMaxAttempts
	}

	s := &OTPService{
		otpRepo:      otpRepo,
		participants: participants,
		sender:       sender,
		cfg:          cfg,
		now:          time.Now,
		generate:     generateOTPCode,
		locks:        newEmailLocks(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// RequestCode supersedes any previous code for email, stores a fresh one
// and emails it. The code is never returned to the caller.
func (s *OTPService) RequestCode(ctx context.Context, rawEmail string) error {
	email, err := NormalizeEmail(rawEmail)
	if err != nil {
		metrics.OTPRequests.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return err
	}

	unlock := s.locks.lock(email)
	defer unlock()

	now := s.now().UTC()
	code, err := s.generate()
	if err != nil {
		metrics.OTPRequests.WithLabelValues(metrics.OutcomeError).Inc()
		return fmt.Errorf("generate otp code: %w", err)
	}

	record := &entity.OTPCode{
		Email:     email,
		CodeHash:  s.hashCode(email, code),
		IssuedAt:  now,
		ExpiresAt: now.Add(s.cfg.TTL),
	}
	storeCtx, cancelStore := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	err = s.otpRepo.Replace(storeCtx, email, s.throttleGuard(now), record)
	cancelStore()
	if err != nil {
		if errors.Is(err, ErrOTPThrottled) {
			metrics.OTPRequests.WithLabelValues(metrics.OutcomeThrottled).Inc()
			return err
		}
		metrics.OTPRequests.WithLabelValues(metrics.OutcomeError).Inc()
		return fmt.Errorf("store otp code: %w", err)
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.cfg.SendTimeout)
	defer cancel()
	idempotencyKey := fmt.Sprintf("otp:%s:%d", email, now.UnixNano())
	if err := s.sender.SendOTP(sendCtx, email, code, idempotencyKey); err != nil {
		s.rollback(ctx, record)
		metrics.OTPRequests.WithLabelValues(metrics.OutcomeDelivery).Inc()
		logger.Error(ctx, "otp delivery failed",
			zap.String("operation", "request_code"),
			zap.String("email", email),
			zap.Time("issued_at", now),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", ErrOTPDelivery, err)
	}

	metrics.OTPRequests.WithLabelValues(metrics.OutcomeSuccess).Inc()
	logger.Info(ctx, "otp code issued",
		zap.String("email", email),
		zap.Time("expires_at", record.ExpiresAt),
	)
	return nil
}

// VerifyCode consumes a valid code and returns the participant for email.
func (s *OTPService) VerifyCode(ctx context.Context, rawEmail, code string) (*entity.Participant, error) {
	email := strings.ToLower(strings.TrimSpace(rawEmail))
	if email == "" {
		metrics.OTPVerifications.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return nil, ErrInvalidEmail
	}
	code = strings.TrimSpace(code)
	if !isOTPCode(code) {
		metrics.OTPVerifications.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return nil, ErrInvalidCodeFormat
	}

	now := s.now().UTC()
	storeCtx, cancelStore := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancelStore()

	record, err := s.otpRepo.FindActive(storeCtx, email, s.hashCode(email, code), now)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.recordFailedAttempt(storeCtx, email, now)
			metrics.OTPVerifications.WithLabelValues(metrics.OutcomeInvalid).Inc()
			return nil, ErrOTPInvalidOrExpired
		}
		metrics.OTPVerifications.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("find otp code: %w", err)
	}

	consumed, err := s.otpRepo.MarkUsed(storeCtx, record.ID)
	if err != nil {
		metrics.OTPVerifications.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("consume otp code: %w", err)
	}
	if !consumed {
		// Lost the race against a concurrent submission of the same code.
		metrics.OTPVerifications.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return nil, ErrOTPInvalidOrExpired
	}

	participant, err := s.participants.FindOrCreateByEmail(storeCtx, email)
	if err != nil {
		metrics.OTPVerifications.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("resolve participant: %w", err)
	}

	metrics.OTPVerifications.WithLabelValues(metrics.OutcomeSuccess).Inc()
	logger.Info(ctx, "otp code verified", zap.String("email", email), zap.String("participant_id", participant.ID))
	return participant, nil
}

// recordFailedAttempt counts a wrong guess against the active code for
// email. The caller answers ErrOTPInvalidOrExpired whatever happens here.
func (s *OTPService) recordFailedAttempt(ctx context.Context, email string, now time.Time) {
	burned, err := s.otpRepo.RecordFailedAttempt(ctx, email, now, s.cfg.MaxAttempts)
	if err != nil {
		logger.Error(ctx, "failed to record otp attempt",
			zap.String("email", email),
			zap.Error(err),
		)
		return
	}
	if burned {
		logger.Warn(ctx, "otp code burned after too many attempts",
			zap.String("email", email),
			zap.Int("max_attempts", s.cfg.MaxAttempts),
		)
	}
}

// throttleGuard rejects a new request while a code issued less than the
// cooldown ago is still active or was burned by wrong guesses. Consumed or
// expired codes never throttle.
func (s *OTPService) throttleGuard(now time.Time) repository.OTPGuard {
	return func(existing []entity.OTPCode) error {
		for _, c := range existing {
			burned := c.Used && c.AttemptCount >= s.cfg.MaxAttempts
			if !c.IsActive(now) && !(burned && !c.IsExpired(now)) {
				continue
			}
			if elapsed := now.Sub(c.IssuedAt); elapsed < s.cfg.ResendCooldown {
				return &ThrottleError{RetryAfter: s.cfg.ResendCooldown - elapsed}
			}
		}
		return nil
	}
}

// rollback removes a code whose delivery failed. It runs detached from ctx
// so a cancelled request still cleans up.
func (s *OTPService) rollback(ctx context.Context, record *entity.OTPCode) {
	rbCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackWait)
	defer cancel()
	if err := s.otpRepo.Delete(rbCtx, record.ID); err != nil {
		logger.Error(ctx, "failed to roll back undelivered otp code",
			zap.String("email", record.Email),
			zap.Uint("otp_id", record.ID),
			zap.Error(err),
		)
	}
}

func (s *OTPService) hashCode(email, code string) string {
	sum := sha256.Sum256([]byte(s.cfg.Pepper + ":" + email + ":" + code))
	return hex.EncodeToString(sum[:])
}

// NormalizeEmail trims and lower-cases raw and checks that it looks like
// local@domain.tld.
func NormalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" || len(email) > maxEmailLength || strings.ContainsAny(email, " \t\r\n") {
		return "", ErrInvalidEmail
	}
	at := strings.LastIndex(email, "@")
	if at <= 0 || at != strings.Index(email, "@") {
		return "", ErrInvalidEmail
	}
	domain := email[at+1:]
	dot := strings.LastIndex(domain, ".")
	if dot <= 0 || dot == len(domain)-1 {
		return "", ErrInvalidEmail
	}
	return email, nil
}

func isOTPCode(code string) bool {
	if len(code) != otpCodeLength {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// emailLocks hands out one mutex per email so request-code sequences for
// the same address never interleave.
type emailLocks struct {
	mu    sync.Mutex
	locks map[string]*emailLock
}

type emailLock struct {
	sync.Mutex
	refs int
}

func newEmailLocks() *emailLocks {
	return &emailLocks{locks: make(map[string]*emailLock)}
}

func (l *emailLocks) lock(key string) func() {
	l.mu.Lock()
	el, ok := l.locks[key]
	if !ok {
		el = &emailLock{}
		l.locks[key] = el
	}
	el.refs++
	l.mu.Unlock()

	el.Lock()
	return func() {
		el.Unlock()
		l.mu.Lock()
		el.refs--
		if el.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}
