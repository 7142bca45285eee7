package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"

	"github.com/ffaviron/defirose-api/pkg/logger"
)

// EmailSender delivers one-time passcodes.
type EmailSender interface {
	SendOTP(ctx context.Context, toEmail, code, idempotencyKey string) error
}

// LogEmailSender is the development fallback used when no Resend API key is
// configured: the code is written to the log instead of being emailed.
type LogEmailSender struct{}

// NewLogEmailSender announces the fallback loudly so it is never mistaken
// for real delivery.
func NewLogEmailSender() *LogEmailSender {
	logger.Warn(context.Background(), "email delivery is in DEVELOPMENT MODE: OTP codes are logged, not emailed (set EMAIL_RESEND_API_KEY to enable Resend)")
	return &LogEmailSender{}
}

func (s *LogEmailSender) SendOTP(ctx context.Context, toEmail, code, idempotencyKey string) error {
	logger.Warn(ctx, "[dev mode] OTP code not emailed",
		zap.String("email", toEmail),
		zap.String("code", code),
	)
	return nil
}

// resendAttempts bounds deliveries per code, the first one included.
const resendAttempts = 3

type resendSendFunc func(ctx context.Context, params *resend.SendEmailRequest, options *resend.SendEmailOptions) (*resend.SendEmailResponse, error)

// ResendEmailSender sends emails through the Resend REST API.
type ResendEmailSender struct {
	from       string
	ttlMinutes int
	send       resendSendFunc
	pause      func(ctx context.Context, d time.Duration) error
}

func NewResendEmailSender(apiKey, from string, ttl time.Duration) (*ResendEmailSender, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend api key is required")
	}
	if from == "" {
		return nil, fmt.Errorf("email from is required")
	}
	client := resend.NewClient(apiKey)
	return &ResendEmailSender{
		from:       from,
		ttlMinutes: int(ttl.Minutes()),
		send:       client.Emails.SendWithOptions,
		pause:      pauseContext,
	}, nil
}

// SendOTP retries transient Resend failures. The idempotency key makes a
// retried request safe when an earlier attempt reached Resend.
func (s *ResendEmailSender) SendOTP(ctx context.Context, toEmail, code, idempotencyKey string) error {
	if toEmail == "" || code == "" {
		return fmt.Errorf("toEmail and code are required")
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{toEmail},
		Subject: "🎀 Votre code d'accès - Octobre Rose",
		Text:    fmt.Sprintf("Votre code d'accès est %s. Il est valable %d minutes.", code, s.ttlMinutes),
		Html:    renderOTPEmail(code, s.ttlMinutes),
	}
	options := &resend.SendEmailOptions{IdempotencyKey: strings.TrimSpace(idempotencyKey)}

	for attempt := 1; ; attempt++ {
		_, err := s.send(ctx, params, options)
		if err == nil {
			return nil
		}
		backoff, transient := transientResendBackoff(err, attempt)
		if !transient {
			return fmt.Errorf("resend: %w", err)
		}
		if attempt == resendAttempts {
			return fmt.Errorf("resend: giving up after %d attempts: %w", attempt, err)
		}
		logger.Warn(ctx, "resend delivery failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)
		if err := s.pause(ctx, backoff); err != nil {
			return err
		}
	}
}

// transientResendBackoff reports whether err is worth retrying and how long
// to wait before attempt+1. Rate limits honour Retry-After, capped at 5s.
func transientResendBackoff(err error, attempt int) (time.Duration, bool) {
	linear := time.Duration(attempt) * 500 * time.Millisecond

	var rateLimited *resend.RateLimitError
	if errors.As(err, &rateLimited) {
		seconds, convErr := strconv.Atoi(strings.TrimSpace(rateLimited.RetryAfter))
		if convErr != nil || seconds <= 0 {
			return time.Duration(attempt) * time.Second, true
		}
		return min(time.Duration(seconds)*time.Second, 5*time.Second), true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return linear, true
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "temporar") {
		return linear, true
	}
	return 0, false
}

func pauseContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func renderOTPEmail(code string, ttlMinutes int) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="fr">
<head><meta charset="utf-8"><title>Code d'accès - Octobre Rose</title></head>
<body style="font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; background-color: #f8fafc; margin: 0; padding: 20px;">
  <div style="max-width: 600px; margin: 0 auto; background: white; border-radius: 16px; overflow: hidden;">
    <div style="background: linear-gradient(135deg, #ec4899 0%%, #be185d 100%%); padding: 40px 20px; text-align: center;">
      <h1 style="color: white; margin: 0;">Octobre Rose</h1>
      <p style="color: white; margin: 10px 0 0;">x Fédération Française d'Aviron</p>
    </div>
    <div style="padding: 40px 30px; text-align: center;">
      <h2 style="color: #1f2937;">Votre code d'accès</h2>
      <p style="color: #6b7280;">Utilisez ce code pour accéder à votre espace participant.</p>
      <div style="border: 3px solid #ec4899; border-radius: 16px; padding: 30px 20px; margin: 30px 0;">
        <div style="font-size: 42px; font-weight: 800; color: #be185d; letter-spacing: 12px; font-family: 'Courier New', monospace;">%s</div>
        <div style="color: #be185d; font-size: 14px;">Code valable %d minutes</div>
      </div>
      <p style="color: #64748b; font-size: 13px;">Vous n'avez pas demandé ce code ? Ignorez cet email.</p>
    </div>
  </div>
</body>
</html>`, code, ttlMinutes)
}
