package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResendEmailSender_RequiresConfig(t *testing.T) {
	_, err := NewResendEmailSender("", "noreply@ffaviron.fr", 10*time.Minute)
	assert.Error(t, err)
	_, err = NewResendEmailSender("re_key", "", 10*time.Minute)
	assert.Error(t, err)

	s, err := NewResendEmailSender("re_key", "noreply@ffaviron.fr", 10*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 10, s.ttlMinutes)
}

func TestTransientResendBackoff(t *testing.T) {
	wait, ok := transientResendBackoff(&resend.RateLimitError{RetryAfter: "30"}, 1)
	assert.True(t, ok)
	assert.Equal(t, 5*time.Second, wait)

	wait, ok = transientResendBackoff(&resend.RateLimitError{RetryAfter: "2"}, 1)
	assert.True(t, ok)
	assert.Equal(t, 2*time.Second, wait)

	wait, ok = transientResendBackoff(&resend.RateLimitError{}, 2)
	assert.True(t, ok)
	assert.Equal(t, 2*time.Second, wait)

	wait, ok = transientResendBackoff(errors.New("i/o timeout"), 2)
	assert.True(t, ok)
	assert.Equal(t, time.Second, wait)

	_, ok = transientResendBackoff(errors.New("invalid from address"), 1)
	assert.False(t, ok)
}

// scriptedResend fails with errs in order, then succeeds.
type scriptedResend struct {
	errs   []error
	calls  int
	pauses []time.Duration
	keys   []string
}

func (r *scriptedResend) sender() *ResendEmailSender {
	return &ResendEmailSender{
		from:       "noreply@ffaviron.fr",
		ttlMinutes: 10,
		send: func(ctx context.Context, params *resend.SendEmailRequest, options *resend.SendEmailOptions) (*resend.SendEmailResponse, error) {
			r.calls++
			r.keys = append(r.keys, options.IdempotencyKey)
			if r.calls <= len(r.errs) {
				return nil, r.errs[r.calls-1]
			}
			return &resend.SendEmailResponse{Id: "email_1"}, nil
		},
		pause: func(ctx context.Context, d time.Duration) error {
			r.pauses = append(r.pauses, d)
			return nil
		},
	}
}

func TestResendEmailSender_RetriesTransientFailure(t *testing.T) {
	r := &scriptedResend{errs: []error{errors.New("i/o timeout")}}

	require.NoError(t, r.sender().SendOTP(context.Background(), "a@b.fr", "123456", "otp:a@b.fr:1"))
	assert.Equal(t, 2, r.calls)
	assert.Equal(t, []time.Duration{500 * time.Millisecond}, r.pauses)
	assert.Equal(t, []string{"otp:a@b.fr:1", "otp:a@b.fr:1"}, r.keys)
}

func TestResendEmailSender_GivesUpWithoutTrailingPause(t *testing.T) {
	timeout := errors.New("i/o timeout")
	r := &scriptedResend{errs: []error{timeout, timeout, timeout, timeout}}

	err := r.sender().SendOTP(context.Background(), "a@b.fr", "123456", "k")
	assert.ErrorIs(t, err, timeout)
	assert.Equal(t, resendAttempts, r.calls)
	assert.Len(t, r.pauses, resendAttempts-1)
}

func TestResendEmailSender_PermanentFailureIsNotRetried(t *testing.T) {
	r := &scriptedResend{errs: []error{errors.New("invalid from address")}}

	err := r.sender().SendOTP(context.Background(), "a@b.fr", "123456", "k")
	require.Error(t, err)
	assert.Equal(t, 1, r.calls)
	assert.Empty(t, r.pauses)
}

func TestResendEmailSender_CancelledDuringPause(t *testing.T) {
	r := &scriptedResend{errs: []error{errors.New("i/o timeout")}}
	s := r.sender()
	s.pause = pauseContext

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.SendOTP(ctx, "a@b.fr", "123456", "k")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, r.calls)
}

func TestRenderOTPEmail(t *testing.T) {
	body := renderOTPEmail("042917", 10)
	assert.True(t, strings.Contains(body, "042917"))
	assert.True(t, strings.Contains(body, "10 minutes"))
}

func TestLogEmailSender_NeverFails(t *testing.T) {
	s := NewLogEmailSender()
	assert.NoError(t, s.SendOTP(context.Background(), "a@b.fr", "123456", "key"))
}
