package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ffaviron/defirose-api/internal/domain/repository"
	"github.com/ffaviron/defirose-api/internal/metrics"
	"github.com/ffaviron/defirose-api/pkg/logger"
)

const DefaultOTPCleanupInterval = time.Minute

// OTPCleanupJob periodically deletes expired codes, used or not. Expiry is
// enforced at verification time; this only keeps the store small.
type OTPCleanupJob struct {
	repo     repository.OTPRepository
	interval time.Duration
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

func NewOTPCleanupJob(repo repository.OTPRepository, interval time.Duration) (*OTPCleanupJob, error) {
	if repo == nil {
		return nil, fmt.Errorf("otp repository is required")
	}
	if interval <= 0 {
		interval = DefaultOTPCleanupInterval
	}
	return &OTPCleanupJob{
		repo:     repo,
		interval: interval,
		now:      time.Now,
		stop:     make(chan struct{}),
	}, nil
}

// Start blocks until ctx is cancelled or Stop is called.
func (j *OTPCleanupJob) Start(ctx context.Context) {
	logger.Info(ctx, "starting otp cleanup job", zap.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "otp cleanup job stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(ctx, "otp cleanup job stopped")
			return
		case <-ticker.C:
			j.RunOnce(ctx)
		}
	}
}

func (j *OTPCleanupJob) Stop() {
	j.stopOnce.Do(func() { close(j.stop) })
}

// RunOnce performs a single sweep and returns the number of removed codes.
func (j *OTPCleanupJob) RunOnce(ctx context.Context) int64 {
	removed, err := j.repo.DeleteExpired(ctx, j.now().UTC())
	if err != nil {
		logger.Error(ctx, "otp cleanup failed", zap.Error(err))
		return 0
	}
	if removed > 0 {
		metrics.OTPCleanupRemoved.Add(float64(removed))
		logger.Debug(ctx, "expired otp codes removed", zap.Int64("count", removed))
	}
	return removed
}
