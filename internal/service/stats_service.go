package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ffaviron/defirose-api/internal/domain/repository"
	"github.com/ffaviron/defirose-api/internal/handler/dto"
	apperrors "github.com/ffaviron/defirose-api/internal/pkg/errors"
	"github.com/ffaviron/defirose-api/pkg/logger"
)

const (
	campaignStatsCacheKey = "stats:campaign"
	DefaultStatsCacheTTL  = 30 * time.Second
)

// StatsService computes campaign counters. When a cache is configured the
// public counters are memoized for a short TTL.
type StatsService struct {
	participantRepo repository.ParticipantRepository
	kilometerRepo   repository.KilometerRepository
	clubRepo        repository.ClubRepository
	cache           repository.CacheRepository
	cacheTTL        time.Duration

	eventRepo  repository.EventRepository
	photoRepo  repository.PhotoRepository
	rowingRepo repository.RowingRegistrationRepository
}

// NewStatsService creates the stats service. cache may be nil.
func NewStatsService(
	participantRepo repository.ParticipantRepository,
	kilometerRepo repository.KilometerRepository,
	clubRepo repository.ClubRepository,
	cache repository.CacheRepository,
	cacheTTL time.Duration,
) (*StatsService, error) {
	if participantRepo == nil || kilometerRepo == nil || clubRepo == nil {
		return nil, fmt.Errorf("participant, kilometer and club repositories are required")
	}
	if cacheTTL <= 0 {
		cacheTTL = DefaultStatsCacheTTL
	}
	return &StatsService{
		participantRepo: participantRepo,
		kilometerRepo:   kilometerRepo,
		clubRepo:        clubRepo,
		cache:           cache,
		cacheTTL:        cacheTTL,
	}, nil
}

// Campaign returns the public counters. Cache failures are logged and the
// counters are computed from the database.
func (s *StatsService) Campaign(ctx context.Context) (*dto.CampaignStats, error) {
	if s.cache != nil {
		var cached dto.CampaignStats
		err := s.cache.GetJSON(ctx, campaignStatsCacheKey, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn(ctx, "stats cache read failed", zap.Error(err))
		}
	}

	stats, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, campaignStatsCacheKey, stats, s.cacheTTL); err != nil {
			logger.Warn(ctx, "stats cache write failed", zap.Error(err))
		}
	}
	return stats, nil
}

// AttachContent adds the calendar, photo and Rowing Care Cup counters to
// Admin. It must be called before the service handles requests.
func (s *StatsService) AttachContent(
	events repository.EventRepository,
	photos repository.PhotoRepository,
	rowing repository.RowingRegistrationRepository,
) {
	s.eventRepo = events
	s.photoRepo = photos
	s.rowingRepo = rowing
}

// Admin returns the counters with the moderation queues. It always reads
// through to the database.
func (s *StatsService) Admin(ctx context.Context) (*dto.AdminStats, error) {
	stats, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}
	out := &dto.AdminStats{CampaignStats: *stats}
	if out.PendingEntries, err = s.kilometerRepo.CountPending(ctx); err != nil {
		return nil, fmt.Errorf("count pending entries: %w", err)
	}
	if s.eventRepo != nil {
		if out.TotalEvents, err = s.eventRepo.Count(ctx); err != nil {
			return nil, fmt.Errorf("count events: %w", err)
		}
	}
	if s.photoRepo != nil {
		if out.PendingPhotos, err = s.photoRepo.CountPending(ctx); err != nil {
			return nil, fmt.Errorf("count pending photos: %w", err)
		}
	}
	if s.rowingRepo != nil {
		if out.RowingRegistrations, err = s.rowingRepo.Count(ctx); err != nil {
			return nil, fmt.Errorf("count rowing registrations: %w", err)
		}
	}
	return out, nil
}

// Invalidate drops the cached public counters.
func (s *StatsService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, campaignStatsCacheKey); err != nil {
		logger.Warn(ctx, "stats cache invalidation failed", zap.Error(err))
	}
}

func (s *StatsService) compute(ctx context.Context) (*dto.CampaignStats, error) {
	participants, err := s.participantRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count participants: %w", err)
	}
	km, err := s.kilometerRepo.SumValidated(ctx)
	if err != nil {
		return nil, fmt.Errorf("sum validated kilometers: %w", err)
	}
	clubs, err := s.clubRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count clubs: %w", err)
	}
	return &dto.CampaignStats{
		TotalParticipants: participants,
		TotalKilometers:   km,
		TotalClubs:        clubs,
	}, nil
}
