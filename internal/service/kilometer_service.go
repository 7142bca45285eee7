package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ffaviron/defirose-api/internal/domain/entity"
	"github.com/ffaviron/defirose-api/internal/domain/repository"
	"github.com/ffaviron/defirose-api/internal/handler/dto"
	apperrors "github.com/ffaviron/defirose-api/internal/pkg/errors"
	"github.com/ffaviron/defirose-api/pkg/logger"
)

// StatsPublisher pushes fresh campaign counters to live subscribers.
type StatsPublisher interface {
	PublishStats(ctx context.Context, stats *dto.CampaignStats)
}

// KilometerService records and moderates Défi Rose kilometer entries.
type KilometerService struct {
	kilometerRepo repository.KilometerRepository
	clubRepo      repository.ClubRepository
	participants  *ParticipantService
	stats         *StatsService
	publisher     StatsPublisher
}

func NewKilometerService(
	kilometerRepo repository.KilometerRepository,
	clubRepo repository.ClubRepository,
	participants *ParticipantService,
	stats *StatsService,
) (*KilometerService, error) {
	if kilometerRepo == nil || clubRepo == nil {
		return nil, fmt.Errorf("kilometer and club repositories are required")
	}
	if participants == nil || stats == nil {
		return nil, fmt.Errorf("participant and stats services are required")
	}
	return &KilometerService{
		kilometerRepo: kilometerRepo,
		clubRepo:      clubRepo,
		participants:  participants,
		stats:         stats,
	}, nil
}

// SetPublisher attaches the live stats feed. It must be called before the
// service handles requests.
func (s *KilometerService) SetPublisher(p StatsPublisher) {
	s.publisher = p
}

// Submit records a Défi Rose declaration, creating the declaring individual
// or structure on first submission. The entry starts unvalidated and
// counts towards no total until Validate.
func (s *KilometerService) Submit(ctx context.Context, req *dto.DefiRoseSubmitRequest) (*entity.KilometerEntry, *entity.Participant, error) {
	candidate, err := submitter(req)
	if err != nil {
		return nil, nil, err
	}
	date, err := parseEntryDate(req.Date)
	if err != nil {
		return nil, nil, err
	}
	activity := strings.ToUpper(strings.TrimSpace(req.ActivityType))
	if activity == "" {
		activity = entity.ActivityIndoor
	}
	if !entity.IsValidActivityType(activity) {
		return nil, nil, fmt.Errorf("%w: unknown activity type %q", apperrors.ErrValidation, req.ActivityType)
	}
	if req.Kilometers <= 0 {
		return nil, nil, fmt.Errorf("%w: kilometers must be positive", apperrors.ErrValidation)
	}

	participant, err := s.participants.FindOrCreate(ctx, candidate)
	if err != nil {
		return nil, nil, err
	}

	entry := &entity.KilometerEntry{
		ParticipantID:     participant.ID,
		Date:              date,
		ActivityType:      activity,
		Kilometers:        req.Kilometers,
		Duration:          strings.TrimSpace(req.Duration),
		Location:          strings.TrimSpace(req.Location),
		ParticipationType: entity.ParticipationIndividual,
		ParticipantCount:  1,
		Description:       strings.TrimSpace(req.Description),
		PhotoURL:          strings.TrimSpace(req.PhotoURL),
	}
	if entry.Location == "" {
		entry.Location = strings.TrimSpace(req.Country)
	}
	if req.TypeParticipant == dto.SubmitterStructure {
		entry.ParticipationType = entity.ParticipationCollective
		if req.ParticipantCount > 1 {
			entry.ParticipantCount = req.ParticipantCount
		}
	}

	if err := s.kilometerRepo.Create(ctx, entry); err != nil {
		return nil, nil, fmt.Errorf("create kilometer entry: %w", err)
	}
	entry.Participant = participant

	s.stats.Invalidate(ctx)

	logger.Info(ctx, "kilometer entry submitted",
		zap.Uint("entry_id", entry.ID),
		zap.String("participant_id", participant.ID),
		zap.Float64("km", entry.Kilometers),
	)
	return entry, participant, nil
}

// Validate marks an entry as counted. Validating an already validated entry
// is a no-op that returns the entry.
func (s *KilometerService) Validate(ctx context.Context, id uint) (*entity.KilometerEntry, error) {
	changed, err := s.kilometerRepo.Validate(ctx, id)
	if err != nil {
		return nil, err
	}
	entry, err := s.kilometerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !changed {
		return entry, nil
	}

	s.creditClub(ctx, entry)
	s.stats.Invalidate(ctx)
	if s.publisher != nil {
		stats, err := s.stats.Campaign(ctx)
		if err != nil {
			logger.Warn(ctx, "could not refresh stats after validation", zap.Error(err))
		} else {
			s.publisher.PublishStats(ctx, stats)
		}
	}

	logger.Info(ctx, "kilometer entry validated", zap.Uint("entry_id", id), zap.Float64("km", entry.Kilometers))
	return entry, nil
}

// creditClub adds a newly validated entry to the club named by its
// location, if any.
func (s *KilometerService) creditClub(ctx context.Context, entry *entity.KilometerEntry) {
	if entry.Location == "" {
		return
	}
	matched, err := s.clubRepo.AddKilometers(ctx, entry.Location, entry.Kilometers)
	if err != nil {
		logger.Error(ctx, "failed to credit club kilometers",
			zap.String("club", entry.Location),
			zap.Uint("entry_id", entry.ID),
			zap.Error(err),
		)
		return
	}
	if matched {
		logger.Debug(ctx, "club kilometers credited", zap.String("club", entry.Location), zap.Float64("km", entry.Kilometers))
	}
}

func (s *KilometerService) ListAll(ctx context.Context) ([]entity.KilometerEntry, error) {
	return s.kilometerRepo.ListAll(ctx)
}

func (s *KilometerService) ListValidated(ctx context.Context) ([]entity.KilometerEntry, error) {
	return s.kilometerRepo.ListValidated(ctx)
}

func (s *KilometerService) ListByParticipant(ctx context.Context, participantID string) ([]entity.KilometerEntry, error) {
	if _, err := s.participants.GetByID(ctx, participantID); err != nil {
		return nil, err
	}
	return s.kilometerRepo.ListByParticipant(ctx, participantID)
}

// ValidatedTotals maps participant id to validated kilometers.
func (s *KilometerService) ValidatedTotals(ctx context.Context) (map[string]float64, error) {
	return s.kilometerRepo.ValidatedTotalsByParticipant(ctx)
}

func (s *KilometerService) Clubs(ctx context.Context) ([]entity.Club, error) {
	return s.clubRepo.List(ctx)
}

func submitter(req *dto.DefiRoseSubmitRequest) (*entity.Participant, error) {
	switch req.TypeParticipant {
	case dto.SubmitterIndividual:
		email, err := NormalizeEmail(req.Email)
		if err != nil {
			return nil, err
		}
		firstName := strings.TrimSpace(req.FirstName)
		if firstName == "" {
			return nil, fmt.Errorf("%w: first name is required", apperrors.ErrValidation)
		}
		return &entity.Participant{
			FirstName:       firstName,
			LastName:        strings.TrimSpace(req.LastName),
			Email:           email,
			ParticipantType: entity.ParticipantTypeIndividual,
			City:            strings.TrimSpace(req.Country),
		}, nil
	case dto.SubmitterStructure:
		email, err := NormalizeEmail(req.StructureEmail)
		if err != nil {
			return nil, err
		}
		name := strings.TrimSpace(req.StructureName)
		if name == "" {
			return nil, fmt.Errorf("%w: structure name is required", apperrors.ErrValidation)
		}
		return &entity.Participant{
			FirstName:        name,
			Email:            email,
			ParticipantType:  entity.ParticipantTypeClub,
			OrganizationName: name,
			City:             strings.TrimSpace(req.Country),
		}, nil
	}
	return nil, fmt.Errorf("%w: unknown participant type %q", apperrors.ErrValidation, req.TypeParticipant)
}

func parseEntryDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD", apperrors.ErrValidation)
}
