package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ffaviron/defirose-api/internal/domain/entity"
	"github.com/ffaviron/defirose-api/internal/domain/repository"
	"github.com/ffaviron/defirose-api/internal/handler/dto"
	apperrors "github.com/ffaviron/defirose-api/internal/pkg/errors"
	"github.com/ffaviron/defirose-api/pkg/logger"
)

// RowingCareCupService handles Rowing Care Cup registrations. Payment
// happens outside the API; admins mark registrations paid.
type RowingCareCupService struct {
	registrationRepo repository.RowingRegistrationRepository
	participants     *ParticipantService
}

func NewRowingCareCupService(registrationRepo repository.RowingRegistrationRepository, participants *ParticipantService) (*RowingCareCupService, error) {
	if registrationRepo == nil {
		return nil, fmt.Errorf("rowing registration repository is required")
	}
	if participants == nil {
		return nil, fmt.Errorf("participant service is required")
	}
	return &RowingCareCupService{registrationRepo: registrationRepo, participants: participants}, nil
}

// Register enrols an existing participant in a race. The fee comes from
// entity.RowingRaces.
func (s *RowingCareCupService) Register(ctx context.Context, req *dto.RowingRegistrationRequest) (*entity.RowingRegistration, error) {
	race, ok := entity.RowingRaces[strings.TrimSpace(req.Distance)]
	if !ok {
		return nil, fmt.Errorf("%w: unknown distance %q", apperrors.ErrValidation, req.Distance)
	}
	if req.Category != "" && req.Category != race.Category {
		return nil, fmt.Errorf("%w: distance %q is not a %s race", apperrors.ErrValidation, race.Distance, req.Category)
	}
	teamName := strings.TrimSpace(req.TeamName)
	if race.Category == entity.RowingCategoryTeam && teamName == "" {
		return nil, fmt.Errorf("%w: team name is required for relays", apperrors.ErrValidation)
	}

	participant, err := s.participants.GetByID(ctx, strings.TrimSpace(req.ParticipantID))
	if err != nil {
		return nil, err
	}

	reg := &entity.RowingRegistration{
		ParticipantID: participant.ID,
		Category:      race.Category,
		Distance:      race.Distance,
		Price:         race.Price,
	}
	if race.Category == entity.RowingCategoryTeam {
		reg.TeamType = race.Label
		reg.TeamName = teamName
	} else {
		reg.Gender = race.Label
	}
	if err := s.registrationRepo.Create(ctx, reg); err != nil {
		return nil, fmt.Errorf("create rowing registration: %w", err)
	}

	logger.Info(ctx, "rowing care cup registration",
		zap.Uint("registration_id", reg.ID),
		zap.String("participant_id", participant.ID),
		zap.String("distance", reg.Distance),
		zap.Int("price", reg.Price),
	)
	return reg, nil
}

func (s *RowingCareCupService) Stats(ctx context.Context) (*dto.RowingStats, error) {
	total, err := s.registrationRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count rowing registrations: %w", err)
	}
	amount, err := s.registrationRepo.SumPaid(ctx)
	if err != nil {
		return nil, fmt.Errorf("sum rowing fees: %w", err)
	}
	return &dto.RowingStats{Total: total, TotalRegistrations: total, TotalAmount: amount}, nil
}

func (s *RowingCareCupService) ListAll(ctx context.Context) ([]entity.RowingRegistration, error) {
	return s.registrationRepo.ListAll(ctx)
}

// MarkPaid records an external payment. Marking twice is a no-op.
func (s *RowingCareCupService) MarkPaid(ctx context.Context, id uint) (*entity.RowingRegistration, error) {
	changed, err := s.registrationRepo.MarkPaid(ctx, id)
	if err != nil {
		return nil, err
	}
	reg, err := s.registrationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if changed {
		logger.Info(ctx, "rowing registration paid", zap.Uint("registration_id", id), zap.Int("price", reg.Price))
	}
	return reg, nil
}
