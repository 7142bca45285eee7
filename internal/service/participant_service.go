package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ffaviron/defirose-api/internal/domain/entity"
	"github.com/ffaviron/defirose-api/internal/domain/repository"
	"github.com/ffaviron/defirose-api/internal/handler/dto"
	apperrors "github.com/ffaviron/defirose-api/internal/pkg/errors"
	"github.com/ffaviron/defirose-api/pkg/logger"
)

// ParticipantService manages the participant directory.
type ParticipantService struct {
	participantRepo repository.ParticipantRepository
}

func NewParticipantService(participantRepo repository.ParticipantRepository) (*ParticipantService, error) {
	if participantRepo == nil {
		return nil, fmt.Errorf("participant repository is required")
	}
	return &ParticipantService{participantRepo: participantRepo}, nil
}

// FindOrCreateByEmail returns the participant owning email, creating a
// placeholder one when none exists. A concurrent creation for the same
// email is resolved by re-reading the winner.
func (s *ParticipantService) FindOrCreateByEmail(ctx context.Context, email string) (*entity.Participant, error) {
	return s.FindOrCreate(ctx, entity.NewPlaceholderParticipant(email))
}

// Register adds a participant, returning the existing one when the email
// is already known.
func (s *ParticipantService) Register(ctx context.Context, req *dto.RegisterParticipantRequest) (*entity.Participant, error) {
	email, err := NormalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	firstName := strings.TrimSpace(req.FirstName)
	if firstName == "" {
		return nil, fmt.Errorf("%w: first name is required", apperrors.ErrValidation)
	}
	return s.FindOrCreate(ctx, &entity.Participant{
		FirstName:       firstName,
		LastName:        strings.TrimSpace(req.LastName),
		Email:           email,
		Club:            strings.TrimSpace(req.Club),
		ParticipantType: entity.ParticipantTypeIndividual,
	})
}

// FindOrCreate returns the participant with candidate's email, inserting
// candidate when there is none.
func (s *ParticipantService) FindOrCreate(ctx context.Context, candidate *entity.Participant) (*entity.Participant, error) {
	existing, err := s.participantRepo.GetByEmail(ctx, candidate.Email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("lookup participant: %w", err)
	}

	if err := s.participantRepo.Create(ctx, candidate); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			winner, readErr := s.participantRepo.GetByEmail(ctx, candidate.Email)
			if readErr != nil {
				return nil, fmt.Errorf("re-read participant after conflict: %w", readErr)
			}
			return winner, nil
		}
		return nil, fmt.Errorf("create participant: %w", err)
	}

	logger.Info(ctx, "participant created",
		zap.String("participant_id", candidate.ID),
		zap.String("email", candidate.Email),
		zap.String("type", candidate.ParticipantType),
	)
	return candidate, nil
}

func (s *ParticipantService) GetByID(ctx context.Context, id string) (*entity.Participant, error) {
	return s.participantRepo.GetByID(ctx, id)
}

// List returns one page of participants, newest first.
func (s *ParticipantService) List(ctx context.Context, page, pageSize int) (*dto.PaginatedParticipantsResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	} else if pageSize > 500 {
		pageSize = 500
	}
	offset := (page - 1) * pageSize

	participants, total, err := s.participantRepo.List(ctx, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return &dto.PaginatedParticipantsResponse{
		Participants: participants,
		Total:        total,
		Page:         page,
		PerPage:      pageSize,
	}, nil
}

// All returns every participant, newest first.
func (s *ParticipantService) All(ctx context.Context) ([]entity.Participant, error) {
	participants, _, err := s.participantRepo.List(ctx, 0, 0)
	return participants, err
}
