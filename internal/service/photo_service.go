package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/ffaviron/defirose-api/internal/domain/entity"
	"github.com/ffaviron/defirose-api/internal/domain/repository"
	"github.com/ffaviron/defirose-api/internal/handler/dto"
	apperrors "github.com/ffaviron/defirose-api/internal/pkg/errors"
	"github.com/ffaviron/defirose-api/pkg/logger"
)

// PhotoService moderates participant photos.
type PhotoService struct {
	photoRepo    repository.PhotoRepository
	participants *ParticipantService
}

func NewPhotoService(photoRepo repository.PhotoRepository, participants *ParticipantService) (*PhotoService, error) {
	if photoRepo == nil {
		return nil, fmt.Errorf("photo repository is required")
	}
	if participants == nil {
		return nil, fmt.Errorf("participant service is required")
	}
	return &PhotoService{photoRepo: photoRepo, participants: participants}, nil
}

// Submit stores a photo for moderation. It is not public until approved.
func (s *PhotoService) Submit(ctx context.Context, req *dto.SubmitPhotoRequest) (*entity.Photo, error) {
	photoURL := strings.TrimSpace(req.URL)
	if !isHTTPURL(photoURL) {
		return nil, fmt.Errorf("%w: url must be an absolute http(s) URL", apperrors.ErrValidation)
	}
	participant, err := s.participants.GetByID(ctx, strings.TrimSpace(req.ParticipantID))
	if err != nil {
		return nil, err
	}

	photo := &entity.Photo{
		ParticipantID: participant.ID,
		URL:           photoURL,
		Caption:       strings.TrimSpace(req.Caption),
	}
	if err := s.photoRepo.Create(ctx, photo); err != nil {
		return nil, fmt.Errorf("create photo: %w", err)
	}
	logger.Info(ctx, "photo submitted", zap.Uint("photo_id", photo.ID), zap.String("participant_id", participant.ID))
	return photo, nil
}

func (s *PhotoService) ListApproved(ctx context.Context) ([]entity.Photo, error) {
	approved := true
	return s.photoRepo.List(ctx, &approved)
}

// List returns photos matching one of the dto.PhotoFilter values.
func (s *PhotoService) List(ctx context.Context, filter string) ([]entity.Photo, error) {
	switch filter {
	case "", dto.PhotoFilterAll:
		return s.photoRepo.List(ctx, nil)
	case dto.PhotoFilterApproved:
		return s.ListApproved(ctx)
	case dto.PhotoFilterPending:
		approved := false
		return s.photoRepo.List(ctx, &approved)
	}
	return nil, fmt.Errorf("%w: unknown photo filter %q", apperrors.ErrValidation, filter)
}

// Approve publishes a photo. Approving twice returns the photo unchanged.
func (s *PhotoService) Approve(ctx context.Context, id uint) (*entity.Photo, error) {
	changed, err := s.photoRepo.Approve(ctx, id)
	if err != nil {
		return nil, err
	}
	photo, err := s.photoRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if changed {
		logger.Info(ctx, "photo approved", zap.Uint("photo_id", id))
	}
	return photo, nil
}

func (s *PhotoService) Delete(ctx context.Context, id uint) error {
	if err := s.photoRepo.Delete(ctx, id); err != nil {
		return err
	}
	logger.Info(ctx, "photo deleted", zap.Uint("photo_id", id))
	return nil
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
