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

const defaultEventType = "CHALLENGE"

// EventService manages the campaign calendar.
type EventService struct {
	eventRepo repository.EventRepository
}

func NewEventService(eventRepo repository.EventRepository) (*EventService, error) {
	if eventRepo == nil {
		return nil, fmt.Errorf("event repository is required")
	}
	return &EventService{eventRepo: eventRepo}, nil
}

func (s *EventService) List(ctx context.Context) ([]entity.Event, error) {
	return s.eventRepo.List(ctx)
}

func (s *EventService) Create(ctx context.Context, req *dto.EventRequest) (*entity.Event, error) {
	event := &entity.Event{}
	if err := applyEventRequest(event, req); err != nil {
		return nil, err
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	logger.Info(ctx, "event created", zap.Uint("event_id", event.ID), zap.String("title", event.Title))
	return event, nil
}

// Update replaces every editable field of the event.
func (s *EventService) Update(ctx context.Context, id uint, req *dto.EventRequest) (*entity.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyEventRequest(event, req); err != nil {
		return nil, err
	}
	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}
	logger.Info(ctx, "event updated", zap.Uint("event_id", id))
	return event, nil
}

func (s *EventService) Delete(ctx context.Context, id uint) error {
	if err := s.eventRepo.Delete(ctx, id); err != nil {
		return err
	}
	logger.Info(ctx, "event deleted", zap.Uint("event_id", id))
	return nil
}

func applyEventRequest(event *entity.Event, req *dto.EventRequest) error {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return fmt.Errorf("%w: title is required", apperrors.ErrValidation)
	}
	start, err := parseEventDate(req.DateStart)
	if err != nil {
		return err
	}
	var end *time.Time
	if strings.TrimSpace(req.DateEnd) != "" {
		d, err := parseEventDate(req.DateEnd)
		if err != nil {
			return err
		}
		if d.Before(start) {
			return fmt.Errorf("%w: dateEnd is before dateStart", apperrors.ErrValidation)
		}
		end = &d
	}
	status := strings.ToUpper(strings.TrimSpace(req.Status))
	if status == "" {
		status = entity.EventStatusUpcoming
	}
	if !entity.IsValidEventStatus(status) {
		return fmt.Errorf("%w: unknown event status %q", apperrors.ErrValidation, req.Status)
	}
	eventType := strings.TrimSpace(req.EventType)
	if eventType == "" {
		eventType = defaultEventType
	}

	activities := make([]string, 0, len(req.Activities))
	for _, a := range req.Activities {
		if a = strings.TrimSpace(a); a != "" {
			activities = append(activities, a)
		}
	}

	event.Title = title
	event.Description = strings.TrimSpace(req.Description)
	event.DateStart = start
	event.DateEnd = end
	event.TimeInfo = strings.TrimSpace(req.TimeInfo)
	event.EventType = eventType
	event.Color = strings.TrimSpace(req.Color)
	event.Activities = activities
	event.Status = status
	return nil
}

func parseEventDate(raw string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: event dates must be YYYY-MM-DD", apperrors.ErrValidation)
	}
	return t, nil
}
