package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ffaviron/defirose-api/internal/domain/entity"
	"github.com/ffaviron/defirose-api/internal/handler/dto"
	apperrors "github.com/ffaviron/defirose-api/internal/pkg/errors"
	"github.com/ffaviron/defirose-api/internal/repository/memory"
)

// ============================================================================
// Events
// ============================================================================

func TestEventService_CreateDefaults(t *testing.T) {
	repo := new(MockEventRepository)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*entity.Event")).Return(nil)
	svc, err := NewEventService(repo)
	require.NoError(t, err)

	event, err := svc.Create(context.Background(), &dto.EventRequest{
		Title:      "  Tous en rose au sommet ",
		DateStart:  "2025-10-04",
		DateEnd:    "2025-10-05",
		Activities: []string{"Séances collectives", "  ", "Petit-déjeuner solidaire"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Tous en rose au sommet", event.Title)
	assert.Equal(t, entity.EventStatusUpcoming, event.Status)
	assert.Equal(t, defaultEventType, event.EventType)
	assert.Equal(t, time.Date(2025, 10, 4, 0, 0, 0, 0, time.UTC), event.DateStart)
	require.NotNil(t, event.DateEnd)
	assert.Equal(t, []string{"Séances collectives", "Petit-déjeuner solidaire"}, event.Activities)
}

func TestEventService_Validation(t *testing.T) {
	repo := new(MockEventRepository)
	svc, err := NewEventService(repo)
	require.NoError(t, err)

	cases := map[string]*dto.EventRequest{
		"blank title":   {Title: " ", DateStart: "2025-10-04"},
		"bad start":     {Title: "A", DateStart: "04/10/2025"},
		"bad end":       {Title: "A", DateStart: "2025-10-04", DateEnd: "tomorrow"},
		"end before":    {Title: "A", DateStart: "2025-10-04", DateEnd: "2025-10-01"},
		"unknown state": {Title: "A", DateStart: "2025-10-04", Status: "CANCELLED"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), req)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestEventService_UpdateUnknown(t *testing.T) {
	repo := new(MockEventRepository)
	repo.On("GetByID", mock.Anything, uint(4)).Return(nil, apperrors.ErrNotFound)
	svc, err := NewEventService(repo)
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), 4, &dto.EventRequest{Title: "A", DateStart: "2025-10-04"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestEventService_UpdateReplacesFields(t *testing.T) {
	end := time.Date(2025, 10, 29, 0, 0, 0, 0, time.UTC)
	stored := &entity.Event{ID: 2, Title: "Old", DateEnd: &end, Status: entity.EventStatusActive, Color: "from-pink-500"}
	repo := new(MockEventRepository)
	repo.On("GetByID", mock.Anything, uint(2)).Return(stored, nil)
	repo.On("Update", mock.Anything, stored).Return(nil)
	svc, err := NewEventService(repo)
	require.NoError(t, err)

	event, err := svc.Update(context.Background(), 2, &dto.EventRequest{Title: "New", DateStart: "2025-10-01", Status: "featured"})
	require.NoError(t, err)
	assert.Equal(t, "New", event.Title)
	assert.Equal(t, entity.EventStatusFeatured, event.Status)
	assert.Nil(t, event.DateEnd)
	assert.Empty(t, event.Color)
	repo.AssertExpectations(t)
}

// ============================================================================
// Photos
// ============================================================================

func newPhotoFixture(t *testing.T) (*PhotoService, *MockPhotoRepository, *entity.Participant) {
	t.Helper()
	participantRepo := memory.NewParticipantRepo()
	participant := &entity.Participant{FirstName: "Léa", Email: "lea@example.fr"}
	require.NoError(t, participantRepo.Create(context.Background(), participant))
	participants, err := NewParticipantService(participantRepo)
	require.NoError(t, err)

	repo := new(MockPhotoRepository)
	svc, err := NewPhotoService(repo, participants)
	require.NoError(t, err)
	return svc, repo, participant
}

func TestPhotoService_SubmitStartsPending(t *testing.T) {
	svc, repo, participant := newPhotoFixture(t)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*entity.Photo")).Return(nil)

	photo, err := svc.Submit(context.Background(), &dto.SubmitPhotoRequest{
		ParticipantID: participant.ID,
		URL:           "https://cdn.example.fr/rose.jpg",
		Caption:       " Départ ",
	})
	require.NoError(t, err)
	assert.False(t, photo.Approved)
	assert.Equal(t, "Départ", photo.Caption)
	assert.Equal(t, participant.ID, photo.ParticipantID)
}

func TestPhotoService_SubmitRejects(t *testing.T) {
	svc, repo, participant := newPhotoFixture(t)

	for _, u := range []string{"", "cdn.example.fr/rose.jpg", "javascript:alert(1)", "ftp://cdn.example.fr/x"} {
		_, err := svc.Submit(context.Background(), &dto.SubmitPhotoRequest{ParticipantID: participant.ID, URL: u})
		assert.ErrorIs(t, err, apperrors.ErrValidation, u)
	}

	_, err := svc.Submit(context.Background(), &dto.SubmitPhotoRequest{ParticipantID: "ghost", URL: "https://cdn.example.fr/x.jpg"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPhotoService_ListFilters(t *testing.T) {
	svc, repo, _ := newPhotoFixture(t)
	repo.On("List", mock.Anything, (*bool)(nil)).Return([]entity.Photo{{ID: 1}, {ID: 2}}, nil)
	repo.On("List", mock.Anything, mock.MatchedBy(func(b *bool) bool { return b != nil && !*b })).
		Return([]entity.Photo{{ID: 2}}, nil)

	all, err := svc.List(context.Background(), dto.PhotoFilterAll)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending, err := svc.List(context.Background(), dto.PhotoFilterPending)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	_, err = svc.List(context.Background(), "rejected")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestPhotoService_ApproveUnknown(t *testing.T) {
	svc, repo, _ := newPhotoFixture(t)
	repo.On("Approve", mock.Anything, uint(9)).Return(false, nil)
	repo.On("GetByID", mock.Anything, uint(9)).Return(nil, apperrors.ErrNotFound)

	_, err := svc.Approve(context.Background(), 9)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// ============================================================================
// Rowing Care Cup
// ============================================================================

func newRowingFixture(t *testing.T) (*RowingCareCupService, *MockRowingRegistrationRepository, *entity.Participant) {
	t.Helper()
	participantRepo := memory.NewParticipantRepo()
	participant := &entity.Participant{FirstName: "Marc", Email: "marc@example.fr"}
	require.NoError(t, participantRepo.Create(context.Background(), participant))
	participants, err := NewParticipantService(participantRepo)
	require.NoError(t, err)

	repo := new(MockRowingRegistrationRepository)
	svc, err := NewRowingCareCupService(repo, participants)
	require.NoError(t, err)
	return svc, repo, participant
}

func TestRowingCareCup_RegisterPricesFromCatalogue(t *testing.T) {
	svc, repo, participant := newRowingFixture(t)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*entity.RowingRegistration")).Return(nil)

	solo, err := svc.Register(context.Background(), &dto.RowingRegistrationRequest{
		ParticipantID: participant.ID,
		Category:      entity.RowingCategoryIndividual,
		Distance:      "500m-femmes-cancer",
	})
	require.NoError(t, err)
	assert.Equal(t, 5, solo.Price)
	assert.Equal(t, "500m Femmes atteintes d'un cancer", solo.Gender)
	assert.Empty(t, solo.TeamType)
	assert.False(t, solo.Paid)

	relay, err := svc.Register(context.Background(), &dto.RowingRegistrationRequest{
		ParticipantID: participant.ID,
		Distance:      "4x500-mixte",
		TeamName:      "Les Roses",
	})
	require.NoError(t, err)
	assert.Equal(t, 16, relay.Price)
	assert.Equal(t, entity.RowingCategoryTeam, relay.Category)
	assert.Equal(t, "Les Roses", relay.TeamName)
}

func TestRowingCareCup_RegisterValidation(t *testing.T) {
	svc, repo, participant := newRowingFixture(t)

	cases := map[string]*dto.RowingRegistrationRequest{
		"unknown distance":  {ParticipantID: participant.ID, Distance: "2000m"},
		"category mismatch": {ParticipantID: participant.ID, Category: entity.RowingCategoryTeam, Distance: "500m-hommes"},
		"relay no team":     {ParticipantID: participant.ID, Distance: "4x500-femmes"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), req)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}

	_, err := svc.Register(context.Background(), &dto.RowingRegistrationRequest{ParticipantID: "ghost", Distance: "500m-hommes"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRowingCareCup_Stats(t *testing.T) {
	svc, repo, _ := newRowingFixture(t)
	repo.On("Count", mock.Anything).Return(int64(4), nil)
	repo.On("SumPaid", mock.Anything).Return(int64(21), nil)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &dto.RowingStats{Total: 4, TotalRegistrations: 4, TotalAmount: 21}, stats)
}
