package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/ffaviron/defirose-api/internal/domain/entity"
	"github.com/ffaviron/defirose-api/internal/handler/dto"
)

// ============================================================================
// Repository mocks shared by the service tests
// ============================================================================

type MockKilometerRepository struct {
	mock.Mock
}

func (m *MockKilometerRepository) Create(ctx context.Context, entry *entity.KilometerEntry) error {
	args := m.Called(ctx, entry)
	if args.Error(0) == nil && entry.ID == 0 {
		entry.ID = 1
	}
	return args.Error(0)
}

func (m *MockKilometerRepository) GetByID(ctx context.Context, id uint) (*entity.KilometerEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.KilometerEntry), args.Error(1)
}

func (m *MockKilometerRepository) Validate(ctx context.Context, id uint) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockKilometerRepository) ListAll(ctx context.Context) ([]entity.KilometerEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.KilometerEntry), args.Error(1)
}

func (m *MockKilometerRepository) ListValidated(ctx context.Context) ([]entity.KilometerEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.KilometerEntry), args.Error(1)
}

func (m *MockKilometerRepository) ListByParticipant(ctx context.Context, participantID string) ([]entity.KilometerEntry, error) {
	args := m.Called(ctx, participantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.KilometerEntry), args.Error(1)
}

func (m *MockKilometerRepository) SumValidated(ctx context.Context) (float64, error) {
	args := m.Called(ctx)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockKilometerRepository) CountPending(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockKilometerRepository) ValidatedTotalsByParticipant(ctx context.Context) (map[string]float64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]float64), args.Error(1)
}

type MockClubRepository struct {
	mock.Mock
}

func (m *MockClubRepository) List(ctx context.Context) ([]entity.Club, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Club), args.Error(1)
}

func (m *MockClubRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockClubRepository) AddKilometers(ctx context.Context, name string, km float64) (bool, error) {
	args := m.Called(ctx, name, km)
	return args.Bool(0), args.Error(1)
}

type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepository) GetJSON(ctx context.Context, key string, dest interface{}) error {
	args := m.Called(ctx, key, dest)
	if fill, ok := args.Get(0).(func(interface{})); ok {
		fill(dest)
		return nil
	}
	return args.Error(0)
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type MockAdminRepository struct {
	mock.Mock
}

func (m *MockAdminRepository) Create(ctx context.Context, admin *entity.Admin) error {
	args := m.Called(ctx, admin)
	return args.Error(0)
}

func (m *MockAdminRepository) GetByEmail(ctx context.Context, email string) (*entity.Admin, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Admin), args.Error(1)
}

func (m *MockAdminRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type recordingPublisher struct {
	published []*dto.CampaignStats
}

func (p *recordingPublisher) PublishStats(ctx context.Context, stats *dto.CampaignStats) {
	p.published = append(p.published, stats)
}

type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Create(ctx context.Context, event *entity.Event) error {
	args := m.Called(ctx, event)
	if args.Error(0) == nil && event.ID == 0 {
		event.ID = 1
	}
	return args.Error(0)
}

func (m *MockEventRepository) GetByID(ctx context.Context, id uint) (*entity.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Event), args.Error(1)
}

func (m *MockEventRepository) Update(ctx context.Context, event *entity.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockEventRepository) List(ctx context.Context) ([]entity.Event, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Event), args.Error(1)
}

func (m *MockEventRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockPhotoRepository struct {
	mock.Mock
}

func (m *MockPhotoRepository) Create(ctx context.Context, photo *entity.Photo) error {
	args := m.Called(ctx, photo)
	if args.Error(0) == nil && photo.ID == 0 {
		photo.ID = 1
	}
	return args.Error(0)
}

func (m *MockPhotoRepository) GetByID(ctx context.Context, id uint) (*entity.Photo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Photo), args.Error(1)
}

func (m *MockPhotoRepository) List(ctx context.Context, approved *bool) ([]entity.Photo, error) {
	args := m.Called(ctx, approved)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Photo), args.Error(1)
}

func (m *MockPhotoRepository) Approve(ctx context.Context, id uint) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockPhotoRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPhotoRepository) CountPending(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockRowingRegistrationRepository struct {
	mock.Mock
}

func (m *MockRowingRegistrationRepository) Create(ctx context.Context, reg *entity.RowingRegistration) error {
	args := m.Called(ctx, reg)
	if args.Error(0) == nil && reg.ID == 0 {
		reg.ID = 1
	}
	return args.Error(0)
}

func (m *MockRowingRegistrationRepository) GetByID(ctx context.Context, id uint) (*entity.RowingRegistration, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.RowingRegistration), args.Error(1)
}

func (m *MockRowingRegistrationRepository) ListAll(ctx context.Context) ([]entity.RowingRegistration, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.RowingRegistration), args.Error(1)
}

func (m *MockRowingRegistrationRepository) MarkPaid(ctx context.Context, id uint) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockRowingRegistrationRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRowingRegistrationRepository) SumPaid(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
