package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ffaviron/defirose-api/internal/domain/entity"
	"github.com/ffaviron/defirose-api/internal/middleware"
	"github.com/ffaviron/defirose-api/internal/repository/memory"
	"github.com/ffaviron/defirose-api/internal/repository/postgres"
	"github.com/ffaviron/defirose-api/internal/service"
	"github.com/ffaviron/defirose-api/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testJWTSecret = "test-secret-0123456789-abcdefghijklmnop"

// captureSender records the last code sent per email.
type captureSender struct {
	mu    sync.Mutex
	codes map[string]string
	fail  error
}

func newCaptureSender() *captureSender {
	return &captureSender{codes: make(map[string]string)}
}

func (s *captureSender) SendOTP(ctx context.Context, toEmail, code, idempotencyKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.codes[toEmail] = code
	return nil
}

func (s *captureSender) lastCode(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codes[email]
}

type testEnv struct {
	db           *gorm.DB
	sender       *captureSender
	otpStore     *memory.OTPStore
	tokens       *auth.TokenService
	participants *service.ParticipantService
	kilometers   *service.KilometerService
	stats        *service.StatsService
	admins       *service.AdminService
	router       *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:handler_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&entity.Participant{},
		&entity.KilometerEntry{},
		&entity.Club{},
		&entity.Admin{},
		&entity.Event{},
		&entity.Photo{},
		&entity.RowingRegistration{},
	))

	participantRepo := postgres.NewParticipantRepo(db)
	kilometerRepo := postgres.NewKilometerRepo(db)
	clubRepo := postgres.NewClubRepo(db)
	adminRepo := postgres.NewAdminRepo(db)
	eventRepo := postgres.NewEventRepo(db)
	photoRepo := postgres.NewPhotoRepo(db)
	rowingRepo := postgres.NewRowingRegistrationRepo(db)

	env := &testEnv{db: db, sender: newCaptureSender(), otpStore: memory.NewOTPStore()}

	env.participants, err = service.NewParticipantService(participantRepo)
	require.NoError(t, err)
	env.stats, err = service.NewStatsService(participantRepo, kilometerRepo, clubRepo, nil, time.Second)
	require.NoError(t, err)
	env.stats.AttachContent(eventRepo, photoRepo, rowingRepo)
	env.kilometers, err = service.NewKilometerService(kilometerRepo, clubRepo, env.participants, env.stats)
	require.NoError(t, err)
	env.tokens, err = auth.NewTokenService(testJWTSecret, time.Hour)
	require.NoError(t, err)
	env.admins, err = service.NewAdminService(adminRepo, env.tokens)
	require.NoError(t, err)
	eventService, err := service.NewEventService(eventRepo)
	require.NoError(t, err)
	photoService, err := service.NewPhotoService(photoRepo, env.participants)
	require.NoError(t, err)
	rowingService, err := service.NewRowingCareCupService(rowingRepo, env.participants)
	require.NoError(t, err)
	otpService, err := service.NewOTPService(env.otpStore, env.participants, env.sender, service.OTPConfig{Pepper: "pepper"})
	require.NoError(t, err)

	otpHandler := NewOTPHandler(otpService)
	participantHandler := NewParticipantHandler(env.participants, env.stats)
	kilometerHandler := NewKilometerHandler(env.kilometers)
	adminHandler := NewAdminHandler(env.admins, env.participants, env.kilometers, env.stats)
	eventHandler := NewEventHandler(eventService)
	photoHandler := NewPhotoHandler(photoService)
	rowingHandler := NewRowingCareCupHandler(rowingService)
	authMiddleware := middleware.NewAuthMiddleware(env.tokens)

	r := gin.New()
	api := r.Group("/api")
	api.POST("/otp/send", otpHandler.SendCode)
	api.POST("/otp/verify", otpHandler.VerifyCode)
	api.POST("/participants", participantHandler.Register)
	api.GET("/participants/stats", participantHandler.Stats)
	api.GET("/participants/:id", participantHandler.Get)
	api.POST("/defi-rose/submit", kilometerHandler.Submit)
	api.GET("/kilometers/validated", kilometerHandler.ListValidated)
	api.GET("/kilometers/participant/:id", kilometerHandler.ListByParticipant)
	api.GET("/clubs", kilometerHandler.Clubs)
	api.GET("/events", eventHandler.List)
	api.GET("/photos", photoHandler.ListApproved)
	api.GET("/photos/approved", photoHandler.ListApproved)
	api.POST("/photos", photoHandler.Submit)
	api.POST("/rowing-care-cup", rowingHandler.Register)
	api.GET("/rowing-care-cup/stats", rowingHandler.Stats)
	api.POST("/admin/login", adminHandler.Login)

	admin := api.Group("/admin", authMiddleware.AdminAuth())
	admin.GET("/stats", adminHandler.Stats)
	admin.GET("/participants", participantHandler.List)
	admin.GET("/kilometers", kilometerHandler.ListAll)
	admin.PUT("/kilometers/:id/validate", middleware.ExtractUintParam("id", EntryIDKey), kilometerHandler.Validate)
	admin.GET("/export/participants.xlsx", adminHandler.ExportParticipants)
	admin.POST("/events", eventHandler.Create)
	admin.PUT("/events/:id", middleware.ExtractUintParam("id", EventIDKey), eventHandler.Update)
	admin.DELETE("/events/:id", middleware.ExtractUintParam("id", EventIDKey), eventHandler.Delete)
	admin.GET("/photos", photoHandler.List)
	admin.POST("/photos/:id/approve", middleware.ExtractUintParam("id", PhotoIDKey), photoHandler.Approve)
	admin.DELETE("/photos/:id", middleware.ExtractUintParam("id", PhotoIDKey), photoHandler.Delete)
	admin.GET("/rowing-care-cup", rowingHandler.List)
	admin.PUT("/rowing-care-cup/:id/paid", middleware.ExtractUintParam("id", RegistrationIDKey), rowingHandler.MarkPaid)
	env.router = r

	return env
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	token, _, err := e.tokens.Generate(1, "admin@ffaviron.fr", "admin")
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// parseJSONResponse decodes a JSON object response body.
func parseJSONResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err, "Response body should be valid JSON: %s", w.Body.String())
	return resp
}

func parseJSONList(t *testing.T, w *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var resp []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "body: %s", w.Body.String())
	return resp
}

func (e *testEnv) seedClub(t *testing.T, name string) {
	t.Helper()
	require.NoError(t, e.db.Create(&entity.Club{Name: name}).Error)
}
