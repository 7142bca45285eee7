package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ffaviron/defirose-api/internal/domain/entity"
	"github.com/ffaviron/defirose-api/internal/domain/repository"
	"github.com/ffaviron/defirose-api/internal/handler/dto"
	apperrors "github.com/ffaviron/defirose-api/internal/pkg/errors"
	"github.com/ffaviron/defirose-api/pkg/auth"
	"github.com/ffaviron/defirose-api/pkg/logger"
)

// ErrInvalidCredentials is returned for an unknown email or a wrong password.
var ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", apperrors.ErrUnauthorized)

// dummyHash keeps login timing similar for unknown emails.
var dummyHash = sync.OnceValue(func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("defirose-dummy-password"), bcrypt.DefaultCost)
	return h
})

// AdminService authenticates back-office users.
type AdminService struct {
	adminRepo repository.AdminRepository
	tokens    *auth.TokenService
}

func NewAdminService(adminRepo repository.AdminRepository, tokens *auth.TokenService) (*AdminService, error) {
	if adminRepo == nil {
		return nil, fmt.Errorf("admin repository is required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token service is required")
	}
	return &AdminService{adminRepo: adminRepo, tokens: tokens}, nil
}

// Login checks credentials and issues a bearer token.
func (s *AdminService) Login(ctx context.Context, email, password string) (*dto.AdminLoginResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	admin, err := s.adminRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
			logger.Warn(ctx, "admin login failed", zap.String("email", email), zap.String("reason", "unknown_email"))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup admin: %w", err)
	}
	if !admin.CheckPassword(password) {
		logger.Warn(ctx, "admin login failed", zap.String("email", email), zap.String("reason", "bad_password"))
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Generate(admin.ID, admin.Email, admin.Role)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "admin logged in", zap.Uint("admin_id", admin.ID))
	return &dto.AdminLoginResponse{
		Success:   true,
		Token:     token,
		ExpiresAt: expiresAt,
		Admin: dto.AdminInfo{
			ID:    admin.ID,
			Email: admin.Email,
			Name:  admin.Name,
			Role:  admin.Role,
		},
	}, nil
}

// EnsureBootstrapAdmin creates the first admin account when the table is
// empty. It does nothing when email or password is blank.
func (s *AdminService) EnsureBootstrapAdmin(ctx context.Context, email, password, name string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}
	count, err := s.adminRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if count > 0 {
		return nil
	}
	if len(password) < 8 {
		return fmt.Errorf("%w: bootstrap admin password must be at least 8 characters", apperrors.ErrValidation)
	}

	admin := &entity.Admin{Email: email, Password: password, Name: name, Role: "admin"}
	if err := s.adminRepo.Create(ctx, admin); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil
		}
		return fmt.Errorf("create bootstrap admin: %w", err)
	}
	logger.Info(ctx, "bootstrap admin created", zap.String("email", email))
	return nil
}
