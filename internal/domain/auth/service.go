package auth

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"servicecenter/internal/core/apperror"
	"servicecenter/internal/core/entity"
	"servicecenter/internal/core/tx"
	"servicecenter/internal/core/validate"
	"servicecenter/pkg/logger"
)

// ServiceConfig holds auth service configuration.
type ServiceConfig struct {
	PasswordMinLength int
	BcryptCost        int
}

// DefaultServiceConfig returns default configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		PasswordMinLength: 6,
		BcryptCost:        bcrypt.DefaultCost,
	}
}

// Service provides authentication and login account management.
type Service struct {
	userRepo   UserRepository
	txManager  tx.Manager
	jwtService *JWTService
	config     ServiceConfig
	now        func() time.Time
}

// NewService creates a new auth service.
func NewService(
	userRepo UserRepository,
	txManager tx.Manager,
	jwtService *JWTService,
	config ServiceConfig,
) *Service {
	return &Service{
		userRepo:   userRepo,
		txManager:  txManager,
		jwtService: jwtService,
		config:     config,
		now:        time.Now,
	}
}

// Login verifies credentials and issues an access token.
// Unknown or inactive users get USER_NOT_FOUND, a wrong password INVALID_CREDENTIALS.
func (s *Service) Login(ctx context.Context, creds Credentials) (*Token, error) {
	if err := validate.Struct(&creds); err != nil {
		return nil, err
	}

	user, err := s.verify(ctx, creds.Username, creds.Password)
	if err != nil {
		return nil, err
	}

	accessToken, expiresAt, err := s.jwtService.GenerateAccessToken(user.Username, user.Role)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	if err := s.userRepo.Update(ctx, user.Username, map[string]any{"last_login_at": s.now()}); err != nil {
		logger.Warn(ctx, "failed to record login", "username", user.Username, "error", err)
	}

	logger.Info(ctx, "user logged in",
		"username", user.Username,
		"role", user.Role)

	return &Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		Username:    user.Username,
		Role:        user.Role,
	}, nil
}

func (s *Service) verify(ctx context.Context, username, password string) (*User, error) {
	user, err := s.userRepo.GetActive(ctx, NormalizeName(username))
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.Warn(ctx, "login failed", "username", user.Username)
		return nil, apperror.NewInvalidCredentials()
	}
	return user, nil
}

// ChangePassword replaces the password of a user who knows the current one.
func (s *Service) ChangePassword(ctx context.Context, req ChangePassword) error {
	if err := validate.Struct(&req); err != nil {
		return err
	}
	hash, err := s.hash(req.NewPassword)
	if err != nil {
		return err
	}
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		user, err := s.verify(ctx, req.Username, req.OldPassword)
		if err != nil {
			return err
		}
		if err := s.userRepo.Update(ctx, user.Username, map[string]any{"password_hash": hash}); err != nil {
			return err
		}
		logger.Info(ctx, "password changed", "username", user.Username)
		return nil
	})
}

// CreateUser opens a login account. It joins the transaction in ctx.
func (s *Service) CreateUser(ctx context.Context, username, password, role string) error {
	if len(password) < s.config.PasswordMinLength {
		return apperror.NewValidation(
			fmt.Sprintf("password must be at least %d characters", s.config.PasswordMinLength),
		).WithDetail("field", "password")
	}
	hash, err := s.hash(password)
	if err != nil {
		return err
	}
	now := s.now()
	user := &User{
		Username:     NormalizeName(username),
		PasswordHash: hash,
		Role:         role,
		IsActive:     entity.Yes,
		CreatedAt:    &now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	logger.Info(ctx, "user created", "username", user.Username, "role", role)
	return nil
}

// DeactivateUser disables a login account. It joins the transaction in ctx.
func (s *Service) DeactivateUser(ctx context.Context, username string) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		user, err := s.userRepo.GetActive(ctx, NormalizeName(username))
		if err != nil {
			return err
		}
		if err := s.userRepo.Update(ctx, user.Username, map[string]any{"is_active": entity.No}); err != nil {
			return err
		}
		logger.Info(ctx, "user deactivated", "username", user.Username)
		return nil
	})
}

func (s *Service) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.config.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
