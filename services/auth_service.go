package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/gaming-portal/models"
	"github.com/Dosada05/gaming-portal/repositories"
	"github.com/Dosada05/gaming-portal/utils"
)

type AuthService interface {
	Login(ctx context.Context, input LoginInput) (*models.Session, error)
	// EnsureAdmin creates the bootstrap admin account when it is missing.
	EnsureAdmin(ctx context.Context, username, password string) error
}

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authService struct {
	userRepo repositories.UserRepository
	logger   *slog.Logger
}

func NewAuthService(userRepo repositories.UserRepository, logger *slog.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		logger:   orDiscard(logger),
	}
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.Session, error) {
	username, err := required("username", input.Username)
	if err != nil {
		return nil, err
	}
	if input.Password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrValidationFailed)
	}

	user, err := s.userRepo.GetByUsername(ctx, nil, username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user by username: %w", err)
	}

	if !utils.CheckPassword(input.Password, user.Password) {
		return nil, ErrInvalidCredentials
	}
	if !utils.IsPasswordHash(user.Password) {
		s.logger.WarnContext(ctx, "user authenticated with a legacy plaintext credential", slog.Int("user_id", user.ID))
	}

	return &models.Session{UserID: user.ID, Username: user.Username, Role: user.Role}, nil
}

func (s *authService) EnsureAdmin(ctx context.Context, username, password string) error {
	username, err := required("admin username", username)
	if err != nil {
		return err
	}
	if password == "" {
		return fmt.Errorf("%w: admin password is required", ErrValidationFailed)
	}

	existing, err := s.userRepo.GetByUsername(ctx, nil, username)
	switch {
	case err == nil:
		if existing.Role != models.RoleAdmin {
			return fmt.Errorf("%w: %q exists and is not an admin", ErrUsernameTaken, username)
		}
		return nil
	case !errors.Is(err, repositories.ErrUserNotFound):
		return fmt.Errorf("failed to look up admin account: %w", err)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	admin := &models.User{Username: username, Password: hash, Role: models.RoleAdmin}
	if err := s.userRepo.Create(ctx, nil, admin); err != nil {
		return handleRepositoryError(err)
	}
	s.logger.InfoContext(ctx, "bootstrap admin account created", slog.Int("user_id", admin.ID), slog.String("username", admin.Username))
	return nil
}
