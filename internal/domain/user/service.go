// internal/domain/user/service.go
package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-core/internal/domain/repository"
	"github.com/your-org/ecommerce-core/internal/pkg/apperror"
	"github.com/your-org/ecommerce-core/internal/pkg/auth"
)

// Service handles accounts and profiles
type Service struct {
	repo      Repository
	jwt       *auth.JWTManager
	passwords *auth.PasswordManager
	logger    *logrus.Entry
	now       func() time.Time
}

// NewService creates a new user service
func NewService(repo Repository, jwt *auth.JWTManager, passwords *auth.PasswordManager, logger *logrus.Logger) *Service {
	return &Service{
		repo:      repo,
		jwt:       jwt,
		passwords: passwords,
		logger:    logger.WithField("component", "user"),
		now:       time.Now,
	}
}

// RegisterRequest represents user registration data
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Phone    string `json:"phone" binding:"max=20"`
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest represents the editable profile fields
type UpdateProfileRequest struct {
	Name   *string `json:"name" binding:"omitempty,max=100"`
	Phone  *string `json:"phone" binding:"omitempty,max=20"`
	Avatar *string `json:"avatar" binding:"omitempty,max=500"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User        *User  `json:"user"`
	AccessToken string `json:"access_token"`
}

// Register creates a new customer account
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	email := normalizeEmail(req.Email)
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, apperror.Conflict("user with this email already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.Internal("failed to check email", err)
	}

	hash, err := s.passwords.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrWeakPassword) {
			return nil, apperror.Validation(err.Error())
		}
		return nil, apperror.Internal("failed to create user", err)
	}

	now := s.now().UTC()
	user := &User{
		ID:           repository.NewID(),
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hash,
		Phone:        req.Phone,
		Role:         auth.RoleUser,
		Wishlist:     []string{},
		Cart:         []CartLine{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.Conflict("user with this email already exists")
		}
		return nil, apperror.Internal("failed to create user", err)
	}

	s.logger.WithField("user_id", user.ID).Info("User registered")
	return s.issue(user)
}

// Login authenticates a user by email and password
func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.Unauthorized("invalid email or password")
		}
		return nil, apperror.Internal("failed to load user", err)
	}
	if err := s.passwords.VerifyPassword(req.Password, user.PasswordHash); err != nil {
		return nil, apperror.Unauthorized("invalid email or password")
	}
	return s.issue(user)
}

// GetProfile retrieves a user by id
func (s *Service) GetProfile(ctx context.Context, userID string) (*User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, apperror.Internal("failed to load user", err)
	}
	return user, nil
}

// UpdateProfile changes the user's name, phone or avatar
func (s *Service) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*User, error) {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, apperror.Validation("name cannot be empty")
	}

	user, err := repository.Mutate[*User](ctx, s.repo, userID, func(u *User) error {
		if req.Name != nil {
			u.Name = strings.TrimSpace(*req.Name)
		}
		if req.Phone != nil {
			u.Phone = *req.Phone
		}
		if req.Avatar != nil {
			u.Avatar = *req.Avatar
		}
		u.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return nil, MutateError(err, "failed to update profile")
	}
	return user, nil
}

// SetRole changes the role of the user with the given email
func (s *Service) SetRole(ctx context.Context, email, role string) (*User, error) {
	if role != auth.RoleUser && role != auth.RoleAdmin {
		return nil, apperror.Validation("role must be user or admin")
	}
	found, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, apperror.Internal("failed to load user", err)
	}

	user, err := repository.Mutate[*User](ctx, s.repo, found.ID, func(u *User) error {
		if u.Role == role {
			return repository.ErrNoChange
		}
		u.Role = role
		u.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return nil, MutateError(err, "failed to update role")
	}
	return user, nil
}

func (s *Service) issue(user *User) (*AuthResponse, error) {
	token, err := s.jwt.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, apperror.Internal("failed to issue token", err)
	}
	return &AuthResponse{User: user, AccessToken: token}, nil
}

// MutateError translates errors from a read-modify-write of a user.
func MutateError(err error, internal string) error {
	var appErr *apperror.Error
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, repository.ErrNotFound):
		return apperror.NotFound("user not found")
	case errors.Is(err, repository.ErrVersionConflict):
		return apperror.Concurrency("user was modified concurrently, please retry", err)
	default:
		return apperror.Internal(internal, err)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
