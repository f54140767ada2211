package user

import (
	"context"
	"errors"
	"time"

	userRepo "clinicops/database/repository/user"
	"clinicops/models"
	"clinicops/services/access"

	"github.com/go-redis/redis/v8"
)

var (
	ErrEmailTaken         = errors.New("a user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidRole        = errors.New("invalid role")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrUserNotFound       = errors.New("user not found")
)

type UserService interface {
	// Register creates an account. Anyone may open a patient account; other roles need
	// the users:manage capability.
	Register(ctx context.Context, reg models.UserRegistration, caller access.Decision) (*AuthResponse, error)
	Login(ctx context.Context, email, password string) (*AuthResponse, error)
	Logout(ctx context.Context, userID string) error
	GetByID(ctx context.Context, userID string) (*models.User, error)
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
}

// DefaultUserService is the production implementation.
type DefaultUserService struct {
	Repo      userRepo.UserRepository
	AuthCache *redis.Client
	TokenTTL  time.Duration
}

// AuthResponse contains the user's ID, token, and role details.
type AuthResponse struct {
	ID        string      `json:"id"`
	Token     string      `json:"token"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	ProfileID string      `json:"profileId,omitempty"`
	ExpiresAt time.Time   `json:"expiresAt"`
}
