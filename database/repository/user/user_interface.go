package userRepo

import (
	"context"

	"clinicops/models"
)

// UserRepository defines methods for user data access.
type UserRepository interface {
	// Create inserts a new user record. A taken email yields database.ErrDuplicate.
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByEmail returns database.ErrNotFound when no account uses the email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	// SetTokenHash stores (or clears, when empty) the hash of the user's current token.
	SetTokenHash(ctx context.Context, id, tokenHash string) error
}
