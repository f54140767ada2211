package user

import (
	"context"
	"errors"
	"fmt"

	"clinicops/database"
	"clinicops/models"
	"clinicops/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func (s *DefaultUserService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return user, nil
}

// ChangePassword checks the current password, stores the new hash and signs out every session.
func (s *DefaultUserService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return utils.NewValidationError("newPassword", "must be at least 8 characters long")
	}
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		utils.GetLogger().Error("Failed to hash password", zap.Error(err))
		return fmt.Errorf("failed to update password")
	}
	user.PasswordHash = string(hashed)
	user.TokenHash = ""
	if err := s.Repo.Update(ctx, user); err != nil {
		utils.GetLogger().Error("Failed to update password", zap.String("userID", userID), zap.Error(err))
		return fmt.Errorf("failed to update password")
	}
	s.dropCachedToken(ctx, userID)
	return nil
}
