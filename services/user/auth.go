package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clinicops/database"
	"clinicops/models"
	"clinicops/services/access"
	"clinicops/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func (s *DefaultUserService) tokenTTL() time.Duration {
	if s.TokenTTL <= 0 {
		return 24 * time.Hour
	}
	return s.TokenTTL
}

// Register hashes the password, stores the account and signs it in.
func (s *DefaultUserService) Register(ctx context.Context, reg models.UserRegistration, caller access.Decision) (*AuthResponse, error) {
	if !reg.Role.Valid() {
		return nil, ErrInvalidRole
	}
	if reg.Role != models.RolePatient {
		if err := caller.Require(access.ManageUsers); err != nil {
			return nil, err
		}
	}

	if _, err := s.Repo.GetByEmail(ctx, reg.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, database.ErrNotFound) {
		utils.GetLogger().Error("Failed to check for existing user", zap.Error(err))
		return nil, fmt.Errorf("registration failed, please try again")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.GetLogger().Error("Failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("registration failed, please try again")
	}

	user := models.User{
		ID:           uuid.New().String(),
		Email:        reg.Email,
		PasswordHash: string(hashedPassword),
		Role:         reg.Role,
		ProfileID:    reg.ProfileID,
		Active:       true,
	}
	if err := s.Repo.Create(ctx, &user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		utils.GetLogger().Error("Failed to create user", zap.Error(err))
		return nil, fmt.Errorf("registration failed, please try again")
	}

	utils.GetLogger().Info("User registered", zap.String("userID", user.ID), zap.String("role", string(user.Role)))
	return s.issueToken(ctx, &user)
}

// Login verifies credentials and replaces the user's current token.
func (s *DefaultUserService) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	user, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		utils.GetLogger().Error("Failed to fetch user for authentication", zap.Error(err))
		return nil, fmt.Errorf("authentication failed, please try again")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.Active {
		return nil, ErrAccountDisabled
	}
	return s.issueToken(ctx, user)
}

func (s *DefaultUserService) issueToken(ctx context.Context, user *models.User) (*AuthResponse, error) {
	ttl := s.tokenTTL()
	token, err := utils.GenerateToken(user.ID, string(user.Role), user.ProfileID, ttl)
	if err != nil {
		utils.GetLogger().Error("Failed to generate auth token", zap.Error(err))
		return nil, fmt.Errorf("authentication failed, please try again")
	}

	tokenHash := utils.HashToken(token)
	if err := s.Repo.SetTokenHash(ctx, user.ID, tokenHash); err != nil {
		utils.GetLogger().Error("Failed to store token hash", zap.String("userID", user.ID), zap.Error(err))
		return nil, fmt.Errorf("authentication failed, please try again")
	}

	if s.AuthCache != nil {
		entry := utils.AuthEntry{TokenHash: tokenHash, Role: string(user.Role), ProfileID: user.ProfileID}
		if err := utils.SetAuthEntry(ctx, s.AuthCache, user.ID, entry); err != nil {
			utils.GetLogger().Warn("Failed to prime auth cache", zap.Error(err))
		}
	}

	return &AuthResponse{
		ID:        user.ID,
		Token:     token,
		Email:     user.Email,
		Role:      user.Role,
		ProfileID: user.ProfileID,
		ExpiresAt: time.Now().Add(ttl),
	}, nil
}

// Logout clears the token hash from the database and removes the cached copy.
func (s *DefaultUserService) Logout(ctx context.Context, userID string) error {
	if err := s.Repo.SetTokenHash(ctx, userID, ""); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrUserNotFound
		}
		utils.GetLogger().Error("Failed to revoke user auth token", zap.String("userID", userID), zap.Error(err))
		return fmt.Errorf("failed to logout, please try again")
	}
	s.dropCachedToken(ctx, userID)
	return nil
}

func (s *DefaultUserService) dropCachedToken(ctx context.Context, userID string) {
	if s.AuthCache == nil {
		return
	}
	if err := utils.EvictAuthEntry(ctx, s.AuthCache, userID); err != nil {
		utils.GetLogger().Error("Failed to clear auth cache", zap.Error(err))
	}
}
