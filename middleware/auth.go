package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	userRepo "clinicops/database/repository/user"
	"clinicops/models"
	"clinicops/services/access"
	"clinicops/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{Error: message, Code: "Unauthorized"})
}

// JWTAuthMiddleware authenticates the bearer token and stores the caller's access decision
// under utils.CallerKey. The token must be the one most recently issued to the account: its
// hash is checked against the auth cache and, on a miss, against the stored user record.
// Role and profile always come from the user record (directly or via the cache).
func JWTAuthMiddleware(users userRepo.UserRepository, authCache *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			unauthorized(c, "Insufficient authorization")
			return
		}
		decision, ok := authenticate(c.Request.Context(), users, authCache, tokenString)
		if !ok {
			unauthorized(c, "Invalid or revoked token")
			return
		}
		c.Set(utils.CallerKey, decision)
		c.Set("userID", decision.UserID)
		c.Next()
	}
}

// OptionalAuthMiddleware behaves like JWTAuthMiddleware when a token is present and lets
// anonymous requests through otherwise.
func OptionalAuthMiddleware(users userRepo.UserRepository, authCache *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if bearerToken(c) == "" {
			c.Next()
			return
		}
		JWTAuthMiddleware(users, authCache)(c)
	}
}

func authenticate(ctx context.Context, users userRepo.UserRepository, authCache *redis.Client, tokenString string) (access.Decision, bool) {
	logger := utils.GetLogger()

	claims, err := utils.ValidateToken(tokenString)
	if err != nil {
		return access.Decision{}, false
	}
	userID := claims.Subject
	computedHash := utils.HashToken(tokenString)
	cacheKey := utils.AuthCachePrefix + userID

	if authCache != nil {
		entry, err := utils.GetAuthEntry(ctx, authCache, userID)
		switch {
		case err == nil && entry.TokenHash == computedHash:
			_ = authCache.Expire(ctx, cacheKey, utils.AuthCacheTTL).Err()
			// Identity comes from the cached user record, not the token: a profile linked
			// after login is not in the claims.
			return access.ForUser(userID, models.Role(entry.Role), entry.ProfileID), true
		case err == nil:
			return access.Decision{}, false
		case err != redis.Nil:
			logger.Warn("Auth cache unavailable, falling back to database", zap.Error(err))
		}
	}

	lookupCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	usr, err := users.GetByID(lookupCtx, userID)
	if err != nil || usr == nil {
		return access.Decision{}, false
	}
	if !usr.Active || usr.TokenHash == "" || usr.TokenHash != computedHash {
		return access.Decision{}, false
	}

	if authCache != nil {
		entry := utils.AuthEntry{TokenHash: computedHash, Role: string(usr.Role), ProfileID: usr.ProfileID}
		if err := utils.SetAuthEntry(ctx, authCache, usr.ID, entry); err != nil {
			logger.Warn("Failed to prime auth cache", zap.String("userID", usr.ID), zap.Error(err))
		}
	}
	return access.ForUser(usr.ID, usr.Role, usr.ProfileID), true
}
