package handlers

import (
	"net/http"

	"clinicops/models"
	"clinicops/services/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	Users user.UserService
}

func NewAuthHandler(users user.UserService) *AuthHandler {
	return &AuthHandler{Users: users}
}

// RegisterHandler handles POST /api/auth/register. Anonymous callers may only open patient
// accounts; an authenticated admin may create any role.
func (h *AuthHandler) RegisterHandler(c *gin.Context) {
	var req models.UserRegistration
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	resp, err := h.Users.Register(c.Request.Context(), req, caller(c))
	if err != nil {
		getLogger(c).Info("Registration rejected", zap.String("email", req.Email), zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// LoginHandler handles POST /api/auth/login.
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req models.UserLogin
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	resp, err := h.Users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// LogoutHandler revokes the caller's current token.
func (h *AuthHandler) LogoutHandler(c *gin.Context) {
	if err := h.Users.Logout(c.Request.Context(), caller(c).UserID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// MeHandler returns the caller's account.
func (h *AuthHandler) MeHandler(c *gin.Context) {
	usr, err := h.Users.GetByID(c.Request.Context(), caller(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, usr)
}

// ChangePasswordHandler expects "currentPassword" and "newPassword". Every session of the
// account is signed out on success.
func (h *AuthHandler) ChangePasswordHandler(c *gin.Context) {
	var req struct {
		CurrentPassword string `json:"currentPassword" binding:"required"`
		NewPassword     string `json:"newPassword" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Users.ChangePassword(c.Request.Context(), caller(c).UserID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated, please sign in again"})
}
