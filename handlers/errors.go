package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"clinicops/services/access"
	"clinicops/services/appointment"
	"clinicops/services/user"
	"clinicops/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError writes err with the status the service layer implies.
func respondError(c *gin.Context, err error) {
	status, code := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		getLogger(c).Error("Request failed", zap.Error(err))
		message = "An unexpected error occurred. Please try again later."
	}
	utils.JSONError(c, status, code, message)
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, user.ErrEmailTaken):
		return http.StatusConflict, "EmailTaken"
	case errors.Is(err, user.ErrInvalidCredentials):
		return http.StatusUnauthorized, "InvalidCredentials"
	case errors.Is(err, user.ErrInvalidRole):
		return http.StatusBadRequest, "ValidationError"
	case errors.Is(err, user.ErrAccountDisabled):
		return http.StatusForbidden, "AccountDisabled"
	case errors.Is(err, user.ErrUserNotFound):
		return http.StatusNotFound, "NotFound"
	}
	return appointment.HTTPStatus(err)
}

func badRequest(c *gin.Context, err error) {
	utils.JSONError(c, http.StatusBadRequest, "ValidationError", "Invalid request: "+err.Error())
}

// caller returns the access decision set by the auth middleware. Anonymous requests get the
// zero decision, which holds no capabilities.
func caller(c *gin.Context) access.Decision {
	if v, ok := c.Get(utils.CallerKey); ok {
		if d, ok := v.(access.Decision); ok {
			return d
		}
	}
	return access.Decision{}
}

// boolQuery parses an optional boolean query parameter.
func boolQuery(c *gin.Context, name string) (*bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, utils.NewValidationError(name, "must be true or false")
	}
	return &v, nil
}
