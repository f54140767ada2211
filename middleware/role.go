package middleware

import (
	"net/http"

	"clinicops/services/access"
	"clinicops/utils"

	"github.com/gin-gonic/gin"
)

// RequireCapability rejects callers whose access decision lacks cap. It must run after
// JWTAuthMiddleware.
func RequireCapability(cap access.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, exists := c.Get(utils.CallerKey)
		decision, ok := v.(access.Decision)
		if !exists || !ok {
			unauthorized(c, "Insufficient authorization")
			return
		}
		if !decision.Can(cap) {
			c.AbortWithStatusJSON(http.StatusForbidden, utils.ErrorResponse{
				Error: "Missing permission " + string(cap),
				Code:  "Forbidden",
			})
			return
		}
		c.Next()
	}
}
