package handlers

import (
	"clinicops/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// getLogger returns the request-scoped logger if one was attached, otherwise the global logger
// tagged with the request path.
func getLogger(c *gin.Context) *zap.Logger {
	if l, exists := c.Get("logger"); exists {
		if logger, ok := l.(*zap.Logger); ok {
			return logger
		}
	}
	return utils.GetLogger().With(zap.String("path", c.FullPath()), zap.String("method", c.Request.Method))
}
