package handlers

import (
	"net/http"

	"clinicops/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports the latest dependency snapshot; 503 while any dependency is down.
func HealthHandler(c *gin.Context) {
	status := utils.GetHealthStatus()
	code := http.StatusOK
	state := "ok"
	if !status.Healthy() {
		code = http.StatusServiceUnavailable
		state = "degraded"
	}
	c.JSON(code, gin.H{"status": state, "dependencies": status})
}
