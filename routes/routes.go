package routes

import (
	"time"

	"clinicops/config"
	"clinicops/handlers"
	"clinicops/middleware"
	"clinicops/services/access"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes registers account endpoints.
func RegisterAuthRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/auth")
	{
		// An admin token on register unlocks non-patient roles.
		api.POST("/register", middleware.OptionalAuthMiddleware(hb.UserRepo, hb.AuthCache), hb.Auth.RegisterHandler)
		api.POST("/login", hb.Auth.LoginHandler)

		// Protected routes (Require Authentication)
		protected := api.Group("")
		protected.Use(middleware.JWTAuthMiddleware(hb.UserRepo, hb.AuthCache))
		protected.GET("/me", hb.Auth.MeHandler)
		protected.POST("/logout", hb.Auth.LogoutHandler)
		protected.PUT("/password", hb.Auth.ChangePasswordHandler)
	}
}

// RegisterPatientRoutes registers patient profile endpoints.
func RegisterPatientRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/patients")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.UserRepo, hb.AuthCache))
		api.POST("", hb.Patients.CreatePatientHandler)
		api.GET("", middleware.RequireCapability(access.ViewAllPatients), hb.Patients.ListPatientsHandler)
		api.GET("/:id", hb.Patients.GetPatientHandler)
		api.PATCH("/:id", hb.Patients.UpdatePatientHandler)
		api.DELETE("/:id", middleware.RequireCapability(access.ManagePatients), hb.Patients.DeactivatePatientHandler)
	}
}

// RegisterDentistRoutes registers dentist profile and schedule endpoints.
func RegisterDentistRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/dentists")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.UserRepo, hb.AuthCache))
		api.GET("", hb.Dentists.ListDentistsHandler)
		api.GET("/:id", hb.Dentists.GetDentistHandler)
		api.GET("/:id/slots", hb.Appointments.GetSlotsHandler)

		api.POST("", middleware.RequireCapability(access.ManageDentists), hb.Dentists.CreateDentistHandler)
		api.PATCH("/:id", hb.Dentists.UpdateDentistHandler)
		api.PUT("/:id/hours", hb.Dentists.SetWeeklyHoursHandler)
		api.PUT("/:id/policy", hb.Dentists.UpdatePolicyHandler)
		api.POST("/:id/credentials", hb.Dentists.AddCredentialHandler)

		api.POST("/:id/time-off", hb.Dentists.RequestTimeOffHandler)
		api.PUT("/:id/time-off/:timeOffId/approve", middleware.RequireCapability(access.ApproveTimeOff), hb.Dentists.ApproveTimeOffHandler)
		api.DELETE("/:id/time-off/:timeOffId", hb.Dentists.RemoveTimeOffHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", handlers.HealthHandler)
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(corsConfig(config.AllowedOrigins())))

	RegisterHealthRoute(r)
	RegisterAuthRoutes(r, hb)
	RegisterPatientRoutes(r, hb)
	RegisterDentistRoutes(r, hb)
	RegisterAppointmentRoutes(r, hb)
}
