package routes

import (
	"clinicops/handlers"
	"clinicops/middleware"
	"clinicops/services/access"

	"github.com/gin-gonic/gin"
)

// RegisterAppointmentRoutes registers the booking lifecycle endpoints.
func RegisterAppointmentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	booking := r.Group("/api/appointments")
	{
		booking.Use(middleware.JWTAuthMiddleware(hb.UserRepo, hb.AuthCache))
		booking.POST("", middleware.RequireCapability(access.BookAppointment), hb.Appointments.BookAppointmentHandler)
		booking.GET("", hb.Appointments.ListAppointmentsHandler)
		booking.GET("/:id", hb.Appointments.GetAppointmentHandler)
		booking.PATCH("/:id", hb.Appointments.UpdateAppointmentHandler)

		booking.POST("/:id/confirm", hb.Appointments.ConfirmAppointmentHandler)
		booking.POST("/:id/complete", hb.Appointments.CompleteAppointmentHandler)
		booking.POST("/:id/cancel", hb.Appointments.CancelAppointmentHandler)
		booking.POST("/:id/reschedule", hb.Appointments.RescheduleAppointmentHandler)
		booking.POST("/:id/no-show", hb.Appointments.NoShowAppointmentHandler)
	}
}
