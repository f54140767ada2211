package handlers

import (
	"net/http"

	"clinicops/models"
	"clinicops/services/appointment"
	"clinicops/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AppointmentHandler struct {
	Service appointment.AppointmentService
}

func NewAppointmentHandler(svc appointment.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{Service: svc}
}

// GetSlotsHandler handles GET /api/dentists/:id/slots?date=YYYY-MM-DD&onlyFree=true.
func (h *AppointmentHandler) GetSlotsHandler(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		respondError(c, utils.NewValidationError("date", "is required"))
		return
	}
	onlyFree, err := boolQuery(c, "onlyFree")
	if err != nil {
		respondError(c, err)
		return
	}
	slots, err := h.Service.GetAvailableSlots(c.Request.Context(), c.Param("id"), date, onlyFree != nil && *onlyFree)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dentistId": c.Param("id"), "date": date, "slots": slots})
}

// BookAppointmentHandler handles POST /api/appointments.
func (h *AppointmentHandler) BookAppointmentHandler(c *gin.Context) {
	var req models.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	view, err := h.Service.Book(c.Request.Context(), caller(c), req)
	if err != nil {
		getLogger(c).Info("Booking rejected",
			zap.String("dentistID", req.DentistID),
			zap.String("date", req.Interval.Date),
			zap.String("startTime", req.Interval.StartTime),
			zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *AppointmentHandler) GetAppointmentHandler(c *gin.Context) {
	view, err := h.Service.Get(c.Request.Context(), caller(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ListAppointmentsHandler handles GET /api/appointments?dentistId=&patientId=&date=&status=.
func (h *AppointmentHandler) ListAppointmentsHandler(c *gin.Context) {
	filter := models.AppointmentFilter{
		DentistID: c.Query("dentistId"),
		PatientID: c.Query("patientId"),
		Date:      c.Query("date"),
		Status:    models.AppointmentStatus(c.Query("status")),
	}
	page, err := h.Service.List(c.Request.Context(), caller(c), filter, utils.PaginationFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *AppointmentHandler) ConfirmAppointmentHandler(c *gin.Context) {
	h.reply(c, http.StatusOK)(h.Service.Confirm(c.Request.Context(), caller(c), c.Param("id")))
}

func (h *AppointmentHandler) CompleteAppointmentHandler(c *gin.Context) {
	var req models.CompleteAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.reply(c, http.StatusOK)(h.Service.Complete(c.Request.Context(), caller(c), c.Param("id"), req))
}

func (h *AppointmentHandler) CancelAppointmentHandler(c *gin.Context) {
	var req models.CancelAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.reply(c, http.StatusOK)(h.Service.Cancel(c.Request.Context(), caller(c), c.Param("id"), req))
}

func (h *AppointmentHandler) RescheduleAppointmentHandler(c *gin.Context) {
	var req models.RescheduleAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.reply(c, http.StatusOK)(h.Service.Reschedule(c.Request.Context(), caller(c), c.Param("id"), req))
}

func (h *AppointmentHandler) UpdateAppointmentHandler(c *gin.Context) {
	var upd models.AppointmentUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		badRequest(c, err)
		return
	}
	h.reply(c, http.StatusOK)(h.Service.Update(c.Request.Context(), caller(c), c.Param("id"), upd))
}

func (h *AppointmentHandler) NoShowAppointmentHandler(c *gin.Context) {
	h.reply(c, http.StatusOK)(h.Service.MarkNoShow(c.Request.Context(), caller(c), c.Param("id")))
}

func (h *AppointmentHandler) reply(c *gin.Context, status int) func(*models.AppointmentView, error) {
	return func(view *models.AppointmentView, err error) {
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(status, view)
	}
}
