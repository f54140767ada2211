package handlers

import (
	"net/http"

	"clinicops/models"
	"clinicops/services/dentist"
	"clinicops/utils"

	"github.com/gin-gonic/gin"
)

type DentistHandler struct {
	Service dentist.DentistService
}

func NewDentistHandler(svc dentist.DentistService) *DentistHandler {
	return &DentistHandler{Service: svc}
}

func (h *DentistHandler) CreateDentistHandler(c *gin.Context) {
	var req models.Dentist
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	d, err := h.Service.Create(c.Request.Context(), caller(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (h *DentistHandler) GetDentistHandler(c *gin.Context) {
	d, err := h.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// ListDentistsHandler handles GET /api/dentists?specialization=&active=&page=&limit=.
func (h *DentistHandler) ListDentistsHandler(c *gin.Context) {
	active, err := boolQuery(c, "active")
	if err != nil {
		respondError(c, err)
		return
	}
	filter := models.DentistFilter{Specialization: c.Query("specialization"), Active: active}
	page, err := h.Service.List(c.Request.Context(), filter, utils.PaginationFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *DentistHandler) UpdateDentistHandler(c *gin.Context) {
	var upd models.DentistUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		badRequest(c, err)
		return
	}
	d, err := h.Service.Update(c.Request.Context(), caller(c), c.Param("id"), upd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// SetWeeklyHoursHandler replaces the dentist's weekly opening rules.
func (h *DentistHandler) SetWeeklyHoursHandler(c *gin.Context) {
	var req struct {
		WeeklyHours []models.WeeklyHoursRule `json:"weeklyHours" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	d, err := h.Service.SetWeeklyHours(c.Request.Context(), caller(c), c.Param("id"), req.WeeklyHours)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *DentistHandler) UpdatePolicyHandler(c *gin.Context) {
	var policy models.SchedulingPolicy
	if err := c.ShouldBindJSON(&policy); err != nil {
		badRequest(c, err)
		return
	}
	d, err := h.Service.UpdatePolicy(c.Request.Context(), caller(c), c.Param("id"), policy)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *DentistHandler) AddCredentialHandler(c *gin.Context) {
	var cred models.Credential
	if err := c.ShouldBindJSON(&cred); err != nil {
		badRequest(c, err)
		return
	}
	d, err := h.Service.AddCredential(c.Request.Context(), caller(c), c.Param("id"), cred)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (h *DentistHandler) RequestTimeOffHandler(c *gin.Context) {
	var req models.TimeOffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	off, err := h.Service.RequestTimeOff(c.Request.Context(), caller(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, off)
}

func (h *DentistHandler) ApproveTimeOffHandler(c *gin.Context) {
	off, err := h.Service.ApproveTimeOff(c.Request.Context(), caller(c), c.Param("id"), c.Param("timeOffId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, off)
}

func (h *DentistHandler) RemoveTimeOffHandler(c *gin.Context) {
	if err := h.Service.RemoveTimeOff(c.Request.Context(), caller(c), c.Param("id"), c.Param("timeOffId")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
