package handlers

import (
	"net/http"

	"clinicops/models"
	"clinicops/services/patient"
	"clinicops/utils"

	"github.com/gin-gonic/gin"
)

type PatientHandler struct {
	Service patient.PatientService
}

func NewPatientHandler(svc patient.PatientService) *PatientHandler {
	return &PatientHandler{Service: svc}
}

func (h *PatientHandler) CreatePatientHandler(c *gin.Context) {
	var req models.Patient
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	view, err := h.Service.Create(c.Request.Context(), caller(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *PatientHandler) GetPatientHandler(c *gin.Context) {
	view, err := h.Service.Get(c.Request.Context(), caller(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ListPatientsHandler handles GET /api/patients?name=&active=&page=&limit=.
func (h *PatientHandler) ListPatientsHandler(c *gin.Context) {
	active, err := boolQuery(c, "active")
	if err != nil {
		respondError(c, err)
		return
	}
	filter := models.PatientFilter{Name: c.Query("name"), Active: active}
	page, err := h.Service.List(c.Request.Context(), caller(c), filter, utils.PaginationFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *PatientHandler) UpdatePatientHandler(c *gin.Context) {
	var upd models.PatientUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		badRequest(c, err)
		return
	}
	view, err := h.Service.Update(c.Request.Context(), caller(c), c.Param("id"), upd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *PatientHandler) DeactivatePatientHandler(c *gin.Context) {
	if err := h.Service.Deactivate(c.Request.Context(), caller(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Patient deactivated"})
}
