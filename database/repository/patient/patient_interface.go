package patientRepo

import (
	"context"

	"clinicops/models"
	"clinicops/utils"
)

// PatientRepository defines methods for patient data access.
type PatientRepository interface {
	Create(ctx context.Context, patient *models.Patient) error
	GetByID(ctx context.Context, id string) (*models.Patient, error)
	// List returns one page of patients ordered by last name and the total match count.
	List(ctx context.Context, filter models.PatientFilter, page utils.Pagination) ([]models.Patient, int64, error)
	Update(ctx context.Context, patient *models.Patient) error
}
