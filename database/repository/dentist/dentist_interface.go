package dentistRepo

import (
	"context"

	"clinicops/models"
	"clinicops/utils"
)

// DentistRepository defines methods for dentist data access. Weekly hours, time off,
// credentials and policy are embedded in the dentist document and saved through Update.
type DentistRepository interface {
	Create(ctx context.Context, dentist *models.Dentist) error
	GetByID(ctx context.Context, id string) (*models.Dentist, error)
	List(ctx context.Context, filter models.DentistFilter, page utils.Pagination) ([]models.Dentist, int64, error)
	Update(ctx context.Context, dentist *models.Dentist) error
}
