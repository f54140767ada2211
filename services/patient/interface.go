package patient

import (
	"context"
	"time"

	patientRepo "clinicops/database/repository/patient"
	sequenceRepo "clinicops/database/repository/sequence"
	userRepo "clinicops/database/repository/user"
	"clinicops/models"
	"clinicops/services/access"
	"clinicops/utils"

	"github.com/go-redis/redis/v8"
)

type PatientService interface {
	Create(ctx context.Context, caller access.Decision, p models.Patient) (*models.PatientView, error)
	Get(ctx context.Context, caller access.Decision, id string) (*models.PatientView, error)
	List(ctx context.Context, caller access.Decision, filter models.PatientFilter, page utils.Pagination) (models.Page[models.PatientView], error)
	Update(ctx context.Context, caller access.Decision, id string, upd models.PatientUpdate) (*models.PatientView, error)
	Deactivate(ctx context.Context, caller access.Decision, id string) error
}

// DefaultPatientService is the production implementation.
type DefaultPatientService struct {
	Repo      patientRepo.PatientRepository
	Sequences sequenceRepo.Sequencer
	// Users links a self-registered patient account to its new profile. Optional.
	Users userRepo.UserRepository
	// AuthCache is evicted for an account once its profile is linked. Optional.
	AuthCache *redis.Client
	Now       func() time.Time
}

func (s *DefaultPatientService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}
