package dentist

import (
	"context"
	"time"

	dentistRepo "clinicops/database/repository/dentist"
	sequenceRepo "clinicops/database/repository/sequence"
	"clinicops/models"
	"clinicops/services/access"
	"clinicops/utils"
)

type DentistService interface {
	Create(ctx context.Context, caller access.Decision, d models.Dentist) (*models.Dentist, error)
	Get(ctx context.Context, id string) (*models.Dentist, error)
	List(ctx context.Context, filter models.DentistFilter, page utils.Pagination) (models.Page[models.Dentist], error)
	Update(ctx context.Context, caller access.Decision, id string, upd models.DentistUpdate) (*models.Dentist, error)

	SetWeeklyHours(ctx context.Context, caller access.Decision, id string, rules []models.WeeklyHoursRule) (*models.Dentist, error)
	UpdatePolicy(ctx context.Context, caller access.Decision, id string, policy models.SchedulingPolicy) (*models.Dentist, error)
	AddCredential(ctx context.Context, caller access.Decision, id string, cred models.Credential) (*models.Dentist, error)

	RequestTimeOff(ctx context.Context, caller access.Decision, id string, req models.TimeOffRequest) (*models.AbsenceInterval, error)
	ApproveTimeOff(ctx context.Context, caller access.Decision, id, timeOffID string) (*models.AbsenceInterval, error)
	RemoveTimeOff(ctx context.Context, caller access.Decision, id, timeOffID string) error
}

// ScheduleObserver is told when a dentist's availability changes so cached slots can be dropped.
type ScheduleObserver interface {
	ScheduleChanged(ctx context.Context, dentistID string)
}

// DefaultDentistService is the production implementation.
type DefaultDentistService struct {
	Repo      dentistRepo.DentistRepository
	Sequences sequenceRepo.Sequencer
	Observer  ScheduleObserver
	Now       func() time.Time
}

func (s *DefaultDentistService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}
