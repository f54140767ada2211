package appointment

import (
	"context"
	"time"

	appointmentRepo "clinicops/database/repository/appointment"
	dentistRepo "clinicops/database/repository/dentist"
	patientRepo "clinicops/database/repository/patient"
	sequenceRepo "clinicops/database/repository/sequence"
	"clinicops/models"
	"clinicops/services/access"
	"clinicops/services/scheduling"
	"clinicops/services/tasks"
	"clinicops/utils"

	"github.com/go-redis/redis/v8"
)

type AppointmentService interface {
	// GetAvailableSlots lists slot starts for the dentist on date. With onlyFree, starts whose
	// window overlaps a booked appointment are dropped.
	GetAvailableSlots(ctx context.Context, dentistID, date string, onlyFree bool) ([]string, error)

	Book(ctx context.Context, caller access.Decision, req models.BookAppointmentRequest) (*models.AppointmentView, error)
	Get(ctx context.Context, caller access.Decision, id string) (*models.AppointmentView, error)
	List(ctx context.Context, caller access.Decision, filter models.AppointmentFilter, page utils.Pagination) (models.Page[models.AppointmentView], error)

	Confirm(ctx context.Context, caller access.Decision, id string) (*models.AppointmentView, error)
	Complete(ctx context.Context, caller access.Decision, id string, req models.CompleteAppointmentRequest) (*models.AppointmentView, error)
	Cancel(ctx context.Context, caller access.Decision, id string, req models.CancelAppointmentRequest) (*models.AppointmentView, error)
	Reschedule(ctx context.Context, caller access.Decision, id string, req models.RescheduleAppointmentRequest) (*models.AppointmentView, error)
	Update(ctx context.Context, caller access.Decision, id string, upd models.AppointmentUpdate) (*models.AppointmentView, error)
	MarkNoShow(ctx context.Context, caller access.Decision, id string) (*models.AppointmentView, error)
}

// Settings are the tunables read from configuration.
type Settings struct {
	SlotCacheTTL time.Duration
	LockTTL      time.Duration
	ReminderLead time.Duration
	// Location is the clinic's zone, used to place stored dates on the timeline. Defaults to
	// the server's local zone.
	Location *time.Location
}

// DefaultAppointmentService is the production implementation.
type DefaultAppointmentService struct {
	Appointments appointmentRepo.AppointmentRepository
	Dentists     dentistRepo.DentistRepository
	Patients     patientRepo.PatientRepository
	Sequences    sequenceRepo.Sequencer
	// Cache backs the slot cache and booking locks. When nil both are skipped.
	Cache     *redis.Client
	Reminders tasks.ReminderScheduler
	Machine   *scheduling.Machine
	Settings  Settings
}

func (s *DefaultAppointmentService) now() time.Time {
	if s.Machine == nil || s.Machine.Now == nil {
		return time.Now()
	}
	return s.Machine.Now()
}

func (s *DefaultAppointmentService) location() *time.Location {
	if s.Settings.Location == nil {
		return time.Local
	}
	return s.Settings.Location
}
