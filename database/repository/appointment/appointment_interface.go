package appointmentRepo

import (
	"context"
	"time"

	"clinicops/models"
	"clinicops/utils"
)

// AppointmentRepository defines methods for appointment data access.
type AppointmentRepository interface {
	// Create inserts a new appointment. A second active appointment starting at the same
	// dentist, date and time is rejected with database.ErrDuplicate.
	Create(ctx context.Context, appt *models.Appointment) error
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	// ListByDentistAndDate returns every appointment of the dentist on date, any status.
	ListByDentistAndDate(ctx context.Context, dentistID, date string) ([]models.Appointment, error)
	List(ctx context.Context, filter models.AppointmentFilter, page utils.Pagination) ([]models.Appointment, int64, error)
	// Update replaces the stored appointment if its version still equals appt.Version and
	// bumps appt.Version. A changed document yields database.ErrStale.
	Update(ctx context.Context, appt *models.Appointment) error
	AppendReminder(ctx context.Context, id string, reminder models.Reminder) error
	MarkReminderSent(ctx context.Context, id, reminderID string, sentAt time.Time) error
}
