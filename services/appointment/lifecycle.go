package appointment

import (
	"context"
	"errors"
	"fmt"

	"clinicops/database"
	"clinicops/models"
	"clinicops/services/access"
	"clinicops/services/scheduling"
	"clinicops/utils"

	"go.uber.org/zap"
)

// canActOn allows clinic-wide operators and either party of the appointment.
func canActOn(caller access.Decision, a models.Appointment) error {
	if caller.Can(access.ViewAllAppointments) || caller.OwnsDentist(a.DentistID) || caller.OwnsPatient(a.PatientID) {
		return nil
	}
	return access.ErrForbidden
}

const saveAttempts = 3

// transition loads the appointment, checks cap (when set) and ownership, applies fn and
// persists the result. When another write lands between load and save, fn is re-applied to
// the fresh record.
func (s *DefaultAppointmentService) transition(
	ctx context.Context,
	caller access.Decision,
	id string,
	cap access.Capability,
	action string,
	fn func(models.Appointment) (models.Appointment, error),
) (*models.AppointmentView, error) {
	if cap != "" {
		if err := caller.Require(cap); err != nil {
			return nil, err
		}
	}

	var current *models.Appointment
	var next models.Appointment
	for attempt := 1; ; attempt++ {
		var err error
		current, err = s.load(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := canActOn(caller, *current); err != nil {
			return nil, err
		}
		next, err = fn(*current)
		if err != nil {
			return nil, err
		}
		err = s.Appointments.Update(ctx, &next)
		if err == nil {
			break
		}
		if !errors.Is(err, database.ErrStale) || attempt == saveAttempts {
			return nil, fmt.Errorf("failed to save appointment %s: %w", id, mapWriteError(err, next))
		}
	}
	if current.Status.Blocking() != next.Status.Blocking() {
		s.invalidateSlots(ctx, next.DentistID, next.Date)
	}

	utils.GetLogger().Info("Appointment "+action,
		zap.String("appointmentID", id),
		zap.String("from", string(current.Status)),
		zap.String("to", string(next.Status)),
		zap.String("by", caller.UserID))
	view := models.NewAppointmentView(next)
	return &view, nil
}

func (s *DefaultAppointmentService) Confirm(ctx context.Context, caller access.Decision, id string) (*models.AppointmentView, error) {
	return s.transition(ctx, caller, id, access.ConfirmAppointment, "confirmed", s.Machine.Confirm)
}

func (s *DefaultAppointmentService) Complete(ctx context.Context, caller access.Decision, id string, req models.CompleteAppointmentRequest) (*models.AppointmentView, error) {
	return s.transition(ctx, caller, id, access.CompleteAppointment, "completed", func(a models.Appointment) (models.Appointment, error) {
		return s.Machine.Complete(a, scheduling.CompletionDetails{
			Diagnosis:     req.Diagnosis,
			Procedures:    req.Procedures,
			Prescriptions: req.Prescriptions,
			Notes:         req.Notes,
			Cost:          req.Cost,
			FollowUpDate:  req.FollowUpDate,
			AmountPaid:    req.AmountPaid,
		})
	})
}

func (s *DefaultAppointmentService) Cancel(ctx context.Context, caller access.Decision, id string, req models.CancelAppointmentRequest) (*models.AppointmentView, error) {
	if req.RefundAmount < 0 {
		return nil, utils.NewValidationError("refundAmount", "cannot be negative")
	}
	return s.transition(ctx, caller, id, access.CancelAppointment, "cancelled", func(a models.Appointment) (models.Appointment, error) {
		return s.Machine.Cancel(a, scheduling.CancelDetails{
			Reason:       req.Reason,
			By:           caller.ActorRole(),
			ActorID:      caller.UserID,
			RefundAmount: req.RefundAmount,
		})
	})
}

func (s *DefaultAppointmentService) MarkNoShow(ctx context.Context, caller access.Decision, id string) (*models.AppointmentView, error) {
	return s.transition(ctx, caller, id, access.ConfirmAppointment, "marked no-show", s.Machine.MarkNoShow)
}

// moveTo validates and saves an appointment whose interval or dentist may change, holding
// the target day's lock. The old and new days' slot caches are dropped and a fresh reminder
// is scheduled when the interval moved.
func (s *DefaultAppointmentService) moveTo(
	ctx context.Context,
	current models.Appointment,
	targetDentistID, targetDate string,
	apply func(dentist models.Dentist, day []models.Appointment) (models.Appointment, error),
) (models.Appointment, error) {
	dentist, err := s.loadDentist(ctx, targetDentistID)
	if err != nil {
		return models.Appointment{}, err
	}

	var next models.Appointment
	err = s.withDayLock(ctx, targetDentistID, targetDate, func() error {
		day, err := s.Appointments.ListByDentistAndDate(ctx, targetDentistID, targetDate)
		if err != nil {
			return err
		}
		next, err = apply(*dentist, day)
		if err != nil {
			return err
		}
		return mapWriteError(s.Appointments.Update(ctx, &next), next)
	})
	if err != nil {
		return models.Appointment{}, err
	}

	s.invalidateSlots(ctx, current.DentistID, current.Date)
	if next.Interval() != current.Interval() || next.DentistID != current.DentistID {
		s.invalidateSlots(ctx, next.DentistID, next.Date)
		if patient, err := s.Patients.GetByID(ctx, next.PatientID); err == nil {
			s.scheduleReminder(ctx, &next, patient)
		}
	}
	return next, nil
}

// Reschedule moves the appointment to a new interval with the same dentist.
func (s *DefaultAppointmentService) Reschedule(ctx context.Context, caller access.Decision, id string, req models.RescheduleAppointmentRequest) (*models.AppointmentView, error) {
	if err := caller.Require(access.BookAppointment); err != nil {
		return nil, err
	}
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := canActOn(caller, *current); err != nil {
		return nil, err
	}

	next, err := s.moveTo(ctx, *current, current.DentistID, req.Interval.Date,
		func(dentist models.Dentist, day []models.Appointment) (models.Appointment, error) {
			return s.Machine.Reschedule(dentist, day, *current, scheduling.RescheduleDetails{
				Interval: req.Interval,
				Reason:   req.Reason,
				By:       caller.ActorRole(),
				ActorID:  caller.UserID,
			})
		})
	if err != nil {
		return nil, err
	}

	utils.GetLogger().Info("Appointment rescheduled",
		zap.String("appointmentID", id),
		zap.String("fromDate", current.Date), zap.String("fromStart", current.StartTime),
		zap.String("toDate", next.Date), zap.String("toStart", next.StartTime))
	view := models.NewAppointmentView(next)
	return &view, nil
}

// Update applies a general edit. Edits that touch dentist, date or time are validated like a
// reschedule; reassigning to another dentist needs appointments:book-any.
func (s *DefaultAppointmentService) Update(ctx context.Context, caller access.Decision, id string, upd models.AppointmentUpdate) (*models.AppointmentView, error) {
	if !upd.TouchesSchedule() {
		return s.transition(ctx, caller, id, "", "updated", func(a models.Appointment) (models.Appointment, error) {
			return s.Machine.Update(models.Dentist{ID: a.DentistID}, nil, a, upd)
		})
	}

	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := canActOn(caller, *current); err != nil {
		return nil, err
	}

	if err := caller.Require(access.BookAppointment); err != nil {
		return nil, err
	}
	targetDentist := current.DentistID
	if upd.DentistID != nil && *upd.DentistID != current.DentistID {
		if err := caller.Require(access.BookForAnyPatient); err != nil {
			return nil, err
		}
		targetDentist = *upd.DentistID
	}
	targetDate := current.Date
	if upd.Date != nil {
		targetDate = *upd.Date
	}

	next, err := s.moveTo(ctx, *current, targetDentist, targetDate,
		func(dentist models.Dentist, day []models.Appointment) (models.Appointment, error) {
			return s.Machine.Update(dentist, day, *current, upd)
		})
	if err != nil {
		return nil, err
	}
	view := models.NewAppointmentView(next)
	return &view, nil
}
