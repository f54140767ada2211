package appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"clinicops/database"
	"clinicops/models"
	"clinicops/services/access"
	"clinicops/services/scheduling"
	"clinicops/utils"

	"go.uber.org/zap"
)

const lockAttempts = 3

// withDayLock runs fn while holding the booking lock for dentist and date. The lock is best
// effort: if Redis is unreachable fn still runs and the unique index catches double bookings.
func (s *DefaultAppointmentService) withDayLock(ctx context.Context, dentistID, date string, fn func() error) error {
	if s.Cache == nil {
		return fn()
	}
	key := utils.BookingLockPrefix + dentistID + ":" + date

	var lock *utils.Lock
	var err error
	for attempt := 1; attempt <= lockAttempts; attempt++ {
		lock, err = utils.AcquireLock(ctx, s.Cache, key, s.lockTTL())
		if !errors.Is(err, utils.ErrLockHeld) {
			break
		}
		if attempt == lockAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * 50 * time.Millisecond):
		}
	}
	switch {
	case errors.Is(err, utils.ErrLockHeld):
		return scheduling.NewError(scheduling.SchedulingConflict, "another booking for %s on %s is in progress", dentistID, date)
	case err != nil && ctx.Err() != nil:
		return ctx.Err()
	case err != nil:
		utils.GetLogger().Warn("Booking lock unavailable, continuing without it", zap.String("key", key), zap.Error(err))
		return fn()
	}

	defer func() {
		if err := lock.Release(context.Background()); err != nil {
			utils.GetLogger().Warn("Failed to release booking lock", zap.String("key", key), zap.Error(err))
		}
	}()
	return fn()
}

func (s *DefaultAppointmentService) lockTTL() time.Duration {
	if s.Settings.LockTTL <= 0 {
		return 10 * time.Second
	}
	return s.Settings.LockTTL
}

// mapWriteError turns a unique-index rejection or a lost version race into a scheduling
// conflict.
func mapWriteError(err error, appt models.Appointment) error {
	switch {
	case errors.Is(err, database.ErrDuplicate):
		return scheduling.NewError(scheduling.SchedulingConflict,
			"%s %s is already booked for dentist %s", appt.Date, appt.StartTime, appt.DentistID)
	case errors.Is(err, database.ErrStale):
		return scheduling.NewError(scheduling.SchedulingConflict,
			"appointment %s was changed by another request; reload and retry", appt.ID)
	}
	return err
}

func (s *DefaultAppointmentService) nextID(ctx context.Context, date string) (string, error) {
	compact := strings.ReplaceAll(date, "-", "")
	seq, err := s.Sequences.Next(ctx, "appointments:"+compact)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("APT%s%04d", compact, seq), nil
}

func (s *DefaultAppointmentService) loadDentist(ctx context.Context, id string) (*models.Dentist, error) {
	d, err := s.Dentists.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("dentist %s: %w", id, err)
	}
	return d, nil
}

func (s *DefaultAppointmentService) load(ctx context.Context, id string) (*models.Appointment, error) {
	a, err := s.Appointments.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("appointment %s: %w", id, err)
	}
	return a, nil
}

// Book validates and stores a new appointment, then schedules its reminder.
func (s *DefaultAppointmentService) Book(ctx context.Context, caller access.Decision, req models.BookAppointmentRequest) (*models.AppointmentView, error) {
	if err := caller.Require(access.BookAppointment); err != nil {
		return nil, err
	}
	patientID := req.PatientID
	if patientID == "" && caller.Role == models.RolePatient {
		patientID = caller.ProfileID
	}
	if patientID == "" {
		return nil, utils.NewValidationError("patientId", "is required")
	}
	if !caller.OwnsPatient(patientID) {
		if err := caller.Require(access.BookForAnyPatient); err != nil {
			return nil, err
		}
	}

	patient, err := s.Patients.GetByID(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("patient %s: %w", patientID, err)
	}
	if !patient.Active {
		return nil, utils.NewValidationError("patientId", "patient is inactive")
	}
	dentist, err := s.loadDentist(ctx, req.DentistID)
	if err != nil {
		return nil, err
	}
	if err := scheduling.ValidateInterval(req.Interval); err != nil {
		return nil, err
	}

	var booked models.Appointment
	err = s.withDayLock(ctx, dentist.ID, req.Interval.Date, func() error {
		day, err := s.Appointments.ListByDentistAndDate(ctx, dentist.ID, req.Interval.Date)
		if err != nil {
			return err
		}
		// Validate before allocating an ID so rejected requests do not burn sequence numbers.
		if err := scheduling.CheckSlot(*dentist, day, req.Interval, ""); err != nil {
			return err
		}
		id, err := s.nextID(ctx, req.Interval.Date)
		if err != nil {
			return fmt.Errorf("failed to allocate appointment ID: %w", err)
		}

		amount := req.Amount
		if amount == 0 {
			amount = dentist.ConsultationFee
		}
		booked, err = s.Machine.Create(*dentist, day, models.Appointment{
			ID:        id,
			DentistID: dentist.ID,
			PatientID: patientID,
			Date:      req.Interval.Date,
			StartTime: req.Interval.StartTime,
			EndTime:   req.Interval.EndTime,
			Type:      req.Type,
			Priority:  req.Priority,
			Notes:     req.Notes,
			Symptoms:  req.Symptoms,
			Payment:   models.PaymentRecord{Amount: amount},
			CreatedBy: caller.UserID,
		})
		if err != nil {
			return err
		}
		return mapWriteError(s.Appointments.Create(ctx, &booked), booked)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateSlots(ctx, booked.DentistID, booked.Date)
	s.scheduleReminder(ctx, &booked, patient)
	utils.GetLogger().Info("Appointment booked",
		zap.String("appointmentID", booked.ID),
		zap.String("dentistID", booked.DentistID),
		zap.String("patientID", booked.PatientID),
		zap.String("date", booked.Date),
		zap.String("startTime", booked.StartTime))

	view := models.NewAppointmentView(booked)
	return &view, nil
}

func (s *DefaultAppointmentService) Get(ctx context.Context, caller access.Decision, id string) (*models.AppointmentView, error) {
	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.CanSeeAppointment(*a) {
		return nil, access.ErrForbidden
	}
	view := models.NewAppointmentView(*a)
	return &view, nil
}

// List pages through appointments. Callers without appointments:view-all only see their own:
// patients are pinned to their profile, dentists to their calendar.
func (s *DefaultAppointmentService) List(
	ctx context.Context,
	caller access.Decision,
	filter models.AppointmentFilter,
	page utils.Pagination,
) (models.Page[models.AppointmentView], error) {
	if !caller.Can(access.ViewAllAppointments) {
		switch {
		case caller.Role == models.RolePatient && caller.ProfileID != "":
			filter.PatientID = caller.ProfileID
		case caller.Role == models.RoleDentist && caller.ProfileID != "":
			filter.DentistID = caller.ProfileID
		default:
			return models.Page[models.AppointmentView]{}, access.ErrForbidden
		}
	}
	appts, total, err := s.Appointments.List(ctx, filter, page)
	if err != nil {
		return models.Page[models.AppointmentView]{}, err
	}
	views := make([]models.AppointmentView, 0, len(appts))
	for _, a := range appts {
		views = append(views, models.NewAppointmentView(a))
	}
	return utils.NewPage(views, page, total), nil
}
