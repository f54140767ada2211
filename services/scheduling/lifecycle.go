package scheduling

import (
	"errors"
	"time"

	"clinicops/models"
)

// CancelDetails is what a cancellation records.
type CancelDetails struct {
	Reason       string
	By           models.ActorRole
	ActorID      string
	RefundAmount float64
}

// RescheduleDetails is the new interval plus the provenance recorded with it.
type RescheduleDetails struct {
	Interval models.BookingInterval
	Reason   string
	By       models.ActorRole
	ActorID  string
}

// CompletionDetails is the treatment outcome recorded when an appointment completes.
type CompletionDetails struct {
	Diagnosis     string
	Procedures    []string
	Prescriptions []string
	Notes         string
	Cost          float64
	FollowUpDate  string
	AmountPaid    float64
}

// Machine applies appointment lifecycle transitions. Every method takes the appointment by
// value and returns the updated copy; on error the returned value is the zero Appointment
// and the caller's copy is untouched.
type Machine struct {
	Now func() time.Time
}

func NewMachine() *Machine {
	return &Machine{Now: time.Now}
}

func (m *Machine) now() time.Time {
	if m.Now == nil {
		return time.Now()
	}
	return m.Now()
}

// ValidateInterval checks the shape of a booking interval: a real date, parseable times,
// start before end and at least MinSlotMinutes long.
func ValidateInterval(iv models.BookingInterval) error {
	if _, err := ParseDate(iv.Date); err != nil {
		return NewError(InvalidInterval, "%s", err.Error())
	}
	sp, err := parseSpan(iv.StartTime, iv.EndTime)
	if err != nil {
		return NewError(InvalidInterval, "%s", err.Error())
	}
	if sp.start >= sp.end {
		return NewError(InvalidInterval, "start time %s must be before end time %s", iv.StartTime, iv.EndTime)
	}
	if sp.end-sp.start < MinSlotMinutes {
		return NewError(InvalidInterval, "appointment must be at least %d minutes long", MinSlotMinutes)
	}
	return nil
}

// ValidatePolicy checks slot duration and buffer bounds.
func ValidatePolicy(p models.SchedulingPolicy) error {
	if p.SlotDurationMinutes < MinSlotMinutes {
		return NewError(InvalidInterval, "slot duration must be at least %d minutes", MinSlotMinutes)
	}
	if p.BufferMinutes < 0 {
		return NewError(InvalidInterval, "buffer time cannot be negative")
	}
	return nil
}

// ValidateWeeklyHours checks every rule's weekday and that it opens before it closes.
func ValidateWeeklyHours(rules []models.WeeklyHoursRule) error {
	for i, r := range rules {
		if r.DayOfWeek < 0 || r.DayOfWeek > 6 {
			return NewError(InvalidInterval, "rule %d: dayOfWeek must be between 0 and 6", i+1)
		}
		sp, err := parseSpan(r.StartTime, r.EndTime)
		if err != nil {
			return NewError(InvalidInterval, "rule %d: %s", i+1, err.Error())
		}
		if sp.start >= sp.end {
			return NewError(InvalidInterval, "rule %d: start time must be before end time", i+1)
		}
	}
	return nil
}

// CheckSlot runs the full booking validation for iv against a dentist and the dentist's
// appointments on that date: interval shape, working hours and time off, then overlap.
func CheckSlot(dentist models.Dentist, dayAppointments []models.Appointment, iv models.BookingInterval, excludeID string) error {
	if err := ValidateInterval(iv); err != nil {
		return err
	}
	date, _ := ParseDate(iv.Date)

	if !dentist.Active {
		return NewError(PractitionerUnavailable, "dentist %s is not accepting appointments", dentist.ID)
	}
	if reason := unavailableReason(dentist.WeeklyHours, dentist.TimeOff, date, iv.StartTime, iv.EndTime); reason != "" {
		return NewError(PractitionerUnavailable, "%s", reason)
	}

	if clash, found := FindConflict(dayAppointments, dentist.ID, iv.Date, iv.StartTime, iv.EndTime, excludeID); found {
		return NewError(SchedulingConflict, "overlaps appointment %s (%s-%s)", clash.ID, clash.StartTime, clash.EndTime)
	}
	return nil
}

// Create validates a new appointment's interval and returns it in scheduled status.
func (m *Machine) Create(dentist models.Dentist, dayAppointments []models.Appointment, appt models.Appointment) (models.Appointment, error) {
	if appt.DentistID != "" && appt.DentistID != dentist.ID {
		return models.Appointment{}, errors.New("appointment dentist does not match the supplied dentist record")
	}
	if err := CheckSlot(dentist, dayAppointments, appt.Interval(), appt.ID); err != nil {
		return models.Appointment{}, err
	}

	now := m.now()
	appt.DentistID = dentist.ID
	appt.Status = models.StatusScheduled
	if appt.Priority == "" {
		appt.Priority = models.PriorityNormal
	}
	if appt.Type == "" {
		appt.Type = models.TypeConsultation
	}
	if appt.Payment.Status == "" {
		appt.Payment.Status = "pending"
	}
	appt.CreatedAt = now
	appt.UpdatedAt = now
	return appt, nil
}

// Confirm moves a scheduled appointment to confirmed.
func (m *Machine) Confirm(appt models.Appointment) (models.Appointment, error) {
	if appt.Status != models.StatusScheduled {
		return models.Appointment{}, NewError(IllegalTransition, "cannot confirm a %s appointment", appt.Status)
	}
	now := m.now()
	appt.Status = models.StatusConfirmed
	appt.ConfirmedAt = now
	appt.UpdatedAt = now
	return appt, nil
}

// Complete records the treatment outcome. Any status except cancelled may complete.
func (m *Machine) Complete(appt models.Appointment, d CompletionDetails) (models.Appointment, error) {
	if appt.Status == models.StatusCancelled {
		return models.Appointment{}, NewError(IllegalTransition, "cannot complete a cancelled appointment")
	}
	now := m.now()
	appt.Status = models.StatusCompleted
	appt.Treatment = &models.TreatmentRecord{
		Diagnosis:     d.Diagnosis,
		Procedures:    append([]string(nil), d.Procedures...),
		Prescriptions: append([]string(nil), d.Prescriptions...),
		Notes:         d.Notes,
		Cost:          d.Cost,
		FollowUpDate:  d.FollowUpDate,
		CompletedAt:   now,
	}
	appt.Payment.Amount = d.Cost
	appt.Payment.AmountPaid = d.AmountPaid
	appt.Payment.Status = paymentStatus(d.Cost, d.AmountPaid)
	appt.UpdatedAt = now
	return appt, nil
}

func paymentStatus(amount, paid float64) string {
	switch {
	case paid <= 0:
		return "pending"
	case paid < amount:
		return "partial"
	default:
		return "paid"
	}
}

// Cancel records who cancelled, why, and any refund. Cancelled and completed
// appointments cannot be cancelled.
func (m *Machine) Cancel(appt models.Appointment, d CancelDetails) (models.Appointment, error) {
	if appt.Status == models.StatusCancelled || appt.Status == models.StatusCompleted {
		return models.Appointment{}, NewError(IllegalTransition, "cannot cancel a %s appointment", appt.Status)
	}
	now := m.now()
	appt.Status = models.StatusCancelled
	appt.Cancellation = &models.CancellationRecord{
		Reason:       d.Reason,
		CancelledBy:  d.By,
		ActorID:      d.ActorID,
		CancelledAt:  now,
		RefundAmount: d.RefundAmount,
	}
	if d.RefundAmount > 0 {
		appt.Payment.Status = "refunded"
	}
	appt.UpdatedAt = now
	return appt, nil
}

// Reschedule moves the appointment to a new interval on the same record. The new
// interval is validated like a booking, ignoring the appointment's own current slot;
// status returns to scheduled and the original interval is kept as provenance.
func (m *Machine) Reschedule(
	dentist models.Dentist,
	dayAppointments []models.Appointment,
	appt models.Appointment,
	d RescheduleDetails,
) (models.Appointment, error) {
	if appt.Status == models.StatusCancelled || appt.Status == models.StatusCompleted {
		return models.Appointment{}, NewError(IllegalTransition, "cannot reschedule a %s appointment", appt.Status)
	}
	if dentist.ID != appt.DentistID {
		return models.Appointment{}, errors.New("appointment dentist does not match the supplied dentist record")
	}
	if err := CheckSlot(dentist, dayAppointments, d.Interval, appt.ID); err != nil {
		return models.Appointment{}, err
	}

	now := m.now()
	appt.Reschedule = &models.RescheduleRecord{
		OriginalDate:      appt.Date,
		OriginalStartTime: appt.StartTime,
		OriginalEndTime:   appt.EndTime,
		Reason:            d.Reason,
		RescheduledBy:     d.By,
		ActorID:           d.ActorID,
		RescheduledAt:     now,
	}
	appt.RescheduleCount++
	appt.Date = d.Interval.Date
	appt.StartTime = d.Interval.StartTime
	appt.EndTime = d.Interval.EndTime
	appt.Status = models.StatusScheduled
	appt.ConfirmedAt = time.Time{}
	appt.UpdatedAt = now
	return appt, nil
}

// Update applies a general field edit. When the edit touches dentist, date or time, the
// resulting interval is validated exactly as a reschedule against dentist, which must be
// the record of the appointment's dentist after the edit.
func (m *Machine) Update(
	dentist models.Dentist,
	dayAppointments []models.Appointment,
	appt models.Appointment,
	u models.AppointmentUpdate,
) (models.Appointment, error) {
	if u.TouchesSchedule() {
		if appt.Status == models.StatusCancelled || appt.Status == models.StatusCompleted {
			return models.Appointment{}, NewError(IllegalTransition, "cannot move a %s appointment", appt.Status)
		}
		if u.DentistID != nil {
			appt.DentistID = *u.DentistID
		}
		if u.Date != nil {
			appt.Date = *u.Date
		}
		if u.StartTime != nil {
			appt.StartTime = *u.StartTime
		}
		if u.EndTime != nil {
			appt.EndTime = *u.EndTime
		}
		if dentist.ID != appt.DentistID {
			return models.Appointment{}, errors.New("appointment dentist does not match the supplied dentist record")
		}
		if err := CheckSlot(dentist, dayAppointments, appt.Interval(), appt.ID); err != nil {
			return models.Appointment{}, err
		}
	}

	if u.Type != nil {
		appt.Type = *u.Type
	}
	if u.Priority != nil {
		appt.Priority = *u.Priority
	}
	if u.Notes != nil {
		appt.Notes = *u.Notes
	}
	if u.Symptoms != nil {
		appt.Symptoms = append([]string(nil), (*u.Symptoms)...)
	}
	appt.UpdatedAt = m.now()
	return appt, nil
}

// MarkNoShow records that the patient did not attend. The slot stops blocking bookings.
func (m *Machine) MarkNoShow(appt models.Appointment) (models.Appointment, error) {
	if appt.Status != models.StatusScheduled && appt.Status != models.StatusConfirmed {
		return models.Appointment{}, NewError(IllegalTransition, "cannot mark a %s appointment as no-show", appt.Status)
	}
	appt.Status = models.StatusNoShow
	appt.UpdatedAt = m.now()
	return appt, nil
}
