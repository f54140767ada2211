package scheduling

import (
	"errors"
	"testing"
	"time"

	"clinicops/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 5, 30, 12, 0, 0, 0, time.UTC)

func testMachine() *Machine {
	return &Machine{Now: func() time.Time { return fixedNow }}
}

func testDentist() models.Dentist {
	return models.Dentist{
		ID:          "DEN0001",
		Active:      true,
		WeeklyHours: mondayRule(),
		TimeOff: []models.AbsenceInterval{
			{ID: "off-1", StartDate: "2025-06-09", EndDate: "2025-06-13", Approved: true},
		},
		Policy: models.SchedulingPolicy{SlotDurationMinutes: 30, BufferMinutes: 15},
	}
}

func newAppointment(id, date, start, end string) models.Appointment {
	return models.Appointment{ID: id, DentistID: "DEN0001", PatientID: "PAT000001", Date: date, StartTime: start, EndTime: end}
}

func requireKind(t *testing.T, err error, kind ErrorKind) {
	t.Helper()
	require.Error(t, err)
	got, ok := KindOf(err)
	require.True(t, ok, "expected scheduling error, got %v", err)
	assert.Equal(t, kind, got)
}

func TestCreate(t *testing.T) {
	m := testMachine()
	day := []models.Appointment{appt("APT1", "DEN0001", "2025-06-02", "10:00", "10:30", models.StatusScheduled)}

	created, err := m.Create(testDentist(), day, newAppointment("APT2", "2025-06-02", "10:30", "11:00"))
	require.NoError(t, err)
	assert.Equal(t, models.StatusScheduled, created.Status)
	assert.Equal(t, models.PriorityNormal, created.Priority)
	assert.Equal(t, fixedNow, created.CreatedAt)

	tests := []struct {
		name  string
		appt  models.Appointment
		kind  ErrorKind
		isErr error
	}{
		{"end before start", newAppointment("X", "2025-06-02", "11:00", "10:30"), InvalidInterval, ErrInvalidInterval},
		{"too short", newAppointment("X", "2025-06-02", "11:00", "11:10"), InvalidInterval, ErrInvalidInterval},
		{"bad date", newAppointment("X", "2025-13-02", "11:00", "11:30"), InvalidInterval, ErrInvalidInterval},
		{"closed day", newAppointment("X", "2025-06-03", "11:00", "11:30"), PractitionerUnavailable, ErrPractitionerUnavailable},
		{"time off", newAppointment("X", "2025-06-09", "11:00", "11:30"), PractitionerUnavailable, ErrPractitionerUnavailable},
		{"outside hours", newAppointment("X", "2025-06-02", "16:45", "17:15"), PractitionerUnavailable, ErrPractitionerUnavailable},
		{"overlap", newAppointment("X", "2025-06-02", "10:15", "10:45"), SchedulingConflict, ErrSchedulingConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Create(testDentist(), day, tt.appt)
			requireKind(t, err, tt.kind)
			assert.True(t, errors.Is(err, tt.isErr))
		})
	}
}

func TestCreateRejectsInactiveDentist(t *testing.T) {
	d := testDentist()
	d.Active = false
	_, err := testMachine().Create(d, nil, newAppointment("X", "2025-06-02", "10:00", "10:30"))
	requireKind(t, err, PractitionerUnavailable)
}

func TestConfirm(t *testing.T) {
	m := testMachine()
	a := newAppointment("APT1", "2025-06-02", "10:00", "10:30")
	a.Status = models.StatusScheduled

	confirmed, err := m.Confirm(a)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, confirmed.Status)
	assert.Equal(t, fixedNow, confirmed.ConfirmedAt)

	_, err = m.Confirm(confirmed)
	requireKind(t, err, IllegalTransition)
}

func TestCancelCompletedScenarioD(t *testing.T) {
	a := newAppointment("APT1", "2025-06-02", "10:00", "10:30")
	a.Status = models.StatusCompleted

	got, err := testMachine().Cancel(a, CancelDetails{Reason: "changed mind", By: models.ActorPatient})

	requireKind(t, err, IllegalTransition)
	assert.Equal(t, models.Appointment{}, got)
	assert.Equal(t, models.StatusCompleted, a.Status)
	assert.Nil(t, a.Cancellation)
}

func TestCancelTwiceIsRejected(t *testing.T) {
	m := testMachine()
	a := newAppointment("APT1", "2025-06-02", "10:00", "10:30")
	a.Status = models.StatusConfirmed

	cancelled, err := m.Cancel(a, CancelDetails{Reason: "sick", By: models.ActorPatient, ActorID: "u1", RefundAmount: 20})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.Cancellation)
	assert.Equal(t, "sick", cancelled.Cancellation.Reason)
	assert.Equal(t, models.ActorPatient, cancelled.Cancellation.CancelledBy)
	assert.Equal(t, 20.0, cancelled.Cancellation.RefundAmount)
	assert.Equal(t, "refunded", cancelled.Payment.Status)

	before := cancelled
	_, err = m.Cancel(cancelled, CancelDetails{Reason: "again", By: models.ActorStaff})
	requireKind(t, err, IllegalTransition)
	assert.Equal(t, before, cancelled)
}

func TestComplete(t *testing.T) {
	m := testMachine()
	for _, status := range []models.AppointmentStatus{models.StatusScheduled, models.StatusConfirmed, models.StatusNoShow} {
		a := newAppointment("APT1", "2025-06-02", "10:00", "10:30")
		a.Status = status
		done, err := m.Complete(a, CompletionDetails{Diagnosis: "caries", Cost: 120, AmountPaid: 50, FollowUpDate: "2025-07-01"})
		require.NoError(t, err, status)
		assert.Equal(t, models.StatusCompleted, done.Status)
		require.NotNil(t, done.Treatment)
		assert.Equal(t, 120.0, done.Treatment.Cost)
		assert.Equal(t, "partial", done.Payment.Status)
	}

	a := newAppointment("APT1", "2025-06-02", "10:00", "10:30")
	a.Status = models.StatusCancelled
	_, err := m.Complete(a, CompletionDetails{})
	requireKind(t, err, IllegalTransition)
}

func TestReschedule(t *testing.T) {
	m := testMachine()
	a := newAppointment("APT1", "2025-06-02", "10:00", "10:30")
	a.Status = models.StatusConfirmed
	day := []models.Appointment{
		a,
		appt("APT2", "DEN0001", "2025-06-02", "11:00", "11:30", models.StatusScheduled),
	}

	moved, err := m.Reschedule(testDentist(), day, a, RescheduleDetails{
		Interval: models.BookingInterval{Date: "2025-06-02", StartTime: "10:15", EndTime: "10:45"},
		Reason:   "traffic",
		By:       models.ActorPatient,
	})
	require.NoError(t, err, "overlap with its own slot is ignored")
	assert.Equal(t, models.StatusScheduled, moved.Status)
	assert.Equal(t, "10:15", moved.StartTime)
	assert.Equal(t, 1, moved.RescheduleCount)
	require.NotNil(t, moved.Reschedule)
	assert.Equal(t, "10:00", moved.Reschedule.OriginalStartTime)
	assert.Equal(t, "2025-06-02", moved.Reschedule.OriginalDate)
	assert.True(t, moved.ConfirmedAt.IsZero())

	_, err = m.Reschedule(testDentist(), day, a, RescheduleDetails{
		Interval: models.BookingInterval{Date: "2025-06-02", StartTime: "11:15", EndTime: "11:45"},
	})
	requireKind(t, err, SchedulingConflict)
	assert.Equal(t, "10:00", a.StartTime, "input untouched on failure")

	_, err = m.Reschedule(testDentist(), day, a, RescheduleDetails{
		Interval: models.BookingInterval{Date: "2025-06-10", StartTime: "10:00", EndTime: "10:30"},
	})
	requireKind(t, err, PractitionerUnavailable)

	a.Status = models.StatusCancelled
	_, err = m.Reschedule(testDentist(), day, a, RescheduleDetails{
		Interval: models.BookingInterval{Date: "2025-06-02", StartTime: "14:00", EndTime: "14:30"},
	})
	requireKind(t, err, IllegalTransition)
}

func TestUpdate(t *testing.T) {
	m := testMachine()
	a := newAppointment("APT1", "2025-06-02", "10:00", "10:30")
	a.Status = models.StatusScheduled
	day := []models.Appointment{a, appt("APT2", "DEN0001", "2025-06-02", "12:00", "12:30", models.StatusScheduled)}

	notes := "bring x-rays"
	updated, err := m.Update(testDentist(), day, a, models.AppointmentUpdate{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, notes, updated.Notes)
	assert.Equal(t, "10:00", updated.StartTime)

	start, end := "12:15", "12:45"
	_, err = m.Update(testDentist(), day, a, models.AppointmentUpdate{StartTime: &start, EndTime: &end})
	requireKind(t, err, SchedulingConflict)

	end = "12:10"
	_, err = m.Update(testDentist(), day, a, models.AppointmentUpdate{StartTime: &start, EndTime: &end})
	requireKind(t, err, InvalidInterval)

	start, end = "13:00", "13:30"
	moved, err := m.Update(testDentist(), day, a, models.AppointmentUpdate{StartTime: &start, EndTime: &end})
	require.NoError(t, err)
	assert.Equal(t, "13:00", moved.StartTime)
	assert.Equal(t, models.StatusScheduled, moved.Status)

	done := a
	done.Status = models.StatusCompleted
	_, err = m.Update(testDentist(), day, done, models.AppointmentUpdate{StartTime: &start, EndTime: &end})
	requireKind(t, err, IllegalTransition)
	_, err = m.Update(testDentist(), day, done, models.AppointmentUpdate{Notes: &notes})
	assert.NoError(t, err)
}

func TestMarkNoShow(t *testing.T) {
	m := testMachine()
	a := newAppointment("APT1", "2025-06-02", "10:00", "10:30")
	a.Status = models.StatusConfirmed

	missed, err := m.MarkNoShow(a)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNoShow, missed.Status)

	_, err = m.MarkNoShow(missed)
	requireKind(t, err, IllegalTransition)
}

func TestValidatePolicyAndHours(t *testing.T) {
	assert.NoError(t, ValidatePolicy(models.SchedulingPolicy{SlotDurationMinutes: 15}))
	requireKind(t, ValidatePolicy(models.SchedulingPolicy{SlotDurationMinutes: 10}), InvalidInterval)
	requireKind(t, ValidatePolicy(models.SchedulingPolicy{SlotDurationMinutes: 30, BufferMinutes: -5}), InvalidInterval)

	assert.NoError(t, ValidateWeeklyHours(mondayRule()))
	requireKind(t, ValidateWeeklyHours([]models.WeeklyHoursRule{{DayOfWeek: 7, StartTime: "09:00", EndTime: "10:00"}}), InvalidInterval)
	requireKind(t, ValidateWeeklyHours([]models.WeeklyHoursRule{{DayOfWeek: 1, StartTime: "10:00", EndTime: "09:00"}}), InvalidInterval)
}
