package appointment

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"clinicops/database"
	"clinicops/models"
	"clinicops/services/access"
	"clinicops/services/scheduling"
	"clinicops/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	dentistID = "DEN0001"
	patientID = "PAT000001"
	monday    = "2025-06-02"
)

var (
	fixedNow = time.Date(2025, 5, 30, 12, 0, 0, 0, time.UTC)
	staff    = access.ForUser("staff-1", models.RoleStaff, "")
	patient  = access.ForUser("user-pat", models.RolePatient, patientID)
	dentist  = access.ForUser("user-den", models.RoleDentist, dentistID)
)

type fixture struct {
	svc       *DefaultAppointmentService
	appts     *memAppointmentRepo
	dentists  *memDentistRepo
	reminders *recordingScheduler
	mr        *miniredis.Miniredis
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	f := &fixture{
		appts: newMemAppointmentRepo(),
		dentists: &memDentistRepo{dentists: map[string]models.Dentist{
			dentistID: {
				ID:              dentistID,
				Active:          true,
				WeeklyHours:     []models.WeeklyHoursRule{{DayOfWeek: 1, StartTime: "09:00", EndTime: "17:00", Active: true}},
				Policy:          models.SchedulingPolicy{SlotDurationMinutes: 30, BufferMinutes: 15},
				ConsultationFee: 80,
			},
			"DEN0002": {
				ID:          "DEN0002",
				Active:      true,
				WeeklyHours: []models.WeeklyHoursRule{{DayOfWeek: 1, StartTime: "13:00", EndTime: "18:00", Active: true}},
				Policy:      models.SchedulingPolicy{SlotDurationMinutes: 30},
			},
		}},
		reminders: &recordingScheduler{},
		mr:        mr,
	}
	f.svc = &DefaultAppointmentService{
		Appointments: f.appts,
		Dentists:     f.dentists,
		Patients: &memPatientRepo{patients: map[string]models.Patient{
			patientID:   {ID: patientID, FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Active: true},
			"PAT000002": {ID: "PAT000002", FirstName: "Alan", LastName: "Turing", Active: true},
			"PAT000003": {ID: "PAT000003", FirstName: "Old", LastName: "Record", Active: false},
		}},
		Sequences: &memSequencer{values: map[string]int64{}},
		Cache:     client,
		Reminders: f.reminders,
		Machine:   &scheduling.Machine{Now: func() time.Time { return fixedNow }},
		Settings: Settings{
			SlotCacheTTL: 5 * time.Minute,
			LockTTL:      time.Second,
			ReminderLead: 24 * time.Hour,
			Location:     time.UTC,
		},
	}
	return f
}

func bookReq(patient, start, end string) models.BookAppointmentRequest {
	return models.BookAppointmentRequest{
		DentistID: dentistID,
		PatientID: patient,
		Interval:  models.BookingInterval{Date: monday, StartTime: start, EndTime: end},
	}
}

func requireKind(t *testing.T, err error, kind scheduling.ErrorKind) {
	t.Helper()
	got, ok := scheduling.KindOf(err)
	require.True(t, ok, "expected scheduling error, got %v", err)
	assert.Equal(t, kind, got)
}

func TestBookHappyPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	view, err := f.svc.Book(ctx, patient, bookReq("", "10:00", "10:30"))
	require.NoError(t, err)

	assert.Equal(t, "APT202506020001", view.ID)
	assert.Equal(t, models.StatusScheduled, view.Status)
	assert.Equal(t, patientID, view.PatientID)
	assert.Equal(t, 80.0, view.Payment.Amount)
	assert.Equal(t, "user-pat", view.CreatedBy)
	assert.Equal(t, models.StatusScheduled.Color(), view.StatusColor)

	require.Len(t, f.reminders.scheduled, 1)
	sched := f.reminders.scheduled[0]
	assert.Equal(t, time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC), sched.fireAt)
	assert.Equal(t, view.ID, sched.payload.AppointmentID)
	assert.Equal(t, "email", sched.payload.Channel)
	require.Len(t, view.Reminders, 1)
	assert.Equal(t, "task-"+view.Reminders[0].ID, view.Reminders[0].TaskID)

	stored, err := f.appts.GetByID(ctx, view.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Reminders, 1)
	assert.False(t, f.mr.Exists(utils.BookingLockPrefix+dentistID+":"+monday), "lock released")
}

func TestBookRejectsOverlapWithoutBurningIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Book(ctx, staff, bookReq(patientID, "10:00", "10:30"))
	require.NoError(t, err)

	_, err = f.svc.Book(ctx, staff, bookReq("PAT000002", "10:15", "10:45"))
	requireKind(t, err, scheduling.SchedulingConflict)

	_, err = f.svc.Book(ctx, staff, bookReq("PAT000002", "08:00", "08:30"))
	requireKind(t, err, scheduling.PractitionerUnavailable)

	_, err = f.svc.Book(ctx, staff, bookReq("PAT000002", "11:00", "10:30"))
	requireKind(t, err, scheduling.InvalidInterval)

	second, err := f.svc.Book(ctx, staff, bookReq("PAT000002", "10:30", "11:00"))
	require.NoError(t, err)
	assert.Equal(t, "APT202506020002", second.ID)
}

func TestBookPermissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Book(ctx, patient, bookReq("PAT000002", "10:00", "10:30"))
	assert.ErrorIs(t, err, access.ErrForbidden)

	_, err = f.svc.Book(ctx, staff, bookReq("PAT000404", "10:00", "10:30"))
	assert.ErrorIs(t, err, database.ErrNotFound)

	_, err = f.svc.Book(ctx, staff, bookReq("PAT000003", "10:00", "10:30"))
	var verr *utils.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = f.svc.Book(ctx, staff, bookReq("", "10:00", "10:30"))
	assert.ErrorAs(t, err, &verr)
}

func TestBookWhileLockHeldIsConflict(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.mr.Set(utils.BookingLockPrefix+dentistID+":"+monday, "someone-else"))

	_, err := f.svc.Book(context.Background(), staff, bookReq(patientID, "10:00", "10:30"))

	requireKind(t, err, scheduling.SchedulingConflict)
	assert.Empty(t, f.appts.appts)
}

func TestBookStopsWaitingForLockWhenContextEnds(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.mr.Set(utils.BookingLockPrefix+dentistID+":"+monday, "someone-else"))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	started := time.Now()
	_, err := f.svc.Book(ctx, staff, bookReq(patientID, "10:00", "10:30"))

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(started), 140*time.Millisecond, "returned before the full retry backoff")
	assert.Empty(t, f.appts.appts)
}

func TestBookMapsDuplicateKeyToConflict(t *testing.T) {
	f := newFixture(t)
	f.appts.failCreate = errors.Join(database.ErrDuplicate, errors.New("E11000"))

	_, err := f.svc.Book(context.Background(), staff, bookReq(patientID, "10:00", "10:30"))

	requireKind(t, err, scheduling.SchedulingConflict)
}

func TestGetAvailableSlotsCachesAndFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	all, err := f.svc.GetAvailableSlots(ctx, dentistID, monday, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "09:45", "10:30"}, all[:3])
	assert.True(t, f.mr.Exists(slotCacheKey(dentistID, monday)))

	// A schedule edit that bypasses the observer is not visible until the cache is dropped.
	d := f.dentists.dentists[dentistID]
	d.WeeklyHours = []models.WeeklyHoursRule{{DayOfWeek: 1, StartTime: "14:00", EndTime: "15:00", Active: true}}
	f.dentists.dentists[dentistID] = d

	cached, err := f.svc.GetAvailableSlots(ctx, dentistID, monday, false)
	require.NoError(t, err)
	assert.Equal(t, all, cached)

	f.svc.ScheduleChanged(ctx, dentistID)
	fresh, err := f.svc.GetAvailableSlots(ctx, dentistID, monday, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"14:00"}, fresh)

	_, err = f.svc.Book(ctx, staff, bookReq(patientID, "14:10", "14:40"))
	require.NoError(t, err)
	free, err := f.svc.GetAvailableSlots(ctx, dentistID, monday, true)
	require.NoError(t, err)
	assert.Empty(t, free)

	_, err = f.svc.GetAvailableSlots(ctx, dentistID, "2025-02-30", false)
	requireKind(t, err, scheduling.InvalidInterval)
	_, err = f.svc.GetAvailableSlots(ctx, "DEN9999", monday, false)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestLifecycleThroughService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	booked, err := f.svc.Book(ctx, patient, bookReq("", "10:00", "10:30"))
	require.NoError(t, err)

	_, err = f.svc.Confirm(ctx, patient, booked.ID)
	assert.ErrorIs(t, err, access.ErrForbidden, "patients cannot confirm")
	_, err = f.svc.Confirm(ctx, access.ForUser("x", models.RoleDentist, "DEN0002"), booked.ID)
	assert.ErrorIs(t, err, access.ErrForbidden, "another dentist's appointment")

	confirmed, err := f.svc.Confirm(ctx, dentist, booked.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, confirmed.Status)

	completed, err := f.svc.Complete(ctx, dentist, booked.ID, models.CompleteAppointmentRequest{Diagnosis: "healthy", Cost: 80, AmountPaid: 80})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, completed.Status)
	assert.Equal(t, "paid", completed.Payment.Status)

	_, err = f.svc.Cancel(ctx, patient, booked.ID, models.CancelAppointmentRequest{Reason: "too late"})
	requireKind(t, err, scheduling.IllegalTransition)
	stored, _ := f.appts.GetByID(ctx, booked.ID)
	assert.Equal(t, models.StatusCompleted, stored.Status)
}

func TestCancelFreesTheSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	booked, err := f.svc.Book(ctx, patient, bookReq("", "10:00", "10:30"))
	require.NoError(t, err)

	cancelled, err := f.svc.Cancel(ctx, patient, booked.ID, models.CancelAppointmentRequest{Reason: "sick"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	assert.Equal(t, models.ActorPatient, cancelled.Cancellation.CancelledBy)

	_, err = f.svc.Cancel(ctx, patient, booked.ID, models.CancelAppointmentRequest{Reason: "again"})
	requireKind(t, err, scheduling.IllegalTransition)

	rebooked, err := f.svc.Book(ctx, staff, bookReq("PAT000002", "10:00", "10:30"))
	require.NoError(t, err)
	assert.Equal(t, "APT202506020002", rebooked.ID)
}

func TestRescheduleAndUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first, err := f.svc.Book(ctx, patient, bookReq("", "10:00", "10:30"))
	require.NoError(t, err)
	_, err = f.svc.Book(ctx, staff, bookReq("PAT000002", "11:00", "11:30"))
	require.NoError(t, err)

	_, err = f.svc.Reschedule(ctx, patient, first.ID, models.RescheduleAppointmentRequest{
		Interval: models.BookingInterval{Date: monday, StartTime: "11:15", EndTime: "11:45"},
	})
	requireKind(t, err, scheduling.SchedulingConflict)

	moved, err := f.svc.Reschedule(ctx, patient, first.ID, models.RescheduleAppointmentRequest{
		Interval: models.BookingInterval{Date: "2025-06-09", StartTime: "09:00", EndTime: "09:30"},
		Reason:   "travel",
	})
	require.NoError(t, err)
	assert.Equal(t, "2025-06-09", moved.Date)
	assert.Equal(t, 1, moved.RescheduleCount)
	assert.Equal(t, monday, moved.Reschedule.OriginalDate)
	assert.Len(t, f.reminders.scheduled, 3, "book, book, reschedule")
	assert.Len(t, moved.Reminders, 2)

	notes := "bring x-rays"
	edited, err := f.svc.Update(ctx, patient, first.ID, models.AppointmentUpdate{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, notes, edited.Notes)

	other := "DEN0002"
	_, err = f.svc.Update(ctx, patient, first.ID, models.AppointmentUpdate{DentistID: &other})
	assert.ErrorIs(t, err, access.ErrForbidden)

	start, end := "13:00", "13:30"
	reassigned, err := f.svc.Update(ctx, staff, first.ID, models.AppointmentUpdate{DentistID: &other, StartTime: &start, EndTime: &end})
	require.NoError(t, err)
	assert.Equal(t, "DEN0002", reassigned.DentistID)
	assert.Equal(t, "13:00", reassigned.StartTime)

	start = "09:00"
	_, err = f.svc.Update(ctx, staff, first.ID, models.AppointmentUpdate{StartTime: &start, EndTime: &end})
	requireKind(t, err, scheduling.PractitionerUnavailable)
}

func TestNoteEditKeepsConcurrentReschedule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	booked, err := f.svc.Book(ctx, patient, bookReq("", "10:00", "10:30"))
	require.NoError(t, err)

	f.appts.beforeUpdate = func() {
		f.appts.modify(booked.ID, func(a *models.Appointment) {
			a.StartTime, a.EndTime = "14:00", "14:30"
		})
	}
	notes := "bring x-rays"
	edited, err := f.svc.Update(ctx, patient, booked.ID, models.AppointmentUpdate{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, notes, edited.Notes)
	assert.Equal(t, "14:00", edited.StartTime)

	stored, err := f.appts.GetByID(ctx, booked.ID)
	require.NoError(t, err)
	assert.Equal(t, "14:00", stored.StartTime)
	assert.Equal(t, notes, stored.Notes)
}

func TestTransitionReappliesToFreshRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	booked, err := f.svc.Book(ctx, patient, bookReq("", "10:00", "10:30"))
	require.NoError(t, err)

	f.appts.beforeUpdate = func() {
		f.appts.modify(booked.ID, func(a *models.Appointment) { a.Status = models.StatusCompleted })
	}
	_, err = f.svc.Cancel(ctx, staff, booked.ID, models.CancelAppointmentRequest{Reason: "sick"})
	requireKind(t, err, scheduling.IllegalTransition)

	stored, _ := f.appts.GetByID(ctx, booked.ID)
	assert.Equal(t, models.StatusCompleted, stored.Status)
	assert.Nil(t, stored.Cancellation)
}

func TestRescheduleLosingWriteRaceIsConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	booked, err := f.svc.Book(ctx, patient, bookReq("", "10:00", "10:30"))
	require.NoError(t, err)

	f.appts.beforeUpdate = func() {
		f.appts.modify(booked.ID, func(a *models.Appointment) { a.Notes = "edited elsewhere" })
	}
	_, err = f.svc.Reschedule(ctx, patient, booked.ID, models.RescheduleAppointmentRequest{
		Interval: models.BookingInterval{Date: monday, StartTime: "11:00", EndTime: "11:30"},
	})
	requireKind(t, err, scheduling.SchedulingConflict)

	stored, _ := f.appts.GetByID(ctx, booked.ID)
	assert.Equal(t, "10:00", stored.StartTime)
	assert.Equal(t, "edited elsewhere", stored.Notes)
}

func TestMarkNoShowAndList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mine, err := f.svc.Book(ctx, patient, bookReq("", "10:00", "10:30"))
	require.NoError(t, err)
	_, err = f.svc.Book(ctx, staff, bookReq("PAT000002", "11:00", "11:30"))
	require.NoError(t, err)

	missed, err := f.svc.MarkNoShow(ctx, staff, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNoShow, missed.Status)

	page, err := f.svc.List(ctx, patient, models.AppointmentFilter{}, utils.NewPagination(1, 20))
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, mine.ID, page.Items[0].ID)

	page, err = f.svc.List(ctx, patient, models.AppointmentFilter{PatientID: "PAT000002"}, utils.NewPagination(1, 20))
	require.NoError(t, err)
	assert.Len(t, page.Items, 1, "filter is pinned to the caller")
	assert.Equal(t, patientID, page.Items[0].PatientID)

	page, err = f.svc.List(ctx, staff, models.AppointmentFilter{Date: monday}, utils.NewPagination(1, 20))
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	_, err = f.svc.List(ctx, access.ForUser("x", models.RolePatient, ""), models.AppointmentFilter{}, utils.NewPagination(1, 20))
	assert.ErrorIs(t, err, access.ErrForbidden)

	_, err = f.svc.Get(ctx, access.ForUser("y", models.RolePatient, "PAT000002"), mine.ID)
	assert.ErrorIs(t, err, access.ErrForbidden)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{scheduling.NewError(scheduling.InvalidInterval, "x"), http.StatusBadRequest},
		{scheduling.NewError(scheduling.PractitionerUnavailable, "x"), http.StatusNotFound},
		{scheduling.NewError(scheduling.SchedulingConflict, "x"), http.StatusConflict},
		{scheduling.NewError(scheduling.IllegalTransition, "x"), http.StatusConflict},
		{access.ErrForbidden, http.StatusForbidden},
		{errors.Join(errors.New("appointment APT1"), database.ErrNotFound), http.StatusNotFound},
		{utils.NewValidationError("f", "bad"), http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		status, _ := HTTPStatus(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
	}
}
