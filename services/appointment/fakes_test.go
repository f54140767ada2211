package appointment

import (
	"context"
	"sort"
	"sync"
	"time"

	"clinicops/database"
	"clinicops/models"
	"clinicops/utils"
)

type memAppointmentRepo struct {
	mu         sync.Mutex
	appts      map[string]models.Appointment
	failCreate error
	// beforeUpdate runs once ahead of the next Update, standing in for a concurrent writer.
	beforeUpdate func()
}

func newMemAppointmentRepo() *memAppointmentRepo {
	return &memAppointmentRepo{appts: map[string]models.Appointment{}}
}

// slotTaken mirrors the partial unique index on dentist, date and start time.
func (r *memAppointmentRepo) slotTaken(a models.Appointment) bool {
	for _, other := range r.appts {
		if other.ID == a.ID || other.Status == models.StatusCancelled || other.Status == models.StatusNoShow {
			continue
		}
		if other.DentistID == a.DentistID && other.Date == a.Date && other.StartTime == a.StartTime {
			return true
		}
	}
	return false
}

func (r *memAppointmentRepo) Create(_ context.Context, a *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate != nil {
		err := r.failCreate
		r.failCreate = nil
		return err
	}
	if _, ok := r.appts[a.ID]; ok || r.slotTaken(*a) {
		return database.ErrDuplicate
	}
	r.appts[a.ID] = *a
	return nil
}

func (r *memAppointmentRepo) GetByID(_ context.Context, id string) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appts[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	a.Reminders = append([]models.Reminder(nil), a.Reminders...)
	return &a, nil
}

func (r *memAppointmentRepo) ListByDentistAndDate(_ context.Context, dentistID, date string) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Appointment
	for _, a := range r.appts {
		if a.DentistID == dentistID && a.Date == date {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

func (r *memAppointmentRepo) List(_ context.Context, f models.AppointmentFilter, _ utils.Pagination) ([]models.Appointment, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Appointment
	for _, a := range r.appts {
		if f.DentistID != "" && a.DentistID != f.DentistID {
			continue
		}
		if f.PatientID != "" && a.PatientID != f.PatientID {
			continue
		}
		if f.Date != "" && a.Date != f.Date {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *memAppointmentRepo) Update(_ context.Context, a *models.Appointment) error {
	r.mu.Lock()
	hook := r.beforeUpdate
	r.beforeUpdate = nil
	r.mu.Unlock()
	if hook != nil {
		hook()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.appts[a.ID]
	if !ok {
		return database.ErrNotFound
	}
	if stored.Version != a.Version {
		return database.ErrStale
	}
	if a.Status.Blocking() && r.slotTaken(*a) {
		return database.ErrDuplicate
	}
	a.Version++
	// Reminders are written through AppendReminder only.
	a.Reminders = stored.Reminders
	r.appts[a.ID] = *a
	return nil
}

// modify edits the stored appointment the way another request would, bumping its version.
func (r *memAppointmentRepo) modify(id string, fn func(*models.Appointment)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a := r.appts[id]
	fn(&a)
	a.Version++
	r.appts[id] = a
}

func (r *memAppointmentRepo) AppendReminder(_ context.Context, id string, reminder models.Reminder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appts[id]
	if !ok {
		return database.ErrNotFound
	}
	a.Reminders = append(a.Reminders, reminder)
	a.Version++
	r.appts[id] = a
	return nil
}

func (r *memAppointmentRepo) MarkReminderSent(_ context.Context, id, reminderID string, sentAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appts[id]
	if !ok {
		return database.ErrNotFound
	}
	for i := range a.Reminders {
		if a.Reminders[i].ID == reminderID {
			a.Reminders[i].Sent = true
			a.Reminders[i].SentAt = sentAt
			a.Version++
			r.appts[id] = a
			return nil
		}
	}
	return database.ErrNotFound
}

type memDentistRepo struct {
	mu       sync.Mutex
	dentists map[string]models.Dentist
}

func (r *memDentistRepo) Create(_ context.Context, d *models.Dentist) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dentists[d.ID] = *d
	return nil
}

func (r *memDentistRepo) GetByID(_ context.Context, id string) (*models.Dentist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.dentists[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &d, nil
}

func (r *memDentistRepo) List(context.Context, models.DentistFilter, utils.Pagination) ([]models.Dentist, int64, error) {
	return nil, 0, nil
}

func (r *memDentistRepo) Update(_ context.Context, d *models.Dentist) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dentists[d.ID] = *d
	return nil
}

type memPatientRepo struct {
	patients map[string]models.Patient
}

func (r *memPatientRepo) Create(_ context.Context, p *models.Patient) error {
	r.patients[p.ID] = *p
	return nil
}

func (r *memPatientRepo) GetByID(_ context.Context, id string) (*models.Patient, error) {
	p, ok := r.patients[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &p, nil
}

func (r *memPatientRepo) List(context.Context, models.PatientFilter, utils.Pagination) ([]models.Patient, int64, error) {
	return nil, 0, nil
}

func (r *memPatientRepo) Update(_ context.Context, p *models.Patient) error {
	r.patients[p.ID] = *p
	return nil
}

type memSequencer struct {
	mu     sync.Mutex
	values map[string]int64
}

func (s *memSequencer) Next(_ context.Context, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[name]++
	return s.values[name], nil
}

type scheduledReminder struct {
	payload models.ReminderPayload
	fireAt  time.Time
}

type recordingScheduler struct {
	mu        sync.Mutex
	scheduled []scheduledReminder
}

func (s *recordingScheduler) Schedule(_ context.Context, p models.ReminderPayload, fireAt time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduled = append(s.scheduled, scheduledReminder{payload: p, fireAt: fireAt})
	return "task-" + p.ReminderID, nil
}
