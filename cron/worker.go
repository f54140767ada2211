package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clinicops/database"
	appointmentRepo "clinicops/database/repository/appointment"
	"clinicops/models"
	"clinicops/services/notification"
	"clinicops/services/tasks"
	"clinicops/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// ReminderHandler delivers queued appointment reminders. A reminder whose appointment was
// cancelled, completed or moved since it was queued is dropped.
type ReminderHandler struct {
	Appointments appointmentRepo.AppointmentRepository
	Dispatcher   notification.ReminderDispatcher
	Now          func() time.Time
}

func (h *ReminderHandler) now() time.Time {
	if h.Now == nil {
		return time.Now()
	}
	return h.Now()
}

// ProcessTask implements asynq.Handler.
func (h *ReminderHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	logger := utils.GetLogger()

	p, err := tasks.ParseReminderPayload(task)
	if err != nil {
		logger.Error("Invalid reminder payload", zap.Error(err))
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	appt, err := h.Appointments.GetByID(ctx, p.AppointmentID)
	if errors.Is(err, database.ErrNotFound) {
		logger.Info("Reminder dropped, appointment gone", zap.String("appointmentID", p.AppointmentID))
		return nil
	}
	if err != nil {
		return err
	}

	reminder, ok := findReminder(appt.Reminders, p.ReminderID)
	if reason := staleReason(*appt, p, reminder, ok); reason != "" {
		logger.Info("Reminder dropped",
			zap.String("appointmentID", p.AppointmentID),
			zap.String("reminderID", p.ReminderID),
			zap.String("reason", reason))
		return nil
	}

	if err := h.Dispatcher.SendReminder(ctx, *appt, reminder); err != nil {
		logger.Error("Failed to send reminder", zap.String("reminderID", p.ReminderID), zap.Error(err))
		return err
	}
	if err := h.Appointments.MarkReminderSent(ctx, appt.ID, reminder.ID, h.now()); err != nil {
		// Already delivered; a retry would send it twice.
		logger.Error("Failed to mark reminder sent", zap.String("reminderID", p.ReminderID), zap.Error(err))
	}
	return nil
}

func findReminder(reminders []models.Reminder, id string) (models.Reminder, bool) {
	for _, r := range reminders {
		if r.ID == id {
			return r, true
		}
	}
	return models.Reminder{}, false
}

func staleReason(appt models.Appointment, p models.ReminderPayload, r models.Reminder, found bool) string {
	switch {
	case !appt.Status.Blocking():
		return "appointment is " + string(appt.Status)
	case appt.Status == models.StatusCompleted:
		return "appointment already completed"
	case appt.DentistID != p.DentistID || appt.Date != p.Date || appt.StartTime != p.StartTime:
		return "appointment was moved"
	case !found:
		return "reminder not recorded on appointment"
	case appt.Reminders[len(appt.Reminders)-1].ID != r.ID:
		return "superseded by a newer reminder"
	case r.Sent:
		return "reminder already sent"
	}
	return ""
}

// InitReminderWorker starts the reminder queue worker in the background and returns the server
// so the caller can shut it down.
func InitReminderWorker(handler *ReminderHandler) *asynq.Server {
	srv := asynq.NewServer(
		utils.QueueRedisOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.Handle(tasks.TypeSendReminder, handler)

	go func() {
		logger := utils.GetLogger()
		logger.Info("Starting reminder worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Start(mux)
			if err == nil || errors.Is(err, asynq.ErrServerClosed) {
				return
			}
			logger.Error("Reminder worker failed to start",
				zap.Int("attempt", attempts), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
			if attempts == maxAttempts {
				logger.Error("Reminder worker gave up; reminders will queue until restart")
				return
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
	return srv
}
