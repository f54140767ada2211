package appointment

import (
	"context"

	"clinicops/models"
	"clinicops/services/scheduling"
	"clinicops/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func reminderChannel(p *models.Patient) string {
	if p != nil && p.Email != "" {
		return "email"
	}
	return "sms"
}

// scheduleReminder queues a reminder ReminderLead before the start and records it on the
// appointment. Failures are logged; the booking itself stands.
func (s *DefaultAppointmentService) scheduleReminder(ctx context.Context, a *models.Appointment, patient *models.Patient) {
	if s.Reminders == nil || s.Settings.ReminderLead <= 0 {
		return
	}
	start, err := scheduling.StartInstant(a.Date, a.StartTime, s.location())
	if err != nil {
		return
	}
	fireAt := start.Add(-s.Settings.ReminderLead)
	if !fireAt.After(s.now()) {
		utils.GetLogger().Debug("Reminder window already passed", zap.String("appointmentID", a.ID))
		return
	}

	reminder := models.Reminder{
		ID:          uuid.NewString(),
		Channel:     reminderChannel(patient),
		ScheduledAt: fireAt,
	}
	payload := models.ReminderPayload{
		AppointmentID: a.ID,
		ReminderID:    reminder.ID,
		PatientID:     a.PatientID,
		DentistID:     a.DentistID,
		Date:          a.Date,
		StartTime:     a.StartTime,
		Channel:       reminder.Channel,
	}
	taskID, err := s.Reminders.Schedule(ctx, payload, fireAt)
	if err != nil {
		utils.GetLogger().Error("Failed to schedule reminder", zap.String("appointmentID", a.ID), zap.Error(err))
		return
	}
	reminder.TaskID = taskID

	if err := s.Appointments.AppendReminder(ctx, a.ID, reminder); err != nil {
		utils.GetLogger().Error("Failed to record reminder", zap.String("appointmentID", a.ID), zap.Error(err))
		return
	}
	a.Reminders = append(a.Reminders, reminder)
}
