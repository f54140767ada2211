package notification

import (
	"context"

	"clinicops/models"
	"clinicops/utils"

	"go.uber.org/zap"
)

// ReminderDispatcher delivers an appointment reminder to the patient.
type ReminderDispatcher interface {
	SendReminder(ctx context.Context, appt models.Appointment, reminder models.Reminder) error
}

// LogDispatcher records reminders in the application log. Message delivery (SMS, email,
// push) plugs in behind ReminderDispatcher.
type LogDispatcher struct{}

func (LogDispatcher) SendReminder(_ context.Context, appt models.Appointment, reminder models.Reminder) error {
	utils.GetLogger().Info("Appointment reminder",
		zap.String("appointmentID", appt.ID),
		zap.String("reminderID", reminder.ID),
		zap.String("patientID", appt.PatientID),
		zap.String("dentistID", appt.DentistID),
		zap.String("date", appt.Date),
		zap.String("startTime", appt.StartTime),
		zap.String("channel", reminder.Channel))
	return nil
}
