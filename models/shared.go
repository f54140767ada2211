package models

// ReminderPayload is the queued reminder task body.
type ReminderPayload struct {
	AppointmentID string `json:"appointmentId"`
	ReminderID    string `json:"reminderId"`
	PatientID     string `json:"patientId"`
	DentistID     string `json:"dentistId"`
	Date          string `json:"date"`      // interval at scheduling time, used to detect stale reminders
	StartTime     string `json:"startTime"` // "HH:MM"
	Channel       string `json:"channel"`
}

// Page is the envelope for paginated listings.
type Page[T any] struct {
	Items []T   `json:"items"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}
