package models

import "time"

type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusNoShow    AppointmentStatus = "no-show"
)

// Color is the display colour used by clinic dashboards for a status.
func (s AppointmentStatus) Color() string {
	switch s {
	case StatusScheduled:
		return "#2196F3"
	case StatusConfirmed:
		return "#4CAF50"
	case StatusCompleted:
		return "#9E9E9E"
	case StatusCancelled:
		return "#F44336"
	case StatusNoShow:
		return "#FF9800"
	}
	return "#000000"
}

// Blocking reports whether an appointment in this status occupies its interval.
func (s AppointmentStatus) Blocking() bool {
	return s != StatusCancelled && s != StatusNoShow
}

type AppointmentType string

const (
	TypeConsultation AppointmentType = "consultation"
	TypeCleaning     AppointmentType = "cleaning"
	TypeFilling      AppointmentType = "filling"
	TypeExtraction   AppointmentType = "extraction"
	TypeRootCanal    AppointmentType = "root-canal"
	TypeCheckup      AppointmentType = "checkup"
	TypeEmergency    AppointmentType = "emergency"
	TypeOther        AppointmentType = "other"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ActorRole is who performed a lifecycle action on an appointment.
type ActorRole string

const (
	ActorPatient ActorRole = "patient"
	ActorDentist ActorRole = "dentist"
	ActorStaff   ActorRole = "staff"
)

// BookingInterval is a date plus a half-open [StartTime, EndTime) window.
type BookingInterval struct {
	Date      string `bson:"date" json:"date" binding:"required"`           // "2006-01-02"
	StartTime string `bson:"startTime" json:"startTime" binding:"required"` // "HH:MM"
	EndTime   string `bson:"endTime" json:"endTime" binding:"required"`
}

type CancellationRecord struct {
	Reason       string    `bson:"reason" json:"reason"`
	CancelledBy  ActorRole `bson:"cancelledBy" json:"cancelledBy"`
	ActorID      string    `bson:"actorId,omitempty" json:"actorId,omitempty"`
	CancelledAt  time.Time `bson:"cancelledAt" json:"cancelledAt"`
	RefundAmount float64   `bson:"refundAmount" json:"refundAmount"`
}

type RescheduleRecord struct {
	OriginalDate      string    `bson:"originalDate" json:"originalDate"`
	OriginalStartTime string    `bson:"originalStartTime" json:"originalStartTime"`
	OriginalEndTime   string    `bson:"originalEndTime" json:"originalEndTime"`
	Reason            string    `bson:"reason" json:"reason"`
	RescheduledBy     ActorRole `bson:"rescheduledBy" json:"rescheduledBy"`
	ActorID           string    `bson:"actorId,omitempty" json:"actorId,omitempty"`
	RescheduledAt     time.Time `bson:"rescheduledAt" json:"rescheduledAt"`
}

type TreatmentRecord struct {
	Diagnosis     string    `bson:"diagnosis,omitempty" json:"diagnosis,omitempty"`
	Procedures    []string  `bson:"procedures,omitempty" json:"procedures,omitempty"`
	Prescriptions []string  `bson:"prescriptions,omitempty" json:"prescriptions,omitempty"`
	Notes         string    `bson:"notes,omitempty" json:"notes,omitempty"`
	Cost          float64   `bson:"cost" json:"cost"`
	FollowUpDate  string    `bson:"followUpDate,omitempty" json:"followUpDate,omitempty"`
	CompletedAt   time.Time `bson:"completedAt" json:"completedAt"`
}

// PaymentRecord stores recorded amounts only.
type PaymentRecord struct {
	Amount     float64 `bson:"amount" json:"amount"`
	AmountPaid float64 `bson:"amountPaid" json:"amountPaid"`
	Status     string  `bson:"status" json:"status"` // pending, partial, paid, refunded
	Method     string  `bson:"method,omitempty" json:"method,omitempty"`
}

// Reminder is an embedded reminder sub-record with a stable ID.
type Reminder struct {
	ID          string    `bson:"id" json:"id"`
	Channel     string    `bson:"channel" json:"channel"` // e.g. "sms", "email"
	ScheduledAt time.Time `bson:"scheduledAt" json:"scheduledAt"`
	Sent        bool      `bson:"sent" json:"sent"`
	SentAt      time.Time `bson:"sentAt,omitempty" json:"sentAt,omitzero"`
	TaskID      string    `bson:"taskId,omitempty" json:"taskId,omitempty"`
}

type Appointment struct {
	ID              string              `bson:"id" json:"id"` // e.g. APT202506020001
	DentistID       string              `bson:"dentistId" json:"dentistId"`
	PatientID       string              `bson:"patientId" json:"patientId"`
	Date            string              `bson:"date" json:"date"`
	StartTime       string              `bson:"startTime" json:"startTime"`
	EndTime         string              `bson:"endTime" json:"endTime"`
	Type            AppointmentType     `bson:"type" json:"type"`
	Status          AppointmentStatus   `bson:"status" json:"status"`
	Priority        Priority            `bson:"priority" json:"priority"`
	Notes           string              `bson:"notes,omitempty" json:"notes,omitempty"`
	Symptoms        []string            `bson:"symptoms,omitempty" json:"symptoms,omitempty"`
	Cancellation    *CancellationRecord `bson:"cancellation,omitempty" json:"cancellation,omitempty"`
	Reschedule      *RescheduleRecord   `bson:"reschedule,omitempty" json:"reschedule,omitempty"`
	RescheduleCount int                 `bson:"rescheduleCount" json:"rescheduleCount"`
	Treatment       *TreatmentRecord    `bson:"treatment,omitempty" json:"treatment,omitempty"`
	Payment         PaymentRecord       `bson:"payment" json:"payment"`
	Reminders       []Reminder          `bson:"reminders,omitempty" json:"reminders,omitempty"`
	ConfirmedAt     time.Time           `bson:"confirmedAt,omitempty" json:"confirmedAt,omitzero"`
	CreatedBy       string              `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt       time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time           `bson:"updatedAt" json:"updatedAt"`
	// Version is bumped by every write; updates only apply to the version they read.
	Version         int64               `bson:"version" json:"version"`
}

// Interval returns the appointment's booking interval.
func (a Appointment) Interval() BookingInterval {
	return BookingInterval{Date: a.Date, StartTime: a.StartTime, EndTime: a.EndTime}
}

// AppointmentView is the read model returned by the API.
type AppointmentView struct {
	Appointment
	StatusColor string `json:"statusColor"`
}

func NewAppointmentView(a Appointment) AppointmentView {
	return AppointmentView{Appointment: a, StatusColor: a.Status.Color()}
}

// BookAppointmentRequest is the payload for booking.
type BookAppointmentRequest struct {
	DentistID string          `json:"dentistId" binding:"required"`
	PatientID string          `json:"patientId"`
	Interval  BookingInterval `json:"interval" binding:"required"`
	Type      AppointmentType `json:"type"`
	Priority  Priority        `json:"priority"`
	Notes     string          `json:"notes"`
	Symptoms  []string        `json:"symptoms"`
	Amount    float64         `json:"amount"`
}

type CancelAppointmentRequest struct {
	Reason       string  `json:"reason" binding:"required"`
	RefundAmount float64 `json:"refundAmount"`
}

type RescheduleAppointmentRequest struct {
	Interval BookingInterval `json:"interval" binding:"required"`
	Reason   string          `json:"reason"`
}

type CompleteAppointmentRequest struct {
	Diagnosis     string   `json:"diagnosis"`
	Procedures    []string `json:"procedures"`
	Prescriptions []string `json:"prescriptions"`
	Notes         string   `json:"notes"`
	Cost          float64  `json:"cost"`
	FollowUpDate  string   `json:"followUpDate"`
	AmountPaid    float64  `json:"amountPaid"`
}

// AppointmentUpdate carries the optional fields of a general appointment edit.
type AppointmentUpdate struct {
	DentistID *string          `json:"dentistId,omitempty"`
	Date      *string          `json:"date,omitempty"`
	StartTime *string          `json:"startTime,omitempty"`
	EndTime   *string          `json:"endTime,omitempty"`
	Type      *AppointmentType `json:"type,omitempty"`
	Priority  *Priority        `json:"priority,omitempty"`
	Notes     *string          `json:"notes,omitempty"`
	Symptoms  *[]string        `json:"symptoms,omitempty"`
}

// TouchesSchedule reports whether the update changes dentist, date or time.
func (u AppointmentUpdate) TouchesSchedule() bool {
	return u.DentistID != nil || u.Date != nil || u.StartTime != nil || u.EndTime != nil
}

// AppointmentFilter narrows appointment listings.
type AppointmentFilter struct {
	DentistID string
	PatientID string
	Date      string
	Status    AppointmentStatus
}
