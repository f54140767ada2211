package models

import (
	"strings"
	"time"
)

// DateLayout is the calendar date format used for every stored date.
const DateLayout = "2006-01-02"

// WeeklyHoursRule is one recurring opening window for a weekday.
type WeeklyHoursRule struct {
	DayOfWeek int    `bson:"dayOfWeek" json:"dayOfWeek"` // 0=Sunday .. 6=Saturday
	StartTime string `bson:"startTime" json:"startTime"` // "HH:MM", 24h
	EndTime   string `bson:"endTime" json:"endTime"`
	Active    bool   `bson:"active" json:"active"`
}

// AbsenceInterval is a dentist time-off request. Only approved intervals block slots.
type AbsenceInterval struct {
	ID          string    `bson:"id" json:"id"`
	StartDate   string    `bson:"startDate" json:"startDate"` // inclusive
	EndDate     string    `bson:"endDate" json:"endDate"`     // inclusive
	Reason      string    `bson:"reason,omitempty" json:"reason,omitempty"`
	Approved    bool      `bson:"approved" json:"approved"`
	RequestedAt time.Time `bson:"requestedAt" json:"requestedAt"`
	ApprovedBy  string    `bson:"approvedBy,omitempty" json:"approvedBy,omitempty"`
	ApprovedAt  time.Time `bson:"approvedAt,omitempty" json:"approvedAt,omitzero"`
}

// SchedulingPolicy governs slot generation for a dentist.
type SchedulingPolicy struct {
	SlotDurationMinutes int `bson:"slotDurationMinutes" json:"slotDurationMinutes"`
	BufferMinutes       int `bson:"bufferMinutes" json:"bufferMinutes"`
}

// DefaultSchedulingPolicy is applied to dentists created without one.
var DefaultSchedulingPolicy = SchedulingPolicy{SlotDurationMinutes: 30, BufferMinutes: 0}

type Credential struct {
	ID          string `bson:"id" json:"id"`
	Title       string `bson:"title" json:"title" binding:"required"`
	Institution string `bson:"institution" json:"institution" binding:"required"`
	Year        int    `bson:"year" json:"year"`
}

// Dentist is the practitioner whose time is being scheduled.
type Dentist struct {
	ID              string            `bson:"id" json:"id"` // e.g. DEN0001
	UserID          string            `bson:"userId,omitempty" json:"userId,omitempty"`
	FirstName       string            `bson:"firstName" json:"firstName" binding:"required"`
	LastName        string            `bson:"lastName" json:"lastName" binding:"required"`
	Email           string            `bson:"email,omitempty" json:"email,omitempty"`
	Phone           string            `bson:"phone,omitempty" json:"phone,omitempty"`
	Specialization  string            `bson:"specialization" json:"specialization"`
	LicenseNumber   string            `bson:"licenseNumber" json:"licenseNumber" binding:"required"`
	Credentials     []Credential      `bson:"credentials,omitempty" json:"credentials,omitempty"`
	WeeklyHours     []WeeklyHoursRule `bson:"weeklyHours,omitempty" json:"weeklyHours,omitempty"`
	TimeOff         []AbsenceInterval `bson:"timeOff,omitempty" json:"timeOff,omitempty"`
	Policy          SchedulingPolicy  `bson:"policy" json:"policy"`
	ConsultationFee float64           `bson:"consultationFee" json:"consultationFee"`
	Active          bool              `bson:"active" json:"active"`
	CreatedAt       time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time         `bson:"updatedAt" json:"updatedAt"`
}

func (d Dentist) FullName() string {
	return strings.TrimSpace("Dr. " + d.FirstName + " " + d.LastName)
}

// TimeOffByID returns the index of the time-off entry with the given ID, or -1.
func (d Dentist) TimeOffByID(id string) int {
	for i, t := range d.TimeOff {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// DentistUpdate carries the optional fields of a dentist profile edit.
type DentistUpdate struct {
	FirstName       *string  `json:"firstName,omitempty"`
	LastName        *string  `json:"lastName,omitempty"`
	Email           *string  `json:"email,omitempty"`
	Phone           *string  `json:"phone,omitempty"`
	Specialization  *string  `json:"specialization,omitempty"`
	ConsultationFee *float64 `json:"consultationFee,omitempty"`
	Active          *bool    `json:"active,omitempty"`
}

// TimeOffRequest is the payload for requesting time off.
type TimeOffRequest struct {
	StartDate string `json:"startDate" binding:"required"`
	EndDate   string `json:"endDate" binding:"required"`
	Reason    string `json:"reason"`
}

// DentistFilter narrows dentist listings.
type DentistFilter struct {
	Specialization string
	Active         *bool
}
