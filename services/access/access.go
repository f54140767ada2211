// Package access turns an authenticated account into an explicit set of capabilities.
// Middleware builds a Decision once per request and hands it to every service call;
// services never look at roles directly.
package access

import (
	"errors"

	"clinicops/models"
)

// ErrForbidden is returned when a decision lacks a required capability or ownership.
var ErrForbidden = errors.New("forbidden")

type Capability string

const (
	BookAppointment     Capability = "appointments:book"
	BookForAnyPatient   Capability = "appointments:book-any"
	ConfirmAppointment  Capability = "appointments:confirm"
	CompleteAppointment Capability = "appointments:complete"
	CancelAppointment   Capability = "appointments:cancel"
	ViewAllAppointments Capability = "appointments:view-all"
	ManageDentists      Capability = "dentists:manage"
	ApproveTimeOff      Capability = "dentists:approve-time-off"
	ManagePatients      Capability = "patients:manage"
	ViewAllPatients     Capability = "patients:view-all"
	ManageUsers         Capability = "users:manage"
)

var roleCapabilities = map[models.Role][]Capability{
	models.RolePatient: {BookAppointment, CancelAppointment},
	models.RoleDentist: {
		BookAppointment, BookForAnyPatient, ConfirmAppointment, CompleteAppointment,
		CancelAppointment, ViewAllPatients,
	},
	models.RoleStaff: {
		BookAppointment, BookForAnyPatient, ConfirmAppointment, CompleteAppointment,
		CancelAppointment, ViewAllAppointments, ManagePatients, ViewAllPatients,
	},
	models.RoleAdmin: {
		BookAppointment, BookForAnyPatient, ConfirmAppointment, CompleteAppointment,
		CancelAppointment, ViewAllAppointments, ManageDentists, ApproveTimeOff,
		ManagePatients, ViewAllPatients, ManageUsers,
	},
}

// Decision is the authorization outcome for one caller.
type Decision struct {
	UserID       string
	Role         models.Role
	ProfileID    string
	Capabilities map[Capability]bool
}

// ForUser derives the capability set of an account from its role.
func ForUser(userID string, role models.Role, profileID string) Decision {
	caps := make(map[Capability]bool)
	for _, c := range roleCapabilities[role] {
		caps[c] = true
	}
	return Decision{UserID: userID, Role: role, ProfileID: profileID, Capabilities: caps}
}

// System is the decision used by background jobs.
func System() Decision {
	return ForUser("system", models.RoleAdmin, "")
}

func (d Decision) Can(c Capability) bool {
	return d.Capabilities[c]
}

// Require returns ErrForbidden unless the decision holds c.
func (d Decision) Require(c Capability) error {
	if !d.Can(c) {
		return ErrForbidden
	}
	return nil
}

// OwnsPatient is true for the patient account linked to patientID.
func (d Decision) OwnsPatient(patientID string) bool {
	return d.Role == models.RolePatient && d.ProfileID != "" && d.ProfileID == patientID
}

// OwnsDentist is true for the dentist account linked to dentistID.
func (d Decision) OwnsDentist(dentistID string) bool {
	return d.Role == models.RoleDentist && d.ProfileID != "" && d.ProfileID == dentistID
}

// CanSeePatient allows staff-level viewers and the patient themself.
func (d Decision) CanSeePatient(patientID string) bool {
	return d.Can(ViewAllPatients) || d.OwnsPatient(patientID)
}

// CanSeeAppointment allows full viewers and either party of the appointment.
func (d Decision) CanSeeAppointment(a models.Appointment) bool {
	return d.Can(ViewAllAppointments) || d.OwnsPatient(a.PatientID) || d.OwnsDentist(a.DentistID)
}

// ActorRole maps the caller to the role recorded on lifecycle actions.
func (d Decision) ActorRole() models.ActorRole {
	switch d.Role {
	case models.RolePatient:
		return models.ActorPatient
	case models.RoleDentist:
		return models.ActorDentist
	default:
		return models.ActorStaff
	}
}
