package models

import (
	"strings"
	"time"
)

// Address is a postal address embedded in profiles.
type Address struct {
	Street  string `bson:"street,omitempty" json:"street,omitempty"`
	City    string `bson:"city,omitempty" json:"city,omitempty"`
	State   string `bson:"state,omitempty" json:"state,omitempty"`
	ZipCode string `bson:"zipCode,omitempty" json:"zipCode,omitempty"`
	Country string `bson:"country,omitempty" json:"country,omitempty"`
}

// Full joins the non-empty address parts, e.g. "12 Main St, Springfield, IL 62701, US".
func (a Address) Full() string {
	stateZip := strings.TrimSpace(a.State + " " + a.ZipCode)
	var parts []string
	for _, p := range []string{a.Street, a.City, stateZip, a.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

type EmergencyContact struct {
	Name         string `bson:"name" json:"name"`
	Relationship string `bson:"relationship" json:"relationship"`
	Phone        string `bson:"phone" json:"phone"`
}

type Insurance struct {
	Provider     string `bson:"provider" json:"provider"`
	PolicyNumber string `bson:"policyNumber" json:"policyNumber"`
	GroupNumber  string `bson:"groupNumber,omitempty" json:"groupNumber,omitempty"`
}

// Patient is the subject side of an appointment.
type Patient struct {
	ID               string            `bson:"id" json:"id"` // e.g. PAT000001
	UserID           string            `bson:"userId,omitempty" json:"userId,omitempty"`
	FirstName        string            `bson:"firstName" json:"firstName" binding:"required"`
	LastName         string            `bson:"lastName" json:"lastName" binding:"required"`
	DateOfBirth      string            `bson:"dateOfBirth" json:"dateOfBirth" binding:"required"` // "2006-01-02"
	Gender           string            `bson:"gender,omitempty" json:"gender,omitempty"`
	Phone            string            `bson:"phone" json:"phone" binding:"required"`
	Email            string            `bson:"email,omitempty" json:"email,omitempty"`
	Address          Address           `bson:"address" json:"address"`
	EmergencyContact *EmergencyContact `bson:"emergencyContact,omitempty" json:"emergencyContact,omitempty"`
	MedicalHistory   []string          `bson:"medicalHistory,omitempty" json:"medicalHistory,omitempty"`
	Allergies        []string          `bson:"allergies,omitempty" json:"allergies,omitempty"`
	Insurance        *Insurance        `bson:"insurance,omitempty" json:"insurance,omitempty"`
	Active           bool              `bson:"active" json:"active"`
	CreatedAt        time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time         `bson:"updatedAt" json:"updatedAt"`
}

func (p Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Age returns the patient's age in whole years at now, or -1 when the date of birth
// cannot be parsed.
func (p Patient) Age(now time.Time) int {
	dob, err := time.Parse(DateLayout, p.DateOfBirth)
	if err != nil {
		return -1
	}
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return age
}

// PatientView is the read model returned by the API, with derived fields filled in.
type PatientView struct {
	Patient
	FullName    string `json:"fullName"`
	Age         int    `json:"age"`
	FullAddress string `json:"fullAddress"`
}

func NewPatientView(p Patient, now time.Time) PatientView {
	return PatientView{
		Patient:     p,
		FullName:    p.FullName(),
		Age:         p.Age(now),
		FullAddress: p.Address.Full(),
	}
}

// PatientUpdate carries the optional fields of a patient edit.
type PatientUpdate struct {
	FirstName        *string           `json:"firstName,omitempty"`
	LastName         *string           `json:"lastName,omitempty"`
	DateOfBirth      *string           `json:"dateOfBirth,omitempty"`
	Gender           *string           `json:"gender,omitempty"`
	Phone            *string           `json:"phone,omitempty"`
	Email            *string           `json:"email,omitempty"`
	Address          *Address          `json:"address,omitempty"`
	EmergencyContact *EmergencyContact `json:"emergencyContact,omitempty"`
	MedicalHistory   *[]string         `json:"medicalHistory,omitempty"`
	Allergies        *[]string         `json:"allergies,omitempty"`
	Insurance        *Insurance        `json:"insurance,omitempty"`
}

// PatientFilter narrows patient listings. Name matches first or last name, case-insensitive.
type PatientFilter struct {
	Name   string
	Active *bool
}
