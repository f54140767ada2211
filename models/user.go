package models

import "time"

// Role identifies what kind of account a user holds.
type Role string

const (
	RolePatient Role = "patient"
	RoleDentist Role = "dentist"
	RoleStaff   Role = "staff"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleDentist, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// User represents a platform account.
type User struct {
	ID           string    `bson:"id" json:"id"`
	Email        string    `bson:"email" json:"email"`
	Password     string    `bson:"-" json:"password,omitempty"`
	PasswordHash string    `bson:"passwordHash" json:"-"`
	TokenHash    string    `bson:"tokenHash,omitempty" json:"-"`
	Role         Role      `bson:"role" json:"role"`
	ProfileID    string    `bson:"profileId,omitempty" json:"profileId,omitempty"` // patient or dentist ID
	Active       bool      `bson:"active" json:"active"`
	LastLogin    time.Time `bson:"lastLogin,omitempty" json:"lastLogin,omitzero"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

// UserRegistration is the payload accepted by the register endpoint.
type UserRegistration struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	Role      Role   `json:"role" binding:"required"`
	ProfileID string `json:"profileId"`
}

// UserLogin is the payload accepted by the login endpoint.
type UserLogin struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
