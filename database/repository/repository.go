package repository

import (
	appointmentRepo "clinicops/database/repository/appointment"
	dentistRepo "clinicops/database/repository/dentist"
	patientRepo "clinicops/database/repository/patient"
	sequenceRepo "clinicops/database/repository/sequence"
	userRepo "clinicops/database/repository/user"

	"go.mongodb.org/mongo-driver/mongo"
)

type UserRepository = userRepo.UserRepository

var NewMongoUserRepository = userRepo.NewMongoUserRepo

type PatientRepository = patientRepo.PatientRepository

var NewMongoPatientRepo = patientRepo.NewMongoPatientRepo

type DentistRepository = dentistRepo.DentistRepository

var NewMongoDentistRepo = dentistRepo.NewMongoDentistRepo

type AppointmentRepository = appointmentRepo.AppointmentRepository

var NewMongoAppointmentRepo = appointmentRepo.NewMongoAppointmentRepo

type Sequencer = sequenceRepo.Sequencer

var NewMongoSequencer = sequenceRepo.NewMongoSequencer

// Repositories groups every Mongo-backed store the services need.
type Repositories struct {
	Users        UserRepository
	Patients     PatientRepository
	Dentists     DentistRepository
	Appointments AppointmentRepository
	Sequences    Sequencer
}

// NewMongoRepositories builds all repositories over db, creating their indexes.
func NewMongoRepositories(db *mongo.Database) Repositories {
	return Repositories{
		Users:        NewMongoUserRepository(db),
		Patients:     NewMongoPatientRepo(db),
		Dentists:     NewMongoDentistRepo(db),
		Appointments: NewMongoAppointmentRepo(db),
		Sequences:    NewMongoSequencer(db),
	}
}
