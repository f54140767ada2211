package appointmentRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clinicops/database"
	"clinicops/models"
	"clinicops/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type MongoAppointmentRepo struct {
	coll *mongo.Collection
}

func NewMongoAppointmentRepo(db *mongo.Database) AppointmentRepository {
	repo := &MongoAppointmentRepo{coll: db.Collection("appointments")}
	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Error("Failed to create appointment indexes", zap.Error(err))
	}
	if err := repo.ensureActiveSlotIndex(); err != nil {
		utils.GetLogger().Error("Failed to create slot uniqueness index; concurrent double bookings are only guarded by the booking lock",
			zap.String("index", activeSlotIndexName), zap.Error(err))
	}
	return repo
}

const activeSlotIndexName = "uniq_active_slot"

func lookupIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "dentistId", Value: 1}, {Key: "date", Value: 1}, {Key: "startTime", Value: 1}}},
		{Keys: bson.D{{Key: "patientId", Value: 1}, {Key: "date", Value: -1}}},
	}
}

// activeSlotIndex is the slot uniqueness backstop: among scheduled, confirmed and completed
// appointments no two may share dentist, date and start time. $in inside a partial filter
// requires MongoDB 6.0+.
func activeSlotIndex() mongo.IndexModel {
	blocking := bson.A{models.StatusScheduled, models.StatusConfirmed, models.StatusCompleted}
	return mongo.IndexModel{
		Keys: bson.D{{Key: "dentistId", Value: 1}, {Key: "date", Value: 1}, {Key: "startTime", Value: 1}},
		Options: options.Index().
			SetName(activeSlotIndexName).
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"status": bson.M{"$in": blocking}}),
	}
}

func (r *MongoAppointmentRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := r.coll.Indexes().CreateMany(ctx, lookupIndexes()); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoAppointmentRepo) ensureActiveSlotIndex() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := r.coll.Indexes().CreateOne(ctx, activeSlotIndex()); err != nil {
		return fmt.Errorf("failed to create %s: %w", activeSlotIndexName, err)
	}
	return nil
}

func (r *MongoAppointmentRepo) Create(ctx context.Context, appt *models.Appointment) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, appt); err != nil {
		return fmt.Errorf("failed to create appointment: %w", database.WrapWriteError(err))
	}
	return nil
}

func (r *MongoAppointmentRepo) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var appt models.Appointment
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&appt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch appointment %s: %w", id, err)
	}
	return &appt, nil
}

func (r *MongoAppointmentRepo) ListByDentistAndDate(ctx context.Context, dentistID, date string) ([]models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "startTime", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"dentistId": dentistID, "date": date}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch appointments for %s on %s: %w", dentistID, date, err)
	}
	defer cursor.Close(ctx)

	var appts []models.Appointment
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, fmt.Errorf("failed to decode appointments: %w", err)
	}
	return appts, nil
}

func buildFilter(f models.AppointmentFilter) bson.M {
	filter := bson.M{}
	if f.DentistID != "" {
		filter["dentistId"] = f.DentistID
	}
	if f.PatientID != "" {
		filter["patientId"] = f.PatientID
	}
	if f.Date != "" {
		filter["date"] = f.Date
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	return filter
}

func (r *MongoAppointmentRepo) List(ctx context.Context, f models.AppointmentFilter, page utils.Pagination) ([]models.Appointment, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := buildFilter(f)
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count appointments: %w", err)
	}

	sort := bson.D{{Key: "date", Value: 1}, {Key: "startTime", Value: 1}}
	cursor, err := r.coll.Find(ctx, filter, page.FindOptions(sort))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list appointments: %w", err)
	}
	defer cursor.Close(ctx)

	appts := make([]models.Appointment, 0, page.Limit)
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, 0, fmt.Errorf("failed to decode appointments: %w", err)
	}
	return appts, total, nil
}

func (r *MongoAppointmentRepo) Update(ctx context.Context, appt *models.Appointment) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	read := appt.Version
	appt.Version = read + 1
	result, err := r.coll.ReplaceOne(ctx, bson.M{"id": appt.ID, "version": read}, appt)
	if err != nil {
		appt.Version = read
		return fmt.Errorf("failed to update appointment %s: %w", appt.ID, database.WrapWriteError(err))
	}
	if result.MatchedCount == 0 {
		appt.Version = read
		n, err := r.coll.CountDocuments(ctx, bson.M{"id": appt.ID})
		if err != nil {
			return fmt.Errorf("failed to check appointment %s: %w", appt.ID, err)
		}
		if n == 0 {
			return database.ErrNotFound
		}
		return database.ErrStale
	}
	return nil
}

func (r *MongoAppointmentRepo) AppendReminder(ctx context.Context, id string, reminder models.Reminder) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := r.coll.UpdateOne(ctx,
		bson.M{"id": id},
		bson.M{"$push": bson.M{"reminders": reminder}, "$inc": bson.M{"version": 1}},
	)
	if err != nil {
		return fmt.Errorf("failed to add reminder to appointment %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return database.ErrNotFound
	}
	return nil
}

// MarkReminderSent flips the embedded reminder addressed by reminderID.
func (r *MongoAppointmentRepo) MarkReminderSent(ctx context.Context, id, reminderID string, sentAt time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := r.coll.UpdateOne(ctx,
		bson.M{"id": id, "reminders.id": reminderID},
		bson.M{"$set": bson.M{"reminders.$.sent": true, "reminders.$.sentAt": sentAt}, "$inc": bson.M{"version": 1}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark reminder %s sent: %w", reminderID, err)
	}
	if result.MatchedCount == 0 {
		return database.ErrNotFound
	}
	return nil
}
