package patientRepo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"clinicops/database"
	"clinicops/models"
	"clinicops/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type MongoPatientRepo struct {
	coll *mongo.Collection
}

func NewMongoPatientRepo(db *mongo.Database) PatientRepository {
	repo := &MongoPatientRepo{coll: db.Collection("patients")}
	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Error("Failed to create patient indexes", zap.Error(err))
	}
	return repo
}

func (r *MongoPatientRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetSparse(true)},
		{Keys: bson.D{{Key: "lastName", Value: 1}, {Key: "firstName", Value: 1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoPatientRepo) Create(ctx context.Context, patient *models.Patient) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, patient); err != nil {
		return fmt.Errorf("failed to create patient: %w", database.WrapWriteError(err))
	}
	return nil
}

func (r *MongoPatientRepo) GetByID(ctx context.Context, id string) (*models.Patient, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var patient models.Patient
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&patient); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch patient %s: %w", id, err)
	}
	return &patient, nil
}

func buildFilter(f models.PatientFilter) bson.M {
	filter := bson.M{}
	if f.Name != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(f.Name), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"firstName": rx},
			bson.M{"lastName": rx},
		}
	}
	if f.Active != nil {
		filter["active"] = *f.Active
	}
	return filter
}

func (r *MongoPatientRepo) List(ctx context.Context, f models.PatientFilter, page utils.Pagination) ([]models.Patient, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := buildFilter(f)
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count patients: %w", err)
	}

	cursor, err := r.coll.Find(ctx, filter, page.FindOptions(bson.D{{Key: "lastName", Value: 1}, {Key: "firstName", Value: 1}}))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list patients: %w", err)
	}
	defer cursor.Close(ctx)

	patients := make([]models.Patient, 0, page.Limit)
	if err := cursor.All(ctx, &patients); err != nil {
		return nil, 0, fmt.Errorf("failed to decode patients: %w", err)
	}
	return patients, total, nil
}

func (r *MongoPatientRepo) Update(ctx context.Context, patient *models.Patient) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := r.coll.ReplaceOne(ctx, bson.M{"id": patient.ID}, patient)
	if err != nil {
		return fmt.Errorf("failed to update patient %s: %w", patient.ID, err)
	}
	if result.MatchedCount == 0 {
		return database.ErrNotFound
	}
	return nil
}
