package dentistRepo

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

type MongoDentistRepo struct {
	coll *mongo.Collection
}

func NewMongoDentistRepo(db *mongo.Database) DentistRepository {
	repo := &MongoDentistRepo{coll: db.Collection("dentists")}
	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Error("Failed to create dentist indexes", zap.Error(err))
	}
	return repo
}

func (r *MongoDentistRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "licenseNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "specialization", Value: 1}, {Key: "active", Value: 1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoDentistRepo) Create(ctx context.Context, dentist *models.Dentist) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, dentist); err != nil {
		return fmt.Errorf("failed to create dentist: %w", database.WrapWriteError(err))
	}
	return nil
}

func (r *MongoDentistRepo) GetByID(ctx context.Context, id string) (*models.Dentist, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var dentist models.Dentist
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&dentist); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch dentist %s: %w", id, err)
	}
	return &dentist, nil
}

func buildFilter(f models.DentistFilter) bson.M {
	filter := bson.M{}
	if f.Specialization != "" {
		filter["specialization"] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(f.Specialization) + "$", Options: "i"}
	}
	if f.Active != nil {
		filter["active"] = *f.Active
	}
	return filter
}

func (r *MongoDentistRepo) List(ctx context.Context, f models.DentistFilter, page utils.Pagination) ([]models.Dentist, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := buildFilter(f)
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count dentists: %w", err)
	}

	cursor, err := r.coll.Find(ctx, filter, page.FindOptions(bson.D{{Key: "lastName", Value: 1}, {Key: "id", Value: 1}}))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list dentists: %w", err)
	}
	defer cursor.Close(ctx)

	dentists := make([]models.Dentist, 0, page.Limit)
	if err := cursor.All(ctx, &dentists); err != nil {
		return nil, 0, fmt.Errorf("failed to decode dentists: %w", err)
	}
	return dentists, total, nil
}

// Update replaces the whole dentist document, embedded schedule included.
func (r *MongoDentistRepo) Update(ctx context.Context, dentist *models.Dentist) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := r.coll.ReplaceOne(ctx, bson.M{"id": dentist.ID}, dentist)
	if err != nil {
		return fmt.Errorf("failed to update dentist %s: %w", dentist.ID, database.WrapWriteError(err))
	}
	if result.MatchedCount == 0 {
		return database.ErrNotFound
	}
	return nil
}
