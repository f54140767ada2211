package sequenceRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Sequencer hands out monotonically increasing numbers per named counter.
type Sequencer interface {
	Next(ctx context.Context, name string) (int64, error)
}

type counter struct {
	Name  string `bson:"_id"`
	Value int64  `bson:"value"`
}

// MongoSequencer keeps counters in the "counters" collection.
type MongoSequencer struct {
	coll *mongo.Collection
}

func NewMongoSequencer(db *mongo.Database) Sequencer {
	return &MongoSequencer{coll: db.Collection("counters")}
}

// Next atomically increments and returns the counter, creating it at 1.
func (s *MongoSequencer) Next(ctx context.Context, name string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var c counter
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"value": 1}},
		opts,
	).Decode(&c)
	if err != nil {
		return 0, fmt.Errorf("failed to advance counter %s: %w", name, err)
	}
	return c.Value, nil
}
