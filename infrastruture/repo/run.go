package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	dmn "github.com/beka-birhanu/vinom-maze/domain"
	"github.com/beka-birhanu/vinom-maze/service/i"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ i.RunRepo = &RunRepo{}

// RunRepo handles the persistence of exploration runs.
type RunRepo struct {
	collection *mongo.Collection
	timeout    time.Duration
}

// NewRunRepo creates a new RunRepo with the given MongoDB client, database name, and collection name.
func NewRunRepo(client *mongo.Client, dbName, collectionName string) *RunRepo {
	collection := client.Database(dbName).Collection(collectionName)
	return &RunRepo{
		collection: collection,
		timeout:    2 * time.Second,
	}
}

// Save inserts or replaces a run in the repository.
func (r *RunRepo) Save(ctx context.Context, run *dmn.Run) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	filter := bson.M{"_id": run.ID}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, filter, run, opts); err != nil {
		return fmt.Errorf("saving run %s: %w", run.ID, err)
	}

	return nil
}

// ByID retrieves a run by its ID.
// Returns dmn.ErrRunNotFound if the run does not exist.
func (r *RunRepo) ByID(ctx context.Context, id uuid.UUID) (*dmn.Run, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	filter := bson.M{"_id": id}
	var run dmn.Run
	if err := r.collection.FindOne(ctx, filter).Decode(&run); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, dmn.ErrRunNotFound
		}
		return nil, fmt.Errorf("loading run %s: %w", id, err)
	}
	return &run, nil
}
