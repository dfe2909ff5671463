package repo

import (
	"context"
	"errors"
	"time"

	dmn "github.com/guilhemriera/Parallel-Ants-Project/domain"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RunRepo handles the persistence of simulation run records.
type RunRepo struct {
	collection *mongo.Collection
}

// NewRunRepo creates a new RunRepo with the given MongoDB client, database name, and collection name.
func NewRunRepo(client *mongo.Client, dbName, collectionName string) *RunRepo {
	collection := client.Database(dbName).Collection(collectionName)
	return &RunRepo{
		collection: collection,
	}
}

// Save inserts or updates a run record in the repository.
// If the run already exists, it updates the existing record.
// If the run does not exist, it adds a new record.
func (r *RunRepo) Save(run *dmn.RunRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	filter := bson.M{"_id": run.ID}
	update := bson.M{
		"$set": bson.M{
			"startedAt":       run.StartedAt,
			"mazeRows":        run.MazeRows,
			"mazeCols":        run.MazeCols,
			"mazeSeed":        run.MazeSeed,
			"nbAnts":          run.NbAnts,
			"maxLife":         run.MaxLife,
			"workers":         run.Workers,
			"alpha":           run.Alpha,
			"beta":            run.Beta,
			"explorationCoef": run.ExplorationCoef,
			"ticks":           run.Ticks,
			"foodDelivered":   run.FoodDelivered,
			"firstFoodTick":   run.FirstFoodTick,
			"updatedAt":       time.Now(),
		},
	}

	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return errors.New("unexpected error: " + err.Error())
	}

	return nil
}

// ByID retrieves a run record by its ID.
// Returns an error if the run is not found or if an unexpected error occurs.
func (r *RunRepo) ByID(id uuid.UUID) (*dmn.RunRecord, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	filter := bson.M{"_id": id}
	var run dmn.RunRecord
	if err := r.collection.FindOne(ctx, filter).Decode(&run); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.New("run not found")
		}
		return nil, errors.New("unexpected error: " + err.Error())
	}
	return &run, nil
}
