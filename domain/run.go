// Package domain holds the persistent models of the application.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// RunRecord captures one simulation run: its parameters and the progress
// counters the coordinator folds across workers.
type RunRecord struct {
	ID        uuid.UUID `bson:"_id"`
	StartedAt time.Time `bson:"startedAt"`

	MazeRows int   `bson:"mazeRows"`
	MazeCols int   `bson:"mazeCols"`
	MazeSeed int64 `bson:"mazeSeed"`

	NbAnts          int     `bson:"nbAnts"`
	MaxLife         int     `bson:"maxLife"`
	Workers         int     `bson:"workers"`
	Alpha           float64 `bson:"alpha"`
	Beta            float64 `bson:"beta"`
	ExplorationCoef float64 `bson:"explorationCoef"`

	Ticks         int64 `bson:"ticks"`
	FoodDelivered int64 `bson:"foodDelivered"`
	FirstFoodTick int64 `bson:"firstFoodTick"` // -1 until the first delivery
}

// RunConfig carries the parameters recorded for a new run.
type RunConfig struct {
	MazeRows        int
	MazeCols        int
	MazeSeed        int64
	NbAnts          int
	MaxLife         int
	Workers         int
	Alpha           float64
	Beta            float64
	ExplorationCoef float64
}

// NewRun creates a run record with a fresh ID and zeroed counters.
func NewRun(cfg RunConfig) *RunRecord {
	return &RunRecord{
		ID:              uuid.New(),
		StartedAt:       time.Now(),
		MazeRows:        cfg.MazeRows,
		MazeCols:        cfg.MazeCols,
		MazeSeed:        cfg.MazeSeed,
		NbAnts:          cfg.NbAnts,
		MaxLife:         cfg.MaxLife,
		Workers:         cfg.Workers,
		Alpha:           cfg.Alpha,
		Beta:            cfg.Beta,
		ExplorationCoef: cfg.ExplorationCoef,
		FirstFoodTick:   -1,
	}
}
