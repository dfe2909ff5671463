package sim_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/guilhemriera/Parallel-Ants-Project/colony"
	"github.com/guilhemriera/Parallel-Ants-Project/domain"
	"github.com/guilhemriera/Parallel-Ants-Project/logger"
	"github.com/guilhemriera/Parallel-Ants-Project/sim"
	"github.com/guilhemriera/Parallel-Ants-Project/sim/jsonenc"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// chanSink delivers published payloads to the test goroutine.
type chanSink struct {
	payloads chan []byte
}

func (s *chanSink) Publish(_ context.Context, payload []byte) error {
	select {
	case s.payloads <- payload:
	default:
	}
	return nil
}

// memRepo records every saved run state.
type memRepo struct {
	mu    sync.Mutex
	saved []domain.RunRecord
}

func (r *memRepo) Save(run *domain.RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, *run)
	return nil
}

func (r *memRepo) ByID(id uuid.UUID) (*domain.RunRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.saved {
		if r.saved[i].ID == id {
			return &r.saved[i], nil
		}
	}
	return nil, errors.New("run not found")
}

func (r *memRepo) last() (domain.RunRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.saved) == 0 {
		return domain.RunRecord{}, false
	}
	return r.saved[len(r.saved)-1], true
}

func testLogger(t *testing.T) logger.Logger {
	lg, err := logger.New("TEST", "", io.Discard)
	assert.NoError(t, err)
	return lg
}

func TestCoordinator(t *testing.T) {
	run := domain.NewRun(domain.RunConfig{MazeRows: 3, MazeCols: 3, Workers: 2})
	sink := &chanSink{payloads: make(chan []byte, 4)}
	repo := &memRepo{}

	coord := sim.NewCoordinator(2, 3, 3, run, &jsonenc.JSON{}, testLogger(t),
		sim.WithSink(sink), sim.WithRunRepo(repo))

	var wg sync.WaitGroup
	wg.Add(1)
	var runErr error
	go func() {
		defer wg.Done()
		runErr = coord.Run(context.Background())
	}()

	// Two workers report tick 1; the second one delivers.
	coord.CountsIn() <- sim.CountReport{Worker: 0, Tick: 1, Delivered: 0}
	coord.CountsIn() <- sim.CountReport{Worker: 1, Tick: 1, Delivered: 2}

	// Worker 1's agents arrive first, then the rank-0 report carrying the
	// merged field completes a display frame.
	agents := func(w int) sim.AgentState {
		return sim.AgentState{
			Worker:     w,
			Positions:  []colony.Pos{{Row: 0, Col: 0}},
			Ages:       []int32{1},
			Directions: []int8{colony.DirEast},
			Carrying:   []bool{false},
		}
	}
	coord.StatesIn() <- sim.StateReport{Worker: 1, Tick: 1, Agents: agents(1)}
	coord.StatesIn() <- sim.StateReport{Worker: 0, Tick: 1, Agents: agents(0), Field: make([]float64, 25)}

	t.Run("Publishes the assembled frame to the sink", func(t *testing.T) {
		select {
		case payload := <-sink.payloads:
			snap, err := (&jsonenc.JSON{}).UnmarshalSnapshot(payload)
			assert.NoError(t, err)
			assert.Equal(t, int64(1), snap.Tick)
			assert.Equal(t, 3, snap.Rows)
			assert.Len(t, snap.Field, 25)
			assert.Len(t, snap.Agents, 2)
		case <-time.After(2 * time.Second):
			t.Fatal("no snapshot published")
		}
	})

	coord.CloseIntake()
	wg.Wait()
	assert.NoError(t, runErr)

	t.Run("Folds counts into the run totals", func(t *testing.T) {
		status := coord.Status()
		assert.Equal(t, int64(1), status.Tick)
		assert.Equal(t, int64(2), status.FoodDelivered)
		assert.Equal(t, int64(1), status.FirstFoodTick)
		assert.Equal(t, 2, status.Workers)
	})

	t.Run("Keeps the latest display frame", func(t *testing.T) {
		snap := coord.LatestSnapshot()
		assert.NotNil(t, snap)
		assert.Equal(t, int64(1), snap.Tick)
	})

	t.Run("Persists the final run record", func(t *testing.T) {
		record, ok := repo.last()
		assert.True(t, ok)
		assert.Equal(t, int64(2), record.FoodDelivered)
		assert.Equal(t, int64(1), record.FirstFoodTick)
	})
}

func TestCoordinatorWithoutFirstDelivery(t *testing.T) {
	run := domain.NewRun(domain.RunConfig{MazeRows: 3, MazeCols: 3, Workers: 1})
	coord := sim.NewCoordinator(1, 3, 3, run, &jsonenc.JSON{}, testLogger(t))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = coord.Run(context.Background())
	}()

	coord.CountsIn() <- sim.CountReport{Worker: 0, Tick: 5, Delivered: 0}
	coord.CloseIntake()
	wg.Wait()

	status := coord.Status()
	assert.Equal(t, int64(5), status.Tick)
	assert.Zero(t, status.FoodDelivered)
	assert.Equal(t, int64(-1), status.FirstFoodTick, "first food tick stays unset until a delivery")
	assert.Nil(t, coord.LatestSnapshot())
}
