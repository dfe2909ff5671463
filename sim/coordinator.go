package sim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/guilhemriera/Parallel-Ants-Project/domain"
	"github.com/guilhemriera/Parallel-Ants-Project/logger"
	"github.com/guilhemriera/Parallel-Ants-Project/sim/i"
)

const publishTimeout = 500 * time.Millisecond

// CoordinatorOption configures optional coordinator collaborators.
type CoordinatorOption func(*Coordinator)

// Coordinator is the non-computing process of the run. It folds per-worker
// delivery counts into the running total, assembles display snapshots from
// the latest worker reports, and fans them out to the configured sinks.
// It never blocks the compute workers.
type Coordinator struct {
	workers int
	counts  chan CountReport
	states  chan StateReport
	rows    int
	cols    int

	enc    SnapshotEncoder
	sinks  []i.SnapshotSink
	repo   i.RunRepo
	run    *domain.RunRecord
	logger logger.Logger

	mu         sync.RWMutex
	tick       int64
	total      int64
	firstFood  int64
	latest     *Snapshot
	lastAgents []AgentState
	seen       []bool
}

// Status is the monitoring view of a run.
type Status struct {
	Tick          int64 `json:"tick"`
	FoodDelivered int64 `json:"foodDelivered"`
	FirstFoodTick int64 `json:"firstFoodTick"`
	Workers       int   `json:"workers"`
}

// NewCoordinator creates a coordinator for the given number of compute
// workers and a field of rows x cols cells.
func NewCoordinator(workers, rows, cols int, run *domain.RunRecord, enc SnapshotEncoder, lg logger.Logger, options ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		workers:    workers,
		counts:     make(chan CountReport, workers*2),
		states:     make(chan StateReport, workers),
		rows:       rows,
		cols:       cols,
		enc:        enc,
		run:        run,
		logger:     lg,
		firstFood:  -1,
		lastAgents: make([]AgentState, workers),
		seen:       make([]bool, workers),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// WithSink adds a snapshot sink.
func WithSink(s i.SnapshotSink) CoordinatorOption {
	return func(c *Coordinator) {
		c.sinks = append(c.sinks, s)
	}
}

// WithRunRepo sets the run record repository.
func WithRunRepo(r i.RunRepo) CoordinatorOption {
	return func(c *Coordinator) {
		c.repo = r
	}
}

// CountsIn returns the channel workers report delivery counts on.
func (c *Coordinator) CountsIn() chan<- CountReport {
	return c.counts
}

// StatesIn returns the channel workers report display state on.
func (c *Coordinator) StatesIn() chan<- StateReport {
	return c.states
}

// CloseIntake signals that no worker will report again. Run drains and
// returns after this.
func (c *Coordinator) CloseIntake() {
	close(c.counts)
}

// Run consumes worker reports until the intake is closed or the context is
// cancelled, then persists the final run record.
func (c *Coordinator) Run(ctx context.Context) error {
	defer c.persistRun("final")
	for {
		select {
		case r, ok := <-c.counts:
			if !ok {
				return nil
			}
			c.handleCount(r)
		case r := <-c.states:
			c.handleState(r)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Coordinator) handleCount(r CountReport) {
	c.mu.Lock()
	c.total += int64(r.Delivered)
	if r.Tick > c.tick {
		c.tick = r.Tick
	}
	firstDelivery := r.Delivered > 0 && c.firstFood < 0
	if firstDelivery {
		c.firstFood = r.Tick
	}
	c.run.Ticks = c.tick
	c.run.FoodDelivered = c.total
	c.run.FirstFoodTick = c.firstFood
	c.mu.Unlock()

	if firstDelivery {
		c.logger.Info(fmt.Sprintf("first food delivered at tick %d by worker %d", r.Tick, r.Worker))
		c.persistRun("first delivery")
	}
}

func (c *Coordinator) handleState(r StateReport) {
	c.mu.Lock()
	c.lastAgents[r.Worker] = r.Agents
	c.seen[r.Worker] = true
	if r.Field == nil {
		c.mu.Unlock()
		return
	}

	// The rank-0 field report completes a display frame: the merged field
	// plus the most recent state of every worker that has reported so far.
	snap := &Snapshot{
		Tick:           r.Tick,
		TotalDelivered: c.total,
		Rows:           c.rows,
		Cols:           c.cols,
		Field:          r.Field,
	}
	for w, ok := range c.seen {
		if ok {
			snap.Agents = append(snap.Agents, c.lastAgents[w])
		}
	}
	c.latest = snap
	sinks := c.sinks
	c.mu.Unlock()

	if len(sinks) == 0 {
		return
	}
	payload, err := c.enc.MarshalSnapshot(snap)
	if err != nil {
		c.logger.Error(fmt.Sprintf("encoding snapshot for tick %d: %v", snap.Tick, err))
		return
	}
	// Fire and forget: a slow sink only loses this frame.
	go func() {
		pubCtx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		for _, s := range sinks {
			if err := s.Publish(pubCtx, payload); err != nil {
				c.logger.Warning(fmt.Sprintf("publishing snapshot for tick %d: %v", snap.Tick, err))
			}
		}
	}()
}

func (c *Coordinator) persistRun(reason string) {
	if c.repo == nil {
		return
	}
	c.mu.RLock()
	record := *c.run
	c.mu.RUnlock()
	if err := c.repo.Save(&record); err != nil {
		c.logger.Warning(fmt.Sprintf("saving run record (%s): %v", reason, err))
	}
}

// Status returns the monitoring view of the run.
func (c *Coordinator) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Status{
		Tick:          c.tick,
		FoodDelivered: c.total,
		FirstFoodTick: c.firstFood,
		Workers:       c.workers,
	}
}

// LatestSnapshot returns the most recent display frame, or nil before the
// first one. The returned snapshot is shared and must not be mutated.
func (c *Coordinator) LatestSnapshot() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.latest
}
