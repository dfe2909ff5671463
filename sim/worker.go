package sim

import (
	"context"
	"fmt"

	"github.com/guilhemriera/Parallel-Ants-Project/collective"
	"github.com/guilhemriera/Parallel-Ants-Project/colony"
	"github.com/guilhemriera/Parallel-Ants-Project/logger"
	"github.com/guilhemriera/Parallel-Ants-Project/maze"
)

// CountReport carries one worker's food deliveries for a tick. Counts are
// handed off reliably: the running total must account for every delivery.
type CountReport struct {
	Worker    int
	Tick      int64
	Delivered int
}

// StateReport carries one worker's agent state for display, plus the merged
// field from the rank-0 worker. State reports are droppable.
type StateReport struct {
	Worker int
	Tick   int64
	Agents AgentState
	Field  []float64 // nil except from rank 0
}

// Worker owns one disjoint shard of ants and its local copy of the scent
// field. Per tick it advances the shard, joins the field-merge collective,
// evaporates, and reports to the coordinator.
type Worker struct {
	id       int
	maze     *maze.Maze
	colony   *colony.Colony
	field    *colony.Field
	food     colony.Pos
	nest     colony.Pos
	party    *collective.Party
	maxTicks int64
	counts   chan<- CountReport
	states   chan<- StateReport
	logger   logger.Logger
}

// Run executes ticks until the context is cancelled or maxTicks is reached.
// Ticks are atomic: cancellation is only observed at tick boundaries.
func (w *Worker) Run(ctx context.Context) error {
	for tick := int64(1); w.maxTicks == 0 || tick <= w.maxTicks; tick++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		delivered := w.colony.Advance(w.maze, w.food, w.nest, w.field)

		// Every compute worker blocks here until all have contributed and
		// all hold the identical merged field.
		if err := w.party.AllReduce(ctx, w.field.Raw()); err != nil {
			return fmt.Errorf("worker %d: merging scent field at tick %d: %w", w.id, tick, err)
		}

		w.field.Evaporate(w.food)

		// One-way hand-offs to the coordinator. The delivery count must
		// reach it; the display state may be dropped when the coordinator
		// lags, so a slow renderer never stalls the next tick.
		select {
		case w.counts <- CountReport{Worker: w.id, Tick: tick, Delivered: delivered}:
		case <-ctx.Done():
			return ctx.Err()
		}

		report := StateReport{
			Worker: w.id,
			Tick:   tick,
			Agents: AgentState{
				Worker:     w.id,
				Positions:  w.colony.Positions(),
				Ages:       w.colony.Ages(),
				Directions: w.colony.Directions(),
				Carrying:   w.colony.Carrying(),
			},
		}
		if w.party.Rank() == 0 {
			report.Field = w.field.Snapshot()
		}
		select {
		case w.states <- report:
		default:
		}
	}

	w.logger.Info(fmt.Sprintf("worker %d finished after %d ticks", w.id, w.maxTicks))
	return nil
}
