package sim

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/guilhemriera/Parallel-Ants-Project/collective"
	"github.com/guilhemriera/Parallel-Ants-Project/colony"
	"github.com/guilhemriera/Parallel-Ants-Project/logger"
	"github.com/guilhemriera/Parallel-Ants-Project/maze"
)

var (
	ErrNoWorkers      = errors.New("at least one compute worker is required")
	ErrTooFewAnts     = errors.New("need at least one ant per worker")
	ErrPosOutOfBounds = errors.New("food or nest position outside the maze")
)

// Config holds the parameters of a simulation run.
type Config struct {
	Maze            *maze.Maze
	Food            colony.Pos
	Nest            colony.Pos
	NbAnts          int
	MaxLife         int
	Workers         int
	Alpha           float64
	Beta            float64
	ExplorationCoef float64
	MaxTicks        int64 // 0 = run until cancelled
}

// Runner wires worker shards, their field copies, and the merge collective,
// and drives them together with the coordinator for the length of a run.
type Runner struct {
	cfg     Config
	group   *collective.Group
	workers []*Worker
	coord   *Coordinator
	logger  logger.Logger
}

// NewRunner shards the ant population over the workers and builds the run
// topology. Shard sizes differ by at most one ant; seed bases are offset by
// shard start so no two ants anywhere share a random stream.
func NewRunner(cfg Config, coord *Coordinator, lg logger.Logger) (*Runner, error) {
	if cfg.Workers <= 0 {
		return nil, ErrNoWorkers
	}
	if cfg.NbAnts < cfg.Workers {
		return nil, ErrTooFewAnts
	}
	if !cfg.Maze.InBound(int(cfg.Food.Row), int(cfg.Food.Col)) || !cfg.Maze.InBound(int(cfg.Nest.Row), int(cfg.Nest.Col)) {
		return nil, ErrPosOutOfBounds
	}

	shape := (cfg.Maze.Height + 2) * (cfg.Maze.Width + 2)
	group, err := collective.NewGroup(cfg.Workers, shape, collective.MaxFold)
	if err != nil {
		return nil, err
	}

	r := &Runner{cfg: cfg, group: group, coord: coord, logger: lg}

	base := cfg.NbAnts / cfg.Workers
	rem := cfg.NbAnts % cfg.Workers
	seedBase := int64(0)
	for w := 0; w < cfg.Workers; w++ {
		size := base
		if w < rem {
			size++
		}

		shard, err := colony.NewColony(size, cfg.Nest, cfg.MaxLife, seedBase, cfg.ExplorationCoef)
		if err != nil {
			return nil, fmt.Errorf("building shard %d: %w", w, err)
		}
		seedBase += int64(size)

		party, err := group.Join()
		if err != nil {
			return nil, fmt.Errorf("joining collective for shard %d: %w", w, err)
		}

		r.workers = append(r.workers, &Worker{
			id:       w,
			maze:     cfg.Maze,
			colony:   shard,
			field:    colony.NewField(cfg.Maze.Height, cfg.Maze.Width, cfg.Food, cfg.Alpha, cfg.Beta),
			food:     cfg.Food,
			nest:     cfg.Nest,
			party:    party,
			maxTicks: cfg.MaxTicks,
			counts:   coord.CountsIn(),
			states:   coord.StatesIn(),
			logger:   lg,
		})
	}

	return r, nil
}

// Run starts the coordinator and all workers and blocks until the run ends:
// every worker completed its ticks, the context was cancelled, or a worker
// failed. A failure closes the collective so no peer stays blocked in the
// merge.
func (r *Runner) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	r.logger.Info(fmt.Sprintf("starting run: %s, %d ants over %d workers", r.cfg.Maze.Describe(), r.cfg.NbAnts, r.cfg.Workers))

	var coordWg sync.WaitGroup
	coordWg.Add(1)
	var coordErr error
	go func() {
		defer coordWg.Done()
		coordErr = r.coord.Run(context.Background())
	}()

	errs := make(chan error, len(r.workers))
	var wg sync.WaitGroup
	for _, w := range r.workers {
		wg.Add(1)
		go func(w *Worker) {
			defer wg.Done()
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errs <- err
				cancel()
				r.group.Close()
			}
		}(w)
	}
	wg.Wait()
	r.group.Close()

	// No worker reports again; let the coordinator drain and persist.
	r.coord.CloseIntake()
	coordWg.Wait()

	select {
	case err := <-errs:
		return err
	default:
	}
	if coordErr != nil && !errors.Is(coordErr, context.Canceled) {
		return coordErr
	}
	r.logger.Info("run finished")
	return nil
}
