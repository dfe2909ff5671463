/*
Package colony implements the per-tick state-transition engine of the ant
simulation and its coupling to the shared scent field.

Ants are not individualized for performance reasons: the whole batch lives in
columnar arrays indexed by a stable ant identity, and every per-tick
transition runs as a pass over filtered index sets rather than per-ant
objects. Each ant carries its own pseudo-random seed advanced by the linear
recurrence seed = 16807*seed mod 2147483647; the recurrence is load-bearing
for reproducibility and must not be substituted with another generator.
*/
package colony

import (
	"errors"
	"fmt"

	"github.com/guilhemriera/Parallel-Ants-Project/maze"
)

const (
	lcgMultiplier int64 = 16807
	lcgModulus    int64 = 2147483647
)

var (
	ErrNoAnts         = errors.New("colony needs at least one ant")
	ErrInvalidMaxLife = errors.New("max life must be positive")
)

// nextSeed advances an ant's pseudo-random seed.
func nextSeed(s int64) int64 {
	return (lcgMultiplier * s) % lcgModulus
}

// Colony is the columnar state of one shard of ants. Indices 0..Len()-1 are
// stable ant identities for the run. The path history is an arena of
// fixed-size rows: hist[i*stride+age] is ant i's position at the given age,
// and the row at the current age is always the ant's current cell.
type Colony struct {
	explorationCoef float64
	stride          int

	seeds     []int64
	loaded    []bool
	age       []int32
	lifespans []int32
	dirs      []int8
	hist      []Pos
}

// NewColony builds a colony of nbAnts ants sitting at the nest. Seeds are
// seedBase+i+1 so shards with disjoint seed bases never share a random
// stream. Each ant's lifespan is derived from its first seed advance and
// falls in (0.75, 1.0] of maxLife.
func NewColony(nbAnts int, nest Pos, maxLife int, seedBase int64, explorationCoef float64) (*Colony, error) {
	if nbAnts <= 0 {
		return nil, ErrNoAnts
	}
	if maxLife <= 0 {
		return nil, ErrInvalidMaxLife
	}

	c := &Colony{
		explorationCoef: explorationCoef,
		stride:          maxLife + 1,
		seeds:           make([]int64, nbAnts),
		loaded:          make([]bool, nbAnts),
		age:             make([]int32, nbAnts),
		lifespans:       make([]int32, nbAnts),
		dirs:            make([]int8, nbAnts),
		hist:            make([]Pos, nbAnts*(maxLife+1)),
	}

	for i := 0; i < nbAnts; i++ {
		c.seeds[i] = nextSeed(seedBase + int64(i) + 1)
		u := float64(c.seeds[i]) / float64(lcgModulus)
		c.lifespans[i] = int32(maxLife) - int32(float64(maxLife)*u)/4
		c.dirs[i] = DirNone
		c.hist[i*c.stride] = nest
	}

	return c, nil
}

// Len returns the number of ants in the shard.
func (c *Colony) Len() int {
	return len(c.seeds)
}

// pos returns ant i's current cell.
func (c *Colony) pos(i int) Pos {
	return c.hist[i*c.stride+int(c.age[i])]
}

// setNext records ant i's next position at age+1. A position outside the
// maze means the transition logic is corrupt; aborting beats silently
// clamping a broken path history.
func (c *Colony) setNext(i int, np Pos, m *maze.Maze) {
	if !m.InBound(int(np.Row), int(np.Col)) {
		panic(fmt.Sprintf("colony: ant %d moved out of bounds to (%d,%d)", i, np.Row, np.Col))
	}
	c.hist[i*c.stride+int(c.age[i])+1] = np
}

// Advance applies one simulation tick to the whole batch: loaded ants
// retrace their recorded path one step toward the nest, unloaded ants
// explore or follow scent, and every ant reinforces the field at its cell
// against a pre-deposit snapshot. It returns the number of food deliveries
// completed this tick.
func (c *Colony) Advance(m *maze.Maze, food, nest Pos, field *Field) int {
	var loadedIdx, unloadedIdx []int
	for i := range c.loaded {
		if c.loaded[i] {
			loadedIdx = append(loadedIdx, i)
		} else {
			unloadedIdx = append(unloadedIdx, i)
		}
	}

	delivered := 0
	if len(loadedIdx) > 0 {
		delivered = c.returnToNest(loadedIdx, nest)
	}
	if len(unloadedIdx) > 0 {
		c.explore(unloadedIdx, m, food, nest, field)
	}
	c.deposit(m, field)
	return delivered
}

// returnToNest walks loaded ants one step backward along their recorded
// path. An ant arriving at the nest drops its food and restarts from age 0.
func (c *Colony) returnToNest(loadedIdx []int, nest Pos) int {
	delivered := 0
	for _, i := range loadedIdx {
		if c.age[i] <= 0 {
			panic(fmt.Sprintf("colony: loaded ant %d has no path left to retrace", i))
		}
		c.age[i]--
		if c.pos(i) == nest {
			c.loaded[i] = false
			c.age[i] = 0
			delivered++
		}
	}
	return delivered
}

// explore moves every unloaded ant one step, either at random or toward the
// strongest neighboring scent, then ages the batch and handles end-of-life
// resets and food pickup.
func (c *Colony) explore(unloadedIdx []int, m *maze.Maze, food, nest Pos, field *Field) {
	for _, i := range unloadedIdx {
		c.seeds[i] = nextSeed(c.seeds[i])
	}

	// Exit-gated neighbor scents at each unloaded ant's cell. A closed
	// direction contributes zero.
	n := c.Len()
	scents := make([][4]float64, n)
	best := make([]float64, n)
	for _, i := range unloadedIdx {
		p := c.pos(i)
		mask := m.ExitMask(int(p.Row), int(p.Col))
		for d := 0; d < 4; d++ {
			if mask&maskBits[d] == 0 {
				continue
			}
			v := field.At(int(p.Row)+int(rowDeltas[d]), int(p.Col)+int(colDeltas[d]))
			scents[i][d] = v
			if v > best[i] {
				best[i] = v
			}
		}
	}

	// Ants explore at random by choice, or when no scent can guide them.
	var exploring, following []int
	for _, i := range unloadedIdx {
		choice := float64(c.seeds[i]) / float64(lcgModulus)
		if choice <= c.explorationCoef || best[i] == 0 {
			exploring = append(exploring, i)
		} else {
			following = append(following, i)
		}
	}

	// Random exploration: retry until a valid direction comes up. A move is
	// invalid through a wall, or backward while other exits exist; the
	// no-U-turn rule is waived at dead ends, so the loop always terminates.
	pending := exploring
	for len(pending) > 0 {
		var retry []int
		for _, i := range pending {
			c.seeds[i] = nextSeed(c.seeds[i])
			dir := int8(c.seeds[i] % 4)
			p := c.pos(i)
			row, col := int(p.Row), int(p.Col)

			valid := m.HasExit(row, col, maskBits[dir]) &&
				(dir != reverse(c.dirs[i]) || m.CountExits(row, col) == 1)
			if !valid {
				retry = append(retry, i)
				continue
			}

			c.setNext(i, Pos{Row: p.Row + rowDeltas[dir], Col: p.Col + colDeltas[dir]}, m)
			c.dirs[i] = dir
		}
		pending = retry
	}

	// Scent following: apply the delta of every direction tying for the
	// strongest scent at once. Ties deliberately move diagonally; the
	// heading is left unchanged since a combined step has no single
	// direction.
	for _, i := range following {
		p := c.pos(i)
		np := p
		for d := 0; d < 4; d++ {
			if scents[i][d] == best[i] {
				np.Row += rowDeltas[d]
				np.Col += colDeltas[d]
			}
		}
		c.setNext(i, np, m)
	}

	for _, i := range unloadedIdx {
		c.age[i]++
	}

	// Ants at the end of their life restart from the nest.
	for i := 0; i < n; i++ {
		if c.age[i] == c.lifespans[i] {
			c.age[i] = 0
			c.hist[i*c.stride] = nest
			c.dirs[i] = DirNone
		}
	}

	// Ants standing on the food cell pick up a unit of food. They keep
	// their age and history so the return trip can retrace the path.
	for _, i := range unloadedIdx {
		if c.pos(i) == food {
			c.loaded[i] = true
		}
	}
}

// deposit reinforces the field at every ant's current cell. All reads go
// through a snapshot taken before the first deposit, so deposit order within
// a tick is irrelevant.
func (c *Colony) deposit(m *maze.Maze, field *Field) {
	snap := field.Snapshot()
	for i := 0; i < c.Len(); i++ {
		p := c.pos(i)
		mask := m.ExitMask(int(p.Row), int(p.Col))
		var exits [4]bool
		for d := 0; d < 4; d++ {
			exits[d] = mask&maskBits[d] != 0
		}
		field.Deposit(p, exits, snap)
	}
}

// Positions returns a copy of every ant's current cell.
func (c *Colony) Positions() []Pos {
	out := make([]Pos, c.Len())
	for i := range out {
		out[i] = c.pos(i)
	}
	return out
}

// Ages returns a copy of every ant's age.
func (c *Colony) Ages() []int32 {
	out := make([]int32, c.Len())
	copy(out, c.age)
	return out
}

// Directions returns a copy of every ant's last heading.
func (c *Colony) Directions() []int8 {
	out := make([]int8, c.Len())
	copy(out, c.dirs)
	return out
}

// Carrying returns a copy of every ant's loaded flag.
func (c *Colony) Carrying() []bool {
	out := make([]bool, c.Len())
	copy(out, c.loaded)
	return out
}
