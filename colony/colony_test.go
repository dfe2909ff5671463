package colony

import (
	"testing"

	"github.com/guilhemriera/Parallel-Ants-Project/maze"
	"github.com/stretchr/testify/assert"
)

func TestNextSeed(t *testing.T) {
	// The recurrence is load-bearing for reproducibility, so pin its exact
	// output.
	assert.Equal(t, int64(16807), nextSeed(1))
	assert.Equal(t, int64(282475249), nextSeed(16807))
	assert.Equal(t, int64(16807), nextSeed(2147483648)) // wraps past the modulus
}

func TestNewColony(t *testing.T) {
	nest := Pos{Row: 0, Col: 0}

	t.Run("Rejects empty colony", func(t *testing.T) {
		_, err := NewColony(0, nest, 100, 0, 0)
		assert.ErrorIs(t, err, ErrNoAnts)
	})

	t.Run("Rejects non-positive max life", func(t *testing.T) {
		_, err := NewColony(5, nest, 0, 0, 0)
		assert.ErrorIs(t, err, ErrInvalidMaxLife)
	})

	t.Run("Lifespans fall in the top quarter of max life", func(t *testing.T) {
		maxLife := 500
		c, err := NewColony(50, nest, maxLife, 0, 0)
		assert.NoError(t, err)

		for i, l := range c.lifespans {
			assert.Greater(t, l, int32(3*maxLife/4), "ant %d", i)
			assert.LessOrEqual(t, l, int32(maxLife), "ant %d", i)
		}
	})

	t.Run("Disjoint seed bases give disjoint seeds", func(t *testing.T) {
		a, err := NewColony(5, nest, 100, 0, 0)
		assert.NoError(t, err)
		b, err := NewColony(5, nest, 100, 5, 0)
		assert.NoError(t, err)

		seen := make(map[int64]bool)
		for _, s := range append(append([]int64{}, a.seeds...), b.seeds...) {
			assert.False(t, seen[s], "seed %d reused across shards", s)
			seen[s] = true
		}
	})

	t.Run("Ants start at the nest with no heading", func(t *testing.T) {
		c, err := NewColony(3, Pos{Row: 2, Col: 1}, 100, 0, 0)
		assert.NoError(t, err)

		for _, p := range c.Positions() {
			assert.Equal(t, Pos{Row: 2, Col: 1}, p)
		}
		for _, d := range c.Directions() {
			assert.Equal(t, int8(DirNone), d)
		}
	})
}

func TestColonyAdvance(t *testing.T) {
	t.Run("Exploring ants stay in bounds and never U-turn", func(t *testing.T) {
		m, err := maze.NewOpen(7, 7)
		assert.NoError(t, err)
		nest := Pos{Row: 3, Col: 3}
		food := Pos{Row: 6, Col: 6}
		field := NewField(7, 7, food, 0.9, 0.99)

		// explorationCoef 1 forces the random branch every tick.
		c, err := NewColony(8, nest, 300, 0, 1.0)
		assert.NoError(t, err)

		prev := c.Positions()
		prevPrev := make([]Pos, len(prev))
		prevAges := c.Ages()
		copy(prevPrev, prev)

		for tick := 0; tick < 200; tick++ {
			c.Advance(m, food, nest, field)

			positions := c.Positions()
			ages := c.Ages()
			for i, p := range positions {
				assert.True(t, m.InBound(int(p.Row), int(p.Col)), "ant %d left the maze", i)
				assert.GreaterOrEqual(t, ages[i], int32(0))
				assert.Less(t, ages[i], c.lifespans[i], "ant %d persisted at its terminal age", i)

				// Exploring moves are single steps between adjacent cells.
				if ages[i] == prevAges[i]+1 {
					dist := abs16(p.Row-prev[i].Row) + abs16(p.Col-prev[i].Col)
					assert.Equal(t, int16(1), dist, "ant %d jumped at tick %d", i, tick)
				}

				// An open-grid cell always has other exits, so an immediate
				// reversal is only legal after a reset.
				straightRun := ages[i] == prevAges[i]+1 && prevAges[i] >= 1
				if straightRun {
					assert.NotEqual(t, prevPrev[i], p, "ant %d reversed at tick %d", i, tick)
				}
			}
			copy(prevPrev, prev)
			prev = positions
			prevAges = ages
		}
	})

	t.Run("Ants reset to the nest at the end of their life", func(t *testing.T) {
		m, err := maze.NewOpen(5, 5)
		assert.NoError(t, err)
		nest := Pos{Row: 2, Col: 2}
		food := Pos{Row: 4, Col: 4}
		field := NewField(5, 5, food, 0.9, 0.99)

		maxLife := 8
		c, err := NewColony(1, nest, maxLife, 0, 1.0)
		assert.NoError(t, err)
		lifespan := int(c.lifespans[0])

		// Keep the ant off the food cell so it can age to its lifespan.
		for tick := 0; tick < lifespan; tick++ {
			if c.pos(0) == food {
				t.Skip("ant wandered onto the food cell")
			}
			c.Advance(m, food, nest, field)
		}

		assert.Equal(t, int32(0), c.Ages()[0])
		assert.Equal(t, nest, c.Positions()[0])
		assert.Equal(t, int8(DirNone), c.Directions()[0])
	})

	t.Run("Scent following walks onto the food cell and picks it up", func(t *testing.T) {
		m, err := maze.NewOpen(3, 3)
		assert.NoError(t, err)
		nest := Pos{Row: 2, Col: 1}
		food := Pos{Row: 2, Col: 2}
		field := NewField(3, 3, food, 0.9, 0.99)

		// explorationCoef 0 and a single scented neighbor force the follow
		// branch straight east onto the food.
		c, err := NewColony(1, nest, 100, 0, 0)
		assert.NoError(t, err)

		delivered := c.Advance(m, food, nest, field)

		assert.Zero(t, delivered)
		assert.Equal(t, food, c.Positions()[0])
		assert.True(t, c.Carrying()[0])
		assert.Equal(t, int32(1), c.Ages()[0])
	})

	t.Run("Loaded ants retrace their path and deliver at the nest", func(t *testing.T) {
		m, err := maze.NewOpen(3, 3)
		assert.NoError(t, err)
		nest := Pos{Row: 2, Col: 1}
		food := Pos{Row: 2, Col: 2}
		field := NewField(3, 3, food, 0.9, 0.99)

		c, err := NewColony(1, nest, 100, 0, 0)
		assert.NoError(t, err)

		// Tick 1: follow the scent onto the food and pick it up.
		assert.Zero(t, c.Advance(m, food, nest, field))
		assert.True(t, c.Carrying()[0])

		// Tick 2: retrace one step back to the nest and deliver.
		delivered := c.Advance(m, food, nest, field)

		assert.Equal(t, 1, delivered)
		assert.False(t, c.Carrying()[0])
		assert.Equal(t, nest, c.Positions()[0])
		assert.Equal(t, int32(0), c.Ages()[0])
	})

	t.Run("Deposit next to the food blends in the food scent", func(t *testing.T) {
		m, err := maze.NewOpen(3, 3)
		assert.NoError(t, err)
		nest := Pos{Row: 2, Col: 1}
		food := Pos{Row: 2, Col: 2}
		alpha := 0.9
		field := NewField(3, 3, food, alpha, 0.99)

		c, err := NewColony(1, nest, 100, 0, 0)
		assert.NoError(t, err)
		c.deposit(m, field)

		// The ant sits at the nest with the food cell as its strongest
		// open neighbor.
		want := alpha*1.0 + (1-alpha)*0.25*1.0
		assert.InDelta(t, want, field.At(2, 1), 1e-12)
	})
}

func TestSingleAntForagingScenario(t *testing.T) {
	m, err := maze.NewOpen(3, 3)
	assert.NoError(t, err)
	nest := Pos{Row: 0, Col: 0}
	food := Pos{Row: 2, Col: 2}
	field := NewField(3, 3, food, 0.9, 0.99)

	// Zero the food seed so no scent exists anywhere: with a zero
	// exploration coefficient the ant still explores at random because no
	// signal can guide it.
	field.cells[field.index(2, 2)] = 0

	c, err := NewColony(1, nest, 300, 0, 0)
	assert.NoError(t, err)

	// Random exploration until the ant stands on the food cell.
	for tick := 0; !c.Carrying()[0]; tick++ {
		if tick > 20000 {
			t.Fatal("ant never reached the food")
		}
		assert.Zero(t, c.Advance(m, food, nest, field), "no delivery before pickup")
	}

	// The recorded path is retraced backward step by step.
	pickupAge := int(c.Ages()[0])
	path := make([]Pos, pickupAge+1)
	copy(path, c.hist[:pickupAge+1])
	assert.Equal(t, food, path[pickupAge])
	assert.Equal(t, nest, path[0])

	total := 0
	for step := pickupAge - 1; step >= 0; step-- {
		total += c.Advance(m, food, nest, field)
		assert.Equal(t, path[step], c.Positions()[0], "retrace diverged at age %d", step)
	}

	assert.Equal(t, 1, total)
	assert.False(t, c.Carrying()[0])
	assert.Equal(t, int32(0), c.Ages()[0])
	assert.Equal(t, nest, c.Positions()[0])
}

func abs16(v int16) int16 {
	if v < 0 {
		return -v
	}
	return v
}

func TestColonyAccessorsCopy(t *testing.T) {
	c, err := NewColony(3, Pos{Row: 0, Col: 0}, 50, 0, 0)
	assert.NoError(t, err)

	ages := c.Ages()
	ages[0] = 99
	assert.Equal(t, int32(0), c.Ages()[0])

	carrying := c.Carrying()
	carrying[0] = true
	assert.False(t, c.Carrying()[0])
}
