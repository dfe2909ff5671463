package colony

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewField(t *testing.T) {
	food := Pos{Row: 2, Col: 3}
	f := NewField(4, 5, food, 0.9, 0.99)

	t.Run("Food cell starts with a unit of scent", func(t *testing.T) {
		assert.Equal(t, 1.0, f.At(2, 3))
	})

	t.Run("All other cells start at zero", func(t *testing.T) {
		for row := 0; row < 4; row++ {
			for col := 0; col < 5; col++ {
				if (Pos{Row: int16(row), Col: int16(col)}) == food {
					continue
				}
				assert.Zero(t, f.At(row, col))
			}
		}
	})

	t.Run("Ghost border reads zero", func(t *testing.T) {
		assert.Zero(t, f.At(-1, 0))
		assert.Zero(t, f.At(4, 2))
		assert.Zero(t, f.At(1, -1))
		assert.Zero(t, f.At(1, 5))
	})

	t.Run("Backing array covers the bordered grid", func(t *testing.T) {
		assert.Len(t, f.Raw(), (4+2)*(5+2))
	})
}

func TestFieldDeposit(t *testing.T) {
	food := Pos{Row: 0, Col: 0}
	alpha := 0.9

	t.Run("Blends strongest neighbor with the mean over four slots", func(t *testing.T) {
		f := NewField(3, 3, food, alpha, 0.99)
		f.cells[f.index(0, 1)] = 0.8 // north of (1,1)
		f.cells[f.index(1, 2)] = 0.4 // east of (1,1)
		snap := f.Snapshot()

		f.Deposit(Pos{Row: 1, Col: 1}, [4]bool{true, true, true, true}, snap)

		want := alpha*0.8 + (1-alpha)*0.25*(0.8+0.4)
		assert.InDelta(t, want, f.At(1, 1), 1e-12)
	})

	t.Run("Closed exits contribute nothing", func(t *testing.T) {
		f := NewField(3, 3, food, alpha, 0.99)
		f.cells[f.index(0, 1)] = 0.8
		snap := f.Snapshot()

		// The only scented neighbor sits behind a wall.
		f.Deposit(Pos{Row: 1, Col: 1}, [4]bool{false, true, true, true}, snap)

		assert.Zero(t, f.At(1, 1))
	})

	t.Run("Deposits within a tick do not compound through the snapshot", func(t *testing.T) {
		f := NewField(3, 3, Pos{Row: 2, Col: 2}, alpha, 0.99)
		f.cells[f.index(1, 1)] = 0.5
		snap := f.Snapshot()

		// Writing (1,1) must not change what a later deposit at (1,0),
		// which reads (1,1) as its east neighbor, sees in the snapshot.
		f.Deposit(Pos{Row: 1, Col: 1}, [4]bool{true, true, true, true}, snap)
		f.Deposit(Pos{Row: 1, Col: 0}, [4]bool{true, true, false, true}, snap)

		want := alpha*0.5 + (1-alpha)*0.25*0.5
		assert.InDelta(t, want, f.At(1, 0), 1e-12)
	})
}

func TestFieldEvaporate(t *testing.T) {
	food := Pos{Row: 2, Col: 2}
	beta := 0.5
	f := NewField(3, 3, food, 0.9, beta)
	f.cells[f.index(0, 0)] = 0.8
	f.cells[f.index(1, 1)] = 0.2

	f.Evaporate(food)

	t.Run("Every cell decays by beta", func(t *testing.T) {
		assert.InDelta(t, 0.4, f.At(0, 0), 1e-12)
		assert.InDelta(t, 0.1, f.At(1, 1), 1e-12)
	})

	t.Run("Food cell is restored to a full unit", func(t *testing.T) {
		assert.Equal(t, 1.0, f.At(2, 2))
	})
}

func TestFieldSnapshot(t *testing.T) {
	f := NewField(3, 3, Pos{Row: 0, Col: 0}, 0.9, 0.99)
	snap := f.Snapshot()

	f.cells[f.index(1, 1)] = 0.7

	assert.Zero(t, snap[f.index(1, 1)], "snapshot must be isolated from later writes")
}
