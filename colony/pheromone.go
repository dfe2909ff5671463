package colony

// Field is the shared scent field guiding the ants. It carries a one-cell
// ghost border on every side so neighbor reads at the grid edge need no
// bounds checks: border cells always read zero and are never reinforced,
// only incidentally decayed.
type Field struct {
	rows  int
	cols  int
	alpha float64 // reinforcement blend factor
	beta  float64 // evaporation factor, < 1
	cells []float64
}

// NewField creates a zeroed field sized for a rows x cols maze and seeds the
// food cell with a unit of scent so the goal acts as an attractor.
func NewField(rows, cols int, food Pos, alpha, beta float64) *Field {
	f := &Field{
		rows:  rows,
		cols:  cols,
		alpha: alpha,
		beta:  beta,
		cells: make([]float64, (rows+2)*(cols+2)),
	}
	f.cells[f.index(int(food.Row), int(food.Col))] = 1.0
	return f
}

// index maps a maze coordinate to the backing slice. Rows and columns in
// [-1, rows] and [-1, cols] are valid: the extra row/column on each side is
// the ghost border.
func (f *Field) index(row, col int) int {
	return (row+1)*(f.cols+2) + (col + 1)
}

// Rows returns the maze row count the field is sized for.
func (f *Field) Rows() int { return f.rows }

// Cols returns the maze column count the field is sized for.
func (f *Field) Cols() int { return f.cols }

// At reads the scent at a maze coordinate. Ghost border coordinates are
// valid and read zero.
func (f *Field) At(row, col int) float64 {
	return f.cells[f.index(row, col)]
}

// Raw exposes the flat backing array, ghost border included. It is the
// buffer handed to the merge collective; mutating it mutates the field.
func (f *Field) Raw() []float64 {
	return f.cells
}

// Snapshot returns a copy of the backing array. Deposits within a tick read
// from a snapshot so they never compound on each other.
func (f *Field) Snapshot() []float64 {
	snap := make([]float64, len(f.cells))
	copy(snap, f.cells)
	return snap
}

// Deposit reinforces the scent at pos from the exit-gated neighbor values in
// the snapshot. Neighbors behind a wall contribute zero. The written value
// blends the strongest neighbor with the mean over all four slots, so cells
// with fewer open exits concentrate more scent per exit.
func (f *Field) Deposit(pos Pos, exits [4]bool, snapshot []float64) {
	var gated [4]float64
	for d := 0; d < 4; d++ {
		if !exits[d] {
			continue
		}
		gated[d] = snapshot[f.index(int(pos.Row)+int(rowDeltas[d]), int(pos.Col)+int(colDeltas[d]))]
	}

	best, sum := 0.0, 0.0
	for _, v := range gated {
		sum += v
		if v > best {
			best = v
		}
	}

	value := f.alpha*best + (1-f.alpha)*0.25*sum
	if value < 0 {
		value = 0
	}
	f.cells[f.index(int(pos.Row), int(pos.Col))] = value
}

// Evaporate decays every cell by the beta factor and restores the food cell
// to a full unit of scent so the field never collapses at the goal.
func (f *Field) Evaporate(food Pos) {
	for i := range f.cells {
		f.cells[i] *= f.beta
	}
	f.cells[f.index(int(food.Row), int(food.Col))] = 1.0
}
