package colony

import "github.com/guilhemriera/Parallel-Ants-Project/maze"

// Move directions. The ordering is chosen so the reverse of a direction d is
// always 3-d, which keeps the no-U-turn check a single comparison. DirNone
// never matches a reverse.
const (
	DirNorth int8 = iota
	DirEast
	DirWest
	DirSouth

	DirNone int8 = -1
)

// maskBits maps a direction constant to its maze exit-mask bit.
var maskBits = [4]uint8{maze.North, maze.East, maze.West, maze.South}

// rowDeltas and colDeltas map a direction constant to its coordinate delta.
var (
	rowDeltas = [4]int16{-1, 0, 0, 1}
	colDeltas = [4]int16{0, 1, -1, 0}
)

// Pos is a (row, col) cell coordinate. int16 keeps the per-ant path history
// arena compact for batches of thousands of ants.
type Pos struct {
	Row int16
	Col int16
}

// reverse returns the opposite direction.
func reverse(d int8) int8 {
	return 3 - d
}
