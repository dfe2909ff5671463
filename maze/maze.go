/*
Package maze provides a rectangular grid maze for the ant colony simulation.

Each cell stores a 4-bit mask of open directions. The layout is generated
with Wilson's algorithm from a deterministic seed, so every worker process
constructing a maze from the same seed observes the same grid. Every cell of
a generated maze has at least one open exit, and no exit ever points outside
the grid.
*/
package maze

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
)

// Open-direction mask bits. The ordinal of each bit matches the direction
// constants used by the colony package.
const (
	North uint8 = 1 << iota
	East
	West
	South
)

const minDimension = 3

var (
	ErrInvalidDimensions = errors.New("invalid maze dimensions")

	// directions enumerates neighbor deltas in a fixed order so that
	// generation consumes the random stream deterministically.
	directions = []struct {
		bit      uint8
		dRow     int
		dCol     int
	}{
		{North, -1, 0},
		{East, 0, 1},
		{West, 0, -1},
		{South, 1, 0},
	}
)

// CellPosition is a (row, col) coordinate in the maze grid.
type CellPosition struct {
	Row int
	Col int
}

// Move is a transition between two adjacent cells in a given direction.
type Move struct {
	From      CellPosition
	To        CellPosition
	Direction uint8
}

// Maze is a rectangular grid of cells, each holding a mask of open directions.
// The grid is immutable after construction.
type Maze struct {
	Width  int
	Height int
	grid   [][]uint8
	rng    *rand.Rand
}

// New generates a maze of the given dimensions from the seed.
func New(width, height int, seed int64) (*Maze, error) {
	if min(width, height) < minDimension {
		return nil, ErrInvalidDimensions
	}

	grid := make([][]uint8, height)
	for i := range grid {
		grid[i] = make([]uint8, width)
	}

	m := &Maze{
		Width:  width,
		Height: height,
		grid:   grid,
		rng:    rand.New(rand.NewSource(seed)),
	}
	m.generate()
	return m, nil
}

// NewOpen builds a maze with every interior wall removed. It is used as a
// fixture by simulation tests and benchmarks.
func NewOpen(width, height int) (*Maze, error) {
	if min(width, height) < minDimension {
		return nil, ErrInvalidDimensions
	}

	grid := make([][]uint8, height)
	for r := range grid {
		grid[r] = make([]uint8, width)
		for c := range grid[r] {
			var mask uint8
			if r > 0 {
				mask |= North
			}
			if r < height-1 {
				mask |= South
			}
			if c > 0 {
				mask |= West
			}
			if c < width-1 {
				mask |= East
			}
			grid[r][c] = mask
		}
	}

	return &Maze{Width: width, Height: height, grid: grid}, nil
}

// ExitMask returns the 4-bit open-direction mask of the cell.
func (m *Maze) ExitMask(row, col int) uint8 {
	return m.grid[row][col]
}

// HasExit reports whether the cell has an open exit in the given direction.
func (m *Maze) HasExit(row, col int, dir uint8) bool {
	return m.grid[row][col]&dir != 0
}

// CountExits returns the number of open exits of the cell.
func (m *Maze) CountExits(row, col int) int {
	count := 0
	for mask := m.grid[row][col]; mask != 0; mask &= mask - 1 {
		count++
	}
	return count
}

// InBound reports whether the position lies inside the maze grid.
func (m *Maze) InBound(row, col int) bool {
	return row >= 0 && row < m.Height && col >= 0 && col < m.Width
}

// opposite returns the mask bit of the reverse direction.
func opposite(dir uint8) uint8 {
	switch dir {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	default:
		return East
	}
}

// randomCellPosition picks a random position within the maze.
func (m *Maze) randomCellPosition() CellPosition {
	return CellPosition{Row: m.rng.Intn(m.Height), Col: m.rng.Intn(m.Width)}
}

// randomUnvisitedCellPosition selects a random position that has not been visited.
func (m *Maze) randomUnvisitedCellPosition(visited map[CellPosition]struct{}) CellPosition {
	for {
		pos := m.randomCellPosition()
		if _, included := visited[pos]; !included {
			return pos
		}
	}
}

// neighbors finds all in-bound moves from a given cell position.
func (m *Maze) neighbors(pos CellPosition) []Move {
	var result []Move
	for _, d := range directions {
		neighbor := CellPosition{Row: pos.Row + d.dRow, Col: pos.Col + d.dCol}
		if m.InBound(neighbor.Row, neighbor.Col) {
			result = append(result, Move{From: pos, To: neighbor, Direction: d.bit})
		}
	}
	return result
}

// openWall removes the wall between two adjacent cells in the specified direction.
func (m *Maze) openWall(move Move) {
	m.grid[move.From.Row][move.From.Col] |= move.Direction
	m.grid[move.To.Row][move.To.Col] |= opposite(move.Direction)
}

// randomWalk performs a random walk starting from an unvisited cell until it
// hits the visited region. Each cell keeps only its last exit, which erases
// loops from the walk.
func (m *Maze) randomWalk(visited map[CellPosition]struct{}) map[CellPosition]Move {
	start := m.randomUnvisitedCellPosition(visited)
	visits := make(map[CellPosition]Move)
	cell := start

	for {
		neighbors := m.neighbors(cell)
		randomNeighbor := neighbors[m.rng.Intn(len(neighbors))]
		visits[cell] = randomNeighbor
		if _, included := visited[randomNeighbor.To]; included {
			break
		}
		cell = randomNeighbor.To
	}

	return visits
}

// generate carves the maze with Wilson's algorithm.
func (m *Maze) generate() {
	visited := make(map[CellPosition]struct{})
	start := m.randomCellPosition()
	visited[start] = struct{}{}

	for len(visited) < m.Width*m.Height {
		for cell, move := range m.randomWalk(visited) {
			m.openWall(move)
			visited[cell] = struct{}{}
		}
	}
}

// String provides a textual representation of the maze.
func (m *Maze) String() string {
	var output string

	// Top boundary
	output += "+" + strings.Repeat("---+", m.Width) + "\n"

	for row := 0; row < m.Height; row++ {
		// Cell rows
		cellRow := "|"
		for col := 0; col < m.Width; col++ {
			if m.HasExit(row, col, East) {
				cellRow += "    "
			} else {
				cellRow += "   |"
			}
		}
		output += cellRow + "\n"

		// Wall rows
		wallRow := "+"
		for col := 0; col < m.Width; col++ {
			if m.HasExit(row, col, South) {
				wallRow += "   +"
			} else {
				wallRow += "---+"
			}
		}
		output += wallRow + "\n"
	}

	return output
}

// Describe returns a one-line summary used in startup logs.
func (m *Maze) Describe() string {
	return fmt.Sprintf("%dx%d maze", m.Height, m.Width)
}
