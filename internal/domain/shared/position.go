package shared

import (
	"fmt"
	"strconv"
	"strings"
)

// Position is a cell on the city grid.
//
// Positions compare by value and are used directly as map keys.
type Position struct {
	X int64 `json:"x" yaml:"x"`
	Y int64 `json:"y" yaml:"y"`
}

// neighborDeltas are the four orthogonal offsets, in a fixed order so that
// every traversal of a neighborhood is reproducible.
var neighborDeltas = [4]Position{
	{X: -1, Y: 0},
	{X: 1, Y: 0},
	{X: 0, Y: -1},
	{X: 0, Y: 1},
}

// NewPosition creates a position from its coordinates
func NewPosition(x, y int64) Position {
	return Position{X: x, Y: y}
}

// Neighbors returns the four orthogonally adjacent cells
func (p Position) Neighbors() [4]Position {
	var out [4]Position
	for i, d := range neighborDeltas {
		out[i] = Position{X: p.X + d.X, Y: p.Y + d.Y}
	}
	return out
}

// IsNeighborOf reports whether other is one of the four cells adjacent to p
func (p Position) IsNeighborOf(other Position) bool {
	return p.DistanceTo(other) == 1
}

// DistanceTo returns the Manhattan distance between p and other
func (p Position) DistanceTo(other Position) uint32 {
	return Distance(p, other)
}

// String renders the position as "x,y", the same format ParsePosition accepts
func (p Position) String() string {
	return fmt.Sprintf("%d,%d", p.X, p.Y)
}

// Distance returns the Manhattan distance between a and b.
// The result is always non-negative.
func Distance(a, b Position) uint32 {
	return uint32(abs64(a.X-b.X) + abs64(a.Y-b.Y))
}

// ParsePosition parses an "x,y" pair as produced by Position.String
func ParsePosition(s string) (Position, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 2 {
		return Position{}, NewValidationError("position", fmt.Sprintf("expected \"x,y\", got %q", s))
	}

	x, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return Position{}, NewValidationError("position", fmt.Sprintf("invalid x coordinate %q", parts[0]))
	}
	y, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return Position{}, NewValidationError("position", fmt.Sprintf("invalid y coordinate %q", parts[1]))
	}

	return Position{X: x, Y: y}, nil
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
