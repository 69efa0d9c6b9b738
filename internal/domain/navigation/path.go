package navigation

import (
	"github.com/andrescamacho/citysim-go/internal/domain/shared"
)

// Path is a route being walked one step at a time.
//
// Steps are stored destination-first so that Advance pops from the end.
// Once every step has been consumed the path is completed and further
// Advance calls do nothing.
type Path struct {
	remaining []shared.Position
}

// newPath takes a route in travel order (start first, destination last)
func newPath(route []shared.Position) *Path {
	reversed := make([]shared.Position, len(route))
	for i, p := range route {
		reversed[len(route)-1-i] = p
	}
	return &Path{remaining: reversed}
}

// Advance consumes the next step and returns it.
// On a completed path it returns false and leaves the path unchanged.
func (p *Path) Advance() (shared.Position, bool) {
	n := len(p.remaining)
	if n == 0 {
		return shared.Position{}, false
	}
	step := p.remaining[n-1]
	p.remaining = p.remaining[:n-1]
	return step, true
}

// Peek returns the next step without consuming it
func (p *Path) Peek() (shared.Position, bool) {
	n := len(p.remaining)
	if n == 0 {
		return shared.Position{}, false
	}
	return p.remaining[n-1], true
}

// IsCompleted reports whether every step has been consumed
func (p *Path) IsCompleted() bool {
	return len(p.remaining) == 0
}

// Len returns the number of steps left
func (p *Path) Len() int {
	return len(p.remaining)
}

// Destination returns the final step of the path
func (p *Path) Destination() (shared.Position, bool) {
	if len(p.remaining) == 0 {
		return shared.Position{}, false
	}
	return p.remaining[0], true
}

// Steps returns the remaining steps in travel order
func (p *Path) Steps() []shared.Position {
	out := make([]shared.Position, len(p.remaining))
	for i, step := range p.remaining {
		out[len(p.remaining)-1-i] = step
	}
	return out
}
