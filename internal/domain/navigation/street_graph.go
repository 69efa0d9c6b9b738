package navigation

import (
	"github.com/andrescamacho/citysim-go/internal/domain/shared"
)

// StreetGraph is the undirected street network inhabitants travel on.
//
// New streets are queued with AddNode and only become part of the network
// on the next Rebuild, so a whole tick's worth of construction is linked in
// one batch.
//
// Invariants:
// - Every edge is bidirectional (a ∈ adjacency[b] ⇔ b ∈ adjacency[a])
// - A position is either linked or pending, never both
// - The entry node is always linked
type StreetGraph struct {
	entry     shared.Position
	adjacency map[shared.Position][]shared.Position
	pending   []shared.Position
	isPending map[shared.Position]struct{}
}

// NewStreetGraph creates a graph seeded with the city entry node
func NewStreetGraph(entry shared.Position) *StreetGraph {
	return &StreetGraph{
		entry: entry,
		adjacency: map[shared.Position][]shared.Position{
			entry: nil,
		},
		isPending: make(map[shared.Position]struct{}),
	}
}

// Entry returns the node every inhabitant enters the city from
func (g *StreetGraph) Entry() shared.Position {
	return g.entry
}

// AddNode queues a street position for linking on the next Rebuild.
// Positions that are already linked or already queued are ignored.
func (g *StreetGraph) AddNode(p shared.Position) {
	if _, linked := g.adjacency[p]; linked {
		return
	}
	if _, queued := g.isPending[p]; queued {
		return
	}
	g.isPending[p] = struct{}{}
	g.pending = append(g.pending, p)
}

// Rebuild links every pending position that touches a linked node or
// another position of the same pending batch, and returns how many were
// linked. Positions with no such neighbor stay pending.
//
// Pending positions are processed in the order they were added.
func (g *StreetGraph) Rebuild() int {
	if len(g.pending) == 0 {
		return 0
	}

	batch := g.pending
	inBatch := g.isPending
	g.pending = nil
	g.isPending = make(map[shared.Position]struct{})

	linked := make([]shared.Position, 0, len(batch))
	for _, p := range batch {
		touches := false
		for _, n := range p.Neighbors() {
			_, isNode := g.adjacency[n]
			_, isCoPending := inBatch[n]
			if isNode || isCoPending {
				touches = true
				break
			}
		}
		if touches {
			linked = append(linked, p)
		} else {
			g.pending = append(g.pending, p)
			g.isPending[p] = struct{}{}
		}
	}

	// Register first so co-pending neighbors see each other as nodes
	for _, p := range linked {
		if _, ok := g.adjacency[p]; !ok {
			g.adjacency[p] = nil
		}
	}
	for _, p := range linked {
		for _, n := range p.Neighbors() {
			if _, ok := g.adjacency[n]; ok {
				g.link(p, n)
			}
		}
	}

	return len(linked)
}

func (g *StreetGraph) link(a, b shared.Position) {
	g.adjacency[a] = appendUnique(g.adjacency[a], b)
	g.adjacency[b] = appendUnique(g.adjacency[b], a)
}

func appendUnique(list []shared.Position, p shared.Position) []shared.Position {
	for _, existing := range list {
		if existing == p {
			return list
		}
	}
	return append(list, p)
}

// HasNode reports whether p is a linked node
func (g *StreetGraph) HasNode(p shared.Position) bool {
	_, ok := g.adjacency[p]
	return ok
}

// IsPending reports whether p is queued but not yet linked
func (g *StreetGraph) IsPending(p shared.Position) bool {
	_, ok := g.isPending[p]
	return ok
}

// Neighbors returns the linked neighbors of p in link order
func (g *StreetGraph) Neighbors(p shared.Position) []shared.Position {
	adj := g.adjacency[p]
	out := make([]shared.Position, len(adj))
	copy(out, adj)
	return out
}

// AccessPoints returns the nodes a trip starting at p may depart from: p
// itself when it is a street, otherwise every linked street next to it in
// Neighbors order. A building can touch several unconnected streets.
func (g *StreetGraph) AccessPoints(p shared.Position) []shared.Position {
	if g.HasNode(p) {
		return []shared.Position{p}
	}
	var out []shared.Position
	for _, n := range p.Neighbors() {
		if g.HasNode(n) {
			out = append(out, n)
		}
	}
	return out
}

// Route finds the shortest path from origin to target over every access
// point of origin and returns it with the node it departs from. Ties go to
// the earlier access point.
func (g *StreetGraph) Route(origin, target shared.Position) (*Path, shared.Position, bool) {
	var (
		best      *Path
		departure shared.Position
	)
	for _, start := range g.AccessPoints(origin) {
		path, found := g.GetPath(start, target)
		if !found {
			continue
		}
		if best == nil || path.Len() < best.Len() {
			best, departure = path, start
		}
	}
	if best == nil {
		return nil, shared.Position{}, false
	}
	return best, departure, true
}

// NodeCount returns the number of linked nodes, entry included
func (g *StreetGraph) NodeCount() int {
	return len(g.adjacency)
}

// PendingCount returns the number of positions waiting for a Rebuild
func (g *StreetGraph) PendingCount() int {
	return len(g.pending)
}

// EdgeCount returns the number of undirected edges
func (g *StreetGraph) EdgeCount() int {
	total := 0
	for _, adj := range g.adjacency {
		total += len(adj)
	}
	return total / 2
}

// GetPath searches a street route from start to a cell next to target.
//
// Buildings are not graph nodes, so the search stops on any of target's four
// neighbors and target is appended as the final step. The second return value
// is false when start is not linked or no route exists yet; callers retry on
// a later tick.
func (g *StreetGraph) GetPath(start, target shared.Position) (*Path, bool) {
	if !g.HasNode(start) {
		return nil, false
	}

	route, found := g.search(start, target)
	if !found {
		return nil, false
	}

	return newPath(append(route, target)), true
}
