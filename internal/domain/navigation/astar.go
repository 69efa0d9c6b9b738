package navigation

import (
	"container/heap"

	"github.com/andrescamacho/citysim-go/internal/domain/shared"
)

// heuristic underestimates the remaining hops; dividing by 3 keeps the
// search cheap on small grids while never overestimating a unit-cost edge
func heuristic(p, target shared.Position) int64 {
	return int64(shared.Distance(p, target)) / 3
}

// search runs A* over the linked nodes and returns the node sequence from
// start to the first reached neighbor of target
func (g *StreetGraph) search(start, target shared.Position) ([]shared.Position, bool) {
	goals := make(map[shared.Position]struct{}, 4)
	for _, n := range target.Neighbors() {
		goals[n] = struct{}{}
	}

	cameFrom := make(map[shared.Position]shared.Position)
	gScore := map[shared.Position]int64{start: 0}
	closed := make(map[shared.Position]struct{})

	open := make(openSet, 0, len(g.adjacency))
	heap.Init(&open)
	seq := 0
	heap.Push(&open, &searchNode{position: start, g: 0, f: heuristic(start, target), seq: seq})

	for open.Len() > 0 {
		current := heap.Pop(&open).(*searchNode)
		if _, done := closed[current.position]; done {
			continue
		}
		if _, isGoal := goals[current.position]; isGoal {
			return reconstruct(cameFrom, start, current.position), true
		}
		closed[current.position] = struct{}{}

		for _, next := range g.adjacency[current.position] {
			if _, done := closed[next]; done {
				continue
			}
			tentative := current.g + 1
			if known, seen := gScore[next]; seen && tentative >= known {
				continue
			}
			gScore[next] = tentative
			cameFrom[next] = current.position
			seq++
			heap.Push(&open, &searchNode{
				position: next,
				g:        tentative,
				f:        tentative + heuristic(next, target),
				seq:      seq,
			})
		}
	}

	return nil, false
}

func reconstruct(cameFrom map[shared.Position]shared.Position, start, end shared.Position) []shared.Position {
	route := []shared.Position{end}
	for current := end; current != start; {
		current = cameFrom[current]
		route = append(route, current)
	}
	// reverse into start → end order
	for i, j := 0, len(route)-1; i < j; i, j = i+1, j-1 {
		route[i], route[j] = route[j], route[i]
	}
	return route
}

type searchNode struct {
	position shared.Position
	g        int64
	f        int64
	seq      int
}

// openSet implements heap.Interface ordered by lowest f score.
// Ties prefer the deeper node, then the earlier push, so the search is
// reproducible for a given graph.
type openSet []*searchNode

func (h openSet) Len() int { return len(h) }

func (h openSet) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	if h[i].g != h[j].g {
		return h[i].g > h[j].g
	}
	return h[i].seq < h[j].seq
}

func (h openSet) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *openSet) Push(x interface{}) {
	*h = append(*h, x.(*searchNode))
}

func (h *openSet) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}
