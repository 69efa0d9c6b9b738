package navigation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/citysim-go/internal/domain/navigation"
	"github.com/andrescamacho/citysim-go/internal/domain/shared"
)

func pos(x, y int64) shared.Position {
	return shared.NewPosition(x, y)
}

func straightStreet(t *testing.T, length int64) *navigation.StreetGraph {
	t.Helper()
	graph := navigation.NewStreetGraph(pos(0, 0))
	for x := int64(1); x < length; x++ {
		graph.AddNode(pos(x, 0))
	}
	require.Equal(t, int(length-1), graph.Rebuild())
	return graph
}

func TestNewStreetGraph_SeedsEntry(t *testing.T) {
	graph := navigation.NewStreetGraph(pos(5, 5))

	assert.True(t, graph.HasNode(pos(5, 5)))
	assert.Equal(t, pos(5, 5), graph.Entry())
	assert.Equal(t, 1, graph.NodeCount())
	assert.Equal(t, 0, graph.PendingCount())
}

func TestRebuild_EmptyPendingIsNoOp(t *testing.T) {
	graph := navigation.NewStreetGraph(pos(0, 0))

	assert.Equal(t, 0, graph.Rebuild())
	assert.Equal(t, 0, graph.Rebuild())
	assert.Equal(t, 1, graph.NodeCount())
}

func TestRebuild_LinksBidirectionally(t *testing.T) {
	graph := straightStreet(t, 4)

	for x := int64(0); x < 3; x++ {
		assert.Contains(t, graph.Neighbors(pos(x, 0)), pos(x+1, 0))
		assert.Contains(t, graph.Neighbors(pos(x+1, 0)), pos(x, 0))
	}
	assert.Equal(t, 3, graph.EdgeCount())
	assert.Equal(t, 0, graph.PendingCount())
}

func TestRebuild_IsolatedPositionStaysPending(t *testing.T) {
	// Arrange
	graph := navigation.NewStreetGraph(pos(0, 0))
	graph.AddNode(pos(1, 0))
	graph.AddNode(pos(10, 10))

	// Act
	linked := graph.Rebuild()

	// Assert
	assert.Equal(t, 1, linked)
	assert.True(t, graph.HasNode(pos(1, 0)))
	assert.False(t, graph.HasNode(pos(10, 10)))
	assert.True(t, graph.IsPending(pos(10, 10)))
	assert.Equal(t, 1, graph.PendingCount())
}

func TestRebuild_CoPendingPositionsLinkTogether(t *testing.T) {
	graph := navigation.NewStreetGraph(pos(0, 0))
	graph.AddNode(pos(10, 10))
	graph.AddNode(pos(10, 11))

	assert.Equal(t, 2, graph.Rebuild())
	assert.Equal(t, []shared.Position{pos(10, 11)}, graph.Neighbors(pos(10, 10)))

	// a separate component is linked but unreachable from the entry
	_, found := graph.GetPath(pos(0, 0), pos(10, 12))
	assert.False(t, found)
}

func TestRebuild_IsMonotonicAndReachesFixedPoint(t *testing.T) {
	graph := navigation.NewStreetGraph(pos(0, 0))
	for _, p := range []shared.Position{pos(0, 1), pos(5, 5), pos(0, 2), pos(-7, 3), pos(1, 1)} {
		graph.AddNode(p)
	}

	before := graph.PendingCount()
	for i := 0; i < 5; i++ {
		graph.Rebuild()
		after := graph.PendingCount()
		assert.LessOrEqual(t, after, before)
		before = after
	}

	assert.Equal(t, 0, graph.Rebuild())
	assert.Equal(t, 2, graph.PendingCount())
}

func TestAddNode_IgnoresDuplicates(t *testing.T) {
	graph := navigation.NewStreetGraph(pos(0, 0))
	graph.AddNode(pos(0, 0))
	graph.AddNode(pos(1, 0))
	graph.AddNode(pos(1, 0))

	assert.Equal(t, 1, graph.PendingCount())
	assert.Equal(t, 1, graph.Rebuild())
}

func TestGetPath_TargetOnStreetEnd(t *testing.T) {
	graph := straightStreet(t, 4)

	path, found := graph.GetPath(pos(0, 0), pos(3, 0))

	require.True(t, found)
	// the search stops next to the target, then the target is appended, so a
	// target on the last street cell takes four steps; one cell past the end,
	// (4,0), takes five (TestGetPath_TargetBesideStreetEnd)
	assert.Equal(t, []shared.Position{pos(0, 0), pos(1, 0), pos(2, 0), pos(3, 0)}, path.Steps())
	assert.Equal(t, 4, path.Len())
}

func TestGetPath_TargetBesideStreetEnd(t *testing.T) {
	graph := straightStreet(t, 4)

	path, found := graph.GetPath(pos(0, 0), pos(4, 0))

	require.True(t, found)
	assert.Equal(t, 5, path.Len())
	dest, ok := path.Destination()
	require.True(t, ok)
	assert.Equal(t, pos(4, 0), dest)
}

func TestGetPath_StartAdjacentToTarget(t *testing.T) {
	graph := navigation.NewStreetGraph(pos(0, 0))

	path, found := graph.GetPath(pos(0, 0), pos(0, 1))

	require.True(t, found)
	assert.Equal(t, []shared.Position{pos(0, 0), pos(0, 1)}, path.Steps())
}

func TestGetPath_UnlinkedStartOrDisconnectedTarget(t *testing.T) {
	graph := straightStreet(t, 3)

	_, found := graph.GetPath(pos(9, 9), pos(1, 1))
	assert.False(t, found, "start is not a graph node")

	_, found = graph.GetPath(pos(0, 0), pos(20, 20))
	assert.False(t, found, "no street reaches the target")
}

func TestGetPath_FindsShortestAroundObstacle(t *testing.T) {
	// U-shaped street: (0,0) → (0,1) → (0,2) → (1,2) → (2,2) → (2,1)
	// plus a long detour on the left
	graph := navigation.NewStreetGraph(pos(0, 0))
	for _, p := range []shared.Position{
		pos(0, 1), pos(0, 2), pos(1, 2), pos(2, 2), pos(2, 1),
		pos(-1, 0), pos(-1, 1), pos(-1, 2), pos(-1, 3), pos(0, 3), pos(1, 3),
	} {
		graph.AddNode(p)
	}
	graph.Rebuild()

	path, found := graph.GetPath(pos(0, 0), pos(2, 0))

	require.True(t, found)
	assert.Equal(t, []shared.Position{
		pos(0, 0), pos(0, 1), pos(0, 2), pos(1, 2), pos(2, 2), pos(2, 1), pos(2, 0),
	}, path.Steps())
}

func TestGetPath_SeesStreetsOnlyAfterRebuild(t *testing.T) {
	graph := navigation.NewStreetGraph(pos(0, 0))
	graph.AddNode(pos(1, 0))
	graph.AddNode(pos(2, 0))

	_, found := graph.GetPath(pos(0, 0), pos(3, 0))
	assert.False(t, found)

	graph.Rebuild()
	_, found = graph.GetPath(pos(0, 0), pos(3, 0))
	assert.True(t, found)
}

func TestAccessPoints(t *testing.T) {
	graph := straightStreet(t, 3)

	assert.Equal(t, []shared.Position{pos(1, 0)}, graph.AccessPoints(pos(1, 0)), "streets depart from themselves")
	assert.Equal(t, []shared.Position{pos(2, 0)}, graph.AccessPoints(pos(2, 1)), "buildings depart from an adjacent street")
	assert.Empty(t, graph.AccessPoints(pos(7, 7)))
}

// disconnectedFragment lays out a main street from the entry plus a
// two-cell fragment that never links to it
//
//	y=2       f f H
//	y=1           s
//	y=0 E s s s s s
func disconnectedFragment(t *testing.T) *navigation.StreetGraph {
	t.Helper()
	graph := straightStreet(t, 6)
	graph.AddNode(pos(5, 1))
	graph.AddNode(pos(3, 2))
	graph.AddNode(pos(4, 2))
	require.Equal(t, 3, graph.Rebuild(), "the fragment links to itself only")
	require.False(t, graph.HasNode(pos(4, 1)))
	return graph
}

func TestAccessPoints_ListsEveryAdjacentStreet(t *testing.T) {
	graph := disconnectedFragment(t)

	points := graph.AccessPoints(pos(5, 2))

	assert.ElementsMatch(t, []shared.Position{pos(4, 2), pos(5, 1)}, points)
}

func TestRoute_SkipsAccessPointsOnDisconnectedStreets(t *testing.T) {
	graph := disconnectedFragment(t)

	path, departure, found := graph.Route(pos(5, 2), pos(1, 1))

	require.True(t, found, "the house touches the main street through (5,1)")
	assert.Equal(t, pos(5, 1), departure)
	dest, ok := path.Destination()
	require.True(t, ok)
	assert.Equal(t, pos(1, 1), dest)

	_, _, found = graph.Route(pos(7, 7), pos(1, 1))
	assert.False(t, found)
}
