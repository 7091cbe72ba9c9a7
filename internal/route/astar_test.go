package route

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/itinerary/internal/graph"
	"github.com/rcliao/itinerary/internal/model"
)

func node(id int64, lat, lon float64) model.Attraction {
	return model.Attraction{
		ID:            id,
		DestinationID: 1,
		Name:          string(rune('A' + id - 1)),
		Category:      "cultural",
		Location:      &model.Coordinate{Lat: lat, Lon: lon},
	}
}

func walk(from, to int64, m float64, mins int) model.Connection {
	return model.Connection{FromID: from, ToID: to, DistanceM: m, TravelMinutes: mins, Mode: model.ModeWalking}
}

func ids(stops []model.RouteStop) []int64 {
	out := make([]int64, len(stops))
	for i, s := range stops {
		out[i] = s.ID
	}
	return out
}

// toy: A(0,0) B(0,0.01) C(0,0.02); A->B and B->C are 500 m, A->C is 1100 m.
func toyGraph() *graph.Graph {
	return graph.New(1,
		[]model.Attraction{node(1, 0, 0), node(2, 0, 0.01), node(3, 0, 0.02)},
		[]model.Connection{
			walk(1, 2, 500, 6),
			walk(2, 3, 500, 6),
			walk(1, 3, 1100, 15),
		})
}

func TestFindPath_PrefersShorterTwoHopRoute(t *testing.T) {
	o := NewOptimizer(toyGraph())
	r, err := o.FindPath(1, 3, model.OptimizeBalanced, Euclidean, nil)
	require.NoError(t, err)

	require.True(t, r.Found)
	assert.Equal(t, []int64{1, 2, 3}, ids(r.Attractions))
	assert.Equal(t, []int{0, 1, 2}, []int{r.Attractions[0].Order, r.Attractions[1].Order, r.Attractions[2].Order})
	require.Len(t, r.Segments, 2)
	assert.Equal(t, 1000.0, r.TotalDistanceM)
	assert.Equal(t, 12, r.TotalMinutes)
	assert.Zero(t, r.TotalCost)
	assert.InDelta(t, 0.4, r.PathCost, 1e-9)
	assert.Equal(t, 60.0, r.OptimizationScore)
	assert.Equal(t, 3, r.NodesExplored)
	assert.Equal(t, model.OptimizeBalanced, r.Mode)
}

func TestFindPath_AttachesSuitabilityScores(t *testing.T) {
	o := NewOptimizer(toyGraph())
	r, err := o.FindPath(1, 3, model.OptimizeScore, Zero, map[int64]float64{3: 90})
	require.NoError(t, err)
	require.True(t, r.Found)

	last := r.Attractions[len(r.Attractions)-1]
	require.NotNil(t, last.SuitabilityScore)
	assert.Equal(t, 90.0, *last.SuitabilityScore)
	assert.Nil(t, r.Attractions[0].SuitabilityScore)
}

func TestFindPath_NoPath(t *testing.T) {
	g := graph.New(1,
		[]model.Attraction{node(1, 0, 0), node(2, 0, 0.01), node(3, 0, 0.02)},
		[]model.Connection{walk(2, 3, 500, 6), walk(3, 2, 500, 6)})
	r, err := NewOptimizer(g).FindPath(1, 3, model.OptimizeBalanced, Euclidean, nil)
	require.NoError(t, err)

	assert.False(t, r.Found)
	assert.NotNil(t, r.Attractions)
	assert.Empty(t, r.Attractions)
	assert.NotNil(t, r.Segments)
	assert.Empty(t, r.Segments)
	assert.Zero(t, r.TotalDistanceM)
	assert.Zero(t, r.TotalMinutes)
	assert.Zero(t, r.TotalCost)
	assert.Zero(t, r.OptimizationScore)
	assert.Equal(t, 1, r.NodesExplored)
}

func TestFindPath_UnknownNode(t *testing.T) {
	o := NewOptimizer(toyGraph())
	_, err := o.FindPath(99, 3, model.OptimizeBalanced, Euclidean, nil)
	assert.True(t, errors.Is(err, graph.ErrNodeNotFound))
	_, err = o.FindPath(1, 99, model.OptimizeBalanced, Euclidean, nil)
	assert.True(t, errors.Is(err, graph.ErrNodeNotFound))
}

func TestFindPath_StartIsEnd(t *testing.T) {
	r, err := NewOptimizer(toyGraph()).FindPath(2, 2, model.OptimizeTime, Euclidean, nil)
	require.NoError(t, err)
	assert.True(t, r.Found)
	assert.Equal(t, []int64{2}, ids(r.Attractions))
	assert.Empty(t, r.Segments)
	assert.Equal(t, 100.0, r.OptimizationScore)
}

func TestFindPath_IterationCap(t *testing.T) {
	o := NewOptimizer(toyGraph(), WithMaxIterations(1))
	r, err := o.FindPath(1, 3, model.OptimizeBalanced, Zero, nil)
	require.NoError(t, err)
	assert.False(t, r.Found)
	assert.Equal(t, 1, r.NodesExplored)

	o = NewOptimizer(toyGraph(), WithMaxIterations(0))
	assert.Equal(t, DefaultMaxIterations, o.maxIterations)
}

func TestFindPath_ParallelEdgesKeepTraversedMode(t *testing.T) {
	g := graph.New(1,
		[]model.Attraction{node(1, 0, 0), node(2, 0, 0.01)},
		[]model.Connection{
			{FromID: 1, ToID: 2, DistanceM: 1000, TravelMinutes: 10, Mode: model.ModeTaxi, Cost: 40},
			walk(1, 2, 1000, 10),
		})
	r, err := NewOptimizer(g).FindPath(1, 2, model.OptimizeCost, Euclidean, nil)
	require.NoError(t, err)
	require.Len(t, r.Segments, 1)
	assert.Equal(t, model.ModeWalking, r.Segments[0].Mode)
	assert.Zero(t, r.TotalCost)
}

// corridor: S -> A -> B -> C -> G east along the equator, plus a dead end
// S -> D1 -> D2 heading west. Edge cost tracks straight-line distance.
func corridorGraph() *graph.Graph {
	return graph.New(1,
		[]model.Attraction{
			node(1, 0, 0), node(2, 0, 0.01), node(3, 0, 0.02), node(4, 0, 0.03), node(5, 0, 0.04),
			node(6, 0, -0.01), node(7, 0, -0.02),
		},
		[]model.Connection{
			walk(1, 2, 1100, 13),
			walk(1, 6, 1100, 13),
			walk(2, 3, 1100, 13),
			walk(3, 4, 1100, 13),
			walk(4, 5, 1100, 13),
			walk(6, 7, 1100, 13),
		})
}

func TestFindPath_EuclideanExploresNoMoreThanZero(t *testing.T) {
	o := NewOptimizer(corridorGraph())
	zero, err := o.FindPath(1, 5, model.OptimizeBalanced, Zero, nil)
	require.NoError(t, err)
	euclid, err := o.FindPath(1, 5, model.OptimizeBalanced, Euclidean, nil)
	require.NoError(t, err)

	require.True(t, zero.Found)
	require.True(t, euclid.Found)
	assert.Equal(t, 7, zero.NodesExplored)
	assert.Equal(t, 6, euclid.NodesExplored)
	assert.LessOrEqual(t, euclid.NodesExplored, zero.NodesExplored)
	assert.Equal(t, ids(zero.Attractions), ids(euclid.Attractions))
}

// meshGraph has several competing routes with mixed modes and prices.
func meshGraph() *graph.Graph {
	nodes := []model.Attraction{
		node(1, 0, 0), node(2, 0.01, 0.01), node(3, -0.01, 0.01),
		node(4, 0, 0.02), node(5, 0.01, 0.03), node(6, 0, 0.04),
	}
	taxi := func(from, to int64, m float64, mins int, cost float64) model.Connection {
		return model.Connection{FromID: from, ToID: to, DistanceM: m, TravelMinutes: mins, Mode: model.ModeTaxi, Cost: cost}
	}
	bus := func(from, to int64, m float64, mins int) model.Connection {
		return model.Connection{FromID: from, ToID: to, DistanceM: m, TravelMinutes: mins, Mode: model.ModePublicTransport, Cost: 5}
	}
	edges := []model.Connection{
		walk(1, 2, 1600, 20), taxi(1, 2, 1600, 8, 46),
		walk(1, 3, 1500, 19), bus(1, 4, 2300, 17),
		walk(2, 4, 1500, 18), walk(3, 4, 1600, 21),
		taxi(2, 5, 2300, 9, 53), walk(4, 5, 1500, 19),
		bus(4, 6, 2300, 16), walk(5, 6, 1600, 20),
		taxi(3, 6, 4500, 14, 75), walk(4, 2, 1500, 18),
		walk(5, 4, 1500, 19), bus(6, 1, 4500, 30),
	}
	return graph.New(1, nodes, edges)
}

// cheapest enumerates every simple path from start to end and returns the
// lowest total edge cost.
func cheapest(g *graph.Graph, start, end int64, mode model.OptimizationMode, scores map[int64]float64) float64 {
	w := WeightsFor(mode)
	best := math.Inf(1)
	seen := map[int64]bool{start: true}
	var walkFrom func(id int64, cost float64)
	walkFrom = func(id int64, cost float64) {
		if id == end {
			best = math.Min(best, cost)
			return
		}
		for _, e := range g.Neighbors(id) {
			if seen[e.ToID] {
				continue
			}
			seen[e.ToID] = true
			walkFrom(e.ToID, cost+EdgeCost(e, w, mode, scores[e.ToID]))
			seen[e.ToID] = false
		}
	}
	walkFrom(start, 0)
	return best
}

func TestFindPath_ZeroHeuristicIsOptimal(t *testing.T) {
	g := meshGraph()
	o := NewOptimizer(g)
	scores := map[int64]float64{2: 95, 3: 40, 4: 70, 5: 88, 6: 60}

	for _, mode := range model.AllModes {
		for _, end := range []int64{4, 5, 6} {
			r, err := o.FindPath(1, end, mode, Zero, scores)
			require.NoError(t, err)
			require.True(t, r.Found, "mode %s end %d", mode, end)
			assert.InDelta(t, cheapest(g, 1, end, mode, scores), r.PathCost, 1e-9, "mode %s end %d", mode, end)
		}
	}
}

func TestFindPath_Deterministic(t *testing.T) {
	o := NewOptimizer(meshGraph())
	first, err := o.FindPath(1, 6, model.OptimizeBalanced, Manhattan, nil)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := o.FindPath(1, 6, model.OptimizeBalanced, Manhattan, nil)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestCompare(t *testing.T) {
	got, err := NewOptimizer(toyGraph()).Compare(1, 3, nil)
	require.NoError(t, err)
	require.Len(t, got, len(model.AllModes))
	for i, c := range got {
		assert.Equal(t, model.AllModes[i], c.Mode)
		assert.True(t, c.Found)
		assert.Greater(t, c.AttractionsCount, 1)
	}

	_, err = NewOptimizer(toyGraph()).Compare(1, 42, nil)
	assert.True(t, errors.Is(err, graph.ErrNodeNotFound))
}
