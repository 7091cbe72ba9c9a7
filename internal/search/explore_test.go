package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/itinerary/internal/graph"
	"github.com/rcliao/itinerary/internal/model"
)

func attr(id int64, cat string, rating float64, price string) model.Attraction {
	return model.Attraction{ID: id, DestinationID: 1, Name: cat, Category: cat, Rating: model.Float(rating), PriceRange: price}
}

func walk(from, to int64, m float64, mins int) model.Connection {
	return model.Connection{FromID: from, ToID: to, DistanceM: m, TravelMinutes: mins, Mode: model.ModeWalking}
}

// chain: 1 -> 2 -> 3 -> 4 -> 5, plus 1 -> 6 by taxi.
func chainGraph() *graph.Graph {
	nodes := []model.Attraction{
		attr(1, "cultural", 4.5, "gratis"),
		attr(2, "museos", 4.0, "bajo"),
		attr(3, "naturaleza", 3.5, "gratis"),
		attr(4, "gastronomia", 4.8, "alto"),
		attr(5, "cultural", 4.2, "medio"),
		attr(6, "compras", 3.9, "medio"),
	}
	edges := []model.Connection{
		walk(1, 2, 500, 6),
		walk(2, 3, 500, 6),
		walk(3, 4, 500, 6),
		walk(4, 5, 500, 6),
		walk(2, 1, 500, 6),
		{FromID: 1, ToID: 6, DistanceM: 3000, TravelMinutes: 12, Mode: model.ModeTaxi, Cost: 60},
	}
	return graph.New(1, nodes, edges)
}

func ids(cands []Candidate) []int64 {
	out := make([]int64, 0, len(cands))
	for _, c := range cands {
		out = append(out, c.Attraction.ID)
	}
	return out
}

func TestExplore_LevelOrder(t *testing.T) {
	res, err := Explore(chainGraph(), 1, DefaultConstraints())
	require.NoError(t, err)

	assert.Equal(t, []int64{2, 6, 3, 4, 5}, ids(res.Candidates))
	assert.Equal(t, 6, res.Explored)
	assert.Equal(t, 4, res.Levels)
	assert.Equal(t, []int64{2, 6}, res.Adjacency[1])

	c := res.Candidates[2]
	assert.Equal(t, 2, c.Depth)
	assert.Equal(t, 1000.0, c.DistanceM)
	assert.Equal(t, 12, c.Minutes)
	require.NotNil(t, c.ParentID)
	assert.Equal(t, int64(2), *c.ParentID)
}

func TestExplore_DepthBound(t *testing.T) {
	g := chainGraph()
	for d := 0; d <= 5; d++ {
		c := DefaultConstraints()
		c.MaxDepth = d
		res, err := Explore(g, 1, c)
		require.NoError(t, err)
		for _, cand := range res.Candidates {
			assert.LessOrEqual(t, cand.Depth, d)
		}
		assert.LessOrEqual(t, res.Explored, g.Len())
	}
}

func TestExplore_Budgets(t *testing.T) {
	c := DefaultConstraints()
	c.MaxDistanceM = 1000
	res, err := Explore(chainGraph(), 1, c)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, ids(res.Candidates))

	c = DefaultConstraints()
	c.MaxMinutes = 6
	res, err = Explore(chainGraph(), 1, c)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids(res.Candidates))

	c = DefaultConstraints()
	c.MaxCandidates = 2
	res, err = Explore(chainGraph(), 1, c)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 6}, ids(res.Candidates))
}

func TestExplore_TransportMode(t *testing.T) {
	c := DefaultConstraints()
	c.TransportMode = model.ModeTaxi
	res, err := Explore(chainGraph(), 1, c)
	require.NoError(t, err)
	assert.Equal(t, []int64{6}, ids(res.Candidates))
}

func TestExplore_Filters(t *testing.T) {
	c := DefaultConstraints()
	c.Filters = Filters{Categories: []string{"Cultural", "naturaleza"}}
	res, err := Explore(chainGraph(), 1, c)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 5}, ids(res.Candidates), "filtered nodes are still expanded")

	c.Filters = Filters{MinRating: model.Float(4.0), PriceRanges: []string{"gratis", "bajo", "medio"}}
	res, err = Explore(chainGraph(), 1, c)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 5}, ids(res.Candidates))
}

func TestExplore_UnknownStart(t *testing.T) {
	_, err := Explore(chainGraph(), 99, DefaultConstraints())
	assert.ErrorIs(t, err, graph.ErrNodeNotFound)
}

func TestExplore_Deterministic(t *testing.T) {
	a, err := Explore(chainGraph(), 1, DefaultConstraints())
	require.NoError(t, err)
	b, err := Explore(chainGraph(), 1, DefaultConstraints())
	require.NoError(t, err)
	assert.Equal(t, ids(a.Candidates), ids(b.Candidates))
}

func TestPathTo(t *testing.T) {
	res, err := Explore(chainGraph(), 1, DefaultConstraints())
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2, 3, 4, 5}, PathTo(5, res.Candidates))
	assert.Equal(t, []int64{1, 6}, PathTo(6, res.Candidates))
	assert.Nil(t, PathTo(42, res.Candidates))
}
