package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/itinerary/internal/model"
)

type fakeSource struct {
	nodes map[int64][]model.Attraction
	edges map[int64][]model.Connection
	dest  map[int64]int64
}

func (f *fakeSource) LoadAttractionsAndEdges(_ context.Context, destID int64) ([]model.Attraction, []model.Connection, error) {
	return f.nodes[destID], f.edges[destID], nil
}

func (f *fakeSource) DestinationOf(_ context.Context, id int64) (int64, error) {
	d, ok := f.dest[id]
	if !ok {
		return 0, errors.New("no rows")
	}
	return d, nil
}

func newFake() *fakeSource {
	return &fakeSource{
		nodes: map[int64][]model.Attraction{
			1: {{ID: 1, DestinationID: 1, Name: "A"}, {ID: 2, DestinationID: 1, Name: "B"}},
		},
		edges: map[int64][]model.Connection{
			1: {
				{FromID: 1, ToID: 2, DistanceM: 500, TravelMinutes: 6, Mode: model.ModeWalking},
				{FromID: 1, ToID: 2, DistanceM: 500, TravelMinutes: 3, Mode: model.ModeTaxi, Cost: 35},
				{FromID: 2, ToID: 99, DistanceM: 100, TravelMinutes: 1, Mode: model.ModeWalking},
			},
		},
		dest: map[int64]int64{1: 1, 2: 1},
	}
}

func TestLoad_IntegrityFilter(t *testing.T) {
	g, err := Load(context.Background(), newFake(), 1)
	require.NoError(t, err)

	assert.Equal(t, 2, g.Len())
	assert.Equal(t, 2, g.EdgeCount())
	assert.Equal(t, 1, g.Dropped())
	assert.Len(t, g.Neighbors(1), 2, "parallel edges per mode are kept")
	assert.Empty(t, g.Neighbors(2))

	for _, id := range g.NodeIDs() {
		for _, e := range g.Neighbors(id) {
			_, ok := g.Node(e.ToID)
			assert.True(t, ok, "edge %d->%d references a node outside the graph", e.FromID, e.ToID)
		}
	}
}

func TestLoad_DefaultsTrafficFactor(t *testing.T) {
	g, err := Load(context.Background(), newFake(), 1)
	require.NoError(t, err)
	for _, e := range g.Neighbors(1) {
		assert.Equal(t, 1.0, e.TrafficFactor)
	}
}

func TestLoadForAttraction(t *testing.T) {
	g, err := LoadForAttraction(context.Background(), newFake(), 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), g.DestinationID)

	_, err = LoadForAttraction(context.Background(), newFake(), 42)
	assert.ErrorIs(t, err, ErrDestinationNotFound)
}

func TestMustNode(t *testing.T) {
	g := New(1, []model.Attraction{{ID: 7}}, nil)

	n, err := g.MustNode(7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n.ID)

	_, err = g.MustNode(8)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestNew_IgnoresDuplicateNodes(t *testing.T) {
	g := New(1, []model.Attraction{{ID: 1, Name: "first"}, {ID: 1, Name: "second"}}, nil)
	assert.Equal(t, 1, g.Len())
	n, _ := g.Node(1)
	assert.Equal(t, "first", n.Name)
}
