// Package graph holds the in-memory attraction graph used by a single
// planning run.
package graph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rcliao/itinerary/internal/model"
)

var (
	// ErrDestinationNotFound is returned when a seed attraction does not
	// resolve to a destination.
	ErrDestinationNotFound = errors.New("destination not found")

	// ErrNodeNotFound is returned when an attraction id is not part of the
	// loaded graph.
	ErrNodeNotFound = errors.New("attraction not found in graph")
)

// Source is the bulk-read collaborator the graph is loaded from.
type Source interface {
	// LoadAttractionsAndEdges returns every attraction of the destination and
	// every connection whose origin is one of those attractions.
	LoadAttractionsAndEdges(ctx context.Context, destinationID int64) ([]model.Attraction, []model.Connection, error)

	// DestinationOf resolves the destination an attraction belongs to.
	DestinationOf(ctx context.Context, attractionID int64) (int64, error)
}

// Graph is a node map plus adjacency list scoped to one destination. It is
// read-only after construction and owned by one planning run.
type Graph struct {
	DestinationID int64

	nodes   map[int64]*model.Attraction
	adj     map[int64][]model.Connection
	order   []int64
	edges   int
	dropped int
}

// New builds a graph from raw rows. Connections whose origin or target is not
// among nodes are dropped.
func New(destinationID int64, nodes []model.Attraction, edges []model.Connection) *Graph {
	g := &Graph{
		DestinationID: destinationID,
		nodes:         make(map[int64]*model.Attraction, len(nodes)),
		adj:           make(map[int64][]model.Connection, len(nodes)),
		order:         make([]int64, 0, len(nodes)),
	}
	for i := range nodes {
		n := nodes[i]
		if _, dup := g.nodes[n.ID]; dup {
			continue
		}
		g.nodes[n.ID] = &n
		g.adj[n.ID] = nil
		g.order = append(g.order, n.ID)
	}
	for _, e := range edges {
		if _, ok := g.nodes[e.FromID]; !ok {
			g.dropped++
			continue
		}
		if _, ok := g.nodes[e.ToID]; !ok {
			g.dropped++
			continue
		}
		if e.TrafficFactor == 0 {
			e.TrafficFactor = 1.0
		}
		g.adj[e.FromID] = append(g.adj[e.FromID], e)
		g.edges++
	}
	return g
}

// Load reads one destination from src into memory.
func Load(ctx context.Context, src Source, destinationID int64) (*Graph, error) {
	nodes, edges, err := src.LoadAttractionsAndEdges(ctx, destinationID)
	if err != nil {
		return nil, fmt.Errorf("load destination %d: %w", destinationID, err)
	}
	g := New(destinationID, nodes, edges)
	slog.Debug("graph loaded",
		"destination_id", destinationID,
		"nodes", g.Len(),
		"edges", g.edges,
		"dropped_edges", g.dropped)
	return g, nil
}

// LoadForAttraction resolves the destination of attractionID and loads it.
func LoadForAttraction(ctx context.Context, src Source, attractionID int64) (*Graph, error) {
	destID, err := src.DestinationOf(ctx, attractionID)
	if err != nil {
		return nil, fmt.Errorf("%w: attraction %d: %w", ErrDestinationNotFound, attractionID, err)
	}
	return Load(ctx, src, destID)
}

// Node returns the attraction with the given id.
func (g *Graph) Node(id int64) (*model.Attraction, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// MustNode returns the attraction or an ErrNodeNotFound error.
func (g *Graph) MustNode(id int64) (*model.Attraction, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	return n, nil
}

// Neighbors returns the outgoing connections of id. The slice must not be
// modified.
func (g *Graph) Neighbors(id int64) []model.Connection {
	return g.adj[id]
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// EdgeCount returns the number of connections kept after the integrity filter.
func (g *Graph) EdgeCount() int { return g.edges }

// Dropped returns the number of connections discarded by the integrity filter.
func (g *Graph) Dropped() int { return g.dropped }

// NodeIDs returns node ids in load order.
func (g *Graph) NodeIDs() []int64 {
	out := make([]int64, len(g.order))
	copy(out, g.order)
	return out
}
