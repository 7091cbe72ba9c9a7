// Package search explores the attraction graph breadth-first to collect
// candidate attractions around a starting point.
package search

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/rcliao/itinerary/internal/graph"
	"github.com/rcliao/itinerary/internal/model"
)

// Defaults for an exploration.
const (
	DefaultRadiusMeters  = 10000.0
	DefaultMaxMinutes    = 480
	DefaultMaxCandidates = 50
	DefaultMaxDepth      = 5
)

// Filters restrict which explored nodes become candidates. Empty fields do
// not filter.
type Filters struct {
	Categories  []string `json:"categories,omitempty"`
	MinRating   *float64 `json:"min_rating,omitempty"`
	PriceRanges []string `json:"price_ranges,omitempty"`
}

// Constraints bound an exploration.
type Constraints struct {
	MaxDistanceM  float64 `json:"max_distance_meters"`
	MaxMinutes    int     `json:"max_time_minutes"`
	MaxDepth      int     `json:"max_depth"`
	MaxCandidates int     `json:"max_candidates"`
	// TransportMode, when set, only follows connections of that mode.
	TransportMode string  `json:"transport_mode,omitempty"`
	Filters       Filters `json:"filters"`
}

// DefaultConstraints returns the standard exploration budget.
func DefaultConstraints() Constraints {
	return Constraints{
		MaxDistanceM:  DefaultRadiusMeters,
		MaxMinutes:    DefaultMaxMinutes,
		MaxDepth:      DefaultMaxDepth,
		MaxCandidates: DefaultMaxCandidates,
	}
}

// Candidate is an attraction reached by the exploration.
type Candidate struct {
	Attraction *model.Attraction `json:"attraction"`
	Depth      int               `json:"depth"`
	DistanceM  float64           `json:"distance_from_start_meters"`
	Minutes    int               `json:"time_from_start_minutes"`
	ParentID   *int64            `json:"parent_id"`
}

// Result is the outcome of an exploration. Candidates are in dequeue order.
type Result struct {
	StartID    int64             `json:"start_attraction_id"`
	Candidates []Candidate       `json:"candidates"`
	Explored   int               `json:"nodes_explored"`
	Levels     int               `json:"levels_explored"`
	Adjacency  map[int64][]int64 `json:"graph_structure"`
}

type queueItem struct {
	id        int64
	depth     int
	distanceM float64
	minutes   int
	parent    *int64
}

// walker holds the mutable state of one exploration.
type walker struct {
	g       *graph.Graph
	c       Constraints
	queue   []queueItem
	visited map[int64]bool
	res     *Result
}

// Explore runs a breadth-first search from startID. A node is evaluated for
// candidacy once, when dequeued; the start node is never a candidate.
func Explore(g *graph.Graph, startID int64, c Constraints) (*Result, error) {
	if _, ok := g.Node(startID); !ok {
		return nil, fmt.Errorf("explore: %w: %d", graph.ErrNodeNotFound, startID)
	}
	w := &walker{
		g:       g,
		c:       c,
		queue:   make([]queueItem, 0, g.Len()),
		visited: make(map[int64]bool, g.Len()),
		res: &Result{
			StartID:    startID,
			Candidates: []Candidate{},
			Adjacency:  make(map[int64][]int64),
		},
	}
	w.queue = append(w.queue, queueItem{id: startID})
	w.loop()

	slog.Debug("exploration finished",
		"start_id", startID,
		"candidates", len(w.res.Candidates),
		"explored", w.res.Explored,
		"levels", w.res.Levels)
	return w.res, nil
}

func (w *walker) loop() {
	for len(w.queue) > 0 && len(w.res.Candidates) < w.c.MaxCandidates {
		item := w.queue[0]
		w.queue = w.queue[1:]

		if w.visited[item.id] || item.depth > w.c.MaxDepth {
			continue
		}
		w.visited[item.id] = true
		w.res.Explored++
		if item.depth > w.res.Levels {
			w.res.Levels = item.depth
		}

		node, ok := w.g.Node(item.id)
		if !ok {
			continue
		}
		if item.depth > 0 && w.c.Filters.Match(node) {
			w.res.Candidates = append(w.res.Candidates, Candidate{
				Attraction: node,
				Depth:      item.depth,
				DistanceM:  model.Round2(item.distanceM),
				Minutes:    item.minutes,
				ParentID:   item.parent,
			})
		}
		w.enqueueNeighbors(item)
	}
}

func (w *walker) enqueueNeighbors(item queueItem) {
	edges := w.g.Neighbors(item.id)
	adj := make([]int64, 0, len(edges))
	for _, e := range edges {
		adj = append(adj, e.ToID)
	}
	w.res.Adjacency[item.id] = adj

	parent := item.id
	for _, e := range edges {
		if w.c.TransportMode != "" && e.Mode != w.c.TransportMode {
			continue
		}
		if w.visited[e.ToID] {
			continue
		}
		dist := item.distanceM + e.DistanceM
		mins := item.minutes + e.TravelMinutes
		if dist > w.c.MaxDistanceM || mins > w.c.MaxMinutes {
			continue
		}
		w.queue = append(w.queue, queueItem{
			id:        e.ToID,
			depth:     item.depth + 1,
			distanceM: dist,
			minutes:   mins,
			parent:    &parent,
		})
	}
}

// Match reports whether a passes every filter. Category and price comparisons
// ignore case.
func (f Filters) Match(a *model.Attraction) bool {
	if len(f.Categories) > 0 && !containsFold(f.Categories, a.Category) {
		return false
	}
	if f.MinRating != nil && (a.Rating == nil || *a.Rating < *f.MinRating) {
		return false
	}
	if len(f.PriceRanges) > 0 && !containsFold(f.PriceRanges, a.PriceRange) {
		return false
	}
	return true
}

func containsFold(set []string, v string) bool {
	for _, s := range set {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}

// PathTo rebuilds the exploration tree path from the start to target using
// candidate parent links. The result ends at target and is empty when
// target is not a candidate.
func PathTo(target int64, cands []Candidate) []int64 {
	parents := make(map[int64]*int64, len(cands))
	for _, c := range cands {
		parents[c.Attraction.ID] = c.ParentID
	}
	if _, ok := parents[target]; !ok {
		return nil
	}

	var rev []int64
	seen := make(map[int64]bool)
	cur := &target
	for cur != nil && !seen[*cur] {
		seen[*cur] = true
		rev = append(rev, *cur)
		cur = parents[*cur]
	}
	out := make([]int64, len(rev))
	for i, id := range rev {
		out[len(rev)-1-i] = id
	}
	return out
}
