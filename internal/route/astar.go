package route

import (
	"container/heap"
	"fmt"
	"log/slog"
	"math"

	"github.com/rcliao/itinerary/internal/graph"
	"github.com/rcliao/itinerary/internal/model"
)

// DefaultMaxIterations bounds the number of nodes one search may pop.
const DefaultMaxIterations = 10000

// Optimizer runs path searches over one loaded graph. It holds no per-search
// state.
type Optimizer struct {
	g             *graph.Graph
	maxIterations int
}

// Option configures an Optimizer.
type Option func(*Optimizer)

// WithMaxIterations caps the nodes popped per search. Values < 1 are ignored.
func WithMaxIterations(n int) Option {
	return func(o *Optimizer) {
		if n > 0 {
			o.maxIterations = n
		}
	}
}

// NewOptimizer returns an optimizer over g.
func NewOptimizer(g *graph.Graph, opts ...Option) *Optimizer {
	o := &Optimizer{g: g, maxIterations: DefaultMaxIterations}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Graph returns the graph the optimizer searches.
func (o *Optimizer) Graph() *graph.Graph { return o.g }

// FindPath searches the lowest cost path from start to end. scores maps
// attraction ids to 0-100 suitability scores and may be nil. An unreachable
// end is not an error: the route comes back with Found false.
func (o *Optimizer) FindPath(start, end int64, mode model.OptimizationMode, h Heuristic, scores map[int64]float64) (model.OptimizedRoute, error) {
	if _, err := o.g.MustNode(start); err != nil {
		return model.OptimizedRoute{}, fmt.Errorf("find path start: %w", err)
	}
	goal, err := o.g.MustNode(end)
	if err != nil {
		return model.OptimizedRoute{}, fmt.Errorf("find path end: %w", err)
	}

	r := &runner{
		g:       o.g,
		goal:    goal,
		mode:    mode,
		w:       WeightsFor(mode),
		h:       h,
		scores:  scores,
		gScore:  map[int64]float64{start: 0},
		via:     make(map[int64]model.Connection),
		closed:  make(map[int64]bool),
		maxIter: o.maxIterations,
	}
	found := r.run(start)
	if !found {
		slog.Warn("no path found", "start", start, "end", end, "mode", mode, "nodes_explored", r.explored)
		return emptyRoute(mode, r.explored), nil
	}
	return r.build(start, end), nil
}

// runner holds the mutable state of one search.
type runner struct {
	g        *graph.Graph
	goal     *model.Attraction
	mode     model.OptimizationMode
	w        Weights
	h        Heuristic
	scores   map[int64]float64
	gScore   map[int64]float64
	via      map[int64]model.Connection
	closed   map[int64]bool
	open     openSet
	seq      int
	explored int
	maxIter  int
}

func (r *runner) push(id int64, g float64) {
	n, _ := r.g.Node(id)
	r.seq++
	heap.Push(&r.open, openItem{id: id, g: g, f: g + r.h.Estimate(n, r.goal, r.w), seq: r.seq})
}

func (r *runner) run(start int64) bool {
	heap.Init(&r.open)
	r.push(start, 0)

	for r.open.Len() > 0 && r.explored < r.maxIter {
		cur := heap.Pop(&r.open).(openItem)
		r.explored++

		if cur.id == r.goal.ID {
			return true
		}
		if r.closed[cur.id] {
			continue
		}
		r.closed[cur.id] = true

		for _, e := range r.g.Neighbors(cur.id) {
			if r.closed[e.ToID] {
				continue
			}
			tentative := cur.g + EdgeCost(e, r.w, r.mode, r.scores[e.ToID])
			if old, seen := r.gScore[e.ToID]; seen && tentative >= old {
				continue
			}
			r.gScore[e.ToID] = tentative
			r.via[e.ToID] = e
			r.push(e.ToID, tentative)
		}
	}
	return false
}

// build reconstructs the route from the edges recorded during relaxation.
func (r *runner) build(start, end int64) model.OptimizedRoute {
	var edges []model.Connection
	for cur := end; cur != start; {
		e := r.via[cur]
		edges = append(edges, e)
		cur = e.FromID
	}
	for i, j := 0, len(edges)-1; i < j; i, j = i+1, j-1 {
		edges[i], edges[j] = edges[j], edges[i]
	}

	ids := make([]int64, 0, len(edges)+1)
	ids = append(ids, start)
	for _, e := range edges {
		ids = append(ids, e.ToID)
	}

	route := model.OptimizedRoute{
		Attractions:   make([]model.RouteStop, 0, len(ids)),
		Segments:      make([]model.RouteSegment, 0, len(edges)),
		Found:         true,
		NodesExplored: r.explored,
		Mode:          r.mode,
	}
	for i, id := range ids {
		route.Attractions = append(route.Attractions, stopFor(r.g, id, i, r.scores))
	}
	for _, e := range edges {
		seg := segmentOf(e)
		route.Segments = append(route.Segments, seg)
		route.TotalDistanceM += seg.DistanceM
		route.TotalMinutes += seg.TravelMinutes
		route.TotalCost += seg.Cost
	}

	g := r.gScore[end]
	route.TotalDistanceM = model.Round2(route.TotalDistanceM)
	route.TotalCost = model.Round2(route.TotalCost)
	route.PathCost = g
	route.OptimizationScore = model.Round2(math.Max(0, math.Min(100, 100-g*100)))

	slog.Debug("path found",
		"start", start,
		"end", end,
		"mode", r.mode,
		"hops", len(edges),
		"nodes_explored", r.explored)
	return route
}

func stopFor(g *graph.Graph, id int64, order int, scores map[int64]float64) model.RouteStop {
	stop := model.RouteStop{ID: id, Order: order}
	if n, ok := g.Node(id); ok {
		stop.Name = n.Name
		stop.Category = n.Category
		stop.Rating = n.Rating
		stop.PriceRange = n.PriceRange
		stop.Address = n.Address
	}
	if s, ok := scores[id]; ok {
		stop.SuitabilityScore = model.Float(s)
	}
	return stop
}

func segmentOf(e model.Connection) model.RouteSegment {
	return model.RouteSegment{
		FromID:        e.FromID,
		ToID:          e.ToID,
		DistanceM:     e.DistanceM,
		TravelMinutes: e.TravelMinutes,
		Mode:          e.Mode,
		Cost:          e.Cost,
	}
}

func emptyRoute(mode model.OptimizationMode, explored int) model.OptimizedRoute {
	return model.OptimizedRoute{
		Attractions:   []model.RouteStop{},
		Segments:      []model.RouteSegment{},
		NodesExplored: explored,
		Mode:          mode,
	}
}

// openItem is an open set entry. Stale entries are skipped when popped.
type openItem struct {
	id  int64
	g   float64
	f   float64
	seq int
}

// openSet is a min-heap ordered by f, then by insertion order.
type openSet []openItem

func (s openSet) Len() int { return len(s) }

func (s openSet) Less(i, j int) bool {
	if s[i].f != s[j].f {
		return s[i].f < s[j].f
	}
	return s[i].seq < s[j].seq
}

func (s openSet) Swap(i, j int) { s[i], s[j] = s[j], s[i] }

func (s *openSet) Push(x any) { *s = append(*s, x.(openItem)) }

func (s *openSet) Pop() any {
	old := *s
	n := len(old)
	it := old[n-1]
	*s = old[:n-1]
	return it
}
