// Package planner composes profile inference, candidate search, scoring,
// day clustering and route optimization into multi-day itinerary plans.
package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/rcliao/itinerary/internal/cluster"
	"github.com/rcliao/itinerary/internal/graph"
	"github.com/rcliao/itinerary/internal/metrics"
	"github.com/rcliao/itinerary/internal/model"
	"github.com/rcliao/itinerary/internal/route"
	"github.com/rcliao/itinerary/internal/rules"
	"github.com/rcliao/itinerary/internal/scoring"
	"github.com/rcliao/itinerary/internal/search"
)

// ErrInvalidRequest wraps request validation failures.
var ErrInvalidRequest = errors.New("invalid itinerary request")

// Generation defaults.
const (
	DefaultRadiusKm      = 10.0
	DefaultMaxCandidates = 50
	// DefaultDailyCap applies when the computed profile sets no daily limit.
	DefaultDailyCap = 4
	StatusDraft     = "draft"
)

// Store is the persistence the orchestrator reads profiles and graphs from and
// hands finished plans to.
type Store interface {
	graph.Source
	GetProfile(ctx context.Context, id int64) (*model.Profile, error)
	PersistItinerary(ctx context.Context, plan *model.ItineraryPlan) (string, error)
}

// Request describes one itinerary to generate.
type Request struct {
	ProfileID     int64                  `json:"user_profile_id" validate:"required,gt=0"`
	CenterID      int64                  `json:"city_center_attraction_id" validate:"required,gt=0"`
	NumDays       int                    `json:"num_days" validate:"required,min=1,max=30"`
	StartDate     time.Time              `json:"start_date" validate:"required"`
	HotelID       *int64                 `json:"hotel_attraction_id,omitempty" validate:"omitempty,gt=0"`
	Mode          model.OptimizationMode `json:"optimization_mode" validate:"omitempty,oneof=distance time cost balanced score"`
	MaxRadiusKm   float64                `json:"max_radius_km" validate:"gte=0,lte=100"`
	MaxCandidates int                    `json:"max_candidates" validate:"gte=0,lte=500"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// normalize validates r and fills defaults.
func (r Request) normalize() (Request, error) {
	if err := validate.Struct(r); err != nil {
		return r, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if r.Mode == "" {
		r.Mode = model.OptimizeBalanced
	}
	if r.MaxRadiusKm == 0 {
		r.MaxRadiusKm = DefaultRadiusKm
	}
	if r.MaxCandidates == 0 {
		r.MaxCandidates = DefaultMaxCandidates
	}
	return r, nil
}

// Orchestrator runs the itinerary pipeline. It is safe for concurrent use:
// every run loads its own graph and working memory.
type Orchestrator struct {
	store          Store
	profiler       *rules.Profiler
	scorer         *scoring.Scorer
	astarIter      int
	base           search.Constraints
	seed           *int64
	now            func() time.Time
	defaultWeather rules.Weather
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithProfiler replaces the default rule profiler.
func WithProfiler(p *rules.Profiler) Option {
	return func(o *Orchestrator) { o.profiler = p }
}

// WithAStarIterations caps nodes popped per route search.
func WithAStarIterations(n int) Option {
	return func(o *Orchestrator) { o.astarIter = n }
}

// WithSearchLimits sets the exploration time budget and depth. Values < 1
// keep the defaults.
func WithSearchLimits(maxMinutes, maxDepth int) Option {
	return func(o *Orchestrator) {
		if maxMinutes > 0 {
			o.base.MaxMinutes = maxMinutes
		}
		if maxDepth > 0 {
			o.base.MaxDepth = maxDepth
		}
	}
}

// WithClusterSeed makes day clustering reproducible. Each run gets a fresh
// source with the same seed.
func WithClusterSeed(seed int64) Option {
	return func(o *Orchestrator) { o.seed = &seed }
}

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New returns an orchestrator over store.
func New(store Store, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:     store,
		profiler:  rules.NewProfiler(nil),
		scorer:    scoring.New(scoring.DefaultWeights),
		astarIter: route.DefaultMaxIterations,
		base:      search.DefaultConstraints(),
		now:       time.Now,
		defaultWeather: rules.Weather{
			Condition:   "sunny",
			Temperature: model.Float(24),
		},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Generate builds a plan and persists it. The returned plan carries the id
// assigned by the store.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (*model.ItineraryPlan, error) {
	start := time.Now()
	plan, err := o.Build(ctx, req)
	return o.finish(ctx, req, plan, err, start)
}

// finish persists a built plan and records the run.
func (o *Orchestrator) finish(ctx context.Context, req Request, plan *model.ItineraryPlan, err error, start time.Time) (*model.ItineraryPlan, error) {
	if err != nil {
		metrics.PlanGenerated(string(req.Mode), outcome(err), time.Since(start))
		return nil, err
	}
	id, err := o.store.PersistItinerary(ctx, plan)
	if err != nil {
		metrics.PlanGenerated(string(plan.Params.Mode), "persist_error", time.Since(start))
		return nil, fmt.Errorf("persist itinerary: %w", err)
	}
	plan.ID = id
	metrics.PlanGenerated(string(plan.Params.Mode), "ok", time.Since(start))
	metrics.UnoptimizedDays(plan.UnoptimizedDays)
	slog.Info("itinerary generated",
		"id", id,
		"days", len(plan.Days),
		"attractions", plan.TotalAttractions,
		"unoptimized_days", plan.UnoptimizedDays,
		"took", time.Since(start))
	return plan, nil
}

// Build runs the pipeline without persisting the result.
func (o *Orchestrator) Build(ctx context.Context, req Request) (*model.ItineraryPlan, error) {
	req, err := req.normalize()
	if err != nil {
		return nil, err
	}

	profile, err := o.store.GetProfile(ctx, req.ProfileID)
	if err != nil {
		return nil, fmt.Errorf("get profile %d: %w", req.ProfileID, err)
	}
	g, err := graph.LoadForAttraction(ctx, o.store, req.CenterID)
	if err != nil {
		return nil, err
	}
	if _, err := g.MustNode(req.CenterID); err != nil {
		return nil, fmt.Errorf("city center: %w", err)
	}
	home := req.CenterID
	if req.HotelID != nil {
		if _, err := g.MustNode(*req.HotelID); err != nil {
			return nil, fmt.Errorf("hotel: %w", err)
		}
		home = *req.HotelID
	}

	// 1. Personalize.
	enriched := o.profiler.Enrich(*profile, &rules.Context{Time: &req.StartDate, Weather: &o.defaultWeather}, false)
	metrics.RulesFired(enriched.Metadata.FiredRules)
	cp := enriched.Computed

	// 2. Explore.
	c := o.base
	c.MaxDistanceM = req.MaxRadiusKm * 1000
	c.MaxCandidates = req.MaxCandidates
	c.Filters = search.ProfileFilters(profile)
	c, key := search.AdjustForMode(req.Mode, c)
	found, err := search.Explore(g, req.CenterID, c)
	if err != nil {
		return nil, err
	}
	search.Sort(found.Candidates, key)

	// 3. Score and select.
	dailyCap := cp.MaxDailyAttractions
	if dailyCap <= 0 {
		dailyCap = DefaultDailyCap
	}
	selected := scoring.Top(o.scorer.Rank(found.Candidates, cp), req.NumDays*dailyCap)

	pool := make([]cluster.Point[scoring.Scored], 0, len(selected))
	scores := make(map[int64]float64, len(selected))
	for _, s := range selected {
		if s.Attraction.Location == nil {
			continue
		}
		pool = append(pool, cluster.Point[scoring.Scored]{Coord: *s.Attraction.Location, Data: s})
		scores[s.Attraction.ID] = s.Score
	}
	slog.Info("candidates selected",
		"explored", found.Explored,
		"candidates", len(found.Candidates),
		"pool", len(pool),
		"daily_cap", dailyCap)

	// 4. Group by day.
	var rng *rand.Rand
	if o.seed != nil {
		rng = rand.New(rand.NewSource(*o.seed))
	}
	groups := cluster.Days(pool, req.NumDays, rng)

	plan := &model.ItineraryPlan{
		ProfileID:     req.ProfileID,
		DestinationID: g.DestinationID,
		StartPointID:  home,
		Name:          fmt.Sprintf("Itinerario %d días", req.NumDays),
		NumDays:       req.NumDays,
		StartDate:     dateOf(req.StartDate),
		EndDate:       dateOf(req.StartDate).AddDate(0, 0, req.NumDays-1),
		Params: model.GenerationParams{
			Mode:          req.Mode,
			MaxRadiusKm:   req.MaxRadiusKm,
			MaxCandidates: req.MaxCandidates,
		},
		Status:    StatusDraft,
		Days:      make([]model.ItineraryDay, 0, len(groups)),
		CreatedAt: o.now().UTC(),
	}

	// 5. Route each day.
	opt := route.NewOptimizer(g, route.WithMaxIterations(o.astarIter))
	for i, grp := range groups {
		day, err := o.planDay(opt, *profile, home, i, grp, plan.StartDate, req.Mode, scores)
		if err != nil {
			return nil, err
		}
		plan.Days = append(plan.Days, day)
	}

	// 6. Totals.
	assemble(plan)
	return plan, nil
}

func (o *Orchestrator) planDay(opt *route.Optimizer, profile model.Profile, home int64, idx int, grp cluster.Cluster[scoring.Scored], firstDay time.Time, mode model.OptimizationMode, scores map[int64]float64) (model.ItineraryDay, error) {
	waypoints := make([]int64, len(grp.Points))
	for i, p := range grp.Points {
		waypoints[i] = p.Data.Attraction.ID
	}
	day := model.ItineraryDay{
		DayNumber:        idx + 1,
		Date:             firstDay.AddDate(0, 0, idx),
		ClusterID:        idx,
		Centroid:         grp.Centroid,
		AttractionsCount: len(waypoints),
	}

	r, err := opt.MultiStop(home, waypoints, &home, mode, scores)
	if err != nil {
		return day, fmt.Errorf("day %d: %w", day.DayNumber, err)
	}
	metrics.NodesExplored("multistop", r.NodesExplored)

	if r.Found && r.Complete() {
		if !r.ReturnedToEnd {
			slog.Warn("day route does not return to start", "day", day.DayNumber, "start", home)
		}
		day.Optimized = true
		day.Stops = make([]model.DayStop, len(r.Attractions))
		for i, s := range r.Attractions {
			day.Stops[i] = dayStop(opt.Graph(), s.ID, s.Name, i+1, scores)
		}
		day.Segments = r.Segments
		day.TotalDistanceM = r.TotalDistanceM
		day.TotalMinutes = r.TotalMinutes
		day.TotalCost = r.TotalCost
		day.OptimizationScore = r.OptimizationScore
		day.Transport = r.Transport
	} else {
		slog.Warn("day route incomplete, listing attractions unoptimized",
			"day", day.DayNumber,
			"waypoints", len(waypoints),
			"visited", r.WaypointsVisited)
		day.Stops = make([]model.DayStop, len(grp.Points))
		for i, p := range grp.Points {
			day.Stops[i] = dayStop(opt.Graph(), p.Data.Attraction.ID, p.Data.Attraction.Name, i+1, scores)
		}
		day.Segments = []model.RouteSegment{}
	}

	v := o.profiler.Validate(rules.ItineraryFacts{
		Segments:         day.Segments,
		AttractionsCount: day.AttractionsCount,
		TotalCost:        day.TotalCost,
	}, profile, false)
	day.Warnings = v.Warnings
	day.ValidationErrors = v.ValidationErrors
	return day, nil
}

func dayStop(g *graph.Graph, id int64, name string, order int, scores map[int64]float64) model.DayStop {
	stop := model.DayStop{AttractionID: id, Name: name, Order: order, VisitMinutes: model.DefaultVisitMinutes}
	if n, ok := g.Node(id); ok && n.VisitMinutes != nil {
		stop.VisitMinutes = *n.VisitMinutes
	}
	if s, ok := scores[id]; ok {
		stop.Score = model.Float(s)
	}
	return stop
}

// assemble fills the itinerary-level totals. Unoptimized days contribute
// zero travel and are counted separately.
func assemble(plan *model.ItineraryPlan) {
	var scoreSum float64
	optimized := 0
	for _, d := range plan.Days {
		plan.TotalDistanceM += d.TotalDistanceM
		plan.TotalMinutes += d.TotalMinutes
		plan.TotalCost += d.TotalCost
		plan.TotalAttractions += d.AttractionsCount
		if d.Optimized {
			optimized++
			scoreSum += d.OptimizationScore
		} else {
			plan.UnoptimizedDays++
		}
	}
	plan.TotalDistanceM = model.Round2(plan.TotalDistanceM)
	plan.TotalCost = model.Round2(plan.TotalCost)
	if optimized > 0 {
		plan.AverageOptimizationScore = model.Round2(scoreSum / float64(optimized))
	}
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func outcome(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid"
	case errors.Is(err, graph.ErrNodeNotFound), errors.Is(err, graph.ErrDestinationNotFound):
		return "not_found"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	default:
		return "error"
	}
}
