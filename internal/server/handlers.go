package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rcliao/itinerary/internal/graph"
	"github.com/rcliao/itinerary/internal/model"
	"github.com/rcliao/itinerary/internal/planner"
	"github.com/rcliao/itinerary/internal/route"
	"github.com/rcliao/itinerary/internal/rules"
	"github.com/rcliao/itinerary/internal/search"
	"github.com/rcliao/itinerary/internal/store"
)

var errBadRequest = errors.New("bad request")

// fail writes err with the status its kind maps to.
func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, planner.ErrInvalidRequest), errors.Is(err, route.ErrNoWaypoints):
		status = http.StatusBadRequest
	case errors.Is(err, graph.ErrNodeNotFound), errors.Is(err, graph.ErrDestinationNotFound), errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error(), "request_id": c.GetString("request_id")})
}

func bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		fail(c, errors.Join(errBadRequest, err))
		return false
	}
	return true
}

type exploreRequest struct {
	StartID       int64                  `json:"start_attraction_id" binding:"required"`
	ProfileID     int64                  `json:"user_profile_id"`
	Mode          model.OptimizationMode `json:"optimization_mode"`
	MaxDistanceM  float64                `json:"max_distance_meters"`
	MaxMinutes    int                    `json:"max_time_minutes"`
	MaxDepth      int                    `json:"max_depth"`
	MaxCandidates int                    `json:"max_candidates"`
	TransportMode string                 `json:"transport_mode"`
	Filters       *search.Filters        `json:"filters"`
}

func (s *Server) handleExplore(c *gin.Context) {
	var req exploreRequest
	if !bind(c, &req) {
		return
	}
	ctx := c.Request.Context()

	g, err := graph.LoadForAttraction(ctx, s.store, req.StartID)
	if err != nil {
		fail(c, err)
		return
	}

	cons := search.Constraints{
		MaxDistanceM:  s.search.RadiusKm * 1000,
		MaxMinutes:    s.search.MaxTimeMinutes,
		MaxDepth:      s.search.MaxDepth,
		MaxCandidates: s.search.MaxCandidates,
		TransportMode: req.TransportMode,
	}
	if req.MaxDistanceM > 0 {
		cons.MaxDistanceM = req.MaxDistanceM
	}
	if req.MaxMinutes > 0 {
		cons.MaxMinutes = req.MaxMinutes
	}
	if req.MaxDepth > 0 {
		cons.MaxDepth = req.MaxDepth
	}
	if req.MaxCandidates > 0 {
		cons.MaxCandidates = req.MaxCandidates
	}
	if req.ProfileID != 0 {
		p, err := s.store.GetProfile(ctx, req.ProfileID)
		if err != nil {
			fail(c, err)
			return
		}
		cons.Filters = search.ProfileFilters(p)
	}
	if req.Filters != nil {
		cons.Filters = *req.Filters
	}

	key := search.SortBalanced
	if req.Mode != "" {
		if _, err := model.ParseMode(string(req.Mode)); err != nil {
			fail(c, errors.Join(errBadRequest, err))
			return
		}
		cons, key = search.AdjustForMode(req.Mode, cons)
	}

	res, err := search.Explore(g, req.StartID, cons)
	if err != nil {
		fail(c, err)
		return
	}
	if req.Mode != "" {
		search.Sort(res.Candidates, key)
	}
	c.JSON(http.StatusOK, gin.H{"constraints": cons, "result": res})
}

type pathRequest struct {
	StartID   int64                  `json:"start_attraction_id" binding:"required"`
	EndID     int64                  `json:"end_attraction_id" binding:"required"`
	Mode      model.OptimizationMode `json:"optimization_mode"`
	Heuristic string                 `json:"heuristic"`
	ProfileID int64                  `json:"user_profile_id"`
}

// prepare loads the graph around start and resolves the mode and the
// suitability scores of the optional profile.
func (s *Server) prepare(ctx context.Context, start, profileID int64, mode model.OptimizationMode) (*graph.Graph, model.OptimizationMode, map[int64]float64, error) {
	m, err := model.ParseMode(string(mode))
	if err != nil {
		return nil, "", nil, errors.Join(errBadRequest, err)
	}
	g, err := graph.LoadForAttraction(ctx, s.store, start)
	if err != nil {
		return nil, "", nil, err
	}
	if profileID == 0 {
		return g, m, nil, nil
	}
	p, err := s.store.GetProfile(ctx, profileID)
	if err != nil {
		return nil, "", nil, err
	}
	cp := s.profiler.Enrich(*p, nil, false).Computed
	return g, m, s.scorer.ScoreNodes(g, cp), nil
}

func (s *Server) handlePath(c *gin.Context) {
	var req pathRequest
	if !bind(c, &req) {
		return
	}
	h, err := route.ParseHeuristic(req.Heuristic)
	if err != nil {
		fail(c, errors.Join(errBadRequest, err))
		return
	}
	g, mode, scores, err := s.prepare(c.Request.Context(), req.StartID, req.ProfileID, req.Mode)
	if err != nil {
		fail(c, err)
		return
	}
	r, err := route.NewOptimizer(g, route.WithMaxIterations(s.astarIter)).FindPath(req.StartID, req.EndID, mode, h, scores)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (s *Server) handleCompare(c *gin.Context) {
	var req pathRequest
	if !bind(c, &req) {
		return
	}
	g, _, scores, err := s.prepare(c.Request.Context(), req.StartID, req.ProfileID, "")
	if err != nil {
		fail(c, err)
		return
	}
	cmp, err := route.NewOptimizer(g, route.WithMaxIterations(s.astarIter)).Compare(req.StartID, req.EndID, scores)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comparisons": cmp})
}

type multiStopRequest struct {
	StartID   int64                  `json:"start_attraction_id" binding:"required"`
	Waypoints []int64                `json:"waypoints" binding:"required"`
	EndID     *int64                 `json:"end_attraction_id"`
	Mode      model.OptimizationMode `json:"optimization_mode"`
	ProfileID int64                  `json:"user_profile_id"`
}

func (s *Server) handleMultiStop(c *gin.Context) {
	var req multiStopRequest
	if !bind(c, &req) {
		return
	}
	g, mode, scores, err := s.prepare(c.Request.Context(), req.StartID, req.ProfileID, req.Mode)
	if err != nil {
		fail(c, err)
		return
	}
	r, err := route.NewOptimizer(g, route.WithMaxIterations(s.astarIter)).MultiStop(req.StartID, req.Waypoints, req.EndID, mode, scores)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

type enrichRequest struct {
	Context rules.Context `json:"context"`
	Trace   bool          `json:"trace"`
}

func (s *Server) handleEnrich(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, errors.Join(errBadRequest, err))
		return
	}
	var req enrichRequest
	if c.Request.ContentLength != 0 && !bind(c, &req) {
		return
	}
	ctx := c.Request.Context()

	p, err := s.store.GetProfile(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	res := s.profiler.Enrich(*p, &req.Context, req.Trace)
	if err := s.store.SaveComputedProfile(ctx, id, res.Computed); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type validateRequest struct {
	ProfileID int64                `json:"user_profile_id" binding:"required"`
	Itinerary rules.ItineraryFacts `json:"itinerary"`
	Trace     bool                 `json:"trace"`
}

func (s *Server) handleValidate(c *gin.Context) {
	var req validateRequest
	if !bind(c, &req) {
		return
	}
	p, err := s.store.GetProfile(c.Request.Context(), req.ProfileID)
	if err != nil {
		fail(c, err)
		return
	}
	res := s.profiler.Validate(req.Itinerary, *p, req.Trace)
	c.JSON(http.StatusOK, gin.H{"is_valid": res.Valid(), "result": res})
}

func (s *Server) handleGenerate(c *gin.Context) {
	var req planner.Request
	if !bind(c, &req) {
		return
	}
	plan, err := s.pool.Generate(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"itinerary": plan, "summary": plan.Summary()})
}

func (s *Server) handleGetItinerary(c *gin.Context) {
	plan, err := s.store.GetItinerary(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"itinerary": plan, "summary": plan.Summary()})
}

type ruleInfo struct {
	ID          string         `json:"rule_id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Priority    string         `json:"priority"`
	Category    rules.Category `json:"category"`
}

func (s *Server) handleRules(c *gin.Context) {
	rs := s.profiler.Engine().Rules()
	out := make([]ruleInfo, 0, len(rs))
	for _, r := range rs {
		out = append(out, ruleInfo{ID: r.ID, Name: r.Name, Description: r.Description, Priority: r.Priority.String(), Category: r.Category})
	}
	c.JSON(http.StatusOK, gin.H{"rules": out, "total": len(out)})
}
