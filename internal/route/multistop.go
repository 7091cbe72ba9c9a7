package route

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/rcliao/itinerary/internal/model"
)

// ErrNoWaypoints is returned when a multi-stop route has nothing to visit.
var ErrNoWaypoints = errors.New("at least one waypoint is required")

// legWeights ranks candidate legs of a multi-stop route. They apply to the
// leg's physical totals (km, hours, money), not to the A* edge cost.
var legWeights = map[model.OptimizationMode]Weights{
	model.OptimizeBalanced: {Distance: 1.0, Time: 1.0, Cost: 1.0},
	model.OptimizeDistance: {Distance: 5.0, Time: 0.5, Cost: 0.2},
	model.OptimizeTime:     {Distance: 0.5, Time: 5.0, Cost: 0.2},
	model.OptimizeCost:     {Distance: 0.1, Time: 0.1, Cost: 10.0},
	model.OptimizeScore:    {Distance: 0.3, Time: 0.3, Cost: 0.3},
}

// LegCost is the mode-weighted cost used to pick the next waypoint.
func LegCost(r model.OptimizedRoute, mode model.OptimizationMode) float64 {
	w, ok := legWeights[mode]
	if !ok {
		w = legWeights[model.OptimizeBalanced]
	}
	km := r.TotalDistanceM / 1000
	hours := float64(r.TotalMinutes) / 60
	c := km*w.Distance + hours*w.Time + r.TotalCost*w.Cost

	switch mode {
	case model.OptimizeCost:
		switch {
		case r.TotalCost == 0:
			c *= 0.3
		case r.TotalCost <= 10:
			c *= 0.6
		case r.TotalCost >= 50:
			c *= 2.5
		}
	case model.OptimizeDistance:
		if r.TotalDistanceM > 3000 {
			c *= 1.5
		}
	case model.OptimizeTime:
		if r.TotalMinutes > 30 {
			c *= 1.5
		}
	}
	return c
}

// MultiStop sequences waypoints greedily: from the current position it runs
// FindPath to every remaining waypoint and commits to the cheapest leg by
// LegCost. end defaults to start. When no remaining waypoint is reachable the
// route stops early and WaypointsVisited reports how far it got.
func (o *Optimizer) MultiStop(start int64, waypoints []int64, end *int64, mode model.OptimizationMode, scores map[int64]float64) (model.MultiStopRoute, error) {
	if len(waypoints) == 0 {
		return model.MultiStopRoute{}, ErrNoWaypoints
	}
	if _, err := o.g.MustNode(start); err != nil {
		return model.MultiStopRoute{}, fmt.Errorf("multi-stop start: %w", err)
	}
	for _, id := range waypoints {
		if _, err := o.g.MustNode(id); err != nil {
			return model.MultiStopRoute{}, fmt.Errorf("multi-stop waypoint: %w", err)
		}
	}
	target := start
	if end != nil {
		if _, err := o.g.MustNode(*end); err != nil {
			return model.MultiStopRoute{}, fmt.Errorf("multi-stop end: %w", err)
		}
		target = *end
	}

	out := model.MultiStopRoute{
		OptimizedRoute: model.OptimizedRoute{
			Attractions: []model.RouteStop{stopFor(o.g, start, 0, scores)},
			Segments:    []model.RouteSegment{},
			Mode:        mode,
		},
		WaypointsRequested: len(waypoints),
	}

	remaining := append([]int64(nil), waypoints...)
	current := start
	legs := 0
	for len(remaining) > 0 {
		best := -1
		var bestRoute model.OptimizedRoute
		bestCost := math.Inf(1)
		for i, next := range remaining {
			leg, err := o.FindPath(current, next, mode, Euclidean, scores)
			if err != nil {
				return model.MultiStopRoute{}, err
			}
			out.NodesExplored += leg.NodesExplored
			if !leg.Found {
				continue
			}
			if c := LegCost(leg, mode); c < bestCost {
				best, bestRoute, bestCost = i, leg, c
			}
		}
		if best < 0 {
			slog.Warn("multi-stop route stopped early",
				"from", current,
				"remaining", len(remaining),
				"mode", mode)
			break
		}

		appendLeg(&out, bestRoute)
		legs++
		out.WaypointsVisited++
		current = remaining[best]
		remaining = append(remaining[:best], remaining[best+1:]...)
	}

	if current != target {
		leg, err := o.FindPath(current, target, mode, Euclidean, scores)
		if err != nil {
			return model.MultiStopRoute{}, err
		}
		out.NodesExplored += leg.NodesExplored
		if leg.Found {
			appendLeg(&out, leg)
			legs++
			out.ReturnedToEnd = true
		}
	} else {
		out.ReturnedToEnd = true
	}

	if legs == 0 {
		r := emptyRoute(mode, out.NodesExplored)
		return model.MultiStopRoute{OptimizedRoute: r, WaypointsRequested: len(waypoints)}, nil
	}

	out.Found = true
	out.TotalDistanceM = model.Round2(out.TotalDistanceM)
	out.TotalCost = model.Round2(out.TotalCost)
	out.OptimizationScore = model.Round2(multiStopScore(out.OptimizedRoute, mode))

	slog.Debug("multi-stop route built",
		"start", start,
		"end", target,
		"mode", mode,
		"visited", out.WaypointsVisited,
		"requested", out.WaypointsRequested,
		"nodes_explored", out.NodesExplored)
	return out, nil
}

// appendLeg adds every stop of leg except its first, which is the current
// position already on the route.
func appendLeg(r *model.MultiStopRoute, leg model.OptimizedRoute) {
	order := len(r.Attractions)
	for _, s := range leg.Attractions[1:] {
		s.Order = order
		r.Attractions = append(r.Attractions, s)
		order++
	}
	for _, seg := range leg.Segments {
		r.Segments = append(r.Segments, seg)
		switch {
		case seg.Cost == 0:
			r.Transport.Walking++
		case seg.Cost <= 30:
			r.Transport.PublicTransit++
		default:
			r.Transport.Taxi++
		}
	}
	r.TotalDistanceM += leg.TotalDistanceM
	r.TotalMinutes += leg.TotalMinutes
	r.TotalCost += leg.TotalCost
	r.PathCost += leg.PathCost
}

func multiStopScore(r model.OptimizedRoute, mode model.OptimizationMode) float64 {
	switch mode {
	case model.OptimizeCost:
		switch c := r.TotalCost; {
		case c == 0:
			return 100
		case c <= 20:
			return 90
		case c <= 50:
			return 75
		case c <= 100:
			return 50
		default:
			return math.Max(0, 100-c)
		}
	case model.OptimizeDistance:
		return math.Max(0, 100-r.TotalDistanceM/1000*10)
	case model.OptimizeTime:
		return math.Max(0, 100-float64(r.TotalMinutes)*0.5)
	default:
		return 100 - math.Min(50, r.TotalDistanceM/10000*50) - math.Min(30, r.TotalCost*0.3)
	}
}
