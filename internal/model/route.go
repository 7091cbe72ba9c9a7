package model

import "fmt"

// OptimizationMode selects how routes and candidate searches trade off
// distance, time, money and suitability.
type OptimizationMode string

const (
	OptimizeDistance OptimizationMode = "distance"
	OptimizeTime     OptimizationMode = "time"
	OptimizeCost     OptimizationMode = "cost"
	OptimizeBalanced OptimizationMode = "balanced"
	OptimizeScore    OptimizationMode = "score"
)

// AllModes lists every optimization mode in comparison order.
var AllModes = []OptimizationMode{OptimizeDistance, OptimizeTime, OptimizeCost, OptimizeBalanced, OptimizeScore}

// ParseMode validates a mode name. The empty string means balanced.
func ParseMode(s string) (OptimizationMode, error) {
	if s == "" {
		return OptimizeBalanced, nil
	}
	for _, m := range AllModes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("invalid optimization mode %q (valid: distance, time, cost, balanced, score)", s)
}

// RouteSegment is one traversed connection of a route.
type RouteSegment struct {
	FromID        int64   `json:"from_attraction_id"`
	ToID          int64   `json:"to_attraction_id"`
	DistanceM     float64 `json:"distance_meters"`
	TravelMinutes int     `json:"travel_time_minutes"`
	Mode          string  `json:"transport_mode"`
	Cost          float64 `json:"cost"`
}

// RouteStop is an attraction visited by a route, in order.
type RouteStop struct {
	ID               int64    `json:"id"`
	Name             string   `json:"name"`
	Category         string   `json:"category"`
	Rating           *float64 `json:"rating,omitempty"`
	PriceRange       string   `json:"price_range,omitempty"`
	Address          string   `json:"address,omitempty"`
	SuitabilityScore *float64 `json:"suitability_score,omitempty"`
	Order            int      `json:"order"`
}

// OptimizedRoute is the result of a path search. When Found is false the
// attraction and segment lists are empty and every total is zero.
type OptimizedRoute struct {
	Attractions       []RouteStop      `json:"attractions"`
	Segments          []RouteSegment   `json:"segments"`
	TotalDistanceM    float64          `json:"total_distance_meters"`
	TotalMinutes      int              `json:"total_time_minutes"`
	TotalCost         float64          `json:"total_cost"`
	PathCost          float64          `json:"path_cost"`
	OptimizationScore float64          `json:"optimization_score"`
	Found             bool             `json:"path_found"`
	NodesExplored     int              `json:"nodes_explored"`
	Mode              OptimizationMode `json:"optimization_mode"`
}

// TransportBreakdown counts multi-stop segments by price class.
type TransportBreakdown struct {
	Walking       int `json:"walking"`
	PublicTransit int `json:"public_transit"`
	Taxi          int `json:"taxi"`
}

// MultiStopRoute is a day route through several waypoints.
type MultiStopRoute struct {
	OptimizedRoute
	Transport          TransportBreakdown `json:"transport_breakdown"`
	WaypointsRequested int                `json:"waypoints_requested"`
	WaypointsVisited   int                `json:"waypoints_visited"`
	ReturnedToEnd      bool               `json:"returned_to_end"`
}

// Complete reports whether every requested waypoint was reached. A complete
// route may still have failed to return to its end point.
func (r *MultiStopRoute) Complete() bool {
	return r.WaypointsVisited == r.WaypointsRequested
}
