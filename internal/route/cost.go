// Package route finds low-cost paths through the attraction graph with A*
// and sequences multi-stop day routes.
package route

import (
	"fmt"
	"math"

	"github.com/rcliao/itinerary/internal/model"
)

// Weights blends the terms of the edge cost function.
type Weights struct {
	Distance float64 `json:"distance"`
	Time     float64 `json:"time"`
	Cost     float64 `json:"cost"`
	Score    float64 `json:"score"`
}

var modeWeights = map[model.OptimizationMode]Weights{
	model.OptimizeDistance: {Distance: 3.0, Time: 0.5, Cost: 0.3, Score: 0.2},
	model.OptimizeTime:     {Distance: 0.5, Time: 3.0, Cost: 0.3, Score: 0.2},
	model.OptimizeCost:     {Distance: 0.2, Time: 0.2, Cost: 5.0, Score: 0.1},
	model.OptimizeBalanced: {Distance: 1.0, Time: 1.0, Cost: 1.0, Score: 1.0},
	model.OptimizeScore:    {Distance: 0.3, Time: 0.3, Cost: 0.2, Score: 3.0},
}

// WeightsFor returns the preset weights of mode. Unknown modes use balanced.
func WeightsFor(mode model.OptimizationMode) Weights {
	if w, ok := modeWeights[mode]; ok {
		return w
	}
	return modeWeights[model.OptimizeBalanced]
}

// Normalization scales of the edge cost function.
const (
	distanceScaleM    = 5000.0
	timeScaleMinutes  = 60.0
	costScale         = 100.0
	minEdgeCost       = 0.001
	metersPerDegree   = 111000.0
	earthRadiusMeters = 6371000.0
)

// EdgeCost is the weighted cost of traversing e. suitability is the 0-100
// score of the edge's target attraction, or 0 when unknown.
func EdgeCost(e model.Connection, w Weights, mode model.OptimizationMode, suitability float64) float64 {
	distNorm := math.Min(1, e.DistanceM/distanceScaleM)
	timeNorm := math.Min(1, float64(e.TravelMinutes)/timeScaleMinutes)

	var costFactor float64
	if mode == model.OptimizeCost {
		costFactor = tieredCostFactor(e.Cost)
	} else {
		costFactor = math.Min(1, e.Cost/costScale)
	}

	var scoreFactor float64
	if suitability > 0 {
		scoreFactor = 1 - suitability/100
	}

	c := w.Distance*distNorm + w.Time*timeNorm + w.Cost*costFactor + w.Score*scoreFactor
	return math.Max(c, minEdgeCost)
}

func tieredCostFactor(c float64) float64 {
	switch {
	case c <= 0:
		return 0
	case c <= 5:
		return 0.1
	case c <= 15:
		return 0.3
	case c <= 30:
		return 0.6
	default:
		return 1 + c/50
	}
}

// Heuristic selects the A* remaining-cost estimate.
type Heuristic string

const (
	Euclidean Heuristic = "euclidean"
	Zero      Heuristic = "zero"
	Manhattan Heuristic = "manhattan"
)

// ParseHeuristic validates a heuristic name. The empty string means
// euclidean.
func ParseHeuristic(s string) (Heuristic, error) {
	switch Heuristic(s) {
	case "":
		return Euclidean, nil
	case Euclidean, Zero, Manhattan:
		return Heuristic(s), nil
	}
	return "", fmt.Errorf("invalid heuristic %q (valid: euclidean, zero, manhattan)", s)
}

// Estimate returns the heuristic cost from a to goal. Geographic distances
// are mapped into edge cost units through the distance term, so the estimate
// is a lower bound only when edge costs are distance dominated.
func (h Heuristic) Estimate(a, goal *model.Attraction, w Weights) float64 {
	if a.Location == nil || goal.Location == nil {
		return 0
	}
	var meters float64
	switch h {
	case Euclidean:
		meters = Haversine(*a.Location, *goal.Location)
	case Manhattan:
		meters = ManhattanMeters(*a.Location, *goal.Location)
	default:
		return 0
	}
	return w.Distance * math.Min(1, meters/distanceScaleM)
}

// Haversine returns the great-circle distance in meters.
func Haversine(a, b model.Coordinate) float64 {
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)
	s := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(a.Lat))*math.Cos(radians(b.Lat))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusMeters * 2 * math.Asin(math.Sqrt(s))
}

// ManhattanMeters sums the absolute latitude and longitude deltas, scaled to
// meters.
func ManhattanMeters(a, b model.Coordinate) float64 {
	return (math.Abs(a.Lat-b.Lat) + math.Abs(a.Lon-b.Lon)) * metersPerDegree
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
