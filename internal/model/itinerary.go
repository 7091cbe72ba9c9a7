package model

import (
	"math"
	"time"
)

// DefaultVisitMinutes is used for attractions without a known visit duration.
const DefaultVisitMinutes = 60

// Warning is a non-blocking advisory produced by the rule engine.
type Warning struct {
	Type           string `json:"type"`
	Message        string `json:"message"`
	Recommendation string `json:"recommendation,omitempty"`
}

// ValidationError is a blocking finding produced by the rule engine.
type ValidationError struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// GenerationParams records the inputs an itinerary was generated with.
type GenerationParams struct {
	Mode          OptimizationMode `json:"optimization_mode"`
	MaxRadiusKm   float64          `json:"max_radius_km"`
	MaxCandidates int              `json:"max_candidates"`
}

// DayStop is one attraction scheduled on an itinerary day.
type DayStop struct {
	AttractionID int64    `json:"attraction_id"`
	Name         string   `json:"name,omitempty"`
	Order        int      `json:"order"`
	VisitMinutes int      `json:"visit_duration_minutes"`
	Score        *float64 `json:"score,omitempty"`
}

// ItineraryDay is one day of a plan. Optimized is false when the day route
// could not be computed and Stops lists the clustered attractions in their
// pre-optimization order with zero travel totals.
type ItineraryDay struct {
	DayNumber         int                `json:"day_number"`
	Date              time.Time          `json:"date"`
	ClusterID         int                `json:"cluster_id"`
	Centroid          Coordinate         `json:"centroid"`
	Optimized         bool               `json:"optimized"`
	Stops             []DayStop          `json:"attractions"`
	Segments          []RouteSegment     `json:"segments"`
	TotalDistanceM    float64            `json:"total_distance_meters"`
	TotalMinutes      int                `json:"total_time_minutes"`
	TotalCost         float64            `json:"total_cost"`
	AttractionsCount  int                `json:"attractions_count"`
	OptimizationScore float64            `json:"optimization_score"`
	Transport         TransportBreakdown `json:"transport_breakdown"`
	Warnings          []Warning          `json:"warnings,omitempty"`
	ValidationErrors  []ValidationError  `json:"validation_errors,omitempty"`
}

// ItineraryPlan is a complete multi-day plan. It is not modified after
// assembly.
type ItineraryPlan struct {
	ID                       string           `json:"id"`
	ProfileID                int64            `json:"user_profile_id"`
	DestinationID            int64            `json:"destination_id"`
	StartPointID             int64            `json:"start_point_id"`
	Name                     string           `json:"name"`
	NumDays                  int              `json:"num_days"`
	StartDate                time.Time        `json:"start_date"`
	EndDate                  time.Time        `json:"end_date"`
	Params                   GenerationParams `json:"generation_params"`
	Status                   string           `json:"status"`
	Days                     []ItineraryDay   `json:"days"`
	TotalDistanceM           float64          `json:"total_distance_meters"`
	TotalMinutes             int              `json:"total_duration_minutes"`
	TotalCost                float64          `json:"total_cost"`
	TotalAttractions         int              `json:"total_attractions"`
	UnoptimizedDays          int              `json:"unoptimized_days"`
	AverageOptimizationScore float64          `json:"average_optimization_score"`
	CreatedAt                time.Time        `json:"created_at"`
}

// ItinerarySummary is the compact view returned after generation.
type ItinerarySummary struct {
	NumDays          int     `json:"num_days"`
	TotalAttractions int     `json:"total_attractions"`
	TotalDistanceKm  float64 `json:"total_distance_km"`
	TotalTimeHours   float64 `json:"total_time_hours"`
	TotalCost        float64 `json:"total_cost"`
	UnoptimizedDays  int     `json:"unoptimized_days"`
}

// Summary derives the compact view of the plan.
func (p *ItineraryPlan) Summary() ItinerarySummary {
	return ItinerarySummary{
		NumDays:          p.NumDays,
		TotalAttractions: p.TotalAttractions,
		TotalDistanceKm:  Round2(p.TotalDistanceM / 1000),
		TotalTimeHours:   Round2(float64(p.TotalMinutes) / 60),
		TotalCost:        Round2(p.TotalCost),
		UnoptimizedDays:  p.UnoptimizedDays,
	}
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
