package rules

import (
	"fmt"
	"strings"
	"time"

	"github.com/rcliao/itinerary/internal/model"
)

// Thresholds used by the rule base.
const (
	shortWalkMeters         = 1000.0
	defaultMaxWalkMeters    = 10000.0
	accessibleWalkMeters    = 500.0
	heatThresholdC          = 30.0
	defaultTemperatureC     = 25.0
	travelTimeLimitMinutes  = 240
	fatigueAttractionsLimit = 5
	lowBudgetDailyCost      = 50.0
	premiumMinRating        = 4.0
)

// Base returns the rule base in declaration order. The returned slice is a
// fresh copy; the rules themselves are shared and immutable.
func Base() []Rule {
	out := make([]Rule, len(base))
	copy(out, base)
	return out
}

// ByCategory returns the rules of one category in declaration order.
func ByCategory(c Category) []Rule {
	var out []Rule
	for _, r := range base {
		if r.Category == c {
			out = append(out, r)
		}
	}
	return out
}

var base = []Rule{
	// Profile rules.
	{
		ID:          "PROFILE_001",
		Name:        "Family tourism",
		Description: "If tourism_type is 'familiar' then add family-friendly preferences",
		Priority:    High,
		Category:    CategoryProfile,
		Condition:   func(wm *WorkingMemory) bool { return wm.Preferences.TourismType == "familiar" },
		Action: func(wm WorkingMemory) (WorkingMemory, error) {
			wm.Computed.FamilyFriendly = true
			wm.Computed.RequiredAmenities = []string{"wheelchair", "stroller_friendly", "restrooms"}
			wm.Computed.RecommendedCategories = appendUnique(wm.Computed.RecommendedCategories,
				"entretenimiento", "naturaleza", "educativo")
			wm.applied("PROFILE_001", "family preferences added")
			return wm, nil
		},
	},
	{
		ID:          "PROFILE_002",
		Name:        "Low budget",
		Description: "If budget_range is 'bajo' then allow only free and low price ranges",
		Priority:    High,
		Category:    CategoryProfile,
		Condition:   func(wm *WorkingMemory) bool { return strings.ToLower(wm.BudgetRange) == model.BudgetLow },
		Action: func(wm WorkingMemory) (WorkingMemory, error) {
			wm.Computed.AllowedPriceRanges = []string{model.PriceFree, model.PriceLow}
			wm.Computed.MaxDailyCost = model.Float(lowBudgetDailyCost)
			wm.Computed.PreferFree = true
			wm.applied("PROFILE_002", "low budget filters applied")
			return wm, nil
		},
	},
	{
		ID:          "PROFILE_003",
		Name:        "High budget",
		Description: "If budget_range is 'alto' or 'lujo' then prioritize premium experiences",
		Priority:    Medium,
		Category:    CategoryProfile,
		Condition: func(wm *WorkingMemory) bool {
			b := strings.ToLower(wm.BudgetRange)
			return b == model.BudgetHigh || b == model.BudgetLuxury
		},
		Action: func(wm WorkingMemory) (WorkingMemory, error) {
			wm.Computed.MinRating = model.Float(premiumMinRating)
			wm.Computed.PreferVerified = true
			wm.Computed.AllowExclusive = true
			wm.applied("PROFILE_003", "premium experiences prioritized")
			return wm, nil
		},
	},
	{
		ID:          "PROFILE_004",
		Name:        "Reduced mobility",
		Description: "If max_walking_distance < 1000m then require accessibility",
		Priority:    Critical,
		Category:    CategoryProfile,
		Condition: func(wm *WorkingMemory) bool {
			return maxWalk(wm, defaultMaxWalkMeters) < shortWalkMeters
		},
		Action: func(wm WorkingMemory) (WorkingMemory, error) {
			wm.Computed.RequireAccessibility = true
			wm.Computed.MaxWalkingDistance = model.Float(maxWalk(&wm, accessibleWalkMeters))
			wm.Computed.RequiredAmenities = []string{"wheelchair", "elevator", "accessible_bathroom"}
			wm.Computed.PreferredTransport = []string{"car", "taxi"}
			wm.applied("PROFILE_004", "accessibility requirements applied")
			return wm, nil
		},
	},
	{
		ID:          "PROFILE_005",
		Name:        "Relaxed pace",
		Description: "If pace is 'relaxed' then at most 3 attractions per day",
		Priority:    Medium,
		Category:    CategoryProfile,
		Condition:   func(wm *WorkingMemory) bool { return wm.Preferences.Pace == "relaxed" },
		Action: func(wm WorkingMemory) (WorkingMemory, error) {
			rest := true
			wm.Computed.MaxDailyAttractions = 3
			wm.Computed.MinTimePerAttraction = 120
			wm.Computed.IncludeRestTime = &rest
			wm.applied("PROFILE_005", "relaxed pace, at most 3 attractions per day")
			return wm, nil
		},
	},
	{
		ID:          "PROFILE_006",
		Name:        "Intense pace",
		Description: "If pace is 'intense' then up to 7 attractions per day",
		Priority:    Medium,
		Category:    CategoryProfile,
		Condition:   func(wm *WorkingMemory) bool { return wm.Preferences.Pace == "intense" },
		Action: func(wm WorkingMemory) (WorkingMemory, error) {
			rest := false
			wm.Computed.MaxDailyAttractions = 7
			wm.Computed.MinTimePerAttraction = 45
			wm.Computed.IncludeRestTime = &rest
			wm.applied("PROFILE_006", "intense pace, up to 7 attractions per day")
			return wm, nil
		},
	},

	// Temporal rules.
	{
		ID:          "TIME_001",
		Name:        "Morning culture",
		Description: "If 6am-12pm then prioritize museums and culture",
		Priority:    Medium,
		Category:    CategoryTemporal,
		Condition:   func(wm *WorkingMemory) bool { return between(wm.Now, 6, 12) },
		Action: func(wm WorkingMemory) (WorkingMemory, error) {
			wm.Computed.PriorityCategories = appendUnique(wm.Computed.PriorityCategories, "cultural", "historico", "museos")
			wm.applied("TIME_001", "cultural sites prioritized (morning)")
			return wm, nil
		},
	},
	{
		ID:          "TIME_002",
		Name:        "Afternoon outdoors",
		Description: "If 12pm-6pm then prioritize parks and nature",
		Priority:    Medium,
		Category:    CategoryTemporal,
		Condition:   func(wm *WorkingMemory) bool { return between(wm.Now, 12, 18) },
		Action: func(wm WorkingMemory) (WorkingMemory, error) {
			wm.Computed.PriorityCategories = appendUnique(wm.Computed.PriorityCategories, "naturaleza", "parques", "aventura")
			wm.applied("TIME_002", "outdoor activities prioritized (afternoon)")
			return wm, nil
		},
	},
	{
		ID:          "TIME_003",
		Name:        "Evening dining",
		Description: "If 6pm-11pm then prioritize restaurants",
		Priority:    Medium,
		Category:    CategoryTemporal,
		Condition:   func(wm *WorkingMemory) bool { return between(wm.Now, 18, 23) },
		Action: func(wm WorkingMemory) (WorkingMemory, error) {
			wm.Computed.PriorityCategories = appendUnique(wm.Computed.PriorityCategories, "gastronomia", "restaurantes")
			wm.applied("TIME_003", "dining prioritized (evening)")
			return wm, nil
		},
	},
	{
		ID:          "TIME_004",
		Name:        "Weekend",
		Description: "If Saturday or Sunday then warn about crowds",
		Priority:    Low,
		Category:    CategoryTemporal,
		Condition: func(wm *WorkingMemory) bool {
			if wm.Now.IsZero() {
				return false
			}
			d := wm.Now.Weekday()
			return d == time.Saturday || d == time.Sunday
		},
		Action: func(wm WorkingMemory) (WorkingMemory, error) {
			wm.Warnings = append(wm.Warnings, model.Warning{
				Type:           "crowds",
				Message:        "It is the weekend. Popular attractions may be crowded.",
				Recommendation: "Consider visiting early or booking in advance.",
			})
			wm.applied("TIME_004", "crowd warning (weekend)")
			return wm, nil
		},
	},

	// Weather rules.
	{
		ID:          "WEATHER_001",
		Name:        "Rain",
		Description: "If weather is 'rain' then prefer indoor attractions",
		Priority:    High,
		Category:    CategoryWeather,
		Condition:   func(wm *WorkingMemory) bool { return wm.Weather != nil && wm.Weather.Condition == "rain" },
		Action: func(wm WorkingMemory) (WorkingMemory, error) {
			wm.Computed.PreferIndoor = true
			wm.Computed.AvoidCategories = []string{"naturaleza", "parques"}
			wm.Computed.PriorityCategories = appendUnique(wm.Computed.PriorityCategories, "museos", "cultural", "compras")
			wm.applied("WEATHER_001", "indoor attractions prioritized (rain)")
			return wm, nil
		},
	},
	{
		ID:          "WEATHER_002",
		Name:        "Extreme heat",
		Description: "If temperature > 30C then avoid outdoor activities",
		Priority:    High,
		Category:    CategoryWeather,
		Condition:   func(wm *WorkingMemory) bool { return temperature(wm) > heatThresholdC },
		Action: func(wm WorkingMemory) (WorkingMemory, error) {
			wm.Computed.AvoidOutdoor = true
			wm.Computed.AvoidCategories = []string{"naturaleza", "aventura"}
			wm.Warnings = append(wm.Warnings, model.Warning{
				Type:           "heat",
				Message:        fmt.Sprintf("High temperature (%gC)", temperature(&wm)),
				Recommendation: "Prefer air-conditioned places.",
			})
			wm.applied("WEATHER_002", "outdoor activities avoided (heat)")
			return wm, nil
		},
	},

	// Itinerary validation rules.
	{
		ID:          "ITINERARY_001",
		Name:        "Opening hours",
		Description: "If an itinerary is present then check opening hours",
		Priority:    Critical,
		Category:    CategoryValidation,
		Condition:   hasItinerary,
		Action: func(wm WorkingMemory) (WorkingMemory, error) {
			// TODO: compare stop arrival times against Attraction.OpeningHours once
			// day schedules carry clock times.
			wm.applied("ITINERARY_001", "opening hours validated")
			return wm, nil
		},
	},
	{
		ID:          "ITINERARY_002",
		Name:        "Travel time",
		Description: "If an itinerary is present then check total travel time",
		Priority:    High,
		Category:    CategoryValidation,
		Condition:   hasItinerary,
		Action: func(wm WorkingMemory) (WorkingMemory, error) {
			if total := wm.Itinerary.TravelMinutes(); total > travelTimeLimitMinutes {
				wm.Warnings = append(wm.Warnings, model.Warning{
					Type:           "travel_time",
					Message:        fmt.Sprintf("High total travel time: %d minutes", total),
					Recommendation: "Consider fewer attractions or grouping them by area.",
				})
			}
			wm.applied("ITINERARY_002", "travel time validated")
			return wm, nil
		},
	},
	{
		ID:          "ITINERARY_003",
		Name:        "Budget",
		Description: "If an itinerary and budget_max are present then check total cost",
		Priority:    High,
		Category:    CategoryValidation,
		Condition:   func(wm *WorkingMemory) bool { return wm.Itinerary != nil && wm.BudgetMax != nil },
		Action: func(wm WorkingMemory) (WorkingMemory, error) {
			if cost := wm.Itinerary.TotalCost; cost > *wm.BudgetMax {
				wm.ValidationErrors = append(wm.ValidationErrors, model.ValidationError{
					Type:     "budget",
					Message:  fmt.Sprintf("Total cost ($%.2f) exceeds budget ($%.2f)", cost, *wm.BudgetMax),
					Severity: "high",
				})
			}
			wm.applied("ITINERARY_003", "budget validated")
			return wm, nil
		},
	},
	{
		ID:          "ITINERARY_004",
		Name:        "Daily limit",
		Description: "If more than 5 attractions per day then warn about fatigue",
		Priority:    Medium,
		Category:    CategoryValidation,
		Condition:   hasItinerary,
		Action: func(wm WorkingMemory) (WorkingMemory, error) {
			if n := wm.Itinerary.AttractionsCount; n > fatigueAttractionsLimit {
				wm.Warnings = append(wm.Warnings, model.Warning{
					Type:           "fatigue",
					Message:        fmt.Sprintf("Many attractions in one day (%d)", n),
					Recommendation: "Spread them over more days to avoid fatigue.",
				})
			}
			wm.applied("ITINERARY_004", "daily limit checked")
			return wm, nil
		},
	},
}

func hasItinerary(wm *WorkingMemory) bool { return wm.Itinerary != nil }

func maxWalk(wm *WorkingMemory, def float64) float64 {
	if wm.Mobility.MaxWalkingDistance == nil {
		return def
	}
	return *wm.Mobility.MaxWalkingDistance
}

func temperature(wm *WorkingMemory) float64 {
	if wm.Weather == nil || wm.Weather.Temperature == nil {
		return defaultTemperatureC
	}
	return *wm.Weather.Temperature
}

// between reports whether t's clock time is in [fromHour, toHour).
func between(t time.Time, fromHour, toHour int) bool {
	if t.IsZero() {
		return false
	}
	h := t.Hour()
	return h >= fromHour && h < toHour
}
