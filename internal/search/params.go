package search

import (
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/rcliao/itinerary/internal/model"
)

// interestCategories maps declared interests to attraction categories.
var interestCategories = map[string]string{
	"cultural":        "cultural",
	"historia":        "historico",
	"arte":            "cultural",
	"museos":          "cultural",
	"gastronomia":     "gastronomia",
	"naturaleza":      "naturaleza",
	"aventura":        "aventura",
	"entretenimiento": "entretenimiento",
	"compras":         "compras",
	"deportes":        "deportivo",
}

// budgetPrices maps budget ranges to the price tiers they can afford.
var budgetPrices = map[string][]string{
	model.BudgetLow:    {model.PriceFree, model.PriceLow},
	model.BudgetMedium: {model.PriceFree, model.PriceLow, model.PriceMedium},
	model.BudgetHigh:   {model.PriceFree, model.PriceLow, model.PriceMedium, model.PriceHigh},
	model.BudgetLuxury: {model.PriceFree, model.PriceLow, model.PriceMedium, model.PriceHigh},
}

// ProfileFilters derives candidate filters from a stored profile: interests
// become a category filter, the budget range a price filter and the pace a
// minimum rating.
func ProfileFilters(p *model.Profile) Filters {
	var f Filters
	if p == nil {
		return f
	}
	for _, in := range p.Preferences.Interests {
		if cat, ok := interestCategories[strings.ToLower(in)]; ok && !containsFold(f.Categories, cat) {
			f.Categories = append(f.Categories, cat)
		}
	}
	if prices, ok := budgetPrices[strings.ToLower(p.BudgetRange)]; ok {
		f.PriceRanges = append([]string(nil), prices...)
	}
	switch p.Preferences.Pace {
	case "relaxed":
		f.MinRating = model.Float(4.0)
	case "intense":
		f.MinRating = model.Float(3.0)
	}
	return f
}

// SortKey selects how candidates are ordered for presentation.
type SortKey string

const (
	SortBalanced SortKey = "balanced"
	SortDistance SortKey = "distance"
	SortRating   SortKey = "rating"
	SortPrice    SortKey = "price"
)

// AdjustForMode narrows or widens the constraints for an optimization mode
// and returns the matching presentation order.
func AdjustForMode(mode model.OptimizationMode, c Constraints) (Constraints, SortKey) {
	key := SortBalanced
	switch mode {
	case model.OptimizeDistance:
		c.MaxDistanceM = math.Min(c.MaxDistanceM, 5000)
		key = SortDistance
	case model.OptimizeScore:
		floor := 0.0
		if c.Filters.MinRating != nil {
			floor = *c.Filters.MinRating
		}
		c.Filters.MinRating = model.Float(math.Max(floor, 4.0))
		c.MaxDistanceM *= 1.5
		key = SortRating
	case model.OptimizeCost:
		c.Filters.PriceRanges = []string{model.PriceFree, model.PriceLow}
		key = SortPrice
	case model.OptimizeTime:
		c.MaxDistanceM = math.Min(c.MaxDistanceM, 3000)
		if c.MaxCandidates > 30 {
			c.MaxCandidates = 30
		}
		key = SortDistance
	}
	slog.Debug("search constraints adjusted",
		"mode", mode,
		"radius_m", c.MaxDistanceM,
		"max_candidates", c.MaxCandidates,
		"sort", key)
	return c, key
}

// Sort orders candidates in place. The sort is stable.
func Sort(cands []Candidate, key SortKey) {
	switch key {
	case SortDistance:
		sort.SliceStable(cands, func(i, j int) bool {
			return cands[i].DistanceM < cands[j].DistanceM
		})
	case SortRating:
		sort.SliceStable(cands, func(i, j int) bool {
			return rating(cands[i]) > rating(cands[j])
		})
	case SortPrice:
		sort.SliceStable(cands, func(i, j int) bool {
			return model.PriceOrder(cands[i].Attraction.PriceRange) < model.PriceOrder(cands[j].Attraction.PriceRange)
		})
	default:
		sort.SliceStable(cands, func(i, j int) bool {
			return balanced(cands[i]) > balanced(cands[j])
		})
	}
}

func rating(c Candidate) float64 {
	if c.Attraction.Rating == nil {
		return 0
	}
	return *c.Attraction.Rating
}

func balanced(c Candidate) float64 {
	return rating(c)*1000 - c.DistanceM/100
}
