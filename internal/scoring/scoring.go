// Package scoring ranks exploration candidates against a computed profile.
package scoring

import (
	"sort"
	"strings"

	"github.com/rcliao/itinerary/internal/graph"
	"github.com/rcliao/itinerary/internal/model"
	"github.com/rcliao/itinerary/internal/search"
)

// Weights is the scoring weight table.
type Weights struct {
	RatingMultiplier    float64 `json:"rating_multiplier"`
	PriorityCategory    float64 `json:"priority_category"`
	RecommendedCategory float64 `json:"recommended_category"`
	AvoidCategory       float64 `json:"avoid_category"`
	PriceMismatch       float64 `json:"price_mismatch"`
	MissingAmenity      float64 `json:"missing_amenity"`
	RatingBelowMin      float64 `json:"rating_below_min"`
	DistancePerKm       float64 `json:"distance_penalty_per_km"`
}

// DefaultWeights is the standard weight table.
var DefaultWeights = Weights{
	RatingMultiplier:    10,
	PriorityCategory:    30,
	RecommendedCategory: 15,
	AvoidCategory:       -50,
	PriceMismatch:       -100,
	MissingAmenity:      -50,
	RatingBelowMin:      -50,
	DistancePerKm:       1,
}

// defaultRating stands in for unrated attractions.
const defaultRating = 3.0

// Scored is a candidate with its suitability score.
type Scored struct {
	search.Candidate
	Score float64 `json:"score"`
}

// Scorer scores candidates with a fixed weight table.
type Scorer struct {
	w Weights
}

// New returns a scorer using w.
func New(w Weights) *Scorer {
	return &Scorer{w: w}
}

// Score returns the suitability of c for cp, rounded to two decimals. It is
// a pure function of its inputs.
func (s *Scorer) Score(c search.Candidate, cp model.ComputedProfile) float64 {
	a := c.Attraction
	rating := defaultRating
	if a.Rating != nil && *a.Rating != 0 {
		rating = *a.Rating
	}

	score := rating * s.w.RatingMultiplier

	cat := strings.ToLower(a.Category)
	switch {
	case contains(cp.PriorityCategories, cat):
		score += s.w.PriorityCategory
	case contains(cp.RecommendedCategories, cat):
		score += s.w.RecommendedCategory
	case contains(cp.AvoidCategories, cat):
		score += s.w.AvoidCategory
	}

	allowed := cp.AllowedPriceRanges
	if allowed == nil {
		allowed = model.AllPriceRanges
	}
	if !contains(allowed, strings.ToLower(a.PriceRange)) {
		score += s.w.PriceMismatch
	}

	for _, am := range cp.RequiredAmenities {
		if !a.HasAmenity(am) {
			score += s.w.MissingAmenity
		}
	}

	if cp.MinRating != nil && rating < *cp.MinRating {
		score += s.w.RatingBelowMin
	}

	score -= c.DistanceM / 1000 * s.w.DistancePerKm
	return model.Round2(score)
}

// Rank scores every candidate and sorts them best first. Equal scores keep
// exploration order.
func (s *Scorer) Rank(cands []search.Candidate, cp model.ComputedProfile) []Scored {
	out := make([]Scored, 0, len(cands))
	for _, c := range cands {
		out = append(out, Scored{Candidate: c, Score: s.Score(c, cp)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// ScoreNodes scores every attraction of g as if it were at the start, for
// use as route suitability.
func (s *Scorer) ScoreNodes(g *graph.Graph, cp model.ComputedProfile) map[int64]float64 {
	out := make(map[int64]float64, g.Len())
	for _, id := range g.NodeIDs() {
		n, _ := g.Node(id)
		out[id] = s.Score(search.Candidate{Attraction: n}, cp)
	}
	return out
}

// Top returns at most n of the ranked candidates.
func Top(ranked []Scored, n int) []Scored {
	if n < 0 || n >= len(ranked) {
		return ranked
	}
	return ranked[:n]
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if strings.ToLower(s) == v {
			return true
		}
	}
	return false
}
