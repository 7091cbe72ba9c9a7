package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/itinerary/internal/graph"
	"github.com/rcliao/itinerary/internal/model"
	"github.com/rcliao/itinerary/internal/search"
)

func candidate(cat, price string, rating *float64, distM float64, amenities ...string) search.Candidate {
	return search.Candidate{
		Attraction: &model.Attraction{
			ID:         1,
			Category:   cat,
			PriceRange: price,
			Rating:     rating,
			Amenities:  amenities,
		},
		DistanceM: distM,
	}
}

func TestScore(t *testing.T) {
	s := New(DefaultWeights)
	tests := []struct {
		name string
		c    search.Candidate
		cp   model.ComputedProfile
		want float64
	}{
		{
			name: "rating only",
			c:    candidate("cultural", "gratis", model.Float(4.5), 0),
			want: 45,
		},
		{
			name: "unrated defaults to three",
			c:    candidate("cultural", "gratis", nil, 0),
			want: 30,
		},
		{
			name: "priority beats recommended and avoid",
			c:    candidate("Museos", "gratis", model.Float(4), 0),
			cp: model.ComputedProfile{
				PriorityCategories:    []string{"museos"},
				RecommendedCategories: []string{"museos"},
				AvoidCategories:       []string{"museos"},
			},
			want: 70,
		},
		{
			name: "recommended",
			c:    candidate("naturaleza", "gratis", model.Float(4), 0),
			cp:   model.ComputedProfile{RecommendedCategories: []string{"naturaleza"}},
			want: 55,
		},
		{
			name: "avoid",
			c:    candidate("naturaleza", "gratis", model.Float(4), 0),
			cp:   model.ComputedProfile{AvoidCategories: []string{"naturaleza"}},
			want: -10,
		},
		{
			name: "price mismatch",
			c:    candidate("cultural", "Alto", model.Float(4), 0),
			cp:   model.ComputedProfile{AllowedPriceRanges: []string{"gratis", "bajo"}},
			want: -60,
		},
		{
			name: "missing amenities",
			c:    candidate("cultural", "gratis", model.Float(4), 0, "wheelchair"),
			cp:   model.ComputedProfile{RequiredAmenities: []string{"wheelchair", "elevator", "accessible_bathroom"}},
			want: -60,
		},
		{
			name: "below min rating",
			c:    candidate("cultural", "gratis", model.Float(3.5), 0),
			cp:   model.ComputedProfile{MinRating: model.Float(4)},
			want: -15,
		},
		{
			name: "distance penalty",
			c:    candidate("cultural", "gratis", model.Float(4), 2500),
			want: 37.5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, s.Score(tt.c, tt.cp), 1e-9)
		})
	}
}

func TestScore_Idempotent(t *testing.T) {
	s := New(DefaultWeights)
	c := candidate("museos", "bajo", model.Float(4.3), 1234, "restrooms")
	cp := model.ComputedProfile{
		PriorityCategories: []string{"museos"},
		AllowedPriceRanges: []string{"gratis", "bajo"},
		RequiredAmenities:  []string{"restrooms", "elevator"},
		MinRating:          model.Float(4),
	}
	first := s.Score(c, cp)
	assert.Equal(t, first, s.Score(c, cp))
	assert.Equal(t, []string{"restrooms"}, c.Attraction.Amenities)
}

func TestRank(t *testing.T) {
	s := New(DefaultWeights)
	cands := []search.Candidate{
		candidate("a", "gratis", model.Float(3), 0),
		candidate("b", "gratis", model.Float(5), 0),
		candidate("c", "gratis", model.Float(3), 0),
	}
	cands[0].Attraction.ID, cands[1].Attraction.ID, cands[2].Attraction.ID = 1, 2, 3

	ranked := s.Rank(cands, model.ComputedProfile{})
	got := []int64{}
	for _, r := range ranked {
		got = append(got, r.Attraction.ID)
	}
	assert.Equal(t, []int64{2, 1, 3}, got, "ties keep exploration order")

	assert.Len(t, Top(ranked, 2), 2)
	assert.Len(t, Top(ranked, 10), 3)
}

func TestScoreNodes(t *testing.T) {
	g := graph.New(1, []model.Attraction{
		{ID: 1, Category: "cultural", Rating: model.Float(4.0)},
		{ID: 2, Category: "compras", Rating: model.Float(3.0)},
	}, nil)
	scores := New(DefaultWeights).ScoreNodes(g, model.ComputedProfile{PriorityCategories: []string{"cultural"}})
	require.Len(t, scores, 2)
	assert.Greater(t, scores[1], scores[2])
}
