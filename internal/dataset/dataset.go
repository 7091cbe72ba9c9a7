// Package dataset ships the demo catalog for Mexico City and derives travel
// connections between attractions from their coordinates.
package dataset

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math"

	"github.com/rcliao/itinerary/internal/model"
	"github.com/rcliao/itinerary/internal/route"
	"github.com/rcliao/itinerary/internal/store"
)

//go:embed cdmx.json
var cdmxJSON []byte

// Demo returns the embedded Mexico City dataset with generated connections.
func Demo() (*store.Dataset, error) {
	var ds store.Dataset
	if err := json.Unmarshal(cdmxJSON, &ds); err != nil {
		return nil, fmt.Errorf("decode demo dataset: %w", err)
	}
	ds.Connections = Connect(ds.Attractions, DefaultRules())
	return &ds, nil
}

// ModeRule says when and how a transport mode links two attractions.
type ModeRule struct {
	Mode          string
	MinMeters     float64 // exclusive; zero means no lower bound
	MaxMeters     float64 // inclusive when Inclusive is set, exclusive otherwise
	Inclusive     bool
	SpeedKmh      float64
	WaitMinutes   int
	BaseCost      float64
	CostPerKm     float64
	TrafficFactor float64
}

// DefaultRules reproduces the Mexico City heuristics: walk up to 2 km, take a
// taxi between 0.5 and 20 km, use public transport between 1 and 25 km.
func DefaultRules() []ModeRule {
	return []ModeRule{
		{Mode: model.ModeWalking, MaxMeters: 2000, Inclusive: true, SpeedKmh: 4.5, TrafficFactor: 1.0},
		{Mode: model.ModeTaxi, MinMeters: 500, MaxMeters: 20000, SpeedKmh: 25, WaitMinutes: 5,
			BaseCost: 30, CostPerKm: 10, TrafficFactor: 1.2},
		{Mode: model.ModePublicTransport, MinMeters: 1000, MaxMeters: 25000, SpeedKmh: 20, WaitMinutes: 10,
			BaseCost: 5, TrafficFactor: 1.0},
	}
}

func (r ModeRule) applies(m float64) bool {
	if m <= r.MinMeters && r.MinMeters > 0 {
		return false
	}
	if r.Inclusive {
		return m <= r.MaxMeters
	}
	return m < r.MaxMeters
}

// Connect links every ordered pair of located attractions of the same
// destination with one connection per applicable mode. Travel minutes are
// truncated, as the catalog stores whole minutes.
func Connect(attractions []model.Attraction, rules []ModeRule) []model.Connection {
	var out []model.Connection
	for i := range attractions {
		from := &attractions[i]
		if from.Location == nil {
			continue
		}
		for j := range attractions {
			to := &attractions[j]
			if i == j || to.Location == nil || to.DestinationID != from.DestinationID {
				continue
			}
			m := route.Haversine(*from.Location, *to.Location)
			for _, r := range rules {
				if !r.applies(m) {
					continue
				}
				km := m / 1000
				out = append(out, model.Connection{
					FromID:        from.ID,
					ToID:          to.ID,
					DistanceM:     model.Round2(m),
					TravelMinutes: int(math.Floor(km/r.SpeedKmh*60)) + r.WaitMinutes,
					Mode:          r.Mode,
					Cost:          model.Round2(r.BaseCost + km*r.CostPerKm),
					TrafficFactor: r.TrafficFactor,
				})
			}
		}
	}
	return out
}
