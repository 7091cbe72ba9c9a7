// Package model defines the core planning data types.
package model

import "strings"

// Price tiers used by attractions and profile filters.
const (
	PriceFree   = "gratis"
	PriceLow    = "bajo"
	PriceMedium = "medio"
	PriceHigh   = "alto"
)

// AllPriceRanges lists every price tier, cheapest first.
var AllPriceRanges = []string{PriceFree, PriceLow, PriceMedium, PriceHigh}

// PriceOrder ranks price tiers for sorting; unknown tiers sort last.
func PriceOrder(p string) int {
	switch strings.ToLower(p) {
	case PriceFree:
		return 0
	case PriceLow:
		return 1
	case PriceMedium:
		return 2
	case PriceHigh:
		return 3
	}
	return 99
}

// Transport modes used by connections.
const (
	ModeWalking         = "walking"
	ModeTaxi            = "taxi"
	ModePublicTransport = "public_transport"
)

// Coordinate is a WGS84 latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Destination is a city or region that groups attractions.
type Destination struct {
	ID       int64       `json:"id"`
	Name     string      `json:"name"`
	Country  string      `json:"country"`
	State    string      `json:"state,omitempty"`
	Location *Coordinate `json:"location,omitempty"`
	Timezone string      `json:"timezone,omitempty"`
}

// Attraction is a point of interest and a node of the planning graph.
type Attraction struct {
	ID            int64             `json:"id"`
	DestinationID int64             `json:"destination_id"`
	Name          string            `json:"name"`
	Description   string            `json:"description,omitempty"`
	Category      string            `json:"category"`
	Subcategory   string            `json:"subcategory,omitempty"`
	Rating        *float64          `json:"rating,omitempty"`
	PriceRange    string            `json:"price_range,omitempty"`
	VisitMinutes  *int              `json:"average_visit_duration,omitempty"`
	Location      *Coordinate       `json:"location,omitempty"`
	Verified      bool              `json:"verified"`
	Amenities     []string          `json:"amenities,omitempty"`
	Address       string            `json:"address,omitempty"`
	OpeningHours  map[string]string `json:"opening_hours,omitempty"`
}

// HasAmenity reports whether the attraction lists the given amenity.
func (a *Attraction) HasAmenity(name string) bool {
	for _, am := range a.Amenities {
		if strings.EqualFold(am, name) {
			return true
		}
	}
	return false
}

// Connection is a directed travel edge between two attractions. Parallel
// connections between the same pair are allowed, one per transport mode.
type Connection struct {
	FromID        int64   `json:"from_attraction_id"`
	ToID          int64   `json:"to_attraction_id"`
	DistanceM     float64 `json:"distance_meters"`
	TravelMinutes int     `json:"travel_time_minutes"`
	Mode          string  `json:"transport_mode"`
	Cost          float64 `json:"cost"`
	TrafficFactor float64 `json:"traffic_factor"`
}
