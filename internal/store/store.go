// Package store provides the planning data storage interface and its SQLite
// implementation.
package store

import (
	"context"
	"errors"

	"github.com/rcliao/itinerary/internal/model"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ListParams holds parameters for listing attractions.
type ListParams struct {
	DestinationID int64
	Category      string
	Limit         int
}

// SearchParams holds parameters for searching attractions by text.
type SearchParams struct {
	DestinationID int64
	Query         string
	Limit         int
}

// ConnectParams holds parameters for adding or removing a connection.
type ConnectParams struct {
	model.Connection
	Remove bool
}

// ItineraryListParams holds parameters for listing itineraries.
type ItineraryListParams struct {
	ProfileID int64
	Limit     int
}

// Store defines the planning storage interface.
type Store interface {
	// LoadAttractionsAndEdges returns every attraction of a destination and
	// every connection leaving one of them.
	LoadAttractionsAndEdges(ctx context.Context, destinationID int64) ([]model.Attraction, []model.Connection, error)

	// DestinationOf resolves the destination of an attraction.
	DestinationOf(ctx context.Context, attractionID int64) (int64, error)

	// PutDestination inserts or replaces a destination. A zero id assigns one.
	PutDestination(ctx context.Context, d model.Destination) (*model.Destination, error)

	// PutAttraction inserts or replaces an attraction. A zero id assigns one.
	PutAttraction(ctx context.Context, a model.Attraction) (*model.Attraction, error)

	// GetAttraction retrieves one attraction.
	GetAttraction(ctx context.Context, id int64) (*model.Attraction, error)

	// ListAttractions lists attractions matching the filters.
	ListAttractions(ctx context.Context, p ListParams) ([]model.Attraction, error)

	// SearchAttractions matches names and descriptions against a substring.
	SearchAttractions(ctx context.Context, p SearchParams) ([]model.Attraction, error)

	// Connect adds, replaces or removes one directed connection.
	Connect(ctx context.Context, p ConnectParams) error

	// PutProfile inserts or replaces a traveler profile.
	PutProfile(ctx context.Context, p model.Profile) (*model.Profile, error)

	// GetProfile retrieves a traveler profile.
	GetProfile(ctx context.Context, id int64) (*model.Profile, error)

	// SaveComputedProfile stores the rule-derived parameters of a profile.
	SaveComputedProfile(ctx context.Context, id int64, cp model.ComputedProfile) error

	// PersistItinerary stores a plan and returns its new id.
	PersistItinerary(ctx context.Context, plan *model.ItineraryPlan) (string, error)

	// GetItinerary retrieves a stored plan with its days.
	GetItinerary(ctx context.Context, id string) (*model.ItineraryPlan, error)

	// ListItineraries lists stored plans without their days, newest first.
	ListItineraries(ctx context.Context, p ItineraryListParams) ([]model.ItineraryPlan, error)

	// RmItinerary deletes a plan and its days.
	RmItinerary(ctx context.Context, id string) error

	// Close closes the store.
	Close() error
}
