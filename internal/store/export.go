package store

import (
	"context"
	"fmt"

	"github.com/rcliao/itinerary/internal/model"
)

// Dataset is the portable form of the catalog: destinations, attractions,
// their connections and traveler profiles. Itineraries are not exported.
type Dataset struct {
	Destinations []model.Destination `json:"destinations"`
	Attractions  []model.Attraction  `json:"attractions"`
	Connections  []model.Connection  `json:"connections"`
	Profiles     []model.Profile     `json:"profiles,omitempty"`
}

// ExportDataset returns the whole catalog, optionally restricted to one
// destination.
func (s *SQLiteStore) ExportDataset(ctx context.Context, destinationID int64) (*Dataset, error) {
	ds := &Dataset{}

	dests, err := s.ListDestinations(ctx)
	if err != nil {
		return nil, fmt.Errorf("export destinations: %w", err)
	}
	for _, d := range dests {
		if destinationID != 0 && d.ID != destinationID {
			continue
		}
		ds.Destinations = append(ds.Destinations, d)
		nodes, edges, err := s.LoadAttractionsAndEdges(ctx, d.ID)
		if err != nil {
			return nil, fmt.Errorf("export destination %d: %w", d.ID, err)
		}
		ds.Attractions = append(ds.Attractions, nodes...)
		ds.Connections = append(ds.Connections, edges...)
	}

	ds.Profiles, err = s.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("export profiles: %w", err)
	}
	return ds, nil
}

// ImportCounts reports how many rows an import wrote.
type ImportCounts struct {
	Destinations int `json:"destinations"`
	Attractions  int `json:"attractions"`
	Connections  int `json:"connections"`
	Profiles     int `json:"profiles"`
}

// ImportDataset upserts a dataset. Rows keep their ids so connections stay
// valid; importing the same dataset twice is a no-op.
func (s *SQLiteStore) ImportDataset(ctx context.Context, ds *Dataset) (ImportCounts, error) {
	var n ImportCounts
	for _, d := range ds.Destinations {
		if _, err := s.PutDestination(ctx, d); err != nil {
			return n, err
		}
		n.Destinations++
	}
	for _, a := range ds.Attractions {
		if _, err := s.PutAttraction(ctx, a); err != nil {
			return n, fmt.Errorf("attraction %d: %w", a.ID, err)
		}
		n.Attractions++
	}
	for _, c := range ds.Connections {
		if err := s.Connect(ctx, ConnectParams{Connection: c}); err != nil {
			return n, err
		}
		n.Connections++
	}
	for _, p := range ds.Profiles {
		if _, err := s.PutProfile(ctx, p); err != nil {
			return n, fmt.Errorf("profile %d: %w", p.ID, err)
		}
		n.Profiles++
	}
	return n, nil
}
