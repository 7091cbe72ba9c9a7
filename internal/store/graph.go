package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rcliao/itinerary/internal/model"
)

// LoadAttractionsAndEdges returns every attraction of a destination and every
// connection whose origin belongs to it.
func (s *SQLiteStore) LoadAttractionsAndEdges(ctx context.Context, destinationID int64) ([]model.Attraction, []model.Connection, error) {
	nodes, err := s.queryAttractions(ctx,
		`SELECT `+attractionColumns+` FROM attractions WHERE destination_id = ? ORDER BY id`, destinationID)
	if err != nil {
		return nil, nil, fmt.Errorf("load attractions: %w", err)
	}

	edges, err := s.queryConnections(ctx,
		`SELECT `+connectionColumns+` FROM connections c
		 JOIN attractions a ON a.id = c.from_id
		 WHERE a.destination_id = ?
		 ORDER BY c.from_id, c.to_id, c.mode`, destinationID)
	if err != nil {
		return nil, nil, fmt.Errorf("load connections: %w", err)
	}
	return nodes, edges, nil
}

// DestinationOf resolves the destination of an attraction.
func (s *SQLiteStore) DestinationOf(ctx context.Context, attractionID int64) (int64, error) {
	var dest int64
	err := s.db.QueryRowContext(ctx,
		`SELECT destination_id FROM attractions WHERE id = ?`, attractionID).Scan(&dest)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("attraction %d: %w", attractionID, ErrNotFound)
	}
	return dest, err
}
