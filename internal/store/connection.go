package store

import (
	"context"
	"fmt"

	"github.com/rcliao/itinerary/internal/model"
)

const connectionColumns = `c.from_id, c.to_id, c.mode, c.distance_m, c.travel_minutes, c.cost, c.traffic_factor`

// Connect adds or replaces the connection keyed by origin, target and mode,
// or removes it when p.Remove is set.
func (s *SQLiteStore) Connect(ctx context.Context, p ConnectParams) error {
	if p.Mode == "" {
		p.Mode = model.ModeWalking
	}

	if p.Remove {
		res, err := s.db.ExecContext(ctx,
			`DELETE FROM connections WHERE from_id = ? AND to_id = ? AND mode = ?`,
			p.FromID, p.ToID, p.Mode)
		if err != nil {
			return fmt.Errorf("remove connection: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("connection %d -> %d (%s): %w", p.FromID, p.ToID, p.Mode, ErrNotFound)
		}
		return nil
	}

	if p.FromID == p.ToID {
		return fmt.Errorf("connection %d -> %d: self-loops are not allowed", p.FromID, p.ToID)
	}
	if p.DistanceM < 0 || p.TravelMinutes < 0 || p.Cost < 0 {
		return fmt.Errorf("connection %d -> %d: negative distance, time or cost", p.FromID, p.ToID)
	}
	traffic := p.TrafficFactor
	if traffic <= 0 {
		traffic = 1.0
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO connections (from_id, to_id, mode, distance_m, travel_minutes, cost, traffic_factor)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(from_id, to_id, mode) DO UPDATE SET
		   distance_m = excluded.distance_m, travel_minutes = excluded.travel_minutes,
		   cost = excluded.cost, traffic_factor = excluded.traffic_factor`,
		p.FromID, p.ToID, p.Mode, p.DistanceM, p.TravelMinutes, p.Cost, traffic)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	return nil
}

// Connections lists the connections leaving an attraction.
func (s *SQLiteStore) Connections(ctx context.Context, fromID int64) ([]model.Connection, error) {
	return s.queryConnections(ctx,
		`SELECT `+connectionColumns+` FROM connections c WHERE c.from_id = ? ORDER BY c.to_id, c.mode`, fromID)
}

func (s *SQLiteStore) queryConnections(ctx context.Context, query string, args ...interface{}) ([]model.Connection, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Connection
	for rows.Next() {
		var c model.Connection
		if err := rows.Scan(&c.FromID, &c.ToID, &c.Mode, &c.DistanceM, &c.TravelMinutes, &c.Cost, &c.TrafficFactor); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
