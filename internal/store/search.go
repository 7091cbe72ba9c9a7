package store

import (
	"context"
	"strings"

	"github.com/rcliao/itinerary/internal/model"
)

// SearchAttractions finds attractions whose name, description or address
// contains the query, case-insensitively. Name matches rank first.
func (s *SQLiteStore) SearchAttractions(ctx context.Context, p SearchParams) ([]model.Attraction, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	query := "%" + strings.ToLower(strings.TrimSpace(p.Query)) + "%"

	where := []string{"(LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(address) LIKE ?)"}
	args := []interface{}{query, query, query}
	if p.DestinationID != 0 {
		where = append(where, "destination_id = ?")
		args = append(args, p.DestinationID)
	}
	args = append(args, query, limit)

	return s.queryAttractions(ctx,
		`SELECT `+attractionColumns+` FROM attractions
		 WHERE `+strings.Join(where, " AND ")+`
		 ORDER BY CASE WHEN LOWER(name) LIKE ? THEN 0 ELSE 1 END, rating DESC, id
		 LIMIT ?`,
		args...)
}
