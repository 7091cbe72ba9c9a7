package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rcliao/itinerary/internal/model"
)

// dayData is the JSON body of an itinerary_days row; the scalar day fields
// live in their own columns.
type dayData struct {
	ClusterID         int                      `json:"cluster_id"`
	Stops             []model.DayStop          `json:"stops"`
	Segments          []model.RouteSegment     `json:"segments"`
	AttractionsCount  int                      `json:"attractions_count"`
	OptimizationScore float64                  `json:"optimization_score"`
	Transport         model.TransportBreakdown `json:"transport"`
	Warnings          []model.Warning          `json:"warnings,omitempty"`
	ValidationErrors  []model.ValidationError  `json:"validation_errors,omitempty"`
}

const itineraryColumns = `id, profile_id, destination_id, start_point_id, name, num_days, start_date, end_date,
	params, status, total_distance_m, total_minutes, total_cost, total_attractions, unoptimized_days,
	average_score, created_at`

const dateLayout = "2006-01-02"

// PersistItinerary stores a plan and its days in one transaction and returns
// the new plan id.
func (s *SQLiteStore) PersistItinerary(ctx context.Context, plan *model.ItineraryPlan) (string, error) {
	params, err := json.Marshal(plan.Params)
	if err != nil {
		return "", fmt.Errorf("marshal params: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	id := s.newID()
	createdAt := plan.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO itineraries (`+itineraryColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, plan.ProfileID, plan.DestinationID, plan.StartPointID, plan.Name, plan.NumDays,
		plan.StartDate.Format(dateLayout), plan.EndDate.Format(dateLayout), string(params), plan.Status,
		plan.TotalDistanceM, plan.TotalMinutes, plan.TotalCost, plan.TotalAttractions,
		plan.UnoptimizedDays, plan.AverageOptimizationScore, createdAt.Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("insert itinerary: %w", err)
	}

	for _, d := range plan.Days {
		data, err := json.Marshal(dayData{
			ClusterID:         d.ClusterID,
			Stops:             d.Stops,
			Segments:          d.Segments,
			AttractionsCount:  d.AttractionsCount,
			OptimizationScore: d.OptimizationScore,
			Transport:         d.Transport,
			Warnings:          d.Warnings,
			ValidationErrors:  d.ValidationErrors,
		})
		if err != nil {
			return "", fmt.Errorf("marshal day %d: %w", d.DayNumber, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO itinerary_days (itinerary_id, day_number, date, optimized, centroid_lat, centroid_lon,
			                             total_distance_m, total_minutes, total_cost, data)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, d.DayNumber, d.Date.Format(dateLayout), d.Optimized, d.Centroid.Lat, d.Centroid.Lon,
			d.TotalDistanceM, d.TotalMinutes, d.TotalCost, string(data))
		if err != nil {
			return "", fmt.Errorf("insert day %d: %w", d.DayNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// GetItinerary retrieves a stored plan with its days.
func (s *SQLiteStore) GetItinerary(ctx context.Context, id string) (*model.ItineraryPlan, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itineraryColumns+` FROM itineraries WHERE id = ?`, id)
	plan, err := scanItinerary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("itinerary %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT day_number, date, optimized, centroid_lat, centroid_lon, total_distance_m, total_minutes,
		        total_cost, data
		 FROM itinerary_days WHERE itinerary_id = ? ORDER BY day_number`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var d model.ItineraryDay
		var date, data string
		if err := rows.Scan(&d.DayNumber, &date, &d.Optimized, &d.Centroid.Lat, &d.Centroid.Lon,
			&d.TotalDistanceM, &d.TotalMinutes, &d.TotalCost, &data); err != nil {
			return nil, err
		}
		d.Date, _ = time.Parse(dateLayout, date)

		var body dayData
		if err := json.Unmarshal([]byte(data), &body); err != nil {
			return nil, fmt.Errorf("itinerary %s day %d: %w", id, d.DayNumber, err)
		}
		d.ClusterID = body.ClusterID
		d.Stops = body.Stops
		d.Segments = body.Segments
		d.AttractionsCount = body.AttractionsCount
		d.OptimizationScore = body.OptimizationScore
		d.Transport = body.Transport
		d.Warnings = body.Warnings
		d.ValidationErrors = body.ValidationErrors
		plan.Days = append(plan.Days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &plan, nil
}

// ListItineraries lists stored plans without their days, newest first.
func (s *SQLiteStore) ListItineraries(ctx context.Context, p ItineraryListParams) ([]model.ItineraryPlan, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT ` + itineraryColumns + ` FROM itineraries`
	var args []interface{}
	if p.ProfileID != 0 {
		query += ` WHERE profile_id = ?`
		args = append(args, p.ProfileID)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ItineraryPlan
	for rows.Next() {
		plan, err := scanItinerary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, plan)
	}
	return out, rows.Err()
}

// RmItinerary deletes a plan and its days.
func (s *SQLiteStore) RmItinerary(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM itineraries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete itinerary: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("itinerary %s: %w", id, ErrNotFound)
	}
	return nil
}

func scanItinerary(row scanner) (model.ItineraryPlan, error) {
	var p model.ItineraryPlan
	var start, end, params, created string

	err := row.Scan(&p.ID, &p.ProfileID, &p.DestinationID, &p.StartPointID, &p.Name, &p.NumDays,
		&start, &end, &params, &p.Status, &p.TotalDistanceM, &p.TotalMinutes, &p.TotalCost,
		&p.TotalAttractions, &p.UnoptimizedDays, &p.AverageOptimizationScore, &created)
	if err != nil {
		return p, err
	}
	p.StartDate, _ = time.Parse(dateLayout, start)
	p.EndDate, _ = time.Parse(dateLayout, end)
	p.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	if err := json.Unmarshal([]byte(params), &p.Params); err != nil {
		return p, fmt.Errorf("itinerary %s params: %w", p.ID, err)
	}
	return p, nil
}
