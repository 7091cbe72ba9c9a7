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

const profileColumns = `id, user_id, name, preferences, budget_range, budget_min, budget_max, mobility, computed_profile`

// PutProfile inserts or replaces a traveler profile. A zero id assigns one.
func (s *SQLiteStore) PutProfile(ctx context.Context, p model.Profile) (*model.Profile, error) {
	prefs, err := json.Marshal(p.Preferences)
	if err != nil {
		return nil, fmt.Errorf("marshal preferences: %w", err)
	}
	mob, err := json.Marshal(p.Mobility)
	if err != nil {
		return nil, fmt.Errorf("marshal mobility: %w", err)
	}
	computed, err := jsonOrNil(p.ComputedProfile, p.ComputedProfile != nil)
	if err != nil {
		return nil, fmt.Errorf("marshal computed profile: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO profiles (`+profileColumns+`, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   user_id = excluded.user_id, name = excluded.name, preferences = excluded.preferences,
		   budget_range = excluded.budget_range, budget_min = excluded.budget_min,
		   budget_max = excluded.budget_max, mobility = excluded.mobility,
		   computed_profile = excluded.computed_profile, updated_at = excluded.updated_at`,
		nullID(p.ID), p.UserID, p.Name, string(prefs), p.BudgetRange, p.BudgetMin, p.BudgetMax,
		string(mob), computed, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("put profile: %w", err)
	}
	if p.ID == 0 {
		p.ID, _ = res.LastInsertId()
	}
	return &p, nil
}

// GetProfile retrieves a traveler profile.
func (s *SQLiteStore) GetProfile(ctx context.Context, id int64) (*model.Profile, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProfiles returns every profile ordered by id.
func (s *SQLiteStore) ListProfiles(ctx context.Context) ([]model.Profile, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+profileColumns+` FROM profiles ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SaveComputedProfile stores the rule-derived parameters of a profile.
func (s *SQLiteStore) SaveComputedProfile(ctx context.Context, id int64, cp model.ComputedProfile) error {
	b, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("marshal computed profile: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE profiles SET computed_profile = ?, updated_at = ? WHERE id = ?`,
		string(b), time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("save computed profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("profile %d: %w", id, ErrNotFound)
	}
	return nil
}

func scanProfile(row scanner) (model.Profile, error) {
	var p model.Profile
	var prefs, mob string
	var min, max sql.NullFloat64
	var computed sql.NullString

	err := row.Scan(&p.ID, &p.UserID, &p.Name, &prefs, &p.BudgetRange, &min, &max, &mob, &computed)
	if err != nil {
		return p, err
	}
	if err := json.Unmarshal([]byte(prefs), &p.Preferences); err != nil {
		return p, fmt.Errorf("profile %d preferences: %w", p.ID, err)
	}
	if err := json.Unmarshal([]byte(mob), &p.Mobility); err != nil {
		return p, fmt.Errorf("profile %d mobility: %w", p.ID, err)
	}
	if min.Valid {
		p.BudgetMin = model.Float(min.Float64)
	}
	if max.Valid {
		p.BudgetMax = model.Float(max.Float64)
	}
	if computed.Valid {
		var cp model.ComputedProfile
		if err := json.Unmarshal([]byte(computed.String), &cp); err == nil {
			p.ComputedProfile = &cp
		}
	}
	return p, nil
}
