package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/itinerary/internal/model"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB

	mu      sync.Mutex // guards entropy
	entropy *rand.Rand
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS destinations (
		id        INTEGER PRIMARY KEY,
		name      TEXT NOT NULL,
		country   TEXT NOT NULL DEFAULT '',
		state     TEXT NOT NULL DEFAULT '',
		lat       REAL,
		lon       REAL,
		timezone  TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS attractions (
		id             INTEGER PRIMARY KEY,
		destination_id INTEGER NOT NULL REFERENCES destinations(id),
		name           TEXT NOT NULL,
		description    TEXT NOT NULL DEFAULT '',
		category       TEXT NOT NULL,
		subcategory    TEXT NOT NULL DEFAULT '',
		rating         REAL,
		price_range    TEXT NOT NULL DEFAULT '',
		visit_minutes  INTEGER,
		lat            REAL,
		lon            REAL,
		verified       INTEGER NOT NULL DEFAULT 0,
		amenities      TEXT,
		address        TEXT NOT NULL DEFAULT '',
		opening_hours  TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_attractions_dest ON attractions(destination_id);
	CREATE INDEX IF NOT EXISTS idx_attractions_category ON attractions(destination_id, category);

	CREATE TABLE IF NOT EXISTS connections (
		from_id        INTEGER NOT NULL REFERENCES attractions(id) ON DELETE CASCADE,
		to_id          INTEGER NOT NULL REFERENCES attractions(id) ON DELETE CASCADE,
		mode           TEXT NOT NULL,
		distance_m     REAL NOT NULL,
		travel_minutes INTEGER NOT NULL,
		cost           REAL NOT NULL DEFAULT 0,
		traffic_factor REAL NOT NULL DEFAULT 1.0,
		PRIMARY KEY (from_id, to_id, mode)
	);
	CREATE INDEX IF NOT EXISTS idx_connections_to ON connections(to_id);

	CREATE TABLE IF NOT EXISTS profiles (
		id               INTEGER PRIMARY KEY,
		user_id          TEXT NOT NULL DEFAULT '',
		name             TEXT NOT NULL,
		preferences      TEXT NOT NULL,
		budget_range     TEXT NOT NULL DEFAULT '',
		budget_min       REAL,
		budget_max       REAL,
		mobility         TEXT NOT NULL,
		computed_profile TEXT,
		updated_at       TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS itineraries (
		id                  TEXT PRIMARY KEY,
		profile_id          INTEGER NOT NULL,
		destination_id      INTEGER NOT NULL,
		start_point_id      INTEGER NOT NULL,
		name                TEXT NOT NULL,
		num_days            INTEGER NOT NULL,
		start_date          TEXT NOT NULL,
		end_date            TEXT NOT NULL,
		params              TEXT NOT NULL,
		status              TEXT NOT NULL,
		total_distance_m    REAL NOT NULL,
		total_minutes       INTEGER NOT NULL,
		total_cost          REAL NOT NULL,
		total_attractions   INTEGER NOT NULL,
		unoptimized_days    INTEGER NOT NULL,
		average_score       REAL NOT NULL,
		created_at          TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_itineraries_profile ON itineraries(profile_id, created_at DESC);

	CREATE TABLE IF NOT EXISTS itinerary_days (
		itinerary_id     TEXT NOT NULL REFERENCES itineraries(id) ON DELETE CASCADE,
		day_number       INTEGER NOT NULL,
		date             TEXT NOT NULL,
		optimized        INTEGER NOT NULL,
		centroid_lat     REAL NOT NULL,
		centroid_lon     REAL NOT NULL,
		total_distance_m REAL NOT NULL,
		total_minutes    INTEGER NOT NULL,
		total_cost       REAL NOT NULL,
		data             TEXT NOT NULL,
		PRIMARY KEY (itinerary_id, day_number)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// PutDestination inserts or replaces a destination.
func (s *SQLiteStore) PutDestination(ctx context.Context, d model.Destination) (*model.Destination, error) {
	var lat, lon *float64
	if d.Location != nil {
		lat, lon = &d.Location.Lat, &d.Location.Lon
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO destinations (id, name, country, state, lat, lon, timezone)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name, country = excluded.country, state = excluded.state,
		   lat = excluded.lat, lon = excluded.lon, timezone = excluded.timezone`,
		nullID(d.ID), d.Name, d.Country, d.State, lat, lon, d.Timezone)
	if err != nil {
		return nil, fmt.Errorf("put destination: %w", err)
	}
	if d.ID == 0 {
		d.ID, _ = res.LastInsertId()
	}
	return &d, nil
}

const destinationColumns = `id, name, country, state, lat, lon, timezone`

// GetDestination retrieves one destination.
func (s *SQLiteStore) GetDestination(ctx context.Context, id int64) (*model.Destination, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+destinationColumns+` FROM destinations WHERE id = ?`, id)
	d, err := scanDestination(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("destination %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListDestinations returns every destination ordered by id.
func (s *SQLiteStore) ListDestinations(ctx context.Context) ([]model.Destination, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+destinationColumns+` FROM destinations ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Destination
	for rows.Next() {
		d, err := scanDestination(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func scanDestination(row scanner) (model.Destination, error) {
	var d model.Destination
	var lat, lon sql.NullFloat64
	if err := row.Scan(&d.ID, &d.Name, &d.Country, &d.State, &lat, &lon, &d.Timezone); err != nil {
		return d, err
	}
	if lat.Valid && lon.Valid {
		d.Location = &model.Coordinate{Lat: lat.Float64, Lon: lon.Float64}
	}
	return d, nil
}

const attractionColumns = `id, destination_id, name, description, category, subcategory, rating,
	price_range, visit_minutes, lat, lon, verified, amenities, address, opening_hours`

// PutAttraction inserts or replaces an attraction.
func (s *SQLiteStore) PutAttraction(ctx context.Context, a model.Attraction) (*model.Attraction, error) {
	var lat, lon *float64
	if a.Location != nil {
		lat, lon = &a.Location.Lat, &a.Location.Lon
	}
	amenities, err := jsonOrNil(a.Amenities, len(a.Amenities) > 0)
	if err != nil {
		return nil, err
	}
	hours, err := jsonOrNil(a.OpeningHours, len(a.OpeningHours) > 0)
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO attractions (`+attractionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   destination_id = excluded.destination_id, name = excluded.name,
		   description = excluded.description, category = excluded.category,
		   subcategory = excluded.subcategory, rating = excluded.rating,
		   price_range = excluded.price_range, visit_minutes = excluded.visit_minutes,
		   lat = excluded.lat, lon = excluded.lon, verified = excluded.verified,
		   amenities = excluded.amenities, address = excluded.address,
		   opening_hours = excluded.opening_hours`,
		nullID(a.ID), a.DestinationID, a.Name, a.Description, a.Category, a.Subcategory, a.Rating,
		a.PriceRange, a.VisitMinutes, lat, lon, a.Verified, amenities, a.Address, hours)
	if err != nil {
		return nil, fmt.Errorf("put attraction: %w", err)
	}
	if a.ID == 0 {
		a.ID, _ = res.LastInsertId()
	}
	return &a, nil
}

// GetAttraction retrieves one attraction.
func (s *SQLiteStore) GetAttraction(ctx context.Context, id int64) (*model.Attraction, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+attractionColumns+` FROM attractions WHERE id = ?`, id)
	a, err := scanAttraction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("attraction %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListAttractions lists attractions ordered by id.
func (s *SQLiteStore) ListAttractions(ctx context.Context, p ListParams) ([]model.Attraction, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 100
	}

	where := []string{"1 = 1"}
	var args []interface{}
	if p.DestinationID != 0 {
		where = append(where, "destination_id = ?")
		args = append(args, p.DestinationID)
	}
	if p.Category != "" {
		where = append(where, "LOWER(category) = LOWER(?)")
		args = append(args, p.Category)
	}
	args = append(args, limit)

	return s.queryAttractions(ctx,
		`SELECT `+attractionColumns+` FROM attractions WHERE `+strings.Join(where, " AND ")+` ORDER BY id LIMIT ?`,
		args...)
}

func (s *SQLiteStore) queryAttractions(ctx context.Context, query string, args ...interface{}) ([]model.Attraction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Attraction
	for rows.Next() {
		a, err := scanAttraction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanAttraction(row scanner) (model.Attraction, error) {
	var a model.Attraction
	var rating, lat, lon sql.NullFloat64
	var visit sql.NullInt64
	var amenities, hours sql.NullString

	err := row.Scan(
		&a.ID, &a.DestinationID, &a.Name, &a.Description, &a.Category, &a.Subcategory, &rating,
		&a.PriceRange, &visit, &lat, &lon, &a.Verified, &amenities, &a.Address, &hours,
	)
	if err != nil {
		return a, err
	}

	if rating.Valid {
		a.Rating = model.Float(rating.Float64)
	}
	if visit.Valid {
		a.VisitMinutes = model.Int(int(visit.Int64))
	}
	if lat.Valid && lon.Valid {
		a.Location = &model.Coordinate{Lat: lat.Float64, Lon: lon.Float64}
	}
	if amenities.Valid {
		json.Unmarshal([]byte(amenities.String), &a.Amenities)
	}
	if hours.Valid {
		json.Unmarshal([]byte(hours.String), &a.OpeningHours)
	}
	return a, nil
}

// nullID maps a zero id to NULL so SQLite assigns the rowid.
func nullID(id int64) interface{} {
	if id == 0 {
		return nil
	}
	return id
}

func jsonOrNil(v interface{}, present bool) (*string, error) {
	if !present {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}
