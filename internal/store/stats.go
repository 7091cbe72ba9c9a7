package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath       string          `json:"db_path"`
	DBSizeBytes  int64           `json:"db_size_bytes"`
	Destinations int             `json:"destinations"`
	Attractions  int             `json:"attractions"`
	Connections  int             `json:"connections"`
	Profiles     int             `json:"profiles"`
	Itineraries  int             `json:"itineraries"`
	Categories   []CategoryStats `json:"categories"`
	Modes        map[string]int  `json:"connections_by_mode"`
}

// CategoryStats holds per-category attraction counts.
type CategoryStats struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath, Modes: map[string]int{}}

	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM destinations`).Scan(&st.Destinations)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM attractions`).Scan(&st.Attractions)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM connections`).Scan(&st.Connections)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&st.Profiles)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM itineraries`).Scan(&st.Itineraries)

	rows, err := s.db.QueryContext(ctx, `
		SELECT category, COUNT(*) AS cnt FROM attractions
		GROUP BY category ORDER BY cnt DESC, category`)
	if err != nil {
		return st, err
	}
	defer rows.Close()
	for rows.Next() {
		var c CategoryStats
		rows.Scan(&c.Category, &c.Count)
		st.Categories = append(st.Categories, c)
	}

	modes, err := s.db.QueryContext(ctx, `SELECT mode, COUNT(*) FROM connections GROUP BY mode`)
	if err != nil {
		return st, err
	}
	defer modes.Close()
	for modes.Next() {
		var m string
		var n int
		modes.Scan(&m, &n)
		st.Modes[m] = n
	}

	return st, nil
}
