// Package store persists stations, connections, usage history and computed
// routes in a SQLite database. It backs the in-memory network at startup and
// feeds the load predictor with historical samples.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/NJ2612/ev-charge-optimizer/core/model"
)

// SQLiteStore is the record store implementation over modernc sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// Connection is the persistent form of an undirected station link.
type Connection struct {
	StationA      int
	StationB      int
	DistanceKm    float64
	TrafficFactor float64
}

// RouteRecord stores one computed recommendation for later inspection.
type RouteRecord struct {
	ID            string
	StartID       int
	EndID         int
	Path          string // comma-separated station ids
	TotalDistance float64
	CreatedAt     time.Time
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS stations (
        id INTEGER PRIMARY KEY,
        name TEXT NOT NULL,
        lat REAL NOT NULL,
        lng REAL NOT NULL,
        capacity INTEGER NOT NULL,
        current_load REAL NOT NULL DEFAULT 0,
        status TEXT NOT NULL DEFAULT 'available',
        charging_rate REAL NOT NULL
    );
    CREATE TABLE IF NOT EXISTS connections (
        station_a INTEGER NOT NULL,
        station_b INTEGER NOT NULL,
        distance_km REAL NOT NULL,
        traffic_factor REAL NOT NULL DEFAULT 1,
        PRIMARY KEY(station_a, station_b)
    );
    CREATE TABLE IF NOT EXISTS station_logs (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        station_id INTEGER NOT NULL,
        ts INTEGER NOT NULL,
        load REAL NOT NULL
    );
    CREATE TABLE IF NOT EXISTS routes (
        id TEXT PRIMARY KEY,
        start_id INTEGER NOT NULL,
        end_id INTEGER NOT NULL,
        path TEXT NOT NULL,
        total_distance REAL NOT NULL,
        created_at INTEGER NOT NULL
    );`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// CreateStation inserts or replaces a station record.
func (s *SQLiteStore) CreateStation(ctx context.Context, st model.Station) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO stations (id, name, lat, lng, capacity, current_load, status, charging_rate)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		st.ID, st.Name, st.Lat, st.Lng, st.Capacity, st.CurrentLoad, string(st.Status), st.ChargingRate)
	return err
}

// GetStation returns the station with the given id.
func (s *SQLiteStore) GetStation(ctx context.Context, id int) (model.Station, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, lat, lng, capacity, current_load, status, charging_rate FROM stations WHERE id = ?`, id)
	return scanStation(row)
}

// ListStations returns all stations ordered by id.
func (s *SQLiteStore) ListStations(ctx context.Context) ([]model.Station, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, lat, lng, capacity, current_load, status, charging_rate FROM stations ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Station
	for rows.Next() {
		st, err := scanStation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// UpdateStation persists the mutable fields of a station.
func (s *SQLiteStore) UpdateStation(ctx context.Context, id int, currentLoad float64, status model.StationStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE stations SET current_load = ?, status = ? WHERE id = ?`,
		currentLoad, string(status), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("station %d not found", id)
	}
	return nil
}

// AddConnection inserts or replaces an undirected link. The pair is
// normalized so (a,b) and (b,a) share one row.
func (s *SQLiteStore) AddConnection(ctx context.Context, c Connection) error {
	a, b := c.StationA, c.StationB
	if a > b {
		a, b = b, a
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO connections (station_a, station_b, distance_km, traffic_factor)
         VALUES (?, ?, ?, ?)`, a, b, c.DistanceKm, c.TrafficFactor)
	return err
}

// ListConnections returns all persistent links.
func (s *SQLiteStore) ListConnections(ctx context.Context) ([]Connection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT station_a, station_b, distance_km, traffic_factor FROM connections`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Connection
	for rows.Next() {
		var c Connection
		if err := rows.Scan(&c.StationA, &c.StationB, &c.DistanceKm, &c.TrafficFactor); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// AppendUsage records a historical utilization observation.
func (s *SQLiteStore) AppendUsage(ctx context.Context, sample model.UsageSample) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO station_logs (station_id, ts, load) VALUES (?, ?, ?)`,
		sample.StationID, sample.Timestamp.Unix(), sample.Load)
	return err
}

// UsageHistory returns all usage samples ordered by time.
func (s *SQLiteStore) UsageHistory(ctx context.Context) ([]model.UsageSample, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT station_id, ts, load FROM station_logs ORDER BY ts`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.UsageSample
	for rows.Next() {
		var sm model.UsageSample
		var ts int64
		if err := rows.Scan(&sm.StationID, &ts, &sm.Load); err != nil {
			return nil, err
		}
		sm.Timestamp = time.Unix(ts, 0).UTC()
		out = append(out, sm)
	}
	return out, rows.Err()
}

// SaveRoute stores a computed route under a fresh uuid and returns the id.
func (s *SQLiteStore) SaveRoute(ctx context.Context, rec RouteRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO routes (id, start_id, end_id, path, total_distance, created_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.StartID, rec.EndID, rec.Path, rec.TotalDistance, rec.CreatedAt.Unix())
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStation(r rowScanner) (model.Station, error) {
	var st model.Station
	var status string
	if err := r.Scan(&st.ID, &st.Name, &st.Lat, &st.Lng, &st.Capacity, &st.CurrentLoad, &status, &st.ChargingRate); err != nil {
		return model.Station{}, err
	}
	parsed, err := model.ParseStatus(status)
	if err != nil {
		return model.Station{}, err
	}
	st.Status = parsed
	return st, nil
}
