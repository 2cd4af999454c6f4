package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	_ "modernc.org/sqlite"

	"github.com/kilianp07/fleetpool/core/model"
)

// DefaultTable is the journey table used when none is configured.
const DefaultTable = "journeys"

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteStore persists journeys in a SQLite database. A journey is keyed by
// vessel, route and period.
type SQLiteStore struct {
	db    *sql.DB
	table string
}

// OpenSQLite opens or creates the database and ensures the schema.
func OpenSQLite(path, table string) (*SQLiteStore, error) {
	if table == "" {
		table = DefaultTable
	}
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS ` + table + ` (
        ship_id TEXT NOT NULL,
        ship_type TEXT,
        route_id TEXT NOT NULL DEFAULT '',
        month TEXT NOT NULL DEFAULT '',
        distance REAL,
        fuel_type TEXT,
        fuel_consumption REAL,
        weather_conditions TEXT,
        engine_efficiency REAL,
        CO2_emissions REAL,
        PRIMARY KEY(ship_id, route_id, month)
    );`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db, table: table}, nil
}

// Save inserts or replaces the journeys in a single transaction.
func (s *SQLiteStore) Save(ctx context.Context, journeys []model.Journey) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO `+s.table+` (ship_id, ship_type, route_id, month,
        distance, fuel_type, fuel_consumption, weather_conditions, engine_efficiency, CO2_emissions)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(ship_id, route_id, month) DO UPDATE SET
            ship_type = excluded.ship_type,
            distance = excluded.distance,
            fuel_type = excluded.fuel_type,
            fuel_consumption = excluded.fuel_consumption,
            weather_conditions = excluded.weather_conditions,
            engine_efficiency = excluded.engine_efficiency,
            CO2_emissions = excluded.CO2_emissions`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer func() { _ = stmt.Close() }()
	for _, j := range journeys {
		if err := j.Validate(); err != nil {
			_ = tx.Rollback()
			return err
		}
		if _, err := stmt.ExecContext(ctx, j.VesselID, j.VesselType, j.RouteID, j.Period, j.DistanceNM,
			j.FuelType, j.FuelConsumption, j.Weather, j.EngineEfficiency, j.CO2KG); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Journeys returns all stored journeys ordered by vessel, period and route.
func (s *SQLiteStore) Journeys(ctx context.Context) ([]model.Journey, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT ship_id, COALESCE(ship_type, ''), route_id, month,
        COALESCE(distance, 0), COALESCE(fuel_type, ''), COALESCE(fuel_consumption, 0),
        COALESCE(weather_conditions, ''), COALESCE(engine_efficiency, 0), COALESCE(CO2_emissions, 0)
        FROM `+s.table+` ORDER BY ship_id, month, route_id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []model.Journey
	for rows.Next() {
		var j model.Journey
		if err := rows.Scan(&j.VesselID, &j.VesselType, &j.RouteID, &j.Period, &j.DistanceNM,
			&j.FuelType, &j.FuelConsumption, &j.Weather, &j.EngineEfficiency, &j.CO2KG); err != nil {
			return nil, err
		}
		if err := j.Validate(); err != nil {
			return nil, err
		}
		res = append(res, j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
