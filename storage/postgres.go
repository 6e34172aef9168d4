package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"tripplanner.dev/gtfs/model"
)

type PSQLStorage struct {
	db *sql.DB
}

// Creates a new Postgres Storage using the provided connection string.
//
// If clearDB is true, the database will be cleared on startup. You
// probably only want this for testing.
func NewPSQLStorage(connStr string, clearDB bool) (*PSQLStorage, error) {

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	err = db.Ping()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	if clearDB {
		_, err = db.Exec(`DROP TABLE IF EXISTS delay_report;`)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("clearing db: %w", err)
		}
	}

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS delay_report (
    seq BIGSERIAL,
    id TEXT NOT NULL,
    cause TEXT NOT NULL,
    vehicle_number TEXT NOT NULL,
    lat DOUBLE PRECISION NOT NULL,
    lng DOUBLE PRECISION NOT NULL,
    timestamp TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (id)
);`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating delay_report table: %w", err)
	}

	return &PSQLStorage{
		db: db,
	}, nil
}

func (s *PSQLStorage) AppendDelay(ctx context.Context, report model.DelayReport) error {
	err := ValidateReport(report)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO delay_report (id, cause, vehicle_number, lat, lng, timestamp)
VALUES ($1, $2, $3, $4, $5, $6)`,
		report.ID,
		report.Cause,
		report.VehicleNumber,
		report.Location.Lat,
		report.Location.Lng,
		report.Timestamp.UTC(),
	)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return fmt.Errorf("%w: %s", ErrDuplicateID, report.ID)
	}
	if err != nil {
		return fmt.Errorf("inserting delay report: %w", err)
	}

	return nil
}

func (s *PSQLStorage) ListDelays(ctx context.Context) ([]model.DelayReport, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, cause, vehicle_number, lat, lng, timestamp
FROM delay_report
ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("querying delay reports: %w", err)
	}
	defer rows.Close()

	reports := []model.DelayReport{}
	for rows.Next() {
		var r model.DelayReport
		var timestamp time.Time
		err := rows.Scan(
			&r.ID,
			&r.Cause,
			&r.VehicleNumber,
			&r.Location.Lat,
			&r.Location.Lng,
			&timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning delay report: %w", err)
		}
		r.Timestamp = timestamp.UTC()
		reports = append(reports, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating delay reports: %w", err)
	}

	return reports, nil
}

func (s *PSQLStorage) Close() error {
	err := s.db.Close()
	if err != nil {
		return fmt.Errorf("failed to close db: %w", err)
	}
	return nil
}
