package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"tripplanner.dev/gtfs/model"
)

type SQLiteConfig struct {
	OnDisk    bool
	Directory string
}

type SQLiteStorage struct {
	SQLiteConfig

	db *sql.DB
}

func NewSQLiteStorage(cfg ...SQLiteConfig) (*SQLiteStorage, error) {
	onDisk := false
	directory := ""
	if len(cfg) > 0 {
		onDisk = cfg[0].OnDisk
		directory = cfg[0].Directory
	}

	sourceName := ":memory:"
	if onDisk {
		sourceName = directory + "/delays.db"
	}

	db, err := sql.Open("sqlite3", sourceName)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Each connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS delay_report (
    id TEXT NOT NULL,
    cause TEXT NOT NULL,
    vehicle_number TEXT NOT NULL,
    lat REAL NOT NULL,
    lng REAL NOT NULL,
    timestamp TEXT NOT NULL,
PRIMARY KEY (id)
);`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return &SQLiteStorage{
		SQLiteConfig: SQLiteConfig{
			OnDisk:    onDisk,
			Directory: directory,
		},
		db: db,
	}, nil
}

func (s *SQLiteStorage) AppendDelay(ctx context.Context, report model.DelayReport) error {
	err := ValidateReport(report)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO delay_report (id, cause, vehicle_number, lat, lng, timestamp)
VALUES (?, ?, ?, ?, ?, ?)`,
		report.ID,
		report.Cause,
		report.VehicleNumber,
		report.Location.Lat,
		report.Location.Lng,
		report.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return fmt.Errorf("%w: %s", ErrDuplicateID, report.ID)
	}
	if err != nil {
		return fmt.Errorf("inserting delay report: %w", err)
	}

	return nil
}

func (s *SQLiteStorage) ListDelays(ctx context.Context) ([]model.DelayReport, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, cause, vehicle_number, lat, lng, timestamp
FROM delay_report
ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying delay reports: %w", err)
	}
	defer rows.Close()

	reports := []model.DelayReport{}
	for rows.Next() {
		var r model.DelayReport
		var timestamp string
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

		r.Timestamp, err = time.Parse(time.RFC3339Nano, timestamp)
		if err != nil {
			return nil, fmt.Errorf("parsing timestamp of %s: %w", r.ID, err)
		}

		reports = append(reports, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating delay reports: %w", err)
	}

	return reports, nil
}

func (s *SQLiteStorage) Close() error {
	err := s.db.Close()
	if err != nil {
		return fmt.Errorf("closing db: %w", err)
	}
	return nil
}
