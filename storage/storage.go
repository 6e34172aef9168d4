package storage

import (
	"context"
	"errors"
	"fmt"

	"tripplanner.dev/gtfs/model"
)

var (
	ErrInvalidReport = errors.New("invalid delay report")
	ErrDuplicateID   = errors.New("duplicate delay report id")
)

// Append-only log of delay reports.
type DelayStore interface {
	// Appends a report. Reports are never modified once written.
	AppendDelay(ctx context.Context, report model.DelayReport) error

	// Returns all reports, oldest first. Empty if nothing has been
	// written yet.
	ListDelays(ctx context.Context) ([]model.DelayReport, error)

	Close() error
}

// Checks a report before it is written.
func ValidateReport(r model.DelayReport) error {
	switch {
	case r.ID == "":
		return fmt.Errorf("%w: missing id", ErrInvalidReport)
	case r.Cause == "":
		return fmt.Errorf("%w: missing cause", ErrInvalidReport)
	case r.Location.Lat < -90 || r.Location.Lat > 90:
		return fmt.Errorf("%w: latitude %f out of range", ErrInvalidReport, r.Location.Lat)
	case r.Location.Lng < -180 || r.Location.Lng > 180:
		return fmt.Errorf("%w: longitude %f out of range", ErrInvalidReport, r.Location.Lng)
	case r.Timestamp.IsZero():
		return fmt.Errorf("%w: missing timestamp", ErrInvalidReport)
	}
	return nil
}
