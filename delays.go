package gtfs

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"tripplanner.dev/gtfs/model"
	"tripplanner.dev/gtfs/storage"
)

// Accepts delay reports, assigning their id and timestamp.
//
// IDs are the submission time in Unix milliseconds, bumped as needed
// so that they strictly increase within the process.
type DelayLog struct {
	Store   storage.DelayStore
	TimeNow func() time.Time
	Logger  *slog.Logger

	mutex  sync.Mutex
	lastID int64
}

func NewDelayLog(store storage.DelayStore) *DelayLog {
	return &DelayLog{
		Store:   store,
		TimeNow: time.Now,
		Logger:  slog.Default(),
	}
}

// Fields of a delay report supplied by the submitter.
type DelaySubmission struct {
	Cause         string
	VehicleNumber string
	Location      model.Location
}

func (l *DelayLog) nextID(now time.Time) (int64, time.Time) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	id := now.UnixMilli()
	if id <= l.lastID {
		id = l.lastID + 1
	}
	l.lastID = id

	return id, time.UnixMilli(id).UTC()
}

// Records a submission and returns the stored report.
func (l *DelayLog) Submit(ctx context.Context, sub DelaySubmission) (model.DelayReport, error) {
	id, ts := l.nextID(l.TimeNow())

	report := model.DelayReport{
		ID:            strconv.FormatInt(id, 10),
		Cause:         sub.Cause,
		VehicleNumber: sub.VehicleNumber,
		Location:      sub.Location,
		Timestamp:     ts,
	}

	err := l.Store.AppendDelay(ctx, report)
	if err != nil {
		l.Logger.Error("storing delay report", "id", report.ID, "err", err)
		return model.DelayReport{}, fmt.Errorf("storing delay report: %w", err)
	}

	l.Logger.Info("delay reported", "id", report.ID, "cause", report.Cause, "vehicle", report.VehicleNumber)

	return report, nil
}

func (l *DelayLog) List(ctx context.Context) ([]model.DelayReport, error) {
	reports, err := l.Store.ListDelays(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing delay reports: %w", err)
	}
	return reports, nil
}
