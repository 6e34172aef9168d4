package storage

import (
	"context"
	"fmt"
	"sync"

	"tripplanner.dev/gtfs/model"
)

// In memory implementation of DelayStore

type MemoryStorage struct {
	mutex   sync.Mutex
	reports []model.DelayReport
	ids     map[string]bool
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		reports: []model.DelayReport{},
		ids:     map[string]bool{},
	}
}

func (s *MemoryStorage) AppendDelay(ctx context.Context, report model.DelayReport) error {
	err := ValidateReport(report)
	if err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.ids[report.ID] {
		return fmt.Errorf("%w: %s", ErrDuplicateID, report.ID)
	}

	s.ids[report.ID] = true
	s.reports = append(s.reports, report)
	return nil
}

func (s *MemoryStorage) ListDelays(ctx context.Context) ([]model.DelayReport, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	out := make([]model.DelayReport, len(s.reports))
	copy(out, s.reports)
	return out, nil
}

func (s *MemoryStorage) Close() error {
	return nil
}
