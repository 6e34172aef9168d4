package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"tripplanner.dev/gtfs/model"
)

// Keeps delay reports in a single JSON array on disk.
//
// Each append reads the whole file, appends and writes it back via a
// temporary file and rename. The mutex serializes appends within the
// process, so concurrent submissions are never lost.
type FileStorage struct {
	Path string

	mutex sync.Mutex
}

func NewFileStorage(path string) (*FileStorage, error) {
	dir := filepath.Dir(path)
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return nil, fmt.Errorf("creating directory: %w", err)
	}

	return &FileStorage{Path: path}, nil
}

func (s *FileStorage) load() ([]model.DelayReport, error) {
	buf, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return []model.DelayReport{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading: %w", err)
	}

	reports := []model.DelayReport{}
	if len(buf) == 0 {
		return reports, nil
	}

	err = json.Unmarshal(buf, &reports)
	if err != nil {
		return nil, fmt.Errorf("unmarshalling: %w", err)
	}

	return reports, nil
}

func (s *FileStorage) save(reports []model.DelayReport) error {
	buf, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling: %w", err)
	}

	tmp := s.Path + ".tmp"
	err = os.WriteFile(tmp, buf, 0644)
	if err != nil {
		return fmt.Errorf("writing: %w", err)
	}

	err = os.Rename(tmp, s.Path)
	if err != nil {
		return fmt.Errorf("renaming: %w", err)
	}

	return nil
}

func (s *FileStorage) AppendDelay(ctx context.Context, report model.DelayReport) error {
	err := ValidateReport(report)
	if err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	reports, err := s.load()
	if err != nil {
		return err
	}

	for _, r := range reports {
		if r.ID == report.ID {
			return fmt.Errorf("%w: %s", ErrDuplicateID, report.ID)
		}
	}

	return s.save(append(reports, report))
}

func (s *FileStorage) ListDelays(ctx context.Context) ([]model.DelayReport, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.load()
}

func (s *FileStorage) Close() error {
	return nil
}
