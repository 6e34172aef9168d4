package parse

import (
	"archive/zip"
	"bytes"
	"log/slog"
	"strings"

	"github.com/pkg/errors"

	"tripplanner.dev/gtfs/model"
)

// Decodes a static GTFS archive held in memory.
//
// Each canonical table present in the archive is parsed into rows.
// Missing tables are left empty. Malformed rows are dropped, and the
// number dropped per table is logged. An archive that can't be
// unzipped, or a table that can't be read, is an error.
func ParseStatic(buf []byte, logger *slog.Logger) (*TableSet, error) {
	if logger == nil {
		logger = slog.Default()
	}

	r, err := zip.NewReader(bytes.NewReader(buf), int64(len(buf)))
	if err != nil {
		return nil, errors.Wrap(err, "unzipping")
	}

	// There should not be any subdirectories. But, some
	// agencies don't care.
	files := map[string]*zip.File{}
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		path := strings.Split(f.Name, "/")
		name := strings.TrimSuffix(path[len(path)-1], ".txt")
		if _, found := files[name]; found {
			continue
		}
		files[name] = f
	}

	ts := NewTableSet()
	for _, table := range TableNames {
		f, found := files[table]
		if !found {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, errors.Wrapf(err, "opening %s", f.Name)
		}

		rows, dropped, err := ParseTable(rc)
		rc.Close()
		if err != nil {
			return nil, errors.Wrapf(err, "parsing %s", f.Name)
		}

		if dropped > 0 {
			logger.Warn("dropped malformed rows", "table", table, "dropped", dropped, "kept", len(rows))
		}

		ts.Tables[table] = rows
	}

	return ts, nil
}

// Summarizes agencies, timezone and service date range of a table
// set.
func Summarize(ts *TableSet) model.FeedSummary {
	summary := model.FeedSummary{
		Counts:   ts.Counts(),
		Agencies: []string{},
	}

	for _, row := range ts.Agency() {
		agency := AgencyFromRow(row)
		if agency.Name != "" {
			summary.Agencies = append(summary.Agencies, agency.Name)
		}
		if summary.Timezone == "" {
			summary.Timezone = agency.Timezone
		}
	}

	summary.CalendarStartDate, summary.CalendarEndDate = CalendarRange(ts.Calendar(), ts.CalendarDates())

	return summary
}
