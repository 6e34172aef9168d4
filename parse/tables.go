package parse

import (
	"sort"
	"sync"

	"tripplanner.dev/gtfs/model"
)

const (
	TableAgency        = "agency"
	TableStops         = "stops"
	TableRoutes        = "routes"
	TableTrips         = "trips"
	TableStopTimes     = "stop_times"
	TableShapes        = "shapes"
	TableCalendar      = "calendar"
	TableCalendarDates = "calendar_dates"
)

// The canonical tables decoded from a static archive, in the order
// they are reported.
var TableNames = []string{
	TableStops,
	TableRoutes,
	TableTrips,
	TableStopTimes,
	TableShapes,
	TableCalendar,
	TableAgency,
	TableCalendarDates,
}

var tableAliases = map[string]string{
	"stopTimes":     TableStopTimes,
	"calendarDates": TableCalendarDates,
}

// Resolves a table name, accepting camelCase aliases.
func CanonicalTableName(name string) (string, bool) {
	if alias, found := tableAliases[name]; found {
		return alias, true
	}
	for _, n := range TableNames {
		if n == name {
			return n, true
		}
	}
	return "", false
}

// Decoded rows of all canonical tables of one archive. Tables absent
// from the archive are empty.
type TableSet struct {
	Tables map[string][]Row

	indexOnce sync.Once
	index     *Index
}

func NewTableSet() *TableSet {
	ts := &TableSet{Tables: map[string][]Row{}}
	for _, name := range TableNames {
		ts.Tables[name] = []Row{}
	}
	return ts
}

func (ts *TableSet) Table(name string) []Row {
	return ts.Tables[name]
}

func (ts *TableSet) Stops() []Row         { return ts.Tables[TableStops] }
func (ts *TableSet) Routes() []Row        { return ts.Tables[TableRoutes] }
func (ts *TableSet) Trips() []Row         { return ts.Tables[TableTrips] }
func (ts *TableSet) StopTimes() []Row     { return ts.Tables[TableStopTimes] }
func (ts *TableSet) Shapes() []Row        { return ts.Tables[TableShapes] }
func (ts *TableSet) Calendar() []Row      { return ts.Tables[TableCalendar] }
func (ts *TableSet) Agency() []Row        { return ts.Tables[TableAgency] }
func (ts *TableSet) CalendarDates() []Row { return ts.Tables[TableCalendarDates] }

func (ts *TableSet) Counts() map[string]int {
	counts := map[string]int{}
	for _, name := range TableNames {
		counts[name] = len(ts.Tables[name])
	}
	return counts
}

// Lookup structures over a TableSet. Built once, on first use, and
// read-only afterwards.
type Index struct {
	StopsByID       map[string]Row
	TripsByID       map[string]Row
	RoutesByID      map[string]Row
	StopTimesByStop map[string][]Row

	// Shape points by shape_id, sorted by sequence with invalid
	// coordinates removed.
	Shapes map[string][]model.ShapePoint
}

func (ts *TableSet) Index() *Index {
	ts.indexOnce.Do(func() {
		ts.index = buildIndex(ts)
	})
	return ts.index
}

func buildIndex(ts *TableSet) *Index {
	idx := &Index{
		StopsByID:       byColumn(ts.Stops(), "stop_id"),
		TripsByID:       byColumn(ts.Trips(), "trip_id"),
		RoutesByID:      byColumn(ts.Routes(), "route_id"),
		StopTimesByStop: map[string][]Row{},
		Shapes:          ShapePoints(ts.Shapes()),
	}

	for _, st := range ts.StopTimes() {
		stopID := st.String("stop_id")
		idx.StopTimesByStop[stopID] = append(idx.StopTimesByStop[stopID], st)
	}

	return idx
}

// Maps column value to row. First row wins on duplicates.
func byColumn(rows []Row, column string) map[string]Row {
	m := make(map[string]Row, len(rows))
	for _, row := range rows {
		key := row.String(column)
		if _, found := m[key]; !found {
			m[key] = row
		}
	}
	return m
}

// Sorts points ascending by sequence, keeping input order on ties.
func sortShapePoints(points []model.ShapePoint) {
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Sequence < points[j].Sequence
	})
}
