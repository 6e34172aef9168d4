package parse

import (
	"tripplanner.dev/gtfs/model"
)

var weekdayColumns = []string{
	"monday",
	"tuesday",
	"wednesday",
	"thursday",
	"friday",
	"saturday",
	"sunday",
}

// Projects a calendar.txt row. Weekday is a bitmask with Monday as
// bit 0.
func CalendarFromRow(row Row) model.Calendar {
	cal := model.Calendar{
		ServiceID: row.String("service_id"),
		StartDate: row.String("start_date"),
		EndDate:   row.String("end_date"),
	}
	for i, day := range weekdayColumns {
		if row.Int(day, 0) == 1 {
			cal.Weekday |= 1 << i
		}
	}
	return cal
}

// Earliest and latest date (YYYYMMDD) covered by calendar.txt and
// calendar_dates.txt. Blank if neither has any dates.
func CalendarRange(calendar []Row, calendarDates []Row) (string, string) {
	var start, end string

	extend := func(from, to string) {
		if len(from) == 8 && (start == "" || from < start) {
			start = from
		}
		if len(to) == 8 && (end == "" || to > end) {
			end = to
		}
	}

	for _, row := range calendar {
		cal := CalendarFromRow(row)
		extend(cal.StartDate, cal.EndDate)
	}
	for _, row := range calendarDates {
		cd := CalendarDateFromRow(row)
		extend(cd.Date, cd.Date)
	}

	return start, end
}
