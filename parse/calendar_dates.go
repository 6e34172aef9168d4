package parse

import (
	"tripplanner.dev/gtfs/model"
)

func CalendarDateFromRow(row Row) model.CalendarDate {
	return model.CalendarDate{
		ServiceID:     row.String("service_id"),
		Date:          row.String("date"),
		ExceptionType: int8(row.Int("exception_type", 0)),
	}
}
