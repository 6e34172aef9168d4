package parse

import (
	"tripplanner.dev/gtfs/model"
)

// Projects a stop_times.txt row. A missing stop_sequence reads as 0.
func StopTimeFromRow(row Row) model.StopTime {
	return model.StopTime{
		TripID:       row.String("trip_id"),
		StopID:       row.String("stop_id"),
		Headsign:     row.String("stop_headsign"),
		StopSequence: row.Int("stop_sequence", 0),
		Arrival:      row.String("arrival_time"),
		Departure:    row.String("departure_time"),
	}
}
