package parse

import (
	"tripplanner.dev/gtfs/model"
)

func TripFromRow(row Row) model.Trip {
	trip := model.Trip{
		ID:        row.String("trip_id"),
		RouteID:   row.String("route_id"),
		ServiceID: row.String("service_id"),
		ShapeID:   row.String("shape_id"),
		BlockID:   row.String("block_id"),
		Headsign:  row.String("trip_headsign"),
		ShortName: row.String("trip_short_name"),
	}
	if direction, ok := row.OptionalInt("direction_id"); ok {
		trip.DirectionID = &direction
	}
	return trip
}
