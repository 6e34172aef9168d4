package parse

import (
	"math"

	"tripplanner.dev/gtfs/model"
)

// Projects a stops.txt row. The second return value is false if the
// stop lacks a numeric stop_lat or stop_lon.
func StopFromRow(row Row) (model.Stop, bool) {
	stop := model.Stop{
		ID:            row.String("stop_id"),
		Code:          row.String("stop_code"),
		Name:          row.String("stop_name"),
		Desc:          row.String("stop_desc"),
		Lat:           row.Float("stop_lat", math.NaN()),
		Lon:           row.Float("stop_lon", math.NaN()),
		ZoneID:        row.String("zone_id"),
		LocationType:  model.LocationType(row.Int("location_type", 0)),
		ParentStation: row.String("parent_station"),
		PlatformCode:  row.String("platform_code"),
	}

	if math.IsNaN(stop.Lat) || math.IsNaN(stop.Lon) {
		return stop, false
	}
	return stop, true
}

// Location of a stops.txt row, or nil if it has no coordinates.
func StopLocation(row Row) *model.Location {
	if row == nil {
		return nil
	}
	stop, ok := StopFromRow(row)
	if !ok {
		return nil
	}
	return &model.Location{Lat: stop.Lat, Lng: stop.Lon}
}
