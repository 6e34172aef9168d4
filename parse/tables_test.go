package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tripplanner.dev/gtfs/model"
)

func TestStopFromRow(t *testing.T) {
	stop, ok := StopFromRow(Row{
		"stop_id":        "s1",
		"stop_code":      "123",
		"stop_name":      "Rondo Mogilskie",
		"stop_lat":       "50.0655",
		"stop_lon":       "19.9580",
		"location_type":  "1",
		"parent_station": "",
		"zone_id":        "A",
	})
	assert.True(t, ok)
	assert.Equal(t, model.Stop{
		ID:           "s1",
		Code:         "123",
		Name:         "Rondo Mogilskie",
		Lat:          50.0655,
		Lon:          19.9580,
		ZoneID:       "A",
		LocationType: model.LocationTypeStation,
	}, stop)

	_, ok = StopFromRow(Row{"stop_id": "s2", "stop_lat": "", "stop_lon": "19.9"})
	assert.False(t, ok)
	_, ok = StopFromRow(Row{"stop_id": "s3", "stop_lat": "x", "stop_lon": "19.9"})
	assert.False(t, ok)

	assert.Equal(t, &model.Location{Lat: 50.0655, Lng: 19.958}, StopLocation(Row{"stop_lat": "50.0655", "stop_lon": "19.958"}))
	assert.Nil(t, StopLocation(Row{"stop_lat": "50.0655"}))
	assert.Nil(t, StopLocation(nil))
}

func TestRouteFromRow(t *testing.T) {
	route := RouteFromRow(Row{
		"route_id":         "r1",
		"route_short_name": "1",
		"route_long_name":  "Wzgórza - Salwator",
		"route_type":       "0",
		"route_color":      "FF0000",
	})
	assert.Equal(t, "r1", route.ID)
	assert.Equal(t, model.RouteTypeTram, route.Type)
	assert.Equal(t, "FF0000", route.Color)

	assert.Equal(t, model.RouteTypeBus, RouteFromRow(Row{"route_id": "r2"}).Type)
	assert.Equal(t, model.RouteTypeBus, RouteFromRow(Row{"route_id": "r3", "route_type": "tram"}).Type)
}

func TestRouteTypeName(t *testing.T) {
	assert.Equal(t, "Tram", model.RouteTypeTram.Name())
	assert.Equal(t, "Bus", model.RouteTypeBus.Name())
	assert.Equal(t, "Type 715", model.RouteType(715).Name())
}

func TestTripFromRow(t *testing.T) {
	trip := TripFromRow(Row{
		"trip_id":       "t1",
		"route_id":      "r1",
		"service_id":    "wd",
		"shape_id":      "sh1",
		"trip_headsign": "Salwator",
		"direction_id":  "1",
	})
	assert.Equal(t, "t1", trip.ID)
	assert.Equal(t, "sh1", trip.ShapeID)
	assert.Equal(t, "Salwator", trip.Headsign)
	if assert.NotNil(t, trip.DirectionID) {
		assert.Equal(t, 1, *trip.DirectionID)
	}

	assert.Nil(t, TripFromRow(Row{"trip_id": "t2", "direction_id": ""}).DirectionID)
}

func TestStopTimeFromRow(t *testing.T) {
	st := StopTimeFromRow(Row{
		"trip_id":        "t1",
		"stop_id":        "s1",
		"stop_sequence":  "4",
		"arrival_time":   "25:01:00",
		"departure_time": "25:02:00",
	})
	assert.Equal(t, model.StopTime{
		TripID:       "t1",
		StopID:       "s1",
		StopSequence: 4,
		Arrival:      "25:01:00",
		Departure:    "25:02:00",
	}, st)

	assert.Equal(t, 0, StopTimeFromRow(Row{"trip_id": "t1"}).StopSequence)
}

func TestShapePoints(t *testing.T) {
	shapes := ShapePoints([]Row{
		{"shape_id": "a", "shape_pt_lat": "50.2", "shape_pt_lon": "19.2", "shape_pt_sequence": "2"},
		{"shape_id": "a", "shape_pt_lat": "50.1", "shape_pt_lon": "19.1", "shape_pt_sequence": "1"},
		{"shape_id": "a", "shape_pt_lat": "", "shape_pt_lon": "19.1", "shape_pt_sequence": "3"},
		{"shape_id": "b", "shape_pt_lat": "0", "shape_pt_lon": "19.1", "shape_pt_sequence": "1"},
		{"shape_id": "c", "shape_pt_lat": "50.3", "shape_pt_lon": "19.3", "shape_pt_sequence": "1"},
	})

	assert.Equal(t, map[string][]model.ShapePoint{
		"a": {
			{ShapeID: "a", Lat: 50.1, Lng: 19.1, Sequence: 1},
			{ShapeID: "a", Lat: 50.2, Lng: 19.2, Sequence: 2},
		},
		"c": {
			{ShapeID: "c", Lat: 50.3, Lng: 19.3, Sequence: 1},
		},
	}, shapes)
}

func TestShapePointsDecimalSequence(t *testing.T) {
	shapes := ShapePoints([]Row{
		{"shape_id": "a", "shape_pt_lat": "50.3", "shape_pt_lon": "19.3", "shape_pt_sequence": "3.0"},
		{"shape_id": "a", "shape_pt_lat": "50.1", "shape_pt_lon": "19.1", "shape_pt_sequence": "1.0"},
		{"shape_id": "a", "shape_pt_lat": "50.2", "shape_pt_lon": "19.2", "shape_pt_sequence": "2.0"},
	})

	assert.Equal(t, []model.ShapePoint{
		{ShapeID: "a", Lat: 50.1, Lng: 19.1, Sequence: 1},
		{ShapeID: "a", Lat: 50.2, Lng: 19.2, Sequence: 2},
		{ShapeID: "a", Lat: 50.3, Lng: 19.3, Sequence: 3},
	}, shapes["a"])

	st := StopTimeFromRow(Row{"trip_id": "t1", "stop_id": "s1", "stop_sequence": "4.0"})
	assert.Equal(t, 4, st.StopSequence)
}

func TestCalendarFromRow(t *testing.T) {
	cal := CalendarFromRow(Row{
		"service_id": "we",
		"monday":     "0",
		"saturday":   "1",
		"sunday":     "1",
		"start_date": "20240101",
		"end_date":   "20240630",
	})
	assert.Equal(t, model.Calendar{
		ServiceID: "we",
		StartDate: "20240101",
		EndDate:   "20240630",
		Weekday:   1<<5 | 1<<6,
	}, cal)

	cd := CalendarDateFromRow(Row{"service_id": "we", "date": "20240501", "exception_type": "2"})
	assert.Equal(t, model.CalendarDate{ServiceID: "we", Date: "20240501", ExceptionType: 2}, cd)
}

func TestCalendarRange(t *testing.T) {
	start, end := CalendarRange(
		[]Row{
			{"start_date": "20240301", "end_date": "20240630"},
			{"start_date": "20240101", "end_date": "20240331"},
		},
		[]Row{
			{"date": "20231224"},
			{"date": "bogus"},
		},
	)
	assert.Equal(t, "20231224", start)
	assert.Equal(t, "20240630", end)

	start, end = CalendarRange(nil, nil)
	assert.Equal(t, "", start)
	assert.Equal(t, "", end)
}

func TestAgencyFromRow(t *testing.T) {
	assert.Equal(t, model.Agency{
		ID:       "mpk",
		Name:     "MPK Kraków",
		URL:      "https://mpk.krakow.pl",
		Timezone: "Europe/Warsaw",
	}, AgencyFromRow(Row{
		"agency_id":       "mpk",
		"agency_name":     "MPK Kraków",
		"agency_url":      "https://mpk.krakow.pl",
		"agency_timezone": "Europe/Warsaw",
	}))
}
