package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tripplanner.dev/gtfs/model"
)

func testMapData() *model.MapData {
	return &model.MapData{
		Stops: []model.MappedStop{
			{ID: "a-s1", Lat: 50.06, Lng: 19.94, SourceID: "a"},
			{ID: "a-s2", Lat: 50.20, Lng: 19.94, SourceID: "a"},
			{ID: "b-s1", Lat: 50.05, Lng: 19.95, SourceID: "b"},
		},
		Routes: []model.MappedRoute{
			{ID: "a-r1", Type: model.RouteTypeBus, Stops: []string{"a-s2", "a-s1"}, SourceID: "a"},
			{ID: "a-r2", Type: model.RouteTypeTram, Stops: []string{"a-s1"}, SourceID: "a"},
			{ID: "b-r1", Type: model.RouteTypeBus, Stops: []string{}, SourceID: "b"},
		},
		Vehicles: []model.Vehicle{
			{ID: "v1", RouteID: "r1", SourceID: "a"},
			{ID: "v2", RouteID: "r2", SourceID: "a"},
			{ID: "v3", RouteID: "r1", SourceID: "c"},
		},
	}
}

func TestBoundsContains(t *testing.T) {
	b := model.DefaultBounds
	assert.True(t, b.Contains(50.05, 20.0))
	assert.True(t, b.Contains(50.1, 19.9))
	assert.False(t, b.Contains(50.2, 20.0))
	assert.False(t, b.Contains(50.05, 20.2))
}

func TestStopsInBounds(t *testing.T) {
	m := testMapData()

	stops := m.StopsInBounds(model.DefaultBounds)
	assert.Equal(t, 2, len(stops))
	assert.Equal(t, "a-s1", stops[0].ID)
	assert.Equal(t, "b-s1", stops[1].ID)

	assert.Equal(t, []model.MappedStop{}, m.StopsInBounds(model.Bounds{North: 1, South: 0, East: 1, West: 0}))
}

func TestRoutesByType(t *testing.T) {
	m := testMapData()

	buses := m.RoutesByType(model.RouteTypeBus)
	assert.Equal(t, 2, len(buses))
	assert.Equal(t, "a-r1", buses[0].ID)
	assert.Equal(t, "b-r1", buses[1].ID)

	assert.Equal(t, []model.MappedRoute{}, m.RoutesByType(model.RouteTypeFerry))
}

func TestStopsByRoute(t *testing.T) {
	m := testMapData()

	// Map order, not route order
	stops := m.StopsByRoute("a-r1")
	assert.Equal(t, 2, len(stops))
	assert.Equal(t, "a-s1", stops[0].ID)
	assert.Equal(t, "a-s2", stops[1].ID)

	assert.Equal(t, []model.MappedStop{}, m.StopsByRoute("b-r1"))
	assert.Equal(t, []model.MappedStop{}, m.StopsByRoute("nope"))
}

func TestVehiclesByRoute(t *testing.T) {
	m := testMapData()

	vehicles := m.VehiclesByRoute("r1")
	assert.Equal(t, 2, len(vehicles))
	assert.Equal(t, "v1", vehicles[0].ID)
	assert.Equal(t, "v3", vehicles[1].ID)

	assert.Equal(t, []model.Vehicle{}, m.VehiclesByRoute("r9"))
}

func TestRouteTypeSummary(t *testing.T) {
	m := testMapData()

	assert.Equal(t, []model.RouteTypeCount{
		{Type: model.RouteTypeTram, TypeName: "Tram", Count: 1},
		{Type: model.RouteTypeBus, TypeName: "Bus", Count: 2},
	}, m.RouteTypeSummary())

	assert.Equal(t, "Type 99", model.RouteType(99).Name())
}

func TestSourceBreakdown(t *testing.T) {
	m := testMapData()

	assert.Equal(t, []model.SourceBreakdown{
		{SourceID: "a", Stops: 2, Routes: 2, Vehicles: 2},
		{SourceID: "b", Stops: 1, Routes: 1},
		{SourceID: "c", Vehicles: 1},
	}, m.SourceBreakdown())
}
