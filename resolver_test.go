package gtfs

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripplanner.dev/gtfs/model"
	"tripplanner.dev/gtfs/testutil"
)

func resolverFixture(t *testing.T, feeds map[string]map[string][]string, ids ...string) (*Resolver, *testutil.FeedServer) {
	server := testutil.NewFeedServer()
	for id, files := range feeds {
		server.SetFeed("/"+id+".zip", testutil.BuildZip(t, files))
	}

	c, _ := testCache(t, server, ids...)
	return NewResolver(c), server
}

func TestFindRoutesByStopIDs(t *testing.T) {
	r, server := resolverFixture(t, map[string]map[string][]string{
		"krakow1": testutil.KrakowFeed(),
	}, "krakow1")
	defer server.Close()

	res := r.FindRoutesByStopIDs(context.Background(), "s1", "s3")
	require.Equal(t, 1, len(res.Connections))

	conn := res.Connections[0]
	assert.Equal(t, "r1", conn.RouteID)
	assert.Equal(t, "1", conn.RouteShortName)
	assert.Equal(t, "Wzgórza Krzesławickie - Salwator", conn.RouteLongName)
	assert.Equal(t, "krakow1", conn.SourceID)
	assert.Equal(t, "t1", conn.TripID)
	assert.Equal(t, "sh1", conn.ShapeID)
	assert.Equal(t, "Salwator", conn.Headsign)
	assert.Equal(t, "s1", conn.FromStopID)
	assert.Equal(t, "s3", conn.ToStopID)
	assert.Equal(t, &model.Location{Lat: 50.0660, Lng: 19.9600}, conn.FromLocation)
	assert.Equal(t, &model.Location{Lat: 50.0540, Lng: 19.9090}, conn.ToLocation)

	// Shape points sorted by sequence
	assert.Equal(t, []model.ShapePoint{
		{ShapeID: "sh1", Lat: 50.0660, Lng: 19.9600, Sequence: 1},
		{ShapeID: "sh1", Lat: 50.0640, Lng: 19.9420, Sequence: 2},
		{ShapeID: "sh1", Lat: 50.0540, Lng: 19.9090, Sequence: 3},
	}, conn.ShapePoints)

	assert.Equal(t, []model.SourceReport{{SourceID: "krakow1", OK: true, Count: 1}}, res.Sources)
}

func TestFindRoutesByStopIDsDirectionality(t *testing.T) {
	r, server := resolverFixture(t, map[string]map[string][]string{
		"krakow1": testutil.KrakowFeed(),
	}, "krakow1")
	defer server.Close()

	// Tram 1 goes s1 -> s3, never s3 -> s1
	res := r.FindRoutesByStopIDs(context.Background(), "s3", "s1")
	assert.Equal(t, []model.RouteConnection{}, res.Connections)

	// s1 -> s2 is served by tram 1 only, s2 -> s1 by bus 52 only
	res = r.FindRoutesByStopIDs(context.Background(), "s1", "s2")
	require.Equal(t, 1, len(res.Connections))
	assert.Equal(t, "r1", res.Connections[0].RouteID)

	res = r.FindRoutesByStopIDs(context.Background(), "s2", "s1")
	require.Equal(t, 1, len(res.Connections))
	assert.Equal(t, "r52", res.Connections[0].RouteID)
}

func TestFindRoutesByStopIDsScenario(t *testing.T) {
	r, server := resolverFixture(t, map[string]map[string][]string{
		"src": {
			"stop_times.txt": {
				"trip_id,stop_id,stop_sequence",
				"T1,A,1",
				"T1,X,2",
				"T1,B,4",
			},
			"trips.txt": {
				"trip_id,route_id,shape_id",
				"T1,R1,S1",
			},
			"routes.txt": {
				"route_id,route_short_name",
				"R1,12",
			},
		},
	}, "src")
	defer server.Close()

	res := r.FindRoutesByStopIDs(context.Background(), "A", "B")
	require.Equal(t, 1, len(res.Connections))
	assert.Equal(t, "12", res.Connections[0].RouteShortName)

	// No shapes.txt, no stops.txt: nothing to draw
	assert.Equal(t, []model.ShapePoint{}, res.Connections[0].ShapePoints)
	assert.Nil(t, res.Connections[0].FromLocation)
	assert.Nil(t, res.Connections[0].Path())

	res = r.FindRoutesByStopIDs(context.Background(), "B", "A")
	assert.Equal(t, []model.RouteConnection{}, res.Connections)
}

func TestFindRoutesByStopIDsWithoutShape(t *testing.T) {
	r, server := resolverFixture(t, map[string]map[string][]string{
		"krakow1": testutil.KrakowFeed(),
	}, "krakow1")
	defer server.Close()

	res := r.FindRoutesByStopIDs(context.Background(), "s2", "s1")
	require.Equal(t, 1, len(res.Connections))

	conn := res.Connections[0]
	assert.Equal(t, "", conn.ShapeID)
	assert.Equal(t, []model.ShapePoint{}, conn.ShapePoints)

	// Degrades to a straight line between the stops
	assert.Equal(t, []model.Location{
		{Lat: 50.0640, Lng: 19.9420},
		{Lat: 50.0660, Lng: 19.9600},
	}, conn.Path())
}

func TestFindRoutesByStopIDsMultiSource(t *testing.T) {
	r, server := resolverFixture(t, map[string]map[string][]string{
		"a": testutil.KrakowFeed(),
		"b": testutil.KrakowFeed(),
	}, "a", "b")
	defer server.Close()

	// Same route id in both sources: reported once per source
	res := r.FindRoutesByStopIDs(context.Background(), "s1", "s3")
	require.Equal(t, 2, len(res.Connections))
	assert.Equal(t, "a", res.Connections[0].SourceID)
	assert.Equal(t, "b", res.Connections[1].SourceID)
	assert.Equal(t, "r1", res.Connections[0].RouteID)
	assert.Equal(t, "r1", res.Connections[1].RouteID)
}

func TestFindRoutesByStopIDsFailingSource(t *testing.T) {
	r, server := resolverFixture(t, map[string]map[string][]string{
		"a": testutil.KrakowFeed(),
		"c": testutil.KrakowFeed(),
	}, "a", "b", "c")
	defer server.Close()
	server.SetStatus("/b.zip", http.StatusInternalServerError)

	res := r.FindRoutesByStopIDs(context.Background(), "s1", "s3")
	require.Equal(t, 2, len(res.Connections))
	assert.Equal(t, "a", res.Connections[0].SourceID)
	assert.Equal(t, "c", res.Connections[1].SourceID)

	require.Equal(t, 3, len(res.Sources))
	assert.True(t, res.Sources[0].OK)
	assert.False(t, res.Sources[1].OK)
	assert.Equal(t, "b", res.Sources[1].SourceID)
	assert.NotEmpty(t, res.Sources[1].Error)
	assert.True(t, res.Sources[2].OK)
}

func TestFindRoutesByStopIDsAllSourcesFail(t *testing.T) {
	r, server := resolverFixture(t, nil, "a", "b")
	defer server.Close()

	res := r.FindRoutesByStopIDs(context.Background(), "s1", "s3")
	assert.Equal(t, []model.RouteConnection{}, res.Connections)
	assert.Equal(t, 2, len(res.Sources))
	assert.False(t, res.Sources[0].OK)
	assert.False(t, res.Sources[1].OK)
}

func TestFindRoutesByStopIDsCapsTripsPerSource(t *testing.T) {
	stopTimes := []string{"trip_id,stop_id,stop_sequence"}
	trips := []string{"trip_id,route_id"}
	routes := []string{"route_id,route_short_name"}
	for i := 1; i <= 5; i++ {
		stopTimes = append(stopTimes,
			fmt.Sprintf("t%d,A,1", i),
			fmt.Sprintf("t%d,B,2", i),
		)
		trips = append(trips, fmt.Sprintf("t%d,r%d", i, i))
		routes = append(routes, fmt.Sprintf("r%d,%d", i, i))
	}

	r, server := resolverFixture(t, map[string]map[string][]string{
		"src": {
			"stop_times.txt": stopTimes,
			"trips.txt":      trips,
			"routes.txt":     routes,
		},
	}, "src")
	defer server.Close()

	res := r.FindRoutesByStopIDs(context.Background(), "A", "B")
	require.Equal(t, MaxTripsPerSource, len(res.Connections))
	assert.Equal(t, "r1", res.Connections[0].RouteID)
	assert.Equal(t, "r2", res.Connections[1].RouteID)
	assert.Equal(t, "r3", res.Connections[2].RouteID)
}

func TestFindRoutesByStopIDsDedupesRoutes(t *testing.T) {
	r, server := resolverFixture(t, map[string]map[string][]string{
		"src": {
			"stop_times.txt": {
				"trip_id,stop_id,stop_sequence",
				"t1,A,1",
				"t1,B,2",
				"t2,A,1",
				"t2,B,2",
				"t3,A,1",
				"t3,B,2",
			},
			"trips.txt": {
				"trip_id,route_id,trip_headsign",
				"t1,r1,First",
				"t2,r1,Second",
				"t3,r2,Third",
			},
			"routes.txt": {
				"route_id,route_short_name,route_long_name",
				"r1,1,Route One",
				"r2,2,Route Two",
			},
		},
	}, "src")
	defer server.Close()

	res := r.FindRoutesByStopIDs(context.Background(), "A", "B")
	require.Equal(t, 2, len(res.Connections))
	assert.Equal(t, "t1", res.Connections[0].TripID)
	assert.Equal(t, "First", res.Connections[0].Headsign)
	assert.Equal(t, "t3", res.Connections[1].TripID)
}

func TestFindRoutesByStopIDsHeadsignFallback(t *testing.T) {
	r, server := resolverFixture(t, map[string]map[string][]string{
		"src": {
			"stop_times.txt": {
				"trip_id,stop_id,stop_sequence",
				"t1,A,1",
				"t1,B,2",
			},
			"trips.txt": {
				"trip_id,route_id",
				"t1,r1",
			},
			"routes.txt": {
				"route_id,route_short_name,route_long_name",
				"r1,1,Route One",
			},
		},
	}, "src")
	defer server.Close()

	res := r.FindRoutesByStopIDs(context.Background(), "A", "B")
	require.Equal(t, 1, len(res.Connections))
	assert.Equal(t, "Route One", res.Connections[0].Headsign)
}

func TestFindRoutesByStopNames(t *testing.T) {
	other := map[string][]string{
		"stops.txt": {
			"stop_id,stop_name,stop_lat,stop_lon",
			"x1,Dworzec Główny,50.067,19.945",
		},
	}

	r, server := resolverFixture(t, map[string]map[string][]string{
		"a": other,
		"b": testutil.KrakowFeed(),
		"c": testutil.KrakowFeed(),
	}, "a", "b", "c")
	defer server.Close()

	res := r.FindRoutesByStopNames(context.Background(), "rondo mogilskie", "SALWATOR")
	require.Equal(t, 1, len(res.Connections))
	assert.Equal(t, "b", res.Connections[0].SourceID)
	assert.Equal(t, "r1", res.Connections[0].RouteID)
	assert.Equal(t, "s1", res.Connections[0].FromStopID)
	assert.Equal(t, "s3", res.Connections[0].ToStopID)

	// Source a matched nothing, c was never consulted
	assert.Equal(t, []model.SourceReport{
		{SourceID: "a", OK: true},
		{SourceID: "b", OK: true, Count: 1},
	}, res.Sources)

	// nor downloaded
	assert.Equal(t, 1, server.RequestsFor("/a.zip"))
	assert.Equal(t, 1, server.RequestsFor("/b.zip"))
	assert.Equal(t, 0, server.RequestsFor("/c.zip"))
}

func TestFindRoutesByStopNamesGroups(t *testing.T) {
	r, server := resolverFixture(t, map[string]map[string][]string{
		"src": {
			"stops.txt": {
				"stop_id,stop_name,stop_lat,stop_lon",
				"a1,Rynek Główny,50.061,19.937",
				"a2,Rynek Główny,50.062,19.938",
				"b1,Nowy Kleparz,50.073,19.935",
			},
			"stop_times.txt": {
				"trip_id,stop_id,stop_sequence",
				"t1,b1,1",
				"t1,a1,2",
				"t2,a2,1",
				"t2,b1,2",
			},
			"trips.txt": {
				"trip_id,route_id",
				"t1,r1",
				"t2,r2",
			},
			"routes.txt": {
				"route_id,route_short_name",
				"r1,1",
				"r2,2",
			},
		},
	}, "src")
	defer server.Close()

	// Any platform of the first group before any of the second
	res := r.FindRoutesByStopNames(context.Background(), "Rynek Główny", "Nowy Kleparz")
	require.Equal(t, 1, len(res.Connections))
	assert.Equal(t, "r2", res.Connections[0].RouteID)
	assert.Equal(t, "a2", res.Connections[0].FromStopID)

	res = r.FindRoutesByStopNames(context.Background(), "Nowy Kleparz", "Rynek Główny")
	require.Equal(t, 1, len(res.Connections))
	assert.Equal(t, "r1", res.Connections[0].RouteID)

	res = r.FindRoutesByStopNames(context.Background(), "Nowy Kleparz", "Wawel")
	assert.Equal(t, []model.RouteConnection{}, res.Connections)
}

func TestFindRoutesModes(t *testing.T) {
	r, server := resolverFixture(t, map[string]map[string][]string{
		"krakow1": testutil.KrakowFeed(),
	}, "krakow1")
	defer server.Close()

	ctx := context.Background()

	res, err := r.FindRoutes(ctx, "s1", "s3", ModeID)
	require.NoError(t, err)
	assert.Equal(t, 1, len(res.Connections))

	res, err = r.FindRoutes(ctx, "Rondo Mogilskie", "Salwator", ModeID)
	require.NoError(t, err)
	assert.Equal(t, 0, len(res.Connections))

	res, err = r.FindRoutes(ctx, "Rondo Mogilskie", "Salwator", ModeName)
	require.NoError(t, err)
	assert.Equal(t, 1, len(res.Connections))

	// Auto falls back to names when ids find nothing
	res, err = r.FindRoutes(ctx, "Rondo Mogilskie", "Salwator", ModeAuto)
	require.NoError(t, err)
	assert.Equal(t, 1, len(res.Connections))

	res, err = r.FindRoutes(ctx, "s1", "s3", "")
	require.NoError(t, err)
	assert.Equal(t, 1, len(res.Connections))

	_, err = r.FindRoutes(ctx, "s1", "s3", "bogus")
	assert.Error(t, err)
}
