package gtfs

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/bluele/gcache"

	"tripplanner.dev/gtfs/model"
	"tripplanner.dev/gtfs/parse"
)

const (
	DefaultMapDataTTL = 5 * time.Minute

	unnamedStop  = "Unnamed Stop"
	unnamedRoute = "Unnamed Route"
)

// Anything able to produce a live vehicle snapshot.
type VehicleSource interface {
	FetchVehicles(ctx context.Context) (*parse.VehicleFeed, error)
}

type AssemblerConfig struct {
	// How long an assembled result is reused. Vehicles are never
	// cached.
	TTL time.Duration

	// Sources used when none are requested.
	DefaultSources []string

	// Defaults to the wall clock.
	Clock gcache.Clock
}

// Builds map-ready stops, routes and trips from one or more sources'
// static tables, merged with a fresh vehicle snapshot on every call.
type Assembler struct {
	Static   *StaticCache
	Vehicles VehicleSource
	Logger   *slog.Logger

	defaultSources []string
	clock          gcache.Clock
	results        gcache.Cache
}

func NewAssembler(static *StaticCache, vehicles VehicleSource, cfg AssemblerConfig) *Assembler {
	if cfg.TTL == 0 {
		cfg.TTL = DefaultMapDataTTL
	}
	if cfg.Clock == nil {
		cfg.Clock = gcache.NewRealClock()
	}
	if ids := static.Sources().IDs(); len(cfg.DefaultSources) == 0 && len(ids) > 0 {
		cfg.DefaultSources = ids[:1]
	}

	a := &Assembler{
		Static:         static,
		Vehicles:       vehicles,
		Logger:         slog.Default(),
		defaultSources: cfg.DefaultSources,
		clock:          cfg.Clock,
	}

	// The loader runs once per key at a time, so concurrent misses
	// share a single assembly.
	a.results = gcache.New(32).
		LRU().
		Expiration(cfg.TTL).
		Clock(cfg.Clock).
		LoaderFunc(func(key interface{}) (interface{}, error) {
			return a.assemble(context.Background(), strings.Split(key.(string), ","))
		}).
		Build()

	return a
}

// Returns assembled map data for the given sources, or the default
// sources if none are given.
//
// A source that fails to load contributes nothing and is reported in
// Sources. Stops, routes and trips may be up to TTL old. Vehicles are
// always fetched fresh, and a failed vehicle fetch yields no
// vehicles.
func (a *Assembler) GetMapData(ctx context.Context, sourceIDs []string) (*model.MapData, error) {
	if len(sourceIDs) == 0 {
		sourceIDs = a.defaultSources
	}
	for _, id := range sourceIDs {
		if _, err := a.Static.Sources().Get(id); err != nil {
			return nil, err
		}
	}

	cached, err := a.results.Get(strings.Join(sourceIDs, ","))
	if err != nil {
		return nil, fmt.Errorf("assembling map data: %w", err)
	}

	// Shallow copy, so the cached result is never touched.
	data := *cached.(*model.MapData)
	data.Vehicles = a.fetchVehicles(ctx)
	data.Stats.TotalVehicles = len(data.Vehicles)

	return &data, nil
}

// Drops all assembled results.
func (a *Assembler) Clear() {
	a.results.Purge()
}

func (a *Assembler) fetchVehicles(ctx context.Context) []model.Vehicle {
	if a.Vehicles == nil {
		return []model.Vehicle{}
	}

	feed, err := a.Vehicles.FetchVehicles(ctx)
	if err != nil {
		a.Logger.Warn("no vehicles for map data", "op", "fetchVehicles", "err", err)
		return []model.Vehicle{}
	}

	return feed.Vehicles
}

func (a *Assembler) assemble(ctx context.Context, sourceIDs []string) (*model.MapData, error) {
	data := &model.MapData{
		Stops:    []model.MappedStop{},
		Routes:   []model.MappedRoute{},
		Trips:    []model.MappedTrip{},
		Vehicles: []model.Vehicle{},
		Sources:  []model.SourceReport{},
	}

	type loaded struct {
		tables *parse.TableSet
		err    error
	}
	results := make([]chan loaded, len(sourceIDs))
	for i, id := range sourceIDs {
		ch := make(chan loaded, 1)
		results[i] = ch
		go func(id string) {
			tables, err := a.Static.GetData(ctx, id)
			ch <- loaded{tables: tables, err: err}
		}(id)
	}

	for i, id := range sourceIDs {
		res := <-results[i]
		if res.err != nil {
			a.Logger.Warn("skipping source", "source", id, "op", "getMapData", "err", res.err)
			data.Sources = append(data.Sources, failedSource(id, res.err))
			continue
		}

		stops, routes, trips := mapSource(res.tables, id)
		data.Stops = append(data.Stops, stops...)
		data.Routes = append(data.Routes, routes...)
		data.Trips = append(data.Trips, trips...)
		data.Sources = append(data.Sources, model.SourceReport{
			SourceID: id,
			OK:       true,
			Count:    len(stops),
		})
	}

	data.Bounds = boundsOf(data.Stops)
	data.Stats = model.MapStats{
		TotalStops:  len(data.Stops),
		TotalRoutes: len(data.Routes),
		SourceCount: len(sourceIDs),
		LastUpdated: a.clock.Now(),
	}

	a.Logger.Info(
		"map data assembled",
		"sources", strings.Join(sourceIDs, ","),
		"stops", len(data.Stops),
		"routes", len(data.Routes),
		"trips", len(data.Trips),
	)

	return data, nil
}

func namespaced(sourceID string, id string) string {
	return sourceID + "-" + id
}

func prefixColor(color string) string {
	if color == "" {
		return ""
	}
	return "#" + color
}

// Projects one source's tables into mapped entities, with stops and
// routes cross-referenced through stop_times and trips.
func mapSource(ts *parse.TableSet, sourceID string) ([]model.MappedStop, []model.MappedRoute, []model.MappedTrip) {
	stops := []model.MappedStop{}
	stopIndex := map[string]int{}
	for _, row := range ts.Stops() {
		stop, ok := parse.StopFromRow(row)
		if !ok {
			continue
		}
		name := stop.Name
		if name == "" {
			name = unnamedStop
		}
		stopIndex[stop.ID] = len(stops)
		stops = append(stops, model.MappedStop{
			ID:       namespaced(sourceID, stop.ID),
			Name:     name,
			Lat:      stop.Lat,
			Lng:      stop.Lon,
			Code:     stop.Code,
			Zone:     stop.ZoneID,
			Routes:   []string{},
			SourceID: sourceID,
		})
	}

	routes := []model.MappedRoute{}
	routeIndex := map[string]int{}
	for _, row := range ts.Routes() {
		route := parse.RouteFromRow(row)
		longName := route.LongName
		if longName == "" {
			longName = unnamedRoute
		}
		if _, found := routeIndex[route.ID]; found {
			continue
		}
		routeIndex[route.ID] = len(routes)
		routes = append(routes, model.MappedRoute{
			ID:        namespaced(sourceID, route.ID),
			ShortName: route.ShortName,
			LongName:  longName,
			Type:      route.Type,
			Color:     prefixColor(route.Color),
			TextColor: prefixColor(route.TextColor),
			Agency:    route.AgencyID,
			Stops:     []string{},
			SourceID:  sourceID,
		})
	}

	trips := []model.MappedTrip{}
	routeOfTrip := map[string]string{}
	for _, row := range ts.Trips() {
		trip := parse.TripFromRow(row)
		if _, found := routeOfTrip[trip.ID]; !found {
			routeOfTrip[trip.ID] = trip.RouteID
		}
		trips = append(trips, model.MappedTrip{
			ID:        namespaced(sourceID, trip.ID),
			RouteID:   namespaced(sourceID, trip.RouteID),
			ServiceID: trip.ServiceID,
			Headsign:  trip.Headsign,
			Direction: trip.DirectionID,
			BlockID:   trip.BlockID,
			SourceID:  sourceID,
		})
	}

	// Single pass over stop_times, joined to routes via trips.
	routeStops := make([][]int, len(routes))
	seen := make([]map[int]bool, len(routes))
	for _, st := range ts.StopTimes() {
		routeID, found := routeOfTrip[st.String("trip_id")]
		if !found {
			continue
		}
		ri, found := routeIndex[routeID]
		if !found {
			continue
		}
		si, found := stopIndex[st.String("stop_id")]
		if !found {
			continue
		}

		if seen[ri] == nil {
			seen[ri] = map[int]bool{}
		}
		if seen[ri][si] {
			continue
		}
		seen[ri][si] = true
		routeStops[ri] = append(routeStops[ri], si)
	}

	// Stops of each route in order of first visit. Routes of each
	// stop in routes.txt order.
	for ri, stopIdx := range routeStops {
		for _, si := range stopIdx {
			routes[ri].Stops = append(routes[ri].Stops, stops[si].ID)
			stops[si].Routes = append(stops[si].Routes, routes[ri].ID)
		}
	}

	return stops, routes, trips
}

func boundsOf(stops []model.MappedStop) model.Bounds {
	if len(stops) == 0 {
		return model.DefaultBounds
	}

	b := model.Bounds{
		North: math.Inf(-1),
		South: math.Inf(1),
		East:  math.Inf(-1),
		West:  math.Inf(1),
	}
	for _, s := range stops {
		b.North = math.Max(b.North, s.Lat)
		b.South = math.Min(b.South, s.Lat)
		b.East = math.Max(b.East, s.Lng)
		b.West = math.Min(b.West, s.Lng)
	}
	return b
}
