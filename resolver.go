package gtfs

import (
	"context"
	"fmt"
	"log/slog"

	"tripplanner.dev/gtfs/model"
	"tripplanner.dev/gtfs/parse"
)

// Accepted trips examined per source and query.
const MaxTripsPerSource = 3

type Mode string

const (
	// Treat from/to as stop ids.
	ModeID Mode = "id"
	// Treat from/to as stop names.
	ModeName Mode = "name"
	// Try ids, then names if ids found nothing.
	ModeAuto Mode = "auto"
)

// Resolves direct single-route connections between two stops across
// all registered sources.
type Resolver struct {
	Cache  *StaticCache
	Logger *slog.Logger
}

func NewResolver(cache *StaticCache) *Resolver {
	return &Resolver{
		Cache:  cache,
		Logger: slog.Default(),
	}
}

// Connections found, along with what each visited source
// contributed. A source failure only shows up in Sources.
type Resolution struct {
	Connections []model.RouteConnection `json:"connections"`
	Sources     []model.SourceReport    `json:"sources"`
}

type sourceTables struct {
	tables *parse.TableSet
	err    error
}

// Starts fetching every source concurrently. Results are delivered
// per source, in registry order.
func (r *Resolver) fetchAll(ctx context.Context) ([]string, []chan sourceTables) {
	ids := r.Cache.Sources().IDs()
	results := make([]chan sourceTables, len(ids))

	for i, id := range ids {
		ch := make(chan sourceTables, 1)
		results[i] = ch
		go func(id string) {
			tables, err := r.Cache.GetData(ctx, id)
			ch <- sourceTables{tables: tables, err: err}
		}(id)
	}

	return ids, results
}

// Finds routes with a trip visiting fromStopID before toStopID.
//
// Every source is consulted and results are concatenated in registry
// order. Within a source at most MaxTripsPerSource trips are
// considered and each route is reported once. The same route in two
// sources is reported twice.
func (r *Resolver) FindRoutesByStopIDs(ctx context.Context, fromStopID string, toStopID string) *Resolution {
	res := &Resolution{
		Connections: []model.RouteConnection{},
		Sources:     []model.SourceReport{},
	}

	ids, results := r.fetchAll(ctx)
	for i, id := range ids {
		result := <-results[i]
		if result.err != nil {
			r.Logger.Warn("skipping source", "source", id, "op", "findRoutesByStopIds", "err", result.err)
			res.Sources = append(res.Sources, failedSource(id, result.err))
			continue
		}

		conns := findConnections(result.tables, id, []string{fromStopID}, []string{toStopID})
		res.Connections = append(res.Connections, conns...)
		res.Sources = append(res.Sources, model.SourceReport{SourceID: id, OK: true, Count: len(conns)})
	}

	r.Logger.Debug("resolved stop ids", "from", fromStopID, "to", toStopID, "connections", len(res.Connections))

	return res
}

// Finds a route with a trip visiting a stop named like fromName
// before a stop named like toName.
//
// Sources are fetched and consulted one at a time in registry order,
// and the first connection of the first source yielding any is
// returned. Later sources are neither fetched nor examined.
func (r *Resolver) FindRoutesByStopNames(ctx context.Context, fromName string, toName string) *Resolution {
	res := &Resolution{
		Connections: []model.RouteConnection{},
		Sources:     []model.SourceReport{},
	}

	for _, id := range r.Cache.Sources().IDs() {
		tables, err := r.Cache.GetData(ctx, id)
		if err != nil {
			r.Logger.Warn("skipping source", "source", id, "op", "findRoutesByStopNames", "err", err)
			res.Sources = append(res.Sources, failedSource(id, err))
			continue
		}

		stops := tables.Stops()
		group1 := MatchStops(stops, fromName)
		group2 := MatchStops(stops, toName)
		if len(group1) == 0 || len(group2) == 0 {
			res.Sources = append(res.Sources, model.SourceReport{SourceID: id, OK: true})
			continue
		}

		conns := findConnections(tables, id, group1, group2)
		if len(conns) == 0 {
			res.Sources = append(res.Sources, model.SourceReport{SourceID: id, OK: true})
			continue
		}

		res.Connections = append(res.Connections, conns[0])
		res.Sources = append(res.Sources, model.SourceReport{SourceID: id, OK: true, Count: 1})
		break
	}

	r.Logger.Debug("resolved stop names", "from", fromName, "to", toName, "connections", len(res.Connections))

	return res
}

// Resolves from/to according to mode.
func (r *Resolver) FindRoutes(ctx context.Context, from string, to string, mode Mode) (*Resolution, error) {
	switch mode {
	case ModeID:
		return r.FindRoutesByStopIDs(ctx, from, to), nil
	case ModeName:
		return r.FindRoutesByStopNames(ctx, from, to), nil
	case ModeAuto, "":
		res := r.FindRoutesByStopIDs(ctx, from, to)
		if len(res.Connections) > 0 {
			return res, nil
		}
		return r.FindRoutesByStopNames(ctx, from, to), nil
	}
	return nil, fmt.Errorf("unknown mode %q", mode)
}

type stopVisit struct {
	stopID   string
	sequence int
}

// Connections within one source from any stop in fromStops to any
// stop in toStops.
func findConnections(ts *parse.TableSet, sourceID string, fromStops []string, toStops []string) []model.RouteConnection {
	idx := ts.Index()

	// Visits of the destination stops, by trip.
	arrivals := map[string][]stopVisit{}
	for _, stopID := range toStops {
		for _, row := range idx.StopTimesByStop[stopID] {
			st := parse.StopTimeFromRow(row)
			arrivals[st.TripID] = append(arrivals[st.TripID], stopVisit{
				stopID:   stopID,
				sequence: st.StopSequence,
			})
		}
	}

	type leg struct {
		tripID string
		from   string
		to     string
	}

	accepted := []leg{}
	for _, stopID := range fromStops {
		for _, row := range idx.StopTimesByStop[stopID] {
			if len(accepted) >= MaxTripsPerSource {
				break
			}

			st := parse.StopTimeFromRow(row)
			for _, arrival := range arrivals[st.TripID] {
				if st.StopSequence < arrival.sequence {
					accepted = append(accepted, leg{tripID: st.TripID, from: stopID, to: arrival.stopID})
					break
				}
			}
		}
	}

	conns := []model.RouteConnection{}
	seen := map[string]bool{}
	for _, l := range accepted {
		tripRow, found := idx.TripsByID[l.tripID]
		if !found {
			continue
		}
		trip := parse.TripFromRow(tripRow)

		routeRow, found := idx.RoutesByID[trip.RouteID]
		if !found {
			continue
		}
		route := parse.RouteFromRow(routeRow)

		if seen[route.ID] {
			continue
		}
		seen[route.ID] = true

		points := []model.ShapePoint{}
		if trip.ShapeID != "" {
			points = append(points, idx.Shapes[trip.ShapeID]...)
		}

		headsign := trip.Headsign
		if headsign == "" {
			headsign = route.LongName
		}

		conns = append(conns, model.RouteConnection{
			RouteID:        route.ID,
			RouteShortName: route.ShortName,
			RouteLongName:  route.LongName,
			SourceID:       sourceID,
			TripID:         trip.ID,
			ShapeID:        trip.ShapeID,
			ShapePoints:    points,
			Headsign:       headsign,
			FromStopID:     l.from,
			ToStopID:       l.to,
			FromLocation:   parse.StopLocation(idx.StopsByID[l.from]),
			ToLocation:     parse.StopLocation(idx.StopsByID[l.to]),
		})
	}

	return conns
}
