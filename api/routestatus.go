package api

import (
	"net/http"

	"tripplanner.dev/gtfs"
	"tripplanner.dev/gtfs/model"
)

type RouteStatusResponse struct {
	Success    bool                    `json:"success"`
	From       string                  `json:"from"`
	To         string                  `json:"to"`
	Routes     []model.RouteConnection `json:"routes"`
	Vehicles   []model.Vehicle         `json:"vehicles"`
	Collisions []model.Collision       `json:"collisions"`
	Sources    []model.SourceReport    `json:"sources"`
}

// GET /routeStatus?from=&to=&mode=
//
// Resolves connections between two stops, then reports the live
// vehicles on them and the delay reports lying along their paths.
// Vehicle and delay lookups are best effort.
func (s *Server) handleRouteStatus(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from := q.Get("from")
	to := q.Get("to")
	if from == "" || to == "" {
		writeError(w, http.StatusBadRequest, "Missing required parameters: from and to stop IDs")
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	res, err := s.Resolver.FindRoutes(ctx, from, to, gtfs.Mode(q.Get("mode")))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	vehicles := []model.Vehicle{}
	feed, err := s.Vehicles.FetchVehicles(ctx)
	if err != nil {
		s.Logger.Warn("route status without vehicles", "op", "fetchVehicles", "err", err)
	} else {
		vehicles = gtfs.VehiclesOnRoutes(feed.Vehicles, res.Connections)
	}

	collisions := []model.Collision{}
	delays, err := s.Delays.List(ctx)
	if err != nil {
		s.Logger.Warn("route status without delays", "op", "listDelays", "err", err)
	} else {
		collisions = gtfs.CheckCollisions(delays, res.Connections)
	}

	writeJSON(w, http.StatusOK, RouteStatusResponse{
		Success:    true,
		From:       from,
		To:         to,
		Routes:     res.Connections,
		Vehicles:   vehicles,
		Collisions: collisions,
		Sources:    res.Sources,
	})
}
