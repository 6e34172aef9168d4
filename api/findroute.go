package api

import (
	"net/http"

	"tripplanner.dev/gtfs"
	"tripplanner.dev/gtfs/model"
)

type FindRouteResponse struct {
	Success bool                    `json:"success"`
	Data    []model.RouteConnection `json:"data"`
	Count   int                     `json:"count"`
	From    string                  `json:"from"`
	To      string                  `json:"to"`
	Sources []model.SourceReport    `json:"sources"`
}

// GET /findRoute?from=&to=&mode=
//
// A source that can't be fetched only shows up in Sources. If every
// source failed, the result is still a successful empty list.
func (s *Server) handleFindRoute(w http.ResponseWriter, r *http.Request) {
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

	writeJSON(w, http.StatusOK, FindRouteResponse{
		Success: true,
		Data:    res.Connections,
		Count:   len(res.Connections),
		From:    from,
		To:      to,
		Sources: res.Sources,
	})
}
