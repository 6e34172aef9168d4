package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"tripplanner.dev/gtfs/model"
)

// Parses "north,south,east,west".
func parseBounds(s string) (model.Bounds, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return model.Bounds{}, fmt.Errorf("expected north,south,east,west")
	}

	values := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return model.Bounds{}, fmt.Errorf("parsing %q: %w", p, err)
		}
		values[i] = v
	}

	return model.Bounds{North: values[0], South: values[1], East: values[2], West: values[3]}, nil
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// GET /mapData?sources=&filter=&bounds=&routeType=
func (s *Server) handleMapData(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var bounds *model.Bounds
	if b := q.Get("bounds"); b != "" {
		parsed, err := parseBounds(b)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid bounds: "+err.Error())
			return
		}
		bounds = &parsed
	}

	var routeType *model.RouteType
	if rt := q.Get("routeType"); rt != "" {
		n, err := strconv.Atoi(rt)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid routeType: "+rt)
			return
		}
		t := model.RouteType(n)
		routeType = &t
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	data, err := s.Assembler.GetMapData(ctx, splitList(q.Get("sources")))
	if err != nil {
		s.Logger.Error("serving map data", "op", "getMapData", "err", err)
		writeError(w, upstreamStatus(err), "Failed to process map data: "+err.Error())
		return
	}

	switch q.Get("filter") {
	case "stops":
		stops := data.Stops
		if bounds != nil {
			stops = data.StopsInBounds(*bounds)
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"stops":  stops,
			"bounds": data.Bounds,
			"stats":  map[string]int{"totalStops": len(data.Stops)},
		})

	case "routes":
		routes := data.Routes
		if routeType != nil {
			routes = data.RoutesByType(*routeType)
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"routes": routes,
			"bounds": data.Bounds,
			"stats":  map[string]int{"totalRoutes": len(data.Routes)},
		})

	case "vehicles":
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"vehicles": data.Vehicles,
			"bounds":   data.Bounds,
			"stats":    map[string]int{"totalVehicles": len(data.Vehicles)},
		})

	case "summary":
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"stats":           data.Stats,
			"bounds":          data.Bounds,
			"routeTypes":      data.RouteTypeSummary(),
			"sourceBreakdown": data.SourceBreakdown(),
			"sources":         data.Sources,
		})

	default:
		writeJSON(w, http.StatusOK, data)
	}
}
