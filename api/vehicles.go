package api

import (
	"net/http"

	"tripplanner.dev/gtfs/model"
)

type VehiclePositionsResponse struct {
	VehiclePositions []model.Vehicle `json:"VehiclePositions"`
	Timestamp        uint64          `json:"timestamp,omitempty"`
}

// GET /vehiclePositions
func (s *Server) handleVehiclePositions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	feed, err := s.Vehicles.FetchVehicles(ctx)
	if err != nil {
		s.Logger.Error("serving vehicle positions", "op", "fetchVehicles", "err", err)
		writeError(w, upstreamStatus(err), "Failed to fetch GTFS data")
		return
	}

	writeJSON(w, http.StatusOK, VehiclePositionsResponse{
		VehiclePositions: feed.Vehicles,
		Timestamp:        feed.Timestamp,
	})
}
