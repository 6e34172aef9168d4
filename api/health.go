package api

import (
	"net/http"
	"time"

	"tripplanner.dev/gtfs/model"
)

type HealthResponse struct {
	Status    string             `json:"status"`
	Timestamp time.Time          `json:"timestamp"`
	Sources   int                `json:"sources"`
	Cache     model.CacheSummary `json:"cache"`
}

// GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: s.TimeNow().UTC(),
		Sources:   len(s.Static.Sources().IDs()),
		Cache:     s.Static.CacheInfoAll(),
	})
}
