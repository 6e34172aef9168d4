package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"tripplanner.dev/gtfs"
	"tripplanner.dev/gtfs/downloader"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// Status to answer with when an upstream fetch failed. Upstream
// non-2xx statuses are passed through.
func upstreamStatus(err error) int {
	var statusErr *downloader.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	if errors.Is(err, gtfs.ErrUnknownSource) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
