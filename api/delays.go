package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"tripplanner.dev/gtfs"
	"tripplanner.dev/gtfs/model"
)

var validate = validator.New()

type delayLocation struct {
	Lat *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lng *float64 `json:"lng" validate:"required,gte=-180,lte=180"`
}

type DelayRequest struct {
	Cause         string         `json:"cause" validate:"required"`
	VehicleNumber string         `json:"vehicleNumber"`
	Location      *delayLocation `json:"location" validate:"required"`
}

type DelayResponse struct {
	Success bool              `json:"success"`
	ID      string            `json:"id"`
	Delay   model.DelayReport `json:"delay"`
}

type DelaysResponse struct {
	Delays []model.DelayReport `json:"delays"`
}

// GET /delays
func (s *Server) handleListDelays(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	delays, err := s.Delays.List(ctx)
	if err != nil {
		s.Logger.Error("listing delays", "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to read delay reports")
		return
	}

	writeJSON(w, http.StatusOK, DelaysResponse{Delays: delays})
}

// POST /delays
//
// Any id or timestamp in the body is ignored. Both are assigned on
// receipt.
func (s *Server) handleSubmitDelay(w http.ResponseWriter, r *http.Request) {
	req := DelayRequest{}
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err = validate.Struct(req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid delay report",
			Details: err.Error(),
		})
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	report, err := s.Delays.Submit(ctx, gtfs.DelaySubmission{
		Cause:         req.Cause,
		VehicleNumber: req.VehicleNumber,
		Location:      model.Location{Lat: *req.Location.Lat, Lng: *req.Location.Lng},
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save delay report")
		return
	}

	writeJSON(w, http.StatusOK, DelayResponse{Success: true, ID: report.ID, Delay: report})
}
