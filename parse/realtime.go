package parse

import (
	"fmt"

	gtfsproto "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/google/uuid"
	proto "google.golang.org/protobuf/proto"

	"tripplanner.dev/gtfs/model"
)

// Vehicle positions decoded from a GTFS Realtime feed.
type VehicleFeed struct {
	Timestamp uint64
	Vehicles  []model.Vehicle

	// Entities carrying a vehicle but no usable position.
	NumWithoutPosition int
}

// Decodes the VehiclePosition entities of a GTFS Realtime feed.
//
// Entities without a position, or with a zero latitude or longitude,
// are skipped. Vehicles lacking a vehicle descriptor ID are given a
// generated one. All vehicles are tagged with sourceID.
func ParseVehiclePositions(feed []byte, sourceID string) (*VehicleFeed, error) {
	f := &gtfsproto.FeedMessage{}
	err := proto.Unmarshal(feed, f)
	if err != nil {
		return nil, fmt.Errorf("unmarshaling protobuf: %w", err)
	}

	vf := &VehicleFeed{
		Timestamp: f.GetHeader().GetTimestamp(),
		Vehicles:  []model.Vehicle{},
	}

	for _, entity := range f.GetEntity() {
		vp := entity.GetVehicle()
		if vp == nil {
			continue
		}

		pos := vp.GetPosition()
		if pos == nil || pos.GetLatitude() == 0 || pos.GetLongitude() == 0 {
			vf.NumWithoutPosition++
			continue
		}

		id := vp.GetVehicle().GetId()
		if id == "" {
			id = "vehicle-" + uuid.NewString()
		}

		vf.Vehicles = append(vf.Vehicles, model.Vehicle{
			ID:        id,
			Label:     vp.GetVehicle().GetLabel(),
			RouteID:   vp.GetTrip().GetRouteId(),
			TripID:    vp.GetTrip().GetTripId(),
			Lat:       float64(pos.GetLatitude()),
			Lng:       float64(pos.GetLongitude()),
			Bearing:   float64(pos.GetBearing()),
			Speed:     float64(pos.GetSpeed()),
			Timestamp: vp.GetTimestamp(),
			SourceID:  sourceID,
		})
	}

	return vf, nil
}
