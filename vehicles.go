package gtfs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tripplanner.dev/gtfs/downloader"
	"tripplanner.dev/gtfs/model"
	"tripplanner.dev/gtfs/parse"
)

const (
	DefaultRealtimeURL     = "https://gtfs.ztp.krakow.pl/VehiclePositions.pb"
	DefaultRealtimeTimeout = 30 * time.Second
	DefaultRealtimeMaxSize = 1 << 20 // 1 MB
)

// Fetches live vehicle positions from a GTFS Realtime endpoint. Never
// caches.
type VehicleFetcher struct {
	URL      string
	Headers  map[string]string
	Timeout  time.Duration
	MaxSize  int
	SourceID string

	Downloader downloader.Downloader
	Logger     *slog.Logger
}

func NewVehicleFetcher(url string, headers map[string]string) *VehicleFetcher {
	return &VehicleFetcher{
		URL:        url,
		Headers:    headers,
		Timeout:    DefaultRealtimeTimeout,
		MaxSize:    DefaultRealtimeMaxSize,
		Downloader: downloader.NewMemoryDownloader(),
		Logger:     slog.Default(),
	}
}

// Downloads and decodes the feed. Upstream non-2xx responses are
// returned as *downloader.StatusError.
func (f *VehicleFetcher) FetchVehicles(ctx context.Context) (*parse.VehicleFeed, error) {
	buf, err := f.Downloader.Get(ctx, f.URL, f.Headers, downloader.GetOptions{
		Timeout: f.Timeout,
		MaxSize: f.MaxSize,
	})
	if err != nil {
		f.Logger.Error("fetching vehicle positions", "url", f.URL, "op", OpDownload, "err", err)
		return nil, fmt.Errorf("downloading vehicle positions: %w", err)
	}

	feed, err := parse.ParseVehiclePositions(buf, f.SourceID)
	if err != nil {
		f.Logger.Error("decoding vehicle positions", "url", f.URL, "op", OpDecode, "err", err)
		return nil, fmt.Errorf("decoding vehicle positions: %w", err)
	}

	f.Logger.Debug("vehicle positions fetched", "vehicles", len(feed.Vehicles), "without_position", feed.NumWithoutPosition)

	return feed, nil
}

// Vehicles whose trip or route matches any of the connections. A
// vehicle's route matches only connections from the same source,
// unless the vehicle carries no source.
func VehiclesOnRoutes(vehicles []model.Vehicle, connections []model.RouteConnection) []model.Vehicle {
	trips := map[string]bool{}
	routes := map[string]bool{}
	for _, c := range connections {
		trips[c.TripID] = true
		routes[c.SourceID+"\x00"+c.RouteID] = true
		routes["\x00"+c.RouteID] = true
	}

	matched := []model.Vehicle{}
	for _, v := range vehicles {
		switch {
		case v.TripID != "" && trips[v.TripID]:
			matched = append(matched, v)
		case v.RouteID != "" && routes[v.SourceID+"\x00"+v.RouteID]:
			matched = append(matched, v)
		}
	}

	return matched
}
