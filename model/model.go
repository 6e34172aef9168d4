package model

import (
	"fmt"
	"time"

	"tripplanner.dev/gtfs/geo"
)

// Holds all external facing types and constants.

type LocationType int

const (
	LocationTypeStop LocationType = iota
	LocationTypeStation
	LocationTypeEntranceExit
	LocationTypeGenericNode
	LocationTypeBoardingArea
)

type RouteType int

const (
	RouteTypeTram       RouteType = 0
	RouteTypeSubway     RouteType = 1
	RouteTypeRail       RouteType = 2
	RouteTypeBus        RouteType = 3
	RouteTypeFerry      RouteType = 4
	RouteTypeCable      RouteType = 5
	RouteTypeAerial     RouteType = 6
	RouteTypeFunicular  RouteType = 7
	RouteTypeTrolleybus RouteType = 11
	RouteTypeMonorail   RouteType = 12
)

var routeTypeNames = map[RouteType]string{
	RouteTypeTram:       "Tram",
	RouteTypeSubway:     "Subway",
	RouteTypeRail:       "Rail",
	RouteTypeBus:        "Bus",
	RouteTypeFerry:      "Ferry",
	RouteTypeCable:      "Cable Tram",
	RouteTypeAerial:     "Aerial Lift",
	RouteTypeFunicular:  "Funicular",
	RouteTypeTrolleybus: "Trolleybus",
	RouteTypeMonorail:   "Monorail",
}

func (t RouteType) Name() string {
	if name, found := routeTypeNames[t]; found {
		return name
	}
	return fmt.Sprintf("Type %d", int(t))
}

type Location = geo.Point

// An upstream provider of a static GTFS archive.
type Source struct {
	ID          string `json:"id" yaml:"id" validate:"required"`
	Name        string `json:"name" yaml:"name" validate:"required"`
	URL         string `json:"url" yaml:"url" validate:"required,url"`
	Description string `json:"description,omitempty" yaml:"description"`
}

type Agency struct {
	ID       string
	Name     string
	URL      string
	Timezone string
}

type Calendar struct {
	ServiceID string
	StartDate string
	EndDate   string
	Weekday   int8
}

type CalendarDate struct {
	ServiceID     string
	Date          string
	ExceptionType int8
}

type Stop struct {
	ID            string
	Code          string
	Name          string
	Desc          string
	Lat           float64
	Lon           float64
	ZoneID        string
	LocationType  LocationType
	ParentStation string
	PlatformCode  string
}

type Trip struct {
	ID          string
	RouteID     string
	ServiceID   string
	ShapeID     string
	BlockID     string
	Headsign    string
	ShortName   string
	DirectionID *int
}

type Route struct {
	ID        string
	AgencyID  string
	ShortName string
	LongName  string
	Desc      string
	Type      RouteType
	URL       string
	Color     string
	TextColor string
}

type StopTime struct {
	TripID       string
	StopID       string
	Headsign     string
	StopSequence int
	Arrival      string
	Departure    string
}

// One point of a shape polyline.
type ShapePoint struct {
	ShapeID  string  `json:"shapeId" csv:"shape_id"`
	Lat      float64 `json:"lat" csv:"shape_pt_lat"`
	Lng      float64 `json:"lng" csv:"shape_pt_lon"`
	Sequence int     `json:"sequence" csv:"shape_pt_sequence"`
}

// A single transit line serving two stops in order, with the
// geographic path of the trip that proved it.
type RouteConnection struct {
	RouteID        string       `json:"routeId"`
	RouteShortName string       `json:"routeShortName"`
	RouteLongName  string       `json:"routeLongName"`
	SourceID       string       `json:"source"`
	TripID         string       `json:"tripId"`
	ShapeID        string       `json:"shapeId"`
	ShapePoints    []ShapePoint `json:"shapePoints"`
	Headsign       string       `json:"headsign"`
	FromStopID     string       `json:"fromStopId"`
	ToStopID       string       `json:"toStopId"`
	FromLocation   *Location    `json:"fromLocation,omitempty"`
	ToLocation     *Location    `json:"toLocation,omitempty"`
}

// Polyline for the connection. Falls back to a straight line between
// the endpoint stops when the trip has fewer than two shape points.
func (rc RouteConnection) Path() []Location {
	if len(rc.ShapePoints) > 1 {
		path := make([]Location, 0, len(rc.ShapePoints))
		for _, p := range rc.ShapePoints {
			path = append(path, Location{Lat: p.Lat, Lng: p.Lng})
		}
		return path
	}
	if rc.FromLocation != nil && rc.ToLocation != nil {
		return []Location{*rc.FromLocation, *rc.ToLocation}
	}
	return nil
}

// A live vehicle position as reported by the realtime feed.
type Vehicle struct {
	ID        string  `json:"id"`
	Label     string  `json:"label,omitempty"`
	RouteID   string  `json:"routeId,omitempty"`
	TripID    string  `json:"tripId,omitempty"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Bearing   float64 `json:"bearing,omitempty"`
	Speed     float64 `json:"speed,omitempty"`
	Timestamp uint64  `json:"timestamp,omitempty"`
	SourceID  string  `json:"sourceId"`
}

// A user submitted report of a delay or disruption.
type DelayReport struct {
	ID            string    `json:"id"`
	Cause         string    `json:"cause"`
	VehicleNumber string    `json:"vehicleNumber"`
	Location      Location  `json:"location"`
	Timestamp     time.Time `json:"timestamp"`
}

// A delay report lying close to the path of a route connection.
type Collision struct {
	Delay          DelayReport     `json:"delay"`
	Route          RouteConnection `json:"route"`
	Distance       float64         `json:"distance"`
	DistanceMeters float64         `json:"distanceMeters"`
}

// Outcome of one source's contribution to a multi-source operation.
type SourceReport struct {
	SourceID string `json:"sourceId"`
	OK       bool   `json:"ok"`
	Error    string `json:"error,omitempty"`
	Count    int    `json:"count"`
}

// Cache status for a single source.
type CacheStatus struct {
	SourceID    string     `json:"sourceId"`
	SourceName  string     `json:"sourceName,omitempty"`
	Cached      bool       `json:"cached"`
	LastFetched *time.Time `json:"lastFetched,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	IsExpired   bool       `json:"isExpired"`
}

type CacheSummary struct {
	Cached       bool          `json:"cached"`
	Sources      []CacheStatus `json:"sources"`
	TotalSources int           `json:"totalSources"`
}

// Key facts about a decoded static archive.
type FeedSummary struct {
	Counts            map[string]int `json:"counts"`
	Agencies          []string       `json:"agencies"`
	Timezone          string         `json:"timezone,omitempty"`
	CalendarStartDate string         `json:"calendarStartDate,omitempty"`
	CalendarEndDate   string         `json:"calendarEndDate,omitempty"`
}
