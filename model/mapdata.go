package model

import (
	"sort"
	"time"
)

type MappedStop struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Lat      float64  `json:"lat"`
	Lng      float64  `json:"lng"`
	Code     string   `json:"code,omitempty"`
	Zone     string   `json:"zone,omitempty"`
	Routes   []string `json:"routes"`
	SourceID string   `json:"sourceId"`
}

type MappedRoute struct {
	ID        string    `json:"id"`
	ShortName string    `json:"shortName"`
	LongName  string    `json:"longName"`
	Type      RouteType `json:"type"`
	Color     string    `json:"color,omitempty"`
	TextColor string    `json:"textColor,omitempty"`
	Agency    string    `json:"agency,omitempty"`
	Stops     []string  `json:"stops"`
	SourceID  string    `json:"sourceId"`
}

type MappedTrip struct {
	ID        string `json:"id"`
	RouteID   string `json:"routeId"`
	ServiceID string `json:"serviceId"`
	Headsign  string `json:"headsign,omitempty"`
	Direction *int   `json:"direction,omitempty"`
	BlockID   string `json:"blockId,omitempty"`
	SourceID  string `json:"sourceId"`
}

type Bounds struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// Viewport used when no stops could be placed.
var DefaultBounds = Bounds{North: 50.1, South: 50.0, East: 20.1, West: 19.9}

func (b Bounds) Contains(lat, lng float64) bool {
	return lat >= b.South && lat <= b.North && lng >= b.West && lng <= b.East
}

type MapStats struct {
	TotalStops    int       `json:"totalStops"`
	TotalRoutes   int       `json:"totalRoutes"`
	TotalVehicles int       `json:"totalVehicles"`
	SourceCount   int       `json:"sourceCount"`
	LastUpdated   time.Time `json:"lastUpdated"`
}

type MapData struct {
	Stops    []MappedStop   `json:"stops"`
	Routes   []MappedRoute  `json:"routes"`
	Trips    []MappedTrip   `json:"trips"`
	Vehicles []Vehicle      `json:"vehicles"`
	Bounds   Bounds         `json:"bounds"`
	Stats    MapStats       `json:"stats"`
	Sources  []SourceReport `json:"sources"`
}

func (m *MapData) StopsInBounds(b Bounds) []MappedStop {
	stops := []MappedStop{}
	for _, stop := range m.Stops {
		if b.Contains(stop.Lat, stop.Lng) {
			stops = append(stops, stop)
		}
	}
	return stops
}

func (m *MapData) RoutesByType(t RouteType) []MappedRoute {
	routes := []MappedRoute{}
	for _, route := range m.Routes {
		if route.Type == t {
			routes = append(routes, route)
		}
	}
	return routes
}

func (m *MapData) StopsByRoute(routeID string) []MappedStop {
	var route *MappedRoute
	for i := range m.Routes {
		if m.Routes[i].ID == routeID {
			route = &m.Routes[i]
			break
		}
	}
	if route == nil {
		return []MappedStop{}
	}

	onRoute := map[string]bool{}
	for _, stopID := range route.Stops {
		onRoute[stopID] = true
	}

	stops := []MappedStop{}
	for _, stop := range m.Stops {
		if onRoute[stop.ID] {
			stops = append(stops, stop)
		}
	}
	return stops
}

func (m *MapData) VehiclesByRoute(routeID string) []Vehicle {
	vehicles := []Vehicle{}
	for _, v := range m.Vehicles {
		if v.RouteID == routeID {
			vehicles = append(vehicles, v)
		}
	}
	return vehicles
}

type RouteTypeCount struct {
	Type     RouteType `json:"type"`
	TypeName string    `json:"typeName"`
	Count    int       `json:"count"`
}

type SourceBreakdown struct {
	SourceID string `json:"sourceId"`
	Stops    int    `json:"stops"`
	Routes   int    `json:"routes"`
	Vehicles int    `json:"vehicles"`
}

// Number of routes per route type, ordered by type.
func (m *MapData) RouteTypeSummary() []RouteTypeCount {
	counts := map[RouteType]int{}
	for _, route := range m.Routes {
		counts[route.Type]++
	}

	summary := []RouteTypeCount{}
	for t, n := range counts {
		summary = append(summary, RouteTypeCount{Type: t, TypeName: t.Name(), Count: n})
	}
	sort.Slice(summary, func(i, j int) bool {
		return summary[i].Type < summary[j].Type
	})
	return summary
}

// Number of stops, routes and vehicles per source, in order of first
// appearance.
func (m *MapData) SourceBreakdown() []SourceBreakdown {
	order := []string{}
	bySource := map[string]*SourceBreakdown{}
	get := func(id string) *SourceBreakdown {
		b, found := bySource[id]
		if !found {
			b = &SourceBreakdown{SourceID: id}
			bySource[id] = b
			order = append(order, id)
		}
		return b
	}

	for _, stop := range m.Stops {
		get(stop.SourceID).Stops++
	}
	for _, route := range m.Routes {
		get(route.SourceID).Routes++
	}
	for _, v := range m.Vehicles {
		get(v.SourceID).Vehicles++
	}

	breakdown := make([]SourceBreakdown, 0, len(order))
	for _, id := range order {
		breakdown = append(breakdown, *bySource[id])
	}
	return breakdown
}
