package geo

import (
	"math"
)

// A WGS84 coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Great circle distance between two coordinates, in kilometers.
func HaversineDistance(aLat, aLon, bLat, bLon float64) float64 {
	const earthRadiusKm = 6371

	aLatRad := aLat * math.Pi / 180
	aLonRad := aLon * math.Pi / 180
	bLatRad := bLat * math.Pi / 180
	bLonRad := bLon * math.Pi / 180
	deltaLat := aLatRad - bLatRad
	deltaLon := aLonRad - bLonRad

	a := math.Cos(aLatRad)*math.Cos(bLatRad)*math.Pow(math.Sin(deltaLon/2), 2) + math.Pow(math.Sin(deltaLat/2), 2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return c * earthRadiusKm
}

// Distance in meters between two points.
func Meters(a, b Point) float64 {
	return HaversineDistance(a.Lat, a.Lng, b.Lat, b.Lng) * 1000
}

// Projects p onto the segment a-b, treating lat/lng as a flat plane.
//
// Returns the closest point on the segment and its distance from p,
// in degrees. A degenerate segment (a == b) projects onto a.
func ProjectOntoSegment(p, a, b Point) (Point, float64) {
	dLat := b.Lat - a.Lat
	dLng := b.Lng - a.Lng

	param := -1.0
	lenSq := dLat*dLat + dLng*dLng
	if lenSq != 0 {
		param = ((p.Lat-a.Lat)*dLat + (p.Lng-a.Lng)*dLng) / lenSq
	}

	var closest Point
	switch {
	case param < 0:
		closest = a
	case param > 1:
		closest = b
	default:
		closest = Point{Lat: a.Lat + param*dLat, Lng: a.Lng + param*dLng}
	}

	return closest, math.Hypot(p.Lat-closest.Lat, p.Lng-closest.Lng)
}

// Flat distance from p to the segment a-b, in degrees.
func DistanceToSegment(p, a, b Point) float64 {
	_, d := ProjectOntoSegment(p, a, b)
	return d
}
