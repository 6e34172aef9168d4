package gtfs

import (
	"tripplanner.dev/gtfs/geo"
	"tripplanner.dev/gtfs/model"
)

// Flat-degree distance under which a delay is considered to lie on a
// route. Roughly 300 m at Kraków's latitude.
const CollisionThreshold = 0.003

// Pairs each delay with every route whose path passes within
// CollisionThreshold of it.
//
// A route's path is its shape polyline, or the straight line between
// its endpoint stops when the shape has fewer than two points. The
// first segment within the threshold decides the reported distance.
func CheckCollisions(delays []model.DelayReport, routes []model.RouteConnection) []model.Collision {
	collisions := []model.Collision{}

	paths := make([][]model.Location, len(routes))
	for i, route := range routes {
		paths[i] = route.Path()
	}

	for _, delay := range delays {
		for i, route := range routes {
			path := paths[i]
			if len(path) < 2 {
				continue
			}

			for j := 0; j+1 < len(path); j++ {
				closest, d := geo.ProjectOntoSegment(delay.Location, path[j], path[j+1])
				if d < CollisionThreshold {
					collisions = append(collisions, model.Collision{
						Delay:          delay,
						Route:          route,
						Distance:       d,
						DistanceMeters: geo.Meters(delay.Location, closest),
					})
					break
				}
			}
		}
	}

	return collisions
}
