package parse

import (
	"io"
	"math"

	"tripplanner.dev/gtfs/model"
)

// Projects a shapes.txt row. The second return value is false for
// points that can't be drawn: non-numeric coordinates, or a latitude
// or longitude of exactly 0, which feeds use as a placeholder.
func ShapePointFromRow(row Row) (model.ShapePoint, bool) {
	p := model.ShapePoint{
		ShapeID:  row.String("shape_id"),
		Lat:      row.Float("shape_pt_lat", math.NaN()),
		Lng:      row.Float("shape_pt_lon", math.NaN()),
		Sequence: row.Int("shape_pt_sequence", 0),
	}

	return p, drawable(p)
}

func drawable(p model.ShapePoint) bool {
	return !math.IsNaN(p.Lat) && !math.IsNaN(p.Lng) && p.Lat != 0 && p.Lng != 0
}

// Groups shapes.txt rows into polylines by shape_id, each sorted
// ascending by shape_pt_sequence.
func ShapePoints(rows []Row) map[string][]model.ShapePoint {
	shapes := map[string][]model.ShapePoint{}
	for _, row := range rows {
		p, ok := ShapePointFromRow(row)
		if !ok {
			continue
		}
		shapes[p.ShapeID] = append(shapes[p.ShapeID], p)
	}

	for _, points := range shapes {
		sortShapePoints(points)
	}

	return shapes
}

// Reads shape points from a CSV with shapes.txt columns, such as one
// written by gocsv.Marshal of []model.ShapePoint. Points are grouped
// and filtered like ShapePoints.
func ReadShapePoints(in io.Reader) (map[string][]model.ShapePoint, error) {
	points := []model.ShapePoint{}
	err := Unmarshal(in, &points)
	if err != nil {
		return nil, err
	}

	shapes := map[string][]model.ShapePoint{}
	for _, p := range points {
		if !drawable(p) {
			continue
		}
		shapes[p.ShapeID] = append(shapes[p.ShapeID], p)
	}

	for _, points := range shapes {
		sortShapePoints(points)
	}

	return shapes, nil
}
