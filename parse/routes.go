package parse

import (
	"tripplanner.dev/gtfs/model"
)

// Projects a routes.txt row. A missing or non-numeric route_type
// reads as bus.
func RouteFromRow(row Row) model.Route {
	return model.Route{
		ID:        row.String("route_id"),
		AgencyID:  row.String("agency_id"),
		ShortName: row.String("route_short_name"),
		LongName:  row.String("route_long_name"),
		Desc:      row.String("route_desc"),
		Type:      model.RouteType(row.Int("route_type", int(model.RouteTypeBus))),
		URL:       row.String("route_url"),
		Color:     row.String("route_color"),
		TextColor: row.String("route_text_color"),
	}
}
