package parse

import (
	"tripplanner.dev/gtfs/model"
)

func AgencyFromRow(row Row) model.Agency {
	return model.Agency{
		ID:       row.String("agency_id"),
		Name:     row.String("agency_name"),
		URL:      row.String("agency_url"),
		Timezone: row.String("agency_timezone"),
	}
}
