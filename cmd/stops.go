package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tripplanner.dev/gtfs"
	"tripplanner.dev/gtfs/geo"
	"tripplanner.dev/gtfs/model"
	"tripplanner.dev/gtfs/parse"
)

var stopsCmd = &cobra.Command{
	Use:   "stops <source>",
	Short: "Lists the stops of a source",
	Long:  "Lists the stops of a source by name, or nearest first when --near is given",
	Args:  cobra.ExactArgs(1),
	RunE:  stops,
}

var (
	stopName  string
	stopNear  string
	stopLimit int
)

func init() {
	stopsCmd.Flags().StringVarP(&stopName, "name", "n", "", "Only stops whose name matches")
	stopsCmd.Flags().StringVarP(&stopNear, "near", "", "", "Sort by distance from <lat>,<lng>")
	stopsCmd.Flags().IntVarP(&stopLimit, "limit", "l", 0, "Print at most this many stops")
	rootCmd.AddCommand(stopsCmd)
}

func parsePoint(s string) (geo.Point, error) {
	lat, lng, found := strings.Cut(s, ",")
	if !found {
		return geo.Point{}, fmt.Errorf("'%s' is not on form <lat>,<lng>", s)
	}

	p := geo.Point{}
	var err error
	p.Lat, err = strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("invalid lat: %w", err)
	}
	p.Lng, err = strconv.ParseFloat(strings.TrimSpace(lng), 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("invalid lng: %w", err)
	}
	return p, nil
}

func stops(cmd *cobra.Command, args []string) error {
	if stopLimit < 0 {
		return fmt.Errorf("limit must be >= 0")
	}

	var near *geo.Point
	if stopNear != "" {
		p, err := parsePoint(stopNear)
		if err != nil {
			return err
		}
		near = &p
	}

	static, err := newStaticCache()
	if err != nil {
		return err
	}

	tables, err := static.GetData(context.Background(), args[0])
	if err != nil {
		return err
	}

	found := []model.Stop{}
	for _, row := range tables.Stops() {
		stop, ok := parse.StopFromRow(row)
		if !ok {
			continue
		}
		if stopName != "" && !gtfs.MatchStopName(stopName, stop.Name) {
			continue
		}
		found = append(found, stop)
	}

	distance := func(s model.Stop) float64 {
		return geo.Meters(*near, geo.Point{Lat: s.Lat, Lng: s.Lon})
	}

	if near != nil {
		sort.SliceStable(found, func(i, j int) bool {
			return distance(found[i]) < distance(found[j])
		})
	} else {
		sort.SliceStable(found, func(i, j int) bool {
			return found[i].Name < found[j].Name
		})
	}

	if stopLimit > 0 && len(found) > stopLimit {
		found = found[:stopLimit]
	}

	for _, stop := range found {
		if near != nil {
			fmt.Printf("%s: %s (%.0f m)\n", stop.ID, stop.Name, distance(stop))
			continue
		}
		fmt.Printf("%s: %s\n", stop.ID, stop.Name)
	}

	return nil
}
