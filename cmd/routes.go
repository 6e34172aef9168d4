package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"

	"tripplanner.dev/gtfs"
	"tripplanner.dev/gtfs/model"
)

var routesCmd = &cobra.Command{
	Use:   "routes <from> <to>",
	Short: "Finds direct routes between two stops",
	Args:  cobra.ExactArgs(2),
	RunE:  routes,
}

var (
	byName    bool
	shapesCSV bool
)

func init() {
	routesCmd.Flags().BoolVarP(&byName, "by-name", "n", false, "Treat from and to as stop names")
	routesCmd.Flags().BoolVarP(&shapesCSV, "csv", "", false, "Print shape points of each connection as CSV")
	rootCmd.AddCommand(routesCmd)
}

func routes(cmd *cobra.Command, args []string) error {
	static, err := newStaticCache()
	if err != nil {
		return err
	}

	mode := gtfs.ModeID
	if byName {
		mode = gtfs.ModeName
	}

	res, err := gtfs.NewResolver(static).FindRoutes(context.Background(), args[0], args[1], mode)
	if err != nil {
		return err
	}

	for _, report := range res.Sources {
		if !report.OK {
			fmt.Fprintf(os.Stderr, "%s: %s\n", report.SourceID, report.Error)
		}
	}

	if shapesCSV {
		points := []model.ShapePoint{}
		for _, conn := range res.Connections {
			points = append(points, conn.ShapePoints...)
		}
		return gocsv.Marshal(points, os.Stdout)
	}

	for _, conn := range res.Connections {
		fmt.Printf(
			"%s %s %s -> %s (%s, %d shape points)\n",
			conn.SourceID,
			conn.RouteShortName,
			conn.FromStopID,
			conn.ToStopID,
			conn.Headsign,
			len(conn.ShapePoints),
		)
	}

	return nil
}
