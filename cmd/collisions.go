package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"tripplanner.dev/gtfs"
	"tripplanner.dev/gtfs/model"
	"tripplanner.dev/gtfs/parse"
)

var collisionsCmd = &cobra.Command{
	Use:   "collisions <shapes.csv>",
	Short: "Checks reported delays against exported shapes",
	Long:  "Reads shape points as written by 'routes --csv' and lists the delay reports lying along each shape",
	Args:  cobra.ExactArgs(1),
	RunE:  collisions,
}

func init() {
	rootCmd.AddCommand(collisionsCmd)
}

func collisions(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	shapes, err := parse.ReadShapePoints(f)
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	shapeIDs := make([]string, 0, len(shapes))
	for id := range shapes {
		shapeIDs = append(shapeIDs, id)
	}
	sort.Strings(shapeIDs)

	routes := make([]model.RouteConnection, 0, len(shapeIDs))
	for _, id := range shapeIDs {
		routes = append(routes, model.RouteConnection{ShapeID: id, ShapePoints: shapes[id]})
	}

	store, err := newDelayStore()
	if err != nil {
		return err
	}
	defer store.Close()

	reports, err := store.ListDelays(context.Background())
	if err != nil {
		return err
	}

	for _, c := range gtfs.CheckCollisions(reports, routes) {
		fmt.Printf(
			"%s %s %s (%.0f m)\n",
			c.Route.ShapeID,
			c.Delay.ID,
			c.Delay.Cause,
			c.DistanceMeters,
		)
	}

	return nil
}
