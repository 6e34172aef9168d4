package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var vehiclesCmd = &cobra.Command{
	Use:   "vehicles",
	Short: "Lists live vehicle positions",
	Args:  cobra.NoArgs,
	RunE:  vehicles,
}

var vehicleRoute string

func init() {
	vehiclesCmd.Flags().StringVarP(&vehicleRoute, "route", "r", "", "Restrict to a specific route")
	rootCmd.AddCommand(vehiclesCmd)
}

func vehicles(cmd *cobra.Command, args []string) error {
	feed, err := newVehicleFetcher().FetchVehicles(context.Background())
	if err != nil {
		return err
	}

	for _, v := range feed.Vehicles {
		if vehicleRoute != "" && v.RouteID != vehicleRoute {
			continue
		}
		fmt.Printf("%s %s %s %.5f,%.5f\n", v.ID, v.RouteID, v.TripID, v.Lat, v.Lng)
	}

	return nil
}
