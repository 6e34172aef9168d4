package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var delaysCmd = &cobra.Command{
	Use:   "delays",
	Short: "Lists reported delays",
	Args:  cobra.NoArgs,
	RunE:  delays,
}

var since time.Duration

func init() {
	delaysCmd.Flags().DurationVarP(&since, "since", "s", 0, "Only delays reported within this long")
	rootCmd.AddCommand(delaysCmd)
}

func delays(cmd *cobra.Command, args []string) error {
	store, err := newDelayStore()
	if err != nil {
		return err
	}
	defer store.Close()

	reports, err := store.ListDelays(context.Background())
	if err != nil {
		return err
	}

	for _, r := range reports {
		if since > 0 && time.Since(r.Timestamp) > since {
			continue
		}
		fmt.Printf(
			"%s %s %s %.5f,%.5f %s\n",
			r.ID,
			r.Timestamp.Format(time.RFC3339),
			r.Cause,
			r.Location.Lat,
			r.Location.Lng,
			r.VehicleNumber,
		)
	}

	return nil
}
