package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tripplanner.dev/gtfs/parse"
)

var cacheInfoCmd = &cobra.Command{
	Use:   "cache-info [source...]",
	Short: "Loads sources and reports their cache status",
	Long:  "Loads the given sources, or all sources, and prints cache status and table counts for each",
	RunE:  cacheInfo,
}

func init() {
	rootCmd.AddCommand(cacheInfoCmd)
}

func cacheInfo(cmd *cobra.Command, args []string) error {
	static, err := newStaticCache()
	if err != nil {
		return err
	}

	ids := args
	if len(ids) == 0 {
		ids = static.Sources().IDs()
	}

	for _, id := range ids {
		tables, err := static.GetData(context.Background(), id)
		if err != nil {
			fmt.Printf("%s: %v\n", id, err)
			continue
		}

		status, err := static.CacheInfo(id)
		if err != nil {
			return err
		}

		summary := parse.Summarize(tables)
		fmt.Printf(
			"%s: fetched %s, expires %s\n",
			id,
			status.LastFetched.Format(time.RFC3339),
			status.ExpiresAt.Format(time.RFC3339),
		)
		for _, table := range parse.TableNames {
			fmt.Printf("  %-15s %d\n", table, summary.Counts[table])
		}
	}

	return nil
}
