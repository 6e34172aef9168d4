package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Lists known GTFS sources",
	Args:  cobra.NoArgs,
	RunE:  sources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func sources(cmd *cobra.Command, args []string) error {
	registry, err := newRegistry()
	if err != nil {
		return err
	}

	for _, s := range registry.List() {
		fmt.Printf("%s: %s (%s)\n", s.ID, s.Name, s.URL)
	}

	return nil
}
