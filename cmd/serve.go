package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"tripplanner.dev/gtfs"
	"tripplanner.dev/gtfs/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Runs the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  serve,
}

var port int

func init() {
	serveCmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func serve(cmd *cobra.Command, args []string) error {
	static, err := newStaticCache()
	if err != nil {
		return err
	}

	store, err := newDelayStore()
	if err != nil {
		return fmt.Errorf("opening delay store: %w", err)
	}
	defer store.Close()

	s := api.NewServer(static, newVehicleFetcher(), gtfs.NewDelayLog(store), gtfs.AssemblerConfig{
		TTL:            cfg.MapData.TTL,
		DefaultSources: cfg.MapData.DefaultSources,
	})
	s.AllowedOrigins = cfg.Server.AllowedOrigins

	if port == 0 {
		port = cfg.Server.Port
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return s.ListenAndServe(ctx, fmt.Sprintf(":%d", port))
}
