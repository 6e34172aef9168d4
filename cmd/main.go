package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tripplanner.dev/gtfs"
	"tripplanner.dev/gtfs/config"
	"tripplanner.dev/gtfs/downloader"
	"tripplanner.dev/gtfs/storage"
)

var rootCmd = &cobra.Command{
	Use:               "gtfs",
	Short:             "Transit trip planner GTFS tool",
	Long:              "Serves and queries multi-source GTFS static and realtime data",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var (
	configPath      string
	envFiles        []string
	realtimeHeaders []string

	cfg *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringSliceVarP(
		&envFiles,
		"env-file",
		"",
		[]string{".env"},
		".env file to load before reading config",
	)
	rootCmd.PersistentFlags().StringSliceVarP(
		&realtimeHeaders,
		"realtime-header",
		"",
		[]string{},
		"GTFS Realtime HTTP header",
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, args []string) error {
	err := config.LoadDotenv(envFiles...)
	if err != nil {
		return err
	}

	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}

	headers, err := parseHeaders(realtimeHeaders)
	if err != nil {
		return fmt.Errorf("invalid realtime header: %w", err)
	}
	if cfg.Realtime.Headers == nil {
		cfg.Realtime.Headers = map[string]string{}
	}
	for k, v := range headers {
		cfg.Realtime.Headers[k] = v
	}

	slog.SetDefault(cfg.Log.NewLogger(os.Stderr))

	return nil
}

func parseHeaders(headers []string) (map[string]string, error) {
	parsed := map[string]string{}
	for _, header := range headers {
		parts := strings.SplitN(header, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("'%s' is not on form <key>:<value>", header)
		}
		parsed[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}
	return parsed, nil
}

func newRegistry() (*gtfs.Registry, error) {
	if len(cfg.Sources) == 0 {
		return gtfs.DefaultRegistry(), nil
	}
	return gtfs.NewRegistry(cfg.Sources)
}

func newStaticCache() (*gtfs.StaticCache, error) {
	registry, err := newRegistry()
	if err != nil {
		return nil, err
	}

	c := gtfs.NewStaticCache(registry)
	c.TTL = cfg.Static.TTL
	c.Timeout = cfg.Static.Timeout
	c.MaxSize = cfg.Static.MaxSize

	if cfg.Static.ArchiveCache != "" {
		fs, err := downloader.NewFilesystem(cfg.Static.ArchiveCache)
		if err != nil {
			return nil, fmt.Errorf("creating archive cache: %w", err)
		}
		c.Downloader = fs
		c.CacheArchives = true
	}

	return c, nil
}

func newVehicleFetcher() *gtfs.VehicleFetcher {
	f := gtfs.NewVehicleFetcher(cfg.Realtime.URL, cfg.Realtime.Headers)
	f.Timeout = cfg.Realtime.Timeout
	f.SourceID = cfg.Realtime.SourceID
	return f
}

func newDelayStore() (storage.DelayStore, error) {
	switch cfg.Delays.Backend {
	case config.BackendMemory:
		return storage.NewMemoryStorage(), nil
	case config.BackendFile:
		path := cfg.Delays.Path
		if path == "" {
			path = "delays.json"
		}
		return storage.NewFileStorage(path)
	case config.BackendSQLite:
		dir := cfg.Delays.Path
		if dir == "" {
			dir = "."
		}
		return storage.NewSQLiteStorage(storage.SQLiteConfig{OnDisk: true, Directory: dir})
	case config.BackendPostgres:
		return storage.NewPSQLStorage(cfg.Delays.DSN, false)
	}
	return nil, fmt.Errorf("unknown delays backend %q", cfg.Delays.Backend)
}
