package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"tripplanner.dev/gtfs/model"
)

const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

type ServerConfig struct {
	Port           int      `yaml:"port" validate:"min=1,max=65535"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type StaticConfig struct {
	TTL     time.Duration `yaml:"ttl" validate:"gt=0"`
	Timeout time.Duration `yaml:"timeout" validate:"gt=0"`
	MaxSize int           `yaml:"max_size" validate:"gte=0"`

	// Directory for keeping downloaded archives across restarts.
	// Archives are only kept in memory if empty.
	ArchiveCache string `yaml:"archive_cache"`
}

type RealtimeConfig struct {
	URL      string            `yaml:"url" validate:"required,url"`
	Headers  map[string]string `yaml:"headers"`
	Timeout  time.Duration     `yaml:"timeout" validate:"gt=0"`
	SourceID string            `yaml:"source_id"`
}

type MapDataConfig struct {
	TTL            time.Duration `yaml:"ttl" validate:"gt=0"`
	DefaultSources []string      `yaml:"default_sources"`
}

type DelaysConfig struct {
	Backend string `yaml:"backend" validate:"oneof=memory file sqlite postgres"`

	// JSON file for the file backend, database directory for
	// sqlite. Defaults to delays.json and the working directory.
	Path string `yaml:"path"`

	// Connection string for postgres.
	DSN string `yaml:"dsn" validate:"required_if=Backend postgres"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Static   StaticConfig   `yaml:"static"`
	Realtime RealtimeConfig `yaml:"realtime"`
	MapData  MapDataConfig  `yaml:"mapdata"`
	Delays   DelaysConfig   `yaml:"delays"`

	// Replaces the built-in sources if non-empty.
	Sources []model.Source `yaml:"sources" validate:"dive"`

	Log LogConfig `yaml:"log"`
}

// Configuration used when nothing else is specified.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           3000,
			AllowedOrigins: []string{"*"},
		},
		Static: StaticConfig{
			TTL:     24 * time.Hour,
			Timeout: 30 * time.Second,
			MaxSize: 800 << 20,
		},
		Realtime: RealtimeConfig{
			URL:      "https://gtfs.ztp.krakow.pl/VehiclePositions.pb",
			Headers:  map[string]string{},
			Timeout:  30 * time.Second,
			SourceID: "krakow1",
		},
		MapData: MapDataConfig{
			TTL: 5 * time.Minute,
		},
		Delays: DelaysConfig{
			Backend: BackendFile,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Loads .env files into the environment. Variables already set are
// left alone, and missing files are ignored.
func LoadDotenv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, f := range files {
		err := godotenv.Load(f)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}

	return nil
}

// Reads configuration from a YAML file on top of the defaults, then
// applies environment overrides and validates the result. An empty
// path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		err = yaml.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	err := cfg.applyEnv()
	if err != nil {
		return nil, err
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	if port, found := os.LookupEnv("PORT"); found {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", port, err)
		}
		c.Server.Port = p
	}

	if url, found := os.LookupEnv("GTFS_REALTIME_URL"); found {
		c.Realtime.URL = url
	}

	if key, found := os.LookupEnv("GTFS_REALTIME_API_KEY"); found {
		if c.Realtime.Headers == nil {
			c.Realtime.Headers = map[string]string{}
		}
		c.Realtime.Headers["x-api-key"] = key
	}

	if backend, found := os.LookupEnv("DELAYS_BACKEND"); found {
		c.Delays.Backend = backend
	}

	if dsn, found := os.LookupEnv("DELAYS_DSN"); found {
		c.Delays.DSN = dsn
	}

	return nil
}

func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	seen := map[string]bool{}
	for _, s := range c.Sources {
		if seen[s.ID] {
			return fmt.Errorf("invalid config: duplicate source %s", s.ID)
		}
		seen[s.ID] = true
	}

	return nil
}

func (c LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Builds a logger writing to w in the configured format.
func (c LogConfig) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
