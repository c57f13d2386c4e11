// Package config resolves command-line flags and ROUTEPLANNER_* environment
// variables into the routeplanner configuration.
package config

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/sirupsen/logrus"
)

type Config struct {
	ListenAddr   string
	MapFile      string
	LogLevel     string
	BatchWorkers int
	MaxBatchSize int
}

// Load parse flags. Default value tiap flag diambil dari environment variable kalau ada.
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := &Config{}

	batchWorkers, err := strconv.Atoi(envOrDefault("ROUTEPLANNER_BATCH_WORKERS", strconv.Itoa(runtime.NumCPU())))
	if err != nil {
		return nil, fmt.Errorf("ROUTEPLANNER_BATCH_WORKERS must be an integer: %w", err)
	}
	maxBatch, err := strconv.Atoi(envOrDefault("ROUTEPLANNER_MAX_BATCH_SIZE", "100"))
	if err != nil {
		return nil, fmt.Errorf("ROUTEPLANNER_MAX_BATCH_SIZE must be an integer: %w", err)
	}

	fs.StringVar(&cfg.ListenAddr, "listenaddr", envOrDefault("ROUTEPLANNER_LISTEN_ADDR", ":5000"), "server listen address")
	fs.StringVar(&cfg.MapFile, "f", envOrDefault("ROUTEPLANNER_MAP_FILE", "map.osm"), "openstreetmap file (.osm or .osm.pbf) buat road network graphnya")
	fs.StringVar(&cfg.LogLevel, "loglevel", envOrDefault("ROUTEPLANNER_LOG_LEVEL", "info"), "log level (debug, info, warn, error)")
	fs.IntVar(&cfg.BatchWorkers, "batchworkers", batchWorkers, "number of workers for batch shortest path query")
	fs.IntVar(&cfg.MaxBatchSize, "maxbatch", maxBatch, "max number of queries in one batch request")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.MapFile == "" {
		return fmt.Errorf("map file is required")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	if c.BatchWorkers < 1 || c.BatchWorkers > 256 {
		return fmt.Errorf("batch workers must be between 1 and 256")
	}
	if c.MaxBatchSize < 1 {
		return fmt.Errorf("max batch size must be positive")
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// NewLogger logrus logger dengan text formatter. Level harus sudah divalidasi.
func NewLogger(level string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}
