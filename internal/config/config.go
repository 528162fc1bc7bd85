// Package config loads process configuration from the environment,
// following the same caarlos0/env + godotenv pattern used throughout
// the rest of the stack.
package config

import (
	"log"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every value the server needs to start: where the
// snapshots live, how to reach the graph cache's Postgres backing
// store, and basic HTTP server knobs.
type Config struct {
	Port int `env:"PORT" envDefault:"8080"`

	MapSnapshotPath  string `env:"MAP_SNAPSHOT_PATH" envDefault:"data/map.json"`
	FreqSnapshotPath string `env:"FREQ_SNAPSHOT_PATH" envDefault:"data/departures.json"`

	GraphCacheDSN      string `env:"GRAPH_CACHE_DSN"`
	GraphCacheMemItems int    `env:"GRAPH_CACHE_MEM_ITEMS" envDefault:"64"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	RequestTimeoutSeconds int `env:"REQUEST_TIMEOUT_SECONDS" envDefault:"30"`
}

// New loads a .env file if present (missing is not fatal) and parses
// the process environment into a Config.
func New() *Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("config: no .env file loaded: %v", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		log.Printf("config: failed to parse environment variables: %v", err)
	}
	return &cfg
}
