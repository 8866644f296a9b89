package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress          string
	DatabaseURI         string
	OrderServiceAddress string
	RabbitURL           string
	RedisAddress        string
	SweepInterval       time.Duration
	MaxRejections       int
	ShutdownTimeout     time.Duration
	LocationCacheTTL    time.Duration
	// DefaultLatitude/DefaultLongitude are the documented fallback reference
	// coordinates used when a restaurant record carries no location.
	DefaultLatitude  float64
	DefaultLongitude float64
}

const (
	defaultRunAddress       = ":8080"
	defaultSweepInterval    = 60 * time.Second
	defaultMaxRejections    = 3
	defaultShutdownTimeout  = 10 * time.Second
	defaultLocationCacheTTL = 2 * time.Minute
	defaultLatitude         = 6.9271
	defaultLongitude        = 79.8612
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:          getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:         getString(lookup, "DATABASE_URI", ""),
		OrderServiceAddress: getString(lookup, "ORDER_SERVICE_ADDRESS", ""),
		RabbitURL:           getString(lookup, "RABBITMQ_URL", ""),
		RedisAddress:        getString(lookup, "REDIS_ADDRESS", ""),
		SweepInterval:       getDuration(lookup, "SWEEP_INTERVAL", defaultSweepInterval),
		MaxRejections:       getInt(lookup, "MAX_REJECTIONS", defaultMaxRejections),
		ShutdownTimeout:     getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		LocationCacheTTL:    getDuration(lookup, "LOCATION_CACHE_TTL", defaultLocationCacheTTL),
		DefaultLatitude:     getFloat(lookup, "DEFAULT_LATITUDE", defaultLatitude),
		DefaultLongitude:    getFloat(lookup, "DEFAULT_LONGITUDE", defaultLongitude),
	}

	fs := flag.NewFlagSet("dispatch", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		sweepIntervalStr   = cfg.SweepInterval.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
		locationTTLStr     = cfg.LocationCacheTTL.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.OrderServiceAddress, "o", cfg.OrderServiceAddress, "Order service base URL")
	fs.StringVar(&cfg.RabbitURL, "mq", cfg.RabbitURL, "RabbitMQ connection URL (empty for in-memory hub)")
	fs.StringVar(&cfg.RedisAddress, "redis", cfg.RedisAddress, "Redis address for location cache (empty to disable)")
	fs.StringVar(&sweepIntervalStr, "sweep-interval", sweepIntervalStr, "Interval between assignment sweeps")
	fs.IntVar(&cfg.MaxRejections, "max-rejections", cfg.MaxRejections, "Distinct rejections before an order is escalated")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.StringVar(&locationTTLStr, "location-ttl", locationTTLStr, "TTL for cached driver locations")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.SweepInterval, err = time.ParseDuration(sweepIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid sweep interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if cfg.LocationCacheTTL, err = time.ParseDuration(locationTTLStr); err != nil {
		return nil, fmt.Errorf("invalid location cache TTL: %w", err)
	}

	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = defaultSweepInterval
	}

	if cfg.MaxRejections <= 0 {
		cfg.MaxRejections = defaultMaxRejections
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.LocationCacheTTL <= 0 {
		cfg.LocationCacheTTL = defaultLocationCacheTTL
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if cfg.OrderServiceAddress == "" {
		return nil, fmt.Errorf("order service address must be provided")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(lookup envLookup, key string, def float64) float64 {
	if v, ok := lookup(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
