// Package config collects the settings the server needs at startup. Values
// come from flags first, then PEBBLE_* environment variables, then defaults.
// Nothing is reloaded once the server runs.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/freekieb7/pebble/filesystem"
)

const (
	DefaultAddr        = "127.0.0.1:9999"
	DefaultBasePath    = "."
	DefaultServiceName = "pebble"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Addr string
	// BasePath is prefixed to request URIs by the static file fallback.
	BasePath string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MaxConns     int
	MaxBodySize  int
	ReusePort    bool

	ServiceName  string
	OTLPEndpoint string
	LogLevel     string
}

// Load parses args (without the program name). The first positional
// argument, when present, overrides the static base path.
func Load(args []string, getenv func(string) string) (Config, error) {
	cfg := Config{
		Addr:        envOr(getenv, "PEBBLE_ADDR", DefaultAddr),
		BasePath:    envOr(getenv, "PEBBLE_BASE_PATH", DefaultBasePath),
		ServiceName: envOr(getenv, "OTEL_SERVICE_NAME", DefaultServiceName),
		LogLevel:    envOr(getenv, "PEBBLE_LOG_LEVEL", "info"),
	}
	cfg.OTLPEndpoint = getenv("PEBBLE_OTLP_ENDPOINT")

	var err error
	if cfg.ReadTimeout, err = envDuration(getenv, "PEBBLE_READ_TIMEOUT"); err != nil {
		return cfg, err
	}
	if cfg.WriteTimeout, err = envDuration(getenv, "PEBBLE_WRITE_TIMEOUT"); err != nil {
		return cfg, err
	}
	if cfg.MaxConns, err = envInt(getenv, "PEBBLE_MAX_CONNS"); err != nil {
		return cfg, err
	}
	if cfg.MaxBodySize, err = envInt(getenv, "PEBBLE_MAX_BODY_SIZE"); err != nil {
		return cfg, err
	}
	if cfg.ReusePort, err = envBool(getenv, "PEBBLE_REUSE_PORT"); err != nil {
		return cfg, err
	}

	flags := flag.NewFlagSet("pebble", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	flags.StringVar(&cfg.Addr, "addr", cfg.Addr, "TCP address to listen on")
	flags.StringVar(&cfg.BasePath, "base-path", cfg.BasePath, "directory static files are served from")
	flags.DurationVar(&cfg.ReadTimeout, "read-timeout", cfg.ReadTimeout, "deadline for reading a request, 0 disables it")
	flags.DurationVar(&cfg.WriteTimeout, "write-timeout", cfg.WriteTimeout, "deadline for writing a response, 0 disables it")
	flags.IntVar(&cfg.MaxConns, "max-conns", cfg.MaxConns, "connections served at once, 0 means unbounded")
	flags.IntVar(&cfg.MaxBodySize, "max-body-size", cfg.MaxBodySize, "largest accepted Content-Length in bytes, 0 means unlimited")
	flags.BoolVar(&cfg.ReusePort, "reuse-port", cfg.ReusePort, "set SO_REUSEPORT on the listener")
	flags.StringVar(&cfg.ServiceName, "service-name", cfg.ServiceName, "service name reported to OpenTelemetry")
	flags.StringVar(&cfg.OTLPEndpoint, "otlp-endpoint", cfg.OTLPEndpoint, "OTLP gRPC collector host:port, empty disables export")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")

	if err := flags.Parse(args); err != nil {
		return cfg, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if flags.NArg() > 0 && flags.Arg(0) != "" {
		cfg.BasePath = flags.Arg(0)
	}

	return cfg, cfg.validate()
}

func (cfg Config) validate() error {
	if cfg.Addr == "" {
		return fmt.Errorf("%w: empty listen address", ErrInvalidConfig)
	}
	if cfg.MaxConns < 0 {
		return fmt.Errorf("%w: max-conns must not be negative", ErrInvalidConfig)
	}
	if cfg.MaxBodySize < 0 {
		return fmt.Errorf("%w: max-body-size must not be negative", ErrInvalidConfig)
	}
	if cfg.ReadTimeout < 0 || cfg.WriteTimeout < 0 {
		return fmt.Errorf("%w: timeouts must not be negative", ErrInvalidConfig)
	}
	return nil
}

// CheckBasePath makes sure the static base path is a directory.
func (cfg Config) CheckBasePath(fs filesystem.Filesystem) error {
	if err := filesystem.EnsureDirectory(fs, cfg.BasePath); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func envOr(getenv func(string) string, key, fallback string) string {
	if value := getenv(key); value != "" {
		return value
	}
	return fallback
}

func envDuration(getenv func(string) string, key string) (time.Duration, error) {
	value := getenv(key)
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, key, err)
	}
	return d, nil
}

func envInt(getenv func(string) string, key string) (int, error) {
	value := getenv(key)
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, key, err)
	}
	return n, nil
}

func envBool(getenv func(string) string, key string) (bool, error) {
	value := getenv(key)
	if value == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, key, err)
	}
	return b, nil
}
