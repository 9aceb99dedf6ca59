// Package config loads service settings from an optional YAML file and the
// environment. Environment variables win over the file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"routebuilder/internal/opt"
)

// Config stores all configuration of the service.
type Config struct {
	Port               int           `yaml:"port"`
	DatabaseURL        string        `yaml:"databaseUrl"`
	SQLitePath         string        `yaml:"sqlitePath"`
	Migrate            bool          `yaml:"migrate"`
	RedisURL           string        `yaml:"redisUrl"`
	RateRPS            float64       `yaml:"rateRps"`
	RateBurst          int           `yaml:"rateBurst"`
	LogLevel           string        `yaml:"logLevel"`
	LogFormat          string        `yaml:"logFormat"`
	DistanceTableMin   int           `yaml:"distanceTableMin"`
	ParallelSavingsMin int           `yaml:"parallelSavingsMin"`
	MaxCustomers       int           `yaml:"maxCustomers"` // 0 = unlimited
	ShutdownTimeout    time.Duration `yaml:"shutdownTimeout"`
}

// Default returns the settings used when nothing else is configured: an
// in-memory store, the in-process broker and no rate limit.
func Default() Config {
	o := opt.DefaultOptions()
	return Config{
		Port:               8080,
		Migrate:            true,
		LogLevel:           "info",
		LogFormat:          "json",
		DistanceTableMin:   o.TableMin,
		ParallelSavingsMin: o.ParallelMin,
		MaxCustomers:       5000,
		ShutdownTimeout:    10 * time.Second,
	}
}

// Load reads path (if non-empty) on top of Default, then applies environment
// overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		*dst = n
		return nil
	}

	str("DATABASE_URL", &c.DatabaseURL)
	str("SQLITE_PATH", &c.SQLitePath)
	str("REDIS_URL", &c.RedisURL)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)
	for key, dst := range map[string]*int{
		"PORT":                 &c.Port,
		"RATE_BURST":           &c.RateBurst,
		"DISTANCE_TABLE_MIN":   &c.DistanceTableMin,
		"PARALLEL_SAVINGS_MIN": &c.ParallelSavingsMin,
		"MAX_CUSTOMERS":        &c.MaxCustomers,
	} {
		if err := num(key, dst); err != nil {
			return err
		}
	}
	if v, ok := lookup("RATE_RPS"); ok && strings.TrimSpace(v) != "" {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("config: RATE_RPS: %w", err)
		}
		c.RateRPS = f
	}
	if v, ok := lookup("DB_MIGRATE"); ok {
		c.Migrate = v != "false"
	}
	if v, ok := lookup("SHUTDOWN_TIMEOUT"); ok && strings.TrimSpace(v) != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: SHUTDOWN_TIMEOUT: %w", err)
		}
		c.ShutdownTimeout = d
	}
	return nil
}

// Validate rejects settings the service cannot start with.
func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config: port %d out of range", c.Port)
	}
	if c.DatabaseURL != "" && c.SQLitePath != "" {
		return errors.New("config: set either databaseUrl or sqlitePath, not both")
	}
	if c.RateRPS < 0 || c.RateBurst < 0 {
		return errors.New("config: rate limits must be >= 0")
	}
	if c.RateRPS > 0 && c.RateBurst == 0 {
		return errors.New("config: rateBurst must be > 0 when rateRps is set")
	}
	if c.DistanceTableMin < 0 || c.ParallelSavingsMin < 0 {
		return errors.New("config: optimizer thresholds must be >= 0")
	}
	if c.MaxCustomers < 0 {
		return errors.New("config: maxCustomers must be >= 0")
	}
	if c.ShutdownTimeout < 0 {
		return errors.New("config: shutdownTimeout must be >= 0")
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("config: unknown log format %q (allowed: json, console)", c.LogFormat)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string { return ":" + strconv.Itoa(c.Port) }

// OptimizerOptions maps the tuning knobs onto opt.Options.
func (c Config) OptimizerOptions() opt.Options {
	return opt.Options{TableMin: c.DistanceTableMin, ParallelMin: c.ParallelSavingsMin}
}

// Logger builds the process logger. Console output is meant for local runs.
func (c Config) Logger(w io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	if c.LogFormat == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
