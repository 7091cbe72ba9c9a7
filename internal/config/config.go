// Package config loads the itinerary service configuration from YAML and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Environment overrides.
const (
	EnvDB       = "ITINERARY_DB"
	EnvLogLevel = "ITINERARY_LOG_LEVEL"
	EnvAddr     = "ITINERARY_ADDR"
)

// Config is the full service configuration. It is built once at startup and
// passed down explicitly.
type Config struct {
	DBPath  string        `yaml:"db_path" validate:"required"`
	Log     LogConfig     `yaml:"log"`
	Search  SearchConfig  `yaml:"search"`
	Planner PlannerConfig `yaml:"planner"`
	Server  ServerConfig  `yaml:"server"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json text"`
}

// SearchConfig holds the candidate exploration defaults.
type SearchConfig struct {
	RadiusKm       float64 `yaml:"radius_km" validate:"gt=0,lte=500"`
	MaxTimeMinutes int     `yaml:"max_time_minutes" validate:"gt=0"`
	MaxDepth       int     `yaml:"max_depth" validate:"gte=1,lte=50"`
	MaxCandidates  int     `yaml:"max_candidates" validate:"gte=1,lte=1000"`
}

// PlannerConfig bounds the generation pipeline.
type PlannerConfig struct {
	Workers                int           `yaml:"workers" validate:"gte=1,lte=64"`
	Timeout                time.Duration `yaml:"timeout" validate:"gte=0"`
	MaxInferenceIterations int           `yaml:"max_inference_iterations" validate:"gte=1"`
	MaxAStarIterations     int           `yaml:"max_astar_iterations" validate:"gte=1"`
	ClusterSeed            *int64        `yaml:"cluster_seed,omitempty"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr" validate:"required,hostname_port"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DBPath: filepath.Join(home, ".itinerary", "itinerary.db"),
		Log:    LogConfig{Level: "info", Format: "text"},
		Search: SearchConfig{
			RadiusKm:       10,
			MaxTimeMinutes: 480,
			MaxDepth:       5,
			MaxCandidates:  50,
		},
		Planner: PlannerConfig{
			Workers:                4,
			Timeout:                30 * time.Second,
			MaxInferenceIterations: 100,
			MaxAStarIterations:     10000,
		},
		Server: ServerConfig{Addr: "127.0.0.1:8080"},
	}
}

// Load reads the YAML file at path over the defaults, applies environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDB); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
}

// Validate checks the struct tags and reports every violation.
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, formatFieldError(e))
	}
	return fmt.Errorf("invalid config:\n  - %s", strings.Join(msgs, "\n  - "))
}

func formatFieldError(e validator.FieldError) string {
	field := strings.TrimPrefix(e.Namespace(), "Config.")
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s] (got: %v)", field, e.Param(), e.Value())
	case "hostname_port":
		return fmt.Sprintf("%s must be host:port (got: %v)", field, e.Value())
	default:
		return fmt.Sprintf("%s failed %s=%s (got: %v)", field, e.Tag(), e.Param(), e.Value())
	}
}
