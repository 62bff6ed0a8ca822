// Package config provides configuration management for incidentscope.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all incidentscope configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Redis      RedisConfig      `yaml:"redis"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Generator  GeneratorConfig  `yaml:"generator"`
	Clustering ClusteringConfig `yaml:"clustering"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxUploadBytes caps the multipart body parsed on upload.
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
}

// RedisConfig holds Redis connection settings for the rate limiter.
// Leaving Addr empty disables Redis; the limiter falls back to its local
// counters.
type RedisConfig struct {
	Addr        string `yaml:"addr"`
	PasswordEnv string `yaml:"password_env"`
	DB          int    `yaml:"db"`
	PoolSize    int    `yaml:"pool_size"`
}

// RateLimitConfig holds API rate limiting settings.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
	IncludeHeaders    bool `yaml:"include_headers"`
}

// GeneratorConfig holds synthetic dataset generation settings.
type GeneratorConfig struct {
	Seed           int64 `yaml:"seed"`
	Days           int   `yaml:"days"`
	DefaultRecords int   `yaml:"default_records"`
	MaxRecords     int   `yaml:"max_records"`
}

// ClusteringConfig holds k-means fit settings.
type ClusteringConfig struct {
	Seed            int64 `yaml:"seed"`
	DefaultClusters int   `yaml:"default_clusters"`
	Restarts        int   `yaml:"restarts"`
	MaxIterations   int   `yaml:"max_iterations"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// Load reads configuration from a YAML file, applied on top of defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxUploadBytes:  64 << 20,
		},
		Redis: RedisConfig{
			PasswordEnv: "INCIDENTSCOPE_REDIS_PASSWORD",
			DB:          0,
			PoolSize:    10,
		},
		RateLimit: RateLimitConfig{
			Enabled:           false,
			RequestsPerMinute: 120,
			IncludeHeaders:    true,
		},
		Generator: GeneratorConfig{
			Seed:           42,
			Days:           90,
			DefaultRecords: 1000,
			MaxRecords:     1_000_000,
		},
		Clustering: ClusteringConfig{
			Seed:            42,
			DefaultClusters: 4,
			Restarts:        10,
			MaxIterations:   300,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
