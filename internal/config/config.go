// Package config loads the engine configuration from a YAML file with
// .env and environment-variable overrides on top.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Rosewood1985/ai-sports-edge-sub010/internal/logger"
	"github.com/Rosewood1985/ai-sports-edge-sub010/internal/recommend"
	"github.com/Rosewood1985/ai-sports-edge-sub010/pkg/models"
)

// Config is the full configuration for the risk engine binaries.
type Config struct {
	HTTP     HTTPConfig             `yaml:"http"`
	Postgres PostgresConfig         `yaml:"postgres"`
	Redis    RedisConfig            `yaml:"redis"`
	Streams  StreamsConfig          `yaml:"streams"`
	Engine   recommend.EngineConfig `yaml:"engine"`
	Log      logger.Config          `yaml:"log"`
}

// HTTPConfig controls the HTTP server.
type HTTPConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// PostgresConfig holds the ledger database connection. An empty DSN
// disables the database-backed endpoints.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// RedisConfig holds the stream broker connection.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// StreamsConfig controls the candidate consumer and the recommendation
// publisher. Candidate streams are one per sport:
// {candidate_prefix}.{sport_key}.
type StreamsConfig struct {
	CandidatePrefix      string   `yaml:"candidate_prefix"`
	RecommendationStream string   `yaml:"recommendation_stream"`
	ConsumerGroup        string   `yaml:"consumer_group"`
	ConsumerID           string   `yaml:"consumer_id"`
	Sports               []string `yaml:"sports"`
	FreshnessSeconds     int      `yaml:"freshness_seconds"`
}

// Load reads the YAML file at path and applies .env and environment
// overrides. An empty path skips the file and builds the configuration
// from defaults and the environment alone.
func Load(path string) (*Config, error) {
	// Load .env if present (silently skip when there is none).
	_ = godotenv.Load()

	cfg := Config{Engine: recommend.DefaultEngineConfig()}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// CandidateStreams returns one stream key per configured sport.
func (c *Config) CandidateStreams() []string {
	streams := make([]string, 0, len(c.Streams.Sports))
	for _, sport := range c.Streams.Sports {
		streams = append(streams, fmt.Sprintf("%s.%s", c.Streams.CandidatePrefix, sport))
	}
	return streams
}

// Freshness returns the candidate freshness window as a time.Duration.
func (c *Config) Freshness() time.Duration {
	return time.Duration(c.Streams.FreshnessSeconds) * time.Second
}

// applyEnvOverrides overwrites values with environment variables when present.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("RISK_ENGINE_PORT"); v != "" {
		cfg.HTTP.Port = envInt(v, cfg.HTTP.Port)
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		cfg.Redis.DB = envInt(v, cfg.Redis.DB)
	}
	if v := os.Getenv("STREAM_CONSUMER_ID"); v != "" {
		cfg.Streams.ConsumerID = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_PRETTY"); v != "" {
		cfg.Log.Pretty = v == "true" || v == "1"
	}
}

// setDefaults ensures required values carry sensible defaults.
func setDefaults(cfg *Config) {
	if cfg.HTTP.Port <= 0 {
		cfg.HTTP.Port = 8087
	}
	if len(cfg.HTTP.AllowedOrigins) == 0 {
		cfg.HTTP.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:3001"}
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Streams.CandidatePrefix == "" {
		cfg.Streams.CandidatePrefix = "legs.candidates"
	}
	if cfg.Streams.RecommendationStream == "" {
		cfg.Streams.RecommendationStream = "recommendations.parlay"
	}
	if cfg.Streams.ConsumerGroup == "" {
		cfg.Streams.ConsumerGroup = "risk-engine"
	}
	if cfg.Streams.ConsumerID == "" {
		hostname, err := os.Hostname()
		if err != nil || hostname == "" {
			hostname = "risk-engine-1"
		}
		cfg.Streams.ConsumerID = hostname
	}
	if len(cfg.Streams.Sports) == 0 {
		cfg.Streams.Sports = []string{
			string(models.SportNBA),
			string(models.SportNFL),
			string(models.SportMLB),
			string(models.SportNHL),
		}
	}
	if cfg.Streams.FreshnessSeconds <= 0 {
		cfg.Streams.FreshnessSeconds = 300
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

func envInt(value string, fallback int) int {
	if parsed, err := strconv.Atoi(value); err == nil {
		return parsed
	}
	return fallback
}
