// Package config loads the service configuration shared by the API, gateway
// and outbox relay binaries.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/draft/orchestrator"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel string `yaml:"log_level"`

	Server struct {
		Port            string        `yaml:"port"`
		AllowedOrigins  []string      `yaml:"allowed_origins"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	NATS struct {
		URL           string `yaml:"url"`
		StreamName    string `yaml:"stream_name"`
		SubjectPrefix string `yaml:"subject_prefix"`
	} `yaml:"nats"`

	Gateway struct {
		Port              string        `yaml:"port"`
		ConsumerName      string        `yaml:"consumer_name"`
		PresenceHeartbeat time.Duration `yaml:"presence_heartbeat"`
		PresenceTTL       time.Duration `yaml:"presence_ttl"`
	} `yaml:"gateway"`

	Outbox struct {
		HealthPort       string        `yaml:"health_port"`
		FallbackInterval time.Duration `yaml:"fallback_interval"`
		MaxRetries       int           `yaml:"max_retries"`
		LagThreshold     time.Duration `yaml:"lag_threshold"`
	} `yaml:"outbox"`

	Draft orchestrator.Config `yaml:"draft"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var c Config
	c.LogLevel = "info"
	c.Server.Port = "8080"
	c.Server.ShutdownTimeout = 10 * time.Second
	c.NATS.URL = "nats://localhost:4222"
	c.NATS.StreamName = "DRAFT_EVENTS"
	c.NATS.SubjectPrefix = "draft.events"
	c.Gateway.Port = "8081"
	c.Gateway.ConsumerName = "draft-gateway"
	c.Gateway.PresenceHeartbeat = 15 * time.Second
	c.Gateway.PresenceTTL = 45 * time.Second
	c.Outbox.HealthPort = "8082"
	c.Outbox.FallbackInterval = 30 * time.Second
	c.Outbox.MaxRetries = 5
	c.Outbox.LagThreshold = time.Minute
	c.Draft = orchestrator.DefaultConfig()
	return &c
}

// Load reads path over the defaults, then applies environment overrides. A
// missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.Server.Port = getEnv("PORT", c.Server.Port)
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		c.Server.AllowedOrigins = strings.Split(origins, ",")
	}
	c.NATS.URL = getEnv("NATS_URL", c.NATS.URL)
	c.Gateway.Port = getEnv("GATEWAY_PORT", c.Gateway.Port)
	c.Outbox.HealthPort = getEnv("OUTBOX_HEALTH_PORT", c.Outbox.HealthPort)
	c.Outbox.FallbackInterval = getEnvAsDuration("FALLBACK_INTERVAL", c.Outbox.FallbackInterval)
	c.Draft.DefaultTimePerPickSec = getEnvAsInt("DRAFT_DEFAULT_TIME_PER_PICK_SEC", c.Draft.DefaultTimePerPickSec)
}

func (c *Config) validate() error {
	if c.Draft.DefaultTimePerPickSec <= 0 {
		return fmt.Errorf("draft.default_time_per_pick_sec must be positive, got %d", c.Draft.DefaultTimePerPickSec)
	}
	if c.Draft.MaxRounds <= 0 {
		return fmt.Errorf("draft.max_rounds must be positive, got %d", c.Draft.MaxRounds)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return nil
}

// Level returns the configured zerolog level.
func (c *Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
