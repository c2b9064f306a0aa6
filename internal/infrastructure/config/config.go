package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
	LogLevel    string `koanf:"log_level"`

	Server  ServerConfig  `koanf:"server"`
	Scoring ScoringConfig `koanf:"scoring"`
	Redis   RedisConfig   `koanf:"redis"`
	Kafka   KafkaConfig   `koanf:"kafka"`

	Workflow WorkflowConfig `koanf:"workflow"`
}

type ServerConfig struct {
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// ScoringConfig configures the outbound scoring service clients.
type ScoringConfig struct {
	BaseURL        string        `koanf:"base_url"`
	MaxAttempts    int           `koanf:"max_attempts"`
	BackoffMin     time.Duration `koanf:"backoff_min"`
	BackoffMax     time.Duration `koanf:"backoff_max"`
	AttemptTimeout time.Duration `koanf:"attempt_timeout"`

	RateLimit RateLimitConfig `koanf:"rate_limit"`
}

type RateLimitConfig struct {
	RequestsPerSecond int `koanf:"requests_per_second"`
	BurstSize         int `koanf:"burst_size"`
}

type RedisConfig struct {
	Enabled      bool          `koanf:"enabled"`
	URL          string        `koanf:"url"`
	Password     string        `koanf:"password"`
	DB           int           `koanf:"db"`
	PoolSize     int           `koanf:"pool_size"`
	MinIdleConns int           `koanf:"min_idle_conns"`
	DialTimeout  time.Duration `koanf:"dial_timeout"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	VerdictTTL   time.Duration `koanf:"verdict_ttl"`
}

type KafkaConfig struct {
	Brokers []string `koanf:"brokers"`
	Topic   string   `koanf:"topic"`
	GroupID string   `koanf:"group_id"`
}

// WorkflowConfig tunes run-level behavior.
type WorkflowConfig struct {
	// DeferredStatusDelay is how long the aggregator waits before flipping
	// a pending response to processed.
	DeferredStatusDelay time.Duration `koanf:"deferred_status_delay"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := &Config{
		Version:     "dev",
		Environment: "development",
		LogLevel:    "info",
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    2 * time.Minute,
			ShutdownTimeout: 30 * time.Second,
		},
		Scoring: ScoringConfig{
			BaseURL:        "http://localhost:8000",
			MaxAttempts:    3,
			BackoffMin:     4 * time.Second,
			BackoffMax:     10 * time.Second,
			AttemptTimeout: 30 * time.Second,
			RateLimit: RateLimitConfig{
				RequestsPerSecond: 100,
				BurstSize:         200,
			},
		},
		Redis: RedisConfig{
			URL:          "localhost:6379",
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			VerdictTTL:   5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers: []string{"localhost:9092"},
			Topic:   "transactions",
			GroupID: "fraud_detection_group",
		},
		Workflow: WorkflowConfig{
			DeferredStatusDelay: 2 * time.Second,
		},
	}

	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	// Config file is optional
	if path == "" {
		path = "configs/config.yaml"
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		// Fall back to defaults and environment
	}

	// Override with environment variables
	if err := k.Load(env.Provider("FSB_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "FSB_")), "_", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}
