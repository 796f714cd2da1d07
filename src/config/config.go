// Package config loads bot settings from a YAML file, a .env file and the
// process environment, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAPIURL = "https://discord.com/api/v10"

	// GUILDS | GUILD_MESSAGES | MESSAGE_CONTENT
	DefaultIntents = 1<<0 | 1<<9 | 1<<15
)

type Config struct {
	Token      string `yaml:"token"`
	Prefix     string `yaml:"prefix"`
	APIURL     string `yaml:"api_url"`
	GatewayURL string `yaml:"gateway_url"`
	Intents    int    `yaml:"intents"`
	ShardCount int    `yaml:"shard_count"`

	Cache   CacheConfig   `yaml:"cache"`
	Gateway GatewayConfig `yaml:"gateway"`
	REST    RESTConfig    `yaml:"rest"`
	Logger  LoggerConfig  `yaml:"logger"`
}

type CacheConfig struct {
	// Size bounds every entity cache (channels, guilds, commands, users).
	Size int `yaml:"size"`
}

type GatewayConfig struct {
	MaxReconnectAttempts int           `yaml:"max_reconnect_attempts"`
	BackoffInitial       time.Duration `yaml:"backoff_initial"`
	BackoffMax           time.Duration `yaml:"backoff_max"`
	// LookupTimeout bounds each dispatch handler, including any REST lookups
	// it makes to resolve referenced guilds or channels.
	LookupTimeout  time.Duration  `yaml:"lookup_timeout"`
	LargeThreshold int            `yaml:"large_threshold"`
	Presence       PresenceConfig `yaml:"presence"`
}

// PresenceConfig is announced on Identify. An empty Status sends none.
type PresenceConfig struct {
	Status       string `yaml:"status"`
	Activity     string `yaml:"activity"`
	ActivityType int    `yaml:"activity_type"`
}

type RESTConfig struct {
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
	BreakerFailures   uint32        `yaml:"breaker_failures"`
	BreakerTimeout    time.Duration `yaml:"breaker_timeout"`
}

type LoggerConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

func Defaults() *Config {
	return &Config{
		Prefix:     "!",
		APIURL:     DefaultAPIURL,
		Intents:    DefaultIntents,
		ShardCount: 1,
		Cache: CacheConfig{
			Size: 10000,
		},
		Gateway: GatewayConfig{
			MaxReconnectAttempts: 5,
			BackoffInitial:       time.Second,
			BackoffMax:           2 * time.Minute,
			LookupTimeout:        10 * time.Second,
			LargeThreshold:       50,
		},
		REST: RESTConfig{
			Timeout:           30 * time.Second,
			RequestsPerSecond: 50,
			Burst:             50,
			BreakerFailures:   5,
			BreakerTimeout:    30 * time.Second,
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// Load reads the YAML file at path if there is one, then .env, then the
// environment, and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Variables already present in the environment win over .env.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := ApplyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func ApplyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("DISCORD_TOKEN"); v != "" {
		cfg.Token = v
	}
	if v := os.Getenv("DEFAULT_PREFIX"); v != "" {
		cfg.Prefix = v
	}
	if v := os.Getenv("DISCORD_SHARDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DISCORD_SHARDS: %w", err)
		}
		cfg.ShardCount = n
	}
	if v := os.Getenv("DISCORD_LOG_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	return nil
}
