package config

import (
	"fmt"
	"strings"
)

// ValidationError accumulates config validation errors.
type ValidationError struct {
	Errors []string
}

func (v *ValidationError) Error() string {
	return "config validation failed:\n  - " + strings.Join(v.Errors, "\n  - ")
}

func (v *ValidationError) HasErrors() bool {
	return len(v.Errors) > 0
}

func (v *ValidationError) Add(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

// Validate returns a *ValidationError listing every problem found.
func Validate(cfg *Config) error {
	ve := &ValidationError{}

	if cfg.Token == "" {
		ve.Add("token is required (set DISCORD_TOKEN)")
	}
	if cfg.Prefix == "" {
		ve.Add("prefix must not be empty")
	}
	if cfg.APIURL == "" {
		ve.Add("api_url must not be empty")
	}
	if cfg.ShardCount < 1 {
		ve.Add("shard_count must be >= 1")
	}
	if cfg.Cache.Size <= 0 {
		ve.Add("cache.size must be > 0")
	}

	validateGateway(cfg, ve)
	validateREST(cfg, ve)
	validateLogger(cfg, ve)

	if ve.HasErrors() {
		return ve
	}
	return nil
}

func validateGateway(cfg *Config, ve *ValidationError) {
	g := cfg.Gateway
	if g.MaxReconnectAttempts <= 0 {
		ve.Add("gateway.max_reconnect_attempts must be > 0")
	}
	if g.BackoffInitial <= 0 {
		ve.Add("gateway.backoff_initial must be > 0")
	}
	if g.BackoffMax < g.BackoffInitial {
		ve.Add("gateway.backoff_max must be >= gateway.backoff_initial")
	}
	if g.LookupTimeout <= 0 {
		ve.Add("gateway.lookup_timeout must be > 0")
	}
	if g.LargeThreshold != 0 && (g.LargeThreshold < 50 || g.LargeThreshold > 250) {
		ve.Add("gateway.large_threshold must be between 50 and 250")
	}
	switch g.Presence.Status {
	case "", "online", "dnd", "idle", "invisible", "offline":
	default:
		ve.Add("gateway.presence.status %q is not one of online, dnd, idle, invisible, offline", g.Presence.Status)
	}
	if g.Presence.ActivityType < 0 || g.Presence.ActivityType > 5 {
		ve.Add("gateway.presence.activity_type must be between 0 and 5")
	}
}

func validateREST(cfg *Config, ve *ValidationError) {
	r := cfg.REST
	if r.Timeout <= 0 {
		ve.Add("rest.timeout must be > 0")
	}
	if r.RequestsPerSecond <= 0 {
		ve.Add("rest.requests_per_second must be > 0")
	}
	if r.Burst <= 0 {
		ve.Add("rest.burst must be > 0")
	}
	if r.BreakerFailures == 0 {
		ve.Add("rest.breaker_failures must be > 0")
	}
	if r.BreakerTimeout <= 0 {
		ve.Add("rest.breaker_timeout must be > 0")
	}
}

func validateLogger(cfg *Config, ve *ValidationError) {
	switch strings.ToLower(cfg.Logger.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		ve.Add("logger.level %q is not one of debug, info, warn, error", cfg.Logger.Level)
	}
	switch strings.ToLower(cfg.Logger.Format) {
	case "text", "json":
	default:
		ve.Add("logger.format %q is not one of text, json", cfg.Logger.Format)
	}
}
