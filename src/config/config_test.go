package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir moves the test into an empty directory so no stray .env is loaded.
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad_YAML(t *testing.T) {
	dir := chdir(t)
	t.Setenv("DISCORD_TOKEN", "")

	path := filepath.Join(dir, "bot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
token: yaml-token
prefix: "?"
shard_count: 2
gateway:
  backoff_initial: 2s
  lookup_timeout: 5s
  presence:
    status: idle
    activity: "!help"
    activity_type: 2
rest:
  requests_per_second: 10
logger:
  level: debug
  format: json
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "yaml-token", cfg.Token)
	assert.Equal(t, "?", cfg.Prefix)
	assert.Equal(t, 2, cfg.ShardCount)
	assert.Equal(t, 2*time.Second, cfg.Gateway.BackoffInitial)
	assert.Equal(t, 5*time.Second, cfg.Gateway.LookupTimeout)
	assert.Equal(t, 2*time.Minute, cfg.Gateway.BackoffMax)
	assert.Equal(t, PresenceConfig{Status: "idle", Activity: "!help", ActivityType: 2}, cfg.Gateway.Presence)
	assert.Equal(t, 10.0, cfg.REST.RequestsPerSecond)
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, DefaultIntents, cfg.Intents)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	dir := chdir(t)
	t.Setenv("DISCORD_TOKEN", "env-token")
	t.Setenv("DEFAULT_PREFIX", "$")
	t.Setenv("DISCORD_SHARDS", "3")
	t.Setenv("DISCORD_LOG_LEVEL", "warn")

	path := filepath.Join(dir, "bot.yaml")
	require.NoError(t, os.WriteFile(path, []byte("token: yaml-token\nprefix: \"?\"\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Token)
	assert.Equal(t, "$", cfg.Prefix)
	assert.Equal(t, 3, cfg.ShardCount)
	assert.Equal(t, "warn", cfg.Logger.Level)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := chdir(t)
	// .env never replaces a variable that is already set, even to "".
	t.Setenv("DISCORD_TOKEN", "")
	require.NoError(t, os.Unsetenv("DISCORD_TOKEN"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DISCORD_TOKEN=dotenv-token\n"), 0o600))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "dotenv-token", cfg.Token)
}

func TestLoad_Errors(t *testing.T) {
	dir := chdir(t)
	t.Setenv("DISCORD_TOKEN", "")

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "read config")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("token: [unclosed"), 0o600))
	_, err = Load(bad)
	assert.ErrorContains(t, err, "parse config")

	_, err = Load("")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Error(), "token is required")

	t.Setenv("DISCORD_TOKEN", "x")
	t.Setenv("DISCORD_SHARDS", "many")
	_, err = Load("")
	assert.ErrorContains(t, err, "DISCORD_SHARDS")
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	cfg.Token = "token"
	require.NoError(t, Validate(cfg))

	cfg.ShardCount = 0
	cfg.Gateway.BackoffMax = time.Millisecond
	cfg.Gateway.LargeThreshold = 10
	cfg.REST.BreakerFailures = 0
	cfg.Logger.Level = "loud"
	cfg.Gateway.Presence.Status = "away"

	err := Validate(cfg)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Errors, 6)
	assert.Contains(t, err.Error(), "gateway.presence.status")
	assert.Contains(t, err.Error(), "shard_count")
	assert.Contains(t, err.Error(), "gateway.backoff_max")
	assert.Contains(t, err.Error(), "gateway.large_threshold")
	assert.Contains(t, err.Error(), "rest.breaker_failures")
	assert.Contains(t, err.Error(), "logger.level")
}
