package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "https://api.apify.com/v2", cfg.Apify.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Apify.PollInterval)
	assert.Equal(t, 120, cfg.Apify.MaxPollAttempts)
	assert.Equal(t, "hKByXkMQaC5Qt9UMN", cfg.Apify.Actors.LinkedIn)
	assert.Equal(t, 40, cfg.Discovery.MaxJobs)
	assert.Equal(t, []string{"India", "Remote"}, cfg.Discovery.Locations)
	assert.Equal(t, 30*time.Second, cfg.Redis.StatsTTL)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoadConfigFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 9090
apify:
  poll_interval: 1s
  max_poll_attempts: 10
discovery:
  max_jobs: 25
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, time.Second, cfg.Apify.PollInterval)
	assert.Equal(t, 10, cfg.Apify.MaxPollAttempts)
	assert.Equal(t, 25, cfg.Discovery.MaxJobs)
	// Untouched sections keep their defaults
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "7070")
	t.Setenv("APIFY_TOKEN", "secret")
	t.Setenv("DATABASE_URL", "postgres://localhost/jobradar")
	t.Setenv("REDIS_URL", "redis://cache:6379")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "secret", cfg.Apify.Token)
	assert.Equal(t, "postgres://localhost/jobradar", cfg.Database.URL)
	assert.Equal(t, "redis://cache:6379", cfg.Redis.URL)
	assert.True(t, cfg.Redis.Enabled)
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("JOBRADAR_TEST_TOKEN", "tok-123")

	assert.Equal(t, "token: tok-123", expandEnvVars("token: ${JOBRADAR_TEST_TOKEN}"))
	assert.Equal(t, "token: tok-123", expandEnvVars("token: $JOBRADAR_TEST_TOKEN"))
	// Unset variables are left as-is
	assert.Equal(t, "token: ${JOBRADAR_UNSET}", expandEnvVars("token: ${JOBRADAR_UNSET}"))
}

func TestActorID(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, cfg.Apify.Actors.Indeed, cfg.ActorID("indeed"))
	assert.Equal(t, cfg.Apify.Actors.Naukri, cfg.ActorID("naukri"))
	assert.Equal(t, "", cfg.ActorID("monster"))
}
