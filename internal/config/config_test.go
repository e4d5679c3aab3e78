package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalConfig = `
database:
  host: "localhost"
  user: "arrentals"
  database: "arrentals_test"
jwt:
  secret: "test-secret"
`

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.Equal(t, 48, cfg.Leads.DraftTTLHours)
	assert.Equal(t, 2000, cfg.Leads.DebounceMillis)
	assert.Equal(t, 72, cfg.Leads.ExpireAfterHours)
	assert.Equal(t, 60, cfg.Leads.FollowUpAfterMinutes)
	assert.Equal(t, 10, cfg.Admin.PageSize)
	assert.NotEmpty(t, cfg.Scheduler.ExpireStaleLeads)
	assert.NotEmpty(t, cfg.Scheduler.SendLeadFollowUps)
	assert.NotEmpty(t, cfg.Scheduler.CompleteElapsedBookings)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoad_RejectsMissingRequiredSettings(t *testing.T) {
	_, err := Load(writeConfig(t, `
database:
  host: "localhost"
  user: "arrentals"
  database: "arrentals_test"
`))
	assert.Error(t, err, "jwt secret is required")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestConnectionStrings(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Contains(t, cfg.GetDatabaseConnectionString(), "host=localhost")
	assert.Contains(t, cfg.GetDatabaseConnectionString(), "dbname=arrentals_test")
	assert.Equal(t, ":8080", cfg.GetServerAddress())
	assert.Equal(t, ":6379", cfg.GetRedisAddress())
}
