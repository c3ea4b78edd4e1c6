package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "./demandscope.db", cfg.Database.Path)
	assert.Equal(t, 10000, cfg.Export.MaxRows)
	assert.Equal(t, 30*time.Minute, cfg.Schedule.ParseCollectInterval())
	assert.Equal(t, time.Hour, cfg.Schedule.ParseTrendInterval())
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  path: /tmp/other.db
server:
  port: 9090
schedule:
  collect_interval: 5m
sources:
  github:
    repos: ["owner/repo"]
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/other.db", cfg.Database.Path)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Minute, cfg.Schedule.ParseCollectInterval())
	assert.Equal(t, []string{"owner/repo"}, cfg.Sources.GitHub.Repos)
	// Untouched sections keep their defaults.
	assert.Equal(t, 10000, cfg.Export.MaxRows)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/does/not/exist.yaml")
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DEMANDSCOPE_DB_PATH", "/tmp/env.db")
	t.Setenv("DEMANDSCOPE_PORT", "9191")
	t.Setenv("DEMANDSCOPE_JWT_SECRET", "sekrit")
	t.Setenv("REDDIT_CLIENT_ID", "cid")
	t.Setenv("REDDIT_CLIENT_SECRET", "csecret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "/tmp/env.db", cfg.Database.Path)
	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "sekrit", cfg.Auth.JWTSecret)
	assert.Equal(t, "cid", cfg.Sources.Reddit.ClientID)
	assert.True(t, cfg.Sources.Reddit.Enabled)
}

func TestEnvPortOverrideIgnoresGarbage(t *testing.T) {
	t.Setenv("DEMANDSCOPE_PORT", "not-a-port")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestInvalidIntervalFallsBack(t *testing.T) {
	s := ScheduleConfig{CollectInterval: "nonsense", TrendInterval: ""}
	assert.Equal(t, 30*time.Minute, s.ParseCollectInterval())
	assert.Equal(t, time.Hour, s.ParseTrendInterval())
}
