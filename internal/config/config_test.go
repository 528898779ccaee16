package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, "AlgoKingX", cfg.Admin.Username)
	assert.Equal(t, int64(1), cfg.Admin.AccountID)
	assert.Equal(t, int64(999999), cfg.Admin.SeedBalance)
	assert.Equal(t, int64(100), cfg.Economy.WelcomeBonus)
	assert.Equal(t, 40.0, cfg.Economy.Defaults.SpinWinRate)
	assert.Equal(t, 24.0, cfg.Economy.Defaults.SpinCooldownHours)
	assert.Equal(t, 5*time.Second, cfg.Games.SpinDelay)
	assert.Equal(t, 2*time.Second, cfg.Games.CoinFlipDelay)
	assert.Equal(t, 3*time.Second, cfg.Games.Miner.RegenInterval)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	dir := t.TempDir()
	yaml := []byte(`
storage:
  driver: sqlite
  sqlite_path: /tmp/hub.db
economy:
  defaults:
    spin_win_rate: 55
admin:
  ids: [42, 43]
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))
	t.Setenv("ECONOMY_DEFAULTS_XP_MULTIPLIER", "2")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "/tmp/hub.db", cfg.Storage.SQLitePath)
	assert.Equal(t, 55.0, cfg.Economy.Defaults.SpinWinRate)
	assert.Equal(t, 2.0, cfg.Economy.Defaults.XPMultiplier)
	assert.True(t, cfg.IsAdmin(42))
	assert.False(t, cfg.IsAdmin(7))
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORAGE_DRIVER", "mongo")

	_, err := Load(t.TempDir())
	assert.Error(t, err)
}

func TestLoadRejectsInvalidEconomyDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ECONOMY_DEFAULTS_GLOBAL_POINT_MULTIPLIER", "0.5")

	_, err := Load(t.TempDir())
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", Name: "n"}
	assert.Equal(t, "postgres://u:p@db:5433/n?sslmode=disable", d.DSN())
}
