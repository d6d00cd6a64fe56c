package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setCredentials(t *testing.T) {
	t.Setenv("TUYA_ACCESS_ID", " id ")
	t.Setenv("TUYA_ACCESS_SECRET", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	setCredentials(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "id", cfg.Tuya.AccessID)
	assert.Equal(t, "us", cfg.Tuya.Region)
	assert.Equal(t, 30*time.Second, cfg.Tuya.HTTPTimeout)
	assert.Equal(t, 1000, cfg.Tuya.MaxLogPages)
	assert.Equal(t, "Australia/Perth", cfg.Location.String())
	assert.Zero(t, cfg.LogWindow)
	assert.Zero(t, cfg.RunInterval)
	assert.Equal(t, "telemetry.json", cfg.OutputFile)
	assert.Equal(t, "telemetry.xlsx", cfg.ChartFile)
	assert.Empty(t, cfg.MySQL.DSN)
	assert.False(t, cfg.MySQL.SetupDestructive)
	assert.Zero(t, cfg.MySQL.Retention)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoad_Overrides(t *testing.T) {
	setCredentials(t)
	t.Setenv("TUYA_REGION", "eu")
	t.Setenv("DISPLAY_TIMEZONE", "UTC")
	t.Setenv("LOG_WINDOW", "6h")
	t.Setenv("HTTP_TIMEOUT", "5s")
	t.Setenv("MAX_LOG_PAGES", "0")
	t.Setenv("CHART_FILE", "")
	t.Setenv("RUN_INTERVAL", "15m")
	t.Setenv("MYSQL_DSN", "root@tcp(localhost:3306)/")
	t.Setenv("MYSQL_SETUP_DESTRUCTIVE", "yes")
	t.Setenv("LEDGER_RETENTION", "720h")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "eu", cfg.Tuya.Region)
	assert.Equal(t, time.UTC.String(), cfg.Location.String())
	assert.Equal(t, 6*time.Hour, cfg.LogWindow)
	assert.Equal(t, 5*time.Second, cfg.Tuya.HTTPTimeout)
	assert.Equal(t, 0, cfg.Tuya.MaxLogPages)
	assert.Empty(t, cfg.ChartFile, "an empty CHART_FILE disables the workbook")
	assert.Equal(t, 15*time.Minute, cfg.RunInterval)
	assert.True(t, cfg.MySQL.SetupDestructive)
	assert.Equal(t, 30*24*time.Hour, cfg.MySQL.Retention)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing credentials", func(t *testing.T) {
		t.Setenv("TUYA_ACCESS_ID", "")
		t.Setenv("TUYA_ACCESS_SECRET", "secret")
		_, err := Load()
		assert.ErrorIs(t, err, ErrMissingCredentials)
	})
	t.Run("bad timezone", func(t *testing.T) {
		setCredentials(t)
		t.Setenv("DISPLAY_TIMEZONE", "Mars/Olympus")
		_, err := Load()
		assert.ErrorContains(t, err, "DISPLAY_TIMEZONE")
	})
	t.Run("bad window", func(t *testing.T) {
		setCredentials(t)
		t.Setenv("LOG_WINDOW", "yesterday")
		_, err := Load()
		assert.ErrorContains(t, err, "LOG_WINDOW")
	})
	t.Run("negative page bound", func(t *testing.T) {
		setCredentials(t)
		t.Setenv("MAX_LOG_PAGES", "-1")
		_, err := Load()
		assert.ErrorContains(t, err, "MAX_LOG_PAGES")
	})
}
