package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // Zone database for images without zoneinfo

	"github.com/Mause/tuya-graphing/series"
)

var ErrMissingCredentials = errors.New("TUYA_ACCESS_ID and TUYA_ACCESS_SECRET must be set")

type Config struct {
	Tuya TuyaConfig
	// Loaded from DISPLAY_TIMEZONE.
	Location *time.Location
	// Zero means since local midnight.
	LogWindow   time.Duration
	OutputFile  string
	ChartFile   string
	MetricsFile string
	MySQL       MySQLConfig
	Log         LogConfig
	// Zero means a single run.
	RunInterval time.Duration
}

type TuyaConfig struct {
	AccessID     string
	AccessSecret string
	Region       string
	Endpoint     string
	HTTPTimeout  time.Duration
	MaxLogPages  int
}

type MySQLConfig struct {
	// Empty disables the run ledger.
	DSN              string
	SetupDestructive bool
	// Ledger rows older than this are pruned at startup. Zero keeps everything.
	Retention time.Duration
}

type LogConfig struct {
	Level  string
	Format string
	File   string
}

// Read configuration from the environment. Callers load .env first.
func Load() (*Config, error) {
	var err error
	cfg := &Config{
		Tuya: TuyaConfig{
			AccessID:     strings.TrimSpace(os.Getenv("TUYA_ACCESS_ID")),
			AccessSecret: strings.TrimSpace(os.Getenv("TUYA_ACCESS_SECRET")),
			Region:       getEnv("TUYA_REGION", "us"),
			Endpoint:     strings.TrimSpace(os.Getenv("TUYA_ENDPOINT")),
		},
		OutputFile:  getEnv("OUTPUT_FILE", "telemetry.json"),
		ChartFile:   getEnvAllowEmpty("CHART_FILE", "telemetry.xlsx"),
		MetricsFile: strings.TrimSpace(os.Getenv("METRICS_TEXTFILE")),
		MySQL: MySQLConfig{
			DSN:              strings.TrimSpace(os.Getenv("MYSQL_DSN")),
			SetupDestructive: parseBool(os.Getenv("MYSQL_SETUP_DESTRUCTIVE")),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "console")),
			File:   strings.TrimSpace(os.Getenv("LOG_FILE")),
		},
	}
	if cfg.Tuya.AccessID == "" || cfg.Tuya.AccessSecret == "" {
		return nil, ErrMissingCredentials
	}

	cfg.Location, err = time.LoadLocation(getEnv("DISPLAY_TIMEZONE", series.DefaultDisplayTimezone))
	if err != nil {
		return nil, fmt.Errorf("error while loading DISPLAY_TIMEZONE: %w", err)
	}
	cfg.LogWindow, err = parseDuration("LOG_WINDOW", "")
	if err != nil {
		return nil, err
	}
	cfg.Tuya.HTTPTimeout, err = parseDuration("HTTP_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	cfg.RunInterval, err = parseDuration("RUN_INTERVAL", "")
	if err != nil {
		return nil, err
	}
	cfg.MySQL.Retention, err = parseDuration("LEDGER_RETENTION", "")
	if err != nil {
		return nil, err
	}
	cfg.Tuya.MaxLogPages, err = strconv.Atoi(getEnv("MAX_LOG_PAGES", "1000"))
	if err != nil || cfg.Tuya.MaxLogPages < 0 {
		return nil, fmt.Errorf("error while parsing MAX_LOG_PAGES %q: must be a non-negative integer", os.Getenv("MAX_LOG_PAGES"))
	}
	return cfg, nil
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

// Like getEnv, but a variable that is set to empty stays empty.
func getEnvAllowEmpty(k, def string) string {
	if v, ok := os.LookupEnv(k); ok {
		return strings.TrimSpace(v)
	}
	return def
}

func parseDuration(k, def string) (time.Duration, error) {
	raw := getEnv(k, def)
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("error while parsing %v: %w", k, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("error while parsing %v: %v is negative", k, d)
	}
	return d, nil
}

func parseBool(val string) bool {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}
