package main

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the demo server's runtime configuration, the same flat
// shape the teacher's cmd/server/main.go Config struct uses.
type Config struct {
	Addr            string
	SQLiteURI       string
	ExpiryHours     int
	CleanupInterval time.Duration
	NoopInterval    time.Duration
	MaxTotalLogSize uint64
	WSReadTimeout   time.Duration
	WSWriteTimeout  time.Duration
}

// fileConfig is Config's on-disk shape: durations are plain strings
// ("1h", "5s") parsed after unmarshaling, the way the teacher's
// WingConfig keeps IdleTimeout/AuthTTL as yaml strings rather than
// teaching yaml.v3 to decode straight into a time.Duration.
type fileConfig struct {
	Addr            string `yaml:"addr"`
	SQLiteURI       string `yaml:"sqlite_uri"`
	ExpiryHours     int    `yaml:"expiry_hours"`
	CleanupInterval string `yaml:"cleanup_interval"`
	NoopInterval    string `yaml:"noop_interval"`
	MaxTotalLogSize uint64 `yaml:"max_total_log_size"`
	WSReadTimeout   string `yaml:"ws_read_timeout"`
	WSWriteTimeout  string `yaml:"ws_write_timeout"`
}

func defaultConfig() Config {
	return Config{
		Addr:            ":3030",
		ExpiryHours:     24 * 7,
		CleanupInterval: time.Hour,
		NoopInterval:    5 * time.Second,
		MaxTotalLogSize: 8192,
		WSReadTimeout:   30 * time.Minute,
		WSWriteTimeout:  10 * time.Second,
	}
}

// loadConfig starts from defaultConfig, layers path's YAML contents over
// it if the file exists (LoadWingConfig's "missing file is not an error"
// shape), then layers environment variables over that — the same
// override order the teacher's getEnv/getEnvInt give plain env vars, just
// with a YAML layer added underneath per the configuration scheme this
// session layer adds on top of the teacher's.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	if data, err := os.ReadFile(path); err == nil {
		var fc fileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return Config{}, err
		}
		applyFileConfig(&cfg, fc)
	} else if !os.IsNotExist(err) {
		return Config{}, err
	}

	cfg.Addr = getEnv("COLLABD_ADDR", cfg.Addr)
	cfg.SQLiteURI = getEnv("COLLABD_SQLITE_URI", cfg.SQLiteURI)
	cfg.ExpiryHours = getEnvInt("COLLABD_EXPIRY_HOURS", cfg.ExpiryHours)
	cfg.CleanupInterval = getEnvDuration("COLLABD_CLEANUP_INTERVAL", cfg.CleanupInterval)
	cfg.NoopInterval = getEnvDuration("COLLABD_NOOP_INTERVAL", cfg.NoopInterval)
	cfg.MaxTotalLogSize = getEnvUint("COLLABD_MAX_TOTAL_LOG_SIZE", cfg.MaxTotalLogSize)
	cfg.WSReadTimeout = getEnvDuration("COLLABD_WS_READ_TIMEOUT", cfg.WSReadTimeout)
	cfg.WSWriteTimeout = getEnvDuration("COLLABD_WS_WRITE_TIMEOUT", cfg.WSWriteTimeout)

	return cfg, nil
}

// applyFileConfig overlays the fields fc actually sets onto cfg, leaving
// defaults in place for anything fc left zero/empty.
func applyFileConfig(cfg *Config, fc fileConfig) {
	if fc.Addr != "" {
		cfg.Addr = fc.Addr
	}
	if fc.SQLiteURI != "" {
		cfg.SQLiteURI = fc.SQLiteURI
	}
	if fc.ExpiryHours != 0 {
		cfg.ExpiryHours = fc.ExpiryHours
	}
	if fc.MaxTotalLogSize != 0 {
		cfg.MaxTotalLogSize = fc.MaxTotalLogSize
	}
	if d, ok := parseDuration(fc.CleanupInterval); ok {
		cfg.CleanupInterval = d
	}
	if d, ok := parseDuration(fc.NoopInterval); ok {
		cfg.NoopInterval = d
	}
	if d, ok := parseDuration(fc.WSReadTimeout); ok {
		cfg.WSReadTimeout = d
	}
	if d, ok := parseDuration(fc.WSWriteTimeout); ok {
		cfg.WSWriteTimeout = d
	}
}

func parseDuration(s string) (time.Duration, bool) {
	if s == "" {
		return 0, false
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, false
	}
	return d, true
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvUint(key string, defaultValue uint64) uint64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseUint(v, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}
