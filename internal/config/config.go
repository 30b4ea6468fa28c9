// Package config provides configuration loading from environment variables,
// optionally overlaid by a YAML file.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Analysis defaults
const (
	DefaultWorkersValue             = 10
	DefaultHighVariationFactorValue = 10.0
	DefaultOutputFileValue          = "performance_analysis_summary.txt"
	DefaultBatchCacheMaxItemsValue  = 8
	DefaultQueryMaxResultsValue     = 1000
)

// Config holds all configuration for critpath.
type Config struct {
	Workers             int     `yaml:"workers"`               // WORKERS, default 10 (capped at 10 and GOMAXPROCS)
	HighVariationFactor float64 `yaml:"high_variation_factor"` // HIGH_VARIATION_FACTOR, default 10
	OutputFile          string  `yaml:"output_file"`           // OUTPUT_FILE, default "performance_analysis_summary.txt"
	ExportCCT           bool    `yaml:"export_cct"`            // EXPORT_CCT, default false
	IntervalMinutes     int     `yaml:"interval_minutes"`      // INTERVAL_MINUTES, default 0 (intervals are opaque ordinals)
	BatchCacheMaxItems  int     `yaml:"batch_cache_max_items"` // BATCH_CACHE_MAX_ITEMS, default 8
	QueryMaxResults     int     `yaml:"query_max_results"`     // QUERY_MAX_RESULTS, default 1000

	// Logging configuration
	LogLevel      string `yaml:"log_level"`        // LOG_LEVEL, default "info"
	LogFile       string `yaml:"log_file"`         // LOG_FILE, default "" (stderr only)
	LogFormat     string `yaml:"log_format"`       // LOG_FORMAT, "text" or "json", default "text"
	LogMaxSizeMB  int    `yaml:"log_max_size_mb"`  // LOG_MAX_SIZE_MB, default 10
	LogMaxBackups int    `yaml:"log_max_backups"`  // LOG_MAX_BACKUPS, default 5
	LogMaxAgeDays int    `yaml:"log_max_age_days"` // LOG_MAX_AGE_DAYS, default 28
	LogCompress   bool   `yaml:"log_compress"`     // LOG_COMPRESS, default true
}

// Load reads configuration from environment variables with sensible defaults.
// When CRITPATH_CONFIG names a YAML file, values present in the file override
// the environment.
func Load() (*Config, error) {
	cfg := FromEnv()
	if path := os.Getenv("CRITPATH_CONFIG"); path != "" {
		if err := cfg.MergeFile(path); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// FromEnv reads configuration from environment variables only.
func FromEnv() *Config {
	return &Config{
		Workers:             getEnvInt("WORKERS", DefaultWorkersValue),
		HighVariationFactor: getEnvFloat("HIGH_VARIATION_FACTOR", DefaultHighVariationFactorValue),
		OutputFile:          getEnvString("OUTPUT_FILE", DefaultOutputFileValue),
		ExportCCT:           getEnvBool("EXPORT_CCT", false),
		IntervalMinutes:     getEnvInt("INTERVAL_MINUTES", 0),
		BatchCacheMaxItems:  getEnvInt("BATCH_CACHE_MAX_ITEMS", DefaultBatchCacheMaxItemsValue),
		QueryMaxResults:     getEnvInt("QUERY_MAX_RESULTS", DefaultQueryMaxResultsValue),

		LogLevel:      getEnvString("LOG_LEVEL", "info"),
		LogFile:       getEnvString("LOG_FILE", ""),
		LogFormat:     getEnvString("LOG_FORMAT", "text"),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 10),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 28),
		LogCompress:   getEnvBool("LOG_COMPRESS", true),
	}
}

// MergeFile overlays the keys present in a YAML file onto cfg.
func (c *Config) MergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		switch v {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultVal
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
