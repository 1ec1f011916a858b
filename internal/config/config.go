package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Data struct {
		File       string `yaml:"file"`
		Instrument string `yaml:"instrument"` // optional; detected from filename when empty
		Timezone   string `yaml:"timezone"`   // optional; instrument default when empty
	} `yaml:"data"`
	Cache struct {
		Backend       string `yaml:"backend"` // "file" or "sqlite"
		Dir           string `yaml:"dir"`
		SQLitePath    string `yaml:"sqlite_path"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"cache"`
	History struct {
		SQLitePath string `yaml:"sqlite_path"` // empty disables history recording
	} `yaml:"history"`
	Quality struct {
		CoverageWarnPercent float64  `yaml:"coverage_warn_percent"`
		CriticalLevels      []string `yaml:"critical_levels"`
		StaleAfterDays      int      `yaml:"stale_after_days"`
	} `yaml:"quality"`
	// Weights overrides base weights per instrument, by level name.
	Weights  map[string]map[string]float64 `yaml:"weights"`
	Schedule struct {
		AnalysisCron string `yaml:"analysis_cron"`
		CleanupCron  string `yaml:"cleanup_cron"`
	} `yaml:"schedule"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("DATA_FILE"); v != "" {
		cfg.Data.File = v
	}
	if v := os.Getenv("INSTRUMENT"); v != "" {
		cfg.Data.Instrument = v
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		cfg.Cache.Backend = v
	}
	if v := os.Getenv("CACHE_DIR"); v != "" {
		cfg.Cache.Dir = v
	}
	if v := os.Getenv("CACHE_SQLITE_PATH"); v != "" {
		cfg.Cache.SQLitePath = v
	}
	if v := os.Getenv("CACHE_RETENTION_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil {
			cfg.Cache.RetentionDays = days
		}
	}
	if v := os.Getenv("HISTORY_SQLITE_PATH"); v != "" {
		cfg.History.SQLitePath = v
	}
	if v := os.Getenv("CRON_ANALYSIS"); v != "" {
		cfg.Schedule.AnalysisCron = v
	}
	if v := os.Getenv("CRON_CLEANUP"); v != "" {
		cfg.Schedule.CleanupCron = v
	}

	// Defaults
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "file"
	}
	if cfg.Cache.Dir == "" {
		cfg.Cache.Dir = ".cache/price_cache"
	}
	if cfg.Cache.SQLitePath == "" {
		cfg.Cache.SQLitePath = ".cache/price_cache.db"
	}
	if cfg.Cache.RetentionDays == 0 {
		cfg.Cache.RetentionDays = 30
	}
	if cfg.Schedule.AnalysisCron == "" {
		cfg.Schedule.AnalysisCron = "0 */15 * * * *"
	}
	if cfg.Schedule.CleanupCron == "" {
		cfg.Schedule.CleanupCron = "0 0 0 * * *"
	}

	return cfg, nil
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	if c.Cache.Backend != "file" && c.Cache.Backend != "sqlite" {
		return fmt.Errorf("cache.backend must be \"file\" or \"sqlite\", got %q", c.Cache.Backend)
	}
	if c.Cache.RetentionDays <= 0 {
		return fmt.Errorf("cache.retention_days must be positive")
	}
	for instrument, overrides := range c.Weights {
		for name, w := range overrides {
			if w <= 0 {
				return fmt.Errorf("weights.%s.%s must be positive, got %v", instrument, name, w)
			}
		}
	}
	return nil
}
