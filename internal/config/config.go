package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv           = "CAMPAIGN_MONITOR_CONFIG"
	databaseDSNEnv          = "DATABASE_DSN"
	httpAddrEnv             = "HTTP_ADDR"
	autoConfirmThresholdEnv = "AUTO_CONFIRM_THRESHOLD"
	spamThresholdEnv        = "SPAM_THRESHOLD"
	logLevelEnv             = "LOG_LEVEL"
)

// Config holds high-level settings required across the engine.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	HTTP      HTTPConfig      `yaml:"http"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Crawler   CrawlerConfig   `yaml:"crawler"`
	Matching  MatchingConfig  `yaml:"matching"`
	Stats     StatsConfig     `yaml:"stats"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DatabaseConfig describes Postgres connection details. An empty DSN
// switches the engine to its in-memory repositories.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// HTTPConfig describes the operator/user API listener.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// SchedulerConfig defines how often ingestion passes run.
type SchedulerConfig struct {
	Interval time.Duration `yaml:"interval"`
	Timezone string        `yaml:"timezone"`
}

// CrawlerConfig bounds the ingestion fan-out.
type CrawlerConfig struct {
	MaxConcurrentFetches  int           `yaml:"maxConcurrentFetches"`
	ChannelTimeout        time.Duration `yaml:"channelTimeout"`
	MaxArticlesPerChannel int           `yaml:"maxArticlesPerChannel"`
}

// MatchingConfig carries the tunable classification thresholds.
type MatchingConfig struct {
	AutoConfirmThreshold float64 `yaml:"autoConfirmThreshold"`
	SpamThreshold        float64 `yaml:"spamThreshold"`
}

// StatsConfig controls the aggregation cache.
type StatsConfig struct {
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads YAML configuration (if present) and applies environment
// overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(httpAddrEnv); v != "" {
		c.HTTP.Addr = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(autoConfirmThresholdEnv); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			c.Matching.AutoConfirmThreshold = parsed
		} else {
			log.Printf("config: invalid %s=%q, keeping %.2f", autoConfirmThresholdEnv, v, c.Matching.AutoConfirmThreshold)
		}
	}
	if v := os.Getenv(spamThresholdEnv); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			c.Matching.SpamThreshold = parsed
		} else {
			log.Printf("config: invalid %s=%q, keeping %.2f", spamThresholdEnv, v, c.Matching.SpamThreshold)
		}
	}
}

func mergeConfig(base, override Config) Config {
	if override.Database.DSN != "" {
		base.Database = override.Database
	}
	if override.HTTP.Addr != "" {
		base.HTTP = override.HTTP
	}
	if override.Scheduler.Interval > 0 {
		base.Scheduler.Interval = override.Scheduler.Interval
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}
	if override.Crawler.MaxConcurrentFetches > 0 {
		base.Crawler.MaxConcurrentFetches = override.Crawler.MaxConcurrentFetches
	}
	if override.Crawler.ChannelTimeout > 0 {
		base.Crawler.ChannelTimeout = override.Crawler.ChannelTimeout
	}
	if override.Crawler.MaxArticlesPerChannel > 0 {
		base.Crawler.MaxArticlesPerChannel = override.Crawler.MaxArticlesPerChannel
	}
	if override.Matching.AutoConfirmThreshold > 0 {
		base.Matching.AutoConfirmThreshold = override.Matching.AutoConfirmThreshold
	}
	if override.Matching.SpamThreshold > 0 {
		base.Matching.SpamThreshold = override.Matching.SpamThreshold
	}
	if override.Stats.CacheTTL > 0 {
		base.Stats.CacheTTL = override.Stats.CacheTTL
	}
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	return base
}

func defaultConfig() Config {
	return Config{
		Database:  DatabaseConfig{DSN: ""},
		HTTP:      HTTPConfig{Addr: ":8080"},
		Scheduler: SchedulerConfig{Interval: time.Hour, Timezone: "UTC"},
		Crawler: CrawlerConfig{
			MaxConcurrentFetches:  8,
			ChannelTimeout:        20 * time.Second,
			MaxArticlesPerChannel: 50,
		},
		Matching: MatchingConfig{
			AutoConfirmThreshold: 0.8,
			SpamThreshold:        0.2,
		},
		Stats:   StatsConfig{CacheTTL: 5 * time.Minute},
		Logging: LoggingConfig{Level: "info"},
	}
}
