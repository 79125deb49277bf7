package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Environment string
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	// logging
	LogLevel    string `toml:"log_level"`
	LogsPath    string `toml:"logs_path"`
	LogToStdout bool   `toml:"log_to_stdout"`
	// sentry
	SentryEnabled bool `toml:"sentry_enabled"`
	// postgres
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`
	// prometheus metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	Agent AgentConfig `toml:"agent"`
}

// AgentConfig holds the settings for the pull-up counter agent: the
// ultrasonic sensor bridge, the rep detector thresholds, the backend
// increment endpoint and the link monitor.
type AgentConfig struct {
	// sensor
	SensorAddr     string  `toml:"sensor_addr"`
	SensorMaxCm    float64 `toml:"sensor_max_cm"`
	PollIntervalMs int     `toml:"poll_interval_ms"`
	// detector
	TriggerCm  float64 `toml:"trigger_cm"`
	ReleaseCm  float64 `toml:"release_cm"`
	DebounceMs int     `toml:"debounce_ms"`
	// reporter
	IncrementEndpoint string `toml:"increment_endpoint"`
	ReportTimeoutMs   int    `toml:"report_timeout_ms"`
	// link monitor
	LinkProbeAddr       string `toml:"link_probe_addr"`
	LinkMaxAttempts     int    `toml:"link_max_attempts"`
	LinkRetryDelayMs    int    `toml:"link_retry_delay_ms"`
	LinkCheckIntervalMs int    `toml:"link_check_interval_ms"`
	// indicator
	LedPath         string `toml:"led_path"`
	AliveIntervalMs int    `toml:"alive_interval_ms"`
}

func (ac AgentConfig) PollInterval() time.Duration {
	return time.Duration(ac.PollIntervalMs) * time.Millisecond
}

func (ac AgentConfig) Debounce() time.Duration {
	return time.Duration(ac.DebounceMs) * time.Millisecond
}

func (ac AgentConfig) ReportTimeout() time.Duration {
	return time.Duration(ac.ReportTimeoutMs) * time.Millisecond
}

func (ac AgentConfig) LinkRetryDelay() time.Duration {
	return time.Duration(ac.LinkRetryDelayMs) * time.Millisecond
}

func (ac AgentConfig) LinkCheckInterval() time.Duration {
	return time.Duration(ac.LinkCheckIntervalMs) * time.Millisecond
}

func (ac AgentConfig) AliveInterval() time.Duration {
	return time.Duration(ac.AliveIntervalMs) * time.Millisecond
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

func Load(env, path string) (*Config, error) {
	var tomlCfg Toml
	if _, err := toml.DecodeFile(path, &tomlCfg); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}

	cfg, err := tomlCfg.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("config for env %s is empty", env)
	}

	cfg.Environment = env
	return cfg, nil
}
