// Package config provides configuration loading and validation for the
// rangelist CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrInvalidLogLevel  = errors.New("invalid log level")
	ErrInvalidLogFormat = errors.New("invalid log format")
	ErrInvalidSetRatio  = errors.New("set ratio must be within [0, 1]")
	ErrInvalidBenchOps  = errors.New("bench ops must be positive")
	ErrInvalidExporter  = errors.New("invalid telemetry exporter")
)

// Config holds all configuration for the rangelist CLI.
type Config struct {
	Logging       LoggingConfig       `mapstructure:"logging"`
	Render        RenderConfig        `mapstructure:"render"`
	Bench         BenchConfig         `mapstructure:"bench"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RenderConfig holds chart rendering configuration.
type RenderConfig struct {
	Theme string `mapstructure:"theme"`
	Title string `mapstructure:"title"`
}

// BenchConfig holds the synthetic benchmark knobs.
type BenchConfig struct {
	Ops            int     `mapstructure:"ops"`
	Seed           int64   `mapstructure:"seed"`
	MaxPosition    float64 `mapstructure:"max_position"`
	MaxSpan        float64 `mapstructure:"max_span"`
	MaxAmount      float64 `mapstructure:"max_amount"`
	SetRatio       float64 `mapstructure:"set_ratio"`
	HibernateEvery int     `mapstructure:"hibernate_every"`
}

// ObservabilityConfig holds telemetry configuration.
type ObservabilityConfig struct {
	Exporter      string `mapstructure:"exporter"`
	OTLPEndpoint  string `mapstructure:"otlp_endpoint"`
	OTLPInsecure  bool   `mapstructure:"otlp_insecure"`
	MetricsListen string `mapstructure:"metrics_listen"`
}

// LoadConfig loads configuration from file and environment variables. An
// explicit configPath must exist; otherwise rangelist.yaml is searched in
// the working directory and $HOME/.rangelist, and a missing file falls back
// to the defaults.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			viperCfg.AddConfigPath(filepath.Join(home, "."+configName))
		}
	}

	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := validateConfig(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// setDefaults sets default configuration values.
func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.format", DefaultLogFormat)

	viperCfg.SetDefault("render.theme", DefaultRenderTheme)
	viperCfg.SetDefault("render.title", DefaultRenderTitle)

	viperCfg.SetDefault("bench.ops", DefaultBenchOps)
	viperCfg.SetDefault("bench.seed", DefaultBenchSeed)
	viperCfg.SetDefault("bench.max_position", DefaultBenchMaxPosition)
	viperCfg.SetDefault("bench.max_span", DefaultBenchMaxSpan)
	viperCfg.SetDefault("bench.max_amount", DefaultBenchMaxAmount)
	viperCfg.SetDefault("bench.set_ratio", DefaultBenchSetRatio)
	viperCfg.SetDefault("bench.hibernate_every", DefaultBenchHibernateEvery)

	viperCfg.SetDefault("observability.exporter", DefaultExporter)
	viperCfg.SetDefault("observability.otlp_endpoint", "")
	viperCfg.SetDefault("observability.otlp_insecure", false)
	viperCfg.SetDefault("observability.metrics_listen", "")
}

// validateConfig validates the configuration.
func validateConfig(config *Config) error {
	switch config.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, config.Logging.Level)
	}

	switch config.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, config.Logging.Format)
	}

	if config.Bench.SetRatio < 0 || config.Bench.SetRatio > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidSetRatio, config.Bench.SetRatio)
	}

	if config.Bench.Ops <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBenchOps, config.Bench.Ops)
	}

	switch config.Observability.Exporter {
	case "none", "otlp", "prometheus":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidExporter, config.Observability.Exporter)
	}

	return nil
}
