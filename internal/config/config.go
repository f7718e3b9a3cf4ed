// Package config resolves tlegen run settings from defaults, an optional
// config file, TLEGEN_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/signalsfoundry/tle-generator/core"
	"github.com/signalsfoundry/tle-generator/internal/logging"
	"github.com/signalsfoundry/tle-generator/internal/observability"
)

// EnvPrefix is prepended to every environment override, e.g. TLEGEN_EPOCH or
// TLEGEN_SOURCE_DSN.
const EnvPrefix = "TLEGEN"

// DefaultEpoch is the epoch stamped on every element set when none is given.
const DefaultEpoch = "2021-12-01T00:00:00Z"

// SourceConfig selects where orbital rows come from.
type SourceConfig struct {
	Kind  string `mapstructure:"kind"`
	Path  string `mapstructure:"path"`
	DSN   string `mapstructure:"dsn"`
	Query string `mapstructure:"query"`
}

// LogConfig mirrors logging.Config for file and env input.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Config is the resolved run configuration.
type Config struct {
	Source SourceConfig `mapstructure:"source"`

	Epoch              string `mapstructure:"epoch"`
	OutputDir          string `mapstructure:"output_dir"`
	Workers            int    `mapstructure:"workers"`
	SpareSlotsPerPlane int    `mapstructure:"spare_slots_per_plane"`
	LaunchNumber       int    `mapstructure:"launch_number"`
	LaunchPiece        string `mapstructure:"launch_piece"`
	ElementSetNumber   int    `mapstructure:"element_set_number"`
	RevolutionNumber   int    `mapstructure:"revolution_number"`

	Verify     bool          `mapstructure:"verify"`
	VerifyStep time.Duration `mapstructure:"verify_step"`

	MetricsTextfile string `mapstructure:"metrics_textfile"`

	Log     LogConfig                   `mapstructure:"log"`
	Tracing observability.TracingConfig `mapstructure:"tracing"`
}

// SetDefaults registers every key so that environment overrides are seen by
// Unmarshal.
func SetDefaults(v *viper.Viper) {
	tracing := observability.DefaultTracingConfig()

	v.SetDefault("source.kind", "csv")
	v.SetDefault("source.path", "")
	v.SetDefault("source.dsn", "")
	v.SetDefault("source.query", "")
	v.SetDefault("epoch", DefaultEpoch)
	v.SetDefault("output_dir", ".")
	v.SetDefault("workers", 0)
	v.SetDefault("spare_slots_per_plane", 0)
	v.SetDefault("launch_number", 1)
	v.SetDefault("launch_piece", "A")
	v.SetDefault("element_set_number", 1)
	v.SetDefault("revolution_number", 1)
	v.SetDefault("verify", false)
	v.SetDefault("verify_step", core.DefaultVerifyStep)
	v.SetDefault("metrics_textfile", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("tracing.enabled", tracing.Enabled)
	v.SetDefault("tracing.service_name", tracing.ServiceName)
	v.SetDefault("tracing.exporter", tracing.Exporter)
	v.SetDefault("tracing.endpoint", tracing.Endpoint)
	v.SetDefault("tracing.sample_ratio", tracing.SampleRatio)
}

// New returns a viper instance with defaults and environment binding applied.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the optional config file into v and decodes the result. Flags
// bound to v before Load take precedence over file and environment values.
func Load(v *viper.Viper, file string) (Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("config file %s not found: %w", file, err)
			}
			return Config{}, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// ParseEpoch accepts RFC 3339 timestamps or bare dates (2006-01-02) and
// returns the instant in UTC.
func ParseEpoch(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid epoch %q: want RFC 3339 or YYYY-MM-DD", s)
}

// CoreConfig builds the immutable generation config.
func (c Config) CoreConfig() (core.Config, error) {
	epoch, err := ParseEpoch(c.Epoch)
	if err != nil {
		return core.Config{}, err
	}
	cfg := core.DefaultConfig(epoch)
	cfg.LaunchNumber = c.LaunchNumber
	cfg.LaunchPiece = c.LaunchPiece
	cfg.ElementSetNumber = c.ElementSetNumber
	cfg.RevolutionNumber = c.RevolutionNumber
	cfg.SpareSlotsPerPlane = c.SpareSlotsPerPlane
	if err := cfg.Validate(); err != nil {
		return core.Config{}, err
	}
	return cfg, nil
}

// LoggingConfig returns the logger settings.
func (c Config) LoggingConfig() logging.Config {
	return logging.Config{Level: c.Log.Level, Format: c.Log.Format}
}
