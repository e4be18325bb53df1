// Package config holds the thermolog configuration tree and its loader.
package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// EmbeddedConfig holds the content of the configuration file compiled into the binary.
type EmbeddedConfig []byte

// Artifact formats accepted by IngestConfig.Format.
const (
	FormatParquet = "parquet"
	FormatSQLite  = "sqlite"
)

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the logging level (e.g., "INFO", "DEBUG").
	Level string `yaml:"level"`
}

// SystemConfig holds system-wide settings.
type SystemConfig struct {
	Timezone string        `yaml:"timezone"`
	Logging  LoggingConfig `yaml:"logging"`
}

// IngestConfig controls where and how the temperature table is produced.
type IngestConfig struct {
	// BaseDir is the root under which SubDir is created. "~" and $VAR references are expanded.
	BaseDir string `yaml:"base_dir"`
	// SubDir is the fixed output subdirectory.
	SubDir string `yaml:"sub_dir"`
	// DefaultInputs is used when the caller supplies no input pattern.
	DefaultInputs string `yaml:"default_inputs"`
	// Format selects the table backend ("parquet" or "sqlite").
	Format string `yaml:"format"`
	// Compression is the parquet codec (SNAPPY, GZIP, NONE).
	Compression string `yaml:"compression"`
	// MirrorRef names a storage connection the finished artifact is copied to. Empty disables it.
	MirrorRef string `yaml:"mirror_ref"`
	// ExportRef names a database connection the tables are exported to. Empty disables it.
	ExportRef string `yaml:"export_ref"`
	// NoLock disables the flock held on the output directory during a run.
	NoLock bool `yaml:"no_lock"`
	// PublishAttempts bounds the tries of the mirror upload and of the export. Below 1 means one try.
	PublishAttempts int `yaml:"publish_attempts"`
	// PublishBackoffMs is the wait before the second try in milliseconds, doubled for each later one.
	PublishBackoffMs int `yaml:"publish_backoff_ms"`
}

// HistogramConfig holds the defaults for the occupancy histogram filler.
type HistogramConfig struct {
	Bins int     `yaml:"bins"`
	Min  float64 `yaml:"min"`
	Max  float64 `yaml:"max"`
}

// MetricsConfig selects the metric backend.
type MetricsConfig struct {
	// Backend is "prometheus", "otel" or "none".
	Backend string `yaml:"backend"`
	// Textfile, when set, receives the Prometheus registry in text exposition format at job end.
	Textfile string `yaml:"textfile"`
	// Pushgateway, when set, receives the Prometheus registry at job end.
	Pushgateway string `yaml:"pushgateway"`
	// OTLPEndpoint is the collector endpoint used by the "otel" backend.
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	// OTLPProtocol is "grpc" or "http".
	OTLPProtocol string `yaml:"otlp_protocol"`
}

// TracingConfig selects the span exporter.
type TracingConfig struct {
	// Exporter is "none", "otlpgrpc" or "otlphttp".
	Exporter    string `yaml:"exporter"`
	Endpoint    string `yaml:"endpoint"`
	Insecure    bool   `yaml:"insecure"`
	ServiceName string `yaml:"service_name"`
}

// ObservabilityConfig groups metrics and tracing.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
}

// ThermologConfig holds all configuration under the "thermolog" top-level key.
type ThermologConfig struct {
	System        SystemConfig        `yaml:"system"`
	Ingest        IngestConfig        `yaml:"ingest"`
	Histogram     HistogramConfig     `yaml:"histogram"`
	Observability ObservabilityConfig `yaml:"observability"`
	// AdapterConfigs holds named storage and database connections:
	// adapter.storage.<name> and adapter.database.<name>.
	AdapterConfigs map[string]interface{} `yaml:"adapter"`
}

// Config is the root structure for the entire application configuration.
type Config struct {
	Thermolog ThermologConfig `yaml:"thermolog"`
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		Thermolog: ThermologConfig{
			System: SystemConfig{
				Timezone: "UTC",
				Logging:  LoggingConfig{Level: "INFO"},
			},
			Ingest: IngestConfig{
				BaseDir:       "$HOME/Lab/Termometros/Root",
				SubDir:        "temp_root",
				DefaultInputs: "20250819_0800-0800.TXT",
				Format:        FormatParquet,
				Compression:   "SNAPPY",
			},
			Histogram: HistogramConfig{Bins: 12, Min: 0, Max: 12},
			Observability: ObservabilityConfig{
				Metrics: MetricsConfig{Backend: "prometheus", OTLPProtocol: "grpc"},
				Tracing: TracingConfig{Exporter: "none", ServiceName: "thermolog"},
			},
			AdapterConfigs: map[string]interface{}{},
		},
	}
}

// DecodeAdapterConfig decodes adapter.<kind>.<name> into out using the yaml field tags.
func (c *Config) DecodeAdapterConfig(kind, name string, out interface{}) error {
	section, ok := c.Thermolog.AdapterConfigs[kind].(map[string]interface{})
	if !ok {
		return fmt.Errorf("no '%s' adapters configured", kind)
	}
	raw, ok := section[name]
	if !ok {
		return fmt.Errorf("%s adapter '%s' not found in configuration", kind, name)
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "yaml",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder for %s adapter '%s': %w", kind, name, err)
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("failed to decode %s adapter '%s': %w", kind, name, err)
	}
	return nil
}
