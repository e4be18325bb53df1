package config

import "go.uber.org/fx"

// NewIngestConfigProvider exposes the ingest section to components that need nothing else.
func NewIngestConfigProvider(cfg *Config) *IngestConfig {
	return &cfg.Thermolog.Ingest
}

// NewObservabilityConfigProvider exposes the observability section.
func NewObservabilityConfigProvider(cfg *Config) *ObservabilityConfig {
	return &cfg.Thermolog.Observability
}

// Module provides configuration sections and the EnvironmentExpander.
// The *Config itself is supplied by the caller after LoadConfig.
var Module = fx.Options(
	fx.Provide(NewIngestConfigProvider),
	fx.Provide(NewObservabilityConfigProvider),
	fx.Provide(func() EnvironmentExpander {
		return NewOsEnvironmentExpander()
	}),
)
