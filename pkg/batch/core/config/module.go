package config

import "go.uber.org/fx"

// NewLoggingConfigProvider exposes the logging section on its own.
func NewLoggingConfigProvider(cfg *Config) *LoggingConfig {
	return &cfg.Paddock.System.Logging
}

// NewPipelineConfigProvider exposes the pipeline section on its own.
func NewPipelineConfigProvider(cfg *Config) *PipelineConfig {
	return &cfg.Paddock.Pipeline
}

// NewOutputConfigProvider exposes the output section on its own.
func NewOutputConfigProvider(cfg *Config) *OutputConfig {
	return &cfg.Paddock.Output
}

// Module provides the configuration sections to Fx. *Config itself is supplied by the caller.
var Module = fx.Options(
	fx.Provide(NewLoggingConfigProvider),
	fx.Provide(NewPipelineConfigProvider),
	fx.Provide(NewOutputConfigProvider),
	fx.Provide(func() EnvironmentExpander {
		return NewOsEnvironmentExpander()
	}),
)
