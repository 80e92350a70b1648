package config

import "time"

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Tools:     DefaultToolsConfig(),
		Log:       DefaultLogConfig(),
		Telemetry: DefaultTelemetryConfig(),
	}
}

// DefaultToolsConfig returns the default tool configuration.
func DefaultToolsConfig() ToolsConfig {
	return ToolsConfig{
		Leonardo: DefaultLeonardoConfig(),
	}
}

// DefaultLeonardoConfig returns the default Leonardo client configuration.
func DefaultLeonardoConfig() LeonardoConfig {
	return LeonardoConfig{
		APIKey:      "",
		BaseURL:     "",
		Timeout:     60 * time.Second,
		PollTimeout: 60 * time.Second,
	}
}

// DefaultLogConfig returns the default logging configuration.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "json",
		OutputPaths:      []string{"stdout"},
		EnableCaller:     true,
		EnableStacktrace: false,
	}
}

// DefaultTelemetryConfig returns the default telemetry configuration.
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "leoflow",
		SampleRate:   0.1,
	}
}
