// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

// Config is the root configuration schema, loaded from a YAML file and
// overridden by environment variables where noted on individual
// fields.
type Config struct {
	Transport TransportConfig `yaml:"transport"`
	Buffer    BufferConfig    `yaml:"buffer"`
	Log       LogConfig       `yaml:"log"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Tracing   TracingConfig   `yaml:"tracing"`
}

// TransportConfig selects and parameterizes the message bus.
type TransportConfig struct {
	// Mode is "embedded" or "nats".
	Mode string `yaml:"mode"`

	// NATSURL is the server URL used when Mode == "nats". Overridden by
	// the FRAMEBUS_NATS_URL environment variable when set.
	NATSURL string `yaml:"nats_url"`
}

// BufferConfig parameterizes the transform buffer.
type BufferConfig struct {
	// MaxTransformHistory is the per-edge sample retention cap.
	MaxTransformHistory int `yaml:"max_transform_history"`

	// SavePath is the directory visualization dumps are written to.
	SavePath string `yaml:"save_path"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// MetricsConfig controls the Prometheus HTTP exposition endpoint.
type MetricsConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// TracingConfig controls the OTLP gRPC trace exporter.
type TracingConfig struct {
	// Endpoint is the OTLP gRPC collector address. Overridden by the
	// OTEL_EXPORTER_OTLP_ENDPOINT environment variable when set.
	Endpoint string `yaml:"otlp_endpoint"`

	// ServiceName is reported as the OTel resource's service.name.
	ServiceName string `yaml:"service_name"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Transport: TransportConfig{Mode: "embedded"},
		Buffer: BufferConfig{
			MaxTransformHistory: 1000,
			SavePath:            "./framebus-visualizations",
		},
		Log:     LogConfig{Level: "info", JSON: true},
		Metrics: MetricsConfig{ListenAddr: ":9090"},
		Tracing: TracingConfig{Endpoint: "127.0.0.1:4317", ServiceName: "framebusd"},
	}
}

// GetMaxTransformHistory is a nil-safe accessor: a nil receiver or a
// non-positive value yields the default of 1000.
func (c *BufferConfig) GetMaxTransformHistory() int {
	if c == nil || c.MaxTransformHistory <= 0 {
		return 1000
	}
	return c.MaxTransformHistory
}
