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

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Global is the process-wide configuration singleton, populated by
// Load.
var Global Config

var once sync.Once

// Load reads path (if non-empty) into Global, falling back to
// Default() when path is empty, applying the FRAMEBUS_NATS_URL
// environment override afterward. Safe to call multiple times; only
// the first call does any work.
func Load(path string) error {
	var err error
	once.Do(func() {
		err = loadInternal(path)
	})
	return err
}

func loadInternal(path string) error {
	Global = Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &Global); err != nil {
			return fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if url := os.Getenv("FRAMEBUS_NATS_URL"); url != "" {
		Global.Transport.NATSURL = url
	}
	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		Global.Tracing.Endpoint = endpoint
	}
	return nil
}
