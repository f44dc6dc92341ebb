/*
 * Copyright 2026 AeroLink Systems Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package config loads the hub configuration from a JSON file with
// environment overrides for the settings that differ per deployment.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/aerolink/dronehub/pkg/models"
)

const (
	defaultListenAddr = ":4005"
	defaultNATSURL    = "nats://127.0.0.1:4222"

	// Env override names. Secrets come from the environment so config
	// files stay committable.
	envListenAddr = "DRONEHUB_LISTEN_ADDR"
	envPublicURL  = "DRONEHUB_PUBLIC_URL"
	envNATSURL    = "DRONEHUB_NATS_URL"
	envJWTSecret  = "DRONEHUB_JWT_SECRET"
	envDBHost     = "DRONEHUB_DB_HOST"
	envDBPassword = "DRONEHUB_DB_PASSWORD"
)

var errConfigPathRequired = errors.New("config path is required")

// Load reads the hub configuration from path, applies environment
// overrides, and fills defaults.
func Load(path string) (*models.HubConfig, error) {
	if path == "" {
		return nil, errConfigPathRequired
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	var cfg models.HubConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config from '%s': %w", path, err)
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	return &cfg, nil
}

func applyEnvOverrides(cfg *models.HubConfig) {
	if v := os.Getenv(envListenAddr); v != "" {
		cfg.ListenAddr = v
	}

	if v := os.Getenv(envPublicURL); v != "" {
		cfg.PublicURL = v
	}

	if v := os.Getenv(envNATSURL); v != "" {
		cfg.NATS.URL = v
	}

	if v := os.Getenv(envJWTSecret); v != "" {
		cfg.Auth.JWTSecret = v
	}

	if cfg.Database != nil {
		if v := os.Getenv(envDBHost); v != "" {
			cfg.Database.Host = v
		}

		if v := os.Getenv(envDBPassword); v != "" {
			cfg.Database.Password = v
		}
	}
}

func applyDefaults(cfg *models.HubConfig) {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = defaultListenAddr
	}

	if cfg.NATS.URL == "" {
		cfg.NATS.URL = defaultNATSURL
	}
}
