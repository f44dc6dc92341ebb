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

package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aerolink/dronehub/pkg/logger"
)

var errInvalidDuration = errors.New("invalid duration")

// Duration is a time.Duration that unmarshals from either a duration string
// ("30s") or raw nanoseconds.
type Duration time.Duration

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		// parse numeric as nanoseconds
		*d = Duration(time.Duration(value))
		return nil
	case string:
		dur, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}

		*d = Duration(dur)

		return nil
	default:
		return errInvalidDuration
	}
}

// HubConfig is the top-level configuration for the connection hub.
type HubConfig struct {
	ListenAddr string         `json:"listen_addr"` // e.g., :4005
	PublicURL  string         `json:"public_url,omitempty"`
	NATS       NATSConfig     `json:"nats"`
	Database   *Database      `json:"database,omitempty"`
	Auth       AuthConfig     `json:"auth"`
	Registry   RegistryConfig `json:"registry"`
	WebRTC     WebRTCConfig   `json:"webrtc"`
	Logging    *logger.Config `json:"logging,omitempty"`
}

// NATSConfig points the hub at the shared broker/KV cluster.
type NATSConfig struct {
	URL string `json:"url"` // e.g., nats://127.0.0.1:4222
}

// Database is the durable-store (TimescaleDB/Postgres) connection config.
type Database struct {
	Host               string            `json:"host"`
	Port               int               `json:"port,omitempty"`
	Database           string            `json:"database"`
	Username           string            `json:"username,omitempty"`
	Password           string            `json:"password,omitempty"`
	SSLMode            string            `json:"ssl_mode,omitempty"`
	ApplicationName    string            `json:"application_name,omitempty"`
	MaxConnections     int32             `json:"max_connections,omitempty"`
	ExtraRuntimeParams map[string]string `json:"extra_runtime_params,omitempty"`
}

// AuthConfig covers discovery-handshake session tokens.
type AuthConfig struct {
	JWTSecret string   `json:"jwt_secret"`
	TokenTTL  Duration `json:"token_ttl,omitempty"` // default 24h
}

// RegistryConfig tunes the heartbeat monitor.
type RegistryConfig struct {
	SweepInterval  Duration `json:"sweep_interval,omitempty"`  // default 10s
	StaleThreshold Duration `json:"stale_threshold,omitempty"` // default 30s
}

// WebRTCConfig tunes transport negotiation.
type WebRTCConfig struct {
	ConnectTimeout Duration `json:"connect_timeout,omitempty"`  // default 15s
	FeedStaleAfter Duration `json:"feed_stale_after,omitempty"` // default 60s
	SweepInterval  Duration `json:"sweep_interval,omitempty"`   // default 30s
}
