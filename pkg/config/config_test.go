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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "hub.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `{
		"listen_addr": ":9005",
		"public_url": "https://hub.example.com",
		"nats": {"url": "nats://broker:4222"},
		"database": {"host": "db", "database": "dronehub", "username": "hub"},
		"auth": {"jwt_secret": "s3cret", "token_ttl": "12h"},
		"registry": {"sweep_interval": "10s", "stale_threshold": "30s"},
		"webrtc": {"connect_timeout": "15s", "feed_stale_after": "60s"}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9005", cfg.ListenAddr)
	assert.Equal(t, "https://hub.example.com", cfg.PublicURL)
	assert.Equal(t, "nats://broker:4222", cfg.NATS.URL)
	require.NotNil(t, cfg.Database)
	assert.Equal(t, "db", cfg.Database.Host)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, 12*time.Hour, cfg.Auth.TokenTTL.Duration())
	assert.Equal(t, 10*time.Second, cfg.Registry.SweepInterval.Duration())
	assert.Equal(t, 60*time.Second, cfg.WebRTC.FeedStaleAfter.Duration())
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `{}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, defaultListenAddr, cfg.ListenAddr)
	assert.Equal(t, defaultNATSURL, cfg.NATS.URL)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(envNATSURL, "nats://override:4222")
	t.Setenv(envJWTSecret, "from-env")
	t.Setenv(envListenAddr, ":7000")

	path := writeConfig(t, `{
		"listen_addr": ":9005",
		"nats": {"url": "nats://file:4222"},
		"auth": {"jwt_secret": "from-file"}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.ListenAddr)
	assert.Equal(t, "nats://override:4222", cfg.NATS.URL)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
}

func TestLoadDatabasePasswordFromEnv(t *testing.T) {
	t.Setenv(envDBPassword, "pgpass")

	path := writeConfig(t, `{"database": {"host": "db", "database": "dronehub"}}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Database)
	assert.Equal(t, "pgpass", cfg.Database.Password)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestLoadMalformedJSON(t *testing.T) {
	path := writeConfig(t, `{not json`)

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadEmptyPath(t *testing.T) {
	_, err := Load("")
	require.Error(t, err)
}
