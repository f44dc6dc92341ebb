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

package gateway

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuerRoundTrip(t *testing.T) {
	issuer, err := NewTokenIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	token, expiresAt, err := issuer.Issue("drone-001")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	droneID, err := issuer.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "drone-001", droneID)
}

func TestTokenIssuerRequiresSecret(t *testing.T) {
	_, err := NewTokenIssuer("", time.Hour)
	require.Error(t, err)
}

func TestTokenIssuerDefaultTTL(t *testing.T) {
	issuer, err := NewTokenIssuer("test-secret", 0)
	require.NoError(t, err)

	_, expiresAt, err := issuer.Issue("drone-001")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(defaultTokenTTL), expiresAt, 5*time.Second)
}

func TestTokenIssuerRejectsExpired(t *testing.T) {
	issuer, err := NewTokenIssuer("test-secret", -time.Minute)
	require.NoError(t, err)

	token, _, err := issuer.Issue("drone-001")
	require.NoError(t, err)

	_, err = issuer.Validate(token)
	require.Error(t, err)
}

func TestTokenIssuerRejectsWrongSecret(t *testing.T) {
	issuer, err := NewTokenIssuer("secret-a", time.Hour)
	require.NoError(t, err)

	other, err := NewTokenIssuer("secret-b", time.Hour)
	require.NoError(t, err)

	token, _, err := issuer.Issue("drone-001")
	require.NoError(t, err)

	_, err = other.Validate(token)
	require.Error(t, err)
}

func TestTokenIssuerRejectsGarbage(t *testing.T) {
	issuer, err := NewTokenIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	_, err = issuer.Validate("not-a-token")
	require.Error(t, err)
}
