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
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerolink/dronehub/pkg/logger"
	"github.com/aerolink/dronehub/pkg/models"
	"github.com/aerolink/dronehub/pkg/registry"
)

type connFixture struct {
	srv       *Server
	reg       *registry.Registry
	telemetry *fakeTelemetry
	commands  *fakeCommands
	missions  *fakeMissions
	landing   *fakeLanding
	webrtc    *fakeWebRTC
	ts        *httptest.Server
}

func newConnFixture(t *testing.T, tokens *TokenIssuer) *connFixture {
	t.Helper()

	f := &connFixture{
		reg:       registry.New(nil, nil, logger.NewTestLogger()),
		telemetry: &fakeTelemetry{},
		commands:  &fakeCommands{},
		missions:  &fakeMissions{},
		landing:   &fakeLanding{},
		webrtc:    &fakeWebRTC{},
	}

	cfg := &models.HubConfig{ListenAddr: ":4005"}

	srv, err := NewServer(cfg, f.reg, Services{
		Telemetry: f.telemetry,
		Commands:  f.commands,
		Missions:  f.missions,
		Landing:   f.landing,
		WebRTC:    f.webrtc,
	}, tokens, 30*time.Second, logger.NewTestLogger())
	require.NoError(t, err)

	f.srv = srv
	f.ts = httptest.NewServer(srv.Handler())
	t.Cleanup(f.ts.Close)

	return f
}

func (f *connFixture) dial(t *testing.T, token string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(f.ts.URL, "http") + "/drone/ws"
	if token != "" {
		url += "?token=" + token
	}

	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func sendEvent(t *testing.T, conn *websocket.Conn, event string, payload interface{}) {
	t.Helper()

	envelope, err := models.NewEnvelope(event, payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(envelope))
}

func readEvent(t *testing.T, conn *websocket.Conn) models.Envelope {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var envelope models.Envelope
	require.NoError(t, conn.ReadJSON(&envelope))

	return envelope
}

func registerDrone(t *testing.T, f *connFixture, conn *websocket.Conn, droneID string) {
	t.Helper()

	sendEvent(t, conn, models.EventDroneRegister, &models.RegisterRequest{
		DroneID: droneID,
		Model:   "X500",
		Version: "1.2.0",
	})

	envelope := readEvent(t, conn)
	require.Equal(t, models.EventRegistrationSuccess, envelope.Event)
	require.True(t, f.reg.IsConnected(droneID))
}

func TestDroneRegistrationFlow(t *testing.T) {
	f := newConnFixture(t, nil)

	conn := f.dial(t, "")
	sendEvent(t, conn, models.EventDroneRegister, &models.RegisterRequest{
		DroneID:    "drone-001",
		Model:      "X500",
		Version:    "1.2.0",
		JetsonInfo: &models.JetsonInfo{WebRTCSupported: true},
	})

	envelope := readEvent(t, conn)
	require.Equal(t, models.EventRegistrationSuccess, envelope.Event)

	var payload struct {
		DroneID    string `json:"droneId"`
		ServerTime int64  `json:"serverTime"`
	}
	require.NoError(t, json.Unmarshal(envelope.Data, &payload))
	assert.Equal(t, "drone-001", payload.DroneID)
	assert.NotZero(t, payload.ServerTime)

	entry, ok := f.reg.Get("drone-001")
	require.True(t, ok)
	assert.True(t, entry.WebRTCSupported)
}

func TestRegistrationRequiresRegisterFirst(t *testing.T) {
	f := newConnFixture(t, nil)

	conn := f.dial(t, "")
	sendEvent(t, conn, models.EventTelemetry, &models.TelemetryFrame{Latitude: 47.39})

	envelope := readEvent(t, conn)
	assert.Equal(t, models.EventRegistrationFailed, envelope.Event)
	assert.Zero(t, f.reg.Count())
}

func TestTelemetryAckRoundTrip(t *testing.T) {
	f := newConnFixture(t, nil)

	conn := f.dial(t, "")
	registerDrone(t, f, conn, "drone-001")

	sendEvent(t, conn, models.EventTelemetry, &models.TelemetryFrame{
		Latitude:   47.3977419,
		Longitude:  8.5455938,
		Percentage: 87.5,
	})

	envelope := readEvent(t, conn)
	require.Equal(t, models.EventTelemetryAck, envelope.Event)

	var ack models.TelemetryAck
	require.NoError(t, json.Unmarshal(envelope.Data, &ack))
	assert.True(t, ack.CacheUpdated)

	assert.Equal(t, 1, f.telemetry.frameCount())
}

func TestHeartbeatRefreshesEntry(t *testing.T) {
	f := newConnFixture(t, nil)

	conn := f.dial(t, "")
	registerDrone(t, f, conn, "drone-001")

	before, ok := f.reg.Get("drone-001")
	require.True(t, ok)

	time.Sleep(10 * time.Millisecond)
	sendEvent(t, conn, models.EventHeartbeat, &models.HeartbeatMetrics{})

	require.Eventually(t, func() bool {
		entry, ok := f.reg.Get("drone-001")
		return ok && entry.LastHeartbeat.After(before.LastHeartbeat)
	}, 2*time.Second, 10*time.Millisecond)
}

func TestCommandResponseRelayed(t *testing.T) {
	f := newConnFixture(t, nil)

	conn := f.dial(t, "")
	registerDrone(t, f, conn, "drone-001")

	sendEvent(t, conn, models.EventCommandResponse, &models.DroneCommandResult{
		CommandID: "cmd-1",
		Command:   "takeoff",
		Result:    "success",
		Status:    "executed",
	})

	require.Eventually(t, func() bool {
		return len(f.commands.relayedResults()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, "cmd-1", f.commands.relayedResults()[0].CommandID)
}

func TestMissionAckForwarded(t *testing.T) {
	f := newConnFixture(t, nil)

	conn := f.dial(t, "")
	registerDrone(t, f, conn, "drone-001")

	sendEvent(t, conn, models.EventMissionAck, &models.MissionAck{
		MissionID: "mission-1",
		Status:    models.MissionStatusStarted,
	})

	require.Eventually(t, func() bool {
		return f.missions.ackCount() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestBinaryFrameRouted(t *testing.T) {
	f := newConnFixture(t, nil)

	conn := f.dial(t, "")
	registerDrone(t, f, conn, "drone-001")

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte{0x12, 0x34, 0x56, 0x78}))

	require.Eventually(t, func() bool {
		return f.webrtc.frameCount() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestUnknownEventIgnored(t *testing.T) {
	f := newConnFixture(t, nil)

	conn := f.dial(t, "")
	registerDrone(t, f, conn, "drone-001")

	sendEvent(t, conn, "made_up_event", map[string]string{"x": "y"})

	// Channel survives; a later telemetry frame is still acked.
	sendEvent(t, conn, models.EventTelemetry, &models.TelemetryFrame{})
	envelope := readEvent(t, conn)
	assert.Equal(t, models.EventTelemetryAck, envelope.Event)
}

func TestDisconnectRemovesEntry(t *testing.T) {
	f := newConnFixture(t, nil)

	conn := f.dial(t, "")
	registerDrone(t, f, conn, "drone-001")

	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool {
		return !f.reg.IsConnected("drone-001")
	}, 2*time.Second, 10*time.Millisecond)
}

func TestTokenIdentityMustMatch(t *testing.T) {
	issuer, err := NewTokenIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	f := newConnFixture(t, issuer)

	token, _, err := issuer.Issue("drone-001")
	require.NoError(t, err)

	conn := f.dial(t, token)
	sendEvent(t, conn, models.EventDroneRegister, &models.RegisterRequest{
		DroneID: "drone-002",
		Model:   "X500",
	})

	envelope := readEvent(t, conn)
	assert.Equal(t, models.EventRegistrationFailed, envelope.Event)
	assert.Zero(t, f.reg.Count())
}

func TestReconnectReplacesChannel(t *testing.T) {
	f := newConnFixture(t, nil)

	first := f.dial(t, "")
	registerDrone(t, f, first, "drone-001")

	second := f.dial(t, "")
	registerDrone(t, f, second, "drone-001")

	// The first channel is force-closed by the replacement; its next read
	// fails.
	require.NoError(t, first.SetReadDeadline(time.Now().Add(2*time.Second)))

	_, _, err := first.ReadMessage()
	require.Error(t, err)

	assert.Equal(t, 1, f.reg.Count())
	assert.True(t, f.reg.IsConnected("drone-001"))
}
