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
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/aerolink/dronehub/pkg/models"
	"github.com/aerolink/dronehub/pkg/webrtc"
)

const (
	// A connection that sends nothing at all for this long is torn down.
	// The heartbeat monitor owns logical staleness; this only bounds dead
	// sockets.
	readTimeout = 90 * time.Second

	registerTimeout = 30 * time.Second

	maxMessageSize = 8 << 20 // camera frames on the websocket fallback
)

var errNotRegisteredYet = errors.New("first event must be drone_register_real")

// droneConn drives one drone's channel from upgrade to teardown.
type droneConn struct {
	srv     *Server
	channel *droneChannel
	log     zerolog.Logger

	// tokenID is the droneId the session token was issued for; empty when
	// token auth is disabled.
	tokenID string

	droneID string
}

func (dc *droneConn) run(ctx context.Context) {
	defer func() {
		_ = dc.channel.Close("connection handler exited")

		if dc.droneID != "" {
			dc.srv.registry.Disconnect(dc.droneID, dc.channel, "connection lost")
		}
	}()

	dc.channel.conn.SetReadLimit(maxMessageSize)

	if err := dc.register(ctx); err != nil {
		dc.log.Warn().Err(err).Str("remote_addr", dc.channel.RemoteAddr()).Msg("Registration failed")

		_ = dc.channel.Send(models.EventRegistrationFailed, map[string]string{"reason": err.Error()})

		return
	}

	dc.readLoop(ctx)
}

// register waits for the drone_register_real event and admits the drone into
// the registry.
func (dc *droneConn) register(ctx context.Context) error {
	if err := dc.channel.conn.SetReadDeadline(time.Now().Add(registerTimeout)); err != nil {
		return fmt.Errorf("failed to set read deadline: %w", err)
	}

	messageType, data, err := dc.channel.conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("failed to read registration: %w", err)
	}

	if messageType != websocket.TextMessage {
		return errNotRegisteredYet
	}

	var envelope models.Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("malformed registration envelope: %w", err)
	}

	if envelope.Event != models.EventDroneRegister {
		return errNotRegisteredYet
	}

	var req models.RegisterRequest
	if err := json.Unmarshal(envelope.Data, &req); err != nil {
		return fmt.Errorf("malformed registration payload: %w", err)
	}

	if dc.tokenID != "" && req.DroneID != dc.tokenID {
		return fmt.Errorf("droneId %q does not match session token", req.DroneID)
	}

	entry, err := dc.srv.registry.Register(&req, dc.channel)
	if err != nil {
		return err
	}

	dc.droneID = entry.DroneID
	dc.log = dc.log.With().Str("drone_id", dc.droneID).Logger()

	if err := dc.channel.Send(models.EventRegistrationSuccess, map[string]interface{}{
		"droneId":    entry.DroneID,
		"droneType":  entry.DroneType,
		"serverTime": time.Now().UnixMilli(),
	}); err != nil {
		return fmt.Errorf("failed to confirm registration: %w", err)
	}

	dc.log.Info().
		Str("model", entry.Model).
		Str("remote_addr", dc.channel.RemoteAddr()).
		Bool("webrtc", entry.WebRTCSupported).
		Msg("Drone registered")

	return nil
}

func (dc *droneConn) readLoop(ctx context.Context) {
	for {
		if err := dc.channel.conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
			return
		}

		messageType, data, err := dc.channel.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				dc.log.Warn().Err(err).Msg("Drone channel closed unexpectedly")
			}

			return
		}

		switch messageType {
		case websocket.BinaryMessage:
			if err := dc.srv.webrtc.HandleBinaryFrame(ctx, dc.droneID, data); err != nil {
				dc.log.Debug().Err(err).Msg("Binary frame dropped")
			}
		case websocket.TextMessage:
			dc.dispatch(ctx, data)
		}
	}
}

// dispatch decodes one envelope and routes it by event kind. Unknown and
// malformed events are dropped at this boundary; they never reach the
// services.
func (dc *droneConn) dispatch(ctx context.Context, data []byte) {
	receivedAt := time.Now()

	var envelope models.Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		dc.log.Warn().Err(err).Msg("Malformed envelope dropped")
		return
	}

	var err error

	switch envelope.Event {
	case models.EventTelemetry:
		err = dc.handleTelemetry(ctx, envelope.Data, receivedAt)
	case models.EventHeartbeat:
		err = dc.handleHeartbeat(envelope.Data)
	case models.EventMavros:
		err = dc.handleMavros(ctx, envelope.Data)
	case models.EventCommandResponse:
		err = dc.handleCommandResponse(envelope.Data)
	case models.EventMissionAck:
		err = dc.handleMissionAck(ctx, envelope.Data)
	case models.EventPrecisionLand:
		err = dc.handleLandingOutput(ctx, envelope.Data)
	case models.EventCameraStreamStart:
		err = dc.handleCameraStreamStart(ctx, envelope.Data)
	case models.EventCameraStreamStop:
		err = dc.handleCameraStreamStop(ctx, envelope.Data)
	case models.EventCameraFrame:
		err = dc.handleCameraFrame(ctx, envelope.Data)
	case models.EventWebRTCOfferReceived, models.EventWebRTCAnswer, models.EventWebRTCICECandidate:
		err = dc.srv.webrtc.HandleDroneSignal(ctx, dc.droneID, envelope.Event, envelope.Data)
	case models.EventWebRTCChannelSetup:
		err = dc.handleChannelSetup(ctx, envelope.Data)
	case models.EventWebRTCConnState:
		err = dc.handleConnectionState(ctx, envelope.Data)
	case models.EventWebRTCTransportReady:
		err = dc.handleTransportReady(ctx, envelope.Data)
	case models.EventDroneRegister:
		// Re-registration over a live channel is ignored; reconnecting
		// drones open a fresh socket.
		dc.log.Debug().Msg("Duplicate registration ignored")
	default:
		dc.log.Debug().Str("event", envelope.Event).Msg("Unknown event dropped")
	}

	if err != nil {
		dc.log.Warn().Err(err).Str("event", envelope.Event).Msg("Event handling failed")
	}
}

func (dc *droneConn) handleTelemetry(ctx context.Context, data json.RawMessage, receivedAt time.Time) error {
	var frame models.TelemetryFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return fmt.Errorf("malformed telemetry: %w", err)
	}

	ack, err := dc.srv.telemetry.HandleFrame(ctx, dc.droneID, &frame, receivedAt)
	if err != nil {
		return err
	}

	return dc.channel.Send(models.EventTelemetryAck, ack)
}

func (dc *droneConn) handleHeartbeat(data json.RawMessage) error {
	var metrics models.HeartbeatMetrics
	if err := json.Unmarshal(data, &metrics); err != nil {
		return fmt.Errorf("malformed heartbeat: %w", err)
	}

	quality, ok := dc.srv.registry.Touch(dc.droneID, &metrics)
	if !ok {
		return fmt.Errorf("heartbeat for unregistered drone %s", dc.droneID)
	}

	dc.log.Debug().Int("quality", quality).Msg("Heartbeat")

	return nil
}

func (dc *droneConn) handleMavros(ctx context.Context, data json.RawMessage) error {
	var entry models.MavrosLogEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return fmt.Errorf("malformed mavros entry: %w", err)
	}

	return dc.srv.telemetry.HandleMavros(ctx, dc.droneID, &entry)
}

func (dc *droneConn) handleCommandResponse(data json.RawMessage) error {
	var result models.DroneCommandResult
	if err := json.Unmarshal(data, &result); err != nil {
		return fmt.Errorf("malformed command response: %w", err)
	}

	return dc.srv.commands.RelayResult(dc.droneID, &result)
}

func (dc *droneConn) handleMissionAck(ctx context.Context, data json.RawMessage) error {
	var ack models.MissionAck
	if err := json.Unmarshal(data, &ack); err != nil {
		return fmt.Errorf("malformed mission ack: %w", err)
	}

	return dc.srv.missions.ApplyAck(ctx, dc.droneID, &ack)
}

func (dc *droneConn) handleLandingOutput(ctx context.Context, data json.RawMessage) error {
	var output models.LandingOutput
	if err := json.Unmarshal(data, &output); err != nil {
		return fmt.Errorf("malformed landing output: %w", err)
	}

	return dc.srv.landing.HandleOutput(ctx, dc.droneID, &output)
}

type cameraStreamPayload struct {
	Camera string              `json:"camera"`
	Config webrtc.StreamConfig `json:"config"`
}

func (dc *droneConn) handleCameraStreamStart(ctx context.Context, data json.RawMessage) error {
	var payload cameraStreamPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("malformed camera stream start: %w", err)
	}

	_, err := dc.srv.webrtc.StreamStart(ctx, dc.droneID, payload.Camera, payload.Config)

	return err
}

func (dc *droneConn) handleCameraStreamStop(ctx context.Context, data json.RawMessage) error {
	var payload cameraStreamPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("malformed camera stream stop: %w", err)
	}

	return dc.srv.webrtc.StreamStop(ctx, dc.droneID, payload.Camera)
}

type cameraFramePayload struct {
	Camera string `json:"camera"`
	Frame  string `json:"frame"` // base64 on the websocket fallback
}

func (dc *droneConn) handleCameraFrame(ctx context.Context, data json.RawMessage) error {
	var payload cameraFramePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("malformed camera frame: %w", err)
	}

	frame, err := base64.StdEncoding.DecodeString(payload.Frame)
	if err != nil {
		return fmt.Errorf("camera frame is not base64: %w", err)
	}

	return dc.srv.webrtc.HandleCameraFrame(ctx, dc.droneID, payload.Camera, frame)
}

func (dc *droneConn) handleChannelSetup(ctx context.Context, data json.RawMessage) error {
	var payload struct {
		Channels []string `json:"channels"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("malformed datachannel setup: %w", err)
	}

	return dc.srv.webrtc.HandleChannelSetup(ctx, dc.droneID, payload.Channels)
}

func (dc *droneConn) handleConnectionState(ctx context.Context, data json.RawMessage) error {
	var payload struct {
		State string `json:"state"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("malformed connection state: %w", err)
	}

	return dc.srv.webrtc.HandleConnectionState(ctx, dc.droneID, payload.State)
}

func (dc *droneConn) handleTransportReady(ctx context.Context, data json.RawMessage) error {
	var payload struct {
		Camera string `json:"camera"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("malformed transport ready: %w", err)
	}

	return dc.srv.webrtc.HandleTransportReady(ctx, dc.droneID, payload.Camera)
}
