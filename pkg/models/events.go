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
)

// Envelope is the framing for every JSON message on a drone channel. Data is
// decoded per event kind at the boundary before dispatch.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Drone-to-hub channel events.
const (
	EventDroneRegister        = "drone_register_real"
	EventTelemetry            = "telemetry_real"
	EventHeartbeat            = "heartbeat_real"
	EventMavros               = "mavros_real"
	EventCommandResponse      = "command_response"
	EventMissionAck           = "mission_ack"
	EventPrecisionLand        = "precision_land_real"
	EventCameraStreamStart    = "camera_stream_start"
	EventCameraStreamStop     = "camera_stream_stop"
	EventCameraFrame          = "camera_frame"
	EventWebRTCOfferReceived  = "webrtc_offer_received"
	EventWebRTCAnswer         = "webrtc_answer"
	EventWebRTCICECandidate   = "webrtc_ice_candidate"
	EventWebRTCChannelSetup   = "webrtc_datachannel_setup"
	EventWebRTCConnState      = "webrtc_connection_state"
	EventWebRTCTransportReady = "webrtc_transport_ready"
)

// Hub-to-drone channel events.
const (
	EventRegistrationSuccess     = "registration_success"
	EventRegistrationFailed      = "registration_failed"
	EventTelemetryAck            = "telemetry_ack"
	EventCommand                 = "command"
	EventPrecisionLandingCommand = "precision_landing_command"
	EventWaypointMission         = "waypoint_mission"
	EventWebRTCRequestOffer      = "webrtc_request_offer"
	EventWebRTCClose             = "webrtc_close"
)

// NewEnvelope marshals payload into an Envelope for the given event kind.
func NewEnvelope(event string, payload interface{}) (*Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Envelope{Event: event, Data: data}, nil
}
