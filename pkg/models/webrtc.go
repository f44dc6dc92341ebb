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
	"time"
)

// WebRTCSessionStatus is the transport-negotiation FSM state.
type WebRTCSessionStatus string

const (
	WebRTCStatusNegotiating WebRTCSessionStatus = "negotiating"
	WebRTCStatusConnected   WebRTCSessionStatus = "connected"
	WebRTCStatusFailed      WebRTCSessionStatus = "failed"
	WebRTCStatusClosed      WebRTCSessionStatus = "closed"
)

// CameraTransport is the recommended delivery mechanism for a camera feed.
type CameraTransport string

const (
	TransportDataChannel CameraTransport = "webrtc_datachannel"
	TransportWebSocket   CameraTransport = "websocket"
)

// WebRTCSession is the signaling bookkeeping for one negotiated transport.
type WebRTCSession struct {
	SessionID    string              `json:"sessionId"`
	DroneID      string              `json:"droneId"`
	Status       WebRTCSessionStatus `json:"status"`
	DataChannels []string            `json:"dataChannels,omitempty"`
	CreatedAt    time.Time           `json:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt"`
	Quality      *WebRTCQuality      `json:"quality,omitempty"`
}

// WebRTCQuality is the latest quality snapshot for a connected session.
type WebRTCQuality struct {
	BitrateKbps   float64 `json:"bitrateKbps"`
	FPS           float64 `json:"fps"`
	LatencyMs     float64 `json:"latencyMs"`
	PacketLoss    float64 `json:"packetLoss"`
	FramesPassed  uint64  `json:"framesPassed"`
	FramesDropped uint64  `json:"framesDropped"`
}

// SignalPayload carries an opaque SDP or ICE body between peers. The hub
// relays it without inspection.
type SignalPayload struct {
	SessionID string          `json:"sessionId"`
	DroneID   string          `json:"droneId,omitempty"`
	Body      json.RawMessage `json:"body"`
}

// CameraStream is the per-camera stream status record.
type CameraStream struct {
	DroneID     string          `json:"droneId"`
	Camera      string          `json:"camera"`
	Resolution  string          `json:"resolution,omitempty"`
	FPS         int             `json:"fps,omitempty"`
	Quality     string          `json:"quality,omitempty"`
	Transport   CameraTransport `json:"transport"`
	Active      bool            `json:"active"`
	StartedAt   time.Time       `json:"startedAt"`
	LastFrameAt time.Time       `json:"lastFrameAt"`
	FrameCount  uint64          `json:"frameCount"`
}
