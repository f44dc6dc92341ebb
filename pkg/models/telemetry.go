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
	"time"
)

// TelemetryFrame is one telemetry_real payload as sent by the drone. Field
// names follow the firmware wire format.
type TelemetryFrame struct {
	Timestamp        float64 `json:"timestamp"`
	JetsonTimestamp  float64 `json:"jetsonTimestamp,omitempty"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	AltitudeMSL      float64 `json:"altitude_msl"`
	AltitudeRelative float64 `json:"altitude_relative"`
	Armed            bool    `json:"armed"`
	FlightMode       string  `json:"flight_mode"`
	Connected        bool    `json:"connected"`
	GPSFix           string  `json:"gps_fix"`
	Satellites       int     `json:"satellites"`
	HDOP             float64 `json:"hdop"`
	PositionError    float64 `json:"position_error"`
	Voltage          float64 `json:"voltage"`
	Current          float64 `json:"current"`
	Percentage       float64 `json:"percentage"`
	Roll             float64 `json:"roll"`
	Pitch            float64 `json:"pitch"`
	Yaw              float64 `json:"yaw"`
	VelocityX        float64 `json:"velocity_x"`
	VelocityY        float64 `json:"velocity_y"`
	VelocityZ        float64 `json:"velocity_z"`
	LatencyMs        float64 `json:"latency"`
	TeensyConnected  bool    `json:"teensy_connected"`
	LatchStatus      string  `json:"latch_status"`
	SessionID        string  `json:"sessionId,omitempty"`
}

// EnrichedTelemetry is the hub-side record written to the state cache and
// published on the per-drone telemetry subject.
type EnrichedTelemetry struct {
	DroneID    string         `json:"droneId"`
	DroneType  DroneType      `json:"droneType"`
	Frame      TelemetryFrame `json:"frame"`
	ReceivedAt time.Time      `json:"receivedAt"`
}

// TelemetryAck is returned to the sender with measured round-trip timing.
type TelemetryAck struct {
	ReceivedAt   time.Time `json:"receivedAt"`
	RoundTripMs  float64   `json:"roundTripMs"`
	CacheUpdated bool      `json:"cacheUpdated"`
}

// MavrosLogEntry is one auxiliary firmware log line (mavros_real event).
type MavrosLogEntry struct {
	Message    string    `json:"message"`
	RawMessage string    `json:"rawMessage,omitempty"`
	Source     string    `json:"source,omitempty"`
	Timestamp  float64   `json:"timestamp"`
	SessionID  string    `json:"sessionId,omitempty"`
	ReceivedAt time.Time `json:"receivedAt"`
}
