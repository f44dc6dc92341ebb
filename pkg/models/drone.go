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

// DroneType distinguishes physical aircraft from simulator clients.
type DroneType string

const (
	DroneTypeReal      DroneType = "REAL"
	DroneTypeSimulated DroneType = "SIMULATED"
)

// DroneStatus is the durable-store mirror of a drone's connection state.
type DroneStatus string

const (
	DroneStatusConnected    DroneStatus = "connected"
	DroneStatusDisconnected DroneStatus = "disconnected"
	DroneStatusStale        DroneStatus = "stale"
)

// RegisterRequest is the payload of the drone_register_real channel event.
type RegisterRequest struct {
	DroneID      string      `json:"droneId"`
	Model        string      `json:"model"`
	Version      string      `json:"version"`
	DroneType    DroneType   `json:"droneType,omitempty"`
	Capabilities []string    `json:"capabilities"`
	JetsonInfo   *JetsonInfo `json:"jetsonInfo,omitempty"`
}

// JetsonInfo describes the companion computer reported at registration.
type JetsonInfo struct {
	IP              string `json:"ip,omitempty"`
	SerialNumber    string `json:"serialNumber,omitempty"`
	GPUMemoryMB     int    `json:"gpuMemory,omitempty"`
	WebRTCSupported bool   `json:"webrtcSupported,omitempty"`
}

// ActivityFlags records which per-feature streams a connection has exercised.
type ActivityFlags struct {
	Telemetry  bool `json:"telemetry"`
	Camera     bool `json:"camera"`
	MavrosLogs bool `json:"mavrosLogs"`
	WebRTC     bool `json:"webrtc"`
}

// HeartbeatMetrics is the payload of the heartbeat_real channel event. All
// fields are optional; missing sections simply contribute no quality penalty.
type HeartbeatMetrics struct {
	Timestamp float64         `json:"timestamp"`
	Jetson    *JetsonMetrics  `json:"jetsonMetrics,omitempty"`
	Network   *NetworkMetrics `json:"networkMetrics,omitempty"`
}

// JetsonMetrics reports onboard resource pressure.
type JetsonMetrics struct {
	CPUUsage    float64 `json:"cpuUsage"`
	MemoryUsage float64 `json:"memoryUsage"`
	Temperature float64 `json:"temperature"`
	DiskUsage   float64 `json:"diskUsage,omitempty"`
}

// NetworkMetrics reports link quality as measured by the drone.
type NetworkMetrics struct {
	LatencyMs  float64 `json:"latency"`
	PacketLoss float64 `json:"packetLoss"`
	Bandwidth  float64 `json:"bandwidth,omitempty"`
}

// DroneHealth is the per-drone entry of the health surface.
type DroneHealth struct {
	DroneID           string    `json:"droneId"`
	Connected         bool      `json:"connected"`
	Healthy           bool      `json:"healthy"`
	Stale             bool      `json:"stale"`
	ConnectionQuality int       `json:"connectionQuality"`
	LastHeartbeat     time.Time `json:"lastHeartbeat"`
}
