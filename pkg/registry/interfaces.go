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

//go:generate mockgen -destination=mock_registry.go -package=registry github.com/aerolink/dronehub/pkg/registry ConnectionRegistry,ChannelHandle

// Package registry holds the authoritative in-process map from drone
// identity to live connection state, and the heartbeat monitor that sweeps
// it. A drone's live entry exists in exactly one hub instance; cross-instance
// coordination happens on the broker, never here.
package registry

import (
	"time"

	"github.com/aerolink/dronehub/pkg/models"
)

// ChannelHandle is the live bidirectional channel to one drone. Send
// serializes writes internally; Close is idempotent.
type ChannelHandle interface {
	Send(event string, payload interface{}) error
	Close(reason string) error
	RemoteAddr() string
}

// Feature names the per-connection activity flags.
type Feature string

const (
	FeatureTelemetry Feature = "telemetry"
	FeatureCamera    Feature = "camera"
	FeatureMavros    Feature = "mavros"
	FeatureWebRTC    Feature = "webrtc"
)

// Entry is the connection metadata for one registered drone. Entries are
// returned by value; mutation goes through registry methods.
type Entry struct {
	DroneID           string
	Channel           ChannelHandle
	Model             string
	Version           string
	DroneType         models.DroneType
	Capabilities      []string
	WebRTCSupported   bool
	ConnectedAt       time.Time
	LastHeartbeat     time.Time
	ConnectionQuality int
	Activity          models.ActivityFlags
	// LastCommandAt is diagnostic only; it never feeds liveness decisions.
	LastCommandAt time.Time
}

// ConnectionRegistry is the surface the other hub components consume.
type ConnectionRegistry interface {
	// Register creates or replaces the entry for req.DroneID, force-closing
	// any prior channel for the same id.
	Register(req *models.RegisterRequest, ch ChannelHandle) (Entry, error)

	// Disconnect removes the entry if (and only if) it still points at ch.
	// Returns true when an entry was removed.
	Disconnect(droneID string, ch ChannelHandle, reason string) bool

	// Touch refreshes the heartbeat timestamp and recomputes connection
	// quality from the reported metrics.
	Touch(droneID string, metrics *models.HeartbeatMetrics) (quality int, ok bool)

	// MarkActivity flips a per-feature activity flag.
	MarkActivity(droneID string, feature Feature) bool

	// RecordCommand stamps the diagnostic last-command time.
	RecordCommand(droneID string)

	// Get returns a copy of the entry for droneID.
	Get(droneID string) (Entry, bool)

	// IsConnected reports membership without copying the entry.
	IsConnected(droneID string) bool

	// Snapshot copies every live entry.
	Snapshot() []Entry

	// Count returns the number of live entries.
	Count() int
}

// StatusMirror receives best-effort connection state transitions for the
// durable store. *db.AsyncWriter satisfies it.
type StatusMirror interface {
	DroneStatus(droneID string, status models.DroneStatus, quality int)
}

// LifecycleNotifier fans connection state changes out on the broker.
type LifecycleNotifier interface {
	PublishLifecycle(droneID, state, reason string) error
}

// DisconnectListener is invoked after an entry has been removed by channel
// loss or staleness eviction. Replacement by a reconnecting drone does not
// fire it, so in-flight state like a landing session survives a reconnect.
type DisconnectListener func(droneID, reason string)
