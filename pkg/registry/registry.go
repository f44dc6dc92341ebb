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

package registry

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/aerolink/dronehub/pkg/logger"
	"github.com/aerolink/dronehub/pkg/models"
)

var (
	// ErrMissingDroneID is returned for registrations without an identity.
	ErrMissingDroneID = errors.New("registration missing droneId")
	// ErrMissingModel is returned for registrations without a model field.
	ErrMissingModel = errors.New("registration missing model")
	// ErrInvalidDroneID is returned when the droneId carries characters
	// that would not survive the broker subject mapping.
	ErrInvalidDroneID = errors.New("droneId contains reserved characters")
)

const (
	// ReasonReplaced closes the old channel when the same drone registers again.
	ReasonReplaced = "replaced by new registration"
	// ReasonStale closes channels evicted by the heartbeat monitor.
	ReasonStale = "stale heartbeat"
)

// Registry is the in-process connection table. It is constructed once and
// injected into every component that needs it; there is no package-level
// instance.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Entry

	mirror    StatusMirror
	notifier  LifecycleNotifier
	listeners []DisconnectListener
	log       logger.Logger
}

// New creates an empty registry. mirror and notifier may be nil.
func New(mirror StatusMirror, notifier LifecycleNotifier, log logger.Logger) *Registry {
	return &Registry{
		entries:  make(map[string]*Entry),
		mirror:   mirror,
		notifier: notifier,
		log:      log,
	}
}

// OnDisconnect adds a listener called after any entry removal. Must be wired
// before the hub starts accepting connections.
func (r *Registry) OnDisconnect(fn DisconnectListener) {
	r.listeners = append(r.listeners, fn)
}

func (r *Registry) Register(req *models.RegisterRequest, ch ChannelHandle) (Entry, error) {
	if req == nil || req.DroneID == "" {
		return Entry{}, ErrMissingDroneID
	}

	if req.Model == "" {
		return Entry{}, ErrMissingModel
	}

	// The id doubles as a broker subject token; reject ids the subject
	// builders would rewrite, otherwise commands address a token the
	// registry does not know.
	if strings.ContainsAny(req.DroneID, ".*> ") {
		return Entry{}, ErrInvalidDroneID
	}

	droneType := req.DroneType
	if droneType == "" {
		droneType = models.DroneTypeReal
	}

	now := time.Now()

	entry := &Entry{
		DroneID:           req.DroneID,
		Channel:           ch,
		Model:             req.Model,
		Version:           req.Version,
		DroneType:         droneType,
		Capabilities:      append([]string(nil), req.Capabilities...),
		ConnectedAt:       now,
		LastHeartbeat:     now,
		ConnectionQuality: maxQuality,
	}

	if req.JetsonInfo != nil {
		entry.WebRTCSupported = req.JetsonInfo.WebRTCSupported
	}

	r.mu.Lock()
	prev := r.entries[req.DroneID]
	r.entries[req.DroneID] = entry
	r.mu.Unlock()

	if prev != nil && prev.Channel != nil && prev.Channel != ch {
		if err := prev.Channel.Close(ReasonReplaced); err != nil {
			r.log.Debug().Err(err).Str("drone_id", req.DroneID).Msg("Error closing replaced channel")
		}
	}

	r.log.Info().
		Str("drone_id", req.DroneID).
		Str("model", req.Model).
		Str("drone_type", string(droneType)).
		Bool("replaced", prev != nil).
		Msg("Drone registered")

	r.mirrorStatus(req.DroneID, models.DroneStatusConnected, maxQuality)
	r.notifyLifecycle(req.DroneID, "connected", "")

	return *entry, nil
}

func (r *Registry) Disconnect(droneID string, ch ChannelHandle, reason string) bool {
	r.mu.Lock()

	entry, exists := r.entries[droneID]
	if !exists || (ch != nil && entry.Channel != ch) {
		// The id has already been re-registered on another channel; the
		// closing connection no longer owns the entry.
		r.mu.Unlock()
		return false
	}

	delete(r.entries, droneID)
	r.mu.Unlock()

	r.log.Info().
		Str("drone_id", droneID).
		Str("reason", reason).
		Msg("Drone disconnected")

	r.mirrorStatus(droneID, models.DroneStatusDisconnected, 0)
	r.notifyLifecycle(droneID, "disconnected", reason)
	r.fireDisconnect(droneID, reason)

	return true
}

func (r *Registry) Touch(droneID string, metrics *models.HeartbeatMetrics) (int, bool) {
	r.mu.Lock()

	entry, exists := r.entries[droneID]
	if !exists {
		r.mu.Unlock()
		return 0, false
	}

	now := time.Now()
	gap := now.Sub(entry.LastHeartbeat)
	entry.LastHeartbeat = now
	entry.ConnectionQuality = computeQuality(gap, metrics)
	quality := entry.ConnectionQuality

	r.mu.Unlock()

	return quality, true
}

func (r *Registry) MarkActivity(droneID string, feature Feature) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.entries[droneID]
	if !exists {
		return false
	}

	switch feature {
	case FeatureTelemetry:
		entry.Activity.Telemetry = true
	case FeatureCamera:
		entry.Activity.Camera = true
	case FeatureMavros:
		entry.Activity.MavrosLogs = true
	case FeatureWebRTC:
		entry.Activity.WebRTC = true
	}

	return true
}

func (r *Registry) RecordCommand(droneID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, exists := r.entries[droneID]; exists {
		entry.LastCommandAt = time.Now()
	}
}

func (r *Registry) Get(droneID string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.entries[droneID]
	if !exists {
		return Entry{}, false
	}

	return *entry, true
}

func (r *Registry) IsConnected(droneID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.entries[droneID]

	return exists
}

func (r *Registry) Snapshot() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]Entry, 0, len(r.entries))
	for _, entry := range r.entries {
		entries = append(entries, *entry)
	}

	return entries
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries)
}

// evictStale removes every entry whose heartbeat is older than threshold and
// returns them for the monitor to close.
func (r *Registry) evictStale(threshold time.Time) []Entry {
	r.mu.Lock()

	var stale []Entry

	for id, entry := range r.entries {
		if entry.LastHeartbeat.Before(threshold) {
			stale = append(stale, *entry)
			delete(r.entries, id)
		}
	}

	r.mu.Unlock()

	for i := range stale {
		r.mirrorStatus(stale[i].DroneID, models.DroneStatusStale, stale[i].ConnectionQuality)
		r.notifyLifecycle(stale[i].DroneID, "stale", ReasonStale)
		r.fireDisconnect(stale[i].DroneID, ReasonStale)
	}

	return stale
}

func (r *Registry) mirrorStatus(droneID string, status models.DroneStatus, quality int) {
	if r.mirror != nil {
		r.mirror.DroneStatus(droneID, status, quality)
	}
}

func (r *Registry) notifyLifecycle(droneID, state, reason string) {
	if r.notifier == nil {
		return
	}

	if err := r.notifier.PublishLifecycle(droneID, state, reason); err != nil {
		r.log.Warn().Err(err).Str("drone_id", droneID).Msg("Failed to publish lifecycle event")
	}
}

func (r *Registry) fireDisconnect(droneID, reason string) {
	for _, fn := range r.listeners {
		fn(droneID, reason)
	}
}

var _ ConnectionRegistry = (*Registry)(nil)
