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

// Package telemetry validates and enriches inbound telemetry, keeps the
// short-TTL state cache current and fans live updates out on the broker.
// Durable archiving is strictly best-effort; a storage failure never touches
// the real-time path.
package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aerolink/dronehub/pkg/kv"
	"github.com/aerolink/dronehub/pkg/logger"
	"github.com/aerolink/dronehub/pkg/models"
	"github.com/aerolink/dronehub/pkg/natsutil"
	"github.com/aerolink/dronehub/pkg/registry"
)

// ErrNotRegistered rejects frames from drones outside the registry.
var ErrNotRegistered = errors.New("drone not registered")

const mavrosBufferCap = 500

// Archiver is the fire-and-forget durable path. *db.AsyncWriter satisfies it.
type Archiver interface {
	Telemetry(record *models.EnrichedTelemetry)
}

// Ingest processes telemetry_real and mavros_real events.
type Ingest struct {
	registry registry.ConnectionRegistry
	cache    kv.KVStore
	pub      *natsutil.EventPublisher
	archiver Archiver
	log      logger.Logger
}

// NewIngest wires the ingest path. archiver may be nil when no durable store
// is configured.
func NewIngest(reg registry.ConnectionRegistry, cache kv.KVStore, pub *natsutil.EventPublisher, archiver Archiver, log logger.Logger) *Ingest {
	return &Ingest{
		registry: reg,
		cache:    cache,
		pub:      pub,
		archiver: archiver,
		log:      log,
	}
}

func latestKey(droneID string) string {
	return droneID + ".latest"
}

func mavrosKey(droneID string) string {
	return droneID + ".mavros"
}

// HandleFrame ingests one telemetry frame. receivedAt is stamped by the
// channel layer on arrival so the ack carries a real round-trip measure.
func (i *Ingest) HandleFrame(ctx context.Context, droneID string, frame *models.TelemetryFrame, receivedAt time.Time) (*models.TelemetryAck, error) {
	entry, ok := i.registry.Get(droneID)
	if !ok {
		i.log.Warn().Str("drone_id", droneID).Msg("Telemetry from unregistered drone rejected")
		return nil, ErrNotRegistered
	}

	i.registry.MarkActivity(droneID, registry.FeatureTelemetry)

	record := &models.EnrichedTelemetry{
		DroneID:    droneID,
		DroneType:  entry.DroneType,
		Frame:      *frame,
		ReceivedAt: receivedAt,
	}

	cacheUpdated := true

	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal telemetry record: %w", err)
	}

	if err := i.cache.Put(ctx, latestKey(droneID), data); err != nil {
		// Fail open: live fan-out and the ack still happen.
		cacheUpdated = false
		i.log.Warn().Err(err).Str("drone_id", droneID).Msg("Failed to cache telemetry")
	}

	if err := i.pub.PublishTelemetry(droneID, record); err != nil {
		i.log.Warn().Err(err).Str("drone_id", droneID).Msg("Failed to publish telemetry update")
	}

	if i.archiver != nil {
		i.archiver.Telemetry(record)
	}

	return &models.TelemetryAck{
		ReceivedAt:   receivedAt,
		RoundTripMs:  float64(time.Since(receivedAt).Microseconds()) / 1000.0,
		CacheUpdated: cacheUpdated,
	}, nil
}

// HandleMavros appends one auxiliary log line to the drone's bounded buffer
// and republishes it live.
func (i *Ingest) HandleMavros(ctx context.Context, droneID string, entry *models.MavrosLogEntry) error {
	if !i.registry.IsConnected(droneID) {
		return ErrNotRegistered
	}

	i.registry.MarkActivity(droneID, registry.FeatureMavros)

	if entry.ReceivedAt.IsZero() {
		entry.ReceivedAt = time.Now()
	}

	buffer, err := i.MavrosBuffer(ctx, droneID)
	if err != nil {
		i.log.Warn().Err(err).Str("drone_id", droneID).Msg("Failed to load mavros buffer")

		buffer = nil
	}

	buffer = append(buffer, *entry)
	if len(buffer) > mavrosBufferCap {
		buffer = buffer[len(buffer)-mavrosBufferCap:]
	}

	data, err := json.Marshal(buffer)
	if err != nil {
		return fmt.Errorf("failed to marshal mavros buffer: %w", err)
	}

	if err := i.cache.Put(ctx, mavrosKey(droneID), data); err != nil {
		i.log.Warn().Err(err).Str("drone_id", droneID).Msg("Failed to cache mavros buffer")
	}

	if err := i.pub.PublishMavros(droneID, entry); err != nil {
		i.log.Warn().Err(err).Str("drone_id", droneID).Msg("Failed to publish mavros entry")
	}

	return nil
}

// Latest returns the cached state for one drone, or nil when none is cached.
func (i *Ingest) Latest(ctx context.Context, droneID string) (*models.EnrichedTelemetry, error) {
	data, found, err := i.cache.Get(ctx, latestKey(droneID))
	if err != nil {
		return nil, fmt.Errorf("failed to read latest telemetry for %s: %w", droneID, err)
	}

	if !found {
		return nil, nil
	}

	var record models.EnrichedTelemetry
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to decode cached telemetry for %s: %w", droneID, err)
	}

	return &record, nil
}

// MavrosBuffer returns the drone's buffered auxiliary log.
func (i *Ingest) MavrosBuffer(ctx context.Context, droneID string) ([]models.MavrosLogEntry, error) {
	data, found, err := i.cache.Get(ctx, mavrosKey(droneID))
	if err != nil {
		return nil, fmt.Errorf("failed to read mavros buffer for %s: %w", droneID, err)
	}

	if !found {
		return nil, nil
	}

	var buffer []models.MavrosLogEntry
	if err := json.Unmarshal(data, &buffer); err != nil {
		return nil, fmt.Errorf("failed to decode mavros buffer for %s: %w", droneID, err)
	}

	return buffer, nil
}
