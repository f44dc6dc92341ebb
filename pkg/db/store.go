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

package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aerolink/dronehub/pkg/logger"
	"github.com/aerolink/dronehub/pkg/models"
)

const (
	upsertDroneStatusSQL = `
INSERT INTO public.drone_status (
	drone_id,
	status,
	connection_quality,
	updated_at
) VALUES (
	$1,$2,$3,now()
)
ON CONFLICT (drone_id) DO UPDATE SET
	status = EXCLUDED.status,
	connection_quality = EXCLUDED.connection_quality,
	updated_at = now()`

	insertTelemetrySQL = `
INSERT INTO public.drone_telemetry (
	time,
	drone_id,
	drone_type,
	latitude,
	longitude,
	altitude_msl,
	altitude_relative,
	armed,
	flight_mode,
	satellites,
	hdop,
	voltage,
	current,
	battery_percentage,
	velocity_x,
	velocity_y,
	velocity_z,
	latency_ms,
	raw
) VALUES (
	$1,$2,$3,$4,$5,
	$6,$7,$8,$9,$10,
	$11,$12,$13,$14,$15,
	$16,$17,$18,$19
)`

	insertMissionSQL = `
INSERT INTO public.missions (
	mission_id,
	drone_id,
	uploaded_by,
	uploaded_at,
	status,
	waypoints
) VALUES (
	$1,$2,$3,$4,$5,$6
)`

	updateMissionStatusSQL = `
UPDATE public.missions
SET status = $2, updated_at = now()
WHERE mission_id = $1`
)

// Store implements Service on a pgx pool.
type Store struct {
	pool *pgxpool.Pool
	log  logger.Logger
}

// NewStore wraps an existing pool.
func NewStore(pool *pgxpool.Pool, log logger.Logger) *Store {
	return &Store{pool: pool, log: log}
}

func (s *Store) UpdateDroneStatus(ctx context.Context, droneID string, status models.DroneStatus, quality int) error {
	_, err := s.pool.Exec(ctx, upsertDroneStatusSQL, droneID, string(status), quality)
	if err != nil {
		return fmt.Errorf("failed to update drone status for %s: %w", droneID, err)
	}

	return nil
}

func (s *Store) ArchiveTelemetry(ctx context.Context, record *models.EnrichedTelemetry) error {
	raw, err := json.Marshal(record.Frame)
	if err != nil {
		return fmt.Errorf("failed to marshal telemetry frame: %w", err)
	}

	frame := record.Frame

	_, err = s.pool.Exec(ctx, insertTelemetrySQL,
		record.ReceivedAt,
		record.DroneID,
		string(record.DroneType),
		frame.Latitude,
		frame.Longitude,
		frame.AltitudeMSL,
		frame.AltitudeRelative,
		frame.Armed,
		frame.FlightMode,
		frame.Satellites,
		frame.HDOP,
		frame.Voltage,
		frame.Current,
		frame.Percentage,
		frame.VelocityX,
		frame.VelocityY,
		frame.VelocityZ,
		frame.LatencyMs,
		raw,
	)
	if err != nil {
		return fmt.Errorf("failed to archive telemetry for %s: %w", record.DroneID, err)
	}

	return nil
}

func (s *Store) SaveMission(ctx context.Context, mission *models.MissionRecord) error {
	waypoints, err := json.Marshal(mission.Waypoints)
	if err != nil {
		return fmt.Errorf("failed to marshal waypoints: %w", err)
	}

	_, err = s.pool.Exec(ctx, insertMissionSQL,
		mission.MissionID,
		mission.DroneID,
		mission.UploadedBy,
		mission.UploadedAt,
		string(mission.Status),
		waypoints,
	)
	if err != nil {
		return fmt.Errorf("failed to save mission %s: %w", mission.MissionID, err)
	}

	return nil
}

func (s *Store) UpdateMissionStatus(ctx context.Context, missionID string, status models.MissionStatus) error {
	_, err := s.pool.Exec(ctx, updateMissionStatusSQL, missionID, string(status))
	if err != nil {
		return fmt.Errorf("failed to update mission %s status: %w", missionID, err)
	}

	return nil
}

func (s *Store) Close() {
	s.pool.Close()
}

var _ Service = (*Store)(nil)
