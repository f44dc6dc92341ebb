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

//go:generate mockgen -destination=mock_db.go -package=db github.com/aerolink/dronehub/pkg/db Service

// Package db is the durable-store side of the hub: connection state mirror,
// telemetry archive and mission history in TimescaleDB. Every caller treats
// it as best-effort; the real-time path never blocks on it.
package db

import (
	"context"

	"github.com/aerolink/dronehub/pkg/models"
)

// Service is the durable-store surface consumed by the hub components.
type Service interface {
	// UpdateDroneStatus mirrors a connection state transition.
	UpdateDroneStatus(ctx context.Context, droneID string, status models.DroneStatus, quality int) error

	// ArchiveTelemetry appends one enriched telemetry record.
	ArchiveTelemetry(ctx context.Context, record *models.EnrichedTelemetry) error

	// SaveMission inserts a mission record with its waypoints.
	SaveMission(ctx context.Context, mission *models.MissionRecord) error

	// UpdateMissionStatus advances a mission's lifecycle status.
	UpdateMissionStatus(ctx context.Context, missionID string, status models.MissionStatus) error

	Close()
}
