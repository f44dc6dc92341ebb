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

// Package mission translates operator flight plans into the QGC WPL 110
// document the firmware consumes and tracks each mission's lifecycle in the
// TTL-scoped mission bucket. Status moves strictly forward; there is no way
// back from a terminal state.
package mission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aerolink/dronehub/pkg/kv"
	"github.com/aerolink/dronehub/pkg/logger"
	"github.com/aerolink/dronehub/pkg/models"
)

var (
	ErrMissionNotFound   = errors.New("mission not found")
	ErrInvalidTransition = errors.New("invalid mission status transition")

	errMissingMissionID = errors.New("action missing missionId")
)

// Deliverer sends one event to a drone's live channel. *command.Router
// satisfies it.
type Deliverer interface {
	Deliver(droneID, event string, payload interface{}) error
}

// Archiver is the fire-and-forget durable mission history. *db.AsyncWriter
// satisfies it.
type Archiver interface {
	Mission(mission *models.MissionRecord)
	MissionStatus(missionID string, status models.MissionStatus)
}

// Service owns mission upload, forwarding and lifecycle tracking.
type Service struct {
	store    kv.KVStore
	deliver  Deliverer
	archiver Archiver
	log      logger.Logger
}

// NewService wires the mission service. archiver may be nil when no durable
// store is configured.
func NewService(store kv.KVStore, deliver Deliverer, archiver Archiver, log logger.Logger) *Service {
	return &Service{
		store:    store,
		deliver:  deliver,
		archiver: archiver,
		log:      log,
	}
}

func missionKey(droneID, missionID string) string {
	return droneID + "." + missionID
}

// uploadParams is the operator payload carried in an upload_mission command.
type uploadParams struct {
	Waypoints []models.Waypoint `json:"waypoints"`
}

// actionParams is the operator payload for start/cancel/clear.
type actionParams struct {
	MissionID string `json:"missionId"`
}

// waypointMissionPayload is the waypoint_mission channel event body.
type waypointMissionPayload struct {
	Action        models.MissionAction `json:"action"`
	MissionID     string               `json:"missionId,omitempty"`
	File          string               `json:"file,omitempty"`
	WaypointCount int                  `json:"waypointCount,omitempty"`
}

// HandleAction dispatches one intercepted mission command.
func (s *Service) HandleAction(ctx context.Context, droneID string, action models.MissionAction, cmd *models.Command) error {
	switch action {
	case models.MissionActionUpload:
		var params uploadParams
		if err := json.Unmarshal(cmd.Parameters, &params); err != nil {
			return fmt.Errorf("failed to decode waypoints: %w", err)
		}

		_, err := s.Upload(ctx, droneID, params.Waypoints, cmd.UserID)

		return err
	case models.MissionActionStart, models.MissionActionCancel:
		var params actionParams
		if len(cmd.Parameters) > 0 {
			if err := json.Unmarshal(cmd.Parameters, &params); err != nil {
				return fmt.Errorf("failed to decode mission action: %w", err)
			}
		}

		if params.MissionID == "" {
			return errMissingMissionID
		}

		return s.forwardAction(ctx, droneID, action, params.MissionID)
	case models.MissionActionClear:
		// Clear has no per-mission lifecycle; it wipes whatever the
		// autopilot is holding.
		return s.deliver.Deliver(droneID, models.EventWaypointMission, &waypointMissionPayload{
			Action: models.MissionActionClear,
		})
	}

	return fmt.Errorf("unknown mission action %q", action)
}

// Upload assigns a mission id, persists the record as uploaded and pushes
// the rendered flight plan down the drone channel. A delivery failure marks
// the mission failed but keeps the record for inspection.
func (s *Service) Upload(ctx context.Context, droneID string, waypoints []models.Waypoint, userID string) (*models.MissionRecord, error) {
	file, err := EncodeWPL(waypoints)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	record := &models.MissionRecord{
		MissionID:  uuid.New().String(),
		DroneID:    droneID,
		Waypoints:  waypoints,
		UploadedBy: userID,
		UploadedAt: now,
		Status:     models.MissionStatusUploaded,
		UpdatedAt:  now,
	}

	if err := s.putRecord(ctx, record); err != nil {
		return nil, err
	}

	if s.archiver != nil {
		s.archiver.Mission(record)
	}

	payload := &waypointMissionPayload{
		Action:        models.MissionActionUpload,
		MissionID:     record.MissionID,
		File:          file,
		WaypointCount: len(waypoints),
	}
	if err := s.deliver.Deliver(droneID, models.EventWaypointMission, payload); err != nil {
		if updateErr := s.UpdateStatus(ctx, droneID, record.MissionID, models.MissionStatusFailed); updateErr != nil {
			s.log.Warn().Err(updateErr).Str("mission_id", record.MissionID).Msg("Failed to mark mission failed")
		}

		return nil, fmt.Errorf("failed to deliver mission %s: %w", record.MissionID, err)
	}

	s.log.Info().
		Str("drone_id", droneID).
		Str("mission_id", record.MissionID).
		Int("waypoints", len(waypoints)).
		Msg("Mission uploaded")

	return record, nil
}

func (s *Service) forwardAction(ctx context.Context, droneID string, action models.MissionAction, missionID string) error {
	payload := &waypointMissionPayload{Action: action, MissionID: missionID}
	if err := s.deliver.Deliver(droneID, models.EventWaypointMission, payload); err != nil {
		return fmt.Errorf("failed to forward mission %s %s: %w", action, missionID, err)
	}

	status := models.MissionStatusStarted
	if action == models.MissionActionCancel {
		status = models.MissionStatusCancelled
	}

	if err := s.UpdateStatus(ctx, droneID, missionID, status); err != nil {
		return err
	}

	return nil
}

// ApplyAck records the drone's own progress report for a mission.
func (s *Service) ApplyAck(ctx context.Context, droneID string, ack *models.MissionAck) error {
	if ack.MissionID == "" {
		return errMissingMissionID
	}

	return s.UpdateStatus(ctx, droneID, ack.MissionID, ack.Status)
}

// UpdateStatus applies one forward transition to a mission record.
func (s *Service) UpdateStatus(ctx context.Context, droneID, missionID string, status models.MissionStatus) error {
	record, err := s.Get(ctx, droneID, missionID)
	if err != nil {
		return err
	}

	if record == nil {
		return fmt.Errorf("%w: %s", ErrMissionNotFound, missionID)
	}

	if !transitionAllowed(record.Status, status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, record.Status, status)
	}

	record.Status = status
	record.UpdatedAt = time.Now()

	if err := s.putRecord(ctx, record); err != nil {
		return err
	}

	if s.archiver != nil {
		s.archiver.MissionStatus(missionID, status)
	}

	s.log.Info().
		Str("drone_id", droneID).
		Str("mission_id", missionID).
		Str("status", string(status)).
		Msg("Mission status updated")

	return nil
}

// Get returns one mission record, or nil when none exists.
func (s *Service) Get(ctx context.Context, droneID, missionID string) (*models.MissionRecord, error) {
	data, found, err := s.store.Get(ctx, missionKey(droneID, missionID))
	if err != nil {
		return nil, fmt.Errorf("failed to read mission %s: %w", missionID, err)
	}

	if !found {
		return nil, nil
	}

	var record models.MissionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to decode mission %s: %w", missionID, err)
	}

	return &record, nil
}

// List returns every mission still inside the retention window for a drone.
func (s *Service) List(ctx context.Context, droneID string) ([]*models.MissionRecord, error) {
	keys, err := s.store.Keys(ctx, droneID)
	if err != nil {
		return nil, fmt.Errorf("failed to list missions for %s: %w", droneID, err)
	}

	records := make([]*models.MissionRecord, 0, len(keys))

	for _, key := range keys {
		data, found, err := s.store.Get(ctx, key)
		if err != nil || !found {
			continue
		}

		var record models.MissionRecord
		if err := json.Unmarshal(data, &record); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("Skipping undecodable mission record")
			continue
		}

		records = append(records, &record)
	}

	return records, nil
}

func (s *Service) putRecord(ctx context.Context, record *models.MissionRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal mission %s: %w", record.MissionID, err)
	}

	if err := s.store.Put(ctx, missionKey(record.DroneID, record.MissionID), data); err != nil {
		return fmt.Errorf("failed to store mission %s: %w", record.MissionID, err)
	}

	return nil
}

// transitionAllowed enforces the forward-only mission lifecycle.
func transitionAllowed(from, to models.MissionStatus) bool {
	switch from {
	case models.MissionStatusUploaded:
		return to == models.MissionStatusStarted ||
			to == models.MissionStatusCancelled ||
			to == models.MissionStatusFailed
	case models.MissionStatusStarted:
		return to == models.MissionStatusCompleted ||
			to == models.MissionStatusCancelled ||
			to == models.MissionStatusFailed
	case models.MissionStatusCompleted, models.MissionStatusCancelled, models.MissionStatusFailed:
		return false
	}

	return false
}
