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

package mission

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerolink/dronehub/pkg/kv"
	"github.com/aerolink/dronehub/pkg/logger"
	"github.com/aerolink/dronehub/pkg/models"
)

type delivered struct {
	droneID string
	event   string
	payload interface{}
}

type fakeDeliverer struct {
	sent []delivered
	err  error
}

func (f *fakeDeliverer) Deliver(droneID, event string, payload interface{}) error {
	if f.err != nil {
		return f.err
	}

	f.sent = append(f.sent, delivered{droneID: droneID, event: event, payload: payload})

	return nil
}

type fakeArchiver struct {
	missions []string
	statuses []models.MissionStatus
}

func (f *fakeArchiver) Mission(m *models.MissionRecord) {
	f.missions = append(f.missions, m.MissionID)
}

func (f *fakeArchiver) MissionStatus(_ string, status models.MissionStatus) {
	f.statuses = append(f.statuses, status)
}

func testWaypoints() []models.Waypoint {
	return []models.Waypoint{
		{Latitude: 47.39, Longitude: 8.54, Altitude: 50, Command: 22, Frame: 3},
		{Latitude: 47.40, Longitude: 8.55, Altitude: 60, Command: 16, Frame: 3},
	}
}

func newTestService() (*Service, *kv.MemStore, *fakeDeliverer, *fakeArchiver) {
	store := kv.NewMemStore()
	deliver := &fakeDeliverer{}
	archiver := &fakeArchiver{}

	return NewService(store, deliver, archiver, logger.NewTestLogger()), store, deliver, archiver
}

func TestUploadPersistsAndDelivers(t *testing.T) {
	svc, store, deliver, archiver := newTestService()

	record, err := svc.Upload(context.Background(), "drone-001", testWaypoints(), "operator-1")
	require.NoError(t, err)

	assert.NotEmpty(t, record.MissionID)
	assert.Equal(t, models.MissionStatusUploaded, record.Status)
	assert.Equal(t, "operator-1", record.UploadedBy)

	data, ok, err := store.Get(context.Background(), "drone-001."+record.MissionID)
	require.NoError(t, err)
	require.True(t, ok, "record persisted under droneId.missionId")

	var stored models.MissionRecord
	require.NoError(t, json.Unmarshal(data, &stored))
	assert.Len(t, stored.Waypoints, 2)

	require.Len(t, deliver.sent, 1)
	assert.Equal(t, models.EventWaypointMission, deliver.sent[0].event)

	payload := deliver.sent[0].payload.(*waypointMissionPayload)
	assert.Equal(t, models.MissionActionUpload, payload.Action)
	assert.Equal(t, record.MissionID, payload.MissionID)
	assert.Equal(t, 2, payload.WaypointCount)
	assert.True(t, strings.HasPrefix(payload.File, "QGC WPL 110\n"))

	assert.Equal(t, []string{record.MissionID}, archiver.missions)
}

func TestUploadDeliveryFailureMarksFailed(t *testing.T) {
	svc, _, deliver, _ := newTestService()
	deliver.err = errors.New("drone not connected")

	ctx := context.Background()

	_, err := svc.Upload(ctx, "drone-001", testWaypoints(), "operator-1")
	require.Error(t, err)

	records, err := svc.List(ctx, "drone-001")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.MissionStatusFailed, records[0].Status)
}

func TestUploadRejectsEmptyPlan(t *testing.T) {
	svc, _, deliver, _ := newTestService()

	_, err := svc.Upload(context.Background(), "drone-001", nil, "operator-1")
	require.ErrorIs(t, err, ErrEmptyPlan)
	assert.Empty(t, deliver.sent)
}

func TestLifecycleIsMonotonic(t *testing.T) {
	svc, _, _, archiver := newTestService()
	ctx := context.Background()

	record, err := svc.Upload(ctx, "drone-001", testWaypoints(), "operator-1")
	require.NoError(t, err)

	require.NoError(t, svc.UpdateStatus(ctx, "drone-001", record.MissionID, models.MissionStatusStarted))
	require.NoError(t, svc.UpdateStatus(ctx, "drone-001", record.MissionID, models.MissionStatusCompleted))

	// Terminal; nothing moves it again.
	err = svc.UpdateStatus(ctx, "drone-001", record.MissionID, models.MissionStatusStarted)
	require.ErrorIs(t, err, ErrInvalidTransition)

	err = svc.UpdateStatus(ctx, "drone-001", record.MissionID, models.MissionStatusCancelled)
	require.ErrorIs(t, err, ErrInvalidTransition)

	assert.Equal(t, []models.MissionStatus{models.MissionStatusStarted, models.MissionStatusCompleted}, archiver.statuses)
}

func TestUpdateStatusUnknownMission(t *testing.T) {
	svc, _, _, _ := newTestService()

	err := svc.UpdateStatus(context.Background(), "drone-001", "nope", models.MissionStatusStarted)
	require.ErrorIs(t, err, ErrMissionNotFound)
}

func TestHandleActionStartForwardsAndTracks(t *testing.T) {
	svc, _, deliver, _ := newTestService()
	ctx := context.Background()

	record, err := svc.Upload(ctx, "drone-001", testWaypoints(), "operator-1")
	require.NoError(t, err)

	params, err := json.Marshal(actionParams{MissionID: record.MissionID})
	require.NoError(t, err)

	cmd := &models.Command{ID: "cmd-1", Parameters: params}
	require.NoError(t, svc.HandleAction(ctx, "drone-001", models.MissionActionStart, cmd))

	require.Len(t, deliver.sent, 2)
	payload := deliver.sent[1].payload.(*waypointMissionPayload)
	assert.Equal(t, models.MissionActionStart, payload.Action)
	assert.Equal(t, record.MissionID, payload.MissionID)

	got, err := svc.Get(ctx, "drone-001", record.MissionID)
	require.NoError(t, err)
	assert.Equal(t, models.MissionStatusStarted, got.Status)
}

func TestHandleActionStartMissingMissionID(t *testing.T) {
	svc, _, _, _ := newTestService()

	cmd := &models.Command{ID: "cmd-1"}
	err := svc.HandleAction(context.Background(), "drone-001", models.MissionActionStart, cmd)
	require.Error(t, err)
}

func TestHandleActionClearForwardsOnly(t *testing.T) {
	svc, _, deliver, _ := newTestService()

	cmd := &models.Command{ID: "cmd-1"}
	require.NoError(t, svc.HandleAction(context.Background(), "drone-001", models.MissionActionClear, cmd))

	require.Len(t, deliver.sent, 1)
	payload := deliver.sent[0].payload.(*waypointMissionPayload)
	assert.Equal(t, models.MissionActionClear, payload.Action)
	assert.Empty(t, payload.MissionID)
}

func TestHandleActionUploadDecodesWaypoints(t *testing.T) {
	svc, _, deliver, _ := newTestService()

	params, err := json.Marshal(uploadParams{Waypoints: testWaypoints()})
	require.NoError(t, err)

	cmd := &models.Command{ID: "cmd-1", UserID: "operator-2", Parameters: params}
	require.NoError(t, svc.HandleAction(context.Background(), "drone-001", models.MissionActionUpload, cmd))

	require.Len(t, deliver.sent, 1)
	payload := deliver.sent[0].payload.(*waypointMissionPayload)
	assert.Equal(t, 2, payload.WaypointCount)
}

func TestApplyAck(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	record, err := svc.Upload(ctx, "drone-001", testWaypoints(), "operator-1")
	require.NoError(t, err)

	require.NoError(t, svc.ApplyAck(ctx, "drone-001", &models.MissionAck{
		MissionID: record.MissionID,
		Status:    models.MissionStatusStarted,
	}))

	got, err := svc.Get(ctx, "drone-001", record.MissionID)
	require.NoError(t, err)
	assert.Equal(t, models.MissionStatusStarted, got.Status)
}

func TestListScopesToDrone(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Upload(ctx, "drone-001", testWaypoints(), "operator-1")
	require.NoError(t, err)
	_, err = svc.Upload(ctx, "drone-002", testWaypoints(), "operator-1")
	require.NoError(t, err)

	records, err := svc.List(ctx, "drone-001")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "drone-001", records[0].DroneID)
}
