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
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/aerolink/dronehub/pkg/logger"
	"github.com/aerolink/dronehub/pkg/models"
)

type statusTransition struct {
	droneID string
	status  models.DroneStatus
	quality int
}

type fakeMirror struct {
	mu          sync.Mutex
	transitions []statusTransition
}

func (f *fakeMirror) DroneStatus(droneID string, status models.DroneStatus, quality int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.transitions = append(f.transitions, statusTransition{droneID, status, quality})
}

func (f *fakeMirror) last() (statusTransition, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.transitions) == 0 {
		return statusTransition{}, false
	}

	return f.transitions[len(f.transitions)-1], true
}

func registerReq(droneID string) *models.RegisterRequest {
	return &models.RegisterRequest{
		DroneID:      droneID,
		Model:        "FlightOne-X4",
		Version:      "2.0",
		Capabilities: []string{"telemetry", "camera", "precision_landing"},
	}
}

func TestRegisterRejectsMissingIdentity(t *testing.T) {
	r := New(nil, nil, logger.NewTestLogger())

	_, err := r.Register(&models.RegisterRequest{Model: "X4"}, nil)
	require.ErrorIs(t, err, ErrMissingDroneID)

	_, err = r.Register(&models.RegisterRequest{DroneID: "drone-001"}, nil)
	require.ErrorIs(t, err, ErrMissingModel)

	assert.Zero(t, r.Count(), "a rejected registration must create no state")
}

func TestRegisterRejectsSubjectUnsafeID(t *testing.T) {
	r := New(nil, nil, logger.NewTestLogger())

	for _, id := range []string{"a.b", "drone*", "fleet>one", "drone 001"} {
		_, err := r.Register(&models.RegisterRequest{DroneID: id, Model: "X4"}, nil)
		require.ErrorIs(t, err, ErrInvalidDroneID, "id %q", id)
	}

	assert.Zero(t, r.Count())
}

func TestRegisterCreatesEntry(t *testing.T) {
	mirror := &fakeMirror{}
	r := New(mirror, nil, logger.NewTestLogger())

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ch := NewMockChannelHandle(ctrl)

	entry, err := r.Register(registerReq("drone-001"), ch)
	require.NoError(t, err)

	assert.Equal(t, "drone-001", entry.DroneID)
	assert.Equal(t, models.DroneTypeReal, entry.DroneType)
	assert.Equal(t, maxQuality, entry.ConnectionQuality)
	assert.True(t, r.IsConnected("drone-001"))
	assert.Equal(t, 1, r.Count())

	last, ok := mirror.last()
	require.True(t, ok)
	assert.Equal(t, models.DroneStatusConnected, last.status)
}

func TestReRegisterClosesPreviousChannel(t *testing.T) {
	r := New(nil, nil, logger.NewTestLogger())

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	var disconnects []string

	r.OnDisconnect(func(droneID, _ string) {
		disconnects = append(disconnects, droneID)
	})

	oldCh := NewMockChannelHandle(ctrl)
	newCh := NewMockChannelHandle(ctrl)

	oldCh.EXPECT().Close(ReasonReplaced).Return(nil).Times(1)

	_, err := r.Register(registerReq("drone-001"), oldCh)
	require.NoError(t, err)

	_, err = r.Register(registerReq("drone-001"), newCh)
	require.NoError(t, err)

	entry, ok := r.Get("drone-001")
	require.True(t, ok)
	assert.Same(t, newCh, entry.Channel.(*MockChannelHandle))
	assert.Equal(t, 1, r.Count())

	// Replacement is not a disconnect; in-flight state stays attached.
	assert.Empty(t, disconnects)
}

func TestDisconnectIgnoresSupersededChannel(t *testing.T) {
	r := New(nil, nil, logger.NewTestLogger())

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	oldCh := NewMockChannelHandle(ctrl)
	newCh := NewMockChannelHandle(ctrl)
	oldCh.EXPECT().Close(ReasonReplaced).Return(nil)

	_, err := r.Register(registerReq("drone-001"), oldCh)
	require.NoError(t, err)
	_, err = r.Register(registerReq("drone-001"), newCh)
	require.NoError(t, err)

	// The old connection's close handler fires after replacement; it must
	// not evict the new entry.
	removed := r.Disconnect("drone-001", oldCh, "read loop ended")
	assert.False(t, removed)
	assert.True(t, r.IsConnected("drone-001"))

	removed = r.Disconnect("drone-001", newCh, "read loop ended")
	assert.True(t, removed)
	assert.False(t, r.IsConnected("drone-001"))
}

func TestDisconnectNotifiesListeners(t *testing.T) {
	r := New(nil, nil, logger.NewTestLogger())

	var gotDrone, gotReason string

	r.OnDisconnect(func(droneID, reason string) {
		gotDrone = droneID
		gotReason = reason
	})

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ch := NewMockChannelHandle(ctrl)

	_, err := r.Register(registerReq("drone-001"), ch)
	require.NoError(t, err)

	r.Disconnect("drone-001", ch, "connection reset")
	assert.Equal(t, "drone-001", gotDrone)
	assert.Equal(t, "connection reset", gotReason)
}

func TestTouchUnknownDrone(t *testing.T) {
	r := New(nil, nil, logger.NewTestLogger())

	_, ok := r.Touch("drone-404", nil)
	assert.False(t, ok)
}

func TestTouchRecomputesQuality(t *testing.T) {
	r := New(nil, nil, logger.NewTestLogger())

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	_, err := r.Register(registerReq("drone-001"), NewMockChannelHandle(ctrl))
	require.NoError(t, err)

	quality, ok := r.Touch("drone-001", &models.HeartbeatMetrics{
		Jetson:  &models.JetsonMetrics{CPUUsage: 95, MemoryUsage: 50, Temperature: 50},
		Network: &models.NetworkMetrics{LatencyMs: 150, PacketLoss: 0.1},
	})
	require.True(t, ok)

	// Immediate touch: no gap penalty; high CPU (-10) and high latency (-20).
	assert.Equal(t, 70, quality)

	entry, ok := r.Get("drone-001")
	require.True(t, ok)
	assert.Equal(t, 70, entry.ConnectionQuality)
}

func TestMarkActivity(t *testing.T) {
	r := New(nil, nil, logger.NewTestLogger())

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	_, err := r.Register(registerReq("drone-001"), NewMockChannelHandle(ctrl))
	require.NoError(t, err)

	assert.True(t, r.MarkActivity("drone-001", FeatureTelemetry))
	assert.True(t, r.MarkActivity("drone-001", FeatureWebRTC))
	assert.False(t, r.MarkActivity("drone-404", FeatureCamera))

	entry, _ := r.Get("drone-001")
	assert.True(t, entry.Activity.Telemetry)
	assert.True(t, entry.Activity.WebRTC)
	assert.False(t, entry.Activity.Camera)
}

func TestRecordCommandIsDiagnosticOnly(t *testing.T) {
	r := New(nil, nil, logger.NewTestLogger())

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	_, err := r.Register(registerReq("drone-001"), NewMockChannelHandle(ctrl))
	require.NoError(t, err)

	before, _ := r.Get("drone-001")
	r.RecordCommand("drone-001")
	after, _ := r.Get("drone-001")

	assert.True(t, after.LastCommandAt.After(before.LastCommandAt) || before.LastCommandAt.IsZero())
	// Heartbeat bookkeeping must be untouched.
	assert.Equal(t, before.LastHeartbeat, after.LastHeartbeat)
}

func TestSnapshotIsACopy(t *testing.T) {
	r := New(nil, nil, logger.NewTestLogger())

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	_, err := r.Register(registerReq("drone-001"), NewMockChannelHandle(ctrl))
	require.NoError(t, err)
	_, err = r.Register(registerReq("drone-002"), NewMockChannelHandle(ctrl))
	require.NoError(t, err)

	snap := r.Snapshot()
	require.Len(t, snap, 2)

	snap[0].ConnectionQuality = -1

	for _, id := range []string{"drone-001", "drone-002"} {
		entry, ok := r.Get(id)
		require.True(t, ok)
		assert.Equal(t, maxQuality, entry.ConnectionQuality)
	}
}
