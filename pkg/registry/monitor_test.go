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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/aerolink/dronehub/pkg/logger"
	"github.com/aerolink/dronehub/pkg/models"
)

func TestSweepEvictsStaleEntries(t *testing.T) {
	mirror := &fakeMirror{}
	r := New(mirror, nil, logger.NewTestLogger())

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	staleCh := NewMockChannelHandle(ctrl)
	liveCh := NewMockChannelHandle(ctrl)

	staleCh.EXPECT().Close(ReasonStale).Return(nil).Times(1)

	_, err := r.Register(registerReq("drone-stale"), staleCh)
	require.NoError(t, err)
	_, err = r.Register(registerReq("drone-live"), liveCh)
	require.NoError(t, err)

	// Age the stale drone's heartbeat beyond the threshold.
	r.mu.Lock()
	r.entries["drone-stale"].LastHeartbeat = time.Now().Add(-45 * time.Second)
	r.mu.Unlock()

	m := NewMonitor(r, 10*time.Second, 30*time.Second, logger.NewTestLogger())

	evicted := m.Sweep()
	assert.Equal(t, 1, evicted)
	assert.False(t, r.IsConnected("drone-stale"))
	assert.True(t, r.IsConnected("drone-live"))

	last, ok := mirror.last()
	require.True(t, ok)
	assert.Equal(t, "drone-stale", last.droneID)
	assert.Equal(t, models.DroneStatusStale, last.status)
}

func TestSweepFiresDisconnectListeners(t *testing.T) {
	r := New(nil, nil, logger.NewTestLogger())

	var reasons []string

	r.OnDisconnect(func(_, reason string) {
		reasons = append(reasons, reason)
	})

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ch := NewMockChannelHandle(ctrl)
	ch.EXPECT().Close(ReasonStale).Return(nil)

	_, err := r.Register(registerReq("drone-001"), ch)
	require.NoError(t, err)

	r.mu.Lock()
	r.entries["drone-001"].LastHeartbeat = time.Now().Add(-time.Minute)
	r.mu.Unlock()

	m := NewMonitor(r, 0, 0, logger.NewTestLogger())
	m.Sweep()

	require.Len(t, reasons, 1)
	assert.Equal(t, ReasonStale, reasons[0])
}

func TestMonitorDefaults(t *testing.T) {
	r := New(nil, nil, logger.NewTestLogger())
	m := NewMonitor(r, 0, 0, logger.NewTestLogger())

	assert.Equal(t, defaultSweepInterval, m.sweepInterval)
	assert.Equal(t, defaultStaleThreshold, m.StaleThreshold())
}

func TestFreshEntriesSurviveSweep(t *testing.T) {
	r := New(nil, nil, logger.NewTestLogger())

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	_, err := r.Register(registerReq("drone-001"), NewMockChannelHandle(ctrl))
	require.NoError(t, err)

	m := NewMonitor(r, 10*time.Second, 30*time.Second, logger.NewTestLogger())
	assert.Zero(t, m.Sweep())
	assert.True(t, r.IsConnected("drone-001"))
}
