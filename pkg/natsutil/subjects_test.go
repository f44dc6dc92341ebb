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

package natsutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/aerolink/dronehub/pkg/models"
)

func TestSubjectConventions(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"command", CommandSubject("drone-001"), "drone.drone-001.commands"},
		{"response", CommandResponseSubject("drone-001"), "drone.drone-001.command_responses"},
		{"telemetry", TelemetrySubject("drone-002"), "drone.drone-002.telemetry"},
		{"landing", LandingSubject("drone-002"), "drone.drone-002.landing"},
		{"camera", CameraSubject("drone-001", "front"), "drone.drone-001.camera.front"},
		{"lifecycle", LifecycleSubject("drone-001"), "drone.drone-001.events"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.got)
		})
	}
}

func TestSanitizeTokenBlocksHierarchyInjection(t *testing.T) {
	assert.Equal(t, "drone.a_b_c.commands", CommandSubject("a.b>c"))
	assert.Equal(t, "drone.a__.commands", CommandSubject("a *"))
}

func TestDroneIDFromSubject(t *testing.T) {
	assert.Equal(t, "drone-001", DroneIDFromSubject("drone.drone-001.commands"))
	assert.Equal(t, "", DroneIDFromSubject("other.drone-001.commands"))
	assert.Equal(t, "", DroneIDFromSubject("drone.x"))
}

func TestPublishCommandResponseStampsTimestamp(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	bus := NewMockBus(ctrl)
	bus.EXPECT().
		Publish("drone.drone-001.command_responses", gomock.Any()).
		Return(nil)

	pub := NewEventPublisher(bus)

	resp := &models.CommandResponse{CommandID: "cmd-1", Success: true, Message: "ok"}
	require.NoError(t, pub.PublishCommandResponse("drone-001", resp))
	assert.False(t, resp.Timestamp.IsZero())
}

func TestPublishLifecycle(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	bus := NewMockBus(ctrl)
	bus.EXPECT().
		Publish("drone.drone-001.events", gomock.Any()).
		Return(nil)

	pub := NewEventPublisher(bus)
	require.NoError(t, pub.PublishLifecycle("drone-001", "disconnected", "stale heartbeat"))
}
