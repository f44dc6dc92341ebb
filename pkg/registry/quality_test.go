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

	"github.com/aerolink/dronehub/pkg/models"
)

func TestComputeQuality(t *testing.T) {
	tests := []struct {
		name     string
		gap      time.Duration
		metrics  *models.HeartbeatMetrics
		expected int
	}{
		{
			name:     "healthy",
			gap:      time.Second,
			metrics:  &models.HeartbeatMetrics{},
			expected: 100,
		},
		{
			name:     "nil metrics",
			gap:      time.Second,
			metrics:  nil,
			expected: 100,
		},
		{
			name:     "moderate heartbeat gap",
			gap:      3 * time.Second,
			metrics:  nil,
			expected: 85,
		},
		{
			name:     "severe heartbeat gap",
			gap:      6 * time.Second,
			metrics:  nil,
			expected: 70,
		},
		{
			name: "resource pressure",
			gap:  time.Second,
			metrics: &models.HeartbeatMetrics{
				Jetson: &models.JetsonMetrics{CPUUsage: 90, MemoryUsage: 90, Temperature: 75},
			},
			expected: 65,
		},
		{
			name: "bad link",
			gap:  time.Second,
			metrics: &models.HeartbeatMetrics{
				Network: &models.NetworkMetrics{LatencyMs: 250, PacketLoss: 5},
			},
			expected: 55,
		},
		{
			name: "everything wrong clamps to zero",
			gap:  10 * time.Second,
			metrics: &models.HeartbeatMetrics{
				Jetson:  &models.JetsonMetrics{CPUUsage: 99, MemoryUsage: 99, Temperature: 90},
				Network: &models.NetworkMetrics{LatencyMs: 500, PacketLoss: 20},
			},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, computeQuality(tt.gap, tt.metrics))
		})
	}
}
