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
	"time"

	"github.com/aerolink/dronehub/pkg/models"
)

const (
	maxQuality = 100

	// Heartbeat gap tiers.
	gapSevere        = 5 * time.Second
	gapModerate      = 2 * time.Second
	penaltyGapSevere = 30
	penaltyGapMild   = 15

	// Onboard resource pressure thresholds (percent / celsius).
	cpuHighPct      = 80.0
	memHighPct      = 80.0
	tempHighC       = 70.0
	penaltyCPUHigh  = 10
	penaltyMemHigh  = 15
	penaltyTempHigh = 10

	// Link metric thresholds.
	latencyHighMs      = 100.0
	packetLossHighPct  = 2.0
	penaltyLatencyHigh = 20
	penaltyLossHigh    = 25
)

// computeQuality scores a connection from the latest heartbeat gap and the
// metrics the drone reported with it. Starts at 100 and subtracts weighted
// penalties, clamped to [0,100].
func computeQuality(gap time.Duration, metrics *models.HeartbeatMetrics) int {
	quality := maxQuality

	switch {
	case gap > gapSevere:
		quality -= penaltyGapSevere
	case gap > gapModerate:
		quality -= penaltyGapMild
	}

	if metrics != nil && metrics.Jetson != nil {
		if metrics.Jetson.CPUUsage > cpuHighPct {
			quality -= penaltyCPUHigh
		}

		if metrics.Jetson.MemoryUsage > memHighPct {
			quality -= penaltyMemHigh
		}

		if metrics.Jetson.Temperature > tempHighC {
			quality -= penaltyTempHigh
		}
	}

	if metrics != nil && metrics.Network != nil {
		if metrics.Network.LatencyMs > latencyHighMs {
			quality -= penaltyLatencyHigh
		}

		if metrics.Network.PacketLoss > packetLossHighPct {
			quality -= penaltyLossHigh
		}
	}

	if quality < 0 {
		quality = 0
	}

	return quality
}
