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

package gateway

import (
	"net/http"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aerolink/dronehub/pkg/models"
)

type hostMetrics struct {
	CPUPercent    float64 `json:"cpuPercent"`
	MemoryPercent float64 `json:"memoryPercent"`
	MemoryUsedMB  uint64  `json:"memoryUsedMb"`
}

type healthResponse struct {
	Status          string      `json:"status"`
	UptimeSeconds   int64       `json:"uptimeSeconds"`
	ConnectedDrones int         `json:"connectedDrones"`
	Host            hostMetrics `json:"host"`
	Timestamp       time.Time   `json:"timestamp"`
}

// getHealth is the readiness surface: hub process state plus host pressure.
func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	resp := healthResponse{
		Status:          "healthy",
		UptimeSeconds:   int64(time.Since(s.startedAt).Seconds()),
		ConnectedDrones: s.registry.Count(),
		Timestamp:       time.Now(),
	}

	if usage, err := cpu.PercentWithContext(ctx, 0, false); err != nil {
		s.log.Warn().Err(err).Msg("cpu.PercentWithContext failed; cpu will be zero")
	} else if len(usage) > 0 {
		resp.Host.CPUPercent = usage[0]
	}

	if vmStats, err := mem.VirtualMemoryWithContext(ctx); err != nil {
		s.log.Warn().Err(err).Msg("mem.VirtualMemoryWithContext failed; memory will be zero")
	} else {
		resp.Host.MemoryPercent = vmStats.UsedPercent
		resp.Host.MemoryUsedMB = vmStats.Used / (1 << 20)
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// getDroneHealth reports per-drone liveness derived from the registry
// snapshot. A drone is stale when its heartbeat age exceeds the monitor's
// eviction threshold, and healthy when fresh with acceptable link quality.
func (s *Server) getDroneHealth(w http.ResponseWriter, _ *http.Request) {
	entries := s.registry.Snapshot()
	now := time.Now()

	health := make([]models.DroneHealth, 0, len(entries))
	for i := range entries {
		entry := &entries[i]
		stale := now.Sub(entry.LastHeartbeat) > s.stale

		health = append(health, models.DroneHealth{
			DroneID:           entry.DroneID,
			Connected:         true,
			Healthy:           !stale && entry.ConnectionQuality >= healthyQualityFloor,
			Stale:             stale,
			ConnectionQuality: entry.ConnectionQuality,
			LastHeartbeat:     entry.LastHeartbeat,
		})
	}

	s.writeJSON(w, http.StatusOK, health)
}
