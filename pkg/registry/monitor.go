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
	"context"
	"time"

	"github.com/aerolink/dronehub/pkg/logger"
)

const (
	defaultSweepInterval  = 10 * time.Second
	defaultStaleThreshold = 30 * time.Second
)

// Monitor is the heartbeat sweep. Each tick it evicts every entry whose
// heartbeat is older than the stale threshold and force-closes its channel,
// so the registry never holds a dead channel longer than one sweep period.
type Monitor struct {
	registry       *Registry
	sweepInterval  time.Duration
	staleThreshold time.Duration
	log            logger.Logger
}

// NewMonitor builds a monitor over registry. Zero durations take the
// defaults (10s sweep, 30s threshold).
func NewMonitor(registry *Registry, sweepInterval, staleThreshold time.Duration, log logger.Logger) *Monitor {
	if sweepInterval <= 0 {
		sweepInterval = defaultSweepInterval
	}

	if staleThreshold <= 0 {
		staleThreshold = defaultStaleThreshold
	}

	return &Monitor{
		registry:       registry,
		sweepInterval:  sweepInterval,
		staleThreshold: staleThreshold,
		log:            log,
	}
}

// StaleThreshold exposes the configured threshold for the health surface.
func (m *Monitor) StaleThreshold() time.Duration {
	return m.staleThreshold
}

// Run sweeps until ctx is canceled.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

// Sweep performs one eviction pass and returns the number of entries evicted.
func (m *Monitor) Sweep() int {
	threshold := time.Now().Add(-m.staleThreshold)
	stale := m.registry.evictStale(threshold)

	for i := range stale {
		entry := &stale[i]

		age := time.Since(entry.LastHeartbeat).Round(time.Second)
		m.log.Warn().
			Str("drone_id", entry.DroneID).
			Dur("heartbeat_age", age).
			Msg("Evicting stale connection")

		if entry.Channel == nil {
			continue
		}

		if err := entry.Channel.Close(ReasonStale); err != nil {
			m.log.Debug().Err(err).Str("drone_id", entry.DroneID).Msg("Error closing stale channel")
		}
	}

	return len(stale)
}
