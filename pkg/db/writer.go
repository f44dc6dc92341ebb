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

package db

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aerolink/dronehub/pkg/logger"
	"github.com/aerolink/dronehub/pkg/models"
)

const (
	defaultQueueSize    = 4096
	defaultWriteTimeout = 5 * time.Second
)

type writeOp struct {
	name string
	fn   func(ctx context.Context) error
}

// AsyncWriter decouples durable-store writes from the real-time path. Writes
// are queued and executed by a background goroutine; a full queue drops the
// oldest pending write rather than blocking the caller. Failures are logged
// and counted, never propagated.
type AsyncWriter struct {
	svc   Service
	queue chan writeOp
	log   logger.Logger

	wg      sync.WaitGroup
	started atomic.Bool

	dropped atomic.Uint64
	failed  atomic.Uint64
	written atomic.Uint64
}

// NewAsyncWriter wraps svc. A nil svc yields a writer that discards
// everything, which keeps callers free of nil checks when the durable store
// is not configured.
func NewAsyncWriter(svc Service, log logger.Logger) *AsyncWriter {
	return &AsyncWriter{
		svc:   svc,
		queue: make(chan writeOp, defaultQueueSize),
		log:   log,
	}
}

// Start launches the background writer. It drains until ctx is canceled.
func (w *AsyncWriter) Start(ctx context.Context) {
	if w.svc == nil || !w.started.CompareAndSwap(false, true) {
		return
	}

	w.wg.Add(1)

	go func() {
		defer w.wg.Done()

		for {
			select {
			case <-ctx.Done():
				return
			case op := <-w.queue:
				w.execute(op)
			}
		}
	}()
}

// Wait blocks until the background goroutine has exited.
func (w *AsyncWriter) Wait() {
	w.wg.Wait()
}

func (w *AsyncWriter) execute(op writeOp) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultWriteTimeout)
	defer cancel()

	if err := op.fn(ctx); err != nil {
		w.failed.Add(1)
		w.log.Warn().Err(err).Str("op", op.name).Msg("Durable store write failed")

		return
	}

	w.written.Add(1)
}

func (w *AsyncWriter) enqueue(op writeOp) {
	if w.svc == nil {
		return
	}

	for {
		select {
		case w.queue <- op:
			return
		default:
		}

		// Queue full: shed the oldest pending write and try again so the
		// live path never blocks.
		select {
		case stale := <-w.queue:
			w.dropped.Add(1)
			w.log.Debug().Str("op", stale.name).Msg("Dropped durable store write, queue full")
		default:
		}
	}
}

// DroneStatus mirrors a connection state transition, best-effort.
func (w *AsyncWriter) DroneStatus(droneID string, status models.DroneStatus, quality int) {
	w.enqueue(writeOp{
		name: "drone_status",
		fn: func(ctx context.Context) error {
			return w.svc.UpdateDroneStatus(ctx, droneID, status, quality)
		},
	})
}

// Telemetry archives one record, best-effort.
func (w *AsyncWriter) Telemetry(record *models.EnrichedTelemetry) {
	w.enqueue(writeOp{
		name: "telemetry",
		fn: func(ctx context.Context) error {
			return w.svc.ArchiveTelemetry(ctx, record)
		},
	})
}

// Mission persists a freshly uploaded mission, best-effort.
func (w *AsyncWriter) Mission(mission *models.MissionRecord) {
	w.enqueue(writeOp{
		name: "mission",
		fn: func(ctx context.Context) error {
			return w.svc.SaveMission(ctx, mission)
		},
	})
}

// MissionStatus advances a mission's durable status, best-effort.
func (w *AsyncWriter) MissionStatus(missionID string, status models.MissionStatus) {
	w.enqueue(writeOp{
		name: "mission_status",
		fn: func(ctx context.Context) error {
			return w.svc.UpdateMissionStatus(ctx, missionID, status)
		},
	})
}

// Stats reports writer counters for the health surface.
func (w *AsyncWriter) Stats() (written, failed, dropped uint64) {
	return w.written.Load(), w.failed.Load(), w.dropped.Load()
}
