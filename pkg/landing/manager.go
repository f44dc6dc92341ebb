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

// Package landing runs the per-drone precision-landing session machine.
// Reachable transitions are INACTIVE -> ACTIVE -> {COMPLETED, ABORTED} plus
// ACTIVE -> DISCONNECTED on channel loss. DISCONNECTED is never produced by
// operator action. At most one ACTIVE session exists per drone; a second
// start is rejected outright.
package landing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aerolink/dronehub/pkg/kv"
	"github.com/aerolink/dronehub/pkg/logger"
	"github.com/aerolink/dronehub/pkg/models"
	"github.com/aerolink/dronehub/pkg/natsutil"
)

const outputBufferCap = 500

var (
	ErrSessionActive = errors.New("precision landing session already active")
	ErrNoSession     = errors.New("no active precision landing session")
)

// Deliverer sends one event to a drone's live channel. *command.Router
// satisfies it.
type Deliverer interface {
	Deliver(droneID, event string, payload interface{}) error
}

// Manager owns precision-landing sessions. Session records live in the
// 30-minute TTL bucket so an in-flight session survives a hub restart.
type Manager struct {
	store   kv.KVStore
	deliver Deliverer
	pub     *natsutil.EventPublisher
	log     logger.Logger

	// Serializes the read-modify-write over a drone's session record.
	mu sync.Mutex
}

// NewManager wires the landing manager.
func NewManager(store kv.KVStore, deliver Deliverer, pub *natsutil.EventPublisher, log logger.Logger) *Manager {
	return &Manager{
		store:   store,
		deliver: deliver,
		pub:     pub,
		log:     log,
	}
}

func sessionKey(droneID string) string {
	return droneID + ".session"
}

// landingCommandPayload is the precision_landing_command channel event body.
type landingCommandPayload struct {
	Action    string `json:"action"`
	ID        string `json:"id"`
	SessionID string `json:"sessionId"`
}

// Start begins a session. A start while one is ACTIVE is rejected; the
// operator must abort first.
func (m *Manager) Start(ctx context.Context, droneID string, cmd *models.Command) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, err := m.load(ctx, droneID)
	if err != nil {
		return err
	}

	if current != nil && current.Status == models.LandingStatusActive {
		return fmt.Errorf("%w: %s", ErrSessionActive, current.SessionID)
	}

	session := &models.LandingSession{
		SessionID: uuid.New().String(),
		DroneID:   droneID,
		Status:    models.LandingStatusActive,
		StartedAt: time.Now(),
	}

	if err := m.deliver.Deliver(droneID, models.EventPrecisionLandingCommand, &landingCommandPayload{
		Action:    "start",
		ID:        cmd.ID,
		SessionID: session.SessionID,
	}); err != nil {
		return fmt.Errorf("failed to start precision landing on %s: %w", droneID, err)
	}

	if err := m.save(ctx, session); err != nil {
		return err
	}

	m.publishStatus(session)

	m.log.Info().
		Str("drone_id", droneID).
		Str("session_id", session.SessionID).
		Msg("Precision landing session started")

	return nil
}

// Abort ends the ACTIVE session by operator request.
func (m *Manager) Abort(ctx context.Context, droneID string, cmd *models.Command) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, err := m.load(ctx, droneID)
	if err != nil {
		return err
	}

	if session == nil || session.Status != models.LandingStatusActive {
		return ErrNoSession
	}

	// Best effort: the session is finished hub-side even when the drone is
	// already gone.
	if err := m.deliver.Deliver(droneID, models.EventPrecisionLandingCommand, &landingCommandPayload{
		Action:    "abort",
		ID:        cmd.ID,
		SessionID: session.SessionID,
	}); err != nil {
		m.log.Warn().Err(err).Str("drone_id", droneID).Msg("Abort not delivered to drone")
	}

	return m.finish(ctx, session, models.LandingStatusAborted)
}

// HandleOutput ingests one precision_land_real event from the drone. The
// session's output log is a ring buffer capped at outputBufferCap entries.
// LANDED completes the session; ABORTED reported by the drone terminates it
// the same way an operator abort does.
func (m *Manager) HandleOutput(ctx context.Context, droneID string, output *models.LandingOutput) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, err := m.load(ctx, droneID)
	if err != nil {
		return err
	}

	if session == nil || session.Status != models.LandingStatusActive {
		return ErrNoSession
	}

	if output.ReceivedAt.IsZero() {
		output.ReceivedAt = time.Now()
	}

	session.Output = append(session.Output, *output)
	if len(session.Output) > outputBufferCap {
		session.Output = session.Output[len(session.Output)-outputBufferCap:]
	}

	switch output.Stage {
	case "LANDED":
		if err := m.finish(ctx, session, models.LandingStatusCompleted); err != nil {
			return err
		}
	case "ABORTED":
		if err := m.finish(ctx, session, models.LandingStatusAborted); err != nil {
			return err
		}
	default:
		if err := m.save(ctx, session); err != nil {
			return err
		}
	}

	if err := m.pub.PublishLandingOutput(droneID, output); err != nil {
		m.log.Warn().Err(err).Str("drone_id", droneID).Msg("Failed to publish landing output")
	}

	return nil
}

// HandleDisconnect moves an ACTIVE session to DISCONNECTED. Wire it to the
// registry's disconnect listeners; it is a no-op for drones without one.
func (m *Manager) HandleDisconnect(droneID, _ string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	session, err := m.load(ctx, droneID)
	if err != nil || session == nil || session.Status != models.LandingStatusActive {
		return
	}

	if err := m.finish(ctx, session, models.LandingStatusDisconnected); err != nil {
		m.log.Warn().Err(err).Str("drone_id", droneID).Msg("Failed to mark landing session disconnected")
	}
}

// Session returns the drone's most recent session record within the TTL
// window, or nil.
func (m *Manager) Session(ctx context.Context, droneID string) (*models.LandingSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.load(ctx, droneID)
}

func (m *Manager) finish(ctx context.Context, session *models.LandingSession, status models.LandingStatus) error {
	now := time.Now()
	session.Status = status
	session.CompletedAt = &now

	if err := m.save(ctx, session); err != nil {
		return err
	}

	m.publishStatus(session)

	m.log.Info().
		Str("drone_id", session.DroneID).
		Str("session_id", session.SessionID).
		Str("status", string(status)).
		Msg("Precision landing session finished")

	return nil
}

func (m *Manager) load(ctx context.Context, droneID string) (*models.LandingSession, error) {
	data, found, err := m.store.Get(ctx, sessionKey(droneID))
	if err != nil {
		return nil, fmt.Errorf("failed to read landing session for %s: %w", droneID, err)
	}

	if !found {
		return nil, nil
	}

	var session models.LandingSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode landing session for %s: %w", droneID, err)
	}

	return &session, nil
}

func (m *Manager) save(ctx context.Context, session *models.LandingSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal landing session %s: %w", session.SessionID, err)
	}

	if err := m.store.Put(ctx, sessionKey(session.DroneID), data); err != nil {
		return fmt.Errorf("failed to store landing session %s: %w", session.SessionID, err)
	}

	return nil
}

func (m *Manager) publishStatus(session *models.LandingSession) {
	// Status snapshots omit the output log; subscribers already stream it.
	snapshot := *session
	snapshot.Output = nil

	if err := m.pub.PublishLandingStatus(session.DroneID, &snapshot); err != nil {
		m.log.Warn().Err(err).Str("drone_id", session.DroneID).Msg("Failed to publish landing status")
	}
}
