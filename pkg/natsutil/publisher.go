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
	"encoding/json"
	"fmt"
	"time"

	"github.com/aerolink/dronehub/pkg/models"
)

// EventPublisher provides typed publishing onto the per-drone subjects.
type EventPublisher struct {
	bus Bus
}

// NewEventPublisher creates an EventPublisher on top of a broker connection.
func NewEventPublisher(bus Bus) *EventPublisher {
	return &EventPublisher{bus: bus}
}

// PublishCommandResponse puts exactly one response for a command attempt on
// the per-drone response subject.
func (p *EventPublisher) PublishCommandResponse(droneID string, resp *models.CommandResponse) error {
	if resp.Timestamp.IsZero() {
		resp.Timestamp = time.Now()
	}

	return p.publishJSON(CommandResponseSubject(droneID), resp)
}

// PublishTelemetry fans out an enriched telemetry record to live subscribers.
func (p *EventPublisher) PublishTelemetry(droneID string, record *models.EnrichedTelemetry) error {
	return p.publishJSON(TelemetrySubject(droneID), record)
}

// PublishMavros fans out one auxiliary firmware log line.
func (p *EventPublisher) PublishMavros(droneID string, entry *models.MavrosLogEntry) error {
	return p.publishJSON(MavrosSubject(droneID), entry)
}

// PublishLandingOutput fans out one precision-landing output entry.
func (p *EventPublisher) PublishLandingOutput(droneID string, entry *models.LandingOutput) error {
	return p.publishJSON(LandingSubject(droneID), entry)
}

// PublishLandingStatus fans out a precision-landing session snapshot.
func (p *EventPublisher) PublishLandingStatus(droneID string, session *models.LandingSession) error {
	return p.publishJSON(LandingSubject(droneID), session)
}

// PublishCameraFrame forwards a camera frame payload to feed subscribers.
func (p *EventPublisher) PublishCameraFrame(droneID, camera string, payload []byte) error {
	if err := p.bus.Publish(CameraSubject(droneID, camera), payload); err != nil {
		return fmt.Errorf("failed to publish camera frame for %s/%s: %w", droneID, camera, err)
	}

	return nil
}

// PublishStreamStatus fans out a camera stream snapshot on the feed's
// subject so subscribers see activation changes without polling.
func (p *EventPublisher) PublishStreamStatus(stream *models.CameraStream) error {
	return p.publishJSON(CameraSubject(stream.DroneID, stream.Camera), stream)
}

// WebRTCSignal is one relayed signaling message on the drone's webrtc
// subject. The body is opaque to the hub.
type WebRTCSignal struct {
	Event     string          `json:"event"`
	SessionID string          `json:"sessionId,omitempty"`
	Body      json.RawMessage `json:"body,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// PublishWebRTCSignal relays a drone-originated signaling message to the
// requesting client side.
func (p *EventPublisher) PublishWebRTCSignal(droneID string, signal *WebRTCSignal) error {
	if signal.Timestamp.IsZero() {
		signal.Timestamp = time.Now()
	}

	return p.publishJSON(WebRTCSubject(droneID), signal)
}

// LifecycleEvent is published when a drone's connection state changes.
type LifecycleEvent struct {
	DroneID   string    `json:"droneId"`
	State     string    `json:"state"` // connected, disconnected, stale
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// PublishLifecycle announces a connection state change.
func (p *EventPublisher) PublishLifecycle(droneID, state, reason string) error {
	event := LifecycleEvent{
		DroneID:   droneID,
		State:     state,
		Reason:    reason,
		Timestamp: time.Now(),
	}

	return p.publishJSON(LifecycleSubject(droneID), event)
}

func (p *EventPublisher) publishJSON(subject string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload for %s: %w", subject, err)
	}

	if err := p.bus.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}

	return nil
}
