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

// Package webrtc negotiates the low-latency camera transport. The hub never
// terminates media itself; it relays SDP and ICE between the drone channel
// and the requesting client, tracks the session FSM (negotiating ->
// connected -> closed | failed) and recommends per-camera transport with a
// websocket fallback when the datachannel is unavailable.
package webrtc

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
	"github.com/aerolink/dronehub/pkg/registry"
)

var (
	ErrNotConnected = errors.New("drone not connected")
	ErrUnsupported  = errors.New("drone does not support webrtc")
	ErrNoSession    = errors.New("no webrtc session")
)

// Deliverer sends one event to a drone's live channel. *command.Router
// satisfies it.
type Deliverer interface {
	Deliver(droneID, event string, payload interface{}) error
}

// Config bounds the negotiation and the feed staleness sweep.
type Config struct {
	ConnectTimeout time.Duration
	FeedStaleAfter time.Duration
	SweepInterval  time.Duration
}

// DefaultConfig matches the firmware-side expectations.
func DefaultConfig() Config {
	return Config{
		ConnectTimeout: 15 * time.Second,
		FeedStaleAfter: 60 * time.Second,
		SweepInterval:  15 * time.Second,
	}
}

// Negotiator owns webrtc sessions and camera stream bookkeeping.
type Negotiator struct {
	registry registry.ConnectionRegistry
	sessions kv.KVStore
	streams  kv.KVStore
	deliver  Deliverer
	pub      *natsutil.EventPublisher
	cfg      Config
	log      logger.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewNegotiator wires the negotiator. sessions and streams are the
// TTL-scoped buckets for session and per-camera stream records.
func NewNegotiator(reg registry.ConnectionRegistry, sessions, streams kv.KVStore, deliver Deliverer, pub *natsutil.EventPublisher, cfg Config, log logger.Logger) *Negotiator {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = DefaultConfig().ConnectTimeout
	}

	if cfg.FeedStaleAfter <= 0 {
		cfg.FeedStaleAfter = DefaultConfig().FeedStaleAfter
	}

	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultConfig().SweepInterval
	}

	return &Negotiator{
		registry: reg,
		sessions: sessions,
		streams:  streams,
		deliver:  deliver,
		pub:      pub,
		cfg:      cfg,
		log:      log,
		timers:   map[string]*time.Timer{},
	}
}

func webrtcSessionKey(droneID string) string {
	return droneID + ".session"
}

func streamKey(droneID, camera string) string {
	return droneID + "." + camera
}

// cameraName maps the binary header camera id to the firmware camera names.
func cameraName(id uint16) string {
	switch id {
	case 1:
		return "front"
	case 2:
		return "bottom"
	}

	return fmt.Sprintf("camera%d", id)
}

// RequestOffer opens a negotiation with the drone. When a session is already
// negotiating or connected the existing session is returned unchanged.
func (n *Negotiator) RequestOffer(ctx context.Context, droneID string) (*models.WebRTCSession, error) {
	entry, ok := n.registry.Get(droneID)
	if !ok {
		return nil, ErrNotConnected
	}

	if !entry.WebRTCSupported {
		return nil, ErrUnsupported
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if current, err := n.loadSession(ctx, droneID); err != nil {
		return nil, err
	} else if current != nil && (current.Status == models.WebRTCStatusNegotiating || current.Status == models.WebRTCStatusConnected) {
		return current, nil
	}

	now := time.Now()
	session := &models.WebRTCSession{
		SessionID: uuid.New().String(),
		DroneID:   droneID,
		Status:    models.WebRTCStatusNegotiating,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := n.deliver.Deliver(droneID, models.EventWebRTCRequestOffer, &models.SignalPayload{
		SessionID: session.SessionID,
		DroneID:   droneID,
	}); err != nil {
		return nil, fmt.Errorf("failed to request offer from %s: %w", droneID, err)
	}

	if err := n.saveSession(ctx, session); err != nil {
		return nil, err
	}

	n.armConnectTimeout(droneID, session.SessionID)

	n.log.Info().
		Str("drone_id", droneID).
		Str("session_id", session.SessionID).
		Msg("WebRTC negotiation started")

	return session, nil
}

// HandleDroneSignal relays an offer or ICE candidate from the drone to the
// client side.
func (n *Negotiator) HandleDroneSignal(ctx context.Context, droneID, event string, body json.RawMessage) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	session, err := n.loadSession(ctx, droneID)
	if err != nil {
		return err
	}

	if session == nil || terminal(session.Status) {
		return ErrNoSession
	}

	n.registry.MarkActivity(droneID, registry.FeatureWebRTC)

	return n.pub.PublishWebRTCSignal(droneID, &natsutil.WebRTCSignal{
		Event:     event,
		SessionID: session.SessionID,
		Body:      body,
	})
}

// HandleClientSignal relays an answer or ICE candidate from the client down
// the drone channel.
func (n *Negotiator) HandleClientSignal(ctx context.Context, droneID, event string, body json.RawMessage) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	session, err := n.loadSession(ctx, droneID)
	if err != nil {
		return err
	}

	if session == nil || terminal(session.Status) {
		return ErrNoSession
	}

	return n.deliver.Deliver(droneID, event, &models.SignalPayload{
		SessionID: session.SessionID,
		DroneID:   droneID,
		Body:      body,
	})
}

// HandleChannelSetup records the data channels the drone opened.
func (n *Negotiator) HandleChannelSetup(ctx context.Context, droneID string, channels []string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	session, err := n.loadSession(ctx, droneID)
	if err != nil {
		return err
	}

	if session == nil || terminal(session.Status) {
		return ErrNoSession
	}

	session.DataChannels = channels
	session.UpdatedAt = time.Now()

	return n.saveSession(ctx, session)
}

// HandleConnectionState applies a webrtc_connection_state report. Terminal
// sessions ignore further reports.
func (n *Negotiator) HandleConnectionState(ctx context.Context, droneID, state string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	session, err := n.loadSession(ctx, droneID)
	if err != nil {
		return err
	}

	if session == nil || terminal(session.Status) {
		return ErrNoSession
	}

	var next models.WebRTCSessionStatus

	switch state {
	case "connected":
		next = models.WebRTCStatusConnected
	case "failed", "disconnected":
		next = models.WebRTCStatusFailed
	case "closed":
		next = models.WebRTCStatusClosed
	default:
		// Transient ICE states (checking, new) do not move the FSM.
		return nil
	}

	return n.transition(ctx, session, next)
}

// UpdateQuality attaches the latest quality snapshot to the session.
func (n *Negotiator) UpdateQuality(ctx context.Context, droneID string, quality *models.WebRTCQuality) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	session, err := n.loadSession(ctx, droneID)
	if err != nil {
		return err
	}

	if session == nil || session.Status != models.WebRTCStatusConnected {
		return ErrNoSession
	}

	session.Quality = quality
	session.UpdatedAt = time.Now()

	return n.saveSession(ctx, session)
}

// CloseSession ends a live session and tells the drone to tear down.
func (n *Negotiator) CloseSession(ctx context.Context, droneID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	session, err := n.loadSession(ctx, droneID)
	if err != nil {
		return err
	}

	if session == nil || terminal(session.Status) {
		return ErrNoSession
	}

	if err := n.deliver.Deliver(droneID, models.EventWebRTCClose, &models.SignalPayload{
		SessionID: session.SessionID,
		DroneID:   droneID,
	}); err != nil {
		n.log.Warn().Err(err).Str("drone_id", droneID).Msg("WebRTC close not delivered to drone")
	}

	return n.transition(ctx, session, models.WebRTCStatusClosed)
}

// HandleDisconnect fails a live session on channel loss. Wire it to the
// registry's disconnect listeners.
func (n *Negotiator) HandleDisconnect(droneID, _ string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	n.mu.Lock()
	defer n.mu.Unlock()

	session, err := n.loadSession(ctx, droneID)
	if err != nil || session == nil || terminal(session.Status) {
		return
	}

	if err := n.transition(ctx, session, models.WebRTCStatusFailed); err != nil {
		n.log.Warn().Err(err).Str("drone_id", droneID).Msg("Failed to fail webrtc session on disconnect")
	}
}

// RecommendTransport picks the delivery mechanism for one camera feed:
// the datachannel when a session is connected, the websocket fallback
// otherwise.
func (n *Negotiator) RecommendTransport(ctx context.Context, droneID string) models.CameraTransport {
	entry, ok := n.registry.Get(droneID)
	if !ok || !entry.WebRTCSupported {
		return models.TransportWebSocket
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	session, err := n.loadSession(ctx, droneID)
	if err != nil || session == nil || session.Status != models.WebRTCStatusConnected {
		return models.TransportWebSocket
	}

	return models.TransportDataChannel
}

// StreamConfig is the camera_stream_start configuration block.
type StreamConfig struct {
	Resolution string `json:"resolution"`
	FPS        int    `json:"fps"`
	Quality    string `json:"quality"`
}

// StreamStart records one camera stream as active.
func (n *Negotiator) StreamStart(ctx context.Context, droneID, camera string, cfg StreamConfig) (*models.CameraStream, error) {
	if !n.registry.IsConnected(droneID) {
		return nil, ErrNotConnected
	}

	n.registry.MarkActivity(droneID, registry.FeatureCamera)

	stream := &models.CameraStream{
		DroneID:    droneID,
		Camera:     camera,
		Resolution: cfg.Resolution,
		FPS:        cfg.FPS,
		Quality:    cfg.Quality,
		Transport:  n.RecommendTransport(ctx, droneID),
		Active:     true,
		StartedAt:  time.Now(),
	}

	if err := n.saveStream(ctx, stream); err != nil {
		return nil, err
	}

	n.log.Info().
		Str("drone_id", droneID).
		Str("camera", camera).
		Str("transport", string(stream.Transport)).
		Msg("Camera stream started")

	return stream, nil
}

// StreamStop marks one camera stream inactive. Unknown streams are a no-op.
func (n *Negotiator) StreamStop(ctx context.Context, droneID, camera string) error {
	stream, err := n.Stream(ctx, droneID, camera)
	if err != nil || stream == nil {
		return err
	}

	stream.Active = false

	return n.saveStream(ctx, stream)
}

// HandleTransportReady upgrades a camera stream to the datachannel once the
// drone reports the transport usable.
func (n *Negotiator) HandleTransportReady(ctx context.Context, droneID, camera string) error {
	stream, err := n.Stream(ctx, droneID, camera)
	if err != nil {
		return err
	}

	if stream == nil {
		return fmt.Errorf("no stream record for %s/%s", droneID, camera)
	}

	stream.Transport = models.TransportDataChannel

	return n.saveStream(ctx, stream)
}

// HandleBinaryFrame validates one binary camera frame and fans the payload
// out. Short or bad-magic frames are dropped.
func (n *Negotiator) HandleBinaryFrame(ctx context.Context, droneID string, data []byte) error {
	hdr, payload, err := ParseFrame(data)
	if err != nil {
		n.log.Warn().Err(err).Str("drone_id", droneID).Msg("Dropping invalid camera frame")
		return err
	}

	return n.HandleCameraFrame(ctx, droneID, cameraName(hdr.CameraID), payload)
}

// HandleCameraFrame fans one camera frame payload out and advances the
// stream's last-frame bookkeeping. Frames for unknown streams are dropped.
func (n *Negotiator) HandleCameraFrame(ctx context.Context, droneID, camera string, payload []byte) error {
	stream, err := n.Stream(ctx, droneID, camera)
	if err != nil {
		return err
	}

	if stream == nil || !stream.Active {
		return fmt.Errorf("no active stream for %s/%s", droneID, camera)
	}

	stream.LastFrameAt = time.Now()
	stream.FrameCount++

	if err := n.saveStream(ctx, stream); err != nil {
		n.log.Warn().Err(err).Str("drone_id", droneID).Str("camera", camera).Msg("Failed to update stream record")
	}

	return n.pub.PublishCameraFrame(droneID, camera, payload)
}

// Session returns the drone's session record within the TTL window, or nil.
func (n *Negotiator) Session(ctx context.Context, droneID string) (*models.WebRTCSession, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.loadSession(ctx, droneID)
}

// Stream returns one camera stream record, or nil.
func (n *Negotiator) Stream(ctx context.Context, droneID, camera string) (*models.CameraStream, error) {
	data, found, err := n.streams.Get(ctx, streamKey(droneID, camera))
	if err != nil {
		return nil, fmt.Errorf("failed to read stream %s/%s: %w", droneID, camera, err)
	}

	if !found {
		return nil, nil
	}

	var stream models.CameraStream
	if err := json.Unmarshal(data, &stream); err != nil {
		return nil, fmt.Errorf("failed to decode stream %s/%s: %w", droneID, camera, err)
	}

	return &stream, nil
}

// Streams returns every stream record for a drone.
func (n *Negotiator) Streams(ctx context.Context, droneID string) ([]*models.CameraStream, error) {
	keys, err := n.streams.Keys(ctx, droneID)
	if err != nil {
		return nil, fmt.Errorf("failed to list streams for %s: %w", droneID, err)
	}

	records := make([]*models.CameraStream, 0, len(keys))

	for _, key := range keys {
		data, found, err := n.streams.Get(ctx, key)
		if err != nil || !found {
			continue
		}

		var stream models.CameraStream
		if err := json.Unmarshal(data, &stream); err != nil {
			continue
		}

		records = append(records, &stream)
	}

	return records, nil
}

// Run drives the feed staleness sweep until ctx is done. The sweep is
// independent of the heartbeat monitor: a drone can be live while one of its
// feeds has gone quiet.
func (n *Negotiator) Run(ctx context.Context) {
	ticker := time.NewTicker(n.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n.SweepStaleFeeds(ctx)
		}
	}
}

// SweepStaleFeeds deactivates streams whose last frame is older than the
// staleness bound and announces each deactivation on the feed's subject.
// Returns the number of feeds deactivated.
func (n *Negotiator) SweepStaleFeeds(ctx context.Context) int {
	keys, err := n.streams.Keys(ctx, "")
	if err != nil {
		n.log.Warn().Err(err).Msg("Feed sweep could not list streams")
		return 0
	}

	cutoff := time.Now().Add(-n.cfg.FeedStaleAfter)
	swept := 0

	for _, key := range keys {
		data, found, err := n.streams.Get(ctx, key)
		if err != nil || !found {
			continue
		}

		var stream models.CameraStream
		if err := json.Unmarshal(data, &stream); err != nil {
			continue
		}

		if !stream.Active {
			continue
		}

		last := stream.LastFrameAt
		if last.IsZero() {
			last = stream.StartedAt
		}

		if last.After(cutoff) {
			continue
		}

		stream.Active = false
		if err := n.saveStream(ctx, &stream); err != nil {
			continue
		}

		swept++

		if err := n.pub.PublishStreamStatus(&stream); err != nil {
			n.log.Warn().Err(err).
				Str("drone_id", stream.DroneID).
				Str("camera", stream.Camera).
				Msg("Failed to publish stale feed status")
		}

		n.log.Info().
			Str("drone_id", stream.DroneID).
			Str("camera", stream.Camera).
			Time("last_frame", last).
			Msg("Camera feed marked stale")
	}

	return swept
}

func (n *Negotiator) transition(ctx context.Context, session *models.WebRTCSession, next models.WebRTCSessionStatus) error {
	session.Status = next
	session.UpdatedAt = time.Now()

	if terminal(next) || next == models.WebRTCStatusConnected {
		n.disarmConnectTimeout(session.SessionID)
	}

	if err := n.saveSession(ctx, session); err != nil {
		return err
	}

	if err := n.pub.PublishWebRTCSignal(session.DroneID, &natsutil.WebRTCSignal{
		Event:     models.EventWebRTCConnState,
		SessionID: session.SessionID,
		Body:      json.RawMessage(fmt.Sprintf("%q", next)),
	}); err != nil {
		n.log.Warn().Err(err).Str("drone_id", session.DroneID).Msg("Failed to publish webrtc state")
	}

	n.log.Info().
		Str("drone_id", session.DroneID).
		Str("session_id", session.SessionID).
		Str("status", string(next)).
		Msg("WebRTC session state changed")

	return nil
}

// armConnectTimeout fails the negotiation if the session has not connected
// in time. Callers hold n.mu.
func (n *Negotiator) armConnectTimeout(droneID, sessionID string) {
	n.timers[sessionID] = time.AfterFunc(n.cfg.ConnectTimeout, func() {
		n.mu.Lock()
		defer n.mu.Unlock()

		delete(n.timers, sessionID)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		session, err := n.loadSession(ctx, droneID)
		if err != nil || session == nil || session.SessionID != sessionID {
			return
		}

		if session.Status != models.WebRTCStatusNegotiating {
			return
		}

		if err := n.transition(ctx, session, models.WebRTCStatusFailed); err != nil {
			n.log.Warn().Err(err).Str("drone_id", droneID).Msg("Failed to time out webrtc negotiation")
		}
	})
}

func (n *Negotiator) disarmConnectTimeout(sessionID string) {
	if t, ok := n.timers[sessionID]; ok {
		t.Stop()
		delete(n.timers, sessionID)
	}
}

func (n *Negotiator) loadSession(ctx context.Context, droneID string) (*models.WebRTCSession, error) {
	data, found, err := n.sessions.Get(ctx, webrtcSessionKey(droneID))
	if err != nil {
		return nil, fmt.Errorf("failed to read webrtc session for %s: %w", droneID, err)
	}

	if !found {
		return nil, nil
	}

	var session models.WebRTCSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode webrtc session for %s: %w", droneID, err)
	}

	return &session, nil
}

func (n *Negotiator) saveSession(ctx context.Context, session *models.WebRTCSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal webrtc session %s: %w", session.SessionID, err)
	}

	if err := n.sessions.Put(ctx, webrtcSessionKey(session.DroneID), data); err != nil {
		return fmt.Errorf("failed to store webrtc session %s: %w", session.SessionID, err)
	}

	return nil
}

func (n *Negotiator) saveStream(ctx context.Context, stream *models.CameraStream) error {
	data, err := json.Marshal(stream)
	if err != nil {
		return fmt.Errorf("failed to marshal stream %s/%s: %w", stream.DroneID, stream.Camera, err)
	}

	if err := n.streams.Put(ctx, streamKey(stream.DroneID, stream.Camera), data); err != nil {
		return fmt.Errorf("failed to store stream %s/%s: %w", stream.DroneID, stream.Camera, err)
	}

	return nil
}

func terminal(status models.WebRTCSessionStatus) bool {
	return status == models.WebRTCStatusFailed || status == models.WebRTCStatusClosed
}
