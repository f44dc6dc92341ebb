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
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/aerolink/dronehub/pkg/command"
	"github.com/aerolink/dronehub/pkg/models"
	"github.com/aerolink/dronehub/pkg/registry"
	pkgwebrtc "github.com/aerolink/dronehub/pkg/webrtc"
)

// droneSummary is the list-view shape for connected drones.
type droneSummary struct {
	DroneID           string               `json:"droneId"`
	Model             string               `json:"model"`
	Version           string               `json:"version"`
	DroneType         models.DroneType     `json:"droneType"`
	Capabilities      []string             `json:"capabilities,omitempty"`
	WebRTCSupported   bool                 `json:"webrtcSupported"`
	ConnectedAt       time.Time            `json:"connectedAt"`
	LastHeartbeat     time.Time            `json:"lastHeartbeat"`
	ConnectionQuality int                  `json:"connectionQuality"`
	Activity          models.ActivityFlags `json:"activity"`
}

func (s *Server) getDrones(w http.ResponseWriter, _ *http.Request) {
	entries := s.registry.Snapshot()

	summaries := make([]droneSummary, 0, len(entries))
	for i := range entries {
		summaries = append(summaries, summarize(&entries[i]))
	}

	s.writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) getDrone(w http.ResponseWriter, r *http.Request) {
	droneID := mux.Vars(r)["id"]

	entry, ok := s.registry.Get(droneID)
	if !ok {
		http.Error(w, "drone not connected", http.StatusNotFound)
		return
	}

	s.writeJSON(w, http.StatusOK, summarize(&entry))
}

// postCommand is the HTTP entry into the command router; it follows the same
// intercept-or-forward path as commands arriving on the broker.
func (s *Server) postCommand(w http.ResponseWriter, r *http.Request) {
	droneID := mux.Vars(r)["id"]

	var cmd models.Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, "malformed command", http.StatusBadRequest)
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	if err := s.commands.Dispatch(ctx, droneID, &cmd); err != nil {
		if errors.Is(err, command.ErrNotConnected) {
			http.Error(w, "drone not connected", http.StatusNotFound)
			return
		}

		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	s.writeJSON(w, http.StatusAccepted, map[string]string{"commandId": cmd.ID, "status": "accepted"})
}

func (s *Server) getTelemetry(w http.ResponseWriter, r *http.Request) {
	droneID := mux.Vars(r)["id"]

	ctx, cancel := s.requestContext(r)
	defer cancel()

	latest, err := s.telemetry.Latest(ctx, droneID)
	if err != nil {
		s.internalError(w, err, "Failed to read telemetry")
		return
	}

	if latest == nil {
		http.Error(w, "no telemetry cached", http.StatusNotFound)
		return
	}

	s.writeJSON(w, http.StatusOK, latest)
}

func (s *Server) getMavros(w http.ResponseWriter, r *http.Request) {
	droneID := mux.Vars(r)["id"]

	ctx, cancel := s.requestContext(r)
	defer cancel()

	buffer, err := s.telemetry.MavrosBuffer(ctx, droneID)
	if err != nil {
		s.internalError(w, err, "Failed to read mavros buffer")
		return
	}

	s.writeJSON(w, http.StatusOK, buffer)
}

func (s *Server) getMissions(w http.ResponseWriter, r *http.Request) {
	droneID := mux.Vars(r)["id"]

	ctx, cancel := s.requestContext(r)
	defer cancel()

	missions, err := s.missions.List(ctx, droneID)
	if err != nil {
		s.internalError(w, err, "Failed to list missions")
		return
	}

	s.writeJSON(w, http.StatusOK, missions)
}

func (s *Server) getMission(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	ctx, cancel := s.requestContext(r)
	defer cancel()

	record, err := s.missions.Get(ctx, vars["id"], vars["missionId"])
	if err != nil {
		s.internalError(w, err, "Failed to read mission")
		return
	}

	if record == nil {
		http.Error(w, "mission not found", http.StatusNotFound)
		return
	}

	s.writeJSON(w, http.StatusOK, record)
}

func (s *Server) getLandingSession(w http.ResponseWriter, r *http.Request) {
	droneID := mux.Vars(r)["id"]

	ctx, cancel := s.requestContext(r)
	defer cancel()

	session, err := s.landing.Session(ctx, droneID)
	if err != nil {
		s.internalError(w, err, "Failed to read landing session")
		return
	}

	if session == nil {
		http.Error(w, "no landing session", http.StatusNotFound)
		return
	}

	s.writeJSON(w, http.StatusOK, session)
}

func (s *Server) getCameraStreams(w http.ResponseWriter, r *http.Request) {
	droneID := mux.Vars(r)["id"]

	ctx, cancel := s.requestContext(r)
	defer cancel()

	streams, err := s.webrtc.Streams(ctx, droneID)
	if err != nil {
		s.internalError(w, err, "Failed to list camera streams")
		return
	}

	s.writeJSON(w, http.StatusOK, streams)
}

func (s *Server) getTransport(w http.ResponseWriter, r *http.Request) {
	droneID := mux.Vars(r)["id"]

	ctx, cancel := s.requestContext(r)
	defer cancel()

	transport := s.webrtc.RecommendTransport(ctx, droneID)

	s.writeJSON(w, http.StatusOK, map[string]models.CameraTransport{"transport": transport})
}

func (s *Server) getWebRTCSession(w http.ResponseWriter, r *http.Request) {
	droneID := mux.Vars(r)["id"]

	ctx, cancel := s.requestContext(r)
	defer cancel()

	session, err := s.webrtc.Session(ctx, droneID)
	if err != nil {
		s.internalError(w, err, "Failed to read webrtc session")
		return
	}

	if session == nil {
		http.Error(w, "no webrtc session", http.StatusNotFound)
		return
	}

	s.writeJSON(w, http.StatusOK, session)
}

func (s *Server) postWebRTCOffer(w http.ResponseWriter, r *http.Request) {
	droneID := mux.Vars(r)["id"]

	ctx, cancel := s.requestContext(r)
	defer cancel()

	session, err := s.webrtc.RequestOffer(ctx, droneID)
	if err != nil {
		switch {
		case errors.Is(err, pkgwebrtc.ErrNotConnected):
			http.Error(w, "drone not connected", http.StatusNotFound)
		case errors.Is(err, pkgwebrtc.ErrUnsupported):
			http.Error(w, "drone does not support webrtc", http.StatusConflict)
		default:
			s.internalError(w, err, "Failed to request webrtc offer")
		}

		return
	}

	s.writeJSON(w, http.StatusAccepted, session)
}

type clientSignal struct {
	Event string          `json:"event"`
	Body  json.RawMessage `json:"body"`
}

// postWebRTCSignal relays an operator-side answer or ICE candidate down to
// the drone.
func (s *Server) postWebRTCSignal(w http.ResponseWriter, r *http.Request) {
	droneID := mux.Vars(r)["id"]

	var signal clientSignal
	if err := json.NewDecoder(r.Body).Decode(&signal); err != nil {
		http.Error(w, "malformed signal", http.StatusBadRequest)
		return
	}

	if signal.Event != models.EventWebRTCAnswer && signal.Event != models.EventWebRTCICECandidate {
		http.Error(w, "unsupported signal event", http.StatusBadRequest)
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	if err := s.webrtc.HandleClientSignal(ctx, droneID, signal.Event, signal.Body); err != nil {
		if errors.Is(err, pkgwebrtc.ErrNoSession) {
			http.Error(w, "no webrtc session", http.StatusNotFound)
			return
		}

		s.internalError(w, err, "Failed to relay signal")

		return
	}

	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) postWebRTCQuality(w http.ResponseWriter, r *http.Request) {
	droneID := mux.Vars(r)["id"]

	var quality models.WebRTCQuality
	if err := json.NewDecoder(r.Body).Decode(&quality); err != nil {
		http.Error(w, "malformed quality report", http.StatusBadRequest)
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	if err := s.webrtc.UpdateQuality(ctx, droneID, &quality); err != nil {
		if errors.Is(err, pkgwebrtc.ErrNoSession) {
			http.Error(w, "no webrtc session", http.StatusNotFound)
			return
		}

		s.internalError(w, err, "Failed to record quality")

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteWebRTCSession(w http.ResponseWriter, r *http.Request) {
	droneID := mux.Vars(r)["id"]

	ctx, cancel := s.requestContext(r)
	defer cancel()

	if err := s.webrtc.CloseSession(ctx, droneID); err != nil {
		if errors.Is(err, pkgwebrtc.ErrNoSession) {
			http.Error(w, "no webrtc session", http.StatusNotFound)
			return
		}

		s.internalError(w, err, "Failed to close webrtc session")

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), defaultHandlerTimeout)
}

func (s *Server) internalError(w http.ResponseWriter, err error, msg string) {
	s.log.Error().Err(err).Msg(msg)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func summarize(entry *registry.Entry) droneSummary {
	return droneSummary{
		DroneID:           entry.DroneID,
		Model:             entry.Model,
		Version:           entry.Version,
		DroneType:         entry.DroneType,
		Capabilities:      entry.Capabilities,
		WebRTCSupported:   entry.WebRTCSupported,
		ConnectedAt:       entry.ConnectedAt,
		LastHeartbeat:     entry.LastHeartbeat,
		ConnectionQuality: entry.ConnectionQuality,
		Activity:          entry.Activity,
	}
}
