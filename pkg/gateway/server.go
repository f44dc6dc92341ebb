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

// Package gateway owns the drone-facing edge of the hub: the discovery and
// registration handshake, the websocket channel each drone speaks over, and
// the operator-facing HTTP status surface.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/aerolink/dronehub/pkg/logger"
	"github.com/aerolink/dronehub/pkg/models"
	"github.com/aerolink/dronehub/pkg/registry"
	"github.com/aerolink/dronehub/pkg/webrtc"
)

const (
	defaultTelemetryRateHz    = 1
	defaultHeartbeatInterval  = 10 * time.Second
	defaultReadHeaderTimeout  = 10 * time.Second
	defaultHandlerTimeout     = 10 * time.Second
	healthyQualityFloor       = 40
	websocketHandshakeTimeout = 10 * time.Second
)

var errListenAddrRequired = errors.New("listen_addr is required")

// TelemetryService is the slice of the telemetry ingest the gateway needs.
type TelemetryService interface {
	HandleFrame(ctx context.Context, droneID string, frame *models.TelemetryFrame, receivedAt time.Time) (*models.TelemetryAck, error)
	HandleMavros(ctx context.Context, droneID string, entry *models.MavrosLogEntry) error
	Latest(ctx context.Context, droneID string) (*models.EnrichedTelemetry, error)
	MavrosBuffer(ctx context.Context, droneID string) ([]models.MavrosLogEntry, error)
}

// CommandService accepts operator commands and drone command results.
type CommandService interface {
	Dispatch(ctx context.Context, droneID string, cmd *models.Command) error
	RelayResult(droneID string, result *models.DroneCommandResult) error
}

// MissionService is the mission translator surface used by the gateway.
type MissionService interface {
	ApplyAck(ctx context.Context, droneID string, ack *models.MissionAck) error
	Get(ctx context.Context, droneID, missionID string) (*models.MissionRecord, error)
	List(ctx context.Context, droneID string) ([]*models.MissionRecord, error)
}

// LandingService is the precision-landing surface used by the gateway.
type LandingService interface {
	HandleOutput(ctx context.Context, droneID string, output *models.LandingOutput) error
	Session(ctx context.Context, droneID string) (*models.LandingSession, error)
}

// WebRTCService is the transport negotiator surface used by the gateway.
type WebRTCService interface {
	RequestOffer(ctx context.Context, droneID string) (*models.WebRTCSession, error)
	HandleDroneSignal(ctx context.Context, droneID, event string, body json.RawMessage) error
	HandleClientSignal(ctx context.Context, droneID, event string, body json.RawMessage) error
	HandleChannelSetup(ctx context.Context, droneID string, channels []string) error
	HandleConnectionState(ctx context.Context, droneID, state string) error
	HandleTransportReady(ctx context.Context, droneID, camera string) error
	HandleBinaryFrame(ctx context.Context, droneID string, data []byte) error
	HandleCameraFrame(ctx context.Context, droneID, camera string, payload []byte) error
	StreamStart(ctx context.Context, droneID, camera string, cfg webrtc.StreamConfig) (*models.CameraStream, error)
	StreamStop(ctx context.Context, droneID, camera string) error
	UpdateQuality(ctx context.Context, droneID string, quality *models.WebRTCQuality) error
	CloseSession(ctx context.Context, droneID string) error
	Session(ctx context.Context, droneID string) (*models.WebRTCSession, error)
	Streams(ctx context.Context, droneID string) ([]*models.CameraStream, error)
	RecommendTransport(ctx context.Context, droneID string) models.CameraTransport
}

// Services bundles the hub components the gateway fronts.
type Services struct {
	Telemetry TelemetryService
	Commands  CommandService
	Missions  MissionService
	Landing   LandingService
	WebRTC    WebRTCService
}

// Server terminates drone websocket channels and serves the HTTP API.
type Server struct {
	cfg      *models.HubConfig
	registry registry.ConnectionRegistry

	telemetry TelemetryService
	commands  CommandService
	missions  MissionService
	landing   LandingService
	webrtc    WebRTCService

	tokens *TokenIssuer
	stale  time.Duration
	log    logger.Logger

	router   *mux.Router
	httpSrv  *http.Server
	upgrader websocket.Upgrader

	startedAt time.Time
}

// NewServer wires the gateway. tokens may be nil, in which case the
// handshake issues no session tokens and the websocket endpoint accepts
// unauthenticated upgrades (simulator setups).
func NewServer(
	cfg *models.HubConfig,
	reg registry.ConnectionRegistry,
	svcs Services,
	tokens *TokenIssuer,
	staleThreshold time.Duration,
	log logger.Logger,
) (*Server, error) {
	if cfg.ListenAddr == "" {
		return nil, errListenAddrRequired
	}

	s := &Server{
		cfg:       cfg,
		registry:  reg,
		telemetry: svcs.Telemetry,
		commands:  svcs.Commands,
		missions:  svcs.Missions,
		landing:   svcs.Landing,
		webrtc:    svcs.WebRTC,
		tokens:    tokens,
		stale:     staleThreshold,
		log:       log,
		router:    mux.NewRouter(),
		upgrader: websocket.Upgrader{
			HandshakeTimeout: websocketHandshakeTimeout,
			ReadBufferSize:   4096,
			WriteBufferSize:  4096,
			// Drones connect from field networks; origin checks are a
			// browser concern and drones are not browsers.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		startedAt: time.Now(),
	}

	s.setupRoutes()

	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.getHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/health/drones", s.getDroneHealth).Methods(http.MethodGet)

	s.router.HandleFunc("/drone/discover", s.postDiscover).Methods(http.MethodPost)
	s.router.HandleFunc("/drone/register", s.postRegister).Methods(http.MethodPost)
	s.router.HandleFunc("/drone/ws", s.handleWebsocket).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/drones", s.getDrones).Methods(http.MethodGet)
	api.HandleFunc("/drones/{id}", s.getDrone).Methods(http.MethodGet)
	api.HandleFunc("/drones/{id}/command", s.postCommand).Methods(http.MethodPost)
	api.HandleFunc("/drones/{id}/telemetry", s.getTelemetry).Methods(http.MethodGet)
	api.HandleFunc("/drones/{id}/mavros", s.getMavros).Methods(http.MethodGet)
	api.HandleFunc("/drones/{id}/missions", s.getMissions).Methods(http.MethodGet)
	api.HandleFunc("/drones/{id}/missions/{missionId}", s.getMission).Methods(http.MethodGet)
	api.HandleFunc("/drones/{id}/landing", s.getLandingSession).Methods(http.MethodGet)
	api.HandleFunc("/drones/{id}/cameras", s.getCameraStreams).Methods(http.MethodGet)
	api.HandleFunc("/drones/{id}/transport", s.getTransport).Methods(http.MethodGet)
	api.HandleFunc("/drones/{id}/webrtc", s.getWebRTCSession).Methods(http.MethodGet)
	api.HandleFunc("/drones/{id}/webrtc", s.deleteWebRTCSession).Methods(http.MethodDelete)
	api.HandleFunc("/drones/{id}/webrtc/offer", s.postWebRTCOffer).Methods(http.MethodPost)
	api.HandleFunc("/drones/{id}/webrtc/signal", s.postWebRTCSignal).Methods(http.MethodPost)
	api.HandleFunc("/drones/{id}/webrtc/quality", s.postWebRTCQuality).Methods(http.MethodPost)
}

// Handler exposes the routed handler, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins serving and blocks until the listener fails or Shutdown is
// called.
func (s *Server) Start() error {
	s.httpSrv = &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.router,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
	}

	s.log.Info().Str("addr", s.cfg.ListenAddr).Msg("Gateway listening")

	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("gateway server failed: %w", err)
	}

	return nil
}

// Shutdown stops accepting connections and drains in-flight requests. Live
// drone channels are closed by their read loops as the listener goes away.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}

	if err := s.httpSrv.Shutdown(ctx); err != nil {
		return fmt.Errorf("gateway shutdown failed: %w", err)
	}

	return nil
}

// wsEndpoint is the externally visible websocket URL handed out by the
// discovery handshake.
func (s *Server) wsEndpoint() string {
	base := s.cfg.PublicURL
	if base == "" {
		base = "ws://" + strings.TrimPrefix(s.cfg.ListenAddr, ":")
		if strings.HasPrefix(s.cfg.ListenAddr, ":") {
			base = "ws://localhost" + s.cfg.ListenAddr
		}
	}

	base = strings.Replace(base, "https://", "wss://", 1)
	base = strings.Replace(base, "http://", "ws://", 1)

	return strings.TrimSuffix(base, "/") + "/drone/ws"
}

// handleWebsocket upgrades the drone channel and runs its read loop until
// the connection dies. When token auth is configured, the session token is
// checked before the upgrade and the registration payload must carry the
// same droneId the token was issued for.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	var tokenDroneID string

	if s.tokens != nil {
		token := bearerToken(r)
		if token == "" {
			http.Error(w, "session token required", http.StatusUnauthorized)
			return
		}

		droneID, err := s.tokens.Validate(token)
		if err != nil {
			http.Error(w, "invalid session token", http.StatusUnauthorized)
			return
		}

		tokenDroneID = droneID
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Str("remote_addr", r.RemoteAddr).Msg("Websocket upgrade failed")
		return
	}

	dc := &droneConn{
		srv:     s,
		channel: newDroneChannel(conn),
		log:     s.log.With().Str("remote_addr", r.RemoteAddr).Logger(),
		tokenID: tokenDroneID,
	}

	dc.run(r.Context())
}

// bearerToken pulls the session token from the Authorization header or the
// token query parameter; drones on constrained websocket clients use the
// latter.
func bearerToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if token, found := strings.CutPrefix(auth, "Bearer "); found {
			return token
		}
	}

	return r.URL.Query().Get("token")
}

type discoverResponse struct {
	WSEndpoint         string       `json:"wsEndpoint"`
	TelemetryRateHz    int          `json:"telemetryRateHz"`
	HeartbeatIntervalS int          `json:"heartbeatIntervalS"`
	Features           featureFlags `json:"features"`
	ServerTime         int64        `json:"serverTime"`
}

type featureFlags struct {
	WebRTC           bool `json:"webrtc"`
	Camera           bool `json:"camera"`
	PrecisionLanding bool `json:"precisionLanding"`
	Missions         bool `json:"missions"`
	Mavros           bool `json:"mavros"`
}

// postDiscover hands a drone its connection parameters before it opens the
// channel.
func (s *Server) postDiscover(w http.ResponseWriter, _ *http.Request) {
	resp := discoverResponse{
		WSEndpoint:         s.wsEndpoint(),
		TelemetryRateHz:    defaultTelemetryRateHz,
		HeartbeatIntervalS: int(defaultHeartbeatInterval.Seconds()),
		Features: featureFlags{
			WebRTC:           true,
			Camera:           true,
			PrecisionLanding: true,
			Missions:         true,
			Mavros:           true,
		},
		ServerTime: time.Now().UnixMilli(),
	}

	s.writeJSON(w, http.StatusOK, resp)
}

type registerResponse struct {
	DroneID      string    `json:"droneId"`
	SessionToken string    `json:"sessionToken,omitempty"`
	ExpiresAt    time.Time `json:"expiresAt,omitempty"`
	WSEndpoint   string    `json:"wsEndpoint"`
}

// postRegister validates drone identity and issues the session token the
// websocket endpoint expects.
func (s *Server) postRegister(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed registration request", http.StatusBadRequest)
		return
	}

	if req.DroneID == "" {
		http.Error(w, "droneId is required", http.StatusBadRequest)
		return
	}

	if req.Model == "" {
		http.Error(w, "model is required", http.StatusBadRequest)
		return
	}

	resp := registerResponse{
		DroneID:    req.DroneID,
		WSEndpoint: s.wsEndpoint(),
	}

	if s.tokens != nil {
		token, expiresAt, err := s.tokens.Issue(req.DroneID)
		if err != nil {
			s.log.Error().Err(err).Str("drone_id", req.DroneID).Msg("Failed to issue session token")

			http.Error(w, "failed to issue session token", http.StatusInternalServerError)

			return
		}

		resp.SessionToken = token
		resp.ExpiresAt = expiresAt
	}

	s.log.Info().Str("drone_id", req.DroneID).Str("model", req.Model).Msg("Drone pre-registered")

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode response")
	}
}
