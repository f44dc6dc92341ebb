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

// Package command routes operator commands from the broker to the live drone
// channels. Delivery is at-most-once and best-effort: an absent target or a
// failed channel write produces exactly one failure response and the command
// is never queued or retried.
package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/aerolink/dronehub/pkg/logger"
	"github.com/aerolink/dronehub/pkg/models"
	"github.com/aerolink/dronehub/pkg/natsutil"
	"github.com/aerolink/dronehub/pkg/registry"
)

// Command types the router handles itself instead of forwarding verbatim.
const (
	TypeStartPrecisionLanding = "start_precision_landing"
	TypeAbortPrecisionLanding = "abort_precision_landing"
	TypeMissionUpload         = "upload_mission"
	TypeMissionStart          = "start_mission"
	TypeMissionCancel         = "cancel_mission"
	TypeMissionClear          = "clear_mission"
)

var (
	ErrNotConnected = errors.New("drone not connected")

	errMissingCommandType = errors.New("command missing commandType")
)

// LandingControl is the precision-landing intercept target.
type LandingControl interface {
	Start(ctx context.Context, droneID string, cmd *models.Command) error
	Abort(ctx context.Context, droneID string, cmd *models.Command) error
}

// MissionControl is the mission intercept target.
type MissionControl interface {
	HandleAction(ctx context.Context, droneID string, action models.MissionAction, cmd *models.Command) error
}

// Router subscribes to the wildcard command subject and dispatches each
// command to its drone, intercepting the landing and mission families.
type Router struct {
	bus      natsutil.Bus
	registry registry.ConnectionRegistry
	pub      *natsutil.EventPublisher
	landing  LandingControl
	mission  MissionControl
	log      logger.Logger

	sub *nats.Subscription
}

// NewRouter wires the router. landing and mission may be nil, in which case
// their command families fail with an explanatory response.
func NewRouter(bus natsutil.Bus, reg registry.ConnectionRegistry, pub *natsutil.EventPublisher, landing LandingControl, mission MissionControl, log logger.Logger) *Router {
	return &Router{
		bus:      bus,
		registry: reg,
		pub:      pub,
		landing:  landing,
		mission:  mission,
		log:      log,
	}
}

// SetControls installs the intercept targets. The landing and mission
// services take the router as their delivery path, so they are built after
// it; call this before Run.
func (r *Router) SetControls(landing LandingControl, mission MissionControl) {
	r.landing = landing
	r.mission = mission
}

// Run subscribes to every per-drone command subject. Commands are handled on
// the broker's delivery goroutine; handlers derive their own contexts because
// subscription callbacks outlive the caller's.
func (r *Router) Run(ctx context.Context) error {
	sub, err := r.bus.Subscribe(natsutil.SubjectAllCommands, func(msg *nats.Msg) {
		r.handleMessage(ctx, msg)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", natsutil.SubjectAllCommands, err)
	}

	r.sub = sub

	r.log.Info().Str("subject", natsutil.SubjectAllCommands).Msg("Command router subscribed")

	return nil
}

// Close drops the wildcard subscription.
func (r *Router) Close() error {
	if r.sub == nil {
		return nil
	}

	return r.sub.Unsubscribe()
}

func (r *Router) handleMessage(ctx context.Context, msg *nats.Msg) {
	droneID := natsutil.DroneIDFromSubject(msg.Subject)
	if droneID == "" {
		r.log.Warn().Str("subject", msg.Subject).Msg("Command on unrecognized subject dropped")
		return
	}

	cmd, err := models.ParseCommand(msg.Data)
	if err != nil {
		r.log.Warn().Err(err).Str("drone_id", droneID).Msg("Malformed command dropped")
		return
	}

	if err := r.Dispatch(ctx, droneID, cmd); err != nil {
		r.log.Warn().Err(err).
			Str("drone_id", droneID).
			Str("command_id", cmd.ID).
			Str("command_type", cmd.CommandType).
			Msg("Command dispatch failed")
	}
}

// Dispatch routes one parsed command. It guarantees at most one response on
// the drone's response subject per invocation: a failure response when the
// command cannot reach the drone, an immediate acceptance for intercepted
// families, and silence on forwarding success (the drone answers for
// itself).
func (r *Router) Dispatch(ctx context.Context, droneID string, cmd *models.Command) error {
	if cmd.CommandType == "" {
		r.respondFailure(droneID, cmd.ID, errMissingCommandType.Error())
		return errMissingCommandType
	}

	if cmd.ID == "" {
		cmd.ID = uuid.New().String()
	}

	switch cmd.CommandType {
	case TypeStartPrecisionLanding:
		return r.intercept(droneID, cmd, func() error {
			if r.landing == nil {
				return errors.New("precision landing unavailable")
			}

			return r.landing.Start(ctx, droneID, cmd)
		})
	case TypeAbortPrecisionLanding:
		return r.intercept(droneID, cmd, func() error {
			if r.landing == nil {
				return errors.New("precision landing unavailable")
			}

			return r.landing.Abort(ctx, droneID, cmd)
		})
	case TypeMissionUpload, TypeMissionStart, TypeMissionCancel, TypeMissionClear:
		return r.intercept(droneID, cmd, func() error {
			if r.mission == nil {
				return errors.New("mission handling unavailable")
			}

			return r.mission.HandleAction(ctx, droneID, missionAction(cmd.CommandType), cmd)
		})
	default:
		return r.forward(droneID, cmd)
	}
}

// Deliver sends one event straight to the drone's live channel, recording
// the diagnostic command timestamp on success. The intercept services reuse
// this as their delivery path.
func (r *Router) Deliver(droneID, event string, payload interface{}) error {
	entry, ok := r.registry.Get(droneID)
	if !ok {
		return ErrNotConnected
	}

	if err := entry.Channel.Send(event, payload); err != nil {
		return fmt.Errorf("failed to deliver %s to %s: %w", event, droneID, err)
	}

	r.registry.RecordCommand(droneID)

	return nil
}

// RelayResult republishes the drone's own command_response event onto the
// response subject so broker-side issuers see it.
func (r *Router) RelayResult(droneID string, result *models.DroneCommandResult) error {
	resp := &models.CommandResponse{
		CommandID: result.CommandID,
		Success:   result.Result == "success",
		Message:   strings.TrimSpace(result.Command + " " + result.Status),
		Timestamp: time.Now(),
	}

	return r.pub.PublishCommandResponse(droneID, resp)
}

func (r *Router) forward(droneID string, cmd *models.Command) error {
	err := r.Deliver(droneID, models.EventCommand, cmd)
	if errors.Is(err, ErrNotConnected) {
		r.respondFailure(droneID, cmd.ID, "not connected")
		return err
	}

	if err != nil {
		r.respondFailure(droneID, cmd.ID, err.Error())
		return err
	}

	r.log.Debug().
		Str("drone_id", droneID).
		Str("command_id", cmd.ID).
		Str("command_type", cmd.CommandType).
		Msg("Command forwarded")

	return nil
}

func (r *Router) intercept(droneID string, cmd *models.Command, handle func() error) error {
	if err := handle(); err != nil {
		r.respondFailure(droneID, cmd.ID, err.Error())
		return err
	}

	resp := &models.CommandResponse{
		CommandID: cmd.ID,
		Success:   true,
		Message:   "accepted",
	}
	if err := r.pub.PublishCommandResponse(droneID, resp); err != nil {
		r.log.Warn().Err(err).Str("drone_id", droneID).Msg("Failed to publish command acceptance")
	}

	return nil
}

func (r *Router) respondFailure(droneID, commandID, reason string) {
	resp := &models.CommandResponse{
		CommandID: commandID,
		Success:   false,
		Message:   reason,
	}
	if err := r.pub.PublishCommandResponse(droneID, resp); err != nil {
		r.log.Warn().Err(err).Str("drone_id", droneID).Msg("Failed to publish command failure")
	}
}

func missionAction(commandType string) models.MissionAction {
	switch commandType {
	case TypeMissionUpload:
		return models.MissionActionUpload
	case TypeMissionStart:
		return models.MissionActionStart
	case TypeMissionCancel:
		return models.MissionActionCancel
	case TypeMissionClear:
		return models.MissionActionClear
	}

	return ""
}
