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

// Package app boots the hub: configuration, broker and store connections,
// the service graph, and the gateway listener with graceful shutdown.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aerolink/dronehub/pkg/command"
	"github.com/aerolink/dronehub/pkg/config"
	"github.com/aerolink/dronehub/pkg/db"
	"github.com/aerolink/dronehub/pkg/gateway"
	"github.com/aerolink/dronehub/pkg/kv"
	"github.com/aerolink/dronehub/pkg/landing"
	"github.com/aerolink/dronehub/pkg/lifecycle"
	"github.com/aerolink/dronehub/pkg/mission"
	"github.com/aerolink/dronehub/pkg/natsutil"
	"github.com/aerolink/dronehub/pkg/registry"
	"github.com/aerolink/dronehub/pkg/telemetry"
	"github.com/aerolink/dronehub/pkg/webrtc"
)

const (
	bucketDroneState      = "drone-state"
	bucketMissions        = "missions"
	bucketLandingSessions = "landing-sessions"
	bucketWebRTCSessions  = "webrtc-sessions"
	bucketCameraStreams   = "camera-streams"

	ttlDroneState      = 60 * time.Second
	ttlMissions        = 168 * time.Hour
	ttlLandingSessions = 30 * time.Minute
	ttlWebRTCSessions  = time.Hour
	ttlCameraStreams   = 5 * time.Minute

	shutdownTimeout = 15 * time.Second
)

// Options contains runtime configuration derived from CLI flags.
type Options struct {
	ConfigPath string
}

// Run boots the hub and blocks until SIGINT/SIGTERM or a fatal error.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	log, err := lifecycle.CreateComponentLogger("hub", cfg.Logging)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	nc, err := natsutil.Connect(cfg.NATS.URL, "dronehub", log)
	if err != nil {
		return err
	}
	defer nc.Close()

	droneState, err := kv.NewNatsStore(ctx, nc, bucketDroneState, ttlDroneState, log)
	if err != nil {
		return err
	}

	missionStore, err := kv.NewNatsStore(ctx, nc, bucketMissions, ttlMissions, log)
	if err != nil {
		return err
	}

	landingStore, err := kv.NewNatsStore(ctx, nc, bucketLandingSessions, ttlLandingSessions, log)
	if err != nil {
		return err
	}

	sessionStore, err := kv.NewNatsStore(ctx, nc, bucketWebRTCSessions, ttlWebRTCSessions, log)
	if err != nil {
		return err
	}

	streamStore, err := kv.NewNatsStore(ctx, nc, bucketCameraStreams, ttlCameraStreams, log)
	if err != nil {
		return err
	}

	pub := natsutil.NewEventPublisher(nc)

	// The durable store is optional; without it the hub runs live-only.
	var writer *db.AsyncWriter

	if cfg.Database != nil {
		pool, poolErr := db.NewPool(ctx, cfg.Database, log)
		if poolErr != nil {
			return poolErr
		}
		defer pool.Close()

		writer = db.NewAsyncWriter(db.NewStore(pool, log), log)
		writer.Start(ctx)
		defer writer.Wait()
	}

	var mirror registry.StatusMirror
	if writer != nil {
		mirror = writer
	}

	reg := registry.New(mirror, pub, log)
	monitor := registry.NewMonitor(reg, cfg.Registry.SweepInterval.Duration(), cfg.Registry.StaleThreshold.Duration(), log)

	var telemetryArchiver telemetry.Archiver
	if writer != nil {
		telemetryArchiver = writer
	}

	ingest := telemetry.NewIngest(reg, droneState, pub, telemetryArchiver, log)

	router := command.NewRouter(nc, reg, pub, nil, nil, log)

	var missionArchiver mission.Archiver
	if writer != nil {
		missionArchiver = writer
	}

	missions := mission.NewService(missionStore, router, missionArchiver, log)
	landingMgr := landing.NewManager(landingStore, router, pub, log)

	negotiator := webrtc.NewNegotiator(reg, sessionStore, streamStore, router, pub, webrtc.Config{
		ConnectTimeout: cfg.WebRTC.ConnectTimeout.Duration(),
		FeedStaleAfter: cfg.WebRTC.FeedStaleAfter.Duration(),
		SweepInterval:  cfg.WebRTC.SweepInterval.Duration(),
	}, log)

	router.SetControls(landingMgr, missions)

	// Session-scoped state follows the channel down.
	reg.OnDisconnect(landingMgr.HandleDisconnect)
	reg.OnDisconnect(negotiator.HandleDisconnect)

	var tokens *gateway.TokenIssuer

	if cfg.Auth.JWTSecret != "" {
		tokens, err = gateway.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL.Duration())
		if err != nil {
			return err
		}
	} else {
		log.Warn().Msg("No JWT secret configured; drone channel is unauthenticated")
	}

	srv, err := gateway.NewServer(cfg, reg, gateway.Services{
		Telemetry: ingest,
		Commands:  router,
		Missions:  missions,
		Landing:   landingMgr,
		WebRTC:    negotiator,
	}, tokens, monitor.StaleThreshold(), log)
	if err != nil {
		return err
	}

	if err := router.Run(ctx); err != nil {
		return err
	}
	defer func() {
		if err := router.Close(); err != nil {
			log.Warn().Err(err).Msg("Error closing command router")
		}
	}()

	go monitor.Run(ctx)
	go negotiator.Run(ctx)

	errCh := make(chan error, 1)

	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown incomplete: %w", err)
	}

	return nil
}
