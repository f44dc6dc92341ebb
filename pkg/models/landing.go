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

package models

import (
	"time"
)

// LandingStatus is the precision-landing session state. DISCONNECTED is
// reached only through loss of the underlying drone connection, never by
// operator action.
type LandingStatus string

const (
	LandingStatusInactive     LandingStatus = "INACTIVE"
	LandingStatusActive       LandingStatus = "ACTIVE"
	LandingStatusCompleted    LandingStatus = "COMPLETED"
	LandingStatusAborted      LandingStatus = "ABORTED"
	LandingStatusDisconnected LandingStatus = "DISCONNECTED"
)

// Terminal reports whether no further transition is possible.
func (s LandingStatus) Terminal() bool {
	switch s {
	case LandingStatusCompleted, LandingStatusAborted, LandingStatusDisconnected:
		return true
	case LandingStatusInactive, LandingStatusActive:
		return false
	}

	return false
}

// LandingSession is one precision-landing attempt for a drone.
type LandingSession struct {
	SessionID   string          `json:"sessionId"`
	DroneID     string          `json:"droneId"`
	Status      LandingStatus   `json:"status"`
	StartedAt   time.Time       `json:"startedAt"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
	Output      []LandingOutput `json:"output,omitempty"`
}

// LandingOutput is one entry of the session's bounded output log
// (precision_land_real event).
type LandingOutput struct {
	Output           string    `json:"output"`
	Stage            string    `json:"stage"`
	Altitude         float64   `json:"altitude,omitempty"`
	TargetDetected   bool      `json:"target_detected"`
	TargetConfidence float64   `json:"target_confidence,omitempty"`
	LateralError     float64   `json:"lateral_error,omitempty"`
	VerticalError    float64   `json:"vertical_error,omitempty"`
	BatteryLevel     float64   `json:"battery_level,omitempty"`
	WindSpeed        float64   `json:"wind_speed,omitempty"`
	ReceivedAt       time.Time `json:"receivedAt"`
}
