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
	"fmt"
	"strings"
)

// Subject conventions. The operator side publishes commands on the per-drone
// command subject; everything the hub emits fans out on the other subjects.
const (
	// SubjectAllCommands is the wildcard covering every per-drone command subject.
	SubjectAllCommands = "drone.*.commands"
)

func CommandSubject(droneID string) string {
	return fmt.Sprintf("drone.%s.commands", sanitizeToken(droneID))
}

func CommandResponseSubject(droneID string) string {
	return fmt.Sprintf("drone.%s.command_responses", sanitizeToken(droneID))
}

func TelemetrySubject(droneID string) string {
	return fmt.Sprintf("drone.%s.telemetry", sanitizeToken(droneID))
}

func MavrosSubject(droneID string) string {
	return fmt.Sprintf("drone.%s.mavros", sanitizeToken(droneID))
}

func LandingSubject(droneID string) string {
	return fmt.Sprintf("drone.%s.landing", sanitizeToken(droneID))
}

func CameraSubject(droneID, camera string) string {
	return fmt.Sprintf("drone.%s.camera.%s", sanitizeToken(droneID), sanitizeToken(camera))
}

func WebRTCSubject(droneID string) string {
	return fmt.Sprintf("drone.%s.webrtc", sanitizeToken(droneID))
}

func LifecycleSubject(droneID string) string {
	return fmt.Sprintf("drone.%s.events", sanitizeToken(droneID))
}

// DroneIDFromSubject extracts the drone id token from a per-drone subject.
// Returns "" when the subject does not match the convention.
func DroneIDFromSubject(subject string) string {
	parts := strings.Split(subject, ".")
	if len(parts) < 3 || parts[0] != "drone" {
		return ""
	}

	return parts[1]
}

// sanitizeToken keeps drone-supplied ids from injecting subject hierarchy.
func sanitizeToken(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ':
			return '_'
		}

		return r
	}, s)
}
