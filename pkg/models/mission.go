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

// MissionStatus values move strictly forward; no backward transition exists.
type MissionStatus string

const (
	MissionStatusUploaded  MissionStatus = "uploaded"
	MissionStatusStarted   MissionStatus = "started"
	MissionStatusCompleted MissionStatus = "completed"
	MissionStatusCancelled MissionStatus = "cancelled"
	MissionStatusFailed    MissionStatus = "failed"
)

// Waypoint is one ordered entry of a flight plan. Sequence order is
// significant and preserved end-to-end.
type Waypoint struct {
	Sequence  int     `json:"seq"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
	Altitude  float64 `json:"alt"`
	Command   int     `json:"command"`
	Frame     int     `json:"frame"`
	Param1    float64 `json:"param1"`
	Param2    float64 `json:"param2"`
	Param3    float64 `json:"param3"`
	Param4    float64 `json:"param4"`
}

// MissionRecord tracks one uploaded flight plan through its lifecycle.
type MissionRecord struct {
	MissionID  string        `json:"missionId"`
	DroneID    string        `json:"droneId"`
	Waypoints  []Waypoint    `json:"waypoints"`
	UploadedBy string        `json:"uploadedBy"`
	UploadedAt time.Time     `json:"uploadedAt"`
	Status     MissionStatus `json:"status"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

// MissionAck is the drone's mission_ack channel event reporting progress of
// a previously forwarded mission action.
type MissionAck struct {
	MissionID string        `json:"missionId"`
	Status    MissionStatus `json:"status"`
	Message   string        `json:"message,omitempty"`
}

// MissionAction names the operations forwarded to the drone.
type MissionAction string

const (
	MissionActionUpload MissionAction = "upload"
	MissionActionStart  MissionAction = "start"
	MissionActionCancel MissionAction = "cancel"
	MissionActionClear  MissionAction = "clear"
)
