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
	"encoding/json"
	"fmt"
	"time"
)

// Command is an operator command published on a per-drone command subject.
type Command struct {
	ID          string          `json:"id"`
	CommandType string          `json:"commandType"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
	UserID      string          `json:"userId"`
	Timestamp   time.Time       `json:"timestamp"`
}

// ParseCommand decodes a broker command payload.
func ParseCommand(data []byte) (*Command, error) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return nil, fmt.Errorf("failed to decode command: %w", err)
	}

	return &cmd, nil
}

// CommandResponse correlates with a Command by ID. Exactly one response is
// produced per delivery attempt.
type CommandResponse struct {
	CommandID string    `json:"commandId"`
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// DroneCommandResult is the drone's own command_response channel event,
// relayed onto the response subject when it arrives.
type DroneCommandResult struct {
	CommandID string  `json:"commandId"`
	Command   string  `json:"command,omitempty"`
	Status    string  `json:"status,omitempty"`
	Result    string  `json:"result,omitempty"`
	Timestamp float64 `json:"timestamp,omitempty"`
}
