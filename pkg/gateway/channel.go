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
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/aerolink/dronehub/pkg/models"
)

const channelWriteTimeout = 10 * time.Second

// droneChannel is the live websocket channel to one drone. Writes are
// serialized by the write mutex; the read loop stays single-goroutine on the
// connection handler.
type droneChannel struct {
	conn *websocket.Conn

	writeMu sync.Mutex

	closeOnce sync.Once
	closed    chan struct{}
}

func newDroneChannel(conn *websocket.Conn) *droneChannel {
	return &droneChannel{
		conn:   conn,
		closed: make(chan struct{}),
	}
}

// Send marshals one event envelope onto the channel.
func (c *droneChannel) Send(event string, payload interface{}) error {
	envelope, err := models.NewEnvelope(event, payload)
	if err != nil {
		return fmt.Errorf("failed to build %s envelope: %w", event, err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	select {
	case <-c.closed:
		return fmt.Errorf("channel closed: cannot send %s", event)
	default:
	}

	if err := c.conn.SetWriteDeadline(time.Now().Add(channelWriteTimeout)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	if err := c.conn.WriteJSON(envelope); err != nil {
		return fmt.Errorf("failed to send %s: %w", event, err)
	}

	return nil
}

// Close tears the connection down. Idempotent; the reason travels in the
// websocket close frame.
func (c *droneChannel) Close(reason string) error {
	var err error

	c.closeOnce.Do(func() {
		close(c.closed)

		c.writeMu.Lock()
		defer c.writeMu.Unlock()

		deadline := time.Now().Add(time.Second)
		message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)

		// Best effort; the peer may already be gone.
		_ = c.conn.WriteControl(websocket.CloseMessage, message, deadline)

		err = c.conn.Close()
	})

	return err
}

// RemoteAddr reports the peer address for diagnostics.
func (c *droneChannel) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
