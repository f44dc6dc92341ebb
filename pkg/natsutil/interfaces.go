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

//go:generate mockgen -destination=mock_bus.go -package=natsutil github.com/aerolink/dronehub/pkg/natsutil Bus

package natsutil

import (
	"github.com/nats-io/nats.go"
)

// Bus is the subset of the NATS connection the hub publishes and subscribes
// through. *nats.Conn satisfies it directly.
type Bus interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, handler nats.MsgHandler) (*nats.Subscription, error)
}

var _ Bus = (*nats.Conn)(nil)
