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

//go:generate mockgen -destination=mock_kv.go -package=kv github.com/aerolink/dronehub/pkg/kv KVStore

// Package kv wraps the JetStream key-value buckets used as the hub's
// short-TTL cache.
package kv

import (
	"context"
)

// KVStore is one TTL-scoped key-value bucket. TTL is a property of the
// bucket, not of individual writes, so records survive process restarts
// within the TTL window.
type KVStore interface {
	// Get retrieves the value associated with the given key.
	// Returns the value as a byte slice, a boolean indicating if the key was
	// found, and an error if the operation fails.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Put stores a value under the given key. The bucket's TTL applies.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes the key and its associated value from the store.
	Delete(ctx context.Context, key string) error

	// Keys lists the keys currently present under the given prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Watch monitors the specified key for changes and sends updates through
	// a channel. The channel receives the new value (or nil if deleted)
	// whenever the key is modified. The returned channel is closed when the
	// context is canceled or the KV store is closed.
	Watch(ctx context.Context, key string) (<-chan []byte, error)
}
