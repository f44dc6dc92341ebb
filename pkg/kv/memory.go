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

package kv

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemStore is an in-process KVStore. It enforces no TTL; it backs tests and
// single-node runs without a JetStream deployment.
type MemStore struct {
	mu       sync.RWMutex
	data     map[string][]byte
	watchers map[string][]chan []byte
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		data:     map[string][]byte{},
		watchers: map[string][]chan []byte{},
	}
}

var _ KVStore = (*MemStore)(nil)

func (m *MemStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, found := m.data[key]

	return value, found, nil
}

func (m *MemStore) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := append([]byte(nil), value...)
	m.data[key] = stored

	m.notify(key, stored)

	return nil
}

func (m *MemStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	m.notify(key, nil)

	return nil
}

func (m *MemStore) Keys(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.data))

	for k := range m.data {
		if prefix == "" || strings.HasPrefix(k, prefix+".") {
			keys = append(keys, k)
		}
	}

	sort.Strings(keys)

	return keys, nil
}

func (m *MemStore) Watch(ctx context.Context, key string) (<-chan []byte, error) {
	m.mu.Lock()

	ch := make(chan []byte, 16)
	m.watchers[key] = append(m.watchers[key], ch)

	m.mu.Unlock()

	go func() {
		<-ctx.Done()

		m.mu.Lock()
		defer m.mu.Unlock()

		chans := m.watchers[key]
		for i, c := range chans {
			if c == ch {
				m.watchers[key] = append(chans[:i], chans[i+1:]...)
				close(ch)

				break
			}
		}
	}()

	return ch, nil
}

// notify delivers without blocking; a slow watcher misses updates. Callers
// hold m.mu.
func (m *MemStore) notify(key string, value []byte) {
	for _, ch := range m.watchers[key] {
		select {
		case ch <- value:
		default:
		}
	}
}
