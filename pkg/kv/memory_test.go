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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()

	_, found, err := store.Get(ctx, "drone-001.latest")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Put(ctx, "drone-001.latest", []byte(`{"x":1}`)))

	value, found, err := store.Get(ctx, "drone-001.latest")
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `{"x":1}`, string(value))

	require.NoError(t, store.Delete(ctx, "drone-001.latest"))

	_, found, err = store.Get(ctx, "drone-001.latest")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()

	payload := []byte("original")
	require.NoError(t, store.Put(ctx, "k", payload))

	payload[0] = 'X'

	value, _, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "original", string(value))
}

func TestMemStoreKeysPrefixScoping(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()

	require.NoError(t, store.Put(ctx, "drone-001.m1", []byte("a")))
	require.NoError(t, store.Put(ctx, "drone-001.m2", []byte("b")))
	require.NoError(t, store.Put(ctx, "drone-002.m1", []byte("c")))
	// A key equal to the bare prefix is not under it.
	require.NoError(t, store.Put(ctx, "drone-001", []byte("d")))

	keys, err := store.Keys(ctx, "drone-001")
	require.NoError(t, err)
	assert.Equal(t, []string{"drone-001.m1", "drone-001.m2"}, keys)

	all, err := store.Keys(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestMemStoreWatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := NewMemStore()

	updates, err := store.Watch(ctx, "drone-001.session")
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "drone-001.session", []byte("v1")))
	require.NoError(t, store.Put(ctx, "drone-001.other", []byte("ignored")))

	select {
	case value := <-updates:
		assert.Equal(t, "v1", string(value))
	case <-time.After(time.Second):
		t.Fatal("watch update not delivered")
	}

	select {
	case value := <-updates:
		t.Fatalf("unexpected update: %q", value)
	case <-time.After(50 * time.Millisecond):
	}

	cancel()

	require.Eventually(t, func() bool {
		_, open := <-updates
		return !open
	}, time.Second, 10*time.Millisecond)
}
