// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package transport

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedPublishSubscribe(t *testing.T) {
	bus := NewEmbedded()
	defer bus.Close()

	var mu sync.Mutex
	var got []string
	done := make(chan struct{}, 3)

	_, err := bus.Subscribe("transforms/new", func(payload []byte) {
		mu.Lock()
		got = append(got, string(payload))
		mu.Unlock()
		done <- struct{}{}
	})
	require.NoError(t, err)

	for _, m := range []string{"one", "two", "three"} {
		require.NoError(t, bus.Publish(context.Background(), "transforms/new", []byte(m)))
	}
	for i := 0; i < 3; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for delivery")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"one", "two", "three"}, got, "delivery order equals publish order")
}

func TestEmbeddedRequestReply(t *testing.T) {
	bus := NewEmbedded()
	defer bus.Close()

	_, err := bus.Respond("transforms/get", func(payload []byte) ([]byte, error) {
		return append([]byte("reply:"), payload...), nil
	})
	require.NoError(t, err)

	resp, err := bus.Request(context.Background(), "transforms/get", []byte("ping"))
	require.NoError(t, err)
	assert.Equal(t, "reply:ping", string(resp))
}

func TestEmbeddedRequestNoResponder(t *testing.T) {
	bus := NewEmbedded()
	defer bus.Close()

	_, err := bus.Request(context.Background(), "transforms/get", []byte("ping"))
	assert.ErrorIs(t, err, ErrTransport)
}
