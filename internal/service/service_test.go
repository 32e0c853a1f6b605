// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleutian-robotics/framebus/internal/buffer"
	"github.com/aleutian-robotics/framebus/internal/transport"
	"github.com/aleutian-robotics/framebus/internal/wire"
)

func TestServicePublishAndQuery(t *testing.T) {
	bus := transport.NewEmbedded()
	defer bus.Close()

	buf := buffer.NewGraph()
	svc := New(Options{Bus: bus, Buffer: buf})
	require.NoError(t, svc.Start(context.Background()))
	defer svc.Stop()

	payload, err := wire.Encode(wire.NewTransform{
		From: "world", To: "robot", Time: 0,
		Translation: [3]float64{0, 0, 1},
		Rotation:    [4]float64{0, 0, 0, 1},
		Kind:        wire.KindStatic,
	})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(context.Background(), TopicNewTransform, payload))

	require.Eventually(t, func() bool {
		_, err := buf.LookupLatest("world", "robot")
		return err == nil
	}, time.Second, 5*time.Millisecond)

	reqPayload, err := wire.Encode(wire.TransformRequest{From: "world", To: "robot", Time: 0})
	require.NoError(t, err)
	respPayload, err := bus.Request(context.Background(), EndpointTransformGet, reqPayload)
	require.NoError(t, err)

	var resp wire.TransformResponse
	require.NoError(t, wire.DecodeExact(respPayload, &resp))
	assert.True(t, resp.Success)
	assert.InDelta(t, 1.0, resp.Translation[2], eps)
}

func TestServiceQueryUnknownFrame(t *testing.T) {
	bus := transport.NewEmbedded()
	defer bus.Close()

	svc := New(Options{Bus: bus, Buffer: buffer.NewGraph()})
	require.NoError(t, svc.Start(context.Background()))
	defer svc.Stop()

	reqPayload, err := wire.Encode(wire.TransformRequest{From: "a", To: "b", Time: 0})
	require.NoError(t, err)
	respPayload, err := bus.Request(context.Background(), EndpointTransformGet, reqPayload)
	require.NoError(t, err)

	var resp wire.TransformResponse
	require.NoError(t, wire.DecodeExact(respPayload, &resp))
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.ErrorMessage)
}

const eps = 1e-6
