// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package client

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleutian-robotics/framebus/internal/buffer"
	"github.com/aleutian-robotics/framebus/internal/service"
	"github.com/aleutian-robotics/framebus/internal/transport"
	"github.com/aleutian-robotics/framebus/internal/wire"
)

func TestClientSendAndRequestTransform(t *testing.T) {
	bus := transport.NewEmbedded()
	defer bus.Close()

	buf := buffer.NewGraph()
	svc := service.New(service.Options{Bus: bus, Buffer: buf})
	require.NoError(t, svc.Start(context.Background()))
	defer svc.Stop()

	c := New(bus, time.Second)
	require.NoError(t, c.SendTransform(context.Background(), "world", "robot",
		buffer.StampedPose{Stamp: 0, Pose: buffer.Pose{Translation: buffer.Vec3{0, 0, 1}, Rotation: buffer.IdentityQuat}},
		buffer.Static))

	require.Eventually(t, func() bool {
		_, err := buf.LookupLatest("world", "robot")
		return err == nil
	}, time.Second, 5*time.Millisecond)

	sp, err := c.RequestTransform(context.Background(), "world", "robot", 0)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, sp.Pose.Translation.Z, 1e-6)
}

func TestClientRequestTransformNoResponder(t *testing.T) {
	bus := transport.NewEmbedded()
	defer bus.Close()

	c := New(bus, 50*time.Millisecond)
	_, err := c.RequestTransform(context.Background(), "a", "b", 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransportFailure)
}

// TestClientRequestTransformIDMismatch installs its own responder on
// endpointTransformGet that always replies with an ID the Client never
// sent, bypassing Client.RequestTransform's own id generation entirely,
// to exercise the ErrResponseIDMismatch branch.
func TestClientRequestTransformIDMismatch(t *testing.T) {
	bus := transport.NewEmbedded()
	defer bus.Close()

	sub, err := bus.Respond(endpointTransformGet, func(payload []byte) ([]byte, error) {
		return wire.Encode(wire.TransformResponse{
			Success: true,
			ID:      999999,
		})
	})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	c := New(bus, time.Second)
	_, err = c.RequestTransform(context.Background(), "world", "robot", 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrResponseIDMismatch)
}
