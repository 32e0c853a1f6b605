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
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/aleutian-robotics/framebus/internal/buffer"
	"github.com/aleutian-robotics/framebus/internal/transport"
	"github.com/aleutian-robotics/framebus/internal/wire"
)

const (
	topicNewTransform    = "transforms/new"
	endpointTransformGet = "transforms/get"

	// DefaultTimeout bounds how long RequestTransform waits for a
	// reply before returning ErrNoResponse.
	DefaultTimeout = 2 * time.Second
)

// Client publishes transforms and issues correlated queries over a
// transport.Bus. Each Client owns a private request-id counter; the
// source's process-wide atomic counter is a convenience this
// implementation avoids needing, since per-client counters are
// equivalent and need no shared state.
type Client struct {
	bus     transport.Bus
	timeout time.Duration
	nextID  uint64
}

// New constructs a Client over bus. A zero timeout selects
// DefaultTimeout.
func New(bus transport.Bus, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{bus: bus, timeout: timeout}
}

// SendTransform publishes a stamped pose on the transforms/new topic.
// It returns once the transport has accepted the message; it does not
// wait for the service to apply it.
func (c *Client) SendTransform(ctx context.Context, from, to string, sp buffer.StampedPose, kind buffer.Kind) error {
	wireKind := wire.KindStatic
	if kind == buffer.Dynamic {
		wireKind = wire.KindDynamic
	}
	payload, err := wire.Encode(wire.NewTransform{
		From: from,
		To:   to,
		Time: int64(sp.Stamp),
		Translation: [3]float64{
			sp.Pose.Translation.X, sp.Pose.Translation.Y, sp.Pose.Translation.Z,
		},
		Rotation: [4]float64{
			sp.Pose.Rotation.X, sp.Pose.Rotation.Y, sp.Pose.Rotation.Z, sp.Pose.Rotation.W,
		},
		Kind: wireKind,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransportFailure, err)
	}
	if err := c.bus.Publish(ctx, topicNewTransform, payload); err != nil {
		return fmt.Errorf("%w: %v", ErrTransportFailure, err)
	}
	return nil
}

// RequestTransform issues a transforms/get query and resolves the
// reply into a StampedPose.
//
// State machine: Idle -> Sent -> (Reply | Timeout | TransportError).
// Reply with a matching (or absent) correlation id and success=true
// maps to (pose, nil); success=false maps to the service's reported
// failure reason; a context deadline during the round trip maps to
// ErrNoResponse; any other transport failure maps to
// ErrTransportFailure.
func (c *Client) RequestTransform(ctx context.Context, from, to string, t buffer.Timestamp) (buffer.StampedPose, error) {
	id := atomic.AddUint64(&c.nextID, 1)

	payload, err := wire.Encode(wire.TransformRequest{From: from, To: to, Time: int64(t), ID: id})
	if err != nil {
		return buffer.StampedPose{}, fmt.Errorf("%w: %v", ErrTransportFailure, err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	respPayload, err := c.bus.Request(reqCtx, endpointTransformGet, payload)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return buffer.StampedPose{}, ErrNoResponse
		}
		return buffer.StampedPose{}, fmt.Errorf("%w: %v", ErrTransportFailure, err)
	}

	var resp wire.TransformResponse
	if err := wire.DecodeExact(respPayload, &resp); err != nil {
		return buffer.StampedPose{}, fmt.Errorf("%w: %v", ErrTransportFailure, err)
	}
	if resp.ID != 0 && resp.ID != id {
		return buffer.StampedPose{}, ErrResponseIDMismatch
	}
	if !resp.Success {
		return buffer.StampedPose{}, fmt.Errorf("%s", resp.ErrorMessage)
	}

	return buffer.StampedPose{
		Stamp: buffer.Timestamp(resp.Time),
		Pose: buffer.Pose{
			Translation: buffer.Vec3{X: resp.Translation[0], Y: resp.Translation[1], Z: resp.Translation[2]},
			Rotation:    buffer.NewQuat(resp.Rotation[0], resp.Rotation[1], resp.Rotation[2], resp.Rotation[3]),
		},
	}, nil
}
