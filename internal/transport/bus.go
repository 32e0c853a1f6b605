// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package transport abstracts the pub/sub + request/reply message bus
// the service and client communicate over. The buffer and wire
// packages never import a concrete transport; only this package and
// its implementations do.
package transport

import (
	"context"
	"errors"
)

// ErrTransport wraps every failure surfaced by a Bus implementation.
var ErrTransport = errors.New("transport: error")

// Handler processes a single pub/sub message payload.
type Handler func(payload []byte)

// RequestHandler processes a single request payload and returns the
// reply payload to send back. An error return means no reply payload is
// sent: the NATS binding drops the request without logging, and the
// embedded bus returns the error from Request.
type RequestHandler func(payload []byte) ([]byte, error)

// Subscription is a handle to an active subscription or queryable
// registration; Unsubscribe stops delivery.
type Subscription interface {
	Unsubscribe() error
}

// Bus is the abstract transport: fire-and-forget publish on named
// topics, and request/reply on named endpoints with exactly one reply
// per request.
type Bus interface {
	// Publish sends payload to topic without waiting for delivery
	// confirmation beyond transport acceptance.
	Publish(ctx context.Context, topic string, payload []byte) error

	// Subscribe registers h to be invoked for every message published
	// to topic.
	Subscribe(topic string, h Handler) (Subscription, error)

	// Respond registers h as the single handler for every request sent
	// to endpoint; h's return value is sent back as the reply.
	Respond(endpoint string, h RequestHandler) (Subscription, error)

	// Request sends payload to endpoint and blocks for a reply or
	// until ctx is done / the deadline elapses.
	Request(ctx context.Context, endpoint string, payload []byte) ([]byte, error)

	// Close releases underlying transport resources.
	Close() error
}
