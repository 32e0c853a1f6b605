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
	"fmt"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// NATS is a Bus backed by a github.com/nats-io/nats.go connection. It
// maps Publish/Subscribe directly onto NATS core pub/sub and
// Request/Respond onto NATS's native request/reply, which already
// correlates replies to requests via a private inbox subject, so no
// additional correlation protocol is layered on top here.
type NATS struct {
	conn *nats.Conn
}

// DialNATS connects to a NATS server at url (e.g. "nats://localhost:4222").
// Every connection is given a random client name so it is distinguishable
// in NATS server-side connection listings; pass nats.Name(...) in opts to
// override it.
func DialNATS(url string, opts ...nats.Option) (*NATS, error) {
	all := append([]nats.Option{nats.Name("framebus-" + uuid.NewString())}, opts...)
	conn, err := nats.Connect(url, all...)
	if err != nil {
		return nil, fmt.Errorf("%w: connect to %s: %v", ErrTransport, url, err)
	}
	return &NATS{conn: conn}, nil
}

type natsSub struct{ sub *nats.Subscription }

func (s *natsSub) Unsubscribe() error {
	if err := s.sub.Unsubscribe(); err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return nil
}

// Publish fires payload onto the NATS subject named by topic.
func (b *NATS) Publish(_ context.Context, topic string, payload []byte) error {
	if err := b.conn.Publish(topic, payload); err != nil {
		return fmt.Errorf("%w: publish %s: %v", ErrTransport, topic, err)
	}
	return nil
}

// Subscribe installs an async NATS subscription. NATS dispatches each
// subscription's messages from its own goroutine in delivery order,
// matching the subscriber-task model this package abstracts over.
func (b *NATS) Subscribe(topic string, h Handler) (Subscription, error) {
	sub, err := b.conn.Subscribe(topic, func(msg *nats.Msg) {
		h(msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: subscribe %s: %v", ErrTransport, topic, err)
	}
	return &natsSub{sub: sub}, nil
}

// Respond installs h as the queryable handler for endpoint: exactly
// one reply is sent per request via msg.Respond.
func (b *NATS) Respond(endpoint string, h RequestHandler) (Subscription, error) {
	sub, err := b.conn.Subscribe(endpoint, func(msg *nats.Msg) {
		reply, err := h(msg.Data)
		if err != nil {
			return
		}
		_ = msg.Respond(reply)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: respond %s: %v", ErrTransport, endpoint, err)
	}
	return &natsSub{sub: sub}, nil
}

// Request issues a NATS request/reply round trip, honoring ctx's
// deadline/cancellation.
func (b *NATS) Request(ctx context.Context, endpoint string, payload []byte) ([]byte, error) {
	msg, err := b.conn.RequestWithContext(ctx, endpoint, payload)
	if err != nil {
		return nil, fmt.Errorf("%w: request %s: %v", ErrTransport, endpoint, err)
	}
	return msg.Data, nil
}

// Close closes the underlying NATS connection without draining its
// subscriptions.
func (b *NATS) Close() error {
	b.conn.Close()
	return nil
}
