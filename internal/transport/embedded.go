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
	"sync"
)

// Embedded is an in-process Bus, primarily useful for tests and for
// embedding a service and its client in the same binary. It has no
// backpressure: each subscriber's queue grows without bound if the
// producer outpaces the consumer, matching the documented limitation
// of the transport model this abstracts over.
type Embedded struct {
	mu        sync.Mutex
	closed    bool
	topics    map[string][]*embeddedQueue
	endpoints map[string]RequestHandler
}

// NewEmbedded constructs a ready-to-use in-process Bus.
func NewEmbedded() *Embedded {
	return &Embedded{
		topics:    make(map[string][]*embeddedQueue),
		endpoints: make(map[string]RequestHandler),
	}
}

type embeddedQueue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pending [][]byte
	closed  bool
	handler Handler
}

func newEmbeddedQueue(h Handler) *embeddedQueue {
	q := &embeddedQueue{handler: h}
	q.cond = sync.NewCond(&q.mu)
	go q.run()
	return q
}

func (q *embeddedQueue) push(payload []byte) {
	q.mu.Lock()
	q.pending = append(q.pending, payload)
	q.mu.Unlock()
	q.cond.Signal()
}

func (q *embeddedQueue) run() {
	for {
		q.mu.Lock()
		for len(q.pending) == 0 && !q.closed {
			q.cond.Wait()
		}
		if q.closed && len(q.pending) == 0 {
			q.mu.Unlock()
			return
		}
		payload := q.pending[0]
		q.pending = q.pending[1:]
		q.mu.Unlock()
		q.handler(payload)
	}
}

func (q *embeddedQueue) stop() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cond.Broadcast()
}

type embeddedSub struct{ stop func() error }

func (s *embeddedSub) Unsubscribe() error { return s.stop() }

// Publish enqueues payload for delivery to every current subscriber of
// topic. It returns once the message has been accepted by each
// subscriber's queue; delivery itself happens asynchronously on that
// subscriber's own task.
func (b *Embedded) Publish(_ context.Context, topic string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return fmt.Errorf("%w: bus closed", ErrTransport)
	}
	for _, q := range b.topics[topic] {
		q.push(payload)
	}
	return nil
}

// Subscribe starts a dedicated dispatch goroutine for this
// subscription that invokes h in delivery order.
func (b *Embedded) Subscribe(topic string, h Handler) (Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, fmt.Errorf("%w: bus closed", ErrTransport)
	}
	q := newEmbeddedQueue(h)
	b.topics[topic] = append(b.topics[topic], q)
	return &embeddedSub{stop: func() error {
		q.stop()
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.topics[topic]
		for i, s := range subs {
			if s == q {
				b.topics[topic] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		return nil
	}}, nil
}

// Respond installs h as the single handler for endpoint, replacing any
// prior registration, matching "exactly one reply per request".
func (b *Embedded) Respond(endpoint string, h RequestHandler) (Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, fmt.Errorf("%w: bus closed", ErrTransport)
	}
	b.endpoints[endpoint] = h
	return &embeddedSub{stop: func() error {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.endpoints, endpoint)
		return nil
	}}, nil
}

// Request invokes the registered handler for endpoint synchronously.
// There is no network round trip to cancel, but ctx is still honored
// before dispatch so a caller can abandon an already-cancelled request.
func (b *Embedded) Request(ctx context.Context, endpoint string, payload []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	b.mu.Lock()
	h, ok := b.endpoints[endpoint]
	b.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: no responder for endpoint %q", ErrTransport, endpoint)
	}
	return h(payload)
}

// Close stops every subscriber dispatch goroutine.
func (b *Embedded) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for _, qs := range b.topics {
		for _, q := range qs {
			q.stop()
		}
	}
	return nil
}
