// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package buffer

// UpdateEvent is the post-commit notification delivered to every
// registered Observer for each successful Update, and replayed for
// existing edges at registration time.
type UpdateEvent struct {
	From        string
	To          string
	StampedPose StampedPose
	Kind        Kind
}

// Observer receives UpdateEvents. Implementations must not mutate the
// buffer or retain the event's borrowed fields past the call; the
// writer lock is held for the duration of the callback.
type Observer interface {
	OnUpdate(UpdateEvent)
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(UpdateEvent)

// OnUpdate implements Observer.
func (f ObserverFunc) OnUpdate(e UpdateEvent) { f(e) }

// observerBus is the in-process broadcast list owned by the Graph.
// Every call runs synchronously under the same lock as the triggering
// mutation; a reentrancy guard turns a nested notify into a no-op. The
// guard does not protect the Graph's own methods: an observer calling
// Update blocks on the writer lock its caller already holds.
type observerBus struct {
	observers []Observer
	inCall    bool
}

func (b *observerBus) register(o Observer) {
	b.observers = append(b.observers, o)
}

// notify invokes every observer with e, skipping reentrant calls.
func (b *observerBus) notify(e UpdateEvent) {
	if b.inCall {
		return
	}
	b.inCall = true
	defer func() { b.inCall = false }()
	for _, o := range b.observers {
		o.OnUpdate(e)
	}
}
