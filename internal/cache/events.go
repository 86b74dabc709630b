// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType identifies what changed.
type EventType int

const (
	EventSet EventType = iota
	EventDelete
	EventExpire
	EventClear
	// EventState is published by collaborators (the warm-up initializer) when
	// their lifecycle state changes. Detail carries the new state name.
	EventState
)

func (t EventType) String() string {
	switch t {
	case EventSet:
		return "set"
	case EventDelete:
		return "delete"
	case EventExpire:
		return "expire"
	case EventClear:
		return "clear"
	case EventState:
		return "state"
	default:
		return "unknown"
	}
}

// Event is delivered to subscribers after a change. For pattern deletes Key
// holds the prefix.
type Event struct {
	Type   EventType
	Key    string
	Detail string
	At     time.Time
}

// subscriptionBuffer is the per-subscriber channel capacity.
const subscriptionBuffer = 64

// Subscription is a registered listener. Events are delivered without
// blocking the cache; when the buffer is full the event is dropped and
// Dropped is incremented.
type Subscription struct {
	id      string
	ch      chan Event
	owner   *Cache
	once    sync.Once
	dropped uint64
}

// ID uniquely identifies the subscription.
func (s *Subscription) ID() string { return s.id }

// C is the receive side of the subscription. It is closed by Unsubscribe or
// when the cache is closed.
func (s *Subscription) C() <-chan Event { return s.ch }

// Dropped is the number of events lost to a full buffer.
func (s *Subscription) Dropped() uint64 {
	s.owner.mu.Lock()
	defer s.owner.mu.Unlock()
	return s.dropped
}

// Unsubscribe detaches the listener and closes its channel. Safe to call more
// than once.
func (s *Subscription) Unsubscribe() {
	s.owner.mu.Lock()
	defer s.owner.mu.Unlock()

	delete(s.owner.subs, s.id)
	s.closeOnce()
}

func (s *Subscription) closeOnce() {
	s.once.Do(func() { close(s.ch) })
}

// Subscribe registers a new listener. Subscribing to a closed cache returns a
// subscription whose channel is already closed.
func (c *Cache) Subscribe() *Subscription {
	sub := &Subscription{
		id:    uuid.NewString(),
		ch:    make(chan Event, subscriptionBuffer),
		owner: c,
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		sub.closeOnce()
		return sub
	}
	c.subs[sub.id] = sub
	return sub
}

// Publish fans an event out to every subscriber. Collaborators use it to
// announce changes the cache itself does not know about.
func (c *Cache) Publish(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if ev.At.IsZero() {
		ev.At = c.now()
	}
	c.publishLocked(ev)
}

// publishLocked must be called with c.mu held.
func (c *Cache) publishLocked(ev Event) {
	for _, sub := range c.subs {
		select {
		case sub.ch <- ev:
		default:
			sub.dropped++
		}
	}
}
