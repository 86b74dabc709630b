// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(sub *Subscription) []Event {
	var events []Event
	for {
		select {
		case ev, ok := <-sub.C():
			if !ok {
				return events
			}
			events = append(events, ev)
		default:
			return events
		}
	}
}

func TestSubscribe_ReceivesChanges(t *testing.T) {
	clk := newFakeClock()
	c := New(WithClock(clk.Now))
	defer c.Close()

	sub := c.Subscribe()
	require.NotEmpty(t, sub.ID())

	c.Set("config:", 1, time.Second)
	c.Set("show:x", 2, time.Minute)
	c.DeletePattern("show")
	clk.Advance(time.Second)
	_, _ = c.Get("config:")
	c.Clear()
	c.Publish(Event{Type: EventState, Detail: "ready"})

	var types []EventType
	for _, ev := range drain(sub) {
		types = append(types, ev.Type)
	}
	assert.Equal(t, []EventType{EventSet, EventSet, EventDelete, EventExpire, EventClear, EventState}, types)
}

func TestSubscribe_NoEventWithoutChange(t *testing.T) {
	c := New()
	defer c.Close()

	sub := c.Subscribe()
	assert.False(t, c.Delete("missing"))
	assert.Equal(t, 0, c.DeletePattern("missing"))
	_, _ = c.Get("missing")

	assert.Empty(t, drain(sub))
}

func TestUnsubscribe(t *testing.T) {
	c := New()
	defer c.Close()

	sub := c.Subscribe()
	other := c.Subscribe()
	assert.NotEqual(t, sub.ID(), other.ID())

	sub.Unsubscribe()
	sub.Unsubscribe()

	c.Set("a", 1, time.Minute)

	_, open := <-sub.C()
	assert.False(t, open)
	assert.Len(t, drain(other), 1)
}

func TestSubscribe_FullBufferDrops(t *testing.T) {
	c := New()
	defer c.Close()

	sub := c.Subscribe()
	for i := 0; i < subscriptionBuffer+5; i++ {
		c.Set("k", i, time.Minute)
	}

	assert.Equal(t, uint64(5), sub.Dropped())
	assert.Len(t, drain(sub), subscriptionBuffer)
}

func TestSubscribe_AfterClose(t *testing.T) {
	c := New()
	c.Close()

	sub := c.Subscribe()
	_, open := <-sub.C()
	assert.False(t, open)
	sub.Unsubscribe()
}

func TestEventType_String(t *testing.T) {
	assert.Equal(t, "set", EventSet.String())
	assert.Equal(t, "state", EventState.String())
	assert.Equal(t, "unknown", EventType(99).String())
}
