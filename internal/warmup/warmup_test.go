// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package warmup

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/vyctl/internal/cache"
)

var errDown = errors.New("backend down")

func okItem(key string, calls *atomic.Int32) Item {
	return Item{Key: key, TTL: time.Minute, Fetch: func(context.Context) (any, error) {
		if calls != nil {
			calls.Add(1)
		}
		return []byte(`{"key": "` + key + `"}`), nil
	}}
}

func failItem(key string) Item {
	return Item{Key: key, TTL: time.Minute, Fetch: func(context.Context) (any, error) {
		return nil, errDown
	}}
}

// stateRecorder collects transitions from the state hook.
type stateRecorder struct {
	mu     sync.Mutex
	states []State
}

func (r *stateRecorder) hook(s State, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *stateRecorder) get() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.states...)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "uninitialized", Uninitialized.String())
	assert.Equal(t, "initializing", Initializing.String())
	assert.Equal(t, "ready", Ready.String())
	assert.Equal(t, "error", Error.String())
	assert.Equal(t, "unknown", State(42).String())
}

func TestInitialize_AllSucceed(t *testing.T) {
	c := cache.New()
	defer c.Close()

	rec := &stateRecorder{}
	i := New(c,
		[]Item{okItem("config:", nil), okItem("routing:table", nil)},
		[]Item{okItem("config:firewall", nil)},
		WithStateHook(rec.hook),
	)
	assert.Equal(t, Uninitialized, i.State())

	require.NoError(t, i.Initialize(context.Background()))
	i.WaitBackground()

	assert.Equal(t, Ready, i.State())
	assert.NoError(t, i.LastError())
	assert.Equal(t, []State{Initializing, Ready}, rec.get())
	assert.ElementsMatch(t, []string{"config:", "routing:table", "config:firewall"}, c.Keys())
}

func TestInitialize_PartialFailureIsReady(t *testing.T) {
	c := cache.New()
	defer c.Close()

	i := New(c,
		[]Item{okItem("config:", nil), failItem("routing:table"), failItem("dhcp:leases")},
		nil,
	)

	require.NoError(t, i.Initialize(context.Background()))
	i.WaitBackground()

	assert.Equal(t, Ready, i.State())
	assert.Equal(t, []string{"config:"}, c.Keys(), "failed items are not cached")
}

func TestInitialize_AllEssentialFail(t *testing.T) {
	c := cache.New()
	defer c.Close()

	var important atomic.Int32
	rec := &stateRecorder{}
	i := New(c,
		[]Item{failItem("config:"), failItem("routing:table")},
		[]Item{okItem("config:firewall", &important)},
		WithStateHook(rec.hook),
	)

	err := i.Initialize(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllEssentialFailed)
	assert.Contains(t, err.Error(), "routing:table: backend down")

	assert.Equal(t, Error, i.State())
	assert.ErrorIs(t, i.LastError(), ErrAllEssentialFailed)
	assert.Equal(t, []State{Initializing, Error}, rec.get())
	assert.Empty(t, c.Keys())
	assert.Equal(t, int32(0), important.Load(), "background set only runs after Ready")
}

func TestInitialize_NoOpOutsideStartStates(t *testing.T) {
	c := cache.New()
	defer c.Close()

	var calls atomic.Int32
	i := New(c, []Item{okItem("config:", &calls)}, nil)

	require.NoError(t, i.Initialize(context.Background()))
	require.NoError(t, i.Initialize(context.Background()))
	i.WaitBackground()

	assert.Equal(t, int32(1), calls.Load())
}

func TestInitialize_ConcurrentCallsRunOnce(t *testing.T) {
	c := cache.New()
	defer c.Close()

	var calls atomic.Int32
	release := make(chan struct{})
	slow := Item{Key: "config:", TTL: time.Minute, Fetch: func(context.Context) (any, error) {
		calls.Add(1)
		<-release
		return []byte(`{}`), nil
	}}
	i := New(c, []Item{slow}, nil)

	var wg sync.WaitGroup
	for n := 0; n < 3; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = i.Initialize(context.Background())
		}()
	}

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
	close(release)
	wg.Wait()
	i.WaitBackground()

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, Ready, i.State())
}

func TestRetry(t *testing.T) {
	c := cache.New()
	defer c.Close()

	var fail atomic.Bool
	fail.Store(true)
	flaky := Item{Key: "config:", TTL: time.Minute, Fetch: func(context.Context) (any, error) {
		if fail.Load() {
			return nil, errDown
		}
		return []byte(`{}`), nil
	}}
	i := New(c, []Item{flaky}, nil)

	err := i.Retry(context.Background())
	assert.ErrorIs(t, err, ErrNotRetryable, "retry before any failure is rejected")

	require.Error(t, i.Initialize(context.Background()))
	assert.Equal(t, Error, i.State())

	fail.Store(false)
	require.NoError(t, i.Retry(context.Background()))
	i.WaitBackground()
	assert.Equal(t, Ready, i.State())
	assert.NoError(t, i.LastError())

	assert.ErrorIs(t, i.Retry(context.Background()), ErrNotRetryable)
}

func TestRefresh_KeepsState(t *testing.T) {
	c := cache.New()
	defer c.Close()

	var calls atomic.Int32
	i := New(c,
		[]Item{okItem("config:", &calls)},
		[]Item{okItem("config:firewall", &calls), failItem("config:service")},
	)
	require.NoError(t, i.Initialize(context.Background()))
	i.WaitBackground()
	require.Equal(t, int32(2), calls.Load())

	c.Clear()
	report := i.Refresh(context.Background())

	assert.Equal(t, Ready, i.State())
	assert.NotEmpty(t, report.ID)
	assert.Len(t, report.Results, 3)
	assert.Equal(t, 2, report.OK())
	require.Len(t, report.Failed(), 1)
	assert.Equal(t, "config:service", report.Failed()[0].Key)
	assert.ErrorContains(t, report.Err(), "config:service: backend down")
	assert.ElementsMatch(t, []string{"config:", "config:firewall"}, c.Keys())
	assert.Equal(t, int32(4), calls.Load())
}

func TestRefresh_FromErrorStaysError(t *testing.T) {
	c := cache.New()
	defer c.Close()

	i := New(c, []Item{failItem("config:")}, nil)
	require.Error(t, i.Initialize(context.Background()))

	i.Refresh(context.Background())
	assert.Equal(t, Error, i.State())
}

func TestReport_ErrNil(t *testing.T) {
	assert.NoError(t, Report{Results: []Result{{Key: "a"}}}.Err())
}

// fakeSource resolves every known key to an ok item.
type fakeSource struct{}

func (fakeSource) Fetcher(key string) (cache.Loader, time.Duration, error) {
	if key == "bogus" {
		return nil, 0, errors.New("unknown key")
	}
	return func(context.Context) (any, error) { return key, nil }, 30 * time.Second, nil
}

func TestFromSource(t *testing.T) {
	c := cache.New()
	defer c.Close()

	i, err := FromSource(c, fakeSource{})
	require.NoError(t, err)
	require.NoError(t, i.Initialize(context.Background()))
	i.WaitBackground()

	want := append(append([]string{}, EssentialKeys...), ImportantKeys...)
	assert.ElementsMatch(t, want, c.Keys())

	_, err = Items(fakeSource{}, "config:", "bogus")
	assert.Error(t, err)
}

func TestConcurrencyLimit(t *testing.T) {
	c := cache.New()
	defer c.Close()

	var inFlight, peak atomic.Int32
	item := func(key string) Item {
		return Item{Key: key, TTL: time.Minute, Fetch: func(context.Context) (any, error) {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			inFlight.Add(-1)
			return key, nil
		}}
	}

	i := New(c, []Item{item("a"), item("b"), item("c"), item("d"), item("e")}, nil, WithConcurrency(2))
	require.NoError(t, i.Initialize(context.Background()))
	i.WaitBackground()

	assert.LessOrEqual(t, peak.Load(), int32(2))
	assert.Len(t, c.Keys(), 5)
}
