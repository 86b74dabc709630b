// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package warmup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/staranto/vyctl/internal/cache"
)

var (
	// ErrAllEssentialFailed means not a single essential item could be
	// fetched. The initializer is in Error and waits for Retry.
	ErrAllEssentialFailed = errors.New("all essential items failed to load")

	// ErrNotRetryable is returned by Retry outside the Error state.
	ErrNotRetryable = errors.New("retry is only possible after a failed initialization")
)

// EssentialKeys must load before the console is usable.
var EssentialKeys = []string{"config:", "routing:table", "dhcp:leases", "system:unsaved"}

// ImportantKeys are loaded in the background once the essential set is done.
var ImportantKeys = []string{"config:interfaces", "config:firewall", "config:service"}

// DefaultConcurrency bounds the number of fetches in flight per cycle.
const DefaultConcurrency = 4

// Item is one cache key to preload.
type Item struct {
	Key   string
	TTL   time.Duration
	Fetch cache.Loader
}

// Source resolves cache keys into loaders. *backend.Cached satisfies it.
type Source interface {
	Fetcher(key string) (cache.Loader, time.Duration, error)
}

// Items resolves keys against src.
func Items(src Source, keys ...string) ([]Item, error) {
	items := make([]Item, 0, len(keys))
	for _, k := range keys {
		fetch, ttl, err := src.Fetcher(k)
		if err != nil {
			return nil, err
		}
		items = append(items, Item{Key: k, TTL: ttl, Fetch: fetch})
	}
	return items, nil
}

// Result is the outcome of fetching one item.
type Result struct {
	Key     string
	Err     error
	Elapsed time.Duration
}

// Report summarizes one fetch cycle.
type Report struct {
	ID      string
	Started time.Time
	Results []Result
}

// Failed returns the results that carry an error.
func (r Report) Failed() []Result {
	var failed []Result
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// OK returns the number of items that loaded.
func (r Report) OK() int {
	return len(r.Results) - len(r.Failed())
}

// Err joins the failures into one error, or nil.
func (r Report) Err() error {
	failed := r.Failed()
	if len(failed) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(failed))
	for _, f := range failed {
		msgs = append(msgs, f.Key+": "+f.Err.Error())
	}
	return errors.New(strings.Join(msgs, "; "))
}

type Option func(*Initializer)

// WithStateHook is called, outside the lock, on every state transition.
func WithStateHook(fn func(State, error)) Option {
	return func(i *Initializer) { i.onState = fn }
}

// WithConcurrency bounds the parallel fetches per cycle.
func WithConcurrency(n int) Option {
	return func(i *Initializer) {
		if n > 0 {
			i.concurrency = n
		}
	}
}

// Initializer runs the warm-up state machine against a cache.
type Initializer struct {
	mu          sync.Mutex
	state       State
	lastErr     error
	cache       *cache.Cache
	essential   []Item
	important   []Item
	concurrency int
	onState     func(State, error)
	background  sync.WaitGroup
}

func New(c *cache.Cache, essential, important []Item, opts ...Option) *Initializer {
	i := &Initializer{
		cache:       c,
		essential:   essential,
		important:   important,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// FromSource builds an Initializer over EssentialKeys and ImportantKeys.
func FromSource(c *cache.Cache, src Source, opts ...Option) (*Initializer, error) {
	essential, err := Items(src, EssentialKeys...)
	if err != nil {
		return nil, err
	}
	important, err := Items(src, ImportantKeys...)
	if err != nil {
		return nil, err
	}
	return New(c, essential, important, opts...), nil
}

func (i *Initializer) State() State {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state
}

// LastError is the error that put the initializer into Error, if any.
func (i *Initializer) LastError() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.lastErr
}

func (i *Initializer) transition(s State, err error) {
	i.mu.Lock()
	i.state = s
	i.lastErr = err
	hook := i.onState
	i.mu.Unlock()

	log.WithField("state", s).Debug("warm-up state")
	if hook != nil {
		hook(s, err)
	}
}

// Initialize fetches the essential set. It only acts from Uninitialized or
// Error; in any other state it returns nil without doing anything.
func (i *Initializer) Initialize(ctx context.Context) error {
	i.mu.Lock()
	if i.state != Uninitialized && i.state != Error {
		i.mu.Unlock()
		return nil
	}
	i.state, i.lastErr = Initializing, nil
	hook := i.onState
	i.mu.Unlock()

	log.WithField("state", Initializing).Debug("warm-up state")
	if hook != nil {
		hook(Initializing, nil)
	}

	report := i.fetch(ctx, i.essential)
	failed := report.Failed()

	if len(i.essential) > 0 && len(failed) == len(i.essential) {
		err := fmt.Errorf("%w: %w", ErrAllEssentialFailed, report.Err())
		i.transition(Error, err)
		return err
	}

	if len(failed) > 0 {
		log.WithField("failed", len(failed)).Warnf("%d essential items failed to load, functionality may be limited", len(failed))
	}

	i.transition(Ready, nil)

	i.background.Add(1)
	go func() {
		defer i.background.Done()
		r := i.fetch(ctx, i.important)
		log.WithFields(log.Fields{"ok": r.OK(), "failed": len(r.Failed())}).Debug("background warm-up complete")
	}()

	return nil
}

// Retry re-runs Initialize after a failure.
func (i *Initializer) Retry(ctx context.Context) error {
	if s := i.State(); s != Error {
		return fmt.Errorf("%w (state %s)", ErrNotRetryable, s)
	}
	return i.Initialize(ctx)
}

// Refresh refetches every essential and important item. It never changes the
// state and may overlap with other refresh cycles.
func (i *Initializer) Refresh(ctx context.Context) Report {
	items := make([]Item, 0, len(i.essential)+len(i.important))
	items = append(items, i.essential...)
	items = append(items, i.important...)

	report := i.fetch(ctx, items)
	log.WithFields(log.Fields{
		"cycle":  report.ID,
		"ok":     report.OK(),
		"failed": len(report.Failed()),
	}).Info("cache refreshed")
	return report
}

// WaitBackground blocks until background loads started by Initialize finish.
func (i *Initializer) WaitBackground() {
	i.background.Wait()
}

// fetch loads items in parallel and stores each success in the cache. Failed
// items are logged and left uncached.
func (i *Initializer) fetch(ctx context.Context, items []Item) Report {
	report := Report{
		ID:      uuid.NewString(),
		Started: time.Now(),
		Results: make([]Result, len(items)),
	}

	var g errgroup.Group
	g.SetLimit(i.concurrency)
	for idx, item := range items {
		g.Go(func() error {
			start := time.Now()
			v, err := item.Fetch(ctx)
			report.Results[idx] = Result{Key: item.Key, Err: err, Elapsed: time.Since(start)}

			if err != nil {
				log.WithError(err).WithField("key", item.Key).Warn("failed to cache")
				return nil
			}
			i.cache.Set(item.Key, v, item.TTL)
			log.WithField("key", item.Key).Debug("cached")
			return nil
		})
	}
	_ = g.Wait()

	return report
}
