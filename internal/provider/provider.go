// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package provider owns the cache lifecycle for the interactive console: it
// runs the warm-up, drives the periodic refresh and hands snapshots and
// change events to the renderer.
package provider

import (
	"context"
	"sync"
	"time"

	"github.com/apex/log"

	"github.com/staranto/vyctl/internal/cache"
	"github.com/staranto/vyctl/internal/warmup"
)

const DefaultRefreshInterval = 5 * time.Minute

// Snapshot is what the dashboard renders.
type Snapshot struct {
	State           warmup.State
	LastError       error
	Stats           cache.Stats
	Items           []cache.Entry
	RefreshInterval time.Duration
	LastRefresh     time.Time
	LastReport      *warmup.Report
	Now             time.Time
}

type Option func(*Provider)

func WithRefreshInterval(d time.Duration) Option {
	return func(p *Provider) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithItems replaces the source-derived warm-up sets.
func WithItems(essential, important []warmup.Item) Option {
	return func(p *Provider) {
		p.essential, p.important = essential, important
		p.haveItems = true
	}
}

func WithConcurrency(n int) Option {
	return func(p *Provider) { p.concurrency = n }
}

type Provider struct {
	cache       *cache.Cache
	init        *warmup.Initializer
	interval    time.Duration
	concurrency int

	essential, important []warmup.Item
	haveItems            bool

	mu          sync.Mutex
	ctx         context.Context
	stop        context.CancelFunc
	timerOn     bool
	closed      bool
	lastRefresh time.Time
	lastReport  *warmup.Report
	wg          sync.WaitGroup
}

// New wires a provider over c. src resolves the warm-up keys unless WithItems
// is given, in which case src may be nil.
func New(c *cache.Cache, src warmup.Source, opts ...Option) (*Provider, error) {
	p := &Provider{
		cache:    c,
		interval: DefaultRefreshInterval,
	}
	for _, opt := range opts {
		opt(p)
	}

	wopts := []warmup.Option{warmup.WithStateHook(p.onState)}
	if p.concurrency > 0 {
		wopts = append(wopts, warmup.WithConcurrency(p.concurrency))
	}

	if p.haveItems {
		p.init = warmup.New(c, p.essential, p.important, wopts...)
		return p, nil
	}

	wu, err := warmup.FromSource(c, src, wopts...)
	if err != nil {
		return nil, err
	}
	p.init = wu
	return p, nil
}

// Start kicks off initialization in the background. Progress is reported
// through Subscribe as EventState events.
func (p *Provider) Start(ctx context.Context) {
	p.mu.Lock()
	if p.closed || p.ctx != nil {
		p.mu.Unlock()
		return
	}
	p.ctx, p.stop = context.WithCancel(ctx)
	// Close stops the timer only; the warm-up fetches run to completion.
	ctx = context.WithoutCancel(p.ctx)
	p.mu.Unlock()

	go func() {
		if err := p.init.Initialize(ctx); err != nil {
			log.WithError(err).Error("cache initialization failed")
		}
	}()
}

// Retry re-runs a failed initialization.
func (p *Provider) Retry(ctx context.Context) error {
	return p.init.Retry(ctx)
}

// Refresh runs one refresh cycle now. It does not wait for or block any other
// cycle.
func (p *Provider) Refresh(ctx context.Context) warmup.Report {
	report := p.init.Refresh(ctx)

	p.mu.Lock()
	p.lastRefresh = p.cache.Now()
	p.lastReport = &report
	p.mu.Unlock()

	p.cache.Publish(cache.Event{Type: cache.EventState, Key: report.ID, Detail: "refreshed"})
	return report
}

// Clear deletes entries starting with pattern, or everything when pattern is
// empty. It returns the number of entries removed.
func (p *Provider) Clear(pattern string) int {
	if pattern == "" {
		n := p.cache.Stats().Items
		p.cache.Clear()
		return n
	}
	return p.cache.DeletePattern(pattern)
}

func (p *Provider) Subscribe() *cache.Subscription {
	return p.cache.Subscribe()
}

func (p *Provider) State() warmup.State {
	return p.init.State()
}

func (p *Provider) Snapshot() Snapshot {
	p.mu.Lock()
	last, report := p.lastRefresh, p.lastReport
	p.mu.Unlock()

	return Snapshot{
		State:           p.init.State(),
		LastError:       p.init.LastError(),
		Stats:           p.cache.Stats(),
		Items:           p.cache.Entries(),
		RefreshInterval: p.interval,
		LastRefresh:     last,
		LastReport:      report,
		Now:             p.cache.Now(),
	}
}

// Close stops the refresh timer and disposes the cache. In-flight requests
// are not cancelled; their results land in a closed cache and are dropped.
func (p *Provider) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	stop := p.stop
	p.mu.Unlock()

	if stop != nil {
		stop()
	}
	p.wg.Wait()
	p.cache.Close()
}

// StateKey is the Key of EventState events for warm-up transitions.
const StateKey = "warmup"

func (p *Provider) onState(s warmup.State, _ error) {
	p.cache.Publish(cache.Event{Type: cache.EventState, Key: StateKey, Detail: s.String()})

	if s == warmup.Ready {
		p.startTimer()
	}
}

// startTimer launches the refresh ticker once. Each tick runs its own cycle
// in a new goroutine, so a slow cycle does not delay the next one.
func (p *Provider) startTimer() {
	p.mu.Lock()
	if p.timerOn || p.closed || p.ctx == nil {
		p.mu.Unlock()
		return
	}
	p.timerOn = true
	ctx := p.ctx
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				log.WithField("interval", p.interval).Debug("refresh timer fired")
				go p.Refresh(context.WithoutCancel(ctx))
			}
		}
	}()
}
