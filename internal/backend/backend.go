// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package backend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/apex/log"

	"github.com/staranto/vyctl/internal/api"
	"github.com/staranto/vyctl/internal/cache"
)

// Cache keys and their TTLs.
const (
	NamespaceConfig = "config"
	NamespaceShow   = "show"

	ConfigPrefix = NamespaceConfig + ":"
	ShowPrefix   = NamespaceShow + ":"

	KeyRoutingTable = "routing:table"
	KeyDHCPLeases   = "dhcp:leases"
	KeyUnsaved      = "system:unsaved"

	ConfigTTL  = 30 * time.Second
	ShowTTL    = 30 * time.Second
	RoutingTTL = 60 * time.Second
	DHCPTTL    = 60 * time.Second
	UnsavedTTL = 10 * time.Second
)

// ConfigKey returns the cache key for the config subtree at path. The full
// tree is "config:".
func ConfigKey(path string) string {
	return ConfigPrefix + strings.Trim(path, "/")
}

// ShowKey returns the cache key for a show command.
func ShowKey(path string) string {
	return ShowPrefix + strings.Trim(path, "/")
}

// Backend is what the views and the warm-up see of the router.
type Backend interface {
	Config(ctx context.Context, path string) ([]byte, error)
	Show(ctx context.Context, path string) ([]byte, error)
	RoutingTable(ctx context.Context) ([]byte, error)
	DHCPLeases(ctx context.Context) ([]byte, error)
	UnsavedChanges(ctx context.Context) (bool, error)

	Set(ctx context.Context, path, value string) error
	Delete(ctx context.Context, path, value string) error
	Save(ctx context.Context, file string) error
	Load(ctx context.Context, file string) error
	MarkSaved(ctx context.Context) error

	Poweroff(ctx context.Context) error
	Reboot(ctx context.Context) error

	NTPStatus(ctx context.Context) ([]byte, error)
	ServiceStatus(ctx context.Context, name string) ([]byte, error)

	String() string
}

// Cached is the Backend backed by *api.Client and *cache.Cache.
type Cached struct {
	client *api.Client
	cache  *cache.Cache
}

var _ Backend = (*Cached)(nil)

func New(client *api.Client, c *cache.Cache) *Cached {
	return &Cached{client: client, cache: c}
}

func (b *Cached) String() string {
	return b.client.BaseURL()
}

// Cache returns the cache the backend reads through.
func (b *Cached) Cache() *cache.Cache {
	return b.cache
}

// Client returns the underlying REST client.
func (b *Cached) Client() *api.Client {
	return b.client
}

// Fetcher resolves a cache key to an uncached loader and its TTL. It is how
// the warm-up and refresh cycles repopulate the cache.
func (b *Cached) Fetcher(key string) (cache.Loader, time.Duration, error) {
	switch {
	case key == KeyRoutingTable:
		return func(ctx context.Context) (any, error) { return b.client.RoutingTable(ctx) }, RoutingTTL, nil
	case key == KeyDHCPLeases:
		return func(ctx context.Context) (any, error) { return b.client.DHCPLeases(ctx) }, DHCPTTL, nil
	case key == KeyUnsaved:
		return func(ctx context.Context) (any, error) { return b.client.CheckUnsavedChanges(ctx) }, UnsavedTTL, nil
	case strings.HasPrefix(key, ConfigPrefix):
		path := strings.TrimPrefix(key, ConfigPrefix)
		return func(ctx context.Context) (any, error) { return b.client.GetConfig(ctx, path) }, ConfigTTL, nil
	case strings.HasPrefix(key, ShowPrefix):
		path := strings.TrimPrefix(key, ShowPrefix)
		return func(ctx context.Context) (any, error) { return b.client.Show(ctx, path) }, ShowTTL, nil
	}
	return nil, 0, fmt.Errorf("no fetcher for cache key %q", key)
}

func (b *Cached) load(ctx context.Context, key string) (any, error) {
	loader, ttl, err := b.Fetcher(key)
	if err != nil {
		return nil, err
	}
	return b.cache.GetOrLoad(ctx, key, loader, ttl)
}

func (b *Cached) loadBytes(ctx context.Context, key string) ([]byte, error) {
	v, err := b.load(ctx, key)
	if err != nil {
		return nil, err
	}
	body, ok := v.([]byte)
	if !ok {
		return nil, fmt.Errorf("cache entry %s holds %T, not a response body", key, v)
	}
	return body, nil
}

func (b *Cached) Config(ctx context.Context, path string) ([]byte, error) {
	return b.loadBytes(ctx, ConfigKey(path))
}

func (b *Cached) Show(ctx context.Context, path string) ([]byte, error) {
	return b.loadBytes(ctx, ShowKey(path))
}

func (b *Cached) RoutingTable(ctx context.Context) ([]byte, error) {
	return b.loadBytes(ctx, KeyRoutingTable)
}

func (b *Cached) DHCPLeases(ctx context.Context) ([]byte, error) {
	return b.loadBytes(ctx, KeyDHCPLeases)
}

func (b *Cached) UnsavedChanges(ctx context.Context) (bool, error) {
	v, err := b.load(ctx, KeyUnsaved)
	if err != nil {
		return false, err
	}
	unsaved, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("cache entry %s holds %T, not a bool", KeyUnsaved, v)
	}
	return unsaved, nil
}

// Set and Delete invalidate the config and show namespaces plus the unsaved
// flag, whether or not the call succeeded.
func (b *Cached) Set(ctx context.Context, path, value string) error {
	_, err := b.client.Set(ctx, path, value)
	b.invalidate("set", NamespaceConfig, NamespaceShow, KeyUnsaved)
	if err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}
	return nil
}

func (b *Cached) Delete(ctx context.Context, path, value string) error {
	_, err := b.client.Delete(ctx, path, value)
	b.invalidate("delete", NamespaceConfig, NamespaceShow, KeyUnsaved)
	if err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

func (b *Cached) Save(ctx context.Context, file string) error {
	if _, err := b.client.SaveConfig(ctx, file); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	b.invalidate("save", NamespaceConfig, KeyUnsaved)
	return nil
}

func (b *Cached) Load(ctx context.Context, file string) error {
	if _, err := b.client.LoadConfig(ctx, file); err != nil {
		return fmt.Errorf("load config %s: %w", file, err)
	}
	log.WithField("file", file).Debug("config loaded, clearing cache")
	b.cache.Clear()
	return nil
}

// MarkSaved resets the backend's unsaved flag after a save.
func (b *Cached) MarkSaved(ctx context.Context) error {
	if err := b.client.SetUnsavedChanges(ctx, false); err != nil {
		return fmt.Errorf("reset unsaved flag: %w", err)
	}
	b.cache.Delete(KeyUnsaved)
	return nil
}

func (b *Cached) Poweroff(ctx context.Context) error {
	return b.client.Poweroff(ctx)
}

func (b *Cached) Reboot(ctx context.Context) error {
	return b.client.Reboot(ctx)
}

func (b *Cached) NTPStatus(ctx context.Context) ([]byte, error) {
	return b.client.NTPStatus(ctx)
}

func (b *Cached) ServiceStatus(ctx context.Context, name string) ([]byte, error) {
	return b.client.ServiceStatus(ctx, name)
}

func (b *Cached) invalidate(op string, patterns ...string) {
	removed := 0
	for _, p := range patterns {
		removed += b.cache.DeletePattern(p)
	}
	log.WithFields(log.Fields{"op": op, "patterns": patterns, "removed": removed}).Debug("cache invalidated")
}
