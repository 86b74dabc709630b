// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"
)

// GetConfig returns the configuration tree below path, or the whole tree
// when path is empty.
func (c *Client) GetConfig(ctx context.Context, path string) ([]byte, error) {
	if p := EscapePath(path); p != "" {
		return c.do(ctx, http.MethodGet, "config/"+p, nil)
	}
	return c.do(ctx, http.MethodGet, "config", nil)
}

// Set issues a configure set on path, with an optional leaf value.
func (c *Client) Set(ctx context.Context, path, value string) ([]byte, error) {
	return c.do(ctx, http.MethodPost, "configure/set/"+EscapePath(path), valueQuery("value", value))
}

// Delete issues a configure delete on path, with an optional leaf value.
func (c *Client) Delete(ctx context.Context, path, value string) ([]byte, error) {
	return c.do(ctx, http.MethodPost, "configure/delete/"+EscapePath(path), valueQuery("value", value))
}

// Show runs an operational-mode show command.
func (c *Client) Show(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, "show/"+EscapePath(path), nil)
}

// RoutingTable returns routes grouped by VRF under routes_by_vrf.
func (c *Client) RoutingTable(ctx context.Context) ([]byte, error) {
	return c.do(ctx, http.MethodGet, "routingtable", nil)
}

// DHCPLeases returns leases grouped by pool under leases.
func (c *Client) DHCPLeases(ctx context.Context) ([]byte, error) {
	return c.do(ctx, http.MethodGet, "dhcp/leases", nil)
}

// CheckUnsavedChanges reports whether the running config differs from the
// saved one.
func (c *Client) CheckUnsavedChanges(ctx context.Context) (bool, error) {
	body, err := c.do(ctx, http.MethodGet, "check-unsaved-changes", nil)
	if err != nil {
		return false, err
	}
	return Data(body).Bool(), nil
}

// SetUnsavedChanges sets the backend's unsaved flag.
func (c *Client) SetUnsavedChanges(ctx context.Context, unsaved bool) error {
	return drain(c.do(ctx, http.MethodPost, "set-unsaved-changes/"+strconv.FormatBool(unsaved), nil))
}

// SaveConfig persists the running config, to file when given.
func (c *Client) SaveConfig(ctx context.Context, file string) ([]byte, error) {
	return c.do(ctx, http.MethodPost, "config-file/save", valueQuery("file", file))
}

// LoadConfig loads file into the running config.
func (c *Client) LoadConfig(ctx context.Context, file string) ([]byte, error) {
	return c.do(ctx, http.MethodPost, "config-file/load", valueQuery("file", file))
}

func (c *Client) Poweroff(ctx context.Context) error {
	return drain(c.do(ctx, http.MethodPost, "poweroff", nil))
}

func (c *Client) Reboot(ctx context.Context) error {
	return drain(c.do(ctx, http.MethodPost, "reboot", nil))
}

// NTPStatus returns the daemon status document.
func (c *Client) NTPStatus(ctx context.Context) ([]byte, error) {
	return c.do(ctx, http.MethodGet, "ntp/status", nil)
}

// ServiceStatus returns the status document for a system service such as ssh.
func (c *Client) ServiceStatus(ctx context.Context, name string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, "service/status/"+url.PathEscape(name), nil)
}

// BackendCacheStats is the server-side cache summary.
type BackendCacheStats struct {
	Items   int64   `json:"items"`
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
	Uptime  float64 `json:"uptime"`
}

// CacheStats returns the backend's own cache statistics.
func (c *Client) CacheStats(ctx context.Context) (BackendCacheStats, error) {
	body, err := c.do(ctx, http.MethodGet, "cache/stats", nil)
	if err != nil {
		return BackendCacheStats{}, err
	}

	stats := gjson.GetBytes(body, "stats")
	return BackendCacheStats{
		Items:   stats.Get("items").Int(),
		Hits:    stats.Get("hits").Int(),
		Misses:  stats.Get("misses").Int(),
		HitRate: stats.Get("hit_rate").Float(),
		Uptime:  stats.Get("uptime").Float(),
	}, nil
}

// ClearCache clears the backend cache, limited to pattern when given, and
// returns the backend's message.
func (c *Client) ClearCache(ctx context.Context, pattern string) (string, error) {
	body, err := c.do(ctx, http.MethodPost, "cache/clear", valueQuery("pattern", pattern))
	if err != nil {
		return "", err
	}
	return gjson.GetBytes(body, "message").String(), nil
}

func valueQuery(key, value string) url.Values {
	if value == "" {
		return nil
	}
	return url.Values{key: []string{value}}
}
