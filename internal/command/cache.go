// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"time"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/staranto/vyctl/internal/meta"
	"github.com/staranto/vyctl/internal/warmup"
)

// statsRow is the cache summary shared by the local and backend variants.
type statsRow struct {
	Scope   string  `json:"scope"`
	Items   int64   `json:"items"`
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
	Uptime  string  `json:"uptime"`
}

// entryRow is one warmed cache entry.
type entryRow struct {
	Key       string `json:"key"`
	StoredAt  string `json:"stored_at"`
	TTL       string `json:"ttl"`
	ExpiresAt string `json:"expires_at"`
	Error     string `json:"error,omitempty"`
	Elapsed   string `json:"elapsed,omitempty"`
}

func CacheStatsAction(ctx context.Context, cmd *cli.Command) error {
	s := newSession(cmd)
	defer s.Close()

	if cmd.Bool("backend") {
		al, err := BuildAttrs(cmd, "scope", "items", "hits", "misses", "hit_rate::h", "uptime")
		if err != nil {
			return err
		}
		st, err := s.client.CacheStats(ctx)
		if err != nil {
			return fmt.Errorf("failed to read backend cache stats: %w", err)
		}
		up := time.Duration(st.Uptime * float64(time.Second)).Truncate(time.Second)
		return emitRows(cmd, statsRow{
			Scope:   "backend",
			Items:   st.Items,
			Hits:    st.Hits,
			Misses:  st.Misses,
			HitRate: st.HitRate,
			Uptime:  up.String(),
		}, al)
	}

	al, err := BuildAttrs(cmd, "key", "stored_at::t", "ttl", "expires_at::t", "elapsed", "error")
	if err != nil {
		return err
	}

	started := time.Now()
	wu, err := warmup.FromSource(s.cache, s.backend)
	if err != nil {
		return err
	}
	report := wu.Refresh(ctx)
	if len(report.Results) > 0 && report.OK() == 0 {
		return fmt.Errorf("%w: %w", warmup.ErrAllEssentialFailed, report.Err())
	}
	timing := map[string]warmup.Result{}
	for _, r := range report.Results {
		timing[r.Key] = r
	}

	var rows []entryRow
	for _, e := range s.cache.Entries() {
		row := entryRow{
			Key:       e.Key,
			StoredAt:  e.StoredAt.Format(time.RFC3339),
			TTL:       e.TTL.String(),
			ExpiresAt: e.ExpiresAt().Format(time.RFC3339),
		}
		if r, ok := timing[e.Key]; ok {
			row.Elapsed = r.Elapsed.Round(time.Millisecond).String()
		}
		rows = append(rows, row)
	}
	for _, r := range report.Failed() {
		rows = append(rows, entryRow{Key: r.Key, Error: r.Err.Error()})
	}

	if err := emitRows(cmd, rows, al); err != nil {
		return err
	}

	st := s.cache.Stats()
	notice(cmd, "\n%s items, %s hits, %s misses, hit rate %.1f%%, warmed %s",
		humanize.Comma(int64(st.Items)),
		humanize.Comma(int64(st.Hits)),
		humanize.Comma(int64(st.Misses)),
		st.HitRate()*100,
		humanize.RelTime(started, time.Now(), "ago", "from now"),
	)
	return nil
}

// CacheClearAction clears the backend's cache, or only the keys starting with
// --pattern.
func CacheClearAction(ctx context.Context, cmd *cli.Command) error {
	pattern := cmd.String("pattern")
	s := newSession(cmd)
	defer s.Close()

	msg, err := s.client.ClearCache(ctx, pattern)
	if err != nil {
		return fmt.Errorf("failed to clear backend cache: %w", err)
	}
	if msg == "" {
		msg = "Backend cache cleared."
	}
	log.WithField("pattern", pattern).Debug("backend cache cleared")
	notice(cmd, "%s", msg)
	return nil
}

func CacheCommandBuilder(app *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:     "cache",
		Usage:    "response cache operations",
		Metadata: withMeta(meta),
		Commands: []*cli.Command{
			{
				Name:  "stats",
				Usage: "warm the cache and show its entries, or the backend cache statistics",
				Flags: append([]cli.Flag{
					&cli.BoolFlag{
						Name:        "backend",
						Usage:       "show the backend's own cache statistics",
						HideDefault: true,
					},
				}, NewGlobalFlags("cache", meta.Config)...),
				Action: CacheStatsAction,
			},
			{
				Name:  "clear",
				Usage: "clear the backend cache",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "pattern",
						Aliases: []string{"p"},
						Usage:   "only clear keys starting with this prefix",
					},
				},
				Action: CacheClearAction,
			},
		},
	}
}
