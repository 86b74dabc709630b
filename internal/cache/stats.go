// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import "time"

// Stats is a point-in-time view of cache effectiveness.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Items     int
	StartTime time.Time
}

// HitRate is Hits/(Hits+Misses), or 0 before the first lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Uptime is the time elapsed since the cache was created, truncated to the
// second.
func (s Stats) Uptime(now time.Time) time.Duration {
	return now.Sub(s.StartTime).Truncate(time.Second)
}
