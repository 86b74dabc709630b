// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package cache provides the in-process response cache shared by the console.
// Entries carry their own TTL and are invalidated lazily on read, by key, by
// key prefix or all at once. There is no eviction policy and no persistence.
package cache
