// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package warmup preloads the response cache. The essential set is fetched
// before the console is usable; the important set follows in the background.
package warmup
