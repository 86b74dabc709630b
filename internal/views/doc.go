// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package views holds the configuration pages. Each page fetches the full
// configuration tree, extracts its subsection and issues one backend call per
// mutation. There is no batching: a failure part way through leaves the
// earlier calls applied.
package views
