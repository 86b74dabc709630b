// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package output turns the JSON rows and documents produced by the views into
// what a command prints: filtered, transformed, sorted and rendered as a
// table, json, yaml or the raw backend payload.
package output
