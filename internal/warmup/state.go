// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package warmup

// State is the initializer lifecycle.
//
//	Uninitialized -> Initializing -> Ready
//	                 Initializing -> Error -> Initializing (Retry)
type State int

const (
	Uninitialized State = iota
	Initializing
	Ready
	Error
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initializing:
		return "initializing"
	case Ready:
		return "ready"
	case Error:
		return "error"
	}
	return "unknown"
}
