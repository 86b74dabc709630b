// Copyright (c) 2025 Steve Taranto staranto@gmail.com.
// SPDX-License-Identifier: Apache-2.0

// Package backend wraps the REST client with the response cache. Reads go
// through cache keys in the config:, show:, routing:, dhcp: and system:
// namespaces; mutations invalidate the namespaces they can change.
package backend
