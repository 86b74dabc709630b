// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package api is the HTTP client for the VyManager backend REST service. Every
// endpoint returns the raw response body; callers pull fields out with gjson.
// Envelopes with success=false become ErrUnsuccessful and non-2xx responses
// become *Error.
package api
