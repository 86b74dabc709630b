// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnsuccessful is returned when the backend answers 2xx with an envelope
	// whose success field is false.
	ErrUnsuccessful = errors.New("backend reported failure")

	// ErrNetwork wraps transport failures such as connection refused.
	ErrNetwork = errors.New("network error")
)

// Error is a non-2xx response from the backend.
type Error struct {
	Status     int
	StatusText string
	Message    string
	URL        string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API error (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("API error (%d): %s", e.Status, e.StatusText)
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}
