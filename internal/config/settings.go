// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	DefaultAPIURL          = "http://localhost:3001"
	DefaultTimeout         = 30 * time.Second
	DefaultRefreshInterval = 5 * time.Minute

	SavingConfirmation = "confirmation"
	SavingDirect       = "direct"
)

// CORS mirrors the header overrides the backend's browser console honors.
// vyctl serves no HTTP, so these are only reported.
type CORS struct {
	AllowOrigin  string
	AllowMethods string
	AllowHeaders string
}

// Settings is the resolved client configuration.
type Settings struct {
	APIURL          string
	APIURLSource    string
	Timeout         time.Duration
	RefreshInterval time.Duration
	SavingMethod    string
	CORS            CORS
}

// ResolveSettings merges env vars, the config file and defaults. For the API
// URL, VYCTL_API_URL beats NEXT_PUBLIC_API_URL beats api_url.
func ResolveSettings() (Settings, error) {
	s := Settings{
		APIURL:       DefaultAPIURL,
		APIURLSource: "default",
	}

	if v, err := GetString("api_url"); err == nil && v != "" {
		s.APIURL, s.APIURLSource = v, "config"
	}
	for _, env := range []string{"NEXT_PUBLIC_API_URL", "VYCTL_API_URL"} {
		if v := os.Getenv(env); v != "" {
			s.APIURL, s.APIURLSource = v, env
		}
	}
	s.APIURL = strings.TrimRight(s.APIURL, "/")

	var err error
	if s.Timeout, err = GetDuration("timeout", DefaultTimeout); err != nil {
		return s, err
	}
	if s.RefreshInterval, err = GetDuration("refresh_interval", DefaultRefreshInterval); err != nil {
		return s, err
	}
	if s.RefreshInterval <= 0 {
		return s, fmt.Errorf("refresh_interval must be positive, got %s", s.RefreshInterval)
	}

	s.SavingMethod, _ = GetString("saving_method", SavingConfirmation)
	if v := os.Getenv("VYCTL_SAVING_METHOD"); v != "" {
		s.SavingMethod = v
	}
	switch s.SavingMethod {
	case SavingConfirmation, SavingDirect:
	default:
		return s, fmt.Errorf("saving_method must be %q or %q, got %q",
			SavingConfirmation, SavingDirect, s.SavingMethod)
	}

	s.CORS = CORS{
		AllowOrigin:  corsValue("NEXT_PUBLIC_CORS_ALLOW_ORIGIN", "cors.allow_origin", "*"),
		AllowMethods: corsValue("NEXT_PUBLIC_CORS_ALLOW_METHODS", "cors.allow_methods", "GET,POST,PUT,DELETE"),
		AllowHeaders: corsValue("NEXT_PUBLIC_CORS_ALLOW_HEADERS", "cors.allow_headers", "Content-Type,Authorization"),
	}

	return s, nil
}

func corsValue(env, key, def string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	v, _ := GetString(key, def)
	return v
}
