// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package views

import (
	"context"
	"errors"
	"fmt"

	"github.com/apex/log"
	"github.com/tidwall/gjson"

	"github.com/staranto/vyctl/internal/api"
	"github.com/staranto/vyctl/internal/backend"
	"github.com/staranto/vyctl/internal/config"
)

// ErrValidation marks input rejected before any backend call is made.
var ErrValidation = errors.New("validation error")

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

type Option func(*Views)

// WithSavingMethod selects "confirmation" (default) or "direct".
func WithSavingMethod(method string) Option {
	return func(v *Views) { v.savingMethod = method }
}

// Views renders pages from a Backend.
type Views struct {
	backend      backend.Backend
	savingMethod string
}

func New(b backend.Backend, opts ...Option) *Views {
	v := &Views{backend: b, savingMethod: config.SavingConfirmation}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// tree runs the saving method and returns the full configuration tree. A
// failing saving method is logged and does not block the page.
func (v *Views) tree(ctx context.Context) (gjson.Result, error) {
	if _, err := v.ApplySavingMethod(ctx); err != nil {
		log.WithError(err).Warn("saving method failed")
	}

	body, err := v.backend.Config(ctx, "")
	if err != nil {
		return gjson.Result{}, fmt.Errorf("error loading configuration: %w", err)
	}

	data := api.Data(body)
	if !data.IsObject() {
		return gjson.Result{}, errors.New("error loading configuration: empty configuration tree")
	}
	return data, nil
}

// strList reads a config leaf that may be a single value or a list.
func strList(r gjson.Result) []string {
	if !r.Exists() || r.Type == gjson.Null {
		return nil
	}
	if r.IsArray() {
		out := make([]string, 0, len(r.Array()))
		for _, e := range r.Array() {
			out = append(out, e.String())
		}
		return out
	}
	return []string{r.String()}
}

// path escapes a gjson key segment so dotted names like 0.pool.ntp.org are
// treated as one key.
func path(segments ...string) string {
	out := ""
	for i, s := range segments {
		if i > 0 {
			out += "."
		}
		out += escapeKey(s)
	}
	return out
}

func escapeKey(s string) string {
	var b []byte
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '.', '*', '?', '|', '#', '@', '\\', '!', '=', '<', '>', '%':
			b = append(b, '\\')
		}
		b = append(b, s[i])
	}
	return string(b)
}
