// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package views

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/apex/log"
	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"

	"github.com/staranto/vyctl/internal/api"
)

// Change is one backend call computed from an edited document.
type Change struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value string `json:"value,omitempty"`
}

func (c Change) String() string {
	return strings.TrimSpace(fmt.Sprintf("%s %s %s", c.Op, c.Path, c.Value))
}

// ConfigDocument returns the subtree at path as indented JSON. Only object
// subtrees can be edited.
func (v *Views) ConfigDocument(ctx context.Context, path string) ([]byte, error) {
	if _, err := v.ApplySavingMethod(ctx); err != nil {
		log.WithError(err).Warn("saving method failed")
	}

	body, err := v.backend.Config(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %w", err)
	}

	data := api.Data(body)
	if !data.IsObject() {
		return nil, validationf("%q is not a configuration node", path)
	}

	var out bytes.Buffer
	if err := json.Indent(&out, []byte(data.Raw), "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// ParseDocument parses an edited document. Anything but a JSON object is a
// validation error and must block the save.
func ParseDocument(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, validationf("invalid JSON: %v", err)
	}
	if dec.More() {
		return nil, validationf("invalid JSON: trailing data after document")
	}
	if doc == nil {
		return nil, validationf("document must be a JSON object")
	}
	return doc, nil
}

// DiffDocuments renders a structural diff of two JSON objects. modified is
// false when the documents are equivalent.
func DiffDocuments(before, after []byte, color bool) (text string, modified bool, err error) {
	d, err := gojsondiff.New().Compare(before, after)
	if err != nil {
		return "", false, validationf("cannot compare documents: %v", err)
	}
	if !d.Modified() {
		return "", false, nil
	}

	var left map[string]any
	if err := json.Unmarshal(before, &left); err != nil {
		return "", false, err
	}

	f := formatter.NewAsciiFormatter(left, formatter.AsciiFormatterConfig{
		ShowArrayIndex: false,
		Coloring:       color,
	})
	text, err = f.Format(d)
	return text, true, err
}

// PlanChanges turns the difference between two documents rooted at base into
// set and delete calls on leaves. Deletes come first.
func PlanChanges(base string, before, after map[string]any) []Change {
	var dels, sets []Change
	walk(strings.Trim(base, "/"), before, after, &dels, &sets)

	byPath := func(c []Change) {
		sort.SliceStable(c, func(i, j int) bool {
			if c[i].Path != c[j].Path {
				return c[i].Path < c[j].Path
			}
			return c[i].Value < c[j].Value
		})
	}
	byPath(dels)
	byPath(sets)
	return append(dels, sets...)
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "/" + key
}

func walk(prefix string, a, b any, dels, sets *[]Change) {
	am, aIsMap := a.(map[string]any)
	bm, bIsMap := b.(map[string]any)

	switch {
	case aIsMap && bIsMap:
		for k, av := range am {
			bv, ok := bm[k]
			if !ok {
				*dels = append(*dels, Change{Op: "delete", Path: join(prefix, k)})
				continue
			}
			walk(join(prefix, k), av, bv, dels, sets)
		}
		for k, bv := range bm {
			if _, ok := am[k]; !ok {
				addAll(join(prefix, k), bv, sets)
			}
		}

	case isNode(a) && isNode(b):
		// Valueless nodes on both sides.

	case aIsMap || bIsMap || isNode(a) || isNode(b):
		*dels = append(*dels, Change{Op: "delete", Path: prefix})
		addAll(prefix, b, sets)

	default:
		av, bv := leafValues(a), leafValues(b)
		_, aList := a.([]any)
		_, bList := b.([]any)
		if !aList && !bList {
			if av[0] != bv[0] {
				*sets = append(*sets, Change{Op: "set", Path: prefix, Value: bv[0]})
			}
			return
		}
		for _, x := range av {
			if !slices.Contains(bv, x) {
				*dels = append(*dels, Change{Op: "delete", Path: prefix, Value: x})
			}
		}
		for _, y := range bv {
			if !slices.Contains(av, y) {
				*sets = append(*sets, Change{Op: "set", Path: prefix, Value: y})
			}
		}
	}
}

// isNode reports a valueless node such as disable-password-authentication,
// which the backend renders as {} or null.
func isNode(v any) bool {
	if v == nil {
		return true
	}
	m, ok := v.(map[string]any)
	return ok && len(m) == 0
}

func addAll(prefix string, v any, sets *[]Change) {
	if isNode(v) {
		*sets = append(*sets, Change{Op: "set", Path: prefix})
		return
	}
	if m, ok := v.(map[string]any); ok {
		for k, mv := range m {
			addAll(join(prefix, k), mv, sets)
		}
		return
	}
	for _, x := range leafValues(v) {
		*sets = append(*sets, Change{Op: "set", Path: prefix, Value: x})
	}
}

func leafValues(v any) []string {
	if list, ok := v.([]any); ok {
		out := make([]string, 0, len(list))
		for _, e := range list {
			out = append(out, scalar(e))
		}
		return out
	}
	return []string{scalar(v)}
}

func scalar(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	case nil:
		return ""
	}
	raw, _ := json.Marshal(v)
	return string(raw)
}

// ApplyChanges issues the changes in order and stops at the first failure.
// It returns the number of calls that succeeded.
func (v *Views) ApplyChanges(ctx context.Context, changes []Change) (int, error) {
	for i, c := range changes {
		var err error
		switch c.Op {
		case "set":
			err = v.backend.Set(ctx, c.Path, c.Value)
		case "delete":
			err = v.backend.Delete(ctx, c.Path, c.Value)
		default:
			err = validationf("unknown operation %q", c.Op)
		}
		if err != nil {
			return i, fmt.Errorf("change %d of %d (%s): %w", i+1, len(changes), c, err)
		}
		log.WithField("change", c.String()).Debug("applied")
	}
	return len(changes), nil
}
