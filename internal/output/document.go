// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v2"
)

// RenderDocument prints a configuration subtree. text renders VyOS style set
// commands rooted at base, json is indented and yaml keeps the key order of
// the backend payload.
func RenderDocument(raw []byte, base string, format string, w io.Writer) error {
	switch format {
	case "raw":
		_, err := w.Write(raw)
		return err
	case "json":
		var out bytes.Buffer
		if err := json.Indent(&out, raw, "", "  "); err != nil {
			return fmt.Errorf("cannot render document: %w", err)
		}
		out.WriteByte('\n')
		_, err := w.Write(out.Bytes())
		return err
	case "yaml":
		var doc yaml.MapSlice
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			var v any
			if err := yaml.Unmarshal(raw, &v); err != nil {
				return fmt.Errorf("cannot render document: %w", err)
			}
			b, err := yaml.Marshal(v)
			if err != nil {
				return err
			}
			_, err = w.Write(b)
			return err
		}
		b, err := yaml.Marshal(doc)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	default:
		if !gjson.ValidBytes(raw) {
			return fmt.Errorf("cannot render document: invalid JSON")
		}
		for _, line := range SetCommands(gjson.ParseBytes(raw), base) {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
		return nil
	}
}

// SetCommands flattens a configuration tree into sorted set commands, one per
// leaf value. Valueless nodes produce a command without a value.
func SetCommands(tree gjson.Result, base string) []string {
	var prefix []string
	for _, s := range strings.Split(strings.Trim(base, "/"), "/") {
		if s != "" {
			prefix = append(prefix, s)
		}
	}

	var lines []string
	var walk func(path []string, node gjson.Result)
	walk = func(path []string, node gjson.Result) {
		switch {
		case node.IsObject():
			keys := make([]string, 0)
			children := map[string]gjson.Result{}
			node.ForEach(func(k, v gjson.Result) bool {
				keys = append(keys, k.String())
				children[k.String()] = v
				return true
			})
			if len(keys) == 0 {
				lines = append(lines, command(path, nil))
				return
			}
			sort.Strings(keys)
			for _, k := range keys {
				walk(append(path[:len(path):len(path)], k), children[k])
			}
		case node.IsArray():
			for _, v := range node.Array() {
				walk(path, v)
			}
		case node.Type == gjson.Null:
			lines = append(lines, command(path, nil))
		default:
			s := node.String()
			lines = append(lines, command(path, &s))
		}
	}
	walk(prefix, tree)
	return lines
}

func command(path []string, value *string) string {
	line := "set " + strings.Join(path, " ")
	if value != nil {
		line += " '" + strings.ReplaceAll(*value, "'", `'\''`) + "'"
	}
	return line
}
