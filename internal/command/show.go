// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/vyctl/internal/meta"
)

// ShowAction runs an operational-mode show command. The words on the command
// line form the path, so "vyctl show interfaces ethernet" runs
// show/interfaces/ethernet.
func ShowAction(ctx context.Context, cmd *cli.Command) error {
	path := strings.Join(cmd.Args().Slice(), "/")

	s := newSession(cmd)
	defer s.Close()

	result, err := s.views.Show(ctx, path)
	if err != nil {
		return err
	}

	rows, defaults := showRows(result)
	al, err := BuildAttrs(cmd, defaults...)
	if err != nil {
		return err
	}
	return emitRows(cmd, rows, al)
}

// showRows shapes a show result into rows and picks default columns. Objects
// list their keys, scalars become a single value column.
func showRows(result any) (any, []string) {
	switch v := result.(type) {
	case []map[string]string:
		return v, []string{"line"}
	case map[string]any:
		return v, sortedKeys(v)
	case []any:
		if len(v) > 0 {
			if first, ok := v[0].(map[string]any); ok {
				return v, sortedKeys(first)
			}
		}
		rows := make([]map[string]any, 0, len(v))
		for _, e := range v {
			rows = append(rows, map[string]any{"value": e})
		}
		return rows, []string{"value"}
	default:
		return map[string]any{"value": v}, []string{"value"}
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func ShowCommandBuilder(app *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "run an operational-mode show command",
		UsageText: "vyctl show [options] <path words...>",
		Metadata:  withMeta(meta),
		Flags:     NewGlobalFlags("show", meta.Config),
		Action:    ShowAction,
	}
}
