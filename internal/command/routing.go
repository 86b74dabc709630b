// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/staranto/vyctl/internal/meta"
)

func RoutingTableAction(ctx context.Context, cmd *cli.Command) error {
	al, err := BuildAttrs(cmd,
		"vrf", "destination", "protocol", "via", "interface", "distance", "metric", "uptime",
	)
	if err != nil {
		return err
	}

	s := newSession(cmd)
	defer s.Close()

	routes, err := s.views.RoutingTable(ctx)
	if err != nil {
		return err
	}
	if vrf := cmd.String("vrf"); vrf != "" {
		kept := routes[:0]
		for _, r := range routes {
			if r.VRF == vrf {
				kept = append(kept, r)
			}
		}
		routes = kept
	}
	return emitRows(cmd, routes, al)
}

func RoutingCommandBuilder(app *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:     "routing",
		Usage:    "routing table operations",
		Metadata: withMeta(meta),
		Commands: []*cli.Command{
			{
				Name:  "table",
				Usage: "list the routing table",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:  "vrf",
						Usage: "only list routes of this VRF",
						Validator: func(value string) error {
							return FlagValidators(value, JammedFlagValidator)
						},
					},
				}, NewGlobalFlags("routing", meta.Config)...),
				Action: RoutingTableAction,
			},
		},
	}
}
