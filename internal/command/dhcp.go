// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/staranto/vyctl/internal/meta"
)

func DhcpLeasesAction(ctx context.Context, cmd *cli.Command) error {
	al, err := BuildAttrs(cmd,
		"pool", "ip_address:ip", "mac_address:mac", "hostname", "state", "remaining",
	)
	if err != nil {
		return err
	}

	s := newSession(cmd)
	defer s.Close()

	leases, err := s.views.DHCPLeases(ctx)
	if err != nil {
		return err
	}
	return emitRows(cmd, leases, al)
}

func DhcpCommandBuilder(app *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:     "dhcp",
		Usage:    "DHCP server operations",
		Metadata: withMeta(meta),
		Commands: []*cli.Command{
			{
				Name:   "leases",
				Usage:  "list DHCP leases",
				Flags:  NewGlobalFlags("dhcp", meta.Config),
				Action: DhcpLeasesAction,
			},
		},
	}
}
