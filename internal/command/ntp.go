// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/staranto/vyctl/internal/meta"
	"github.com/staranto/vyctl/internal/views"
)

func NtpServersAction(ctx context.Context, cmd *cli.Command) error {
	al, err := BuildAttrs(cmd, "name", "pool", "noselect", "prefer")
	if err != nil {
		return err
	}

	s := newSession(cmd)
	defer s.Close()

	servers, err := s.views.NTPServers(ctx)
	if err != nil {
		return err
	}
	return emitRows(cmd, servers, al)
}

// NtpStatusAction prints the service status and the client side settings of
// the NTP page as one row.
func NtpStatusAction(ctx context.Context, cmd *cli.Command) error {
	al, err := BuildAttrs(cmd, "active", "source", "servers", "allow_clients", "listen_addresses")
	if err != nil {
		return err
	}

	s := newSession(cmd)
	defer s.Close()

	page, err := s.views.NTP(ctx)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(page.Servers))
	for _, srv := range page.Servers {
		names = append(names, srv.Name)
	}

	row := map[string]any{
		"active":           page.Status.Active,
		"source":           page.Status.Source,
		"servers":          names,
		"allow_clients":    page.AllowClients,
		"listen_addresses": page.ListenAddresses,
	}
	return emitRows(cmd, row, al)
}

func NtpAddAction(ctx context.Context, cmd *cli.Command) error {
	s := newSession(cmd)
	defer s.Close()

	srv := views.NTPServer{
		Name:     firstArg(cmd, cmd.String("server")),
		Pool:     cmd.Bool("pool"),
		NoSelect: cmd.Bool("noselect"),
		Prefer:   cmd.Bool("prefer"),
	}
	if err := s.views.AddNTPServer(ctx, srv); err != nil {
		return err
	}
	notice(cmd, "Added NTP server %s.", srv.Name)
	return nil
}

func NtpRemoveAction(ctx context.Context, cmd *cli.Command) error {
	name := firstArg(cmd, cmd.String("server"))
	if name == "" {
		return fmt.Errorf("%w: server name or IP address is required", views.ErrValidation)
	}

	s := newSession(cmd)
	defer s.Close()

	if err := s.views.RemoveNTPServer(ctx, name); err != nil {
		return err
	}
	notice(cmd, "Removed NTP server %s.", name)
	return nil
}

func NtpCommandBuilder(app *cli.Command, meta meta.Meta) *cli.Command {
	serverFlag := func() *cli.StringFlag {
		return &cli.StringFlag{
			Name:  "server",
			Usage: "server name or IP address",
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator)
			},
		}
	}

	return &cli.Command{
		Name:     "ntp",
		Usage:    "NTP service operations",
		Metadata: withMeta(meta),
		Commands: []*cli.Command{
			{
				Name:   "servers",
				Usage:  "list configured NTP servers",
				Flags:  NewGlobalFlags("ntp", meta.Config),
				Action: NtpServersAction,
			},
			{
				Name:   "status",
				Usage:  "show the NTP service status",
				Flags:  NewGlobalFlags("ntp", meta.Config),
				Action: NtpStatusAction,
			},
			{
				Name:      "add",
				Usage:     "add an NTP server",
				UsageText: "vyctl ntp add <server> [--pool] [--noselect] [--prefer]",
				Flags: []cli.Flag{
					serverFlag(),
					&cli.BoolFlag{Name: "pool", Usage: "server is a pool", HideDefault: true},
					&cli.BoolFlag{Name: "noselect", Usage: "never select this server", HideDefault: true},
					&cli.BoolFlag{Name: "prefer", Usage: "prefer this server", HideDefault: true},
				},
				Action: NtpAddAction,
			},
			{
				Name:      "remove",
				Usage:     "remove an NTP server",
				UsageText: "vyctl ntp remove <server>",
				Flags:     []cli.Flag{serverFlag()},
				Action:    NtpRemoveAction,
			},
		},
	}
}
