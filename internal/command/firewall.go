// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/vyctl/internal/meta"
)

func FirewallGroupsAction(ctx context.Context, cmd *cli.Command) error {
	al, err := BuildAttrs(cmd, "type", "name", "items", "description")
	if err != nil {
		return err
	}
	log.Debugf("attrs: %v", al)

	s := newSession(cmd)
	defer s.Close()

	groups, err := s.views.FirewallGroups(ctx, cmd.String("type"))
	if err != nil {
		return err
	}
	return emitRows(cmd, groups, al)
}

func FirewallGroupCreateAction(ctx context.Context, cmd *cli.Command) error {
	s := newSession(cmd)
	defer s.Close()

	typ, name := cmd.String("type"), cmd.String("name")
	items := cmd.StringSlice("items")
	if err := s.views.CreateFirewallGroup(ctx, typ, name, items); err != nil {
		return err
	}
	notice(cmd, "Created %s %s with %d items.", typ, strings.TrimSpace(name), len(items))
	return nil
}

func FirewallGroupDeleteAction(ctx context.Context, cmd *cli.Command) error {
	typ, name := cmd.String("type"), cmd.String("name")
	if err := confirm(cmd, "Delete "+typ+" "+name+"?"); err != nil {
		return err
	}

	s := newSession(cmd)
	defer s.Close()

	if err := s.views.DeleteFirewallGroup(ctx, typ, name); err != nil {
		return err
	}
	notice(cmd, "Deleted %s %s.", typ, name)
	return nil
}

func FirewallCommandBuilder(app *cli.Command, meta meta.Meta) *cli.Command {
	typeFlag := func(required bool) *cli.StringFlag {
		return &cli.StringFlag{
			Name:     "type",
			Usage:    "group type (address-group, network-group, port-group, interface-group)",
			Required: required,
			Validator: func(value string) error {
				return FlagValidators(value, GroupTypeValidator)
			},
		}
	}
	nameFlag := func() *cli.StringFlag {
		return &cli.StringFlag{
			Name:     "name",
			Aliases:  []string{"n"},
			Usage:    "group name",
			Required: true,
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator)
			},
		}
	}

	return &cli.Command{
		Name:     "firewall",
		Usage:    "firewall group operations",
		Metadata: withMeta(meta),
		Commands: []*cli.Command{
			{
				Name:   "groups",
				Usage:  "list firewall groups",
				Flags:  append([]cli.Flag{typeFlag(false)}, NewGlobalFlags("firewall", meta.Config)...),
				Action: FirewallGroupsAction,
			},
			{
				Name:      "group-create",
				Usage:     "create a firewall group",
				UsageText: "vyctl firewall group-create --type T --name N --items a,b",
				Flags: []cli.Flag{
					typeFlag(true),
					nameFlag(),
					&cli.StringSliceFlag{
						Name:     "items",
						Aliases:  []string{"i"},
						Usage:    "comma-separated members of the group",
						Required: true,
					},
				},
				Action: FirewallGroupCreateAction,
			},
			{
				Name:      "group-delete",
				Usage:     "delete a firewall group",
				UsageText: "vyctl firewall group-delete --type T --name N [--yes]",
				Flags:     []cli.Flag{typeFlag(true), nameFlag(), newYesFlag()},
				Action:    FirewallGroupDeleteAction,
			},
		},
	}
}
