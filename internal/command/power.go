// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/vyctl/internal/meta"
)

func powerAction(verb string, call func(*session, context.Context) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		s := newSession(cmd)
		defer s.Close()

		if err := confirm(cmd, "Are you sure you want to "+verb+" the router at "+s.client.BaseURL()+"?"); err != nil {
			return err
		}
		if err := call(s, ctx); err != nil {
			return err
		}
		log.WithField("router", s.client.BaseURL()).Info(verb + " requested")
		notice(cmd, "The router will %s now.", verb)
		return nil
	}
}

func PowerCommandBuilder(app *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:     "power",
		Usage:    "power off or reboot the router",
		Metadata: withMeta(meta),
		Commands: []*cli.Command{
			{
				Name:  "off",
				Usage: "power off the router",
				Flags: []cli.Flag{newYesFlag()},
				Action: powerAction("power off", func(s *session, ctx context.Context) error {
					return s.views.Poweroff(ctx)
				}),
			},
			{
				Name:  "reboot",
				Usage: "reboot the router",
				Flags: []cli.Flag{newYesFlag()},
				Action: powerAction("reboot", func(s *session, ctx context.Context) error {
					return s.views.Reboot(ctx)
				}),
			},
		},
	}
}
