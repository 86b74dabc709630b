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

func SshShowAction(ctx context.Context, cmd *cli.Command) error {
	al, err := BuildAttrs(cmd,
		"status.active:active",
		"port",
		"disable_password_authentication:no_password",
		"loglevel",
		"client_keepalive_interval:keepalive",
		"listen_addresses:listen",
	)
	if err != nil {
		return err
	}

	s := newSession(cmd)
	defer s.Close()

	settings, err := s.views.SSH(ctx)
	if err != nil {
		return err
	}
	return emitRows(cmd, settings, al)
}

// sshEdit collects the flags that were given on the command line.
func sshEdit(cmd *cli.Command) (views.SSHEdit, error) {
	var edit views.SSHEdit

	if cmd.IsSet("port") {
		p := int(cmd.Int("port"))
		if err := FlagValidators(p, PortValidator); err != nil {
			return edit, fmt.Errorf("%w: --port %v", views.ErrValidation, err)
		}
		edit.Port = &p
	}
	if cmd.IsSet("password-auth") {
		disable := !cmd.Bool("password-auth")
		edit.DisablePasswordAuth = &disable
	}
	if cmd.IsSet("loglevel") {
		ll := cmd.String("loglevel")
		edit.LogLevel = &ll
	}
	if cmd.IsSet("keepalive") {
		k := int(cmd.Int("keepalive"))
		edit.ClientKeepaliveInterval = &k
	}
	return edit, nil
}

func SshUpdateAction(ctx context.Context, cmd *cli.Command) error {
	edit, err := sshEdit(cmd)
	if err != nil {
		return err
	}
	if err := edit.Validate(); err != nil {
		return err
	}

	s := newSession(cmd)
	defer s.Close()

	applied, err := s.views.UpdateSSH(ctx, nil, edit)
	for _, a := range applied {
		notice(cmd, "%s", a)
	}
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		notice(cmd, "SSH settings are already up to date.")
	}
	return nil
}

func SshCommandBuilder(app *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:     "ssh",
		Usage:    "SSH service operations",
		Metadata: withMeta(meta),
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "show the SSH service settings",
				Flags:  NewGlobalFlags("ssh", meta.Config),
				Action: SshShowAction,
			},
			{
				Name:      "update",
				Usage:     "change SSH service settings",
				UsageText: "vyctl ssh update [--port N] [--password-auth|--no-password-auth] [--loglevel L] [--keepalive N]",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "port",
						Usage: "listening port (1-65535)",
					},
					&cli.BoolWithInverseFlag{
						Name:  "password-auth",
						Usage: "allow password authentication",
					},
					&cli.StringFlag{
						Name:  "loglevel",
						Usage: "sshd log level",
						Validator: func(value string) error {
							return FlagValidators(value, LogLevelValidator)
						},
					},
					&cli.IntFlag{
						Name:  "keepalive",
						Usage: "client keepalive interval in seconds",
					},
				},
				Action: SshUpdateAction,
			},
		},
	}
}
