// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/staranto/vyctl/internal/meta"
	"github.com/staranto/vyctl/internal/provider"
	"github.com/staranto/vyctl/internal/tui"
)

// ConsoleAction runs the interactive console until the operator quits.
func ConsoleAction(ctx context.Context, cmd *cli.Command) error {
	s := newSession(cmd)
	defer s.Close()

	p, err := provider.New(s.cache, s.backend, provider.WithRefreshInterval(cmd.Duration("refresh")))
	if err != nil {
		return err
	}
	defer p.Close()

	return tui.Run(ctx, p, s.client.BaseURL())
}

func ConsoleCommandBuilder(app *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:     "console",
		Usage:    "interactive console with a live cache dashboard",
		Metadata: withMeta(meta),
		Flags:    []cli.Flag{newRefreshFlag(meta.Settings.RefreshInterval)},
		Action:   ConsoleAction,
	}
}
