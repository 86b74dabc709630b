// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT
package command

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/vyctl/internal/config"
	"github.com/staranto/vyctl/internal/meta"
)

func InitApp(ctx context.Context, args []string) (*cli.Command, error) {
	// The arg[1] immediately following the binary (arg[0]) is the vyctl
	// subcommand and also represents the namespace key to be used when retrieving
	// config values. arg[1] could be -h/--help, so ignore it if it appears to be
	// a flag.
	var ns string
	if len(args) > 1 && !strings.HasPrefix(args[1], "-") {
		ns = args[1]
	}

	config.Config.Namespace = ns
	cfg, err := config.Load()
	if err != nil && !errors.Is(err, config.ErrNotFound) {
		return nil, err
	}
	cfg.Namespace = ns
	log.Debugf("config: source=%q namespace=%q", cfg.Source, ns)

	settings, err := config.ResolveSettings()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	meta := meta.Meta{
		Args:     args,
		Config:   cfg,
		Context:  ctx,
		Settings: settings,
	}

	app := &cli.Command{
		Name:     "vyctl",
		Usage:    "VyOS router configuration console",
		Metadata: withMeta(meta),
		Flags: append([]cli.Flag{
			&cli.BoolFlag{
				Name:        "version",
				Aliases:     []string{"v"},
				Usage:       "vyctl version info",
				HideDefault: true,
			},
		}, NewConnectionFlags(cfg, settings)...),
	}

	app.Commands = append(app.Commands,
		CacheCommandBuilder(app, meta),
		CompletionCommandBuilder(app, meta),
		ConfigCommandBuilder(app, meta),
		ConsoleCommandBuilder(app, meta),
		DhcpCommandBuilder(app, meta),
		FirewallCommandBuilder(app, meta),
		NtpCommandBuilder(app, meta),
		PowerCommandBuilder(app, meta),
		RoutingCommandBuilder(app, meta),
		ShowCommandBuilder(app, meta),
		SshCommandBuilder(app, meta),
	)

	// Make sure flags are sorted for the --help text.
	sortFlags(app)

	return app, nil
}

func sortFlags(cmd *cli.Command) {
	sort.Slice(cmd.Flags, func(i, j int) bool {
		return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
	})
	for _, sub := range cmd.Commands {
		sortFlags(sub)
	}
}
